package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/gotrs-io/kanban-e2e/internal/kanbanstub"
	"github.com/gotrs-io/kanban-e2e/internal/version"
)

func (a *app) stubCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "stub",
		Short: "Serve a local copy of the board to run the suite against",
		Long: `stub serves a board with the same projects, columns and tasks as the
public demo. Point BASE_URL at it to run the suite offline.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := kanbanstub.New(kanbanstub.Options{
				Username: a.cfg.Username,
				Password: a.cfg.Password,
				Logger:   a.logger,
			})
			if err != nil {
				return err
			}
			srv := &http.Server{
				Addr:              addr,
				Handler:           s.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() { errCh <- srv.ListenAndServe() }()
			fmt.Fprintf(a.out, "serving stub board on %s\n", addr)

			select {
			case err := <-errCh:
				return err
			case <-cmd.Context().Done():
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8081", "Listen address")
	return cmd
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "kanban-e2e %s\n", version.Full())
			return nil
		},
	}
}
