package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/xeonx/timeago"

	"github.com/gotrs-io/kanban-e2e/internal/dataset"
	"github.com/gotrs-io/kanban-e2e/internal/scenarios"
	"github.com/gotrs-io/kanban-e2e/internal/session"
)

func (a *app) datasetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Inspect the test case dataset",
	}
	load := func(args []string) (*dataset.Dataset, string, error) {
		path := a.cfg.DatasetPath
		if len(args) > 0 {
			path = args[0]
		}
		ds, err := dataset.Load(path)
		return ds, path, err
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "validate [path]",
			Short: "Check the dataset against its schema",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				ds, path, err := load(args)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "%s %s: %d test cases\n", passMark, path, ds.Len())
				return nil
			},
		},
		&cobra.Command{
			Use:   "list [path]",
			Short: "List the scenarios the dataset generates",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				ds, _, err := load(args)
				if err != nil {
					return err
				}
				for _, tc := range ds.TestCases {
					tags := color.HiBlackString("[%s]", strings.Join(tc.ExpectedTags, ", "))
					fmt.Fprintf(a.out, "%s\t%s > %s %s\n", scenarios.Name(tc), tc.Project, tc.ExpectedColumn, tags)
				}
				return nil
			},
		},
	)
	return cmd
}

func (a *app) sessionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect the saved session snapshot",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the snapshot's age and contents",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			snap, err := session.Load(a.cfg.StorageStatePath)
			if err != nil {
				return fmt.Errorf("%w; run bootstrap first", err)
			}
			cookies, err := snap.Cookies()
			if err != nil {
				return err
			}
			origins, err := snap.Origins()
			if err != nil {
				return err
			}

			now := time.Now()
			fmt.Fprintf(a.out, "path:     %s\n", snap.Path)
			fmt.Fprintf(a.out, "created:  %s\n", timeago.English.Format(snap.CreatedAt))
			fmt.Fprintf(a.out, "cookies:  %d\n", cookies)
			fmt.Fprintf(a.out, "origins:  %s\n", strings.Join(origins, ", "))
			switch {
			case a.cfg.SessionMaxAge <= 0:
				fmt.Fprintln(a.out, "reuse:    disabled, every run logs in")
			case snap.Fresh(now, a.cfg.SessionMaxAge):
				fmt.Fprintf(a.out, "reuse:    %s\n", color.GreenString("fresh"))
			default:
				fmt.Fprintf(a.out, "reuse:    %s\n", color.YellowString("stale, next run logs in again"))
			}
			return nil
		},
	})
	return cmd
}
