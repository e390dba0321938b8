// Command kanban-e2e runs the board's end-to-end suite, manages the session
// snapshot it depends on and serves a local stub of the board for
// development.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/gotrs-io/kanban-e2e/internal/config"
	"github.com/gotrs-io/kanban-e2e/internal/logging"
)

// errSuiteFailed is returned when a run completes with failures. The results
// have already been printed, so main only sets the exit status.
var errSuiteFailed = errors.New("suite failed")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, errSuiteFailed) {
			fmt.Fprintf(os.Stderr, "%s %s\n", color.HiRedString("Error:"), err.Error())
		}
		stop()
		os.Exit(1)
	}
}

// app is what every subcommand shares once flags are parsed.
type app struct {
	out    io.Writer
	logCfg logging.Config
	cfg    *config.Config
	logger logr.Logger
}

func run(ctx context.Context, args []string, out io.Writer) error {
	a := &app{out: out}

	cmd := &cobra.Command{
		Use:   "kanban-e2e",
		Short: "End-to-end suite for the Kanban board",
		Long: `kanban-e2e drives the Kanban board in a real browser.

It authenticates once, saves the session, then verifies the board's
structure, navigation and every task in the dataset. Settings come from
the environment or a .env file in the working directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}
	cmd.SetOut(out)
	cmd.SetArgs(args)
	logging.LoadConfigFromFlags(cmd.PersistentFlags(), &a.logCfg)

	cmd.AddCommand(
		a.bootstrapCommand(),
		a.runCommand(),
		a.watchCommand(),
		a.datasetCommand(),
		a.sessionCommand(),
		a.stubCommand(),
		versionCommand(),
	)
	return cmd.ExecuteContext(ctx)
}

// init resolves configuration and builds the logger. Logging flags win over
// LOG_FORMAT and LOG_VERBOSITY.
func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}
	a.cfg = cfg

	flags := cmd.Flags()
	if !flags.Changed("v") {
		a.logCfg.Verbosity = cfg.LogVerbosity
	}
	if !flags.Changed("log-format") {
		a.logCfg.Format = cfg.LogFormat
	}
	a.logger, err = logging.New(a.logCfg)
	if err != nil {
		return err
	}
	a.logger.V(1).Info("loaded configuration", cfg.LogValues()...)
	if cfg.UsingDemoCredentials() {
		a.logger.V(1).Info("using the public demo credentials")
	}
	return nil
}
