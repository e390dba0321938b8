package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gotrs-io/kanban-e2e/internal/browser"
	"github.com/gotrs-io/kanban-e2e/internal/dataset"
	"github.com/gotrs-io/kanban-e2e/internal/runner"
	"github.com/gotrs-io/kanban-e2e/internal/scenarios"
	"github.com/gotrs-io/kanban-e2e/internal/session"
	"github.com/gotrs-io/kanban-e2e/internal/suite"
)

type runFlags struct {
	filter  string
	stages  []string
	workers int
	retries int
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.filter, "filter", "", "Only run scenarios whose name matches this glob")
	cmd.Flags().StringSliceVar(&f.stages, "stage", nil, "Only run these stages and the stages they need")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "Scenarios run at once (default WORKERS)")
	cmd.Flags().IntVar(&f.retries, "retries", -1, "Extra attempts for a failing scenario (default RETRIES)")
}

func (a *app) launch() (*browser.Launcher, error) {
	return browser.Launch(browser.Options{
		Browser:        a.cfg.Browser,
		Headless:       a.cfg.Headless,
		SlowMo:         a.cfg.SlowMo,
		BaseURL:        a.cfg.BaseURL,
		DefaultTimeout: a.cfg.DefaultTimeout,
		ViewportWidth:  a.cfg.ViewportWidth,
		ViewportHeight: a.cfg.ViewportHeight,
		Install:        a.cfg.InstallBrowsers,
	}, a.logger)
}

func (a *app) bootstrapOptions(factory session.ContextFactory) session.BootstrapOptions {
	return session.BootstrapOptions{
		Browser:       factory,
		Path:          a.cfg.StorageStatePath,
		Username:      a.cfg.Username,
		Password:      a.cfg.Password,
		MaxAge:        a.cfg.SessionMaxAge,
		ExpectTimeout: a.cfg.ExpectTimeout,
		Logger:        a.logger,
	}
}

func (a *app) bootstrapCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Log in once and save the session snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			launcher, err := a.launch()
			if err != nil {
				return err
			}
			defer launcher.Close()

			opts := a.bootstrapOptions(launcher)
			if force {
				opts.MaxAge = 0
			}
			snap, err := session.Bootstrap(cmd.Context(), opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s session saved to %s\n", passMark, snap.Path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Log in even if a fresh snapshot exists")
	return cmd
}

func (a *app) runCommand() *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the suite once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var metrics *suite.Metrics
			if a.cfg.MetricsFile != "" {
				metrics = suite.NewMetrics()
			}
			report, err := a.runSuite(cmd.Context(), flags, metrics)
			if err != nil {
				return err
			}
			if !report.OK() {
				return errSuiteFailed
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func (a *app) watchCommand() *cobra.Command {
	var (
		flags    runFlags
		schedule string
		timeout  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run the suite on a schedule against a live board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := runner.ParseSchedule(schedule); err != nil {
				return err
			}
			// counters accumulate across runs so the textfile can be scraped
			var metrics *suite.Metrics
			if a.cfg.MetricsFile != "" {
				metrics = suite.NewMetrics()
			}
			task := runner.FuncTask{
				TaskName:     "suite",
				TaskSchedule: schedule,
				TaskTimeout:  timeout,
				Fn: func(ctx context.Context) error {
					report, err := a.runSuite(ctx, flags, metrics)
					if err != nil {
						return err
					}
					if !report.OK() {
						return fmt.Errorf("%d scenario(s) failed", report.Count(suite.StatusFailed))
					}
					return nil
				},
			}
			// report dataset edits now rather than at the next run
			go func() {
				_ = dataset.Watch(cmd.Context(), a.cfg.DatasetPath, 0, func(ds *dataset.Dataset, err error) {
					if err != nil {
						a.logger.Error(err, "dataset changed and no longer loads", "path", a.cfg.DatasetPath)
						return
					}
					a.logger.Info("dataset changed", "path", a.cfg.DatasetPath, "cases", ds.Len())
				})
			}()

			fmt.Fprintf(a.out, "watching %s on schedule %q\n", a.cfg.BaseURL, schedule)
			err := runner.New(a.logger, task).Start(cmd.Context())
			if cmd.Context().Err() != nil {
				return nil
			}
			return err
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&schedule, "schedule", "@every 30m", "Cron expression or descriptor")
	cmd.Flags().DurationVar(&timeout, "timeout", 15*time.Minute, "Ceiling for a single run")
	return cmd
}

// runSuite loads the dataset, builds the stage graph and runs it. A dataset
// that fails to load or validate is an error before any browser starts.
func (a *app) runSuite(ctx context.Context, flags runFlags, metrics *suite.Metrics) (*suite.Report, error) {
	ds, err := dataset.Load(a.cfg.DatasetPath)
	if err != nil {
		return nil, err
	}

	workers := a.cfg.Workers
	if flags.workers > 0 {
		workers = flags.workers
	}
	retries := a.cfg.Retries
	if flags.retries >= 0 {
		retries = flags.retries
	}

	launcher, err := a.launch()
	if err != nil {
		return nil, err
	}
	defer launcher.Close()
	pool := browser.NewPool(launcher, workers)

	g, err := scenarios.Build(scenarios.Options{
		Cases: ds.TestCases,
		// the login context counts against the pool like any scenario's
		Setup: func(ctx context.Context) (session.Snapshot, error) {
			release, err := pool.Reserve(ctx)
			if err != nil {
				return session.Snapshot{}, err
			}
			defer release()
			return session.Bootstrap(ctx, a.bootstrapOptions(launcher))
		},
		Username: a.cfg.Username,
		Password: a.cfg.Password,
	})
	if err != nil {
		return nil, err
	}
	if g, err = g.Select(flags.stages...); err != nil {
		return nil, err
	}

	var artifacts string
	if a.cfg.Screenshots {
		artifacts = a.cfg.ArtifactsDir
	}
	p := newPrinter(a.out)
	r, err := suite.New(pool, suite.Options{
		Workers:       workers,
		Retries:       retries,
		RetryDelay:    time.Second,
		Timeout:       a.cfg.DefaultTimeout,
		ExpectTimeout: a.cfg.ExpectTimeout,
		Filter:        flags.filter,
		ArtifactsDir:  artifacts,
		Metrics:       metrics,
		Logger:        a.logger,
		OnResult:      p.result,
	})
	if err != nil {
		return nil, err
	}

	report, err := r.Run(ctx, g)
	if report != nil {
		p.summary(report)
	}
	if metrics != nil {
		if merr := metrics.WriteToTextfile(a.cfg.MetricsFile); merr != nil {
			a.logger.Error(merr, "writing metrics", "path", a.cfg.MetricsFile)
		}
	}
	return report, err
}
