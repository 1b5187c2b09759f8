package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/tbouvier/repolang/pkg/collection"
	"github.com/tbouvier/repolang/pkg/github"
)

// newCollectCmd creates the collect command.
func newCollectCmd() *cobra.Command {
	var (
		configPath string
		update     bool
		keepGoing  bool
		schedule   string
	)

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Collect repository metadata and language histories",
		Long: `Run the configured search queries against the GitHub API, collect a
summary row and a per-release language matrix for every matching repository,
and persist the datasets as CSV snapshots after each query.

Each query runs twice: once sorted by stars, once in relevance order. A
repository already in the data folder is skipped, so an interrupted run can
simply be restarted. Set REPOLANG_GITHUB_TOKEN to authenticate; without a
token GitHub applies much lower rate limits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(ctx, configPath)
			if err != nil {
				return err
			}
			if update {
				cfg.Collect.Update = true
			}
			if keepGoing {
				cfg.Collect.ContinueOnError = true
			}

			gw := github.NewClient(github.Config{
				Token:       cfg.GitHub.Token,
				BaseURL:     cfg.GitHub.BaseURL,
				HourlyLimit: cfg.GitHub.HourlyLimit,
			})

			if schedule == "" {
				return runSweep(ctx, gw, cfg)
			}
			return runScheduled(ctx, gw, cfg, schedule)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a TOML config file")
	cmd.Flags().BoolVarP(&update, "update", "u", false, "recollect repositories already in the data folder")
	cmd.Flags().BoolVar(&keepGoing, "continue-on-error", false, "skip repositories that fail instead of aborting")
	cmd.Flags().StringVar(&schedule, "schedule", "", `cron expression to re-run the sweep on a schedule (e.g. "0 3 * * *")`)

	return cmd
}

// runSweep executes the full query sweep once: every configured query, first
// sorted by stars, then in relevance order, with a snapshot persisted after
// each pass so an interrupted run loses at most one query's work.
func runSweep(ctx context.Context, gw *github.Client, cfg *Config) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	store, err := collection.Load(cfg.Collect.DataDir)
	if err != nil {
		return fmt.Errorf("load data folder %s: %w", cfg.Collect.DataDir, err)
	}
	store.Logger = logger

	manifest := newRunManifest()
	logger.Info("starting collection run",
		"run", manifest.ID, "queries", len(cfg.Collect.Queries), "existing", store.Len())

	total := 0
	for _, query := range cfg.Collect.Queries {
		for _, sortBy := range []string{"stars", ""} {
			if err := ctx.Err(); err != nil {
				return err
			}

			n, collectErr := store.CollectForQuery(ctx, gw, collection.CollectOptions{
				Query:             query,
				Sort:              sortBy,
				Update:            cfg.Collect.Update,
				MaxRepositories:   cfg.Collect.MaxRepositories,
				ReleaseSampleSize: cfg.Collect.ReleaseSampleSize,
				ContinueOnError:   cfg.Collect.ContinueOnError,
			})
			total += n
			manifest.record(query, sortBy, n, collectErr)

			// Checkpoint before inspecting the error: a partially collected
			// query still holds finished repositories worth keeping. The
			// checkpoint does not clear the folder, so a repository removed
			// by --update whose recollection then failed can leave its old
			// matrix CSV behind until the final persist; Load drops such
			// orphans, so a resumed run never sees them.
			if err := store.Persist(cfg.Collect.DataDir, false); err != nil {
				return fmt.Errorf("persist data folder: %w", err)
			}
			if err := manifest.write(cfg.Collect.DataDir); err != nil {
				return err
			}
			if collectErr != nil {
				return collectErr
			}
			logger.Info("query pass done", "query", query, "sort", sortBy, "processed", n)
		}
	}

	// The final persist clears the folder so the snapshot exactly mirrors
	// the store, removing any matrix file orphaned during the run.
	manifest.finish()
	if err := store.Persist(cfg.Collect.DataDir, true); err != nil {
		return fmt.Errorf("persist data folder: %w", err)
	}
	if err := manifest.write(cfg.Collect.DataDir); err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Collected %d repositories across %d queries", total, len(cfg.Collect.Queries)))
	return nil
}

// runScheduled runs the sweep immediately, then again on every tick of the
// cron schedule, until the context is cancelled. A failed sweep is logged and
// the schedule keeps going; overlapping runs are prevented by skipping a tick
// while the previous sweep is still in flight.
func runScheduled(ctx context.Context, gw *github.Client, cfg *Config, schedule string) error {
	logger := loggerFromContext(ctx)

	running := make(chan struct{}, 1)
	sweep := func() {
		select {
		case running <- struct{}{}:
			defer func() { <-running }()
		default:
			logger.Warn("previous sweep still running, skipping tick")
			return
		}
		if err := runSweep(ctx, gw, cfg); err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("sweep failed", "err", err)
		}
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, sweep); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	sweep()
	c.Start()
	logger.Info("scheduler started", "schedule", schedule)

	<-ctx.Done()
	stopped := c.Stop()
	select {
	case <-stopped.Done():
	case <-time.After(5 * time.Second):
	}
	return ctx.Err()
}
