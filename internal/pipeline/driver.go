package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofrs/flock"

	"tagtrain/internal/config"
	"tagtrain/internal/dataset"
	"tagtrain/internal/dockerctx"
	"tagtrain/internal/history"
	"tagtrain/internal/layout"
	"tagtrain/internal/logging"
	"tagtrain/internal/preflight"
	"tagtrain/internal/trainer"
)

// ErrRunLocked is returned when another driver holds the run lock.
var ErrRunLocked = errors.New("another tagtrain run is active")

// Summary reports the trainer results of a batch, in target order.
type Summary struct {
	Runs []trainer.Result
}

// Failed returns the runs whose trainer did not exit cleanly.
func (s Summary) Failed() []trainer.Result {
	var failed []trainer.Result
	for _, run := range s.Runs {
		if !run.Succeeded() {
			failed = append(failed, run)
		}
	}
	return failed
}

// Option configures the Driver.
type Option func(*Driver)

// WithInvoker replaces the trainer invoker (primarily for tests).
func WithInvoker(inv *trainer.Invoker) Option {
	return func(d *Driver) {
		if inv != nil {
			d.trainer = inv
		}
	}
}

// WithLedger records runs in store. Without it runs are not recorded.
func WithLedger(store *history.Store) Option {
	return func(d *Driver) {
		d.ledger = store
	}
}

// Driver runs training batches.
type Driver struct {
	cfg      *config.Config
	layout   layout.Resolver
	datasets dataset.Resolver
	contexts dockerctx.Builder
	trainer  *trainer.Invoker
	ledger   *history.Store
	logger   *slog.Logger
}

// New wires a Driver from the application config.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Driver {
	if logger == nil {
		logger = logging.NewNop()
	}
	d := &Driver{
		cfg:      cfg,
		layout:   layout.NewResolver(cfg),
		datasets: dataset.Resolver{Root: cfg.Paths.DatasetsDir, Logger: logger},
		contexts: dockerctx.NewBuilder(cfg, logger),
		trainer:  trainer.New(cfg, logger),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run trains every target in order while holding the run lock.
func (d *Driver) Run(ctx context.Context, targets []layout.Target) (Summary, error) {
	logger := logging.WithContext(ctx, logging.NewComponentLogger(d.logger, "pipeline"))

	if err := d.cfg.EnsureDirectories(); err != nil {
		return Summary{}, err
	}
	lock := flock.New(d.cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return Summary{}, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return Summary{}, fmt.Errorf("%w (lock file %s)", ErrRunLocked, d.cfg.LockPath())
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release run lock", logging.Error(err))
		}
	}()

	d.preflight(logger)

	summary := Summary{Runs: make([]trainer.Result, 0, len(targets))}
	logger.Info("training batch started", logging.Int("targets", len(targets)))
	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		result, err := d.runTarget(ctx, target)
		if err != nil {
			logging.ErrorWithContext(logger.With(logging.String(logging.FieldTarget, target.String())),
				"training batch aborted", "batch_aborted",
				logging.Error(err),
				logging.Int("completed", len(summary.Runs)),
				logging.Int("remaining", len(targets)-len(summary.Runs)-1),
				logging.String(logging.FieldErrorHint, "fix the target's config or dataset files and rerun"),
			)
			return summary, fmt.Errorf("%s: %w", target, err)
		}
		summary.Runs = append(summary.Runs, result)
	}

	logger.Info("training batch finished",
		logging.Int("targets", len(summary.Runs)),
		logging.Int("failed", len(summary.Failed())),
	)
	if removed := logging.CleanupOldLogs(logger, d.cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: d.cfg.Paths.LogsDir, Pattern: "*.txt"},
	); removed > 0 {
		logger.Info("pruned old trainer logs", logging.Int("removed", removed))
	}
	return summary, nil
}

func (d *Driver) runTarget(ctx context.Context, target layout.Target) (trainer.Result, error) {
	ctx = logging.WithTarget(ctx, target.String())
	logger := logging.WithContext(ctx, logging.NewComponentLogger(d.logger, "pipeline"))
	paths := d.layout.Resolve(target)

	logger.Info("setting up training", logging.String("config", paths.ConfigFile))
	resolution, err := d.datasets.Resolve(paths.DatasetsFile, target.MergedName())
	if err != nil {
		return trainer.Result{}, err
	}
	if resolution.Merged {
		logger.Info("datasets merged", logging.Int("sources", len(resolution.Sources)), logging.String("dir", resolution.Dir))
	}

	if _, err := d.contexts.Build(target); err != nil {
		return trainer.Result{}, err
	}

	var runID string
	result, err := d.trainer.Run(ctx, trainer.Request{
		Target:     target,
		ConfigFile: paths.ConfigFile,
		DatasetDir: resolution.Dir,
		DockerDir:  paths.DockerDir,
		Started: func(started trainer.Result) {
			runID = d.beginRun(ctx, logger, target, resolution.Dir, started)
		},
	})
	if runID != "" {
		code := result.ExitCode
		if err != nil && code == 0 {
			code = -1
		}
		d.finishRun(ctx, logger, runID, code, result)
	}
	return result, err
}

func (d *Driver) beginRun(ctx context.Context, logger *slog.Logger, target layout.Target, datasetDir string, started trainer.Result) string {
	if d.ledger == nil {
		return ""
	}
	run, err := d.ledger.Begin(ctx, history.Run{
		Tagger:    target.Tagger,
		Config:    target.Config,
		Dataset:   datasetDir,
		LogPath:   started.LogPath,
		StartedAt: started.Started,
	})
	if err != nil {
		logging.WarnWithContext(logger, "failed to record run start", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check "+d.ledger.Path()),
			logging.String(logging.FieldImpact, "run is missing from tagtrain history"),
		)
		return ""
	}
	return run.ID
}

func (d *Driver) finishRun(ctx context.Context, logger *slog.Logger, id string, code int, result trainer.Result) {
	finished := result.Finished
	if finished.IsZero() {
		finished = result.Started
	}
	// Record the outcome even when the batch context was cancelled.
	if err := d.ledger.Finish(context.WithoutCancel(ctx), id, code, finished); err != nil {
		logging.WarnWithContext(logger, "failed to record run result", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run stays marked running in tagtrain history"),
		)
	}
}

func (d *Driver) preflight(logger *slog.Logger) {
	for _, result := range preflight.Failed(preflight.RunAll(d.cfg)) {
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
		)
	}
	for _, status := range preflight.CheckSystemDeps(d.cfg) {
		if status.Satisfied() {
			continue
		}
		logging.WarnWithContext(logger, "required binary missing", "dependency_missing",
			logging.String("dependency", status.Name),
			logging.String("detail", status.Detail),
			logging.String(logging.FieldErrorHint, status.Description),
		)
	}
}

