package trainer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"tagtrain/internal/config"
	"tagtrain/internal/dataset"
	"tagtrain/internal/layout"
	"tagtrain/internal/logging"
)

// MissingSplit is passed in place of a split path the dataset lacks.
const MissingSplit = "None"

// Request identifies one training run.
type Request struct {
	Target     layout.Target
	ConfigFile string
	DatasetDir string
	DockerDir  string
	// Started, when set, is called once the log file exists and just before
	// the trainer process is launched.
	Started func(Result)
}

// Result reports a finished trainer subprocess.
type Result struct {
	Target   layout.Target
	LogPath  string
	ExitCode int
	TimedOut bool
	Started  time.Time
	Finished time.Time
}

// Succeeded reports whether the trainer exited cleanly.
func (r Result) Succeeded() bool {
	return r.ExitCode == 0 && !r.TimedOut
}

// Option configures the Invoker.
type Option func(*Invoker)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(i *Invoker) {
		if exec != nil {
			i.exec = exec
		}
	}
}

// WithClock overrides the time source used for log names and timestamps.
func WithClock(now func() time.Time) Option {
	return func(i *Invoker) {
		if now != nil {
			i.now = now
		}
	}
}

// Invoker runs tagger training scripts.
type Invoker struct {
	taggersDir         string
	logsDir            string
	python             string
	requirementsScript string
	entryScript        string
	timeout            time.Duration
	logger             *slog.Logger
	exec               Executor
	now                func() time.Time
}

// New constructs an Invoker from the application config.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Invoker {
	inv := &Invoker{
		taggersDir:         cfg.Paths.TaggersDir,
		logsDir:            cfg.Paths.LogsDir,
		python:             cfg.PythonBinary(),
		requirementsScript: cfg.Python.RequirementsScript,
		entryScript:        cfg.Python.EntryScript,
		timeout:            time.Duration(cfg.Trainer.TimeoutSeconds) * time.Second,
		logger:             logger,
		exec:               commandExecutor{},
		now:                time.Now,
	}
	if inv.logger == nil {
		inv.logger = logging.NewNop()
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// LogPath returns the trainer log file for configName started at started.
func (i *Invoker) LogPath(configName string, started time.Time) string {
	return filepath.Join(i.logsDir, configName+"-"+strconv.FormatInt(started.Unix(), 10)+".txt")
}

// Run trains req.Target and blocks until the trainer exits.
func (i *Invoker) Run(ctx context.Context, req Request) (Result, error) {
	logger := logging.NewComponentLogger(i.logger, "trainer").With(logging.String(logging.FieldTarget, req.Target.String()))
	result := Result{Target: req.Target}

	train, err := i.splitArg(req.DatasetDir, dataset.Train, logger)
	if err != nil {
		return result, err
	}
	dev, err := i.splitArg(req.DatasetDir, dataset.Dev, logger)
	if err != nil {
		return result, err
	}

	venv, err := i.EnsureEnv(ctx, req.Target.Tagger)
	if err != nil {
		return result, err
	}

	if err := os.MkdirAll(i.logsDir, 0o755); err != nil {
		return result, fmt.Errorf("create log directory: %w", err)
	}
	result.Started = i.now()
	result.LogPath = i.LogPath(req.Target.Config, result.Started)
	logFile, err := os.Create(result.LogPath)
	if err != nil {
		return result, fmt.Errorf("create trainer log: %w", err)
	}
	defer logFile.Close()

	command := Command{
		Binary: filepath.Join(venv, "bin", "python"),
		Args: []string{
			"-u",
			filepath.Join(i.taggersDir, req.Target.Tagger, i.entryScript),
			train,
			dev,
			req.ConfigFile,
			req.DockerDir,
		},
		Dir:    filepath.Join(i.taggersDir, req.Target.Tagger),
		Env:    venvEnv(venv),
		Output: logFile,
	}

	runCtx := ctx
	if i.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	logger.Info("training started", logging.String("log", result.LogPath), logging.String("dataset", req.DatasetDir))
	if req.Started != nil {
		req.Started(result)
	}
	code, err := i.exec.Run(runCtx, command)
	result.Finished = i.now()
	result.ExitCode = code
	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, fmt.Errorf("run trainer: %w", ctxErr)
	}
	if err != nil {
		// Start failures (no venv interpreter after a failed bootstrap) are
		// failed runs.
		fmt.Fprintf(logFile, "%s: %v\n", command.Binary, err)
		if result.ExitCode == 0 {
			result.ExitCode = -1
		}
		logging.WarnWithContext(logger, "trainer could not be started", "trainer_start_failed",
			logging.Error(err),
			logging.String("log", result.LogPath),
			logging.String(logging.FieldErrorHint, "check the bootstrap log for "+req.Target.Tagger),
			logging.String(logging.FieldImpact, "docker context holds no fresh model"),
		)
		return result, nil
	}
	result.TimedOut = errors.Is(runCtx.Err(), context.DeadlineExceeded)

	duration := result.Finished.Sub(result.Started)
	if !result.Succeeded() {
		logging.WarnWithContext(logger, "trainer exited unsuccessfully", "trainer_failed",
			logging.Int("exit_code", code),
			logging.Bool("timed_out", result.TimedOut),
			logging.Duration("duration", duration),
			logging.String("log", result.LogPath),
			logging.String(logging.FieldErrorHint, "inspect the trainer log"),
			logging.String(logging.FieldImpact, "docker context holds no fresh model"),
		)
		return result, nil
	}
	logger.Info("training finished", logging.Duration("duration", duration), logging.String("log", result.LogPath))
	return result, nil
}

func (i *Invoker) splitArg(dir string, split dataset.Split, logger *slog.Logger) (string, error) {
	path, ok, err := dataset.FindSplit(dir, split)
	if err != nil {
		return "", err
	}
	if ok {
		return path, nil
	}
	logging.WarnWithContext(logger, "dataset split missing; trainer receives None", "dataset_split_missing",
		logging.String("split", string(split)),
		logging.String("dataset", dir),
		logging.String(logging.FieldErrorHint, "add a file ending in "+split.Suffix()),
		logging.String(logging.FieldImpact, "trainer runs without this split"),
	)
	return MissingSplit, nil
}
