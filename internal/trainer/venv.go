package trainer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gofrs/flock"

	"tagtrain/internal/logging"
)

const (
	venvDirName  = "venv"
	venvLockName = ".venv.lock"
	lockRetry    = 500 * time.Millisecond
)

// VenvDir returns the virtual environment folder of tagger.
func (i *Invoker) VenvDir(tagger string) string {
	return filepath.Join(i.taggersDir, tagger, venvDirName)
}

// EnsureEnv creates the tagger's virtual environment and installs its
// requirements when the environment folder does not exist yet. Concurrent
// callers for the same tagger serialize on a lock file; the loser finds the
// environment already present. A missing tagger folder is created so the
// bootstrap runs (and fails in its log) like for any other tagger.
func (i *Invoker) EnsureEnv(ctx context.Context, tagger string) (string, error) {
	venv := i.VenvDir(tagger)
	if ok, err := dirExists(venv); err != nil || ok {
		return venv, err
	}

	taggerDir := filepath.Join(i.taggersDir, tagger)
	if err := os.MkdirAll(taggerDir, 0o755); err != nil {
		return "", fmt.Errorf("create tagger directory: %w", err)
	}
	lock := flock.New(filepath.Join(taggerDir, venvLockName))
	locked, err := lock.TryLockContext(ctx, lockRetry)
	if err != nil {
		return "", fmt.Errorf("acquire venv lock for %s: %w", tagger, err)
	}
	if !locked {
		return "", fmt.Errorf("acquire venv lock for %s: lock not obtained", tagger)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	if ok, err := dirExists(venv); err != nil || ok {
		return venv, err
	}
	return venv, i.bootstrap(ctx, tagger, venv)
}

func (i *Invoker) bootstrap(ctx context.Context, tagger, venv string) error {
	logger := logging.NewComponentLogger(i.logger, "venv").With(logging.String(logging.FieldTarget, tagger))

	if err := os.MkdirAll(i.logsDir, 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	logPath := filepath.Join(i.logsDir, tagger+"-venv-"+strconv.FormatInt(i.now().Unix(), 10)+".txt")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open bootstrap log: %w", err)
	}
	defer logFile.Close()

	logger.Info("creating virtual environment", logging.String("venv", venv), logging.String("log", logPath))

	steps := []Command{
		{
			Binary: i.python,
			Args:   []string{"-m", "venv", venv},
			Dir:    filepath.Join(i.taggersDir, tagger),
			Output: logFile,
		},
		{
			Binary: "sh",
			Args:   []string{i.requirementsScript},
			Dir:    filepath.Join(i.taggersDir, tagger, tagger),
			Env:    venvEnv(venv),
			Output: logFile,
		},
	}
	for _, step := range steps {
		code, err := i.exec.Run(ctx, step)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return fmt.Errorf("bootstrap %s: %w", tagger, ctxErr)
			}
			fmt.Fprintf(logFile, "%s: %v\n", step.Binary, err)
		}
		if err != nil || code != 0 {
			logging.WarnWithContext(logger, "virtual environment bootstrap step failed", "venv_bootstrap_failed",
				logging.String("command", step.Binary),
				logging.Int("exit_code", code),
				logging.Error(err),
				logging.String("log", logPath),
				logging.String(logging.FieldErrorHint, "inspect the bootstrap log and rerun after removing the venv folder"),
				logging.String(logging.FieldImpact, "trainer may fail on missing packages"),
			)
		}
	}
	return nil
}

// venvEnv activates venv for a child process.
func venvEnv(venv string) []string {
	bin := filepath.Join(venv, "bin")
	return []string{
		"VIRTUAL_ENV=" + venv,
		"PATH=" + bin + string(os.PathListSeparator) + os.Getenv("PATH"),
	}
}

func dirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	return info.IsDir(), nil
}
