package entry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"tagtrain/internal/config"
	"tagtrain/internal/logging"
	"tagtrain/internal/trainer"
)

// Settings are the trainer parameters pie reads from its environment.
type Settings struct {
	ModelName string
	ModelPath string
	InputPath string
	DevPath   string
	Device    string
}

// NewSettings derives Settings from the four positional trainer paths. The
// model is named after the output folder.
func NewSettings(train, dev, output, device string) (Settings, error) {
	output = strings.TrimRight(strings.TrimSpace(output), "/")
	if output == "" {
		return Settings{}, errors.New("output folder required")
	}
	if strings.TrimSpace(train) == "" {
		return Settings{}, errors.New("train path required")
	}
	return Settings{
		ModelName: filepath.Base(output),
		ModelPath: output,
		InputPath: train,
		DevPath:   dev,
		Device:    device,
	}, nil
}

// Env renders the settings as KEY=value pairs for a child process.
func (s Settings) Env() []string {
	return []string{
		"PIE_MODELNAME=" + s.ModelName,
		"PIE_MODELPATH=" + s.ModelPath,
		"PIE_INPUT_PATH=" + s.InputPath,
		"PIE_DEV_PATH=" + s.DevPath,
		"PIE_DEVICE=" + s.Device,
	}
}

// Runner launches pie's training script.
type Runner struct {
	Python string
	Script string
	Exec   trainer.Executor
	Output io.Writer
	Logger *slog.Logger
}

// NewRunner builds a Runner from the application config. Without an explicit
// pie.script, the script is {taggers}/pie/pie/train.py.
func NewRunner(cfg *config.Config, output io.Writer, logger *slog.Logger) Runner {
	script := cfg.Pie.Script
	if script == "" {
		script = DefaultScript(cfg.Paths.TaggersDir)
	}
	return Runner{
		Python: "python",
		Script: script,
		Exec:   trainer.NewCommandExecutor(),
		Output: output,
		Logger: logger,
	}
}

// DefaultScript returns pie's training script below taggersDir.
func DefaultScript(taggersDir string) string {
	return filepath.Join(taggersDir, "pie", "pie", "train.py")
}

// Run executes `{python} {script} {configFile}` with settings in the child
// environment and returns the child's exit code.
func (r Runner) Run(ctx context.Context, settings Settings, configFile string) (int, error) {
	logger := logging.NewComponentLogger(r.Logger, "entry")
	exec := r.Exec
	if exec == nil {
		exec = trainer.NewCommandExecutor()
	}

	logger.Info("starting pie training",
		logging.String("model", settings.ModelName),
		logging.String("device", settings.Device),
		logging.String("config", configFile),
	)
	code, err := exec.Run(ctx, trainer.Command{
		Binary: r.Python,
		Args:   []string{r.Script, configFile},
		Env:    settings.Env(),
		Output: r.Output,
	})
	if err != nil {
		return code, fmt.Errorf("run pie: %w", err)
	}
	if code != 0 {
		logging.WarnWithContext(logger, "pie training exited unsuccessfully", "trainer_failed",
			logging.Int("exit_code", code),
			logging.String(logging.FieldImpact, "no model written to "+settings.ModelPath),
		)
	}
	return code, nil
}
