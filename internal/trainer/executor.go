package trainer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Command describes a subprocess invocation. Args never pass through a shell.
type Command struct {
	Binary string
	Args   []string
	Dir    string
	// Env is appended to the parent environment of the child only.
	Env []string
	// Output receives combined stdout and stderr. Nil discards it.
	Output io.Writer
}

// Executor abstracts command execution for testability. It returns the exit
// code of a process that ran; err is set only when the process could not be
// started or waited on.
type Executor interface {
	Run(ctx context.Context, cmd Command) (int, error)
}

// NewCommandExecutor returns the os/exec backed Executor.
func NewCommandExecutor() Executor {
	return commandExecutor{}
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, command Command) (int, error) {
	cmd := exec.CommandContext(ctx, command.Binary, command.Args...) //nolint:gosec
	cmd.Dir = command.Dir
	if len(command.Env) > 0 {
		cmd.Env = append(os.Environ(), command.Env...)
	}
	if command.Output != nil {
		cmd.Stdout = command.Output
		cmd.Stderr = command.Output
	}
	if err := cmd.Start(); err != nil {
		return -1, fmt.Errorf("start %s: %w", command.Binary, err)
	}
	err := cmd.Wait()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, fmt.Errorf("wait %s: %w", command.Binary, err)
}
