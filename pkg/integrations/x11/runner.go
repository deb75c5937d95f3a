package x11

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ErrQueryTimeout is returned when a query tool does not finish within the runner timeout
var ErrQueryTimeout = errors.New("query timed out")

// Runner executes an external query tool and returns its decoded standard output
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// CommandError describes a query tool that ran but exited with a non-zero status
type CommandError struct {
	Name     string
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("command failed: %s %s (exit status %d)", e.Name, strings.Join(e.Args, " "), e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// ExecRunner runs tools with os/exec, killing them after Timeout when it is positive
type ExecRunner struct {
	Timeout time.Duration
}

func (r ExecRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	output, err := exec.CommandContext(ctx, name, args...).Output()
	stdout := decodeOutput(output)
	if err == nil {
		return stdout, nil
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return stdout, fmt.Errorf("%s: %w after %v", name, ErrQueryTimeout, r.Timeout)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return stdout, &CommandError{
			Name:     name,
			Args:     args,
			ExitCode: exitErr.ExitCode(),
			Stderr:   strings.TrimSpace(decodeOutput(exitErr.Stderr)),
		}
	}

	return stdout, fmt.Errorf("failed to execute %s: %w", name, err)
}

// decodeOutput treats tool output as UTF-8, replacing invalid sequences
func decodeOutput(b []byte) string {
	return strings.ToValidUTF8(string(b), "\uFFFD")
}
