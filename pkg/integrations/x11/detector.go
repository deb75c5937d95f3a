package x11

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"

	"github.com/titlemirror/titlemirror/pkg/window"
)

const (
	locateTool    = "xdotool"
	propertyTool  = "xprop"
	titleProperty = "WM_NAME"
)

// Detector implements window.Source with xdotool (lookup) and xprop (title)
type Detector struct {
	runner     Runner
	hasXdotool bool
	hasXprop   bool
}

// NewDetector creates a new X11 detector backed by the given runner
func NewDetector(runner Runner) *Detector {
	d := &Detector{runner: runner}
	d.hasXdotool = d.commandExists(locateTool)
	d.hasXprop = d.commandExists(propertyTool)
	return d
}

// commandExists checks if a command is available in PATH
func (d *Detector) commandExists(cmd string) bool {
	_, err := exec.LookPath(cmd)
	return err == nil
}

// IsAvailable reports whether both query tools are installed
func (d *Detector) IsAvailable() bool {
	return d.hasXdotool && d.hasXprop
}

// Name returns "xprop"
func (d *Detector) Name() string {
	return "xprop"
}

// Locate finds the first window whose WM_CLASS instance name matches className
func (d *Detector) Locate(ctx context.Context, className string) (window.Lookup, error) {
	output, err := d.runner.Run(ctx, locateTool, "search", "--classname", "--limit", "1", className)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return window.Lookup{}, ctxErr
		}

		// xdotool reports "no matches" as a silent exit status 1
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) && cmdErr.ExitCode == 1 && cmdErr.Stderr == "" && strings.TrimSpace(output) == "" {
			return window.NoWindow(), nil
		}

		if isQueryFailure(err) {
			return window.QueryFailed(err), nil
		}
		return window.Lookup{}, fmt.Errorf("failed to run %s: %w", locateTool, err)
	}

	id := firstLine(output)
	if id == "" {
		return window.NoWindow(), nil
	}
	return window.FoundWindow(window.ID(id)), nil
}

// ReadTitle queries WM_NAME of the window and extracts its value
func (d *Detector) ReadTitle(ctx context.Context, id window.ID) (string, error) {
	output, err := d.runner.Run(ctx, propertyTool, "-id", string(id), titleProperty)
	if err != nil {
		return "", fmt.Errorf("failed to query %s of window %s: %w", titleProperty, id, err)
	}
	return ParseTitle(output), nil
}

// ParseTitle extracts the value from xprop output like: WM_NAME(UTF8_STRING) = "title"
// Output without '=' (e.g. "WM_NAME:  not found.") yields an empty title.
func ParseTitle(output string) string {
	_, value, ok := strings.Cut(output, "=")
	if !ok {
		return ""
	}

	value = strings.TrimSpace(value)
	value = strings.TrimPrefix(value, `"`)
	value = strings.TrimSuffix(value, `"`)
	return strings.TrimSpace(value)
}

// isQueryFailure reports errors that mean "the tool could not answer" rather than
// "the tool could not be run at all"
func isQueryFailure(err error) bool {
	var cmdErr *CommandError
	switch {
	case errors.As(err, &cmdErr):
		return true
	case errors.Is(err, ErrQueryTimeout):
		return true
	case errors.Is(err, exec.ErrNotFound):
		return true
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission):
		return true
	}
	return false
}

func firstLine(output string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(output), "\n")
	return strings.TrimSpace(line)
}

// Close cleans up resources
func (d *Detector) Close() error {
	return nil
}
