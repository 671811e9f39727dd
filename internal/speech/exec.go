package speech

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// #region exec-engine

// ExecEngine shells out to a local text-to-speech command (espeak, say,
// flite). The message text is appended as the final argument.
type ExecEngine struct {
	command string
	args    []string
}

// NewExecEngine parses a command line like "espeak -s 160" into an engine.
func NewExecEngine(commandLine string) (*ExecEngine, error) {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty speech command")
	}
	return &ExecEngine{command: fields[0], args: fields[1:]}, nil
}

// Speak implements Engine.
func (e *ExecEngine) Speak(ctx context.Context, text string) error {
	args := append(append([]string{}, e.args...), text)
	cmd := exec.CommandContext(ctx, e.command, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("run %s: %w (%s)", e.command, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// #endregion exec-engine
