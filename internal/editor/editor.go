// Package editor opens files in the user's editor.
package editor

import (
	"context"
	"fmt"
	"strings"

	"github.com/starford/hugoblog/internal/proc"
)

// Editor launches a configured editor command such as "code" or "vim" or
// "code --wait". The file path is appended as the last argument.
type Editor struct {
	command string
	runner  proc.Runner
}

// New creates an Editor.
func New(command string, runner proc.Runner) *Editor {
	return &Editor{command: command, runner: runner}
}

// Command returns the configured editor command.
func (e *Editor) Command() string {
	return e.command
}

// Open blocks until the editor exits.
func (e *Editor) Open(ctx context.Context, path string) error {
	fields := strings.Fields(e.command)
	if len(fields) == 0 {
		return fmt.Errorf("no editor configured")
	}
	args := append(fields[1:len(fields):len(fields)], path)
	return e.runner.Run(ctx, proc.Cmd{Name: fields[0], Args: args})
}
