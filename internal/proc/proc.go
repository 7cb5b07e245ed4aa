// Package proc runs external programs and reports failures as
// *apperr.ProcessError.
package proc

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"

	"github.com/starford/hugoblog/internal/apperr"
)

// Cmd describes one program invocation.
type Cmd struct {
	Name string
	Args []string
	// Dir is the working directory; empty means the current one.
	Dir string
}

func (c Cmd) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Runner starts programs.
type Runner interface {
	// Run attaches the program to the runner's terminal streams and waits.
	Run(ctx context.Context, c Cmd) error
	// Output captures standard output. Standard error is folded into the
	// returned error on failure.
	Output(ctx context.Context, c Cmd) (string, error)
}

// Exec is the os/exec backed Runner.
type Exec struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

var _ Runner = (*Exec)(nil)

func (e *Exec) Run(ctx context.Context, c Cmd) error {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr
	return wrap(c, cmd.Run(), nil)
}

func (e *Exec) Output(ctx context.Context, c Cmd) (string, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return "", wrap(c, err, stderr.Bytes())
	}
	return strings.TrimSpace(string(out)), nil
}

func wrap(c Cmd, err error, stderr []byte) error {
	if err == nil {
		return nil
	}
	perr := &apperr.ProcessError{Name: c.Name, Err: err}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		perr.ExitCode = exitErr.ExitCode()
		if perr.ExitCode > 0 {
			perr.Err = nil
			if msg := strings.TrimSpace(string(stderr)); msg != "" {
				perr.Err = errors.New(msg)
			}
		}
	}
	return perr
}
