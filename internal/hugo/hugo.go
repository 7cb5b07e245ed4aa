// Package hugo drives the hugo binary and reads the site configuration.
package hugo

import (
	"context"
	"errors"
	"strconv"

	"github.com/starford/hugoblog/internal/proc"
)

// DefaultPort is the preview server port.
const DefaultPort = 1313

// Hugo runs hugo in one site directory.
type Hugo struct {
	dir    string
	runner proc.Runner
}

// New creates a Hugo for the site at dir. An empty dir means the current
// directory.
func New(dir string, runner proc.Runner) *Hugo {
	return &Hugo{dir: dir, runner: runner}
}

// Build renders the site.
func (h *Hugo) Build(ctx context.Context) error {
	return h.runner.Run(ctx, proc.Cmd{Name: "hugo", Dir: h.dir})
}

// Serve runs the development server with drafts enabled until it exits or
// ctx is cancelled. Cancellation is a normal stop and returns nil.
func (h *Hugo) Serve(ctx context.Context, port int) error {
	err := h.runner.Run(ctx, proc.Cmd{
		Name: "hugo",
		Args: []string{"server", "--buildDrafts", "--port", strconv.Itoa(port)},
		Dir:  h.dir,
	})
	if err != nil && errors.Is(ctx.Err(), context.Canceled) {
		return nil
	}
	return err
}
