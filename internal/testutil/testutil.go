// Package testutil provides shared test helpers for content directories and
// external programs.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/starford/hugoblog/internal/proc"
	"github.com/starford/hugoblog/internal/storage"
)

// TestContentDir creates a temporary content directory with a local provider.
func TestContentDir(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// WritePost writes a post file directly, bypassing the provider.
func WritePost(t *testing.T, dir, name, doc string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
}

// Result is the scripted outcome of one command in a Runner.
type Result struct {
	Output string
	Err    error
}

// Runner is a proc.Runner that records invocations and answers from a script
// keyed by the command line ("git status --porcelain"). Unscripted commands
// succeed with no output.
type Runner struct {
	Script map[string]Result
	Calls  []proc.Cmd
	// Block makes Run wait for ctx cancellation for matching command names.
	Block map[string]bool

	mu sync.Mutex
}

var _ proc.Runner = (*Runner)(nil)

// NewRunner creates an empty Runner.
func NewRunner() *Runner {
	return &Runner{Script: map[string]Result{}, Block: map[string]bool{}}
}

func (r *Runner) record(c proc.Cmd) Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls = append(r.Calls, c)
	return r.Script[c.String()]
}

func (r *Runner) Run(ctx context.Context, c proc.Cmd) error {
	res := r.record(c)
	r.mu.Lock()
	block := r.Block[c.Name]
	r.mu.Unlock()
	if block {
		<-ctx.Done()
		return nil
	}
	return res.Err
}

func (r *Runner) Output(_ context.Context, c proc.Cmd) (string, error) {
	res := r.record(c)
	return res.Output, res.Err
}

// Commands returns the recorded command lines in order.
func (r *Runner) Commands() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.Calls))
	for i, c := range r.Calls {
		out[i] = c.String()
	}
	return out
}

// Ran reports whether a command line starting with prefix was recorded.
func (r *Runner) Ran(prefix string) bool {
	for _, c := range r.Commands() {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}
