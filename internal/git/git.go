// Package git wraps the git commands used to publish a local site.
package git

import (
	"context"
	"strings"

	"github.com/starford/hugoblog/internal/proc"
)

// Repo runs git in one working tree.
type Repo struct {
	dir    string
	runner proc.Runner
}

// New creates a Repo rooted at dir. An empty dir means the current directory.
func New(dir string, runner proc.Runner) *Repo {
	return &Repo{dir: dir, runner: runner}
}

func (r *Repo) output(ctx context.Context, args ...string) (string, error) {
	return r.runner.Output(ctx, proc.Cmd{Name: "git", Args: args, Dir: r.dir})
}

// HasChanges reports whether the working tree has uncommitted changes.
func (r *Repo) HasChanges(ctx context.Context) (bool, error) {
	out, err := r.output(ctx, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return out != "", nil
}

// ChangedFiles lists tracked files that differ from HEAD.
func (r *Repo) ChangedFiles(ctx context.Context) ([]string, error) {
	out, err := r.output(ctx, "diff", "--name-only", "HEAD")
	if err != nil {
		return nil, err
	}
	var files []string
	for _, line := range strings.Split(out, "\n") {
		if f := strings.TrimSpace(line); f != "" {
			files = append(files, f)
		}
	}
	return files, nil
}

// CurrentBranch returns the checked out branch name.
func (r *Repo) CurrentBranch(ctx context.Context) (string, error) {
	return r.output(ctx, "rev-parse", "--abbrev-ref", "HEAD")
}

// SetIdentity writes user.name and user.email into the repository config.
// Empty values are left untouched.
func (r *Repo) SetIdentity(ctx context.Context, name, email string) error {
	if name != "" {
		if _, err := r.output(ctx, "config", "user.name", name); err != nil {
			return err
		}
	}
	if email != "" {
		if _, err := r.output(ctx, "config", "user.email", email); err != nil {
			return err
		}
	}
	return nil
}

// CommitAll stages every change and commits with message.
func (r *Repo) CommitAll(ctx context.Context, message string) error {
	if _, err := r.output(ctx, "add", "."); err != nil {
		return err
	}
	_, err := r.output(ctx, "commit", "-m", message)
	return err
}

// Push pushes branch to origin, or the current branch when branch is empty.
func (r *Repo) Push(ctx context.Context, branch string) error {
	if branch == "" {
		b, err := r.CurrentBranch(ctx)
		if err != nil {
			return err
		}
		branch = b
	}
	_, err := r.output(ctx, "push", "origin", branch)
	return err
}
