package internal

import (
	"context"
	"fmt"

	"github.com/starford/hugoblog/internal/apperr"
	"github.com/starford/hugoblog/internal/hugo"
)

// DefaultCommitMessage is offered when publishing.
const DefaultCommitMessage = "Update blog"

// Publish builds the site, commits every change in the site repository and
// pushes the current branch.
func (a *App) Publish(ctx context.Context) error {
	if a.local == nil {
		return fmt.Errorf("publish: %w", apperr.ErrLocalOnly)
	}

	drafts, err := a.posts.Drafts(ctx)
	if err != nil {
		return err
	}
	if len(drafts) > 0 {
		fmt.Fprintf(a.out, "Found %d draft post(s):\n", len(drafts))
		for _, d := range drafts {
			fmt.Fprintf(a.out, "  - %s (%s)\n", d.Title, d.Filename)
		}
		ok, err := a.prompter.Confirm("Continue with draft posts included?", false)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(a.out, "Set draft: false on the posts you want to publish.")
			return apperr.ErrCancelled
		}
	}

	changed, err := a.git.HasChanges(ctx)
	if err != nil {
		return fmt.Errorf("check changes: %w", err)
	}
	if !changed {
		fmt.Fprintln(a.out, "No changes to publish")
		return nil
	}

	files, err := a.git.ChangedFiles(ctx)
	if err != nil {
		a.logger.Debug().Err(err).Msg("could not list changed files")
	} else if len(files) > 0 {
		fmt.Fprintln(a.out, "Changed files:")
		for _, f := range files {
			fmt.Fprintf(a.out, "  %s\n", f)
		}
	}

	ok, err := a.prompter.Confirm("Ready to publish these changes?", true)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.ErrCancelled
	}

	fmt.Fprintln(a.out, "Building Hugo site...")
	if err := a.hugo.Build(ctx); err != nil {
		return fmt.Errorf("build site: %w", err)
	}

	message, err := a.commitMessage()
	if err != nil {
		return err
	}

	if err := a.git.SetIdentity(ctx, a.cfg.Git.AuthorName, a.cfg.Git.AuthorEmail); err != nil {
		return fmt.Errorf("set git identity: %w", err)
	}
	fmt.Fprintln(a.out, "Committing changes...")
	if err := a.git.CommitAll(ctx, message); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	fmt.Fprintln(a.out, "Pushing to remote...")
	if err := a.git.Push(ctx, ""); err != nil {
		return fmt.Errorf("push: %w", err)
	}

	fmt.Fprintln(a.out, "Your blog has been published!")
	if site, err := hugo.LoadSite(a.siteDir); err == nil && site.BaseURL != "" {
		fmt.Fprintf(a.out, "Site: %s\n", site.BaseURL)
	}
	return nil
}

func (a *App) commitMessage() (string, error) {
	useDefault, err := a.prompter.Confirm(fmt.Sprintf("Use default commit message (%q)?", DefaultCommitMessage), true)
	if err != nil {
		return "", err
	}
	message := DefaultCommitMessage
	if !useDefault {
		if message, err = a.prompter.Text("Commit message", DefaultCommitMessage); err != nil {
			return "", err
		}
	}
	if prefix := a.cfg.Git.CommitPrefix; prefix != "" {
		message = prefix + " " + message
	}
	return message, nil
}
