package internal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/starford/hugoblog/internal/apperr"
	"github.com/starford/hugoblog/internal/models"
	"github.com/starford/hugoblog/internal/prompt"
)

// NewOptions controls NewPost.
type NewOptions struct {
	// AI rewrites raw notes into the post body with the text generator.
	AI bool
}

// NewPost asks for the post metadata, optionally generates the body and
// stores the post. In local mode it then offers to open the file in the
// editor.
func (a *App) NewPost(ctx context.Context, opts NewOptions) error {
	fmt.Fprintln(a.out, "Creating a new blog post")

	title, err := a.prompter.Text("Title", "")
	if err != nil {
		return err
	}
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title: %w", apperr.ErrEmptyInput)
	}

	name, err := a.posts.NameFor(title)
	if err != nil {
		return err
	}
	exists, err := a.posts.Exists(ctx, name)
	if err != nil {
		return fmt.Errorf("check %s: %w", name, err)
	}
	if exists {
		return fmt.Errorf("post %s: %w", name, apperr.ErrConflict)
	}

	meta := models.PostMetadata{Title: strings.TrimSpace(title)}
	if meta.Tags, err = a.askList("Add tags?", "Tags (comma-separated)"); err != nil {
		return err
	}
	if meta.Categories, err = a.askList("Add categories?", "Categories (comma-separated)"); err != nil {
		return err
	}
	if meta.Author, err = a.prompter.Text("Author", a.cfg.DefaultAuthor()); err != nil {
		return err
	}
	draft, err := a.prompter.Confirm("Save as draft?", true)
	if err != nil {
		return err
	}
	meta.Draft = models.Bool(draft)

	body := ""
	if opts.AI {
		body, err = a.generateBody(ctx)
		if err != nil {
			return err
		}
	} else {
		fmt.Fprintln(a.out, "Tip: the post body starts empty. Write it in your editor or use --ai next time.")
	}

	ref, err := a.posts.CreatePost(ctx, meta, body)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created new post: %s\n", ref.Name)

	if a.local == nil {
		fmt.Fprintf(a.out, "Committed %s to %s\n", ref.ID, a.cfg.GitHub.FullName())
		return nil
	}
	return a.offerEditor(ctx, ref.ID)
}

func (a *App) askList(question, label string) ([]string, error) {
	ok, err := a.prompter.Confirm(question, false)
	if err != nil || !ok {
		return nil, err
	}
	raw, err := a.prompter.Text(label, "")
	if err != nil {
		return nil, err
	}
	return prompt.SplitList(raw), nil
}

func (a *App) generateBody(ctx context.Context) (string, error) {
	raw, err := a.prompter.Multiline("Enter your raw thoughts")
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("raw text: %w", apperr.ErrEmptyInput)
	}

	fmt.Fprintln(a.out, "Generating blog post...")
	body, err := a.gen.Generate(ctx, raw)
	if err != nil {
		return "", fmt.Errorf("generate post: %w", err)
	}
	if !strings.HasSuffix(body, "\n") {
		body += "\n"
	}

	fmt.Fprintln(a.out, "--- Generated Preview ---")
	fmt.Fprint(a.out, body)
	fmt.Fprintln(a.out, "--- End Preview ---")

	ok, err := a.prompter.Confirm("Save this post?", true)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", apperr.ErrCancelled
	}
	return body, nil
}

func (a *App) offerEditor(ctx context.Context, id string) error {
	path, err := a.local.Path(id)
	if err != nil {
		return err
	}
	open, err := a.prompter.Confirm("Open the post in your editor?", true)
	if err != nil && !errors.Is(err, apperr.ErrCancelled) {
		return err
	}
	if !open {
		fmt.Fprintf(a.out, "File location: %s\n", path)
		return nil
	}
	if err := a.editor.Open(ctx, path); err != nil {
		a.logger.Warn().Err(err).Str("editor", a.editor.Command()).Msg("failed to open editor")
		fmt.Fprintf(a.out, "File location: %s\n", path)
	}
	return nil
}
