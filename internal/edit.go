package internal

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/starford/hugoblog/internal/apperr"
	"github.com/starford/hugoblog/internal/postservice"
)

// EditPost opens a local post in the configured editor. With an empty
// filename the user picks one from the listing.
func (a *App) EditPost(ctx context.Context, filename string) error {
	if a.local == nil {
		return fmt.Errorf("edit: %w", apperr.ErrLocalOnly)
	}

	if filename == "" {
		listing, err := a.posts.ListPosts(ctx, postservice.ListOptions{})
		if err != nil {
			return err
		}
		if len(listing.Items) == 0 {
			fmt.Fprintln(a.out, "No blog posts found")
			return nil
		}
		labels := make([]string, len(listing.Items))
		for i, it := range listing.Items {
			labels[i] = fmt.Sprintf("%s (%s)", it.Title, it.Filename)
		}
		idx, err := a.prompter.Select("Select a post to edit", labels)
		if err != nil {
			return err
		}
		filename = listing.Items[idx].Filename
	}
	filename = filepath.Base(filename)

	exists, err := a.posts.Exists(ctx, filename)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("post %s: %w", filename, apperr.ErrNotFound)
	}

	path, err := a.local.Path(filename)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Opening %s in %s\n", filename, a.editor.Command())
	if err := a.editor.Open(ctx, path); err != nil {
		return fmt.Errorf("edit %s: %w", filename, err)
	}
	fmt.Fprintf(a.out, "Finished editing %s\n", filename)
	return nil
}
