package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/hugoblog/internal/models"
	"github.com/starford/hugoblog/internal/postservice"
)

// List output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ListOptions controls ListPosts.
type ListOptions struct {
	Filter  postservice.Filter
	Format  string
	Summary bool
}

// ListPosts prints the posts newest first followed by totals.
func (a *App) ListPosts(ctx context.Context, opts ListOptions) error {
	switch opts.Format {
	case "", FormatText, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("unknown format %q: use text, json or yaml", opts.Format)
	}

	listing, err := a.posts.ListPosts(ctx, postservice.ListOptions{Filter: opts.Filter, Summary: opts.Summary})
	if err != nil {
		return err
	}

	switch opts.Format {
	case FormatJSON:
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(listing)
	case FormatYAML:
		enc := yaml.NewEncoder(a.out)
		enc.SetIndent(2)
		if err := enc.Encode(listing); err != nil {
			return err
		}
		return enc.Close()
	}

	a.printListing(listing, opts.Filter)
	return nil
}

func (a *App) printListing(l *postservice.Listing, filter postservice.Filter) {
	if l.Total == 0 {
		fmt.Fprintln(a.out, "No blog posts found")
		return
	}
	if len(l.Items) == 0 {
		switch filter {
		case postservice.DraftsOnly:
			fmt.Fprintln(a.out, "No draft posts found")
		case postservice.PublishedOnly:
			fmt.Fprintln(a.out, "No published posts found")
		}
	}

	for i, it := range l.Items {
		status := "Published"
		if it.Draft {
			status = "Draft"
		}
		fmt.Fprintf(a.out, "%d. [%s] %s\n", i+1, status, it.Title)
		fmt.Fprintf(a.out, "   Date: %s | File: %s\n", displayDate(it), it.Filename)
		if len(it.Tags) > 0 {
			fmt.Fprintf(a.out, "   Tags: %s\n", strings.Join(it.Tags, ", "))
		}
		if it.Heading != "" && it.Heading != it.Title {
			fmt.Fprintf(a.out, "   Heading: %s\n", it.Heading)
		}
		if it.Summary != "" {
			fmt.Fprintf(a.out, "   %s\n", it.Summary)
		}
		fmt.Fprintln(a.out)
	}

	fmt.Fprintf(a.out, "Total: %d posts (%d drafts, %d published)\n", l.Total, l.Drafts, l.Published)
}

func displayDate(it models.PostListItem) string {
	switch {
	case !it.Time.IsZero():
		return it.Time.Format("2006-01-02")
	case it.Date != "":
		return it.Date
	default:
		return "unknown"
	}
}
