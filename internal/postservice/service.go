// Package postservice implements post naming, listing and creation on top of
// a storage.Provider.
package postservice

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/starford/hugoblog/internal/apperr"
	"github.com/starford/hugoblog/internal/frontmatter"
	"github.com/starford/hugoblog/internal/markdown"
	"github.com/starford/hugoblog/internal/models"
	"github.com/starford/hugoblog/internal/storage"
)

// Untitled is shown for posts whose header carries no title.
const Untitled = "Untitled"

// Filter selects which posts a listing returns.
type Filter int

const (
	All Filter = iota
	DraftsOnly
	PublishedOnly
)

// ListOptions controls ListPosts.
type ListOptions struct {
	Filter Filter
	// Summary fills PostListItem.Heading and Summary from the post body.
	Summary bool
}

// Listing is the result of ListPosts. The counters cover every readable post,
// regardless of the filter.
type Listing struct {
	Items     []models.PostListItem `json:"posts" yaml:"posts"`
	Total     int                   `json:"total" yaml:"total"`
	Drafts    int                   `json:"drafts" yaml:"drafts"`
	Published int                   `json:"published" yaml:"published"`
}

var nonSlugRe = regexp.MustCompile(`[^a-z0-9]+`)

// now is replaced in tests.
var now = time.Now

// dateLayouts are the date forms accepted when sorting.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Service coordinates the codec and a storage backend.
type Service struct {
	store      storage.Provider
	logger     zerolog.Logger
	datePrefix bool
}

// Option configures a Service.
type Option func(*Service)

// WithDatePrefix prefixes generated filenames with the creation date.
func WithDatePrefix() Option {
	return func(s *Service) {
		s.datePrefix = true
	}
}

// NewService creates a new post service.
func NewService(store storage.Provider, logger zerolog.Logger, opts ...Option) *Service {
	s := &Service{store: store, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Slug lowercases title, collapses every run of characters outside [a-z0-9]
// to one hyphen and trims hyphens from both ends.
func Slug(title string) string {
	s := nonSlugRe.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(s, "-")
}

// Filename returns the file name a post titled title gets when created at t.
func (s *Service) Filename(title string, t time.Time) (string, error) {
	slug := Slug(title)
	if slug == "" {
		return "", fmt.Errorf("title %q has no usable characters: %w", title, apperr.ErrEmptyInput)
	}
	if s.datePrefix {
		return t.Format("2006-01-02") + "-" + slug + ".md", nil
	}
	return slug + ".md", nil
}

// NameFor returns the file name a post titled title would be created under
// right now.
func (s *Service) NameFor(title string) (string, error) {
	return s.Filename(title, now())
}

// ListPosts reads and decodes every post. Posts that cannot be read are
// logged and skipped. Items are sorted newest first; posts without a usable
// date keep their listing order after all dated posts.
func (s *Service) ListPosts(ctx context.Context, opts ListOptions) (*Listing, error) {
	refs, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	items := make([]models.PostListItem, 0, len(refs))
	for _, ref := range refs {
		data, err := s.store.Read(ctx, ref.ID)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil, err
			}
			s.logger.Warn().Err(err).Str("post", ref.Name).Msg("skipping unreadable post")
			continue
		}
		items = append(items, listItem(ref, string(data), opts.Summary))
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].Time, items[j].Time
		if a.IsZero() || b.IsZero() {
			return !a.IsZero() && b.IsZero()
		}
		return a.After(b)
	})

	out := &Listing{Items: make([]models.PostListItem, 0, len(items)), Total: len(items)}
	for _, it := range items {
		if it.Draft {
			out.Drafts++
		} else {
			out.Published++
		}
		if opts.Filter == DraftsOnly && !it.Draft || opts.Filter == PublishedOnly && it.Draft {
			continue
		}
		out.Items = append(out.Items, it)
	}

	s.logger.Debug().
		Int("total", out.Total).
		Int("shown", len(out.Items)).
		Msg("posts listed")
	return out, nil
}

func listItem(ref models.PostRef, raw string, summary bool) models.PostListItem {
	meta, body := frontmatter.Parse(raw)
	it := models.PostListItem{
		Filename: ref.Name,
		Title:    meta.Title,
		Date:     meta.Date,
		Draft:    meta.IsDraft(),
		Tags:     meta.Tags,
		Time:     ParseDate(meta.Date),
	}
	if it.Title == "" {
		it.Title = Untitled
	}
	if it.Tags == nil {
		it.Tags = []string{}
	}
	if summary {
		s := markdown.Summarize(body)
		it.Heading, it.Summary = s.Heading, s.Snippet
	}
	return it
}

// ParseDate parses the date forms found in post headers. It returns the zero
// time when date is empty or unparseable.
func ParseDate(date string) time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, date); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Drafts returns every post whose effective draft flag is set.
func (s *Service) Drafts(ctx context.Context) ([]models.PostListItem, error) {
	l, err := s.ListPosts(ctx, ListOptions{Filter: DraftsOnly})
	if err != nil {
		return nil, err
	}
	return l.Items, nil
}

// ReadRaw returns the stored text of the post named name.
func (s *Service) ReadRaw(ctx context.Context, name string) ([]byte, error) {
	return s.store.Read(ctx, s.store.Locate(name))
}

// GetPost reads and decodes the post stored under name.
func (s *Service) GetPost(ctx context.Context, name string) (*models.Post, error) {
	ref := models.PostRef{Name: name, ID: s.store.Locate(name)}
	data, err := s.ReadRaw(ctx, name)
	if err != nil {
		return nil, err
	}
	meta, body := frontmatter.Parse(string(data))
	return &models.Post{Ref: ref, Metadata: meta, Body: body}, nil
}

// Exists reports whether a post named name is already stored.
func (s *Service) Exists(ctx context.Context, name string) (bool, error) {
	refs, err := s.store.List(ctx)
	if err != nil {
		return false, err
	}
	for _, r := range refs {
		if r.Name == name {
			return true, nil
		}
	}
	return false, nil
}

// checkSingleLine rejects header values that would spill onto another line.
func checkSingleLine(meta models.PostMetadata) error {
	fields := []struct {
		name   string
		values []string
	}{
		{"title", []string{meta.Title}},
		{"date", []string{meta.Date}},
		{"author", []string{meta.Author}},
		{"tags", meta.Tags},
		{"categories", meta.Categories},
	}
	for _, f := range fields {
		for _, v := range f.values {
			if strings.ContainsAny(v, "\r\n") {
				return fmt.Errorf("%s %q contains a line break: %w", f.name, v, apperr.ErrBadInput)
			}
		}
	}
	return nil
}

// CreatePost encodes meta and body and stores them under a name derived from
// the title. It fails with apperr.ErrConflict when that name is taken; the
// existing post is left untouched.
func (s *Service) CreatePost(ctx context.Context, meta models.PostMetadata, body string) (models.PostRef, error) {
	if strings.TrimSpace(meta.Title) == "" {
		return models.PostRef{}, fmt.Errorf("title: %w", apperr.ErrEmptyInput)
	}
	if err := checkSingleLine(meta); err != nil {
		return models.PostRef{}, err
	}

	t := now()
	if meta.Date == "" {
		meta.Date = t.Format(time.RFC3339)
	}
	name, err := s.Filename(meta.Title, t)
	if err != nil {
		return models.PostRef{}, err
	}

	ref := models.PostRef{Name: name, ID: s.store.Locate(name)}
	doc := frontmatter.Document(meta, body)
	if err := s.store.Create(ctx, ref.ID, []byte(doc), "Add new blog post: "+name); err != nil {
		return models.PostRef{}, fmt.Errorf("create %s: %w", name, err)
	}

	s.logger.Debug().Str("post", ref.ID).Msg("post created")
	return ref, nil
}
