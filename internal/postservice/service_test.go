package postservice

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/starford/hugoblog/internal/apperr"
	"github.com/starford/hugoblog/internal/models"
	"github.com/starford/hugoblog/internal/storage"
)

func testService(t *testing.T, opts ...Option) (*Service, *storage.FS) {
	t.Helper()
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewService(store, zerolog.Nop(), opts...), store
}

func fixedNow(t *testing.T, at time.Time) {
	t.Helper()
	orig := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = orig })
}

func put(t *testing.T, store storage.Provider, name, doc string) {
	t.Helper()
	if err := store.Create(context.Background(), store.Locate(name), []byte(doc), ""); err != nil {
		t.Fatalf("seed %s: %v", name, err)
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Hello, World! 2024", "hello-world-2024"},
		{"  --Weird--  ", "weird"},
		{"Go 1.22: What's New?", "go-1-22-what-s-new"},
		{"Ünïcode Títle", "n-code-t-tle"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		if got := Slug(tt.in); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFilename(t *testing.T) {
	at := time.Date(2024, 3, 9, 23, 0, 0, 0, time.UTC)

	local, _ := testService(t, WithDatePrefix())
	got, err := local.Filename("Hello, World!", at)
	if err != nil || got != "2024-03-09-hello-world.md" {
		t.Errorf("local filename = %q, %v", got, err)
	}

	remote, _ := testService(t)
	got, err = remote.Filename("Hello, World!", at)
	if err != nil || got != "hello-world.md" {
		t.Errorf("remote filename = %q, %v", got, err)
	}

	if _, err := remote.Filename("???", at); !errors.Is(err, apperr.ErrEmptyInput) {
		t.Errorf("err = %v, want ErrEmptyInput", err)
	}

	fixedNow(t, at)
	if got, _ := local.NameFor("Hello, World!"); got != "2024-03-09-hello-world.md" {
		t.Errorf("NameFor = %q", got)
	}
}

func TestListPosts_DraftsSortedByDate(t *testing.T) {
	svc, store := testService(t)
	put(t, store, "old-draft.md", "---\ntitle: \"Old draft\"\ndate: 2023-01-01\ndraft: true\n---\n")
	put(t, store, "published.md", "---\ntitle: \"Published\"\ndate: 2024-06-01\ndraft: false\n---\n")
	put(t, store, "new-draft.md", "---\ntitle: \"New draft\"\ndate: 2024-02-01T10:00:00Z\n---\n")

	l, err := svc.ListPosts(context.Background(), ListOptions{Filter: DraftsOnly})
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if len(l.Items) != 2 {
		t.Fatalf("items = %v, want 2 drafts", l.Items)
	}
	if l.Items[0].Title != "New draft" || l.Items[1].Title != "Old draft" {
		t.Errorf("order = %q, %q", l.Items[0].Title, l.Items[1].Title)
	}
	if l.Total != 3 || l.Drafts != 2 || l.Published != 1 {
		t.Errorf("counts = %d/%d/%d", l.Total, l.Drafts, l.Published)
	}
}

func TestListPosts_Published(t *testing.T) {
	svc, store := testService(t)
	put(t, store, "a.md", "---\ntitle: A\ndraft: false\n---\n")
	put(t, store, "b.md", "---\ntitle: B\n---\n")

	l, err := svc.ListPosts(context.Background(), ListOptions{Filter: PublishedOnly})
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if len(l.Items) != 1 || l.Items[0].Filename != "a.md" {
		t.Errorf("items = %v", l.Items)
	}
}

func TestListPosts_UndatedLastAndStable(t *testing.T) {
	svc, store := testService(t)
	put(t, store, "a.md", "---\ntitle: A\n---\n")
	put(t, store, "b.md", "---\ntitle: B\ndate: not a date\n---\n")
	put(t, store, "c.md", "---\ntitle: C\ndate: 2020-01-01\n---\n")
	put(t, store, "d.md", "no header at all\n")

	l, err := svc.ListPosts(context.Background(), ListOptions{})
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	var got []string
	for _, it := range l.Items {
		got = append(got, it.Title)
	}
	want := "C A B Untitled"
	if strings.Join(got, " ") != want {
		t.Errorf("order = %v, want %s", got, want)
	}
	if l.Items[3].Tags == nil {
		t.Error("tags should be an empty slice, not nil")
	}
}

func TestListPosts_Summary(t *testing.T) {
	svc, store := testService(t)
	put(t, store, "a.md", "---\ntitle: A\n---\n\n# A\n\nThe first paragraph.\n")

	l, err := svc.ListPosts(context.Background(), ListOptions{Summary: true})
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if l.Items[0].Summary != "The first paragraph." {
		t.Errorf("summary = %q", l.Items[0].Summary)
	}
	if l.Items[0].Heading != "A" {
		t.Errorf("heading = %q", l.Items[0].Heading)
	}
}

// flakyStore fails reads for one post.
type flakyStore struct {
	storage.Provider
	bad string
}

func (f *flakyStore) Read(ctx context.Context, id string) ([]byte, error) {
	if id == f.bad {
		return nil, errors.New("permission denied")
	}
	return f.Provider.Read(ctx, id)
}

func TestListPosts_SkipsUnreadable(t *testing.T) {
	_, store := testService(t)
	put(t, store, "good.md", "---\ntitle: Good\n---\n")
	put(t, store, "bad.md", "---\ntitle: Bad\n---\n")

	var logs bytes.Buffer
	svc := NewService(&flakyStore{Provider: store, bad: "bad.md"}, zerolog.New(&logs))

	l, err := svc.ListPosts(context.Background(), ListOptions{})
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if len(l.Items) != 1 || l.Items[0].Title != "Good" {
		t.Errorf("items = %v", l.Items)
	}
	if !strings.Contains(logs.String(), "bad.md") {
		t.Errorf("expected warning naming bad.md, got %q", logs.String())
	}
}

func TestCreatePost(t *testing.T) {
	fixedNow(t, time.Date(2024, 3, 9, 10, 30, 0, 0, time.UTC))
	svc, store := testService(t, WithDatePrefix())

	ref, err := svc.CreatePost(context.Background(), models.PostMetadata{
		Title: "Hello, World!",
		Tags:  []string{"go"},
	}, "Body\n")
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if ref.Name != "2024-03-09-hello-world.md" {
		t.Errorf("name = %q", ref.Name)
	}

	data, err := store.Read(context.Background(), ref.ID)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	want := "---\ntitle: \"Hello, World!\"\ndate: 2024-03-09T10:30:00Z\ntags:\n  - go\ndraft: true\n---\n\nBody\n"
	if string(data) != want {
		t.Errorf("document =\n%s\nwant\n%s", data, want)
	}

	post, err := svc.GetPost(context.Background(), ref.Name)
	if err != nil {
		t.Fatalf("GetPost: %v", err)
	}
	if post.Metadata.Title != "Hello, World!" || !post.Metadata.IsDraft() {
		t.Errorf("metadata = %+v", post.Metadata)
	}
}

func TestCreatePost_ConflictLeavesExisting(t *testing.T) {
	svc, store := testService(t)
	put(t, store, "hello.md", "original")

	_, err := svc.CreatePost(context.Background(), models.PostMetadata{Title: "Hello"}, "new body")
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	data, _ := store.Read(context.Background(), "hello.md")
	if string(data) != "original" {
		t.Errorf("existing post modified: %q", data)
	}

	exists, err := svc.Exists(context.Background(), "hello.md")
	if err != nil || !exists {
		t.Errorf("Exists = %v, %v", exists, err)
	}
}

func TestCreatePost_EmptyTitle(t *testing.T) {
	svc, _ := testService(t)
	for _, title := range []string{"", "   ", "***"} {
		if _, err := svc.CreatePost(context.Background(), models.PostMetadata{Title: title}, ""); !errors.Is(err, apperr.ErrEmptyInput) {
			t.Errorf("title %q: err = %v, want ErrEmptyInput", title, err)
		}
	}
}

func TestCreatePost_RejectsLineBreaks(t *testing.T) {
	svc, store := testService(t)
	tests := []struct {
		name string
		meta models.PostMetadata
	}{
		{"title", models.PostMetadata{Title: "Release notes\nv2"}},
		{"title cr", models.PostMetadata{Title: "Release notes\rv2"}},
		{"author", models.PostMetadata{Title: "Ok", Author: "Ann\ndraft: false"}},
		{"tag", models.PostMetadata{Title: "Ok", Tags: []string{"go", "go\nauthor: mallory"}}},
		{"category", models.PostMetadata{Title: "Ok", Categories: []string{"dev\r\n"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreatePost(context.Background(), tt.meta, "body"); !errors.Is(err, apperr.ErrBadInput) {
				t.Errorf("err = %v, want ErrBadInput", err)
			}
		})
	}

	names, err := store.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 0 {
		t.Errorf("nothing should be stored, got %v", names)
	}
}

func TestGetPost_Missing(t *testing.T) {
	svc, _ := testService(t)
	if _, err := svc.GetPost(context.Background(), "nope.md"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestParseDate(t *testing.T) {
	for _, in := range []string{"2024-01-02", "2024-01-02T03:04:05Z", "2024-01-02T03:04:05+02:00", "2024-01-02T03:04:05"} {
		if ParseDate(in).IsZero() {
			t.Errorf("ParseDate(%q) is zero", in)
		}
	}
	if !ParseDate("yesterday").IsZero() {
		t.Error("expected zero time for unparseable date")
	}
}
