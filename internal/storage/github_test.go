package storage

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/starford/hugoblog/internal/apperr"
)

// fakeRepo is an in-memory repository served over the contents API.
type fakeRepo struct {
	mu       sync.Mutex
	files    map[string]string
	pageSize int
	token    string
	created  []createCall
	failPut  int
}

type createCall struct {
	Path    string
	Message string
	Branch  string
	Content string
}

func newFakeRepo(t *testing.T, files map[string]string) (*fakeRepo, *GitHub) {
	t.Helper()
	fr := &fakeRepo{files: files, pageSize: 100, token: "ghp_test"}

	r := chi.NewRouter()
	r.Get("/repos/{owner}/{repo}/contents/*", fr.get)
	r.Put("/repos/{owner}/{repo}/contents/*", fr.put)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	client, err := NewGitHubClient(context.Background(), fr.token, "")
	if err != nil {
		t.Fatal(err)
	}
	base, _ := url.Parse(srv.URL + "/")
	client.BaseURL = base

	gh := NewGitHub(client, GitHubOptions{
		Owner:       "acme",
		Repo:        "blog",
		Branch:      "main",
		ContentPath: "content/posts",
	})
	return fr, gh
}

func (fr *fakeRepo) authorized(w http.ResponseWriter, r *http.Request) bool {
	if r.Header.Get("Authorization") != "Bearer "+fr.token {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Bad credentials"})
		return false
	}
	return true
}

func (fr *fakeRepo) get(w http.ResponseWriter, r *http.Request) {
	if !fr.authorized(w, r) {
		return
	}
	fr.mu.Lock()
	defer fr.mu.Unlock()

	p := chi.URLParam(r, "*")
	if content, ok := fr.files[p]; ok {
		writeJSON(w, http.StatusOK, map[string]any{
			"type":     "file",
			"name":     p[strings.LastIndex(p, "/")+1:],
			"path":     p,
			"encoding": "base64",
			"content":  base64.StdEncoding.EncodeToString([]byte(content)),
		})
		return
	}

	var entries []map[string]any
	for name := range fr.files {
		if strings.HasPrefix(name, p+"/") {
			entries = append(entries, map[string]any{
				"type": "file",
				"name": name[len(p)+1:],
				"path": name,
			})
		}
	}
	if len(entries) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
		return
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i]["name"].(string) < entries[j]["name"].(string)
	})

	page := 1
	if v := r.URL.Query().Get("page"); v != "" {
		fmt.Sscanf(v, "%d", &page)
	}
	start := (page - 1) * fr.pageSize
	end := start + fr.pageSize
	if start > len(entries) {
		start = len(entries)
	}
	if end >= len(entries) {
		end = len(entries)
	} else {
		next := *r.URL
		q := next.Query()
		q.Set("page", fmt.Sprint(page+1))
		next.RawQuery = q.Encode()
		w.Header().Set("Link", fmt.Sprintf(`<http://%s%s>; rel="next"`, r.Host, next.String()))
	}
	writeJSON(w, http.StatusOK, entries[start:end])
}

func (fr *fakeRepo) put(w http.ResponseWriter, r *http.Request) {
	if !fr.authorized(w, r) {
		return
	}
	var body struct {
		Message string `json:"message"`
		Content []byte `json:"content"`
		Branch  string `json:"branch"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}

	fr.mu.Lock()
	defer fr.mu.Unlock()
	if fr.failPut != 0 {
		writeJSON(w, fr.failPut, map[string]string{"message": "Invalid request.\n\n\"sha\" wasn't supplied."})
		return
	}
	p := chi.URLParam(r, "*")
	fr.files[p] = string(body.Content)
	fr.created = append(fr.created, createCall{Path: p, Message: body.Message, Branch: body.Branch, Content: string(body.Content)})
	writeJSON(w, http.StatusCreated, map[string]any{
		"content": map[string]any{"name": p, "path": p},
		"commit":  map[string]any{"sha": "abc123"},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestGitHubList_FiltersMarkdown(t *testing.T) {
	_, gh := newFakeRepo(t, map[string]string{
		"content/posts/a.md":      "a",
		"content/posts/b.md":      "b",
		"content/posts/image.png": "png",
	})
	refs, err := gh.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("refs = %v, want 2", refs)
	}
	if refs[0].Name != "a.md" || refs[0].ID != "content/posts/a.md" {
		t.Errorf("refs[0] = %+v", refs[0])
	}
}

func TestGitHubList_FollowsPagination(t *testing.T) {
	files := map[string]string{}
	for i := 0; i < 7; i++ {
		files[fmt.Sprintf("content/posts/p%d.md", i)] = "x"
	}
	fr, gh := newFakeRepo(t, files)
	fr.pageSize = 3

	refs, err := gh.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(refs) != 7 {
		t.Errorf("len = %d, want 7 across pages", len(refs))
	}
}

func TestGitHubList_MissingDirIsEmpty(t *testing.T) {
	_, gh := newFakeRepo(t, map[string]string{})
	refs, err := gh.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(refs) != 0 {
		t.Errorf("refs = %v", refs)
	}
}

func TestGitHubRead_DecodesBase64(t *testing.T) {
	doc := "---\ntitle: \"Remote\"\n---\n\nBody with ünïcode\n"
	_, gh := newFakeRepo(t, map[string]string{"content/posts/remote.md": doc})

	got, err := gh.Read(context.Background(), gh.Locate("remote.md"))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != doc {
		t.Errorf("content = %q", got)
	}
}

func TestGitHubRead_Missing(t *testing.T) {
	_, gh := newFakeRepo(t, map[string]string{"content/posts/a.md": "a"})
	_, err := gh.Read(context.Background(), "content/posts/nope.md")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestGitHubCreate(t *testing.T) {
	fr, gh := newFakeRepo(t, map[string]string{})
	err := gh.Create(context.Background(), gh.Locate("hello.md"), []byte("hello"), "Add new blog post: hello.md")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(fr.created) != 1 {
		t.Fatalf("created = %v", fr.created)
	}
	c := fr.created[0]
	if c.Path != "content/posts/hello.md" || c.Branch != "main" || c.Content != "hello" {
		t.Errorf("create call = %+v", c)
	}
	if c.Message != "Add new blog post: hello.md" {
		t.Errorf("message = %q", c.Message)
	}
}

func TestGitHubCreate_ConflictLeavesExisting(t *testing.T) {
	fr, gh := newFakeRepo(t, map[string]string{"content/posts/dup.md": "original"})
	err := gh.Create(context.Background(), gh.Locate("dup.md"), []byte("replacement"), "msg")
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	if len(fr.created) != 0 {
		t.Errorf("unexpected create call: %v", fr.created)
	}
	if fr.files["content/posts/dup.md"] != "original" {
		t.Error("existing content modified")
	}
}

func TestGitHubErrorsCarryMessage(t *testing.T) {
	fr, gh := newFakeRepo(t, map[string]string{})
	fr.failPut = http.StatusUnprocessableEntity

	err := gh.Create(context.Background(), gh.Locate("x.md"), []byte("x"), "msg")
	var serr *apperr.ServiceError
	if !errors.As(err, &serr) {
		t.Fatalf("err = %T %v, want *apperr.ServiceError", err, err)
	}
	if serr.Status != http.StatusUnprocessableEntity {
		t.Errorf("status = %d", serr.Status)
	}
	if !strings.Contains(serr.Message, "sha") {
		t.Errorf("message = %q, want upstream message", serr.Message)
	}
}

func TestGitHubBadToken(t *testing.T) {
	fr, gh := newFakeRepo(t, map[string]string{"content/posts/a.md": "a"})
	fr.token = "other"

	_, err := gh.List(context.Background())
	var serr *apperr.ServiceError
	if !errors.As(err, &serr) || serr.Status != http.StatusUnauthorized {
		t.Fatalf("err = %v, want 401 service error", err)
	}
	if !strings.Contains(serr.Error(), "Bad credentials") {
		t.Errorf("error = %q", serr.Error())
	}
}

func TestNewGitHubClient_Enterprise(t *testing.T) {
	client, err := NewGitHubClient(context.Background(), "t", "https://git.corp.example/api/v3/")
	if err != nil {
		t.Fatalf("NewGitHubClient: %v", err)
	}
	if client.BaseURL.String() != "https://git.corp.example/api/v3/" {
		t.Errorf("base url = %s", client.BaseURL)
	}
}

func TestLocate(t *testing.T) {
	gh := NewGitHub(nil, GitHubOptions{ContentPath: "/content/posts/"})
	if got := gh.Locate("a.md"); got != "content/posts/a.md" {
		t.Errorf("Locate = %q", got)
	}
}

func TestGitHubRejectsPathsOutsideContent(t *testing.T) {
	fr, gh := newFakeRepo(t, map[string]string{
		"content/secret.md":  "secret",
		"content/posts/a.md": "a",
	})
	ctx := context.Background()

	for _, name := range []string{"../secret.md", "../../go.mod", "sub/a.md", "..", "content/posts/a.md"} {
		data, err := gh.Read(ctx, gh.Locate(name))
		if !errors.Is(err, apperr.ErrBadInput) {
			t.Errorf("Read(%q) = %q, %v, want ErrBadInput", name, data, err)
		}
	}
	if err := gh.Create(ctx, gh.Locate("../escape.md"), []byte("x"), "msg"); !errors.Is(err, apperr.ErrBadInput) {
		t.Errorf("Create err = %v, want ErrBadInput", err)
	}
	if len(fr.created) != 0 {
		t.Errorf("unexpected create call: %v", fr.created)
	}

	// Names directly inside the content path still resolve.
	if _, err := gh.Read(ctx, gh.Locate("a.md")); err != nil {
		t.Errorf("Read(a.md): %v", err)
	}
}

func TestGitHubRejectsBeforeRequest(t *testing.T) {
	// A nil client panics on use, so a clean error proves nothing was sent.
	gh := NewGitHub(nil, GitHubOptions{})
	if _, err := gh.Read(context.Background(), gh.Locate("../x.md")); !errors.Is(err, apperr.ErrBadInput) {
		t.Errorf("err = %v, want ErrBadInput", err)
	}
}
