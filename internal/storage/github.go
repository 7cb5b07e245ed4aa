package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-github/v75/github"
	"golang.org/x/oauth2"

	"github.com/starford/hugoblog/internal/apperr"
	"github.com/starford/hugoblog/internal/models"
)

const (
	githubTimeout = 30 * time.Second
	githubPerPage = 100
	githubAPIURL  = "https://api.github.com/"
)

// GitHub implements Provider on top of the repository contents API.
// Identifiers are repository paths such as "content/posts/hello.md".
type GitHub struct {
	client      *github.Client
	owner       string
	repo        string
	branch      string
	contentPath string
}

var _ Provider = (*GitHub)(nil)

// GitHubOptions are the repository coordinates for NewGitHub.
type GitHubOptions struct {
	Owner       string
	Repo        string
	Branch      string
	ContentPath string
}

// NewGitHubClient returns an API client that sends token as a bearer token.
// baseURL selects a GitHub Enterprise server when it is not the public API.
func NewGitHubClient(ctx context.Context, token, baseURL string) (*github.Client, error) {
	hc := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	hc.Timeout = githubTimeout
	client := github.NewClient(hc)
	if baseURL == "" || baseURL == githubAPIURL {
		return client, nil
	}
	client, err := client.WithEnterpriseURLs(baseURL, baseURL)
	if err != nil {
		return nil, fmt.Errorf("github: configure base url: %w", err)
	}
	return client, nil
}

// NewGitHub creates a GitHub-backed provider.
func NewGitHub(client *github.Client, opts GitHubOptions) *GitHub {
	return &GitHub{
		client:      client,
		owner:       opts.Owner,
		repo:        opts.Repo,
		branch:      opts.Branch,
		contentPath: strings.Trim(opts.ContentPath, "/"),
	}
}

// List pages through the content directory and keeps Markdown files. A
// missing directory yields an empty list.
func (g *GitHub) List(ctx context.Context) ([]models.PostRef, error) {
	op := fmt.Sprintf("listing %s on %s", g.contentPath, g.branch)
	var out []models.PostRef
	page := 1
	for {
		req, err := g.client.NewRequest(http.MethodGet, g.listURL(page), nil)
		if err != nil {
			return nil, fmt.Errorf("github: %s: %w", op, err)
		}
		var entries []*github.RepositoryContent
		resp, err := g.client.Do(ctx, req, &entries)
		if err != nil {
			if isNotFound(err) {
				return nil, nil
			}
			return nil, handleGithubError(op, err)
		}
		for _, e := range entries {
			if e.GetType() != "file" || !strings.HasSuffix(e.GetName(), ".md") {
				continue
			}
			out = append(out, models.PostRef{Name: e.GetName(), ID: e.GetPath()})
		}
		if resp.NextPage == 0 {
			break
		}
		page = resp.NextPage
	}
	return out, nil
}

func (g *GitHub) listURL(page int) string {
	q := url.Values{}
	q.Set("ref", g.branch)
	q.Set("per_page", strconv.Itoa(githubPerPage))
	q.Set("page", strconv.Itoa(page))
	return fmt.Sprintf("repos/%s/%s/contents/%s?%s",
		url.PathEscape(g.owner), url.PathEscape(g.repo), escapePath(g.contentPath), q.Encode())
}

// Read fetches a file and decodes its base64 payload.
func (g *GitHub) Read(ctx context.Context, id string) ([]byte, error) {
	if err := g.checkID(id); err != nil {
		return nil, err
	}
	op := fmt.Sprintf("getting file %s at ref %s", id, g.branch)
	file, _, _, err := g.client.Repositories.GetContents(ctx, g.owner, g.repo, id, &github.RepositoryContentGetOptions{
		Ref: g.branch,
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("github: %s: %w", op, apperr.ErrNotFound)
		}
		return nil, handleGithubError(op, err)
	}
	if file == nil {
		return nil, fmt.Errorf("github: %s: not a file: %w", op, apperr.ErrNotFound)
	}
	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("github: %s failed to decode content: %w", op, err)
	}
	return []byte(content), nil
}

// Create commits a new file on the configured branch. Existence is checked
// by listing first; the contents API would otherwise demand the blob SHA of
// the file being replaced.
func (g *GitHub) Create(ctx context.Context, id string, content []byte, message string) error {
	if err := g.checkID(id); err != nil {
		return err
	}
	refs, err := g.List(ctx)
	if err != nil {
		return err
	}
	for _, r := range refs {
		if r.ID == id {
			return fmt.Errorf("github: create %s: %w", id, apperr.ErrConflict)
		}
	}

	op := fmt.Sprintf("creating file %s on %s", id, g.branch)
	_, _, err = g.client.Repositories.CreateFile(ctx, g.owner, g.repo, id, &github.RepositoryContentFileOptions{
		Message: github.Ptr(message),
		Content: content,
		Branch:  github.Ptr(g.branch),
	})
	if err != nil {
		return handleGithubError(op, err)
	}
	return nil
}

// Locate joins name onto the content path.
func (g *GitHub) Locate(name string) string {
	return path.Join(g.contentPath, name)
}

// checkID rejects identifiers that are not a file directly inside the
// content path, such as names carrying "/" or "..".
func (g *GitHub) checkID(id string) error {
	dir := g.contentPath
	if dir == "" {
		dir = "."
	}
	base := path.Base(id)
	if path.Clean(id) != id || path.Dir(id) != dir || base == "." || base == ".." || base == "/" {
		return fmt.Errorf("github: %s is outside %s: %w", id, dir, apperr.ErrBadInput)
	}
	return nil
}

// FullName returns "owner/repo".
func (g *GitHub) FullName() string {
	return fmt.Sprintf("%s/%s", g.owner, g.repo)
}

func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

func isNotFound(err error) bool {
	var errResp *github.ErrorResponse
	return errors.As(err, &errResp) && errResp.Response != nil && errResp.Response.StatusCode == http.StatusNotFound
}

// handleGithubError turns a go-github failure into an *apperr.ServiceError
// carrying the status and the message field of the response body.
func handleGithubError(op string, err error) error {
	if err == nil {
		return nil
	}

	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		return &apperr.ServiceError{
			Service: "github",
			Status:  errResp.Response.StatusCode,
			Message: fmt.Sprintf("%s: %s", op, errResp.Message),
		}
	}

	return fmt.Errorf("github: %s failed: %w", op, err)
}
