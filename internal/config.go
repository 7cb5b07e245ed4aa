package internal

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/hugoblog/internal/apperr"
)

// Storage modes.
const (
	ModeLocal  = "local"
	ModeRemote = "remote"
)

// Defaults applied when the corresponding variable is unset.
const (
	DefaultBranch       = "main"
	DefaultContentPath  = "content/posts"
	DefaultEditor       = "code"
	DefaultCommitPrefix = "blog:"
	DefaultGitHubHost   = "github.com"
)

// Env is the flat set of named values the resolver reads.
type Env map[string]string

func (e Env) get(key, fallback string) string {
	if v := strings.TrimSpace(e[key]); v != "" {
		return v
	}
	return fallback
}

// remoteKeys imply remote mode when any of them is set.
var remoteKeys = []string{"GITHUB_URL", "GITHUB_OWNER", "GITHUB_REPO", "GITHUB_TOKEN"}

var repoURLRe = regexp.MustCompile(`^https?://([^/\s]+)/([^/\s]+)/([^/\s]+?)(?:\.git)?/?$`)

// userHomeDir is replaced in tests.
var userHomeDir = os.UserHomeDir

// Config is the resolved, read-only configuration for one invocation.
type Config struct {
	Mode   string
	LLM    LLMConfig
	GitHub GitHubConfig
	// ContentDir is the local posts directory; unused in remote mode.
	ContentDir string
	// Author is the display name for remote posts.
	Author string
	Editor string
	Git    GitConfig
}

// Remote reports whether posts live in a remote repository.
func (c *Config) Remote() bool {
	return c.Mode == ModeRemote
}

// DefaultAuthor is the author suggested when creating a post.
func (c *Config) DefaultAuthor() string {
	if c.Remote() {
		return c.Author
	}
	return c.Git.AuthorName
}

// Validate validates the configuration and returns every problem at once.
func (c *Config) Validate() error {
	errs := validation.Errors{}
	merge(errs, "llm", c.LLM.Validate())
	if c.Remote() {
		merge(errs, "github", c.GitHub.Validate())
		merge(errs, "blog", validation.ValidateStruct(c,
			validation.Field(&c.Author, validation.Required.Error("BLOG_AUTHOR is not set")),
		))
	}
	return errs.Filter()
}

// LLMConfig holds text-generation endpoint credentials.
type LLMConfig struct {
	APIKey   string `json:"api_key"`
	Endpoint string `json:"endpoint"`
	Model    string `json:"model"`
	// SiteURL and SiteName are optional attribution headers.
	SiteURL  string `json:"site_url"`
	SiteName string `json:"site_name"`
}

// Validate validates the text-generation configuration.
func (c *LLMConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.APIKey, validation.Required.Error("LLM_API_KEY is not set")),
		validation.Field(&c.Endpoint, validation.Required.Error("LLM_API_ENDPOINT is not set")),
		validation.Field(&c.Model, validation.Required.Error("LLM_MODEL is not set")),
	)
}

// GitHubConfig holds remote repository coordinates.
type GitHubConfig struct {
	// URL is the raw GITHUB_URL value, kept even when it does not parse.
	URL         string `json:"url"`
	Host        string `json:"host"`
	Owner       string `json:"owner"`
	Repo        string `json:"repo"`
	Token       string `json:"token"`
	Branch      string `json:"branch"`
	ContentPath string `json:"content_path"`
}

// Validate validates the remote repository configuration.
func (c *GitHubConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Owner, validation.By(func(any) error {
			if c.Owner == "" || c.Repo == "" {
				return errors.New("GitHub repository is not set: use GITHUB_URL or GITHUB_OWNER and GITHUB_REPO")
			}
			return nil
		})),
		validation.Field(&c.Token, validation.Required.Error("GITHUB_TOKEN is not set")),
	)
}

// APIBaseURL returns the REST endpoint for Host. Hosts other than github.com
// are treated as GitHub Enterprise servers.
func (c *GitHubConfig) APIBaseURL() string {
	if c.Host == "" || c.Host == DefaultGitHubHost {
		return "https://api.github.com/"
	}
	return "https://" + c.Host + "/api/v3/"
}

// FullName returns "owner/repo".
func (c *GitHubConfig) FullName() string {
	return c.Owner + "/" + c.Repo
}

// GitConfig holds the identity used when committing locally.
type GitConfig struct {
	AuthorName   string `json:"author_name"`
	AuthorEmail  string `json:"author_email"`
	CommitPrefix string `json:"commit_prefix"`
}

// Resolve builds a Config from env, applying defaults and validating the
// result. On failure the error is an *apperr.ConfigError listing every problem.
func Resolve(env Env) (*Config, error) {
	cfg := &Config{
		Mode: ModeLocal,
		LLM: LLMConfig{
			APIKey:   env.get("LLM_API_KEY", ""),
			Endpoint: env.get("LLM_API_ENDPOINT", ""),
			Model:    env.get("LLM_MODEL", ""),
			SiteURL:  env.get("OPENROUTER_SITE_URL", ""),
			SiteName: env.get("OPENROUTER_SITE_NAME", ""),
		},
		Author: env.get("BLOG_AUTHOR", ""),
		Editor: env.get("DEFAULT_EDITOR", DefaultEditor),
	}

	for _, k := range remoteKeys {
		if env.get(k, "") != "" {
			cfg.Mode = ModeRemote
			break
		}
	}

	if cfg.Remote() {
		cfg.GitHub = resolveGitHub(env)
	} else {
		cfg.ContentDir = expandHome(env.get("HUGO_CONTENT_DIR", DefaultContentPath))
		cfg.Git = GitConfig{
			AuthorName:   env.get("GIT_AUTHOR_NAME", ""),
			AuthorEmail:  env.get("GIT_AUTHOR_EMAIL", ""),
			CommitPrefix: env.get("GIT_COMMIT_PREFIX", DefaultCommitPrefix),
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, toConfigError(err)
	}
	return cfg, nil
}

// resolveGitHub fills remote coordinates. A parsable GITHUB_URL overrides
// GITHUB_OWNER and GITHUB_REPO; an unparsable one leaves them in place.
func resolveGitHub(env Env) GitHubConfig {
	gh := GitHubConfig{
		URL:         env.get("GITHUB_URL", ""),
		Host:        DefaultGitHubHost,
		Owner:       env.get("GITHUB_OWNER", ""),
		Repo:        env.get("GITHUB_REPO", ""),
		Token:       env.get("GITHUB_TOKEN", ""),
		Branch:      env.get("GITHUB_BRANCH", DefaultBranch),
		ContentPath: strings.Trim(env.get("GITHUB_CONTENT_PATH", DefaultContentPath), "/"),
	}
	if host, owner, repo, ok := ParseRepoURL(gh.URL); ok {
		gh.Host, gh.Owner, gh.Repo = host, owner, repo
	}
	return gh
}

// ParseRepoURL extracts host, owner and repo from
// http(s)://<host>/<owner>/<repo>[.git].
func ParseRepoURL(raw string) (host, owner, repo string, ok bool) {
	m := repoURLRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return "", "", "", false
	}
	return m[1], m[2], m[3], true
}

// expandHome resolves p against the user's home directory unless it is
// absolute. A leading "~/" is accepted as an explicit home reference.
func expandHome(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	home, err := userHomeDir()
	if err != nil {
		return p
	}
	if p == "~" {
		return home
	}
	p = strings.TrimPrefix(p, "~"+string(filepath.Separator))
	p = strings.TrimPrefix(p, "~/")
	return filepath.Join(home, p)
}

func merge(dst validation.Errors, prefix string, err error) {
	if err == nil {
		return
	}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		for k, v := range verrs {
			dst[prefix+"."+k] = v
		}
		return
	}
	dst[prefix] = err
}

func toConfigError(err error) error {
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return &apperr.ConfigError{Problems: []string{err.Error()}}
	}
	problems := make([]string, 0, len(verrs))
	for _, v := range verrs {
		problems = append(problems, v.Error())
	}
	sort.Strings(problems)
	return &apperr.ConfigError{Problems: problems}
}
