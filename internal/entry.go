// Package internal wires configuration, storage and the external tools into
// the blog commands.
package internal

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/starford/hugoblog/internal/editor"
	"github.com/starford/hugoblog/internal/git"
	"github.com/starford/hugoblog/internal/hugo"
	"github.com/starford/hugoblog/internal/llm"
	"github.com/starford/hugoblog/internal/postservice"
	"github.com/starford/hugoblog/internal/proc"
	"github.com/starford/hugoblog/internal/prompt"
	"github.com/starford/hugoblog/internal/storage"
	pkgconfig "github.com/starford/hugoblog/pkg/config"
)

// App holds everything a command needs for one invocation.
type App struct {
	cfg      *Config
	logger   zerolog.Logger
	out      io.Writer
	version  string
	prompter prompt.Prompter
	posts    *postservice.Service
	// local is nil in remote mode.
	local   *storage.FS
	runner  proc.Runner
	editor  *editor.Editor
	hugo    *hugo.Hugo
	git     *git.Repo
	gen     llm.Generator
	siteDir string
}

// NewLogger returns a human-readable logger writing to w.
func NewLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// Bootstrap resolves configuration and builds the App. Configuration problems
// are returned as *apperr.ConfigError.
func Bootstrap(ctx context.Context, opts ...Option) (*App, error) {
	a := &application{envFile: ".env", version: "dev"}
	for _, opt := range opts {
		opt(a)
	}
	if a.stdin == nil {
		a.stdin = os.Stdin
	}
	if a.stdout == nil {
		a.stdout = os.Stdout
	}
	if a.stderr == nil {
		a.stderr = os.Stderr
	}
	if a.siteDir == "" {
		a.siteDir = "."
	}

	logger := NewLogger(a.stderr, a.verbose)

	env := a.env
	if env == nil {
		values, err := pkgconfig.Load(a.envFile)
		if err != nil {
			return nil, fmt.Errorf("load environment: %w", err)
		}
		env = Env(values)
	}

	cfg, err := Resolve(env)
	if err != nil {
		return nil, err
	}

	store := a.provider
	if store == nil {
		store, err = newProvider(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("init storage: %w", err)
		}
	}

	app := &App{
		cfg:      cfg,
		logger:   logger,
		out:      a.stdout,
		version:  a.version,
		prompter: a.prompter,
		runner:   a.runner,
		gen:      a.generator,
		siteDir:  a.siteDir,
	}

	var svcOpts []postservice.Option
	if !cfg.Remote() {
		svcOpts = append(svcOpts, postservice.WithDatePrefix())
		if fs, ok := store.(*storage.FS); ok {
			app.local = fs
		}
	}
	app.posts = postservice.NewService(store, logger, svcOpts...)

	if app.runner == nil {
		app.runner = &proc.Exec{Stdin: a.stdin, Stdout: a.stdout, Stderr: a.stderr}
	}
	if app.prompter == nil {
		app.prompter = prompt.NewTerminal(a.stdin, a.stdout)
	}
	if app.gen == nil {
		app.gen = llm.NewClient(llm.Config{
			APIKey:   cfg.LLM.APIKey,
			Endpoint: cfg.LLM.Endpoint,
			Model:    cfg.LLM.Model,
			SiteURL:  cfg.LLM.SiteURL,
			SiteName: cfg.LLM.SiteName,
		}, nil)
	}
	app.editor = editor.New(cfg.Editor, app.runner)
	app.hugo = hugo.New(a.siteDir, app.runner)
	app.git = git.New(a.siteDir, app.runner)

	logger.Debug().
		Str("mode", cfg.Mode).
		Str("content", app.contentLocation()).
		Str("site_dir", a.siteDir).
		Msg("Configuration loaded")

	return app, nil
}

func newProvider(ctx context.Context, cfg *Config) (storage.Provider, error) {
	if !cfg.Remote() {
		return storage.NewFS(cfg.ContentDir)
	}
	client, err := storage.NewGitHubClient(ctx, cfg.GitHub.Token, cfg.GitHub.APIBaseURL())
	if err != nil {
		return nil, err
	}
	return storage.NewGitHub(client, storage.GitHubOptions{
		Owner:       cfg.GitHub.Owner,
		Repo:        cfg.GitHub.Repo,
		Branch:      cfg.GitHub.Branch,
		ContentPath: cfg.GitHub.ContentPath,
	}), nil
}

// Config returns the resolved configuration.
func (a *App) Config() *Config {
	return a.cfg
}

// Logger returns the application logger.
func (a *App) Logger() zerolog.Logger {
	return a.logger
}

func (a *App) contentLocation() string {
	if a.cfg.Remote() {
		return fmt.Sprintf("%s@%s:%s", a.cfg.GitHub.FullName(), a.cfg.GitHub.Branch, a.cfg.GitHub.ContentPath)
	}
	if a.local != nil {
		return a.local.Root()
	}
	return a.cfg.ContentDir
}
