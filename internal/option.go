package internal

import (
	"io"

	"github.com/starford/hugoblog/internal/llm"
	"github.com/starford/hugoblog/internal/proc"
	"github.com/starford/hugoblog/internal/prompt"
	"github.com/starford/hugoblog/internal/storage"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	envFile string
	env     Env
	verbose bool
	version string

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	siteDir   string
	prompter  prompt.Prompter
	runner    proc.Runner
	generator llm.Generator
	provider  storage.Provider
}

// WithEnvFile sets the optional .env file read at startup.
func WithEnvFile(path string) Option {
	return func(a *application) {
		a.envFile = path
	}
}

// WithEnv replaces the process environment and .env file with env.
func WithEnv(env Env) Option {
	return func(a *application) {
		a.env = env
	}
}

// WithVerbose enables debug logging.
func WithVerbose(v bool) Option {
	return func(a *application) {
		a.verbose = v
	}
}

// WithVersion sets the version reported to MCP clients.
func WithVersion(v string) Option {
	return func(a *application) {
		a.version = v
	}
}

// WithIO sets the terminal streams.
func WithIO(in io.Reader, out, errOut io.Writer) Option {
	return func(a *application) {
		a.stdin = in
		a.stdout = out
		a.stderr = errOut
	}
}

// WithSiteDir sets the Hugo site root used for builds, previews and git.
func WithSiteDir(dir string) Option {
	return func(a *application) {
		a.siteDir = dir
	}
}

// WithPrompter replaces the terminal prompter.
func WithPrompter(p prompt.Prompter) Option {
	return func(a *application) {
		a.prompter = p
	}
}

// WithRunner replaces the external program runner.
func WithRunner(r proc.Runner) Option {
	return func(a *application) {
		a.runner = r
	}
}

// WithGenerator replaces the text-generation client.
func WithGenerator(g llm.Generator) Option {
	return func(a *application) {
		a.generator = g
	}
}

// WithProvider replaces the storage backend chosen from configuration.
func WithProvider(p storage.Provider) Option {
	return func(a *application) {
		a.provider = p
	}
}
