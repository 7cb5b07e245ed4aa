package internal

import (
	"fmt"
	"io"
)

const setupGuide = `Blog CLI setup and usage

PREREQUISITES
  1. A Hugo site (run the commands from its root directory)
  2. An OpenAI-compatible chat completions endpoint for --ai
  3. For remote mode: a GitHub repository and a personal access token

CONFIGURATION
  Settings come from the environment, optionally from a .env file
  (--env-file, default .env). Variables already set in the environment win.

  Text generation:
    LLM_API_KEY=your_api_key
    LLM_API_ENDPOINT=https://openrouter.ai/api/v1/chat/completions
    LLM_MODEL=openai/gpt-4o
    OPENROUTER_SITE_URL=https://example.com   (optional)
    OPENROUTER_SITE_NAME=My Blog              (optional)

  Local mode (default):
    HUGO_CONTENT_DIR=content/posts   relative to your home directory unless absolute
    DEFAULT_EDITOR=code
    GIT_AUTHOR_NAME="Your Name"
    GIT_AUTHOR_EMAIL=you@example.com
    GIT_COMMIT_PREFIX=blog:

  Remote mode (enabled by any GITHUB_URL, GITHUB_OWNER, GITHUB_REPO or GITHUB_TOKEN):
    GITHUB_URL=https://github.com/username/repo.git
    # or GITHUB_OWNER=username and GITHUB_REPO=repo
    GITHUB_TOKEN=ghp_your_token   needs the repo or public_repo scope
    GITHUB_BRANCH=main
    GITHUB_CONTENT_PATH=content/posts
    BLOG_AUTHOR="Your Name"

USAGE
  blog new [--ai]                       create a post, optionally from raw notes
  blog list [--drafts|--published]      list posts newest first
            [--format text|json|yaml] [--summary]
  blog edit [filename]                  open a post in your editor (local mode)
  blog preview [--port N] [--watch]     run the Hugo development server with drafts
  blog publish                          build, commit and push the site (local mode)
  blog mcp                              serve posts to MCP clients over stdio
  blog setup                            show this guide

TIPS
  Draft posts are not visible on the live site. A post stays a draft
  until its header says draft: false.
  Creating a post whose file name already exists fails; choose another title.

TROUBLESHOOTING
  "LLM_API_KEY is not set"      check the text generation variables
  "GitHub repository is not set" set GITHUB_URL or GITHUB_OWNER and GITHUB_REPO
  "only available with a local content directory"
                                edit and publish need local mode
`

// Setup prints the setup and usage guide. It needs no configuration.
func Setup(w io.Writer) {
	fmt.Fprint(w, setupGuide)
}
