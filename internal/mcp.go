package internal

import (
	"github.com/starford/hugoblog/internal/mcpserver"
)

// ServeMCP exposes the posts to MCP clients over stdin and stdout until the
// client disconnects.
func (a *App) ServeMCP() error {
	a.logger.Info().Str("content", a.contentLocation()).Msg("MCP server starting on stdio")
	return mcpserver.New(a.posts, a.version).ServeStdio()
}
