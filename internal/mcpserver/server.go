// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes blog posts to LLM clients over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/hugoblog/internal/apperr"
	"github.com/starford/hugoblog/internal/models"
	"github.com/starford/hugoblog/internal/postservice"
	"github.com/starford/hugoblog/internal/prompt"
)

const formatURI = "blog://post-format"

// Server wraps the MCP server with blog tools.
type Server struct {
	mcp *server.MCPServer
	svc *postservice.Service
}

// New creates a new MCP server with all blog tools registered.
func New(svc *postservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"blog",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_posts",
		mcp.WithDescription("List blog posts newest first with title, date, draft flag and tags."),
		mcp.WithString("status", mcp.Description("Optional filter: all (default), drafts or published")),
	), s.listPosts)

	s.mcp.AddTool(mcp.NewTool("read_post",
		mcp.WithDescription("Read the full Markdown source of a post."),
		mcp.WithString("filename", mcp.Required(), mcp.Description("Post file name as returned by list_posts (e.g. 2025-01-15-hello.md)")),
	), s.readPost)

	s.mcp.AddTool(mcp.NewTool("create_post",
		mcp.WithDescription("Create a new post. The header is generated from the arguments; "+
			"read the format contract via get_post_format or the "+formatURI+" resource first."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Post title")),
		mcp.WithString("body", mcp.Required(), mcp.Description("Markdown body without a header")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags")),
		mcp.WithString("categories", mcp.Description("Comma-separated categories")),
		mcp.WithString("author", mcp.Description("Author display name")),
		mcp.WithBoolean("draft", mcp.Description("Draft flag (default true)")),
	), s.createPost)

	s.mcp.AddTool(mcp.NewTool("get_post_format",
		mcp.WithDescription("Returns the post format contract. Call this before creating posts."),
	), s.getPostFormat)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Post Format Contract",
			mcp.WithResourceDescription("Header and file naming rules every post follows."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readPostFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := postservice.All
	switch status := req.GetString("status", "all"); status {
	case "", "all":
	case "drafts":
		filter = postservice.DraftsOnly
	case "published":
		filter = postservice.PublishedOnly
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown status %q: use all, drafts or published", status)), nil
	}

	listing, err := s.svc.ListPosts(ctx, postservice.ListOptions{Filter: filter})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(listing, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readPost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("filename")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.svc.ReadRaw(ctx, name)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", name)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) createPost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	body, err := req.RequireString("body")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	meta := models.PostMetadata{
		Title:      title,
		Author:     req.GetString("author", ""),
		Tags:       prompt.SplitList(req.GetString("tags", "")),
		Categories: prompt.SplitList(req.GetString("categories", "")),
		Draft:      models.Bool(req.GetBool("draft", true)),
	}

	ref, err := s.svc.CreatePost(ctx, meta, body)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", ref.Name)), nil
}

func (s *Server) getPostFormat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(PostFormatContract), nil
}

func (s *Server) readPostFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     PostFormatContract,
		},
	}, nil
}
