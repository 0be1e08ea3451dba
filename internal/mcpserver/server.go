// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the learnings journal to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/learnings/internal/apperr"
	"github.com/starford/learnings/internal/models"
)

const (
	entriesURI = "learnings://entries"
	guideURI   = "learnings://guide"
)

// EntryService is the subset of the journal service the tools need.
type EntryService interface {
	ListEntries(ctx context.Context) ([]models.Entry, error)
	CreateEntry(ctx context.Context, content string) (models.Entry, error)
	UpdateEntry(ctx context.Context, id int64, content string) (models.Entry, error)
}

// Server wraps the MCP server with journal tools.
type Server struct {
	mcp *server.MCPServer
	svc EntryService
}

// New creates a new MCP server with all journal tools registered.
func New(svc EntryService, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Learnings",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions(EntryGuide),
	)

	s.mcp.AddTool(mcp.NewTool("list_entries",
		mcp.WithDescription("List every learning, newest first, as JSON."),
	), s.listEntries)

	s.mcp.AddTool(mcp.NewTool("create_entry",
		mcp.WithDescription("Record a new learning. Content is trimmed and must not be blank."),
		mcp.WithString("content", mcp.Required(), mcp.Description("What was learned")),
	), s.createEntry)

	s.mcp.AddTool(mcp.NewTool("update_entry",
		mcp.WithDescription("Replace the content of an existing learning. The creation date is kept."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Entry id from list_entries")),
		mcp.WithString("content", mcp.Required(), mcp.Description("New content")),
	), s.updateEntry)

	s.mcp.AddResource(
		mcp.NewResource(entriesURI, "Learnings",
			mcp.WithResourceDescription("All learnings, newest first."),
			mcp.WithMIMEType("application/json"),
		),
		s.readEntriesResource,
	)
	s.mcp.AddResource(
		mcp.NewResource(guideURI, "Entry Guide",
			mcp.WithResourceDescription("How learnings are shaped and edited."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readGuideResource,
	)

	return s
}

// ServeStdio runs the MCP server on the given streams until ctx is done
// or stdin closes.
func (s *Server) ServeStdio(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	return server.NewStdioServer(s.mcp).Listen(ctx, stdin, stdout)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listEntries(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, err := s.svc.ListEntries(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return mcp.NewToolResultError(apperr.ErrEmptyContent.Error()), nil
	}

	e, err := s.svc.CreateEntry(ctx, content)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %d", e.ID)), nil
}

func (s *Server) updateEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if id < 1 {
		return mcp.NewToolResultError("id must be a positive integer"), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return mcp.NewToolResultError(apperr.ErrEmptyContent.Error()), nil
	}

	e, err := s.svc.UpdateEntry(ctx, int64(id), content)
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %d", id)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("updated: %d", e.ID)), nil
}

func (s *Server) readEntriesResource(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	entries, err := s.svc.ListEntries(ctx)
	if err != nil {
		return nil, err
	}
	out, err := json.Marshal(entries)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      entriesURI,
			MIMEType: "application/json",
			Text:     string(out),
		},
	}, nil
}

func (s *Server) readGuideResource(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      guideURI,
			MIMEType: "text/markdown",
			Text:     EntryGuide,
		},
	}, nil
}
