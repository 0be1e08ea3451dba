package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/learnings/internal/journal"
	"github.com/starford/learnings/internal/models"
	"github.com/starford/learnings/internal/store"
	"github.com/starford/learnings/internal/testutil"
)

func testServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	s := testutil.TestStore(t)
	return New(journal.NewService(s, nil), "test"), s
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_entries":
		result, err = srv.listEntries(ctx, req)
	case "create_entry":
		result, err = srv.createEntry(ctx, req)
	case "update_entry":
		result, err = srv.updateEntry(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestCreateAndListEntries(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "create_entry", map[string]interface{}{"content": "  goroutines are cheap \n"})
	if r.IsError {
		t.Fatalf("create failed: %s", resultText(r))
	}
	if text := resultText(r); text != "created: 1" {
		t.Errorf("create result = %q", text)
	}

	r = callTool(t, srv, "list_entries", map[string]interface{}{})
	var entries []models.Entry
	if err := json.Unmarshal([]byte(resultText(r)), &entries); err != nil {
		t.Fatalf("list output not JSON: %v", err)
	}
	if len(entries) != 1 || entries[0].Content != "goroutines are cheap" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestCreateEntry_BlankRejected(t *testing.T) {
	srv, s := testServer(t)
	r := callTool(t, srv, "create_entry", map[string]interface{}{"content": "   "})
	if !r.IsError {
		t.Error("expected error for blank content")
	}
	r = callTool(t, srv, "create_entry", map[string]interface{}{})
	if !r.IsError {
		t.Error("expected error for missing content")
	}
	entries, _ := s.ListEntries(context.Background())
	if len(entries) != 0 {
		t.Errorf("entries = %+v, want none", entries)
	}
}

func TestUpdateEntry(t *testing.T) {
	srv, s := testServer(t)
	orig, err := s.CreateEntry(context.Background(), "old")
	if err != nil {
		t.Fatal(err)
	}

	// JSON numbers arrive as float64.
	r := callTool(t, srv, "update_entry", map[string]interface{}{"id": float64(orig.ID), "content": "new"})
	if r.IsError {
		t.Fatalf("update failed: %s", resultText(r))
	}

	got, _ := s.GetEntry(context.Background(), orig.ID)
	if got.Content != "new" || !got.CreatedAt.Equal(orig.CreatedAt) {
		t.Errorf("entry = %+v", got)
	}
}

func TestUpdateEntry_Errors(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "update_entry", map[string]interface{}{"id": float64(42), "content": "x"})
	if !r.IsError || !strings.Contains(resultText(r), "not found") {
		t.Errorf("missing id: %q", resultText(r))
	}
	r = callTool(t, srv, "update_entry", map[string]interface{}{"id": float64(0), "content": "x"})
	if !r.IsError {
		t.Error("expected error for id 0")
	}
	r = callTool(t, srv, "update_entry", map[string]interface{}{"content": "x"})
	if !r.IsError {
		t.Error("expected error for missing id")
	}
}

func TestEntriesResource(t *testing.T) {
	srv, s := testServer(t)
	testutil.Seed(t, s, "first", "second")

	contents, err := srv.readEntriesResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("unexpected contents type %T", contents[0])
	}
	if tc.URI != "learnings://entries" || tc.MIMEType != "application/json" {
		t.Errorf("resource = %+v", tc)
	}
	var entries []models.Entry
	if err := json.Unmarshal([]byte(tc.Text), &entries); err != nil || len(entries) != 2 {
		t.Errorf("entries = %+v, err = %v", entries, err)
	}
}

func TestToolsListed(t *testing.T) {
	srv, _ := testServer(t)
	resp := srv.MCPServer().HandleMessage(context.Background(),
		json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list","params":{}}`))
	out, err := json.Marshal(resp)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"list_entries", "create_entry", "update_entry"} {
		if !strings.Contains(string(out), `"`+name+`"`) {
			t.Errorf("tools/list missing %s: %s", name, out)
		}
	}
}

// fixedEntries serves a canned list or error and rejects writes.
type fixedEntries struct {
	entries []models.Entry
	err     error
}

func (f fixedEntries) ListEntries(context.Context) ([]models.Entry, error) {
	return f.entries, f.err
}

func (f fixedEntries) CreateEntry(context.Context, string) (models.Entry, error) {
	return models.Entry{}, errors.New("read-only")
}

func (f fixedEntries) UpdateEntry(context.Context, int64, string) (models.Entry, error) {
	return models.Entry{}, errors.New("read-only")
}

func TestListEntries_ErrorsBecomeToolErrors(t *testing.T) {
	// time.Time refuses to encode years past 9999.
	unencodable := []models.Entry{{ID: 1, Content: "x", CreatedAt: time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC)}}

	for name, svc := range map[string]fixedEntries{
		"service": {err: errors.New("db down")},
		"encode":  {entries: unencodable},
	} {
		t.Run(name, func(t *testing.T) {
			srv := New(svc, "test")
			result := callTool(t, srv, "list_entries", nil)
			if !result.IsError {
				t.Fatalf("expected tool error, got %q", resultText(result))
			}

			if _, err := srv.readEntriesResource(context.Background(), mcp.ReadResourceRequest{}); err == nil {
				t.Error("expected resource read error")
			}
		})
	}
}
