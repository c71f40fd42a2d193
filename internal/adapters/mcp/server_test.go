package mcpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kirillkom/doc-compliance/internal/core/domain"
)

type documentsFake struct {
	user   domain.User
	filter domain.DocumentListFilter
}

func (f *documentsFake) ListDocuments(_ context.Context, user domain.User, filter domain.DocumentListFilter) ([]domain.Document, error) {
	f.user = user
	f.filter = filter
	return []domain.Document{{ID: "d1", Name: "gst.pdf"}}, nil
}

func (f *documentsFake) GetDocument(context.Context, domain.User, string) (*domain.DocumentDetail, error) {
	return nil, nil
}

type deadlinesFake struct {
	limit int
}

func (f *deadlinesFake) ListPending(_ context.Context, _ domain.User, limit int) ([]domain.DeadlineView, error) {
	f.limit = limit
	return []domain.DeadlineView{}, nil
}

func (f *deadlinesFake) CreateDeadline(context.Context, domain.User, domain.Deadline) (*domain.Deadline, error) {
	return nil, nil
}

func (f *deadlinesFake) UpdateDeadline(context.Context, domain.User, string, domain.Patch) error {
	return nil
}

type assistantFake struct {
	err error
}

func (f assistantFake) Ask(_ context.Context, _ domain.User, text string) (domain.ChatMessage, error) {
	if f.err != nil {
		return domain.ChatMessage{}, f.err
	}
	return domain.ChatMessage{Role: domain.ChatRoleAssistant, Text: "re: " + text}, nil
}

func (f assistantFake) AnalyzeFile(context.Context, domain.User, domain.UploadFile) (domain.ChatMessage, error) {
	return domain.ChatMessage{}, nil
}

func (assistantFake) Transcript(domain.User) []domain.ChatMessage { return nil }

func (assistantFake) Reset(domain.User) {}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) == 0 {
		t.Fatalf("empty tool result")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content type %T", res.Content[0])
	}
	return text.Text
}

func TestNewRequiresUser(t *testing.T) {
	if _, err := New(Services{}, domain.User{}); err == nil {
		t.Fatalf("expected error without user id")
	}
}

func TestListDocumentsActsAsConfiguredUser(t *testing.T) {
	docs := &documentsFake{}
	s, _ := New(Services{Documents: docs}, domain.User{ID: "u1"})

	res, err := s.listDocuments(context.Background(), callRequest(map[string]any{"search": "gst", "status": "Ready"}))
	if err != nil {
		t.Fatalf("list documents: %v", err)
	}
	if docs.user.ID != "u1" || docs.filter.Search != "gst" || docs.filter.Status != "Ready" {
		t.Fatalf("unexpected call user=%+v filter=%+v", docs.user, docs.filter)
	}

	var got []domain.Document
	if err := json.Unmarshal([]byte(resultText(t, res)), &got); err != nil {
		t.Fatalf("result is not json: %v", err)
	}
	if len(got) != 1 || got[0].ID != "d1" {
		t.Fatalf("unexpected documents %+v", got)
	}
}

func TestListDeadlinesDefaultsLimit(t *testing.T) {
	deadlines := &deadlinesFake{}
	s, _ := New(Services{Deadlines: deadlines}, domain.User{ID: "u1"})

	if _, err := s.listDeadlines(context.Background(), callRequest(nil)); err != nil {
		t.Fatalf("list deadlines: %v", err)
	}
	if deadlines.limit != 10 {
		t.Fatalf("expected default limit 10, got %d", deadlines.limit)
	}
}

func TestAskReturnsReplyOrToolError(t *testing.T) {
	s, _ := New(Services{Assistant: assistantFake{}}, domain.User{ID: "u1"})
	res, err := s.ask(context.Background(), callRequest(map[string]any{"text": "what is due?"}))
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if got := resultText(t, res); got != "re: what is due?" {
		t.Fatalf("unexpected reply %q", got)
	}

	missing, _ := s.ask(context.Background(), callRequest(map[string]any{}))
	if !missing.IsError {
		t.Fatalf("expected tool error for missing text")
	}

	busy, _ := New(Services{Assistant: assistantFake{err: domain.WrapError(domain.ErrAssistantBusy, "ask", errors.New("in flight"))}}, domain.User{ID: "u1"})
	res, err = busy.ask(context.Background(), callRequest(map[string]any{"text": "hi"}))
	if err != nil {
		t.Fatalf("use case failures must not be protocol errors: %v", err)
	}
	if !res.IsError || !strings.Contains(resultText(t, res), "in progress") {
		t.Fatalf("expected busy tool error, got %+v", res)
	}
}

func TestMCPServerBuilds(t *testing.T) {
	s, _ := New(Services{}, domain.User{ID: "u1"})
	if s.MCPServer() == nil {
		t.Fatalf("expected server")
	}
}
