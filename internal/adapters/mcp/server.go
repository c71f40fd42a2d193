package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/doc-compliance/internal/core/domain"
	"github.com/kirillkom/doc-compliance/internal/core/ports"
)

const (
	serverName    = "doc-compliance"
	serverVersion = "1.0.0"
)

type Services struct {
	Documents ports.DocumentReader
	Deadlines ports.DeadlineService
	Entities  ports.EntityService
	Dashboard ports.DashboardReader
	Assistant ports.Assistant
}

// Server exposes read-only views and the assistant to MCP clients. Every call
// acts as the single user the process was configured for.
type Server struct {
	svc  Services
	user domain.User
}

func New(svc Services, user domain.User) (*Server, error) {
	if user.ID == "" {
		return nil, fmt.Errorf("mcp server needs a user id")
	}
	return &Server{svc: svc, user: user}, nil
}

func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer(serverName, serverVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	srv.AddTool(mcp.NewTool("dashboard",
		mcp.WithDescription("Upcoming deadlines, recent documents and open AI suggestions."),
	), s.dashboard)

	srv.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List uploaded compliance documents, newest first."),
		mcp.WithString("search", mcp.Description("Case-insensitive match on name or type.")),
		mcp.WithString("category", mcp.Description("Exact category, or 'all'.")),
		mcp.WithString("status", mcp.Description("Ready, Processing, Needs Review or Expired.")),
	), s.listDocuments)

	srv.AddTool(mcp.NewTool("list_pending_deadlines",
		mcp.WithDescription("Pending deadlines by due date with days remaining."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of deadlines, default 10.")),
	), s.listDeadlines)

	srv.AddTool(mcp.NewTool("list_entities",
		mcp.WithDescription("Tracked people and businesses."),
		mcp.WithString("search", mcp.Description("Match on name or email.")),
		mcp.WithString("type", mcp.Description("Person, Business or all.")),
	), s.listEntities)

	srv.AddTool(mcp.NewTool("ask_assistant",
		mcp.WithDescription("Ask the compliance assistant a question grounded in your documents and deadlines."),
		mcp.WithString("text", mcp.Required(), mcp.Description("The question.")),
	), s.ask)

	return srv
}

// ServeStdio blocks serving MCP over stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.MCPServer())
}

func (s *Server) dashboard(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dash, err := s.svc.Dashboard.Dashboard(ctx, s.user)
	return jsonResult("dashboard", dash, err)
}

func (s *Server) listDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docs, err := s.svc.Documents.ListDocuments(ctx, s.user, domain.DocumentListFilter{
		Search:   req.GetString("search", ""),
		Category: req.GetString("category", ""),
		Status:   req.GetString("status", ""),
	})
	return jsonResult("list_documents", docs, err)
}

func (s *Server) listDeadlines(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	views, err := s.svc.Deadlines.ListPending(ctx, s.user, req.GetInt("limit", 10))
	return jsonResult("list_pending_deadlines", views, err)
}

func (s *Server) listEntities(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entities, err := s.svc.Entities.ListEntities(ctx, s.user, domain.EntityListFilter{
		Search: req.GetString("search", ""),
		Type:   req.GetString("type", ""),
	})
	return jsonResult("list_entities", entities, err)
}

func (s *Server) ask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	reply, err := s.svc.Assistant.Ask(ctx, s.user, text)
	if err != nil {
		return toolError("ask_assistant", err), nil
	}
	return mcp.NewToolResultText(reply.Text), nil
}

// jsonResult reports use case failures as tool errors so the client model sees
// them, and keeps protocol errors for encoding problems only.
func jsonResult(tool string, v any, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return toolError(tool, err), nil
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s result: %w", tool, err)
	}
	return mcp.NewToolResultText(string(payload)), nil
}

func toolError(tool string, err error) *mcp.CallToolResult {
	slog.Warn("mcp_tool_failed", "tool", tool, "error", err)
	return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", tool, err))
}
