// Package mcpserver exposes goal tracking tools to LLM clients over the
// Model Context Protocol (stdio transport).
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/metas/internal/apperr"
	"github.com/starford/metas/internal/goalservice"
	"github.com/starford/metas/internal/models"
)

// ContractURI is the resource describing the stored goal shape.
const ContractURI = "metas://goal-format"

// Server wraps the MCP server with goal tools.
type Server struct {
	mcp *server.MCPServer
	svc *goalservice.Service
}

// New creates a new MCP server with all goal tools registered.
func New(svc *goalservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Metas",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_goals",
		mcp.WithDescription("List goals newest first, with progress, deadline label and dashboard summary."),
		mcp.WithString("view", mcp.Description("active (default) or archived"), mcp.Enum("active", "archived")),
		mcp.WithString("category", mcp.Description("Category to filter by, or All")),
	), s.listGoals)

	s.mcp.AddTool(mcp.NewTool("get_goal",
		mcp.WithDescription("Read one goal with its checklist."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Goal id")),
	), s.getGoal)

	s.mcp.AddTool(mcp.NewTool("create_goal",
		mcp.WithDescription("Create a goal. Read the contract via get_goal_contract or the "+
			ContractURI+" resource first."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Goal title")),
		mcp.WithString("description", mcp.Description("Free-text description")),
		mcp.WithString("category", mcp.Description("Category; General when empty")),
		mcp.WithString("due_date", mcp.Description("Due date as YYYY-MM-DD")),
	), s.createGoal)

	s.mcp.AddTool(mcp.NewTool("add_step",
		mcp.WithDescription("Append an unchecked step to a goal's checklist."),
		mcp.WithNumber("goal_id", mcp.Required(), mcp.Description("Goal id")),
		mcp.WithString("text", mcp.Required(), mcp.Description("Step text")),
	), s.addStep)

	s.mcp.AddTool(mcp.NewTool("toggle_step",
		mcp.WithDescription("Mark a checklist step done or not done. The goal status follows the checklist."),
		mcp.WithNumber("goal_id", mcp.Required(), mcp.Description("Goal id")),
		mcp.WithNumber("item_id", mcp.Required(), mcp.Description("Checklist item id")),
	), s.toggleStep)

	s.mcp.AddTool(mcp.NewTool("suggest_steps",
		mcp.WithDescription("Ask the AI provider for 3-5 practical steps and append them to the goal."),
		mcp.WithNumber("goal_id", mcp.Required(), mcp.Description("Goal id")),
	), s.suggestSteps)

	s.mcp.AddTool(mcp.NewTool("get_goal_contract",
		mcp.WithDescription("Returns the stored goal format and status rules."),
	), s.getGoalContract)

	s.mcp.AddResource(
		mcp.NewResource(ContractURI, "Goal Format Contract",
			mcp.WithResourceDescription("JSON shape of a stored goal and how its status is derived."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContractResource,
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

func requireID(req mcp.CallToolRequest, key string) (int64, error) {
	v, err := req.RequireFloat(key)
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) || v <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return int64(v), nil
}

func optionalString(req mcp.CallToolRequest, key string) string {
	if v, err := req.RequireString(key); err == nil {
		return v
	}
	return ""
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func errorResult(err error) *mcp.CallToolResult {
	var verr *apperr.ValidationError
	switch {
	case errors.As(err, &verr):
		return mcp.NewToolResultError(verr.Message)
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError("not found: " + err.Error())
	case errors.Is(err, apperr.ErrUnavailable):
		return mcp.NewToolResultError("AI suggestions are not configured")
	}
	return mcp.NewToolResultError(err.Error())
}

func (s *Server) listGoals(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	board, err := s.svc.List(ctx, goalservice.ListQuery{
		View:     optionalString(req, "view"),
		Category: optionalString(req, "category"),
	})
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(board), nil
}

func (s *Server) getGoal(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireID(req, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	g, err := s.svc.Get(ctx, id)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(s.svc.Decorate(g)), nil
}

func (s *Server) createGoal(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	f := models.Fields{
		Title:       title,
		Description: optionalString(req, "description"),
		Category:    optionalString(req, "category"),
	}
	if raw := optionalString(req, "due_date"); raw != "" {
		d, err := models.ParseDate(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		f.DueDate = &d
	}
	g, err := s.svc.Create(ctx, f)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(s.svc.Decorate(g)), nil
}

func (s *Server) addStep(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireID(req, "goal_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	g, err := s.svc.AddItem(ctx, id, text)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(s.svc.Decorate(g)), nil
}

func (s *Server) toggleStep(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireID(req, "goal_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	itemID, err := requireID(req, "item_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	g, err := s.svc.ToggleItem(ctx, id, itemID)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(s.svc.Decorate(g)), nil
}

func (s *Server) suggestSteps(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireID(req, "goal_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	g, err := s.svc.ApplySuggestions(ctx, id)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(s.svc.Decorate(g)), nil
}

func (s *Server) getGoalContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(GoalFormatContract), nil
}

func (s *Server) readContractResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ContractURI,
			MIMEType: "text/markdown",
			Text:     GoalFormatContract,
		},
	}, nil
}
