// ABOUTME: MCP tool implementations for post administration.
// ABOUTME: Registers list, get, create, update, delete, filter and reset_filter tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/2389-research/postadmin/internal/gateway"
	"github.com/2389-research/postadmin/internal/models"
)

const defaultListLimit = 20

func (s *Server) registerPostTools() {
	s.mcp.AddTool(&gomcp.Tool{
		Name:        "list_posts",
		Description: "List the posts currently shown, loading them from the backend on first use.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"refresh": {"type": "boolean", "description": "Reload from the backend first (an active filter's snapshot still wins)"},
				"limit": {"type": "number", "description": "Maximum number of posts to return (default 20)"},
				"offset": {"type": "number", "description": "Number of posts to skip (default 0)"}
			}
		}`),
	}, s.handleListPosts)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "get_post",
		Description: "Fetch one post from the backend by numeric id or title slug.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"id_or_key": {"type": "string", "description": "Numeric id, or a title / slug such as hello-world", "minLength": 1}
			},
			"required": ["id_or_key"]
		}`),
	}, s.handleGetPost)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "create_post",
		Description: "Create a post. Title and body need at least 2 characters.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"title": {"type": "string", "description": "Post title", "minLength": 2},
				"body": {"type": "string", "description": "Post body", "minLength": 2},
				"user_id": {"type": "number", "description": "Owner id (default 1)"}
			},
			"required": ["title", "body"]
		}`),
	}, s.handleCreatePost)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "update_post",
		Description: "Edit the title or body of a listed post. Edits are kept locally and are not sent to the backend.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"id": {"type": "number", "description": "Id of the post to edit"},
				"title": {"type": "string", "description": "New title (optional)"},
				"body": {"type": "string", "description": "New body (optional)"}
			},
			"required": ["id"]
		}`),
	}, s.handleUpdatePost)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "delete_post",
		Description: "Remove a listed post. The removal is local and survives filtering.",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"id": {"type": "number", "description": "Id of the post to delete"}
			},
			"required": ["id"]
		}`),
	}, s.handleDeletePost)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "filter_posts",
		Description: "Narrow the list to posts whose id equals the query or whose title or body contains it (case-sensitive).",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"query": {"type": "string", "description": "Search text"}
			},
			"required": ["query"]
		}`),
	}, s.handleFilterPosts)

	s.mcp.AddTool(&gomcp.Tool{
		Name:        "reset_filter",
		Description: "Clear the search text and restore the full list.",
		InputSchema: json.RawMessage(`{"type": "object", "properties": {}}`),
	}, s.handleResetFilter)
}

// ensureLoaded fetches the list once so id-based tools have something to act on.
func (s *Server) ensureLoaded(ctx context.Context) error {
	state := s.svc.Store().State()
	if len(state.Items) > 0 || state.Filtering() {
		return nil
	}
	return s.svc.LoadAll(ctx)
}

func (s *Server) handleListPosts(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		Refresh bool `json:"refresh"`
		Limit   int  `json:"limit"`
		Offset  int  `json:"offset"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}
	if args.Limit <= 0 {
		args.Limit = defaultListLimit
	}
	if args.Offset < 0 {
		args.Offset = 0
	}

	var err error
	if args.Refresh {
		err = s.svc.LoadAll(ctx)
	} else {
		err = s.ensureLoaded(ctx)
	}
	if err != nil {
		return toolError("failed to load posts: %v", err), nil
	}

	items := s.svc.Store().State().Items
	total := len(items)
	start := min(args.Offset, total)
	end := min(start+args.Limit, total)
	return textResult(formatPosts(items[start:end], total)), nil
}

func (s *Server) handleGetPost(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		IDOrKey string `json:"id_or_key"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}

	key := models.NormalizeKey(args.IDOrKey)
	if key == "" {
		return toolError("id_or_key is required"), nil
	}

	post, err := s.lookup.Get(ctx, key)
	if errors.Is(err, gateway.ErrNotFound) {
		return toolError("post %q not found", key), nil
	}
	if err != nil {
		return toolError("failed to get post: %v", err), nil
	}
	return textResult(formatPost(*post)), nil
}

func (s *Server) handleCreatePost(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		Title  string `json:"title"`
		Body   string `json:"body"`
		UserID int    `json:"user_id"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}

	draft := models.NewDraft(args.Title, args.Body)
	if args.UserID > 0 {
		draft.UserID = args.UserID
	}

	post, err := s.svc.CreatePost(ctx, draft)
	if err != nil {
		s.svc.Notice()
		return toolError("%v", err), nil
	}
	s.logger.Debug().Int("id", post.ID).Msg("create_post")
	return textResult(s.noticeText(fmt.Sprintf("Post created (ID: %d)", post.ID))), nil
}

func (s *Server) handleUpdatePost(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		ID    int     `json:"id"`
		Title *string `json:"title"`
		Body  *string `json:"body"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}
	if args.ID <= 0 {
		return toolError("id must be a positive number"), nil
	}
	if err := s.ensureLoaded(ctx); err != nil {
		return toolError("failed to load posts: %v", err), nil
	}

	post, ok := s.svc.Store().State().Find(args.ID)
	if !ok {
		return toolError("post %d is not in the current list", args.ID), nil
	}
	if args.Title != nil {
		post.Title = *args.Title
	}
	if args.Body != nil {
		post.Body = *args.Body
	}

	s.svc.SelectPost(post)
	if _, err := s.svc.SaveOrUpdate(post); err != nil {
		return toolError("%v", err), nil
	}
	return textResult(s.noticeText(fmt.Sprintf("Post %d updated", post.ID))), nil
}

func (s *Server) handleDeletePost(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		ID int `json:"id"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}
	if err := s.ensureLoaded(ctx); err != nil {
		return toolError("failed to load posts: %v", err), nil
	}

	post, ok := s.svc.Store().State().Find(args.ID)
	if !ok {
		return toolError("post %d is not in the current list", args.ID), nil
	}
	s.svc.SelectPost(post)
	s.svc.DeleteActive()
	return textResult(s.noticeText(fmt.Sprintf("Post %d deleted", post.ID))), nil
}

func (s *Server) handleFilterPosts(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError("invalid arguments: %v", err), nil
	}
	if strings.TrimSpace(args.Query) == "" {
		return toolError("query is required"), nil
	}
	if err := s.ensureLoaded(ctx); err != nil {
		return toolError("failed to load posts: %v", err), nil
	}

	s.svc.ApplyFilter(args.Query)
	items := s.svc.Store().State().Items
	return textResult(formatPosts(items, len(items))), nil
}

func (s *Server) handleResetFilter(ctx context.Context, req *gomcp.CallToolRequest) (*gomcp.CallToolResult, error) {
	if err := s.svc.ResetFilter(ctx); err != nil {
		return toolError("failed to reload posts: %v", err), nil
	}
	n := len(s.svc.Store().State().Items)
	return textResult(fmt.Sprintf("Filter cleared, %d posts listed.", n)), nil
}

// noticeText appends the pending store notice, if any, to text.
func (s *Server) noticeText(text string) string {
	notice, ok := s.svc.Notice()
	if !ok {
		return text
	}
	return fmt.Sprintf("%s\n%s: %s", text, notice.Title, notice.Message)
}

func formatPost(p models.Post) string {
	return fmt.Sprintf("#%d %s (user %d)\n%s\n", p.ID, p.Title, p.UserID, p.Body)
}

func formatPosts(posts []models.Post, total int) string {
	if len(posts) == 0 {
		return "No posts found."
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Showing %d of %d posts\n", len(posts), total))
	for _, p := range posts {
		sb.WriteString("---\n")
		sb.WriteString(formatPost(p))
	}
	return sb.String()
}

func textResult(text string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: text}},
	}
}

func toolError(format string, args ...interface{}) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}
