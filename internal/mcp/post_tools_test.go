// ABOUTME: Tests for post MCP tool handlers.
// ABOUTME: Covers listing, lookup, create, local update/delete and filtering.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"testing"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/2389-research/postadmin/internal/admin"
	"github.com/2389-research/postadmin/internal/gateway"
	"github.com/2389-research/postadmin/internal/models"
	"github.com/2389-research/postadmin/internal/store"
)

// fakeBackend serves as both the service gateway and the post lookup.
type fakeBackend struct {
	posts     []models.Post
	listErr   error
	createErr error
}

func (f *fakeBackend) List(context.Context) ([]models.Post, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.Post(nil), f.posts...), nil
}

func (f *fakeBackend) Create(_ context.Context, draft models.Post) (*models.Post, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	out := draft
	if out.ID == 0 {
		out.ID = len(f.posts) + 1
	}
	f.posts = append(f.posts, out)
	return &out, nil
}

func (f *fakeBackend) Get(_ context.Context, idOrKey string) (*models.Post, error) {
	for _, p := range f.posts {
		if strconv.Itoa(p.ID) == idOrKey || p.Key() == idOrKey {
			out := p
			return &out, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", gateway.ErrNotFound, idOrKey)
}

func makePostServer(t *testing.T, posts ...models.Post) (*Server, *fakeBackend) {
	t.Helper()
	backend := &fakeBackend{posts: posts}
	svc, err := admin.NewService(backend, store.New())
	if err != nil {
		t.Fatalf("NewService error: %v", err)
	}
	server, err := NewServer(svc, backend)
	if err != nil {
		t.Fatalf("NewServer error: %v", err)
	}
	return server, backend
}

func seedPosts() []models.Post {
	return []models.Post{
		{ID: 1, Title: "Hello World", Body: "first body", UserID: 1},
		{ID: 2, Title: "Release notes", Body: "second body", UserID: 2},
		{ID: 3, Title: "Roadmap", Body: "third", UserID: 1},
	}
}

func callTool(t *testing.T, s *Server, name string, args interface{}) *gomcp.CallToolResult {
	t.Helper()
	argsJSON, err := json.Marshal(args)
	if err != nil {
		t.Fatalf("failed to marshal args: %v", err)
	}

	req := &gomcp.CallToolRequest{
		Params: &gomcp.CallToolParamsRaw{
			Name:      name,
			Arguments: argsJSON,
		},
	}

	handlers := map[string]func(context.Context, *gomcp.CallToolRequest) (*gomcp.CallToolResult, error){
		"list_posts":   s.handleListPosts,
		"get_post":     s.handleGetPost,
		"create_post":  s.handleCreatePost,
		"update_post":  s.handleUpdatePost,
		"delete_post":  s.handleDeletePost,
		"filter_posts": s.handleFilterPosts,
		"reset_filter": s.handleResetFilter,
	}
	handler, ok := handlers[name]
	if !ok {
		t.Fatalf("unknown tool: %s", name)
	}

	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return result
}

func getTextContent(result *gomcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return ""
	}
	if tc, ok := result.Content[0].(*gomcp.TextContent); ok {
		return tc.Text
	}
	return ""
}

func TestListPostsLoadsOnFirstUse(t *testing.T) {
	s, _ := makePostServer(t, seedPosts()...)

	result := callTool(t, s, "list_posts", map[string]interface{}{})
	if result.IsError {
		t.Fatalf("expected success, got error: %s", getTextContent(result))
	}

	text := getTextContent(result)
	if !strings.Contains(text, "Showing 3 of 3 posts") {
		t.Errorf("expected count header, got: %s", text)
	}
	if !strings.Contains(text, "#2 Release notes (user 2)") {
		t.Errorf("expected post line, got: %s", text)
	}
}

func TestListPostsPaging(t *testing.T) {
	s, _ := makePostServer(t, seedPosts()...)

	text := getTextContent(callTool(t, s, "list_posts", map[string]interface{}{"limit": 1, "offset": 2}))
	if !strings.Contains(text, "Showing 1 of 3 posts") || !strings.Contains(text, "#3 Roadmap") {
		t.Errorf("unexpected page: %s", text)
	}

	text = getTextContent(callTool(t, s, "list_posts", map[string]interface{}{"offset": 10}))
	if text != "No posts found." {
		t.Errorf("expected empty page, got: %s", text)
	}
}

func TestListPostsLoadFailure(t *testing.T) {
	s, backend := makePostServer(t)
	backend.listErr = fmt.Errorf("%w: connection refused", gateway.ErrFetchFailed)

	result := callTool(t, s, "list_posts", map[string]interface{}{"refresh": true})
	if !result.IsError {
		t.Error("expected tool error when the backend is down")
	}
}

func TestGetPostByIDAndTitle(t *testing.T) {
	s, _ := makePostServer(t, seedPosts()...)

	result := callTool(t, s, "get_post", map[string]string{"id_or_key": "2"})
	if result.IsError || !strings.Contains(getTextContent(result), "Release notes") {
		t.Errorf("expected post 2, got: %s", getTextContent(result))
	}

	result = callTool(t, s, "get_post", map[string]string{"id_or_key": "Hello World"})
	if result.IsError || !strings.Contains(getTextContent(result), "#1 Hello World") {
		t.Errorf("expected title lookup to resolve via slug, got: %s", getTextContent(result))
	}
}

func TestGetPostNotFound(t *testing.T) {
	s, _ := makePostServer(t, seedPosts()...)

	result := callTool(t, s, "get_post", map[string]string{"id_or_key": "99"})
	if !result.IsError {
		t.Fatal("expected error for missing post")
	}
	if !strings.Contains(getTextContent(result), "not found") {
		t.Errorf("expected not found message, got: %s", getTextContent(result))
	}

	result = callTool(t, s, "get_post", map[string]string{"id_or_key": "  "})
	if !result.IsError {
		t.Error("expected error for blank key")
	}
}

func TestCreatePostAssignsNextID(t *testing.T) {
	s, backend := makePostServer(t, seedPosts()...)

	result := callTool(t, s, "create_post", map[string]interface{}{
		"title": "Fresh",
		"body":  "brand new",
	})
	if result.IsError {
		t.Fatalf("expected success, got error: %s", getTextContent(result))
	}

	text := getTextContent(result)
	if !strings.Contains(text, "Post created (ID: 4)") {
		t.Errorf("expected id 4, got: %s", text)
	}
	if !strings.Contains(text, "Fresh, post created correctly") {
		t.Errorf("expected notice text, got: %s", text)
	}
	if len(backend.posts) != 4 || backend.posts[3].UserID != models.DefaultUserID {
		t.Errorf("expected backend to receive the draft, got %+v", backend.posts)
	}
}

func TestCreatePostValidation(t *testing.T) {
	s, _ := makePostServer(t, seedPosts()...)

	result := callTool(t, s, "create_post", map[string]interface{}{"title": "x", "body": ""})
	if !result.IsError {
		t.Fatal("expected validation error")
	}
	text := getTextContent(result)
	if !strings.Contains(text, "body: this field is required") || !strings.Contains(text, "title: minimum 2 characters") {
		t.Errorf("expected field errors, got: %s", text)
	}
}

func TestCreatePostBackendFailure(t *testing.T) {
	s, backend := makePostServer(t, seedPosts()...)
	backend.createErr = fmt.Errorf("%w: 500", gateway.ErrFetchFailed)

	result := callTool(t, s, "create_post", map[string]interface{}{"title": "Good", "body": "Body"})
	if !result.IsError {
		t.Fatal("expected error when the backend rejects the create")
	}
	if _, pending := s.svc.Notice(); pending {
		t.Error("expected the failure notice to be consumed")
	}
}

func TestUpdatePostIsLocal(t *testing.T) {
	s, backend := makePostServer(t, seedPosts()...)

	result := callTool(t, s, "update_post", map[string]interface{}{"id": 2, "title": "Renamed"})
	if result.IsError {
		t.Fatalf("expected success, got error: %s", getTextContent(result))
	}
	if !strings.Contains(getTextContent(result), "Updated Post") {
		t.Errorf("expected update notice, got: %s", getTextContent(result))
	}

	post, _ := s.svc.Store().State().Find(2)
	if post.Title != "Renamed" || post.Body != "second body" {
		t.Errorf("expected only the title to change, got %+v", post)
	}
	if backend.posts[1].Title != "Release notes" {
		t.Error("expected the backend copy to stay untouched")
	}
}

func TestUpdatePostUnknownID(t *testing.T) {
	s, _ := makePostServer(t, seedPosts()...)

	if !callTool(t, s, "update_post", map[string]interface{}{"id": 42, "title": "Nope"}).IsError {
		t.Error("expected error for unknown id")
	}
	if !callTool(t, s, "update_post", map[string]interface{}{"id": 0}).IsError {
		t.Error("expected error for zero id")
	}
}

func TestDeletePostSurvivesFilterReset(t *testing.T) {
	s, _ := makePostServer(t, seedPosts()...)

	result := callTool(t, s, "filter_posts", map[string]string{"query": "Re"})
	text := getTextContent(result)
	if !strings.Contains(text, "Release notes") || strings.Contains(text, "Hello World") {
		t.Fatalf("unexpected filter result: %s", text)
	}

	result = callTool(t, s, "delete_post", map[string]interface{}{"id": 2})
	if result.IsError || !strings.Contains(getTextContent(result), "Deleted Post") {
		t.Fatalf("expected delete notice, got: %s", getTextContent(result))
	}

	result = callTool(t, s, "reset_filter", map[string]interface{}{})
	if result.IsError {
		t.Fatalf("expected success, got error: %s", getTextContent(result))
	}
	if !strings.Contains(getTextContent(result), "2 posts listed") {
		t.Errorf("expected deleted post to stay gone, got: %s", getTextContent(result))
	}
	if _, found := s.svc.Store().State().Find(2); found {
		t.Error("expected post 2 to be gone after reset")
	}
}

func TestFilterPostsRequiresQuery(t *testing.T) {
	s, _ := makePostServer(t, seedPosts()...)

	if !callTool(t, s, "filter_posts", map[string]string{"query": "   "}).IsError {
		t.Error("expected error for blank query")
	}
}

func TestFilterPostsByID(t *testing.T) {
	s, _ := makePostServer(t, seedPosts()...)

	text := getTextContent(callTool(t, s, "filter_posts", map[string]string{"query": "3"}))
	if !strings.Contains(text, "Showing 1 of 1 posts") || !strings.Contains(text, "#3 Roadmap") {
		t.Errorf("expected id match, got: %s", text)
	}
}
