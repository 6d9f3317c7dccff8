// ABOUTME: Tests for MCP server creation and validation.
// ABOUTME: Verifies the server requires both the admin service and a post lookup.
package mcp

import (
	"testing"

	"github.com/2389-research/postadmin/internal/admin"
	"github.com/2389-research/postadmin/internal/store"
)

func TestNewServerRequiresService(t *testing.T) {
	_, err := NewServer(nil, &fakeBackend{})
	if err == nil {
		t.Error("expected error when service is nil")
	}
}

func TestNewServerRequiresLookup(t *testing.T) {
	svc, _ := admin.NewService(&fakeBackend{}, store.New())

	_, err := NewServer(svc, nil)
	if err == nil {
		t.Error("expected error when lookup is nil")
	}
}

func TestNewServerSuccess(t *testing.T) {
	backend := &fakeBackend{}
	svc, _ := admin.NewService(backend, store.New())

	server, err := NewServer(svc, backend)
	if err != nil {
		t.Fatalf("NewServer error: %v", err)
	}
	if server == nil {
		t.Error("expected non-nil server")
	}
}
