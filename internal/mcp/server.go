// ABOUTME: MCP server initialization and configuration for postadmin.
// ABOUTME: Exposes the post admin operations as tools for AI agent access.
package mcp

import (
	"context"
	"fmt"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/2389-research/postadmin/internal/admin"
	"github.com/2389-research/postadmin/internal/models"
)

// PostLookup fetches a single post from the backend.
type PostLookup interface {
	Get(ctx context.Context, idOrKey string) (*models.Post, error)
}

// Server wraps the MCP server with the post admin service.
type Server struct {
	mcp    *gomcp.Server
	svc    *admin.Service
	lookup PostLookup
	logger zerolog.Logger
}

// ServerOption configures optional Server dependencies.
type ServerOption func(*Server)

// WithLogger sets the tool call logger.
func WithLogger(logger zerolog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates an MCP server over the admin service and a backend lookup.
func NewServer(svc *admin.Service, lookup PostLookup, opts ...ServerOption) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("admin service is required")
	}
	if lookup == nil {
		return nil, fmt.Errorf("post lookup is required")
	}

	mcpServer := gomcp.NewServer(
		&gomcp.Implementation{
			Name:    "postadmin",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcp:    mcpServer,
		svc:    svc,
		lookup: lookup,
		logger: zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.registerPostTools()

	return s, nil
}

// Serve starts the MCP server in stdio mode.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcp.Run(ctx, &gomcp.StdioTransport{})
}
