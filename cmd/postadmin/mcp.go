// ABOUTME: MCP server command implementation for postadmin.
// ABOUTME: Starts the MCP server in stdio mode, optionally exposing gateway metrics over HTTP.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	mcppkg "github.com/2389-research/postadmin/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server (stdio mode)",
	Long: `Start the Model Context Protocol server for AI agent integration.

The MCP server communicates via stdio, allowing AI agents like Claude
to list, create, edit, delete and filter posts through a standardized protocol.`,
	RunE: runMCP,
}

var mcpMetricsAddr string

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringVar(&mcpMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (off when empty)")
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := globalLogger.With().Str("component", "mcp").Logger()

	svc, err := newService(globalClient)
	if err != nil {
		return err
	}

	server, err := mcppkg.NewServer(svc, globalClient, mcppkg.WithLogger(logger))
	if err != nil {
		return err
	}

	if mcpMetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsSrv := &http.Server{Addr: mcpMetricsAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("metrics server stopped")
			}
		}()
		defer func() { _ = metricsSrv.Close() }()
	}

	return server.Serve(ctx)
}
