// ABOUTME: Cobra command running the bbolt-backed development posts backend.
// ABOUTME: Serves GET /posts/, GET /post/{key}, POST /posts and /metrics until interrupted.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/2389-research/postadmin/internal/backend"
)

var backendCmd = &cobra.Command{
	Use:   "backend",
	Short: "Run a local posts backend",
	Long: `Serve a development posts backend backed by a bbolt file.

Point "postadmin setup" (or POSTADMIN_API_URL) at its address to try the
admin screens without a real API.`,
	RunE: runBackend,
}

// Flags
var (
	backendAddr    string
	backendDataDir string
	backendSeed    int
	backendAPIKey  string
)

func init() {
	rootCmd.AddCommand(backendCmd)

	backendCmd.Flags().StringVar(&backendAddr, "addr", "", "Listen address (default from config, then :8089)")
	backendCmd.Flags().StringVar(&backendDataDir, "data-dir", "", "Directory holding posts.db (default from config)")
	backendCmd.Flags().IntVar(&backendSeed, "seed", 0, "Load this many sample posts when the database is empty")
	backendCmd.Flags().StringVar(&backendAPIKey, "api-key", "", "Require this x-api-key on post routes")
}

func runBackend(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	addr := backendAddr
	if addr == "" {
		addr = globalConfig.GetDevAddr()
	}

	dataDir := backendDataDir
	if dataDir == "" {
		dir, err := globalConfig.GetDevDataDir()
		if err != nil {
			return fmt.Errorf("failed to resolve data dir: %w", err)
		}
		dataDir = dir
	}

	db, err := backend.Open(dataDir)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if backendSeed > 0 {
		if err := db.Seed(backendSeed); err != nil {
			return fmt.Errorf("failed to seed posts: %w", err)
		}
	}

	logger := globalLogger.With().Str("component", "backend").Logger()
	logger.Info().Str("data_dir", dataDir).Msg("opened posts database")

	srv := backend.NewServer(db,
		backend.WithAPIKey(backendAPIKey),
		backend.WithLogger(logger),
	)
	return srv.ListenAndServe(ctx, addr)
}
