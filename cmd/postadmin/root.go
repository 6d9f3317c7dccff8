// ABOUTME: Root Cobra command and global state for the postadmin CLI.
// ABOUTME: Loads config, builds the logger and the backend client before each command.
package main

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/2389-research/postadmin/internal/admin"
	"github.com/2389-research/postadmin/internal/config"
	"github.com/2389-research/postadmin/internal/gateway"
	"github.com/2389-research/postadmin/internal/logging"
	"github.com/2389-research/postadmin/internal/store"
)

var globalConfig *config.Config
var globalLogger *logging.Logger
var globalClient *gateway.Client

var rootCmd = &cobra.Command{
	Use:   "postadmin",
	Short: "Admin console for a posts backend",
	Long: `
   POSTADMIN

List, create, edit, delete and filter posts held by a REST backend.
Run "postadmin setup" once to point it at your backend, or
"postadmin backend" to start a local one.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" || cmd.Name() == "setup" {
			return nil
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		globalConfig = cfg

		logger, err := buildLogger(cfg, cmd.Name() == "ui")
		if err != nil {
			return fmt.Errorf("failed to open log: %w", err)
		}
		globalLogger = logger

		timeout, err := cfg.GetTimeout()
		if err != nil {
			return err
		}
		globalClient = gateway.NewClient(cfg.GetAPIURL(),
			gateway.WithAPIKey(cfg.Backend.APIKey),
			gateway.WithTimeout(timeout),
			gateway.WithLogger(logger.With().Str("component", "gateway").Logger()),
			gateway.WithRegisterer(prometheus.DefaultRegisterer),
		)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if globalLogger != nil {
			_ = globalLogger.Close()
			globalLogger = nil
		}
		return nil
	},
}

// buildLogger logs to the configured file. Without one, the TUI discards
// logs since it owns the terminal, and other commands log to stderr.
func buildLogger(cfg *config.Config, ownsTerminal bool) (*logging.Logger, error) {
	path, err := cfg.GetLogFile()
	if err != nil {
		return nil, err
	}

	b := logging.New().WithLevel(cfg.Log.Level)
	switch {
	case path != "":
		b = b.FromPath(path)
	case !ownsTerminal:
		b = b.FromWriter(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return b.Make()
}

// newService wires a fresh store and service over gw.
func newService(gw admin.Gateway) (*admin.Service, error) {
	return admin.NewService(gw, store.New(),
		admin.WithLogger(globalLogger.With().Str("component", "admin").Logger()),
	)
}
