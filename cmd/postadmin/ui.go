// ABOUTME: Cobra command launching the interactive post admin screen.
// ABOUTME: Runs the bubbletea admin model over a service bound to the configured backend.
package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/2389-research/postadmin/internal/tui"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Open the interactive post table",
	Long: `Browse posts in a paginated table.

Keys: a add, e/enter edit, d delete, / filter, x clear filter,
r reload, R reload dropping local edits, n/p page, q quit.`,
	RunE: runUI,
}

func init() {
	rootCmd.AddCommand(uiCmd)
}

func runUI(cmd *cobra.Command, args []string) error {
	svc, err := newService(globalClient)
	if err != nil {
		return err
	}

	model := tui.NewAdminModel(svc, globalConfig.GetRowsPerPage())
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
