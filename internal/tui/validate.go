// ABOUTME: HTTP connection validation for the posts backend.
// ABOUTME: Tests the URL and optional API key by listing posts once.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/2389-research/postadmin/internal/gateway"
)

// ValidateConnection tests the backend by fetching the post list with the given credentials.
// The context allows cancellation when the user quits during validation.
func ValidateConnection(ctx context.Context, apiURL, apiKey string) error {
	client := gateway.NewClient(apiURL,
		gateway.WithAPIKey(apiKey),
		gateway.WithTimeout(10*time.Second),
	)
	if _, err := client.List(ctx); err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	return nil
}
