package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"emocare/backend/internal/suggestion"
)

// NewSuggestionsCmd creates the suggestions command
func NewSuggestionsCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "suggestions",
		Short: "Print derived suggestions for a user",
		Long:  "Compute message metrics and the suggestion set for a user without saving them",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID = strings.TrimSpace(userID)
			if userID == "" {
				return errors.New("--user-id is required")
			}

			ctx := context.Background()
			cfg, pool, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			set, metrics, err := suggestion.NewEngine(newStore(cfg, pool)).Derive(ctx, userID)
			if err != nil {
				return fmt.Errorf("failed to derive suggestions: %w", err)
			}

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(map[string]any{
				"userId":      userID,
				"timezone":    cfg.SuggestionTimezone,
				"metrics":     metrics,
				"suggestions": set,
			})
		},
	}

	cmd.Flags().StringVar(&userID, "user-id", "", "user id to inspect")
	return cmd
}
