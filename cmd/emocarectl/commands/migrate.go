package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"emocare/backend/internal/db"
)

// NewMigrateCmd creates the migrate command
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Long:  "Apply the embedded schema to DATABASE_URL. Safe to run repeatedly.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			cfg, pool, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := db.Migrate(ctx, pool); err != nil {
				return fmt.Errorf("failed to apply schema: %w", err)
			}
			if err := db.ValidateRuntimeSchema(ctx, pool); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema applied to %s\n", db.MaskURL(cfg.DatabaseURL))
			return nil
		},
	}
}
