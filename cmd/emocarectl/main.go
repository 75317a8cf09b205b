package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"emocare/backend/cmd/emocarectl/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "emocarectl",
		Short: "Admin tool for the Emocare API",
		Long:  "CLI tool for applying the database schema, seeding demo data and inspecting suggestions",
	}

	rootCmd.AddCommand(commands.NewMigrateCmd())
	rootCmd.AddCommand(commands.NewSeedDemoCmd())
	rootCmd.AddCommand(commands.NewSuggestionsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
