package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewMigrateCmd creates the migrate command
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Long:  "Applies the idempotent schema statements for tasks, patterns, skills, and usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, cleanup, err := newRuntime(false)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := rt.db.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Println("Schema is up to date")
			return nil
		},
	}
}
