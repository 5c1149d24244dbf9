package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewOptimizeCmd creates the optimize command
func NewOptimizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "optimize",
		Short: "Revise underperforming skills",
		Long:  "Finds skills below their performance floors and revises their content",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, cleanup, err := newRuntime(true)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := rt.orchestrator.Optimize(cmd.Context())
			if err != nil {
				return fmt.Errorf("optimization failed: %w", err)
			}

			fmt.Printf("Candidates found: %d\n", result.CandidatesFound)
			fmt.Printf("Skills revised:   %d\n", len(result.SkillsRevised))
			for _, revised := range result.SkillsRevised {
				fmt.Printf("  - %s -> %s\n", revised.SkillID, revised.Version)
			}
			printStageErrors(result.Errors)
			return nil
		},
	}
}
