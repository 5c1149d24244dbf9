package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewAnalyzeCmd creates the analyze command
func NewAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Detect recurring patterns in unanalyzed tasks",
		Long:  "Groups unanalyzed tasks into patterns once enough tasks are pending",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, cleanup, err := newRuntime(false)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := rt.orchestrator.Analyze(cmd.Context())
			if err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}

			if !result.ThresholdMet {
				fmt.Println(result.Message)
				return nil
			}

			fmt.Printf("Tasks analyzed:   %d\n", result.TasksAnalyzed)
			fmt.Printf("Patterns created: %d\n", result.PatternsCreated)
			fmt.Printf("Patterns updated: %d\n", result.PatternsUpdated)
			for _, id := range result.PatternIDs {
				fmt.Printf("  - %s\n", id)
			}
			printStageErrors(result.Errors)
			return nil
		},
	}
}
