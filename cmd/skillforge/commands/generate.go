package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/everestcap/skillforge/internal/pipeline"
)

// NewGenerateCmd creates the generate command
func NewGenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Synthesize skills from qualifying patterns",
		Long:  "Turns unsynthesized patterns above the viability floor into versioned skills",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, cleanup, err := newRuntime(true)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := rt.orchestrator.Generate(cmd.Context())
			if err != nil {
				return fmt.Errorf("generation failed: %w", err)
			}

			fmt.Printf("Patterns considered: %d\n", result.PatternsConsidered)
			if result.PatternsMerged > 0 {
				fmt.Printf("Patterns merged:     %d\n", result.PatternsMerged)
			}
			fmt.Printf("Skills created:      %d\n", len(result.SkillsCreated))
			for _, id := range result.SkillsCreated {
				fmt.Printf("  - %s\n", id)
			}
			printStageErrors(result.Errors)
			return nil
		},
	}
}

// printStageErrors prints per-item failures from a pipeline run
func printStageErrors(errors []pipeline.StageError) {
	if len(errors) == 0 {
		return
	}
	fmt.Printf("Failures: %d\n", len(errors))
	for _, stageErr := range errors {
		fmt.Printf("  - %s: %s\n", stageErr.Item, stageErr.Message)
	}
}
