package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/everestcap/skillforge/internal/models"
)

// NewStatusCmd creates the status command
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the pipeline's aggregate state",
		Long:  "Recomputes and prints task, pattern, skill, and usage totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, cleanup, err := newRuntime(false)
			if err != nil {
				return err
			}
			defer cleanup()

			overview, err := rt.orchestrator.Status(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load overview: %w", err)
			}

			fmt.Printf("Tasks documented:   %d\n", overview.TotalTasks)
			fmt.Printf("Pending analysis:   %d (threshold %d)\n", overview.PendingAnalysis, rt.cfg.AnalysisThreshold)
			fmt.Printf("Patterns detected:  %d\n", overview.TotalPatterns)
			fmt.Printf("Skills generated:   %d\n", overview.TotalSkills)
			fmt.Printf("Skill uses:         %d\n", overview.TotalUses)
			fmt.Printf("Avg success rate:   %.1f%%\n", overview.AvgSuccessRate*100)
			fmt.Printf("Time saved:         %.1f hours\n", overview.TotalTimeSavedHours)

			if len(overview.TasksByCategory) > 0 {
				fmt.Println("\nTasks by category:")
				categories := make([]string, 0, len(overview.TasksByCategory))
				for category := range overview.TasksByCategory {
					categories = append(categories, string(category))
				}
				sort.Strings(categories)
				for _, category := range categories {
					fmt.Printf("  %-12s %d\n", category, overview.TasksByCategory[models.Category(category)])
				}
			}

			return nil
		},
	}
}
