package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/everestcap/skillforge/cmd/skillforge/commands"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "skillforge",
		Short: "Skill pipeline for documented engineering work",
		Long:  "Documents completed tasks, detects recurring patterns, and synthesizes reusable skills",
	}

	rootCmd.AddCommand(commands.NewStatusCmd())
	rootCmd.AddCommand(commands.NewAnalyzeCmd())
	rootCmd.AddCommand(commands.NewGenerateCmd())
	rootCmd.AddCommand(commands.NewOptimizeCmd())
	rootCmd.AddCommand(commands.NewMigrateCmd())
	rootCmd.AddCommand(commands.NewServeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
