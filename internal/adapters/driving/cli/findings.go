package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var findingsScope string

var findingsCmd = &cobra.Command{
	Use:   "findings [framework] [firm]",
	Short: "Build the structured findings checklist for a firm",
	Long: `Evaluates the firm's indexed evidence against the framework's
requirement taxonomy and prints the findings as JSON. This is the same
checklist a full report run embeds, available standalone.`,
	Args: cobra.ExactArgs(2),
	RunE: runFindings,
}

func init() {
	findingsCmd.Flags().StringVar(&findingsScope, "scope", "", "free-text scope for the assessment")
	rootCmd.AddCommand(findingsCmd)
}

func runFindings(cmd *cobra.Command, args []string) error {
	if err := initServices(); err != nil {
		return err
	}
	defer closeServices()

	findings, err := findingsService.BuildFindings(context.Background(), args[0], args[1], findingsScope)
	if err != nil {
		return fmt.Errorf("build findings: %w", err)
	}

	return printJSON(cmd, findings)
}
