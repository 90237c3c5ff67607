package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/attest-labs/reportgen/internal/core/domain"
)

var sectionsJSON bool

var sectionsCmd = &cobra.Command{
	Use:   "sections [framework]",
	Short: "List a framework's report sections",
	Args:  cobra.ExactArgs(1),
	RunE:  runListSections,
}

var frameworksCmd = &cobra.Command{
	Use:   "frameworks",
	Short: "List configured frameworks",
	Args:  cobra.NoArgs,
	RunE:  runFrameworks,
}

func init() {
	sectionsCmd.Flags().BoolVar(&sectionsJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(sectionsCmd)
	rootCmd.AddCommand(frameworksCmd)
}

func runListSections(cmd *cobra.Command, args []string) error {
	if err := initServices(); err != nil {
		return err
	}
	defer closeServices()

	sections, err := promptStore.Sections(args[0])
	if err != nil {
		if errors.Is(err, domain.ErrUnknownFramework) {
			return fmt.Errorf("unknown framework %q", args[0])
		}
		return fmt.Errorf("load sections: %w", err)
	}

	if sectionsJSON {
		return printJSON(cmd, sections)
	}

	if len(sections) == 0 {
		cmd.Println("No sections configured.")
		return nil
	}
	for _, s := range sections {
		state := ""
		if !s.Enabled {
			state = " (disabled)"
		}
		cmd.Printf("  %d. %s [%s]%s\n", s.Position, s.Name, s.ID, state)
	}
	return nil
}

func runFrameworks(cmd *cobra.Command, _ []string) error {
	if err := initServices(); err != nil {
		return err
	}
	defer closeServices()

	frameworks, err := promptStore.Frameworks()
	if err != nil {
		return fmt.Errorf("list frameworks: %w", err)
	}

	for _, fw := range frameworks {
		cmd.Println(fw)
	}
	return nil
}
