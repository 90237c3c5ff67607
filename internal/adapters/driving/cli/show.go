package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/attest-labs/reportgen/internal/core/domain"
)

var showCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Display a persisted report run",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List persisted report runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(listCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	if err := initServices(); err != nil {
		return err
	}
	defer closeServices()

	run, err := reportService.LoadRun(context.Background(), args[0])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("run %q not found", args[0])
		}
		return fmt.Errorf("load run: %w", err)
	}

	return printJSON(cmd, run)
}

func runList(cmd *cobra.Command, _ []string) error {
	if err := initServices(); err != nil {
		return err
	}
	defer closeServices()

	ids, err := runStore.List(context.Background())
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	if len(ids) == 0 {
		cmd.Println("No runs persisted yet.")
		return nil
	}
	for _, id := range ids {
		cmd.Println(id)
	}
	return nil
}
