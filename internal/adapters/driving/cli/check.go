package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/attest-labs/reportgen/internal/adapters/driven/ai"
)

var (
	checkProvider string
	checkModel    string
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate provider configuration and connectivity",
	Long: `Verifies that the configured chat and embedding providers accept
the stored credentials before a long report run is started. Each provider
is created and pinged; failures are reported per provider.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkProvider, "provider", "", "chat provider to check (default: configured default)")
	checkCmd.Flags().StringVar(&checkModel, "model", "", "chat model override")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	if err := initServices(); err != nil {
		return err
	}
	defer closeServices()

	failed := false

	factory := ai.NewFactory(appSettings)
	if err := factory.ValidateChatConfig(checkProvider, checkModel); err != nil {
		failed = true
		cmd.Printf("chat: %v\n", err)
	} else {
		cmd.Println("chat: ok")
	}

	if svc, err := ai.CreateAndValidateEmbeddingService(appSettings.Embedding); err != nil {
		failed = true
		cmd.Printf("embedding: %v\n", err)
	} else {
		svc.Close()
		cmd.Println("embedding: ok")
	}

	if failed {
		return fmt.Errorf("configuration check failed")
	}
	return nil
}
