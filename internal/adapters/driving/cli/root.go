// Package cli implements the reportgen command-line interface.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/attest-labs/reportgen/internal/adapters/driven/ai"
	configfile "github.com/attest-labs/reportgen/internal/adapters/driven/config/file"
	"github.com/attest-labs/reportgen/internal/adapters/driven/storage/sqlite"
	"github.com/attest-labs/reportgen/internal/core/domain"
	"github.com/attest-labs/reportgen/internal/core/ports/driven"
	"github.com/attest-labs/reportgen/internal/core/ports/driving"
	"github.com/attest-labs/reportgen/internal/core/services"
	"github.com/attest-labs/reportgen/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// SetVersion overrides the reported version.
func SetVersion(v string) {
	version = v
}

var (
	flagVerbose bool
	flagConfig  string
)

// Wired services, populated by initServices.
var (
	appSettings     domain.AppSettings
	store           *sqlite.Store
	promptStore     *configfile.PromptStore
	runStore        driven.RunStore
	reportService   driving.ReportService
	findingsService driving.FindingsService
	embeddingSvc    driven.EmbeddingService
)

var rootCmd = &cobra.Command{
	Use:   "reportgen",
	Short: "Compliance assessment report generator",
	Long: `reportgen produces evidence-grounded compliance assessment reports.

It retrieves evidence from indexed document pools, renders report sections
with a language model while carrying a rolling memory between sections, and
persists each finished run for later display.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false,
		"enable verbose diagnostic output")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "",
		"path to config file (default ~/.reportgen/config.toml)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// initServices wires the driven adapters and core services. Called by
// commands that need more than flag parsing; commands like version skip
// the cost of opening the store.
func initServices() error {
	if reportService != nil {
		return nil
	}

	settings, err := configfile.LoadSettings(flagConfig)
	if err != nil {
		return err
	}
	appSettings = settings

	store, err = sqlite.NewStore(settings.DataDir)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	promptDir := ""
	if settings.DataDir != "" {
		promptDir = filepath.Join(settings.DataDir, "frameworks")
	}
	promptStore, err = configfile.NewPromptStore(promptDir)
	if err != nil {
		return fmt.Errorf("open prompt store: %w", err)
	}

	// Embeddings are optional at startup. Retrieval-dependent commands
	// fail with a clear error when no embedding provider is configured.
	if settings.Embedding.IsConfigured() {
		embeddingSvc, err = ai.CreateEmbeddingService(settings.Embedding)
		if err != nil {
			return fmt.Errorf("embedding service: %w", err)
		}
	} else {
		logger.Debug("No embedding provider configured, retrieval disabled")
	}

	searcher := store.Searcher(embeddingSvc)
	runStore = store.RunStore()

	registry, err := services.NewAssessorRegistry(promptStore, searcher)
	if err != nil {
		return fmt.Errorf("assessor registry: %w", err)
	}

	chatFactory := ai.NewFactory(settings)
	reportService = services.NewOrchestrator(promptStore, registry, searcher, chatFactory, runStore)
	findingsService = services.NewFindingsBuilder(promptStore, searcher)

	return nil
}

// closeServices releases held resources. Safe to call when initServices
// never ran.
func closeServices() {
	if embeddingSvc != nil {
		embeddingSvc.Close()
	}
	if store != nil {
		store.Close()
	}
}
