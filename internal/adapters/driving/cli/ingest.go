package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/attest-labs/reportgen/internal/core/ports/driven"
	"github.com/attest-labs/reportgen/internal/core/services"
	"github.com/attest-labs/reportgen/internal/normalisers/pdf"
	"github.com/attest-labs/reportgen/internal/normalisers/plaintext"
	"github.com/attest-labs/reportgen/internal/postprocessors/chunker"
)

var ingestPool string

var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Index evidence files into a pool",
	Long: `Extracts text from each file, chunks and embeds it, and indexes
the chunks into the named pool.

Pool naming conventions:
  fw_<framework>          framework guideline passages
  assessment_<firm>       a firm's assessment material
  evidence_<firm>         a firm's supporting evidence`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestPool, "pool", "", "target pool name (required)")
	_ = ingestCmd.MarkFlagRequired("pool")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if err := initServices(); err != nil {
		return err
	}
	defer closeServices()

	ingestor := services.NewIngestor(
		[]driven.Normaliser{pdf.New(), plaintext.New()},
		chunker.New(),
		embeddingSvc,
		store.Indexer(),
	)

	ctx := context.Background()
	total := 0
	for _, path := range args {
		count, err := ingestor.IngestFile(ctx, ingestPool, path)
		if err != nil {
			return fmt.Errorf("ingest %s: %w", path, err)
		}
		cmd.Printf("  %s: %d chunks\n", path, count)
		total += count
	}

	cmd.Printf("Indexed %d chunks into pool %s\n", total, ingestPool)
	return nil
}
