package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/attest-labs/reportgen/internal/adapters/driven/webhook"
	"github.com/attest-labs/reportgen/internal/core/domain"
	"github.com/attest-labs/reportgen/internal/core/ports/driven"
	"github.com/attest-labs/reportgen/internal/logger"
)

var (
	runScope     string
	runSections  []string
	runOverrides []string
	runGuidance  string
	runProvider  string
	runModel     string
	runStrategy  string
	runStream    bool
	runCallback  string
	runRAGDebug  bool
	runID        string
)

var runCmd = &cobra.Command{
	Use:   "run [framework] [firm]",
	Short: "Generate a compliance assessment report",
	Long: `Generates a full assessment report for a firm under a framework.

By default the command runs synchronously and prints the persisted run
record as JSON. With --stream, progress events are printed as NDJSON as
sections finish. With --callback, the same events are additionally pushed
to an external endpoint, best-effort.`,
	Args: cobra.ExactArgs(2),
	RunE: runReport,
}

func init() {
	runCmd.Flags().StringVar(&runScope, "scope", "", "free-text scope for the assessment")
	runCmd.Flags().StringSliceVar(&runSections, "sections", nil,
		"section ids to render (default: all enabled sections)")
	runCmd.Flags().StringArrayVar(&runOverrides, "override", nil,
		"per-section prompt override as id=instruction (repeatable)")
	runCmd.Flags().StringVar(&runGuidance, "guidance", "",
		"overarching guidance applied to every section")
	runCmd.Flags().StringVar(&runProvider, "provider", "", "chat provider (openai or xai)")
	runCmd.Flags().StringVar(&runModel, "model", "", "chat model override")
	runCmd.Flags().StringVar(&runStrategy, "strategy", "",
		"retrieval strategy (similarity, mmr or hybrid)")
	runCmd.Flags().BoolVar(&runStream, "stream", false, "print progress events as NDJSON")
	runCmd.Flags().StringVar(&runCallback, "callback", "",
		"push events to this callback URL (implies --stream)")
	runCmd.Flags().BoolVar(&runRAGDebug, "rag-debug", false,
		"record the evidence consulted per section")
	runCmd.Flags().StringVar(&runID, "run-id", "",
		"use this run id instead of generating one")
	rootCmd.AddCommand(runCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	if err := initServices(); err != nil {
		return err
	}
	defer closeServices()

	overrides, err := parseOverrides(runOverrides)
	if err != nil {
		return err
	}

	sectionIDs := runSections
	if len(sectionIDs) == 0 {
		sectionIDs, err = enabledSectionIDs(args[0])
		if err != nil {
			return err
		}
	}

	strategy := domain.RetrievalStrategy(runStrategy)
	if strategy == "" {
		strategy = appSettings.Retrieval.Strategy
	}

	req := domain.ReportRequest{
		Framework:          args[0],
		Firm:               args[1],
		Scope:              runScope,
		SelectedSectionIDs: sectionIDs,
		PromptOverrides:    overrides,
		OverarchingPrompt:  runGuidance,
		Provider:           runProvider,
		Model:              runModel,
		Strategy:           strategy,
		IncludeRAGDebug:    runRAGDebug,
		RunID:              runID,
	}

	ctx := context.Background()

	if runStream || runCallback != "" {
		return streamReport(cmd, ctx, req)
	}

	run, err := reportService.Run(ctx, req)
	if err != nil {
		return fmt.Errorf("report generation failed: %w", err)
	}

	return printJSON(cmd, run)
}

// streamReport consumes the event channel, printing each event as NDJSON
// and optionally relaying it to the callback endpoint.
func streamReport(cmd *cobra.Command, ctx context.Context, req domain.ReportRequest) error {
	var sink driven.EventSink
	if runCallback != "" {
		relay, err := webhook.NewRelay(runCallback, runStore)
		if err != nil {
			return err
		}
		sink = relay
	}

	var failed string
	for event := range reportService.RunStream(ctx, req) {
		line, err := json.Marshal(event)
		if err != nil {
			logger.Warn("Failed to encode event: %v", err)
			continue
		}
		cmd.Println(string(line))

		if sink != nil {
			// Best-effort push; the relay logs its own failures.
			_ = sink.Deliver(ctx, event)
		}

		if event.Event == domain.EventError {
			failed = event.Message
		}
	}

	if failed != "" {
		return fmt.Errorf("report generation failed: %s", failed)
	}
	return nil
}

// enabledSectionIDs expands an omitted --sections flag to every enabled
// section of the framework. Disabled sections are filtered here, at the
// configuration edge; an explicit --sections selection bypasses the filter.
func enabledSectionIDs(framework string) ([]string, error) {
	sections, err := promptStore.Sections(framework)
	if err != nil {
		return nil, fmt.Errorf("load sections for %q: %w", framework, err)
	}

	ids := make([]string, 0, len(sections))
	for _, s := range sections {
		if s.Enabled {
			ids = append(ids, s.ID)
		}
	}
	return ids, nil
}

// parseOverrides turns id=instruction pairs into a map.
func parseOverrides(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	overrides := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		id, instruction, ok := strings.Cut(pair, "=")
		if !ok || id == "" {
			return nil, fmt.Errorf("%w: override %q is not id=instruction", domain.ErrInvalidInput, pair)
		}
		overrides[id] = instruction
	}
	return overrides, nil
}

// printJSON writes v as indented JSON.
func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
