package services

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/attest-labs/reportgen/internal/core/domain"
	"github.com/attest-labs/reportgen/internal/core/ports/driven"
	"github.com/attest-labs/reportgen/internal/core/ports/driving"
	"github.com/attest-labs/reportgen/internal/logger"
)

// Ensure Orchestrator implements the interface.
var _ driving.ReportService = (*Orchestrator)(nil)

const (
	outlineTemperature = 0.2
	outlineMaxTokens   = 250
)

// Orchestrator sequences one report run: findings, outline, then
// section-by-section render, compact and memory update, finishing with one
// atomic persist of the assembled run.
//
// Sections are rendered strictly sequentially because each section's prompt
// depends on the rolling memory left by all prior sections. That is an
// intentional serialization point. Concurrent runs are fine: each run owns
// its own memory and shares no mutable state with any other.
type Orchestrator struct {
	prompts   driven.PromptStore
	registry  *AssessorRegistry
	searcher  driven.SimilaritySearcher
	chats     driven.ChatFactory
	runs      driven.RunStore
	retriever *Retriever
}

// NewOrchestrator creates a report orchestrator.
func NewOrchestrator(
	prompts driven.PromptStore,
	registry *AssessorRegistry,
	searcher driven.SimilaritySearcher,
	chats driven.ChatFactory,
	runs driven.RunStore,
) *Orchestrator {
	return &Orchestrator{
		prompts:   prompts,
		registry:  registry,
		searcher:  searcher,
		chats:     chats,
		runs:      runs,
		retriever: NewRetriever(searcher),
	}
}

// runPlan is the validated input of one run, resolved before any
// generation work begins.
type runPlan struct {
	req         domain.ReportRequest
	sections    []domain.SectionDirective
	overarching string
	assessor    Assessor
	chat        driven.ChatService
	runID       string
}

// Run executes one report generation to completion and returns the
// persisted run.
func (o *Orchestrator) Run(ctx context.Context, req domain.ReportRequest) (*domain.ReportRun, error) {
	plan, err := o.plan(req)
	if err != nil {
		return nil, err
	}
	defer plan.chat.Close()

	return o.execute(ctx, plan, nil)
}

// RunStream executes one report generation, emitting progress events as
// they are produced. Any failure after validation becomes a terminal error
// event rather than a transport-level fault; the channel always delivers a
// well-formed terminal event before closing.
func (o *Orchestrator) RunStream(ctx context.Context, req domain.ReportRequest) <-chan domain.ReportEvent {
	events := make(chan domain.ReportEvent)

	go func() {
		defer close(events)

		emit := func(ev domain.ReportEvent) {
			ev.Framework = req.Framework
			ev.Firm = req.Firm
			select {
			case events <- ev:
			case <-ctx.Done():
			}
		}

		plan, err := o.plan(req)
		if err != nil {
			emit(domain.ReportEvent{Event: domain.EventError, RunID: req.RunID, Message: err.Error()})
			return
		}
		defer plan.chat.Close()

		run, err := o.execute(ctx, plan, emit)
		if err != nil {
			emit(domain.ReportEvent{Event: domain.EventError, RunID: plan.runID, Message: err.Error()})
			return
		}
		emit(domain.ReportEvent{Event: domain.EventEnd, RunID: run.RunID, OK: true})
	}()

	return events
}

// LoadRun reads a persisted run by id.
func (o *Orchestrator) LoadRun(ctx context.Context, runID string) (*domain.ReportRun, error) {
	return o.runs.Read(ctx, runID)
}

// plan validates the request and resolves everything the run needs.
// Configuration errors (unknown framework or section, unknown provider,
// missing credentials) surface here and are never silently skipped.
func (o *Orchestrator) plan(req domain.ReportRequest) (*runPlan, error) {
	if len(req.SelectedSectionIDs) == 0 {
		return nil, domain.ErrNoSections
	}
	if !req.Strategy.Valid() {
		return nil, fmt.Errorf("%w: retrieval strategy %q", domain.ErrInvalidInput, req.Strategy)
	}

	assessor, err := o.registry.Resolve(req.Framework)
	if err != nil {
		return nil, err
	}

	all, err := o.prompts.Sections(req.Framework)
	if err != nil {
		return nil, fmt.Errorf("load sections for %q: %w", req.Framework, err)
	}
	byID := make(map[string]domain.SectionDirective, len(all))
	for _, s := range all {
		byID[s.ID] = s
	}

	selected := make([]domain.SectionDirective, 0, len(req.SelectedSectionIDs))
	for _, id := range req.SelectedSectionIDs {
		s, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %q for framework %q", domain.ErrUnknownSection, id, req.Framework)
		}
		if override, ok := req.PromptOverrides[id]; ok && strings.TrimSpace(override) != "" {
			s.Prompt = strings.TrimSpace(override)
		}
		selected = append(selected, s)
	}
	// Output order follows configured position, not caller order.
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Position < selected[j].Position
	})

	overarching := strings.TrimSpace(req.OverarchingPrompt)
	if overarching == "" {
		overarching, err = o.prompts.Overarching(req.Framework)
		if err != nil {
			return nil, fmt.Errorf("load overarching guidance: %w", err)
		}
	}

	chat, err := o.chats.Create(req.Provider, req.Model)
	if err != nil {
		return nil, err
	}

	runID := req.RunID
	if runID == "" {
		runID = newRunID(req.Framework, req.Firm)
	}

	return &runPlan{
		req:         req,
		sections:    selected,
		overarching: overarching,
		assessor:    assessor,
		chat:        chat,
		runID:       runID,
	}, nil
}

// execute runs the generation state machine. emit may be nil (synchronous
// mode). The run record is fully materialized in memory and persisted with
// a single store write; a cancelled or failed run never leaves a partial
// record behind.
func (o *Orchestrator) execute(
	ctx context.Context,
	plan *runPlan,
	emit func(domain.ReportEvent),
) (*domain.ReportRun, error) {
	log := logger.ForRun(plan.runID)
	log.Section("Report Run")
	log.Info("%s/%s, %d sections", plan.req.Framework, plan.req.Firm, len(plan.sections))

	findings, err := plan.assessor.BuildFindings(ctx, plan.req.Firm, plan.req.Scope)
	if err != nil {
		return nil, fmt.Errorf("build findings: %w", err)
	}

	memory := domain.NewRollingMemory()
	o.seedOutline(ctx, plan, memory)

	if emit != nil {
		emit(domain.ReportEvent{Event: domain.EventStart, RunID: plan.runID})
	}

	renderer := NewRenderer(o.retriever, plan.chat)
	compactor := NewCompactor(plan.chat)

	sectionText := make(map[string]string, len(plan.sections))
	var ragDebug map[string][]domain.EvidenceChunk
	if plan.req.IncludeRAGDebug {
		ragDebug = make(map[string][]domain.EvidenceChunk, len(plan.sections))
	}

	for _, section := range plan.sections {
		if emit != nil {
			emit(domain.ReportEvent{
				Event:       domain.EventSectionStart,
				RunID:       plan.runID,
				SectionID:   section.ID,
				SectionName: section.Name,
			})
		}

		result, err := renderer.Render(ctx, RenderInput{
			Framework:   plan.req.Framework,
			Firm:        plan.req.Firm,
			Scope:       plan.req.Scope,
			Section:     section,
			Overarching: plan.overarching,
			Memory:      memory,
			Strategy:    plan.req.Strategy,
		})
		if err != nil {
			return nil, err
		}

		// Sections are keyed by display name for run-record compatibility;
		// two sections sharing a name would collide.
		sectionText[section.Name] = result.Text
		if ragDebug != nil {
			ragDebug[section.ID] = result.Trace
		}

		if emit != nil {
			emit(domain.ReportEvent{
				Event:       domain.EventSectionText,
				RunID:       plan.runID,
				SectionID:   section.ID,
				SectionName: section.Name,
				Text:        result.Text,
			})
		}

		compacted := compactor.Compact(ctx, result.Text)
		memory.SetSummary(compactor.Recompact(ctx, memory.NarrativeSummary, compacted.Narrative))
		memory.AddPoints(compacted.Bullets)
		memory.AddCitations(result.Consumed)
	}

	run := &domain.ReportRun{
		RunID:            plan.runID,
		Framework:        plan.req.Framework,
		Firm:             plan.req.Firm,
		Scope:            plan.req.Scope,
		SelectedSections: sectionNames(plan.sections),
		Sections:         sectionText,
		Findings:         findings,
		RAGDebug:         ragDebug,
		CreatedAt:        time.Now().UTC(),
	}

	if err := o.runs.Write(ctx, run); err != nil {
		// A run without a durable record is not complete.
		return nil, fmt.Errorf("persist run %s: %w", plan.runID, err)
	}

	log.Info("Persisted")
	return run, nil
}

// seedOutline asks the model for a short outline over the selected sections
// and seeds the key points with it. Outline failure degrades to an empty
// seed; it never aborts the run.
func (o *Orchestrator) seedOutline(ctx context.Context, plan *runPlan, memory *domain.RollingMemory) {
	names := make([]string, 0, len(plan.sections))
	for _, s := range plan.sections {
		names = append(names, "- "+s.Name)
	}

	outline, err := plan.chat.Chat(ctx, []driven.ChatMessage{
		{Role: "system", Content: "You are an audit report planner."},
		{Role: "user", Content: "Create a 1-level outline for the following sections in order:\n" + strings.Join(names, "\n")},
	}, driven.ChatOptions{Temperature: outlineTemperature, MaxTokens: outlineMaxTokens})
	if err != nil {
		logger.Warn("Outline call failed, starting with empty memory: %v", err)
		return
	}

	var points []string
	for _, line := range strings.Split(outline, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*• "))
		if line != "" {
			points = append(points, line)
		}
	}
	memory.AddPoints(points)
}

// newRunID builds a run identifier unique within a process lifetime for a
// given framework/firm pair: a process discriminator plus a short random
// suffix. Global uniqueness across processes is not required.
func newRunID(framework, firm string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s-%s-%d-%s", framework, firm, os.Getpid(), suffix)
}

func sectionNames(sections []domain.SectionDirective) []string {
	names := make([]string, len(sections))
	for i, s := range sections {
		names[i] = s.Name
	}
	return names
}
