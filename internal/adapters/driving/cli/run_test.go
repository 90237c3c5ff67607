package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attest-labs/reportgen/internal/core/domain"
)

// Run Command Tests

func TestRunCmd_Use(t *testing.T) {
	assert.Equal(t, "run [framework] [firm]", runCmd.Use)
}

func TestRunCmd_RequiresFrameworkAndFirm(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"run", "osfi_b13"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 2 arg(s)")
}

func TestRunCmd_DefaultsToAllEnabledSections(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()

	svc.run = &domain.ReportRun{
		RunID:     "run-123",
		Framework: "osfi_b13",
		Firm:      "acme",
		Sections:  map[string]string{"Executive Summary": "All controls operate."},
		CreatedAt: time.Now().UTC(),
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"run", "osfi_b13", "acme"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Equal(t, []string{
		"exec_summary", "governance", "tech_ops", "cyber",
		"third_party", "maturity", "recs", "conclusion",
	}, svc.lastReq.SelectedSectionIDs)
	assert.Contains(t, buf.String(), `"run_id": "run-123"`)
	assert.Contains(t, buf.String(), "All controls operate.")
}

func TestRunCmd_OmittedSectionsSkipDisabled(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()

	// A hand-written pack wins over seeding, so the disabled annex must
	// not be selected when --sections is omitted.
	packDir := filepath.Join(promptStore.Dir(), "osfi_b13")
	require.NoError(t, os.MkdirAll(packDir, 0o755))
	pack := `overarching: ""
sections:
  - id: opening
    name: Opening
    position: 1
    default_prompt: Write the opening.
  - id: annex
    name: Annex
    position: 2
    default_prompt: Write the annex.
    enabled: false
`
	require.NoError(t, os.WriteFile(filepath.Join(packDir, "prompts.yaml"), []byte(pack), 0o644))

	svc.run = &domain.ReportRun{RunID: "run-456", Framework: "osfi_b13", Firm: "acme"}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"run", "osfi_b13", "acme"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Equal(t, []string{"opening"}, svc.lastReq.SelectedSectionIDs)
}

func TestRunCmd_ExplicitSectionsPassThrough(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()

	svc.run = &domain.ReportRun{RunID: "run-789", Framework: "osfi_b13", Firm: "acme"}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"run", "osfi_b13", "acme", "--sections", "cyber,governance"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Equal(t, []string{"cyber", "governance"}, svc.lastReq.SelectedSectionIDs)
}

func TestRunCmd_RejectsMalformedOverride(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"run", "osfi_b13", "acme", "--override", "no-separator"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "id=instruction")
}

func TestRunCmd_ReportsServiceFailure(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()

	svc.runErr = errors.New("model unavailable")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"run", "osfi_b13", "acme"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "report generation failed")
	assert.Contains(t, err.Error(), "model unavailable")
}

// Run Command Streaming Tests

func TestRunCmd_StreamPrintsEventsAsNDJSON(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()

	svc.events = []domain.ReportEvent{
		{Event: domain.EventStart, RunID: "run-123"},
		{Event: domain.EventSectionText, RunID: "run-123", SectionID: "exec_summary",
			SectionName: "Executive Summary", Text: "All controls operate."},
		{Event: domain.EventEnd, RunID: "run-123", OK: true},
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"run", "osfi_b13", "acme", "--stream"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], `"event":"start"`)
	assert.Contains(t, lines[1], `"section_id":"exec_summary"`)
	assert.Contains(t, lines[2], `"event":"end"`)
	assert.Contains(t, lines[2], `"ok":true`)
}

func TestRunCmd_StreamSurfacesErrorEvent(t *testing.T) {
	svc, cleanup := setupTestServices(t)
	defer cleanup()

	svc.events = []domain.ReportEvent{
		{Event: domain.EventStart, RunID: "run-123"},
		{Event: domain.EventError, RunID: "run-123", Message: "render exec_summary: model unavailable"},
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"run", "osfi_b13", "acme", "--stream"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "report generation failed")
	assert.Contains(t, err.Error(), "model unavailable")
	assert.Contains(t, buf.String(), `"event":"error"`)
}
