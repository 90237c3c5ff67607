package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attest-labs/reportgen/internal/core/domain"
)

func newTestPromptStore(t *testing.T) (*PromptStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)
	return store, dir
}

func TestPromptStoreSeeding(t *testing.T) {
	store, dir := newTestPromptStore(t)

	// No I/O before first access.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	frameworks, err := store.Frameworks()
	require.NoError(t, err)
	assert.Equal(t, []string{"occ", "osfi_b10", "osfi_b13", "seal"}, frameworks)

	sections, err := store.Sections("osfi_b13")
	require.NoError(t, err)
	require.Len(t, sections, 8)
	assert.Equal(t, "exec_summary", sections[0].ID)
	assert.Equal(t, "Executive Summary", sections[0].Name)
	assert.Equal(t, "conclusion", sections[7].ID)
	for i, s := range sections {
		assert.Equal(t, i+1, s.Position)
		assert.True(t, s.Enabled)
		assert.NotEmpty(t, s.Prompt)
	}

	guidance, err := store.Overarching("osfi_b13")
	require.NoError(t, err)
	assert.Contains(t, guidance, "formal audit register")

	// Seeding never clobbers an existing pack.
	custom := filepath.Join(dir, "osfi_b13", "prompts.yaml")
	require.NoError(t, os.WriteFile(custom, []byte("overarching: kept\nsections: []\n"), 0o600))
	fresh, err := NewPromptStore(dir)
	require.NoError(t, err)
	guidance, err = fresh.Overarching("osfi_b13")
	require.NoError(t, err)
	assert.Equal(t, "kept", guidance)
}

func TestPromptStoreLoad(t *testing.T) {
	t.Run("sections are sorted and defaulted", func(t *testing.T) {
		store, dir := newTestPromptStore(t)
		packDir := filepath.Join(dir, "custom_fw")
		require.NoError(t, os.MkdirAll(packDir, 0o700))
		require.NoError(t, os.WriteFile(filepath.Join(packDir, "prompts.yaml"), []byte(`
overarching: Be precise.
sections:
  - name: Closing Remarks
    position: 9
    enabled: false
  - id: opening
    name: Opening
    position: 1
    default_prompt: Open the report.
`), 0o600))

		sections, err := store.Sections("custom_fw")
		require.NoError(t, err)
		require.Len(t, sections, 2)

		assert.Equal(t, "opening", sections[0].ID)
		assert.Equal(t, "Open the report.", sections[0].Prompt)
		assert.True(t, sections[0].Enabled)

		// Derived id, generated prompt, explicit disable.
		assert.Equal(t, "closing_remarks", sections[1].ID)
		assert.Equal(t, `Write the "Closing Remarks" section.`, sections[1].Prompt)
		assert.False(t, sections[1].Enabled)
	})

	t.Run("taxonomy file is optional", func(t *testing.T) {
		store, dir := newTestPromptStore(t)
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "bare_fw"), 0o700))

		tax, err := store.Taxonomy("bare_fw")
		require.NoError(t, err)
		require.NotNil(t, tax)
		assert.Empty(t, tax.Controls)
	})

	t.Run("taxonomy parses controls", func(t *testing.T) {
		store, dir := newTestPromptStore(t)
		packDir := filepath.Join(dir, "tax_fw")
		require.NoError(t, os.MkdirAll(packDir, 0o700))
		require.NoError(t, os.WriteFile(filepath.Join(packDir, "taxonomy.yaml"), []byte(`
controls:
  - id: GOV-1
    name: Governance
    micro_requirements:
      - id: "1.1"
        prompt: Board oversees technology risk
        synonyms: ["board oversight"]
`), 0o600))

		tax, err := store.Taxonomy("tax_fw")
		require.NoError(t, err)
		require.Len(t, tax.Controls, 1)
		assert.Equal(t, "GOV-1", tax.Controls[0].ID)
		require.Len(t, tax.Controls[0].MicroRequirements, 1)
		assert.Equal(t, []string{"board oversight"}, tax.Controls[0].MicroRequirements[0].Synonyms)
	})

	t.Run("unknown framework", func(t *testing.T) {
		store, _ := newTestPromptStore(t)

		_, err := store.Sections("basel_iii")
		require.ErrorIs(t, err, domain.ErrUnknownFramework)
	})

	t.Run("empty framework key", func(t *testing.T) {
		store, _ := newTestPromptStore(t)

		_, err := store.Sections("")
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("reload picks up edits", func(t *testing.T) {
		store, dir := newTestPromptStore(t)
		_, err := store.Overarching("occ")
		require.NoError(t, err)

		path := filepath.Join(dir, "occ", "prompts.yaml")
		require.NoError(t, os.WriteFile(path, []byte("overarching: edited\nsections: []\n"), 0o600))

		// Cached until reloaded.
		guidance, err := store.Overarching("occ")
		require.NoError(t, err)
		assert.NotEqual(t, "edited", guidance)

		store.Reload()
		guidance, err = store.Overarching("occ")
		require.NoError(t, err)
		assert.Equal(t, "edited", guidance)
	})
}
