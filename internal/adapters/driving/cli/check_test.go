package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Check Command Tests

func TestCheckCmd_Use(t *testing.T) {
	assert.Equal(t, "check", checkCmd.Use)
}

func TestCheckCmd_ReportsUnconfiguredProviders(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"check"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "configuration check failed")
	assert.Contains(t, buf.String(), "chat: ")
	assert.Contains(t, buf.String(), "no API key configured")
	assert.Contains(t, buf.String(), "embedding: ")
}

func TestCheckCmd_RejectsUnknownProvider(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"check", "--provider", "gemini"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, buf.String(), `"gemini"`)
	assert.Contains(t, buf.String(), "want openai or xai")
}
