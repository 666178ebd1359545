package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/leaderlog/internal/insight"
	"github.com/fyrsmithlabs/leaderlog/internal/journal"
)

var fixedNow = time.Date(2025, time.March, 12, 9, 30, 0, 0, time.UTC)

// setupEnv isolates HOME and credentials, pins the clock, and returns a
// state file path inside a temp dir.
func setupEnv(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range []string{"GEMINI_API_KEY", "API_KEY", "OPENAI_API_KEY"} {
		t.Setenv(k, "")
	}
	for _, kv := range os.Environ() {
		if k, _, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(k, "LEADERLOG_") {
			t.Setenv(k, "")
			require.NoError(t, os.Unsetenv(k))
		}
	}

	prev := now
	now = func() time.Time { return fixedNow }
	t.Cleanup(func() { now = prev })

	return filepath.Join(home, "journal.json")
}

func resetFlags() {
	configPath, statePath, backend, logLevel = "", "", "", ""
	reflectCategory = journal.CategoryProgress.Short()
	triggerIntensity = journal.DefaultIntensity
	triggerNotes, winDetails = "", ""
	listLimit, listJSON = 0, false
	statsJSON, insightRaw = false, false
	exportOutput, importForce = "", false
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustExecute(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(t, args...)
	require.NoError(t, err, out)
	return out
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil", nil, 0},
		{"empty_field", fmt.Errorf("content: %w", journal.ErrEmptyField), exitValidation},
		{"intensity", journal.ErrIntensityRange, exitValidation},
		{"category", journal.ErrUnknownCategory, exitValidation},
		{"duplicate_id", errors.Join(fmt.Errorf("trigger t1: %w", journal.ErrDuplicateID)), exitValidation},
		{"usage", fmt.Errorf("%w: bad flag", errUsage), exitValidation},
		{"persist", fmt.Errorf("%w: disk full", journal.ErrPersist), exitFailure},
		{"other", errors.New("boom"), exitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, exitCode(tt.err))
		})
	}
}

func TestReflect_AddAndList(t *testing.T) {
	state := setupEnv(t)

	out := mustExecute(t, "--state", state, "reflect", "add", "--category", "communication", "Ran", "a", "calm", "all-hands")
	assert.Contains(t, out, "Saved reflection")
	mustExecute(t, "--state", state, "reflect", "add", "Delegated the roadmap review")

	out = mustExecute(t, "--state", state, "reflect", "list")
	assert.Contains(t, out, "Ran a calm all-hands")
	assert.Contains(t, out, "communication")

	out = mustExecute(t, "--state", state, "reflect", "list", "--json")
	var got []journal.Reflection
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Delegated the roadmap review", got[0].Content, "newest first")
	assert.Equal(t, journal.CategoryProgress, got[0].Category)
	assert.Equal(t, journal.CategoryCommunication, got[1].Category)
	assert.True(t, got[1].Date.Equal(fixedNow))

	out = mustExecute(t, "--state", state, "reflect", "list", "--json", "--limit", "1")
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Len(t, got, 1)
}

func TestAdd_ValidationWritesNothing(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"blank_reflection", []string{"reflect", "add", "   "}},
		{"unknown_category", []string{"reflect", "add", "--category", "budget", "text"}},
		{"blank_trigger", []string{"trigger", "add", " "}},
		{"intensity_high", []string{"trigger", "add", "--intensity", "11", "Late deploy"}},
		{"intensity_low", []string{"trigger", "add", "--intensity", "0", "Late deploy"}},
		{"blank_win", []string{"win", "add", "\t"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := setupEnv(t)

			_, err := execute(t, append([]string{"--state", state}, tt.args...)...)
			require.Error(t, err)
			assert.Equal(t, exitValidation, exitCode(err))
			assert.NoFileExists(t, state)
		})
	}
}

func TestTrigger_AddAndList(t *testing.T) {
	state := setupEnv(t)

	out := mustExecute(t, "--state", state, "trigger", "add", "--intensity", "8", "--notes", "paused before replying", "Public criticism")
	assert.Contains(t, out, "8/10")
	assert.Contains(t, out, "high")

	out = mustExecute(t, "--state", state, "trigger", "list")
	assert.Contains(t, out, "Public criticism")
	assert.Contains(t, out, "paused before replying")
}

func TestWin_Delete(t *testing.T) {
	state := setupEnv(t)

	mustExecute(t, "--state", state, "win", "add", "--details", "two quarters of work", "Shipped onboarding")

	out := mustExecute(t, "--state", state, "win", "list", "--json")
	var wins []journal.Accomplishment
	require.NoError(t, json.Unmarshal([]byte(out), &wins))
	require.Len(t, wins, 1)
	assert.Equal(t, "two quarters of work", wins[0].Details)

	out = mustExecute(t, "--state", state, "win", "delete", wins[0].ID)
	assert.Contains(t, out, "Deleted accomplishment")

	out = mustExecute(t, "--state", state, "win", "delete", wins[0].ID)
	assert.Contains(t, out, "No accomplishment with id")

	out = mustExecute(t, "--state", state, "win", "list")
	assert.Contains(t, out, "No accomplishments yet.")
}

func TestStats_JSON(t *testing.T) {
	state := setupEnv(t)

	mustExecute(t, "--state", state, "reflect", "add", "one")
	mustExecute(t, "--state", state, "trigger", "add", "--intensity", "2", "two")
	mustExecute(t, "--state", state, "win", "add", "three")

	out := mustExecute(t, "--state", state, "stats", "--json")

	var report statsReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Weeks, 8)
	assert.Equal(t, "W4", report.Weeks[0].Label)

	last := report.Weeks[7]
	assert.Equal(t, "W11", last.Label)
	assert.Equal(t, "2025-W11", last.Week)
	assert.Equal(t, 1, last.Reflections)
	assert.Equal(t, 1, last.Triggers)
	assert.Equal(t, 1, last.Accomplishments)

	assert.Equal(t, 1, report.Totals.Reflections)
	assert.Equal(t, 1, report.Severity[journal.SeverityLow])
	assert.Equal(t, 1, report.Categories[journal.CategoryProgress])
	assert.InDelta(t, 2.0, report.AverageIntensity, 0.001)
}

func TestStats_Table(t *testing.T) {
	state := setupEnv(t)

	out := mustExecute(t, "--state", state, "stats")
	assert.Contains(t, out, "Week")
	assert.Contains(t, out, "W4")
	assert.Contains(t, out, "W11")
	assert.Contains(t, out, "Totals: 0 reflections, 0 wins, 0 triggers")
	assert.NotContains(t, out, "Trigger intensity")
}

func TestInsight_NotConfigured(t *testing.T) {
	state := setupEnv(t)
	mustExecute(t, "--state", state, "reflect", "add", "something")

	out := mustExecute(t, "--state", state, "insight")
	assert.Contains(t, out, insight.NotConfiguredMessage)
}

func TestExportImport(t *testing.T) {
	state := setupEnv(t)
	dir := filepath.Dir(state)

	mustExecute(t, "--state", state, "reflect", "add", "exported reflection")
	mustExecute(t, "--state", state, "trigger", "add", "exported trigger")

	exported := filepath.Join(dir, "backup.json")
	mustExecute(t, "--state", state, "export", "--output", exported)

	info, err := os.Stat(exported)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	out := mustExecute(t, "--state", state, "export")
	assert.Contains(t, out, `"version": 1`)

	other := filepath.Join(dir, "other.json")
	out = mustExecute(t, "--state", other, "import", exported)
	assert.Contains(t, out, "Imported 1 reflections, 1 triggers, 0 accomplishments")

	out = mustExecute(t, "--state", other, "reflect", "list")
	assert.Contains(t, out, "exported reflection")

	_, err = execute(t, "--state", other, "import", exported)
	require.Error(t, err)
	assert.Equal(t, exitValidation, exitCode(err))
	assert.Contains(t, err.Error(), "--force")

	mustExecute(t, "--state", other, "import", "--force", exported)
}

func TestImport_RejectsCorruptFile(t *testing.T) {
	state := setupEnv(t)
	bad := filepath.Join(filepath.Dir(state), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o600))

	_, err := execute(t, "--state", state, "import", bad)
	require.Error(t, err)
	assert.Equal(t, exitValidation, exitCode(err))
	assert.NoFileExists(t, state)
}

func TestSQLiteBackend(t *testing.T) {
	state := setupEnv(t)
	db := filepath.Join(filepath.Dir(state), "journal.db")

	mustExecute(t, "--backend", "sqlite", "--state", db, "win", "add", "stored in sqlite")

	out := mustExecute(t, "--backend", "sqlite", "--state", db, "win", "list")
	assert.Contains(t, out, "stored in sqlite")
	assert.FileExists(t, db)
	assert.NoFileExists(t, state)
}

func TestCorruptStateWarnsAndContinues(t *testing.T) {
	state := setupEnv(t)
	require.NoError(t, os.WriteFile(state, []byte("{truncated"), 0o600))

	out := mustExecute(t, "--state", state, "reflect", "list")
	assert.Contains(t, out, "Warning: saved journal could not be read")
	assert.Contains(t, out, "No reflections yet.")
}

func TestUnreadableStateContinuesReadOnly(t *testing.T) {
	state := setupEnv(t)
	// A directory at the state path fails to read without being corrupt.
	require.NoError(t, os.MkdirAll(state, 0o700))

	out := mustExecute(t, "--state", state, "reflect", "list")
	assert.Contains(t, out, "continuing read-only")
	assert.Contains(t, out, "No reflections yet.")

	out, err := execute(t, "--state", state, "reflect", "add", "kept the team on track")
	require.Error(t, err, out)
	assert.ErrorIs(t, err, journal.ErrPersist)
	assert.ErrorIs(t, err, errReadOnly)
	assert.Equal(t, exitFailure, exitCode(err))

	info, statErr := os.Stat(state)
	require.NoError(t, statErr)
	assert.True(t, info.IsDir())
}

func TestInvalidBackendFlag(t *testing.T) {
	state := setupEnv(t)

	_, err := execute(t, "--state", state, "--backend", "postgres", "reflect", "list")
	require.Error(t, err)
	assert.Equal(t, exitValidation, exitCode(err))
}

func TestVersionCmd(t *testing.T) {
	out := mustExecute(t, "version")
	assert.Contains(t, out, "Version:")
	assert.Contains(t, out, version)
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"reflect", "trigger", "win", "stats", "insight", "dashboard", "export", "import", "version"} {
		assert.True(t, names[want], "missing command %q", want)
	}
}
