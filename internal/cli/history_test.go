package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"synthgate/internal/store"
)

// seedDatabase creates a database with one recorded run via the run
// command and returns its path.
func seedDatabase(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	specPath := writeFixture(t, dir, "index_of.cue", indexOfCUE)
	scan := writeFixture(t, dir, "scan.yaml", scanPlanYAML)
	dbPath := filepath.Join(dir, "runs.db")

	fixture, _ := newRunCommand("json", "run-seeded")
	require.NoError(t, fixture.execute(t, specPath, []string{scan}, dbPath))
	return dbPath
}

func TestHistory_ListsRuns(t *testing.T) {
	dbPath := seedDatabase(t)

	buf := &bytes.Buffer{}
	cmd := NewHistoryCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "run-seeded")
	assert.Contains(t, buf.String(), "gate=pass")
	assert.Contains(t, buf.String(), "best=0 (1.000)")
}

func TestHistory_JSON(t *testing.T) {
	dbPath := seedDatabase(t)

	buf := &bytes.Buffer{}
	cmd := NewHistoryCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath})

	require.NoError(t, cmd.Execute())

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	entries, ok := resp.Data.([]any)
	require.True(t, ok)
	require.Len(t, entries, 1)
	entry := entries[0].(map[string]any)
	assert.Equal(t, "run-seeded", entry["run_id"])
	assert.Equal(t, true, entry["gate_passed"])
}

func TestHistory_EmptyDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "empty.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	buf := &bytes.Buffer{}
	cmd := NewHistoryCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "no runs recorded")
}

func TestHistory_MissingDatabase(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewHistoryCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", "/nonexistent/runs.db"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "database not found")
}
