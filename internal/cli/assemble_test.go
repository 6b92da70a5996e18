package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"synthgate/internal/plan"
)

const assembledScan = "for i, item in enumerate(items):\n    if item == target:\n        return i\nreturn -1\n"

func TestAssemble_Stdout(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "scan.yaml", scanPlanYAML)

	buf := &bytes.Buffer{}
	cmd := NewAssembleCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, assembledScan, buf.String())
}

func TestAssemble_JSON(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "scan.yaml", scanPlanYAML)

	buf := &bytes.Buffer{}
	cmd := NewAssembleCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	require.NoError(t, cmd.Execute())

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, assembledScan, data["source"])
	assert.Equal(t, float64(4), data["nodes"])
}

func TestAssemble_OutputFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "scan.yaml", scanPlanYAML)
	outPath := filepath.Join(dir, "out.txt")

	buf := &bytes.Buffer{}
	cmd := NewAssembleCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path, "--output", outPath})

	require.NoError(t, cmd.Execute())

	written, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, assembledScan, string(written))
	assert.Empty(t, buf.String())
}

func TestAssemble_InvalidPlan(t *testing.T) {
	broken := `
nodes:
  - id: only
    kind: block
    depth: 0
fragments: {}
`
	path := writeFixture(t, t.TempDir(), "broken.yaml", broken)

	buf := &bytes.Buffer{}
	cmd := NewAssembleCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), plan.ErrMissingFragment)
}

func TestAssemble_MissingFile(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewAssembleCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"/nonexistent/plan.yaml"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
