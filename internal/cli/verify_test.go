package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerify_AllConstraintsPass(t *testing.T) {
	dir := t.TempDir()
	specPath := writeFixture(t, dir, "index_of.cue", indexOfCUE)
	srcPath := writeFixture(t, dir, "index_of.py", assembledScan)

	buf := &bytes.Buffer{}
	cmd := NewVerifyCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{specPath, srcPath})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "score: 1.000")
	assert.NotContains(t, buf.String(), "✗")
}

func TestVerify_FailedConstraints(t *testing.T) {
	dir := t.TempDir()
	specPath := writeFixture(t, dir, "index_of.cue", indexOfCUE)
	srcPath := writeFixture(t, dir, "trailing.py", "return -1\n")

	buf := &bytes.Buffer{}
	cmd := NewVerifyCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{specPath, srcPath})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "✗ loop(FIRST_MATCH, early_return) (no loop found in source)")
	assert.Contains(t, buf.String(), "score: 0.500")
}

func TestVerify_JSON(t *testing.T) {
	dir := t.TempDir()
	specPath := writeFixture(t, dir, "index_of.cue", indexOfCUE)
	srcPath := writeFixture(t, dir, "index_of.py", assembledScan)

	buf := &bytes.Buffer{}
	cmd := NewVerifyCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{specPath, srcPath})

	require.NoError(t, cmd.Execute())

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, data["compiles"])
	assert.Equal(t, float64(1), data["score"])
}

func TestVerify_UnknownFunction(t *testing.T) {
	dir := t.TempDir()
	specPath := writeFixture(t, dir, "index_of.cue", indexOfCUE)
	srcPath := writeFixture(t, dir, "src.py", "return -1\n")

	buf := &bytes.Buffer{}
	cmd := NewVerifyCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{specPath, srcPath, "--function", "absent"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), `function "absent" not declared`)
}

func TestVerify_MissingSourceFile(t *testing.T) {
	specPath := writeFixture(t, t.TempDir(), "index_of.cue", indexOfCUE)

	buf := &bytes.Buffer{}
	cmd := NewVerifyCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{specPath, "/nonexistent/src.py"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
