package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSpecFile(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "spec.cue")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestLoadFunctions_SingleFile(t *testing.T) {
	path := writeSpecFile(t, indexOfCUE)

	specs, err := LoadFunctions(path)
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, "index_of", specs[0].Signature.Name)
	assert.Len(t, specs[0].Effects, 4)
}

func TestLoadFunctions_MultipleDeclarations(t *testing.T) {
	path := writeSpecFile(t, `
function: first: {
	intent: "first function"
	signature: returns: int
	effects: [{kind: "return", text: "return zero"}]
}
function: second: {
	intent: "second function"
	signature: returns: bool
	effects: [{kind: "return", text: "return true"}]
}
`)

	specs, err := LoadFunctions(path)
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.Equal(t, "first", specs[0].Signature.Name)
	assert.Equal(t, "second", specs[1].Signature.Name)
}

func TestLoadFunctions_MissingFile(t *testing.T) {
	_, err := LoadFunctions(filepath.Join(t.TempDir(), "missing.cue"))
	require.Error(t, err)
}

func TestLoadFunctions_NoFunctionStruct(t *testing.T) {
	path := writeSpecFile(t, `other: {x: 1}`)

	_, err := LoadFunctions(path)
	var compileErr *CompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, "function", compileErr.Field)
}

func TestLoadFunctions_CompileErrorNamesFunction(t *testing.T) {
	path := writeSpecFile(t, `
function: broken: {
	signature: returns: int
	effects: [{kind: "return", text: "return zero"}]
}
`)

	_, err := LoadFunctions(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `function "broken"`)
}

func TestLoadFunctions_MalformedCUE(t *testing.T) {
	path := writeSpecFile(t, `function: { unterminated`)

	_, err := LoadFunctions(path)
	require.Error(t, err)
}
