package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const indexOfCUE = `
function: index_of: {
	intent: "Find the index of the first occurrence of target in items"
	signature: {
		params: {
			items:  [...]
			target: _
		}
		returns: int
	}
	effects: [
		{
			kind: "loop"
			text: "iterate over items with index"
			branch: "b0"
			produces: "i"
			value_type: "int"
			uses: [{name: "items", want_type: "array"}]
		},
		{
			kind: "conditional"
			text: "check whether the current item equals target"
			branch: "b0"
			uses: ["target"]
		},
		{
			kind: "return"
			text: "return the index"
			branch: "b0"
			value_type: "int"
			uses: ["i"]
		},
		{
			kind: "return"
			text: "return -1 when no item matched"
			value_type: "int"
		},
	]
	constraints: [
		{kind: "return", must_return: true},
		{kind: "loop_behavior", pattern: "FIRST_MATCH", early_return: true},
		{kind: "position", relation: "ADJACENT", subject_a: "if", subject_b: "return"},
		{kind: "type", expected: "int"},
	]
}
`

const missingReturnCUE = `
function: count_matches: {
	intent: "Count how many items equal target"
	signature: {
		params: {
			items: [...]
		}
		returns: int
	}
	effects: [
		{
			kind: "loop"
			text: "iterate over items"
			branch: "b0"
			uses: [{name: "items", want_type: "array"}]
		},
	]
}
`

const scanPlanYAML = `
nodes:
  - id: scan
    kind: loop
    depth: 0
  - id: check
    kind: conditional
    depth: 1
  - id: hit
    kind: block
    depth: 2
  - id: miss
    kind: block
    depth: 0
fragments:
  scan: "for i, item in enumerate(items):"
  check: "if item == target:"
  hit: "return i"
  miss: "return -1"
`

const trailingPlanYAML = `
nodes:
  - id: miss
    kind: block
    depth: 0
fragments:
  miss: "return -1"
`

// writeFixture drops a fixture file into dir and returns its path.
func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
