package assemble

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_SingleLineFragments(t *testing.T) {
	nodes := []Node{
		{ID: "fn", Kind: NodeBlock, Depth: 0},
		{ID: "loop", Kind: NodeLoop, Depth: 1},
		{ID: "body", Kind: NodeBlock, Depth: 2},
		{ID: "fallback", Kind: NodeBlock, Depth: 1},
	}
	fragments := FragmentMap{
		"fn":       "def index_of(items, target):",
		"loop":     "  for i, item in enumerate(items):  ",
		"body":     "\tif item == target: return i",
		"fallback": "return -1",
	}

	out, err := Assemble(nodes, fragments)
	require.NoError(t, err)

	// Idempotence: output is exactly base indent + trimmed code per node,
	// in tree order.
	want := strings.Join([]string{
		"def index_of(items, target):",
		"    for i, item in enumerate(items):",
		"        if item == target: return i",
		"    return -1",
	}, "\n") + "\n"
	assert.Equal(t, want, out)
}

func TestRender_PreservesEmbeddedStructure(t *testing.T) {
	nodes := []Node{{ID: "blk", Kind: NodeBlock, Depth: 0}}
	fragments := FragmentMap{
		"blk": "for i in R:\n    if C:\n        X",
	}

	out, err := Assemble(nodes, fragments)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "for i in R:", lines[0], "first line gets zero extra indent at depth 0")
	assert.Equal(t, "    if C:", lines[1], "4-space relative offset preserved verbatim")
	assert.Equal(t, "        X", lines[2], "8-space relative offset preserved verbatim")
}

func TestRender_MultiLineFragmentAtDepth(t *testing.T) {
	// The base indent is prefixed to every non-blank line; embedded
	// relative indentation is NOT re-derived from block-opening tokens.
	nodes := []Node{{ID: "blk", Kind: NodeBlock, Depth: 2}}
	fragments := FragmentMap{
		"blk": "if ok:\n    commit()",
	}

	out, err := Assemble(nodes, fragments)
	require.NoError(t, err)
	assert.Equal(t, "        if ok:\n            commit()\n", out)
}

func TestRender_BlankLinesStayEmpty(t *testing.T) {
	nodes := []Node{{ID: "blk", Kind: NodeBlock, Depth: 1}}
	fragments := FragmentMap{
		"blk": "first = 1\n\nsecond = 2",
	}

	out, err := Assemble(nodes, fragments)
	require.NoError(t, err)
	assert.Equal(t, "    first = 1\n\n    second = 2\n", out, "blank lines are emitted empty, never padded")
}

func TestRender_EmptyFragmentEmitsNothing(t *testing.T) {
	nodes := []Node{
		{ID: "a", Kind: NodeBlock, Depth: 0},
		{ID: "gap", Kind: NodeBlock, Depth: 1},
		{ID: "b", Kind: NodeBlock, Depth: 1},
	}
	fragments := FragmentMap{
		"a":   "while running:",
		"gap": "   \n  ",
		"b":   "tick()",
	}

	out, err := Assemble(nodes, fragments)
	require.NoError(t, err)

	// The sibling after the empty fragment keeps its depth-derived indent.
	assert.Equal(t, "while running:\n    tick()\n", out)
}

func TestRender_ContractViolations(t *testing.T) {
	fragments := FragmentMap{"n": "x = 1"}

	_, err := Assemble([]Node{{ID: "n", Kind: NodeBlock, Depth: -1}}, fragments)
	var contractErr *ContractError
	require.ErrorAs(t, err, &contractErr)
	assert.Contains(t, contractErr.Reason, "negative depth")

	_, err = Assemble([]Node{{ID: "n", Kind: "lambda", Depth: 0}}, fragments)
	require.ErrorAs(t, err, &contractErr)
	assert.Contains(t, contractErr.Reason, "unknown node kind")

	_, err = Assemble([]Node{{ID: "missing", Kind: NodeBlock, Depth: 0}}, FragmentMap{})
	require.ErrorAs(t, err, &contractErr)
	assert.Equal(t, "missing", contractErr.NodeID)
}

func TestRender_CustomUnitIndent(t *testing.T) {
	r := NewRenderer(WithUnitIndent("\t"))
	out, err := r.Render(
		[]Node{{ID: "n", Kind: NodeBlock, Depth: 2}},
		FragmentMap{"n": "x = 1"},
	)
	require.NoError(t, err)
	assert.Equal(t, "\t\tx = 1\n", out)
}

func TestRender_EmptyTree(t *testing.T) {
	out, err := Assemble(nil, FragmentMap{})
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestRender_Golden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	t.Run("index_of", func(t *testing.T) {
		nodes := []Node{
			{ID: "fn", Kind: NodeBlock, Depth: 0},
			{ID: "loop", Kind: NodeLoop, Depth: 1},
			{ID: "check", Kind: NodeConditional, Depth: 2},
			{ID: "hit", Kind: NodeBlock, Depth: 3},
			{ID: "miss", Kind: NodeBlock, Depth: 1},
		}
		fragments := FragmentMap{
			"fn":    "def index_of(items, target):",
			"loop":  "for i, item in enumerate(items):",
			"check": "if item == target:",
			"hit":   "return i",
			"miss":  "return -1",
		}

		out, err := Assemble(nodes, fragments)
		require.NoError(t, err)
		g.Assert(t, "index_of", []byte(out))
	})

	t.Run("count_matches", func(t *testing.T) {
		nodes := []Node{
			{ID: "fn", Kind: NodeBlock, Depth: 0},
			{ID: "scan", Kind: NodeBlock, Depth: 1},
			{ID: "result", Kind: NodeBlock, Depth: 1},
		}
		fragments := FragmentMap{
			"fn":     "def count_matches(items, target):",
			"scan":   "count = 0\nfor item in items:\n    if item == target:\n        count += 1",
			"result": "return count",
		}

		out, err := Assemble(nodes, fragments)
		require.NoError(t, err)
		g.Assert(t, "count_matches", []byte(out))
	})
}
