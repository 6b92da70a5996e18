package assemble

import (
	"fmt"
	"strings"
)

// NodeKind categorizes a structural node.
type NodeKind string

const (
	NodeBlock       NodeKind = "block"
	NodeConditional NodeKind = "conditional"
	NodeLoop        NodeKind = "loop"
)

// ValidNodeKinds defines the allowed node kind strings.
var ValidNodeKinds = map[NodeKind]bool{
	NodeBlock:       true,
	NodeConditional: true,
	NodeLoop:        true,
}

// Node is one statement node of the structural skeleton, in tree order.
// Depth is the node's nesting level; indentation is depth * unit indent.
type Node struct {
	ID    string   `json:"id"`
	Kind  NodeKind `json:"kind"`
	Depth int      `json:"depth"`
}

// FragmentMap supplies, per node ID, the code fragment to render. A
// fragment may be multi-line with its own embedded relative indentation
// (the upstream generator may emit an entire nested block as one fragment,
// first line at relative indent zero).
type FragmentMap map[string]string

// ContractError reports malformed tree or fragment input. Such input is a
// programming contract violation by the upstream generator, reported to
// the caller rather than silently repaired.
type ContractError struct {
	NodeID string
	Reason string
}

// Error implements the error interface.
func (e *ContractError) Error() string {
	if e.NodeID != "" {
		return fmt.Sprintf("assembly contract violation at node %q: %s", e.NodeID, e.Reason)
	}
	return fmt.Sprintf("assembly contract violation: %s", e.Reason)
}

// DefaultUnitIndent is the per-depth indentation unit.
const DefaultUnitIndent = "    "

// Renderer assembles source text from a structure tree and fragments.
// The zero-cost construction carries only the unit indent; rendering is a
// pure function of its arguments.
type Renderer struct {
	unit string
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithUnitIndent overrides the per-depth indentation unit.
func WithUnitIndent(unit string) Option {
	return func(r *Renderer) { r.unit = unit }
}

// NewRenderer creates a Renderer with four-space unit indentation unless
// overridden.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{unit: DefaultUnitIndent}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render merges the structure tree with its fragments, deterministically
// and in a single pass:
//
//  1. For each node in tree order, base indent = depth * unit indent.
//  2. A multi-line fragment is pre-indented: every non-blank line is
//     prefixed with exactly the base indent and its relative indentation
//     below the first line is preserved verbatim. Blank lines stay empty,
//     never padded.
//  3. A single-line fragment is emitted as base indent + trimmed code.
//  4. A fragment that is empty after trimming emits nothing - not even a
//     blank placeholder. Sibling indentation is unaffected because indent
//     derives from tree depth, never from prior emitted text.
//
// Indentation is never inferred from trailing block-opening tokens; that
// heuristic double-indents fragments that already contain embedded
// structure.
func (r *Renderer) Render(nodes []Node, fragments FragmentMap) (string, error) {
	var out strings.Builder

	for _, node := range nodes {
		if node.Depth < 0 {
			return "", &ContractError{NodeID: node.ID, Reason: fmt.Sprintf("negative depth %d", node.Depth)}
		}
		if !ValidNodeKinds[node.Kind] {
			return "", &ContractError{NodeID: node.ID, Reason: fmt.Sprintf("unknown node kind %q", node.Kind)}
		}
		fragment, ok := fragments[node.ID]
		if !ok {
			return "", &ContractError{NodeID: node.ID, Reason: "no fragment supplied"}
		}

		if strings.TrimSpace(fragment) == "" {
			continue
		}

		base := strings.Repeat(r.unit, node.Depth)
		lines := strings.Split(strings.TrimRight(fragment, "\n"), "\n")

		if len(lines) == 1 {
			out.WriteString(base)
			out.WriteString(strings.TrimSpace(lines[0]))
			out.WriteByte('\n')
			continue
		}

		for _, line := range lines {
			if strings.TrimSpace(line) == "" {
				out.WriteByte('\n')
				continue
			}
			out.WriteString(base)
			out.WriteString(line)
			out.WriteByte('\n')
		}
	}

	return out.String(), nil
}

// Assemble renders with the default unit indent. It is the package-level
// entry point used once an IR has passed the synthesis gate.
func Assemble(nodes []Node, fragments FragmentMap) (string, error) {
	return NewRenderer().Render(nodes, fragments)
}
