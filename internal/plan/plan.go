// Package plan loads and validates the structural generation documents
// exchanged with the upstream structural code generator: an ordered node
// tree plus a per-node fragment map, carried as one YAML document.
//
// A plan is assumed well-formed by the assembly engine, so every contract
// the engine relies on (depth consistency, node id uniqueness, fragment
// references) is checked here, at the boundary, with stable error codes.
package plan

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"synthgate/internal/assemble"
)

// Plan validation error codes (E301-E309)
const (
	ErrPlanNoNodes      = "E301" // at least one node required
	ErrDuplicateNodeID  = "E302" // node ids must be unique
	ErrEmptyNodeID      = "E303" // node id required
	ErrInvalidNodeKind  = "E304" // kind must be block/conditional/loop
	ErrNegativeDepth    = "E305" // depth must be >= 0
	ErrDepthJump        = "E306" // depth may grow by at most one step
	ErrMissingFragment  = "E307" // every node needs a fragment entry
	ErrOrphanedFragment = "E308" // fragment references no node
)

// ValidationError represents a plan validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Document is one structural generation result: the node tree in tree
// order and the fragment supplied for each node.
type Document struct {
	Nodes     []NodeSpec        `yaml:"nodes"`
	Fragments map[string]string `yaml:"fragments"`
}

// NodeSpec is the YAML form of one structural node.
type NodeSpec struct {
	ID    string `yaml:"id"`
	Kind  string `yaml:"kind"`
	Depth int    `yaml:"depth"`
}

// Load reads and decodes a plan document from disk. Decoding is strict:
// unknown YAML fields are rejected so a misspelled key fails loudly
// instead of silently dropping a fragment.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	return Parse(data)
}

// Parse decodes a plan document from YAML bytes.
func Parse(data []byte) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	return &doc, nil
}

// Validate checks the document against the assembly engine's input
// contract. Returns all errors found (does not fail-fast).
func (d *Document) Validate() []ValidationError {
	var errs []ValidationError

	if len(d.Nodes) == 0 {
		errs = append(errs, ValidationError{
			Field:   "nodes",
			Message: "at least one node is required",
			Code:    ErrPlanNoNodes,
		})
	}

	seen := make(map[string]bool, len(d.Nodes))
	prevDepth := 0

	for i, node := range d.Nodes {
		field := fmt.Sprintf("nodes[%d]", i)

		if node.ID == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".id",
				Message: "node id is required",
				Code:    ErrEmptyNodeID,
			})
		} else if seen[node.ID] {
			errs = append(errs, ValidationError{
				Field:   field + ".id",
				Message: fmt.Sprintf("duplicate node id: %q", node.ID),
				Code:    ErrDuplicateNodeID,
			})
		}
		seen[node.ID] = true

		if !assemble.ValidNodeKinds[assemble.NodeKind(node.Kind)] {
			errs = append(errs, ValidationError{
				Field:   field + ".kind",
				Message: fmt.Sprintf("invalid node kind %q, must be \"block\", \"conditional\", or \"loop\"", node.Kind),
				Code:    ErrInvalidNodeKind,
			})
		}

		switch {
		case node.Depth < 0:
			errs = append(errs, ValidationError{
				Field:   field + ".depth",
				Message: fmt.Sprintf("negative depth %d", node.Depth),
				Code:    ErrNegativeDepth,
			})
		case i == 0 && node.Depth != 0:
			errs = append(errs, ValidationError{
				Field:   field + ".depth",
				Message: "the first node must sit at depth 0",
				Code:    ErrDepthJump,
			})
		case i > 0 && node.Depth > prevDepth+1:
			errs = append(errs, ValidationError{
				Field:   field + ".depth",
				Message: fmt.Sprintf("depth jumps from %d to %d; nesting may grow by one level per node", prevDepth, node.Depth),
				Code:    ErrDepthJump,
			})
		}
		prevDepth = node.Depth

		if node.ID != "" {
			if _, ok := d.Fragments[node.ID]; !ok {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("fragments.%s", node.ID),
					Message: fmt.Sprintf("node %q has no fragment entry", node.ID),
					Code:    ErrMissingFragment,
				})
			}
		}
	}

	orphans := make([]string, 0, len(d.Fragments))
	for id := range d.Fragments {
		if !seen[id] {
			orphans = append(orphans, id)
		}
	}
	sort.Strings(orphans)
	for _, id := range orphans {
		errs = append(errs, ValidationError{
			Field:   fmt.Sprintf("fragments.%s", id),
			Message: fmt.Sprintf("fragment %q references no node", id),
			Code:    ErrOrphanedFragment,
		})
	}

	return errs
}

// Tree converts the document into the assembly engine's input pair.
// Call Validate first; Tree performs no checking of its own.
func (d *Document) Tree() ([]assemble.Node, assemble.FragmentMap) {
	nodes := make([]assemble.Node, len(d.Nodes))
	for i, n := range d.Nodes {
		nodes[i] = assemble.Node{
			ID:    n.ID,
			Kind:  assemble.NodeKind(n.Kind),
			Depth: n.Depth,
		}
	}
	fragments := make(assemble.FragmentMap, len(d.Fragments))
	for id, code := range d.Fragments {
		fragments[id] = code
	}
	return nodes, fragments
}
