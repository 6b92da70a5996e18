package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainRevision  = "synthgate/revision/v1"
	DomainCandidate = "synthgate/candidate/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// RevisionID computes the content-addressed ID of an IR revision.
// The ID is stable across processes given the same IR content, so two
// identical revisions share one identity regardless of when they were
// produced. Returns an error if the IR cannot be canonically marshaled.
func RevisionID(spec *IntermediateRepresentation) (string, error) {
	canonical, err := MarshalCanonical(spec.canonicalMap())
	if err != nil {
		return "", fmt.Errorf("RevisionID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainRevision, canonical), nil
}

// CandidateID computes the content-addressed ID of a generated candidate
// within a revision. Identity covers the revision, the batch index, and
// the rendered source, never the derived score.
func CandidateID(revisionID string, index int, sourceText string) string {
	obj := map[string]any{
		"revision_id": revisionID,
		"index":       index,
		"source_text": sourceText,
	}
	// Object fields are strings and ints only, so marshaling cannot fail.
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		panic(fmt.Sprintf("CandidateID: %v", err))
	}
	return hashWithDomain(DomainCandidate, canonical)
}

// canonicalMap renders the IR into canonical-JSON-compatible values.
// Optional fields are omitted when empty so setting a field to its zero
// value and leaving it unset hash identically.
func (spec *IntermediateRepresentation) canonicalMap() map[string]any {
	sig := map[string]any{
		"name":        spec.Signature.Name,
		"return_type": spec.Signature.ReturnType,
	}
	if len(spec.Signature.Params) > 0 {
		params := make([]any, len(spec.Signature.Params))
		for i, p := range spec.Signature.Params {
			params[i] = map[string]any{"name": p.Name, "type": p.Type}
		}
		sig["params"] = params
	}

	effects := make([]any, len(spec.Effects))
	for i, e := range spec.Effects {
		effects[i] = e.canonicalMap()
	}

	m := map[string]any{
		"intent":    spec.Intent,
		"signature": sig,
		"effects":   effects,
	}
	if len(spec.Assertions) > 0 {
		assertions := make([]any, len(spec.Assertions))
		for i, a := range spec.Assertions {
			assertions[i] = a
		}
		m["assertions"] = assertions
	}
	if len(spec.Constraints) > 0 {
		constraints := make([]any, len(spec.Constraints))
		for i, c := range spec.Constraints {
			constraints[i] = canonicalConstraintMap(c)
		}
		m["constraints"] = constraints
	}
	if spec.PatternExample != "" {
		m["pattern_example"] = spec.PatternExample
	}
	return m
}

func (e Effect) canonicalMap() map[string]any {
	m := map[string]any{
		"kind":     string(e.Kind),
		"text":     e.Text,
		"position": e.Position,
	}
	if e.BranchID != "" {
		m["branch_id"] = e.BranchID
	}
	if e.Produces != "" {
		m["produces"] = e.Produces
	}
	if e.ValueType != "" {
		m["value_type"] = e.ValueType
	}
	if len(e.Uses) > 0 {
		uses := make([]any, len(e.Uses))
		for i, u := range e.Uses {
			use := map[string]any{"name": u.Name}
			if u.WantType != "" {
				use["want_type"] = u.WantType
			}
			uses[i] = use
		}
		m["uses"] = uses
	}
	return m
}

func canonicalConstraintMap(c Constraint) map[string]any {
	switch v := c.(type) {
	case ReturnConstraint:
		return map[string]any{
			"kind":        ConstraintKindReturn,
			"must_return": v.MustReturn,
		}
	case LoopBehaviorConstraint:
		return map[string]any{
			"kind":         ConstraintKindLoopBehavior,
			"pattern":      string(v.Pattern),
			"early_return": v.EarlyReturn,
		}
	case PositionConstraint:
		return map[string]any{
			"kind":      ConstraintKindPosition,
			"relation":  string(v.Relation),
			"subject_a": v.SubjectA,
			"subject_b": v.SubjectB,
		}
	case TypeConstraint:
		return map[string]any{
			"kind":     ConstraintKindType,
			"expected": v.Expected,
		}
	default:
		// Constraint is sealed; this is unreachable for well-formed IRs.
		return map[string]any{"kind": fmt.Sprintf("unknown:%T", c)}
	}
}
