package verify

import (
	"synthgate/internal/ir"
)

// Score derives a candidate's score from its constraint report:
// satisfied / total for a structurally sound candidate, zero otherwise.
// A candidate with no declared constraints scores 1 when it compiles -
// there is nothing it could have failed to preserve.
func Score(report ir.ConstraintReport) float64 {
	if !report.Compiles {
		return 0
	}
	total := len(report.Results)
	if total == 0 {
		return 1
	}
	return float64(report.Satisfied()) / float64(total)
}

// NewCandidate verifies one synthesis attempt and bundles it with its
// derived score. Index records the attempt's slot in its best-of-N batch
// and is the deterministic tie-breaker during selection.
func NewCandidate(index int, source string, constraints []ir.Constraint) ir.GeneratedCandidate {
	report := Verify(source, constraints)
	return ir.GeneratedCandidate{
		Index:      index,
		SourceText: source,
		Compiles:   report.Compiles,
		Report:     report,
		Score:      Score(report),
	}
}
