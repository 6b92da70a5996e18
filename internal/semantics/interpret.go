package semantics

import (
	"sort"

	"synthgate/internal/ir"
)

// Interpret runs the effect chain analyzer, the semantic validator, and the
// logic error detector over one IR in that fixed order, merges their
// findings, and renders the go/no-go decision for synthesis.
//
// Merging rules:
//   - each analyzer's batch is ordered by ascending location before
//     concatenation, so repeated calls on identical input report issues
//     identically
//   - duplicate findings (same kind, same location) collapse into one
//     issue keeping the highest severity seen
//   - ShouldGenerate is false iff any surviving issue is an ERROR
//
// Interpret is stateless: nothing is shared between calls, and each IR
// revision is validated independently.
func Interpret(spec *ir.IntermediateRepresentation) ir.InterpretationResult {
	chainIssues, trace := AnalyzeChain(spec.Signature.Params, spec.Effects)
	validatorIssues := ValidateIR(spec)
	logicIssues := DetectLogicErrors(spec, trace)

	merged := make([]ir.SemanticIssue, 0, len(chainIssues)+len(validatorIssues)+len(logicIssues))
	for _, batch := range [][]ir.SemanticIssue{chainIssues, validatorIssues, logicIssues} {
		sortByLocation(batch)
		merged = append(merged, batch...)
	}

	issues := dedupe(merged)

	shouldGenerate := true
	for _, issue := range issues {
		if issue.Blocking() {
			shouldGenerate = false
			break
		}
	}

	return ir.InterpretationResult{
		Issues:         issues,
		Trace:          trace,
		ShouldGenerate: shouldGenerate,
	}
}

// sortByLocation orders one analyzer's batch by ascending location,
// preserving emission order for issues at the same location.
func sortByLocation(issues []ir.SemanticIssue) {
	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Location < issues[j].Location
	})
}

// dedupe collapses issues sharing (kind, location), keeping the first
// occurrence's slot in the order. When a later duplicate carries a higher
// severity, the kept issue is upgraded to it, message included - a blocking
// finding must never be silently downgraded by an earlier advisory twin.
func dedupe(issues []ir.SemanticIssue) []ir.SemanticIssue {
	type key struct {
		kind     ir.IssueKind
		location int
	}

	out := make([]ir.SemanticIssue, 0, len(issues))
	slot := make(map[key]int, len(issues))

	for _, issue := range issues {
		k := key{kind: issue.Kind, location: issue.Location}
		if i, seen := slot[k]; seen {
			if issue.Severity == ir.SeverityError && out[i].Severity != ir.SeverityError {
				out[i] = issue
			}
			continue
		}
		slot[k] = len(out)
		out = append(out, issue)
	}

	return out
}
