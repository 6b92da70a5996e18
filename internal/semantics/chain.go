package semantics

import (
	"synthgate/internal/ir"
)

// AnalyzeChain walks the effect sequence once, building the ordered causal
// view of the plan. It returns structural issues plus the execution trace
// consumed by the logic error detector.
//
// Reachability simulation: the flag starts true; a return effect outside
// any branch makes every subsequent top-level effect unreachable. Effects
// encountered while unreachable yield UnreachableCode at their position.
//
// Dangling detection: an effect reading a variable that no parameter and no
// earlier reachable effect introduced yields DanglingReference as WARNING,
// not blocking - upstream generation may elide trivial bindings.
//
// AnalyzeChain is a pure function with no side effects beyond issue
// production.
func AnalyzeChain(params []ir.Param, effects []ir.Effect) ([]ir.SemanticIssue, ir.ExecutionTrace) {
	var issues []ir.SemanticIssue

	bound := make(map[string]bool, len(params))
	for _, p := range params {
		bound[p.Name] = true
	}

	records := make([]ir.TraceRecord, 0, len(effects))
	reachable := true

	for _, effect := range effects {
		record := ir.TraceRecord{
			Position:  effect.Position,
			Reachable: reachable,
		}

		if !reachable {
			issues = append(issues, ir.Errf(ir.IssueUnreachableCode, effect.Position,
				"effect %q follows an unconditional return and can never execute", effect.Text))
			records = append(records, record)
			continue
		}

		for _, use := range effect.Uses {
			if !bound[use.Name] {
				issues = append(issues, ir.Warnf(ir.IssueDanglingReference, effect.Position,
					"effect references %q but no earlier effect or parameter introduces it", use.Name))
			}
		}

		if effect.Produces != "" {
			record.StateDelta = map[string]string{effect.Produces: effect.ValueType}
			bound[effect.Produces] = true
		}

		// Only a top-level return cuts the chain; a return inside a
		// conditional or loop branch leaves the fallthrough path live.
		if effect.Kind == ir.EffectReturn && effect.TopLevel() {
			reachable = false
		}

		records = append(records, record)
	}

	return issues, ir.ExecutionTrace{Records: records}
}
