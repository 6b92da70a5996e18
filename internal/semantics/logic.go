package semantics

import (
	"synthgate/internal/ir"
)

// DetectLogicErrors runs the lifetime, loop-shape, and reachability checks
// over an IR, reusing the execution trace built by AnalyzeChain so each
// interpretation simulates the chain exactly once.
func DetectLogicErrors(spec *ir.IntermediateRepresentation, trace ir.ExecutionTrace) []ir.SemanticIssue {
	var issues []ir.SemanticIssue
	issues = append(issues, checkShadowing(spec)...)
	issues = append(issues, checkLoopBehavior(spec)...)
	issues = append(issues, checkDeadConstraints(spec, trace)...)
	return issues
}

// checkShadowing flags a binding that hides a parameter or a still-live
// binding from an enclosing scope. Re-binding the same name within one
// scope is treated as reassignment, not shadowing.
func checkShadowing(spec *ir.IntermediateRepresentation) []ir.SemanticIssue {
	var issues []ir.SemanticIssue

	params := make(map[string]bool, len(spec.Signature.Params))
	for _, p := range spec.Signature.Params {
		params[p.Name] = true
	}

	topLevel := make(map[string]bool)

	for _, effect := range spec.Effects {
		name := effect.Produces
		if name == "" {
			continue
		}

		switch {
		case params[name]:
			issues = append(issues, ir.Warnf(ir.IssueVariableShadowing, effect.Position,
				"binding %q hides a parameter of the same name", name))
		case !effect.TopLevel() && topLevel[name]:
			issues = append(issues, ir.Warnf(ir.IssueVariableShadowing, effect.Position,
				"binding %q inside branch %q hides a live binding from the enclosing scope", name, effect.BranchID))
		}

		if effect.TopLevel() {
			topLevel[name] = true
		}
	}

	return issues
}

// checkLoopBehavior compares every declared LoopBehaviorConstraint against
// the effect chain's loop shape. A return inside the loop's branch makes
// the chain EARLY_RETURN-capable; a top-level return after the loop is the
// POST_LOOP aggregation shape.
func checkLoopBehavior(spec *ir.IntermediateRepresentation) []ir.SemanticIssue {
	var issues []ir.SemanticIssue

	for _, c := range spec.Constraints {
		lb, ok := c.(ir.LoopBehaviorConstraint)
		if !ok {
			continue
		}

		loop := firstLoop(spec.Effects)
		if loop == nil {
			issues = append(issues, ir.Errf(ir.IssueLoopBehaviorMismatch, ir.NoLocation,
				"constraint %s declared but the effect chain has no loop", lb.Describe()))
			continue
		}

		inLoopReturn := firstInLoopReturn(spec.Effects, loop)
		postLoopReturn := hasPostLoopReturn(spec.Effects, loop)

		switch {
		case lb.Pattern == ir.FirstMatch && lb.EarlyReturn:
			if inLoopReturn == nil {
				issues = append(issues, ir.Errf(ir.IssueLoopBehaviorMismatch, loop.Position,
					"%s requires a return inside the loop body, but the chain only returns after the loop", lb.Describe()))
			}
		case lb.Pattern == ir.FirstMatch:
			if !postLoopReturn {
				issues = append(issues, ir.Errf(ir.IssueLoopBehaviorMismatch, loop.Position,
					"%s requires a return after the loop completes", lb.Describe()))
			}
		default: // LAST_MATCH, ALL_MATCHES: full iteration then aggregate
			if inLoopReturn != nil {
				issues = append(issues, ir.Errf(ir.IssueLoopBehaviorMismatch, inLoopReturn.Position,
					"return inside the loop body exits early, but %s demands full iteration", lb.Describe()))
			}
			if !postLoopReturn && spec.Signature.Returns() {
				issues = append(issues, ir.Errf(ir.IssueLoopBehaviorMismatch, loop.Position,
					"%s requires the final aggregation return after the loop", lb.Describe()))
			}
		}
	}

	return issues
}

// checkDeadConstraints cross-checks constraints against the reachability
// trace: a constraint whose witness effect can never execute can never be
// preserved in generated code, which makes the IR unsynthesizable as
// specified.
func checkDeadConstraints(spec *ir.IntermediateRepresentation, trace ir.ExecutionTrace) []ir.SemanticIssue {
	var issues []ir.SemanticIssue

	for _, c := range spec.Constraints {
		witness := constraintWitness(spec.Effects, c)
		if witness == nil {
			continue
		}
		if !trace.ReachableAt(witness.Position) {
			issues = append(issues, ir.Errf(ir.IssueDeadConstraint, witness.Position,
				"constraint %s depends on effect %d, which is unreachable", c.Describe(), witness.Position))
		}
	}

	return issues
}

// constraintWitness picks the effect a constraint's preservation depends
// on: the first loop for loop-behavior constraints, the first return for
// return and type constraints. Position constraints have no single witness
// in the chain.
func constraintWitness(effects []ir.Effect, c ir.Constraint) *ir.Effect {
	switch v := c.(type) {
	case ir.LoopBehaviorConstraint:
		return firstLoop(effects)
	case ir.ReturnConstraint:
		if !v.MustReturn {
			return nil
		}
		return firstReturn(effects)
	case ir.TypeConstraint:
		return firstReturn(effects)
	case ir.PositionConstraint:
		return nil
	default:
		return nil
	}
}

func firstLoop(effects []ir.Effect) *ir.Effect {
	for i := range effects {
		if effects[i].Kind == ir.EffectLoop {
			return &effects[i]
		}
	}
	return nil
}

func firstReturn(effects []ir.Effect) *ir.Effect {
	for i := range effects {
		if effects[i].Kind == ir.EffectReturn {
			return &effects[i]
		}
	}
	return nil
}

// firstInLoopReturn finds the first return effect inside the loop's branch.
// A loop without a branch id has no distinguishable body, so nothing
// classifies as in-loop.
func firstInLoopReturn(effects []ir.Effect, loop *ir.Effect) *ir.Effect {
	if loop.BranchID == "" {
		return nil
	}
	for i := range effects {
		effect := effects[i]
		if effect.Position <= loop.Position {
			continue
		}
		if effect.Kind == ir.EffectReturn && effect.BranchID == loop.BranchID {
			return &effects[i]
		}
	}
	return nil
}

// hasPostLoopReturn reports whether a top-level return follows the loop.
func hasPostLoopReturn(effects []ir.Effect, loop *ir.Effect) bool {
	for _, effect := range effects {
		if effect.Position <= loop.Position {
			continue
		}
		if effect.Kind == ir.EffectReturn && effect.TopLevel() {
			return true
		}
	}
	return false
}
