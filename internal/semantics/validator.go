package semantics

import (
	"synthgate/internal/ir"
)

// ValidateIR checks structural completeness of the IR: return-value
// presence on every terminal control path, and declared-type consistency
// across the effect chain. Type compatibility is determined from declared
// types only - no execution.
func ValidateIR(spec *ir.IntermediateRepresentation) []ir.SemanticIssue {
	var issues []ir.SemanticIssue
	issues = append(issues, checkReturnCompleteness(spec)...)
	issues = append(issues, checkTypeConsistency(spec)...)
	return issues
}

// checkReturnCompleteness verifies that a non-void signature is matched by
// a return effect reachable on every terminal control path, and that a
// void signature does not silently return values.
func checkReturnCompleteness(spec *ir.IntermediateRepresentation) []ir.SemanticIssue {
	var issues []ir.SemanticIssue

	if !spec.Signature.Returns() {
		// A bare return in a void function is an intentional early exit;
		// only a value-carrying return is worth flagging, and then only
		// as advisory.
		for _, effect := range spec.Effects {
			if effect.Kind == ir.EffectReturn && effect.CarriesValue() {
				issues = append(issues, ir.Warnf(ir.IssueVoidValueReturn, effect.Position,
					"function %q is void but effect returns a value", spec.Signature.Name))
			}
		}
		return issues
	}

	var returns []ir.Effect
	for _, effect := range spec.Effects {
		if effect.Kind == ir.EffectReturn {
			returns = append(returns, effect)
		}
	}

	if len(returns) == 0 {
		issues = append(issues, ir.Errf(ir.IssueMissingReturn, ir.NoLocation,
			"signature declares return type %q but no effect is tagged return", spec.Signature.ReturnType))
		return issues
	}

	for _, ret := range returns {
		if ret.TopLevel() {
			// A top-level return covers the fallthrough path, so every
			// terminal path ends in a return.
			return issues
		}
	}

	// Every return sits inside a branch. An IR-declared early-return loop
	// pattern satisfies completeness: the loop body return is the
	// specified exit, and demanding a duplicate fallback would reject
	// exactly the shape the constraint asks for.
	if returnsSatisfyEarlyExit(spec, returns) {
		return issues
	}

	opener := branchOpener(spec.Effects, returns[0].BranchID, returns[0].Position)
	location := returns[0].Position
	if opener != nil {
		location = opener.Position
	}
	issues = append(issues, ir.Errf(ir.IssueMissingBranch, location,
		"return only exists on branch %q; paths that skip the branch never return", returns[0].BranchID))

	return issues
}

// returnsSatisfyEarlyExit reports whether the branch-only returns are the
// body of a loop whose IR declares an early-return pattern.
func returnsSatisfyEarlyExit(spec *ir.IntermediateRepresentation, returns []ir.Effect) bool {
	early := false
	for _, c := range spec.Constraints {
		if lb, ok := c.(ir.LoopBehaviorConstraint); ok && lb.EarlyReturn {
			early = true
			break
		}
	}
	if !early {
		return false
	}

	for _, ret := range returns {
		opener := branchOpener(spec.Effects, ret.BranchID, ret.Position)
		if opener != nil && opener.Kind == ir.EffectLoop {
			return true
		}
	}
	return false
}

// branchOpener finds the loop or conditional effect that opens the branch
// a member at the given position belongs to. The opener carries the same
// branch id as its body and precedes the member (or is the member itself).
func branchOpener(effects []ir.Effect, branchID string, before int) *ir.Effect {
	if branchID == "" {
		return nil
	}
	for i := range effects {
		effect := effects[i]
		if effect.Position > before {
			break
		}
		if effect.BranchID != branchID {
			continue
		}
		if effect.Kind == ir.EffectLoop || effect.Kind == ir.EffectConditional {
			return &effects[i]
		}
	}
	return nil
}

// checkTypeConsistency verifies that every declared producer/consumer pair
// agrees: a value produced with one declared type must not feed an effect
// that declares a different required type, and returned values must match
// the signature.
func checkTypeConsistency(spec *ir.IntermediateRepresentation) []ir.SemanticIssue {
	var issues []ir.SemanticIssue

	env := make(map[string]string, len(spec.Signature.Params))
	for _, p := range spec.Signature.Params {
		env[p.Name] = p.Type
	}

	for _, effect := range spec.Effects {
		for _, use := range effect.Uses {
			declared, known := env[use.Name]
			if !known {
				continue // dangling reference; the chain analyzer reports it
			}
			if !ir.CompatibleTypes(declared, use.WantType) {
				issues = append(issues, ir.Errf(ir.IssueTypeMismatch, effect.Position,
					"%q is declared %s but the effect consumes it as %s", use.Name, declared, use.WantType))
			}
		}

		if effect.Kind == ir.EffectReturn && spec.Signature.Returns() {
			issues = append(issues, checkReturnType(spec, effect, env)...)
		}

		if effect.Produces != "" {
			env[effect.Produces] = effect.ValueType
		}
	}

	for _, c := range spec.Constraints {
		tc, ok := c.(ir.TypeConstraint)
		if !ok {
			continue
		}
		if !ir.CompatibleTypes(spec.Signature.ReturnType, tc.Expected) {
			issues = append(issues, ir.Errf(ir.IssueTypeMismatch, ir.NoLocation,
				"constraint expects result type %s but signature declares %s", tc.Expected, spec.Signature.ReturnType))
		}
	}

	return issues
}

// checkReturnType compares a return effect's declared value type (explicit
// or inferred from its single read) against the signature's return type.
func checkReturnType(spec *ir.IntermediateRepresentation, effect ir.Effect, env map[string]string) []ir.SemanticIssue {
	want := spec.Signature.ReturnType

	valueType := effect.ValueType
	if valueType == "" && len(effect.Uses) == 1 {
		valueType = env[effect.Uses[0].Name]
	}

	if !ir.CompatibleTypes(valueType, want) {
		return []ir.SemanticIssue{ir.Errf(ir.IssueTypeMismatch, effect.Position,
			"return effect carries %s but signature declares %s", valueType, want)}
	}
	return nil
}
