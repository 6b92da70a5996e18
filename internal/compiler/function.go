package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"synthgate/internal/ir"
)

// CompileFunction parses a CUE value into an IntermediateRepresentation.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the function struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`function: count_words: { ... }`)
//	spec, err := CompileFunction(v.LookupPath(cue.ParsePath("function.count_words")))
func CompileFunction(v cue.Value) (*ir.IntermediateRepresentation, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &ir.IntermediateRepresentation{}

	// Function name comes from the struct label (the path selector)
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		spec.Signature.Name = labels[len(labels)-1].String()
	}

	// Parse intent (required)
	intentVal := v.LookupPath(cue.ParsePath("intent"))
	if !intentVal.Exists() {
		return nil, &CompileError{
			Field:   "intent",
			Message: "intent is required",
			Pos:     v.Pos(),
		}
	}
	intent, err := intentVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	spec.Intent = intent

	// Parse signature params and return type
	if err := parseSignature(v, &spec.Signature); err != nil {
		return nil, err
	}

	// Parse effects (required, at least one)
	spec.Effects, err = parseEffects(v)
	if err != nil {
		return nil, err
	}
	if len(spec.Effects) == 0 {
		return nil, &CompileError{
			Field:   "effects",
			Message: "at least one effect is required",
			Pos:     v.Pos(),
		}
	}

	// Parse assertions (optional list of strings)
	assertVal := v.LookupPath(cue.ParsePath("assertions"))
	if assertVal.Exists() {
		assertIter, err := assertVal.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for assertIter.Next() {
			assertion, err := assertIter.Value().String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			spec.Assertions = append(spec.Assertions, assertion)
		}
	}

	// Parse constraints (optional)
	spec.Constraints, err = parseConstraints(v)
	if err != nil {
		return nil, err
	}

	// Parse pattern_example (optional)
	exampleVal := v.LookupPath(cue.ParsePath("pattern_example"))
	if exampleVal.Exists() {
		example, err := exampleVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		spec.PatternExample = example
	}

	return spec, nil
}

// parseSignature extracts the parameter list and return type.
// Params are declared as CUE struct fields whose values are type
// expressions; the return type the same way under "returns". A function
// with no "returns" field is void.
func parseSignature(v cue.Value, sig *ir.Signature) error {
	sigVal := v.LookupPath(cue.ParsePath("signature"))
	if !sigVal.Exists() {
		return &CompileError{
			Field:   "signature",
			Message: "signature is required",
			Pos:     v.Pos(),
		}
	}

	paramsVal := sigVal.LookupPath(cue.ParsePath("params"))
	if paramsVal.Exists() {
		iter, err := paramsVal.Fields()
		if err != nil {
			return formatCUEError(err)
		}
		for iter.Next() {
			paramType, err := extractTypeName(iter.Value())
			if err != nil {
				return err
			}
			sig.Params = append(sig.Params, ir.Param{
				Name: iter.Label(),
				Type: paramType,
			})
		}
	}

	returnsVal := sigVal.LookupPath(cue.ParsePath("returns"))
	if !returnsVal.Exists() {
		sig.ReturnType = ir.TypeVoid
		return nil
	}
	returnType, err := extractTypeName(returnsVal)
	if err != nil {
		return err
	}
	sig.ReturnType = returnType
	return nil
}

// parseEffects extracts the ordered effect list. Position defaults to
// the list index when the effect does not declare one.
func parseEffects(v cue.Value) ([]ir.Effect, error) {
	var effects []ir.Effect

	effectsVal := v.LookupPath(cue.ParsePath("effects"))
	if !effectsVal.Exists() {
		return effects, nil
	}

	iter, err := effectsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	for i := 0; iter.Next(); i++ {
		effVal := iter.Value()

		kind, err := effVal.LookupPath(cue.ParsePath("kind")).String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		text, err := effVal.LookupPath(cue.ParsePath("text")).String()
		if err != nil {
			return nil, formatCUEError(err)
		}

		effect := ir.Effect{
			Kind:     ir.EffectKind(kind),
			Text:     text,
			Position: i,
		}

		posVal := effVal.LookupPath(cue.ParsePath("position"))
		if posVal.Exists() {
			pos, err := posVal.Int64()
			if err != nil {
				return nil, formatCUEError(err)
			}
			effect.Position = int(pos)
		}

		branchVal := effVal.LookupPath(cue.ParsePath("branch"))
		if branchVal.Exists() {
			branch, err := branchVal.String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			effect.BranchID = branch
		}

		producesVal := effVal.LookupPath(cue.ParsePath("produces"))
		if producesVal.Exists() {
			produces, err := producesVal.String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			effect.Produces = produces
		}

		typeVal := effVal.LookupPath(cue.ParsePath("value_type"))
		if typeVal.Exists() {
			valueType, err := typeVal.String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			effect.ValueType = valueType
		}

		effect.Uses, err = parseUses(effVal)
		if err != nil {
			return nil, err
		}

		effects = append(effects, effect)
	}

	return effects, nil
}

// parseUses parses the declared reads of one effect.
// Supports:
// - Plain string: "words"
// - Object: { name: "words", want_type: "array" }
func parseUses(v cue.Value) ([]ir.VarRef, error) {
	usesVal := v.LookupPath(cue.ParsePath("uses"))
	if !usesVal.Exists() {
		return nil, nil
	}

	iter, err := usesVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var uses []ir.VarRef
	for iter.Next() {
		useVal := iter.Value()

		// Plain string form first
		if name, err := useVal.String(); err == nil {
			uses = append(uses, ir.VarRef{Name: name})
			continue
		}

		nameVal := useVal.LookupPath(cue.ParsePath("name"))
		if !nameVal.Exists() {
			return nil, &CompileError{
				Field:   "uses",
				Message: "must be a string or object with name field",
				Pos:     useVal.Pos(),
			}
		}
		name, err := nameVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		use := ir.VarRef{Name: name}

		wantVal := useVal.LookupPath(cue.ParsePath("want_type"))
		if wantVal.Exists() {
			want, err := wantVal.String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			use.WantType = want
		}

		uses = append(uses, use)
	}

	return uses, nil
}

// parseConstraints parses the declarative constraint list. Each entry is
// a tagged object whose "kind" selects the constraint variant, matching
// the serialized envelope form.
func parseConstraints(v cue.Value) ([]ir.Constraint, error) {
	constraintsVal := v.LookupPath(cue.ParsePath("constraints"))
	if !constraintsVal.Exists() {
		return nil, nil
	}

	iter, err := constraintsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var constraints []ir.Constraint
	for iter.Next() {
		c, err := parseConstraint(iter.Value())
		if err != nil {
			return nil, err
		}
		constraints = append(constraints, c)
	}

	return constraints, nil
}

func parseConstraint(v cue.Value) (ir.Constraint, error) {
	kind, err := v.LookupPath(cue.ParsePath("kind")).String()
	if err != nil {
		return nil, formatCUEError(err)
	}

	switch kind {
	case ir.ConstraintKindReturn:
		must, err := lookupBool(v, "must_return")
		if err != nil {
			return nil, err
		}
		return ir.ReturnConstraint{MustReturn: must}, nil

	case ir.ConstraintKindLoopBehavior:
		pattern, err := v.LookupPath(cue.ParsePath("pattern")).String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		early, err := lookupBool(v, "early_return")
		if err != nil {
			return nil, err
		}
		return ir.LoopBehaviorConstraint{
			Pattern:     ir.LoopPattern(pattern),
			EarlyReturn: early,
		}, nil

	case ir.ConstraintKindPosition:
		relation, err := v.LookupPath(cue.ParsePath("relation")).String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		subjectA, err := v.LookupPath(cue.ParsePath("subject_a")).String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		subjectB, err := v.LookupPath(cue.ParsePath("subject_b")).String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.PositionConstraint{
			Relation: ir.PositionRelation(relation),
			SubjectA: subjectA,
			SubjectB: subjectB,
		}, nil

	case ir.ConstraintKindType:
		expected, err := v.LookupPath(cue.ParsePath("expected")).String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.TypeConstraint{Expected: expected}, nil

	default:
		return nil, &CompileError{
			Field:   "constraints.kind",
			Message: fmt.Sprintf("unknown constraint kind: %q", kind),
			Pos:     v.Pos(),
		}
	}
}

// lookupBool reads an optional bool field, defaulting to false.
func lookupBool(v cue.Value, field string) (bool, error) {
	fieldVal := v.LookupPath(cue.ParsePath(field))
	if !fieldVal.Exists() {
		return false, nil
	}
	b, err := fieldVal.Bool()
	if err != nil {
		return false, formatCUEError(err)
	}
	return b, nil
}

// extractTypeName converts a CUE type expression to an IR type string.
// Floats are forbidden in the IR's type vocabulary - use int instead.
func extractTypeName(v cue.Value) (string, error) {
	switch v.IncompleteKind() {
	case cue.StringKind:
		return "string", nil
	case cue.IntKind:
		return "int", nil
	case cue.BoolKind:
		return "bool", nil
	case cue.ListKind:
		return "array", nil
	case cue.StructKind:
		return "object", nil
	case cue.TopKind:
		return ir.TypeAny, nil
	case cue.FloatKind, cue.NumberKind:
		return "", &CompileError{
			Field:   "type",
			Message: "float types are forbidden - use int instead",
			Pos:     v.Pos(),
		}
	default:
		return "", &CompileError{
			Field:   "type",
			Message: fmt.Sprintf("unsupported type kind: %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
