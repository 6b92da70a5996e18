package compiler

import (
	"fmt"
	"strings"

	"synthgate/internal/ir"
)

// Validation error codes (E200-E299)
const (
	ErrIntentEmpty        = "E200" // intent is required
	ErrSignatureNameEmpty = "E201" // function name is required
	ErrDuplicateParam     = "E202" // duplicate parameter name
	ErrInvalidFieldType   = "E203" // invalid type string
	ErrFloatTypeForbidden = "E204" // float types not allowed
	ErrNoEffects          = "E205" // at least one effect required
	ErrInvalidEffectKind  = "E206" // kind outside the closed set
	ErrEmptyEffectText    = "E207" // effect text is required
	ErrPositionOrder      = "E208" // positions must strictly increase
	ErrDanglingBranch     = "E209" // branch has no loop/conditional opener
	ErrInvalidConstraint  = "E210" // constraint field validation
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate validates a compiled IR against schema rules.
// Returns all errors found (does not fail-fast). Schema validation
// guards structural well-formedness only; semantic analysis of a valid
// IR is the interpreter's job.
func Validate(spec *ir.IntermediateRepresentation) []ValidationError {
	var errs []ValidationError

	// E200: intent is required
	if strings.TrimSpace(spec.Intent) == "" {
		errs = append(errs, ValidationError{
			Field:   "intent",
			Message: "intent is required and must be non-empty",
			Code:    ErrIntentEmpty,
		})
	}

	// E201: function name is required
	if strings.TrimSpace(spec.Signature.Name) == "" {
		errs = append(errs, ValidationError{
			Field:   "signature.name",
			Message: "function name is required",
			Code:    ErrSignatureNameEmpty,
		})
	}

	errs = append(errs, validateParams(spec.Signature.Params)...)

	// Return type: "void" is legal here and only here
	if spec.Signature.ReturnType != ir.TypeVoid {
		errs = append(errs, validateFieldType(spec.Signature.ReturnType, "signature.returns", spec.Signature.Name)...)
	}

	errs = append(errs, validateEffects(spec.Effects)...)

	for i, c := range spec.Constraints {
		errs = append(errs, validateConstraint(c, i)...)
	}

	return errs
}

func validateParams(params []ir.Param) []ValidationError {
	var errs []ValidationError

	seen := make(map[string]bool, len(params))
	for i, param := range params {
		// E202: duplicate parameter name
		if seen[param.Name] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("signature.params[%d].name", i),
				Message: fmt.Sprintf("duplicate parameter name: %q", param.Name),
				Code:    ErrDuplicateParam,
			})
		}
		seen[param.Name] = true

		errs = append(errs, validateFieldType(param.Type, fmt.Sprintf("signature.params[%d].type", i), param.Name)...)
	}

	return errs
}

func validateEffects(effects []ir.Effect) []ValidationError {
	var errs []ValidationError

	// E205: at least one effect required
	if len(effects) == 0 {
		errs = append(errs, ValidationError{
			Field:   "effects",
			Message: "at least one effect is required",
			Code:    ErrNoEffects,
		})
	}

	branchOpener := make(map[string]ir.EffectKind)
	prevPosition := -1

	for i, effect := range effects {
		field := fmt.Sprintf("effects[%d]", i)

		// E206: kind must be in the closed set
		if !ir.ValidEffectKinds[effect.Kind] {
			errs = append(errs, ValidationError{
				Field:   field + ".kind",
				Message: fmt.Sprintf("invalid effect kind %q", effect.Kind),
				Code:    ErrInvalidEffectKind,
			})
		}

		// E207: text is required
		if strings.TrimSpace(effect.Text) == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".text",
				Message: "effect text is required and must be non-empty",
				Code:    ErrEmptyEffectText,
			})
		}

		// E208: positions strictly increase in list order
		if effect.Position <= prevPosition {
			errs = append(errs, ValidationError{
				Field:   field + ".position",
				Message: fmt.Sprintf("position %d does not increase over preceding position %d", effect.Position, prevPosition),
				Code:    ErrPositionOrder,
			})
		}
		prevPosition = effect.Position

		// First effect carrying a branch id is that branch's opener
		if effect.BranchID != "" {
			if _, ok := branchOpener[effect.BranchID]; !ok {
				branchOpener[effect.BranchID] = effect.Kind
			}
		}

		if effect.ValueType != "" {
			errs = append(errs, validateFieldType(effect.ValueType, field+".value_type", effect.Produces)...)
		}
		for j, use := range effect.Uses {
			if use.WantType != "" {
				errs = append(errs, validateFieldType(use.WantType, fmt.Sprintf("%s.uses[%d].want_type", field, j), use.Name)...)
			}
		}
	}

	// E209: every branch must open with a loop or conditional
	for i, effect := range effects {
		if effect.BranchID == "" {
			continue
		}
		opener := branchOpener[effect.BranchID]
		if opener != ir.EffectLoop && opener != ir.EffectConditional {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("effects[%d].branch", i),
				Message: fmt.Sprintf("branch %q does not open with a loop or conditional effect", effect.BranchID),
				Code:    ErrDanglingBranch,
			})
			// Report each branch once
			branchOpener[effect.BranchID] = ir.EffectLoop
		}
	}

	return errs
}

func validateConstraint(c ir.Constraint, i int) []ValidationError {
	var errs []ValidationError
	field := fmt.Sprintf("constraints[%d]", i)

	switch v := c.(type) {
	case ir.ReturnConstraint:
		// No fields beyond the bool, nothing to check

	case ir.LoopBehaviorConstraint:
		if !ir.ValidLoopPatterns[v.Pattern] {
			errs = append(errs, ValidationError{
				Field:   field + ".pattern",
				Message: fmt.Sprintf("invalid loop pattern %q, must be \"FIRST_MATCH\", \"LAST_MATCH\", or \"ALL_MATCHES\"", v.Pattern),
				Code:    ErrInvalidConstraint,
			})
		}
		if v.EarlyReturn && v.Pattern != ir.FirstMatch {
			errs = append(errs, ValidationError{
				Field:   field + ".early_return",
				Message: fmt.Sprintf("early_return is only valid with FIRST_MATCH, not %q", v.Pattern),
				Code:    ErrInvalidConstraint,
			})
		}

	case ir.PositionConstraint:
		if !ir.ValidPositionRelations[v.Relation] {
			errs = append(errs, ValidationError{
				Field:   field + ".relation",
				Message: fmt.Sprintf("invalid position relation %q, must be \"ADJACENT\" or \"NOT_ADJACENT\"", v.Relation),
				Code:    ErrInvalidConstraint,
			})
		}
		if strings.TrimSpace(v.SubjectA) == "" || strings.TrimSpace(v.SubjectB) == "" {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: "position constraint requires two non-empty subjects",
				Code:    ErrInvalidConstraint,
			})
		}

	case ir.TypeConstraint:
		if strings.TrimSpace(v.Expected) == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".expected",
				Message: "type constraint requires a non-empty expected type",
				Code:    ErrInvalidConstraint,
			})
		} else {
			errs = append(errs, validateFieldType(v.Expected, field+".expected", "result")...)
		}
	}

	return errs
}

// validateFieldType validates a type string, returning errors for invalid
// types and floats. Empty types are an explicit "unstated" and pass.
func validateFieldType(fieldType, fieldPath, fieldName string) []ValidationError {
	if fieldType == "" {
		return nil
	}

	var errs []ValidationError

	// E203: check for valid type
	if !isValidType(fieldType) {
		errs = append(errs, ValidationError{
			Field:   fieldPath,
			Message: fmt.Sprintf("invalid type %q for %q", fieldType, fieldName),
			Code:    ErrInvalidFieldType,
		})
	}

	// E204: float forbidden (explicit check even if not in valid types)
	if isFloatType(fieldType) {
		errs = append(errs, ValidationError{
			Field:   fieldPath,
			Message: fmt.Sprintf("float type forbidden for %q, use int instead", fieldName),
			Code:    ErrFloatTypeForbidden,
		})
	}

	return errs
}

// isValidType checks if a type string is valid for the IR.
func isValidType(t string) bool {
	validTypes := map[string]bool{
		"string":   true,
		"int":      true,
		"bool":     true,
		"array":    true,
		"object":   true,
		ir.TypeAny: true,
	}
	return validTypes[t]
}

// isFloatType checks if a type string represents a float type.
func isFloatType(t string) bool {
	floatTypes := map[string]bool{
		"float":   true,
		"float32": true,
		"float64": true,
		"number":  true,
		"double":  true,
	}
	return floatTypes[t]
}
