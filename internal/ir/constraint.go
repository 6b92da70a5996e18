package ir

import (
	"encoding/json"
	"fmt"
)

// Constraint is a sealed interface over the declarative expectations an IR
// carries. Only ReturnConstraint, LoopBehaviorConstraint, PositionConstraint,
// and TypeConstraint implement it. All variants are comparable value types,
// so a Constraint is usable as a map key and in equality assertions.
type Constraint interface {
	constraint() // Sealed - only these types implement it

	// Describe returns a short human-readable rendering for diagnostics.
	Describe() string
}

// ReturnConstraint declares whether the generated code must (or must not)
// contain a return statement.
type ReturnConstraint struct {
	MustReturn bool `json:"must_return"`
}

func (ReturnConstraint) constraint() {}

// Describe implements Constraint.
func (c ReturnConstraint) Describe() string {
	if c.MustReturn {
		return "return(required)"
	}
	return "return(forbidden)"
}

// LoopPattern is the closed set of loop termination patterns.
type LoopPattern string

const (
	FirstMatch LoopPattern = "FIRST_MATCH"
	LastMatch  LoopPattern = "LAST_MATCH"
	AllMatches LoopPattern = "ALL_MATCHES"
)

// ValidLoopPatterns defines the allowed loop pattern strings.
var ValidLoopPatterns = map[LoopPattern]bool{
	FirstMatch: true,
	LastMatch:  true,
	AllMatches: true,
}

// LoopBehaviorConstraint declares the expected loop termination shape:
// FIRST_MATCH with EarlyReturn exits inside the loop body on a match;
// LAST_MATCH and ALL_MATCHES demand full iteration with the aggregation
// or fallback after the loop.
type LoopBehaviorConstraint struct {
	Pattern     LoopPattern `json:"pattern"`
	EarlyReturn bool        `json:"early_return"`
}

func (LoopBehaviorConstraint) constraint() {}

// Describe implements Constraint.
func (c LoopBehaviorConstraint) Describe() string {
	if c.EarlyReturn {
		return fmt.Sprintf("loop(%s, early_return)", c.Pattern)
	}
	return fmt.Sprintf("loop(%s)", c.Pattern)
}

// PositionRelation is the closed set of positional relations.
type PositionRelation string

const (
	Adjacent    PositionRelation = "ADJACENT"
	NotAdjacent PositionRelation = "NOT_ADJACENT"
)

// ValidPositionRelations defines the allowed relation strings.
var ValidPositionRelations = map[PositionRelation]bool{
	Adjacent:    true,
	NotAdjacent: true,
}

// PositionConstraint declares a required positional relation between two
// named subjects in the generated code.
type PositionConstraint struct {
	Relation PositionRelation `json:"relation"`
	SubjectA string           `json:"subject_a"`
	SubjectB string           `json:"subject_b"`
}

func (PositionConstraint) constraint() {}

// Describe implements Constraint.
func (c PositionConstraint) Describe() string {
	return fmt.Sprintf("position(%s, %q, %q)", c.Relation, c.SubjectA, c.SubjectB)
}

// TypeConstraint declares the expected type of the function's result.
type TypeConstraint struct {
	Expected string `json:"expected"`
}

func (TypeConstraint) constraint() {}

// Describe implements Constraint.
func (c TypeConstraint) Describe() string {
	return fmt.Sprintf("type(%s)", c.Expected)
}

// Constraint kind tags used in serialized form.
const (
	ConstraintKindReturn       = "return"
	ConstraintKindLoopBehavior = "loop_behavior"
	ConstraintKindPosition     = "position"
	ConstraintKindType         = "type"
)

// constraintEnvelope is the tagged serialized form of a Constraint.
type constraintEnvelope struct {
	Kind        string           `json:"kind"`
	MustReturn  bool             `json:"must_return,omitempty"`
	Pattern     LoopPattern      `json:"pattern,omitempty"`
	EarlyReturn bool             `json:"early_return,omitempty"`
	Relation    PositionRelation `json:"relation,omitempty"`
	SubjectA    string           `json:"subject_a,omitempty"`
	SubjectB    string           `json:"subject_b,omitempty"`
	Expected    string           `json:"expected,omitempty"`
}

// MarshalConstraint serializes a Constraint into its tagged JSON form.
func MarshalConstraint(c Constraint) ([]byte, error) {
	var env constraintEnvelope
	switch v := c.(type) {
	case ReturnConstraint:
		env = constraintEnvelope{Kind: ConstraintKindReturn, MustReturn: v.MustReturn}
	case LoopBehaviorConstraint:
		env = constraintEnvelope{Kind: ConstraintKindLoopBehavior, Pattern: v.Pattern, EarlyReturn: v.EarlyReturn}
	case PositionConstraint:
		env = constraintEnvelope{Kind: ConstraintKindPosition, Relation: v.Relation, SubjectA: v.SubjectA, SubjectB: v.SubjectB}
	case TypeConstraint:
		env = constraintEnvelope{Kind: ConstraintKindType, Expected: v.Expected}
	default:
		return nil, fmt.Errorf("unknown constraint type: %T", c)
	}
	return json.Marshal(env)
}

// UnmarshalConstraint deserializes a tagged JSON form into a Constraint.
func UnmarshalConstraint(data []byte) (Constraint, error) {
	var env constraintEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	switch env.Kind {
	case ConstraintKindReturn:
		return ReturnConstraint{MustReturn: env.MustReturn}, nil
	case ConstraintKindLoopBehavior:
		if !ValidLoopPatterns[env.Pattern] {
			return nil, fmt.Errorf("invalid loop pattern: %q", env.Pattern)
		}
		return LoopBehaviorConstraint{Pattern: env.Pattern, EarlyReturn: env.EarlyReturn}, nil
	case ConstraintKindPosition:
		if !ValidPositionRelations[env.Relation] {
			return nil, fmt.Errorf("invalid position relation: %q", env.Relation)
		}
		return PositionConstraint{Relation: env.Relation, SubjectA: env.SubjectA, SubjectB: env.SubjectB}, nil
	case ConstraintKindType:
		return TypeConstraint{Expected: env.Expected}, nil
	default:
		return nil, fmt.Errorf("unknown constraint kind: %q", env.Kind)
	}
}
