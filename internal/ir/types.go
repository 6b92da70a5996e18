package ir

// IntermediateRepresentation is a fully populated function specification
// produced upstream. It is immutable for the remainder of processing;
// every analyzer treats it as read-only input.
type IntermediateRepresentation struct {
	Intent         string       `json:"intent"`
	Signature      Signature    `json:"signature"`
	Effects        []Effect     `json:"effects"`
	Assertions     []string     `json:"assertions,omitempty"`
	Constraints    []Constraint `json:"constraints,omitempty"`
	PatternExample string       `json:"pattern_example,omitempty"`
}

// Signature describes the function being specified: an ordered parameter
// list and a return type ("void" for none).
type Signature struct {
	Name       string  `json:"name"`
	Params     []Param `json:"params,omitempty"`
	ReturnType string  `json:"return_type"`
}

// TypeVoid is the return type of functions that produce no value.
const TypeVoid = "void"

// TypeAny marks a declared type that is intentionally unconstrained.
// Type-consistency checks never flag a producer or consumer declared "any".
const TypeAny = "any"

// Returns reports whether the signature declares a non-void return type.
func (s Signature) Returns() bool {
	return s.ReturnType != "" && s.ReturnType != TypeVoid
}

// Param is a named, typed function parameter.
type Param struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// EffectKind categorizes one step of the causal plan.
type EffectKind string

// The closed set of effect kinds. Analyzers switch exhaustively over these;
// adding a kind is a compile-time-visible change, never a runtime string check.
const (
	EffectAssignment  EffectKind = "assignment"
	EffectLoop        EffectKind = "loop"
	EffectConditional EffectKind = "conditional"
	EffectCall        EffectKind = "call"
	EffectReturn      EffectKind = "return"
	EffectOther       EffectKind = "other"
)

// ValidEffectKinds defines the allowed effect kind strings.
var ValidEffectKinds = map[EffectKind]bool{
	EffectAssignment:  true,
	EffectLoop:        true,
	EffectConditional: true,
	EffectCall:        true,
	EffectReturn:      true,
	EffectOther:       true,
}

// Effect is one ordered step in the IR's operational plan. Effects are
// exclusively owned by their IR and immutable once created.
//
// BranchID groups an effect under a conditional or loop body. The opening
// loop/conditional effect carries the same BranchID as its body members;
// a top-level effect has an empty BranchID.
//
// Produces / Uses / ValueType carry the declared dataflow of the step so
// that dangling-reference, shadowing, and type-consistency checks work on
// declared structure rather than on the free-text description.
type Effect struct {
	Kind      EffectKind `json:"kind"`
	Text      string     `json:"text"`
	Position  int        `json:"position"`
	BranchID  string     `json:"branch_id,omitempty"`
	Produces  string     `json:"produces,omitempty"`
	ValueType string     `json:"value_type,omitempty"`
	Uses      []VarRef   `json:"uses,omitempty"`
}

// VarRef is a declared read of a variable by an effect. WantType, when
// non-empty, declares the type the effect requires the variable to have.
type VarRef struct {
	Name     string `json:"name"`
	WantType string `json:"want_type,omitempty"`
}

// TopLevel reports whether the effect sits outside any branch.
func (e Effect) TopLevel() bool {
	return e.BranchID == ""
}

// CarriesValue reports whether a return effect returns a value
// (as opposed to a bare early exit).
func (e Effect) CarriesValue() bool {
	return e.ValueType != "" || len(e.Uses) > 0
}

// CompatibleTypes reports whether a produced type may feed a consumer
// expecting want. Empty and "any" on either side never conflict;
// otherwise the declared names must match exactly.
func CompatibleTypes(produced, want string) bool {
	if produced == "" || want == "" || produced == TypeAny || want == TypeAny {
		return true
	}
	return produced == want
}
