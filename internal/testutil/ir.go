// Package testutil provides compact IR builders for tests.
//
// Effect fixtures assign positions from declaration order, which keeps
// scenario construction to one line per causal step. Builders return fresh
// values on every call so tests can mutate their copies freely.
package testutil

import (
	"synthgate/internal/ir"
)

// IRBuilder accumulates an IntermediateRepresentation fixture.
type IRBuilder struct {
	spec ir.IntermediateRepresentation
}

// NewIR starts a fixture with the given function name and return type.
func NewIR(name, returnType string) *IRBuilder {
	return &IRBuilder{spec: ir.IntermediateRepresentation{
		Intent: "test fixture for " + name,
		Signature: ir.Signature{
			Name:       name,
			ReturnType: returnType,
		},
	}}
}

// Intent overrides the fixture's intent text.
func (b *IRBuilder) Intent(text string) *IRBuilder {
	b.spec.Intent = text
	return b
}

// Param appends a typed parameter.
func (b *IRBuilder) Param(name, typ string) *IRBuilder {
	b.spec.Signature.Params = append(b.spec.Signature.Params, ir.Param{Name: name, Type: typ})
	return b
}

// Effect appends an effect, assigning its position from declaration order.
func (b *IRBuilder) Effect(e ir.Effect) *IRBuilder {
	e.Position = len(b.spec.Effects)
	b.spec.Effects = append(b.spec.Effects, e)
	return b
}

// EffectAt appends an effect at an explicit position, for chains whose
// positions are sparse.
func (b *IRBuilder) EffectAt(position int, e ir.Effect) *IRBuilder {
	e.Position = position
	b.spec.Effects = append(b.spec.Effects, e)
	return b
}

// Constraint appends a declared constraint.
func (b *IRBuilder) Constraint(c ir.Constraint) *IRBuilder {
	b.spec.Constraints = append(b.spec.Constraints, c)
	return b
}

// Assert appends an assertion predicate.
func (b *IRBuilder) Assert(predicate string) *IRBuilder {
	b.spec.Assertions = append(b.spec.Assertions, predicate)
	return b
}

// Build returns the finished IR.
func (b *IRBuilder) Build() *ir.IntermediateRepresentation {
	spec := b.spec
	return &spec
}

// Assign builds an assignment effect producing name with the given type.
func Assign(text, name, typ string, uses ...string) ir.Effect {
	return ir.Effect{
		Kind:      ir.EffectAssignment,
		Text:      text,
		Produces:  name,
		ValueType: typ,
		Uses:      refs(uses),
	}
}

// Call builds a call effect; produces may be empty for a pure side effect.
func Call(text, produces, typ string, uses ...string) ir.Effect {
	return ir.Effect{
		Kind:      ir.EffectCall,
		Text:      text,
		Produces:  produces,
		ValueType: typ,
		Uses:      refs(uses),
	}
}

// Loop builds a loop effect opening the given branch.
func Loop(text, branch string, uses ...string) ir.Effect {
	return ir.Effect{
		Kind:     ir.EffectLoop,
		Text:     text,
		BranchID: branch,
		Uses:     refs(uses),
	}
}

// Cond builds a conditional effect in the given branch.
func Cond(text, branch string, uses ...string) ir.Effect {
	return ir.Effect{
		Kind:     ir.EffectConditional,
		Text:     text,
		BranchID: branch,
		Uses:     refs(uses),
	}
}

// Return builds a top-level return effect carrying the given type.
func Return(text, typ string, uses ...string) ir.Effect {
	return ir.Effect{
		Kind:      ir.EffectReturn,
		Text:      text,
		ValueType: typ,
		Uses:      refs(uses),
	}
}

// BranchReturn builds a return effect inside the given branch.
func BranchReturn(text, branch, typ string, uses ...string) ir.Effect {
	return ir.Effect{
		Kind:      ir.EffectReturn,
		Text:      text,
		BranchID:  branch,
		ValueType: typ,
		Uses:      refs(uses),
	}
}

func refs(names []string) []ir.VarRef {
	if len(names) == 0 {
		return nil
	}
	out := make([]ir.VarRef, len(names))
	for i, n := range names {
		out[i] = ir.VarRef{Name: n}
	}
	return out
}
