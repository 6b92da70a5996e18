package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignature_Returns(t *testing.T) {
	assert.True(t, Signature{ReturnType: "int"}.Returns())
	assert.False(t, Signature{ReturnType: TypeVoid}.Returns())
	assert.False(t, Signature{ReturnType: ""}.Returns(), "empty return type means void")
}

func TestEffect_TopLevel(t *testing.T) {
	assert.True(t, Effect{Kind: EffectReturn}.TopLevel())
	assert.False(t, Effect{Kind: EffectReturn, BranchID: "L1"}.TopLevel())
}

func TestEffect_CarriesValue(t *testing.T) {
	assert.False(t, Effect{Kind: EffectReturn}.CarriesValue(), "bare return carries no value")
	assert.True(t, Effect{Kind: EffectReturn, ValueType: "int"}.CarriesValue())
	assert.True(t, Effect{Kind: EffectReturn, Uses: []VarRef{{Name: "count"}}}.CarriesValue())
}

func TestCompatibleTypes(t *testing.T) {
	assert.True(t, CompatibleTypes("int", "int"))
	assert.False(t, CompatibleTypes("string", "int"))

	// Empty and "any" never conflict on either side.
	assert.True(t, CompatibleTypes("", "int"))
	assert.True(t, CompatibleTypes("string", ""))
	assert.True(t, CompatibleTypes(TypeAny, "int"))
	assert.True(t, CompatibleTypes("string", TypeAny))
}

func TestSemanticIssue_Blocking(t *testing.T) {
	assert.True(t, Errf(IssueMissingReturn, NoLocation, "no return").Blocking())
	assert.False(t, Warnf(IssueVariableShadowing, 2, "shadowed").Blocking())
}

func TestSemanticIssue_String(t *testing.T) {
	withLoc := Errf(IssueTypeMismatch, 3, "string fed into numeric effect")
	assert.Equal(t, "ERROR [TypeMismatch] effect 3: string fed into numeric effect", withLoc.String())

	noLoc := Warnf(IssueVoidValueReturn, NoLocation, "void function returns a value")
	assert.Equal(t, "WARNING [VoidValueReturn]: void function returns a value", noLoc.String())
}

func TestExecutionTrace_ReachableAt(t *testing.T) {
	trace := ExecutionTrace{Records: []TraceRecord{
		{Position: 0, Reachable: true},
		{Position: 1, Reachable: false},
	}}

	assert.True(t, trace.ReachableAt(0))
	assert.False(t, trace.ReachableAt(1))
	assert.False(t, trace.ReachableAt(-1), "untraced position is unreachable")
	assert.False(t, trace.ReachableAt(5), "untraced position is unreachable")
}

func TestExecutionTrace_ReachableAt_SparsePositions(t *testing.T) {
	trace := ExecutionTrace{Records: []TraceRecord{
		{Position: 0, Reachable: true},
		{Position: 5, Reachable: true},
		{Position: 8, Reachable: false},
	}}

	assert.True(t, trace.ReachableAt(5), "lookup matches the record's position, not its slice offset")
	assert.False(t, trace.ReachableAt(8))
	assert.False(t, trace.ReachableAt(3), "gap position is unreachable")
}

func TestConstraintReport_Lookup(t *testing.T) {
	ret := ReturnConstraint{MustReturn: true}
	loop := LoopBehaviorConstraint{Pattern: FirstMatch, EarlyReturn: true}

	report := ConstraintReport{
		Compiles: true,
		Results: []ConstraintResult{
			{Constraint: ret, Describe: ret.Describe(), Passed: true},
			{Constraint: loop, Describe: loop.Describe(), Passed: false},
		},
	}

	passed, ok := report.Passed(ret)
	assert.True(t, ok)
	assert.True(t, passed)

	passed, ok = report.Passed(loop)
	assert.True(t, ok)
	assert.False(t, passed)

	_, ok = report.Passed(TypeConstraint{Expected: "int"})
	assert.False(t, ok, "unverified constraint is not in the report")

	assert.Equal(t, 1, report.Satisfied())
}
