package semantics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"synthgate/internal/ir"
	"synthgate/internal/testutil"
)

func TestValidateIR_MissingReturn(t *testing.T) {
	spec := testutil.NewIR("sum", "int").
		Param("items", "array").
		Effect(testutil.Assign("accumulate total", "total", "int", "items")).
		Build()

	issues := ValidateIR(spec)

	require.Len(t, issues, 1)
	assert.Equal(t, ir.IssueMissingReturn, issues[0].Kind)
	assert.Equal(t, ir.SeverityError, issues[0].Severity)
	assert.Equal(t, ir.NoLocation, issues[0].Location)
}

func TestValidateIR_TopLevelReturnIsComplete(t *testing.T) {
	spec := testutil.NewIR("sum", "int").
		Effect(testutil.Assign("accumulate total", "total", "int")).
		Effect(testutil.Return("return the total", "int", "total")).
		Build()

	assert.Empty(t, ValidateIR(spec))
}

func TestValidateIR_ConditionalOnlyReturnIsMissingBranch(t *testing.T) {
	// if matched: return index -- and nothing after the conditional block.
	spec := testutil.NewIR("find", "int").
		Param("items", "array").
		Effect(testutil.Cond("check for a match", "C1", "items")).
		Effect(testutil.BranchReturn("return the index", "C1", "int")).
		Build()

	issues := ValidateIR(spec)

	require.Len(t, issues, 1)
	assert.Equal(t, ir.IssueMissingBranch, issues[0].Kind)
	assert.Equal(t, ir.SeverityError, issues[0].Severity)
	assert.Equal(t, 0, issues[0].Location, "reported at the branch opener")
}

func TestValidateIR_DeclaredEarlyReturnSatisfiesCompleteness(t *testing.T) {
	// The IR declares FIRST_MATCH with early return; the in-loop return is
	// the specified exit and must not be flagged as incomplete even with
	// no return after the loop.
	spec := testutil.NewIR("find", "int").
		Param("items", "array").
		Effect(testutil.Loop("iterate items", "L1", "items")).
		Effect(testutil.BranchReturn("return the index on match", "L1", "int")).
		Constraint(ir.LoopBehaviorConstraint{Pattern: ir.FirstMatch, EarlyReturn: true}).
		Build()

	for _, issue := range ValidateIR(spec) {
		assert.NotEqual(t, ir.IssueMissingBranch, issue.Kind)
		assert.NotEqual(t, ir.IssueMissingReturn, issue.Kind)
	}
}

func TestValidateIR_VoidValueReturnIsWarning(t *testing.T) {
	spec := testutil.NewIR("notify", ir.TypeVoid).
		Param("message", "string").
		Effect(testutil.Call("send the message", "", "", "message")).
		Effect(testutil.Return("return the message", "string", "message")).
		Build()

	issues := ValidateIR(spec)

	require.Len(t, issues, 1)
	assert.Equal(t, ir.IssueVoidValueReturn, issues[0].Kind)
	assert.Equal(t, ir.SeverityWarning, issues[0].Severity, "may be an intentional early exit")
}

func TestValidateIR_BareReturnInVoidIsClean(t *testing.T) {
	spec := testutil.NewIR("notify", ir.TypeVoid).
		Effect(testutil.Return("stop early", "")).
		Build()

	assert.Empty(t, ValidateIR(spec))
}

func TestValidateIR_ProducerConsumerTypeMismatch(t *testing.T) {
	// A declared string result fed into a numeric-only effect.
	spec := testutil.NewIR("parse", "int").
		Effect(testutil.Assign("read the raw value", "raw", "string")).
		Effect(ir.Effect{
			Kind:      ir.EffectAssignment,
			Text:      "double the value",
			Produces:  "doubled",
			ValueType: "int",
			Uses:      []ir.VarRef{{Name: "raw", WantType: "int"}},
		}).
		Effect(testutil.Return("return the doubled value", "int", "doubled")).
		Build()

	issues := ValidateIR(spec)

	require.Len(t, issues, 1)
	assert.Equal(t, ir.IssueTypeMismatch, issues[0].Kind)
	assert.Equal(t, ir.SeverityError, issues[0].Severity)
	assert.Equal(t, 1, issues[0].Location)
}

func TestValidateIR_ReturnTypeMismatch(t *testing.T) {
	spec := testutil.NewIR("name_of", "string").
		Effect(testutil.Return("return the count", "int")).
		Build()

	issues := ValidateIR(spec)

	require.Len(t, issues, 1)
	assert.Equal(t, ir.IssueTypeMismatch, issues[0].Kind)
	assert.Contains(t, issues[0].Message, "return effect carries int")
}

func TestValidateIR_ReturnTypeInferredFromSingleUse(t *testing.T) {
	spec := testutil.NewIR("total", "int").
		Effect(testutil.Assign("join the names", "joined", "string")).
		Effect(testutil.Return("return the joined names", "", "joined")).
		Build()

	issues := ValidateIR(spec)

	require.Len(t, issues, 1)
	assert.Equal(t, ir.IssueTypeMismatch, issues[0].Kind)
	assert.Equal(t, 1, issues[0].Location)
}

func TestValidateIR_TypeConstraintAgainstSignature(t *testing.T) {
	spec := testutil.NewIR("total", "string").
		Effect(testutil.Return("return the total", "string")).
		Constraint(ir.TypeConstraint{Expected: "int"}).
		Build()

	issues := ValidateIR(spec)

	require.Len(t, issues, 1)
	assert.Equal(t, ir.IssueTypeMismatch, issues[0].Kind)
	assert.Equal(t, ir.NoLocation, issues[0].Location)
}

func TestValidateIR_UnknownTypesNeverConflict(t *testing.T) {
	spec := testutil.NewIR("passthrough", "any").
		Effect(testutil.Assign("wrap the value", "wrapped", "")).
		Effect(testutil.Return("return the wrapped value", "", "wrapped")).
		Build()

	assert.Empty(t, ValidateIR(spec))
}
