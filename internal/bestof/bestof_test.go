package bestof

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"synthgate/internal/ir"
	"synthgate/internal/testutil"
)

type generatorFunc func(ctx context.Context, spec *ir.IntermediateRepresentation, index int) (string, error)

func (f generatorFunc) Generate(ctx context.Context, spec *ir.IntermediateRepresentation, index int) (string, error) {
	return f(ctx, spec, index)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// countMatchesSpec passes the semantic gate and carries two constraints:
// a required return and full-iteration loop behavior.
func countMatchesSpec() *ir.IntermediateRepresentation {
	return testutil.NewIR("count_matches", "int").
		Param("items", "array").
		Param("target", "string").
		Effect(testutil.Assign("initialize the counter", "count", "int")).
		Effect(testutil.Loop("iterate over items", "b0", "items")).
		Effect(testutil.Cond("check whether the item matches target", "b0", "target")).
		Effect(testutil.Return("return the count", "int", "count")).
		Constraint(ir.ReturnConstraint{MustReturn: true}).
		Constraint(ir.LoopBehaviorConstraint{Pattern: ir.AllMatches}).
		Build()
}

// blockedSpec declares a non-void return but never returns: the gate
// raises a blocking missing-return issue.
func blockedSpec() *ir.IntermediateRepresentation {
	return testutil.NewIR("count_matches", "int").
		Param("items", "array").
		Effect(testutil.Assign("initialize the counter", "count", "int")).
		Effect(testutil.Loop("iterate over items", "b0", "items")).
		Build()
}

const fullIterationSource = "def count_matches(items, target):\n" +
	"    count = 0\n" +
	"    for item in items:\n" +
	"        if item == target:\n" +
	"            count += 1\n" +
	"    return count\n"

const earlyExitSource = "def count_matches(items, target):\n" +
	"    for item in items:\n" +
	"        if item == target:\n" +
	"            return 1\n" +
	"    return 0\n"

func TestRun_SelectsHighestScore(t *testing.T) {
	// Slot 0 satisfies one of two constraints, slot 1 both, slot 2 none
	sources := []string{earlyExitSource, fullIterationSource, "def broken(:\n"}
	gen := generatorFunc(func(_ context.Context, _ *ir.IntermediateRepresentation, index int) (string, error) {
		return sources[index], nil
	})

	o := New(gen,
		WithCandidates(3),
		WithTokenGenerator(NewFixedGenerator("run-1")),
		WithLogger(quietLogger()))

	outcome, err := o.Run(context.Background(), countMatchesSpec())
	require.NoError(t, err)

	assert.Equal(t, "run-1", outcome.RunID)
	assert.False(t, outcome.Blocked())
	require.Len(t, outcome.Candidates, 3)
	assert.Empty(t, outcome.Failures)

	require.NotNil(t, outcome.Best)
	assert.Equal(t, 1, outcome.Best.Index)
	assert.Equal(t, 1.0, outcome.Best.Score)
	assert.Equal(t, fullIterationSource, outcome.Best.SourceText)

	// The early-exit candidate still returns, so it keeps half the score
	assert.Equal(t, 0.5, outcome.Candidates[0].Score)
	assert.Equal(t, 0.0, outcome.Candidates[2].Score)
	assert.False(t, outcome.Candidates[2].Compiles)
}

func TestRun_TieBreaksOnEarliestIndex(t *testing.T) {
	gen := generatorFunc(func(_ context.Context, _ *ir.IntermediateRepresentation, index int) (string, error) {
		return fullIterationSource, nil
	})

	o := New(gen,
		WithCandidates(4),
		WithTokenGenerator(NewFixedGenerator("run-1")),
		WithLogger(quietLogger()))

	outcome, err := o.Run(context.Background(), countMatchesSpec())
	require.NoError(t, err)
	require.NotNil(t, outcome.Best)
	assert.Equal(t, 0, outcome.Best.Index)
}

func TestRun_GateBlocksGeneration(t *testing.T) {
	calls := 0
	gen := generatorFunc(func(_ context.Context, _ *ir.IntermediateRepresentation, index int) (string, error) {
		calls++
		return fullIterationSource, nil
	})

	o := New(gen,
		WithTokenGenerator(NewFixedGenerator("run-1")),
		WithLogger(quietLogger()))

	outcome, err := o.Run(context.Background(), blockedSpec())
	require.NoError(t, err)

	assert.True(t, outcome.Blocked())
	assert.Empty(t, outcome.Candidates)
	assert.Nil(t, outcome.Best)
	assert.Equal(t, 0, calls, "blocked gate must not invoke the generator")
	assert.NotEmpty(t, outcome.Interpretation.Errors())
}

func TestRun_FailedSlotsAreExcluded(t *testing.T) {
	gen := generatorFunc(func(_ context.Context, _ *ir.IntermediateRepresentation, index int) (string, error) {
		if index == 0 {
			return "", errors.New("upstream timeout")
		}
		return fullIterationSource, nil
	})

	o := New(gen,
		WithCandidates(2),
		WithTokenGenerator(NewFixedGenerator("run-1")),
		WithLogger(quietLogger()))

	outcome, err := o.Run(context.Background(), countMatchesSpec())
	require.NoError(t, err)

	require.Len(t, outcome.Failures, 1)
	assert.Equal(t, 0, outcome.Failures[0].Index)
	assert.Contains(t, outcome.Failures[0].Error(), "upstream timeout")

	require.Len(t, outcome.Candidates, 1)
	assert.Equal(t, 1, outcome.Best.Index)
}

func TestRun_AllSlotsFailed(t *testing.T) {
	gen := generatorFunc(func(_ context.Context, _ *ir.IntermediateRepresentation, index int) (string, error) {
		return "", fmt.Errorf("slot %d unavailable", index)
	})

	o := New(gen,
		WithCandidates(2),
		WithTokenGenerator(NewFixedGenerator("run-1")),
		WithLogger(quietLogger()))

	_, err := o.Run(context.Background(), countMatchesSpec())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 2 generation slots failed")
}

func TestRun_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	gen := generatorFunc(func(ctx context.Context, _ *ir.IntermediateRepresentation, index int) (string, error) {
		cancel()
		return "", ctx.Err()
	})

	o := New(gen,
		WithTokenGenerator(NewFixedGenerator("run-1")),
		WithLogger(quietLogger()))

	_, err := o.Run(ctx, countMatchesSpec())
	require.ErrorIs(t, err, context.Canceled)
}

func TestSelectBest_EmptyNeverCalled(t *testing.T) {
	candidates := []ir.GeneratedCandidate{
		{Index: 0, Score: 0.5},
		{Index: 1, Score: 0.5},
		{Index: 2, Score: 0.25},
	}
	best := selectBest(candidates)
	assert.Equal(t, 0, best.Index)
}

func TestFixedGenerator_Sequence(t *testing.T) {
	gen := NewFixedGenerator("a", "b")
	assert.Equal(t, "a", gen.Generate())
	assert.Equal(t, "b", gen.Generate())
	assert.Panics(t, func() { gen.Generate() })
}

func TestUUIDv7Generator_Format(t *testing.T) {
	gen := UUIDv7Generator{}
	token := gen.Generate()
	assert.Len(t, token, 36)
	assert.NotEqual(t, token, gen.Generate())
}
