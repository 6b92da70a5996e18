package bestof

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"synthgate/internal/ir"
	"synthgate/internal/semantics"
	"synthgate/internal/verify"
)

// DefaultCandidates is the batch width used when no option overrides it.
const DefaultCandidates = 3

// Generator produces the source text of one candidate. Implementations
// must be safe for concurrent use: the orchestrator calls Generate from
// one goroutine per candidate slot.
type Generator interface {
	Generate(ctx context.Context, spec *ir.IntermediateRepresentation, index int) (string, error)
}

// GenerationFailure records a candidate slot whose generator returned an
// error. Failed slots take no part in selection.
type GenerationFailure struct {
	Index int
	Err   error
}

func (f GenerationFailure) Error() string {
	return fmt.Sprintf("candidate %d: %v", f.Index, f.Err)
}

// Outcome is the result of one orchestrated run.
//
// When the semantic gate blocks, Candidates and Failures are empty and
// Best is nil; Interpretation carries the blocking issues.
type Outcome struct {
	RunID          string
	Interpretation ir.InterpretationResult
	Candidates     []ir.GeneratedCandidate
	Failures       []GenerationFailure
	Best           *ir.GeneratedCandidate
}

// Blocked reports whether the gate stopped the run before generation.
func (o *Outcome) Blocked() bool {
	return !o.Interpretation.ShouldGenerate
}

// Orchestrator fans one validated IR out to N parallel generation slots
// and selects the best verified candidate.
type Orchestrator struct {
	gen        Generator
	tokens     RunTokenGenerator
	candidates int
	logger     *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithCandidates sets the batch width N.
func WithCandidates(n int) Option {
	return func(o *Orchestrator) {
		o.candidates = n
	}
}

// WithTokenGenerator overrides the run token source. Tests use
// FixedGenerator for deterministic run ids.
func WithTokenGenerator(gen RunTokenGenerator) Option {
	return func(o *Orchestrator) {
		o.tokens = gen
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// New creates an Orchestrator around the given generator.
func New(gen Generator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		gen:        gen,
		tokens:     UUIDv7Generator{},
		candidates: DefaultCandidates,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run gates the IR, generates up to N candidates in parallel, verifies
// and scores each against the IR's constraints, and selects the winner.
//
// A blocked gate is not an error: the caller inspects Outcome.Blocked.
// Run returns an error only when the context is cancelled or every
// generation slot failed.
func (o *Orchestrator) Run(ctx context.Context, spec *ir.IntermediateRepresentation) (*Outcome, error) {
	outcome := &Outcome{
		RunID:          o.tokens.Generate(),
		Interpretation: semantics.Interpret(spec),
	}

	if outcome.Blocked() {
		o.logger.Info("generation blocked by semantic gate",
			"run_id", outcome.RunID,
			"function", spec.Signature.Name,
			"issues", len(outcome.Interpretation.Issues))
		return outcome, nil
	}

	sources := make([]string, o.candidates)
	genErrs := make([]error, o.candidates)

	var wg sync.WaitGroup
	for i := 0; i < o.candidates; i++ {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			sources[index], genErrs[index] = o.gen.Generate(ctx, spec, index)
		}(i)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Candidate order is slot order regardless of goroutine completion,
	// so the earliest-index tie-break is stable across runs.
	for i := 0; i < o.candidates; i++ {
		if genErrs[i] != nil {
			outcome.Failures = append(outcome.Failures, GenerationFailure{Index: i, Err: genErrs[i]})
			o.logger.Warn("candidate generation failed",
				"run_id", outcome.RunID, "index", i, "error", genErrs[i])
			continue
		}
		candidate := verify.NewCandidate(i, sources[i], spec.Constraints)
		outcome.Candidates = append(outcome.Candidates, candidate)
	}

	if len(outcome.Candidates) == 0 {
		return nil, fmt.Errorf("all %d generation slots failed", o.candidates)
	}

	outcome.Best = selectBest(outcome.Candidates)
	o.logger.Info("candidate batch scored",
		"run_id", outcome.RunID,
		"function", spec.Signature.Name,
		"candidates", len(outcome.Candidates),
		"best_index", outcome.Best.Index,
		"best_score", outcome.Best.Score)
	return outcome, nil
}

// selectBest picks the maximum score; on ties the earliest index wins.
// Candidates arrive in index order, so a strict greater-than comparison
// is the whole tie-break.
func selectBest(candidates []ir.GeneratedCandidate) *ir.GeneratedCandidate {
	best := 0
	for i := 1; i < len(candidates); i++ {
		if candidates[i].Score > candidates[best].Score {
			best = i
		}
	}
	return &candidates[best]
}
