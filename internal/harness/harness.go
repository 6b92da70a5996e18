package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"synthgate/internal/bestof"
	"synthgate/internal/compiler"
	"synthgate/internal/ir"
	"synthgate/internal/plan"
)

// Result captures everything a scenario run produced, for assertion and
// golden snapshotting.
type Result struct {
	Scenario *Scenario
	Spec     *ir.IntermediateRepresentation
	Outcome  *bestof.Outcome
}

// Run executes a scenario end to end: compile the spec, run the structural
// checks, load the plan documents, and drive the orchestrator with a fixed
// run token so snapshots stay byte-stable.
//
// A blocked gate is a valid result, not an error. Errors mean the scenario
// itself is broken: unreadable files, a spec that fails structural
// validation, or a function name that doesn't resolve.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	spec, err := loadSpec(scenario)
	if err != nil {
		return nil, err
	}

	// Scenarios exercise the semantic layer; structural defects belong in
	// compiler tests, so reject them up front.
	if errs := compiler.Validate(spec); len(errs) > 0 {
		return nil, fmt.Errorf("scenario %q: spec failed structural validation: %s", scenario.Name, errs[0].Error())
	}

	plans := make([]*plan.Document, 0, len(scenario.Plans))
	for i, path := range scenario.Plans {
		doc, err := plan.Load(path)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: plans[%d]: %w", scenario.Name, i, err)
		}
		plans = append(plans, doc)
	}

	gen := bestof.NewPlanGenerator(plans...)
	width := gen.Width()
	if width == 0 {
		// Blocked scenarios carry no plans; the gate stops the run before
		// any slot is served, but the orchestrator still wants a width.
		width = 1
	}

	orch := bestof.New(gen,
		bestof.WithCandidates(width),
		bestof.WithTokenGenerator(bestof.NewFixedGenerator("run-"+scenario.Name)),
		bestof.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	outcome, err := orch.Run(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
	}

	return &Result{Scenario: scenario, Spec: spec, Outcome: outcome}, nil
}

// loadSpec compiles the scenario's CUE file and resolves the declaration
// the scenario names, or the first one when it names none.
func loadSpec(scenario *Scenario) (*ir.IntermediateRepresentation, error) {
	specs, err := compiler.LoadFunctions(scenario.Spec)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
	}

	if scenario.Function == "" {
		return specs[0], nil
	}
	for _, spec := range specs {
		if spec.Signature.Name == scenario.Function {
			return spec, nil
		}
	}
	return nil, fmt.Errorf("scenario %q: function %q not declared in %s", scenario.Name, scenario.Function, scenario.Spec)
}
