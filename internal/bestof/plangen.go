package bestof

import (
	"context"
	"fmt"

	"synthgate/internal/assemble"
	"synthgate/internal/ir"
	"synthgate/internal/plan"
)

// PlanGenerator serves pre-built structural plan documents, one per
// candidate slot. It backs the CLI's offline run mode and tests, where
// the upstream structural generator is not in the loop.
type PlanGenerator struct {
	plans []*plan.Document
}

// NewPlanGenerator creates a generator over the given documents. Slot i
// assembles plans[i], so the natural batch width is Width.
func NewPlanGenerator(plans ...*plan.Document) *PlanGenerator {
	return &PlanGenerator{plans: plans}
}

// Width returns the number of slots the generator can serve.
func (g *PlanGenerator) Width() int {
	return len(g.plans)
}

// Generate validates and assembles the plan for the given slot.
func (g *PlanGenerator) Generate(ctx context.Context, spec *ir.IntermediateRepresentation, index int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if index < 0 || index >= len(g.plans) {
		return "", fmt.Errorf("no plan document for candidate slot %d", index)
	}

	doc := g.plans[index]
	if errs := doc.Validate(); len(errs) > 0 {
		return "", fmt.Errorf("plan for slot %d: %w", index, errs[0])
	}

	nodes, fragments := doc.Tree()
	return assemble.Assemble(nodes, fragments)
}
