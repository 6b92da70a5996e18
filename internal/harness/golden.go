package harness

import (
	"fmt"

	"synthgate/internal/ir"
)

// Snapshot renders a run result as canonical JSON for golden-file
// comparison. Scores are formatted to three decimals as strings so the
// canonical encoding stays float-free, and the content-addressed revision
// id is left out: the scenario name and source texts already pin it.
func Snapshot(result *Result) ([]byte, error) {
	outcome := result.Outcome

	gate := GatePass
	if outcome.Blocked() {
		gate = GateBlock
	}

	snap := map[string]any{
		"scenario_name": result.Scenario.Name,
		"run_id":        outcome.RunID,
		"gate":          gate,
	}

	if issues := outcome.Interpretation.Issues; len(issues) > 0 {
		rendered := make([]any, 0, len(issues))
		for _, issue := range issues {
			rendered = append(rendered, map[string]any{
				"kind":     string(issue.Kind),
				"severity": string(issue.Severity),
				"location": issue.Location,
				"message":  issue.Message,
			})
		}
		snap["issues"] = rendered
	}

	if candidates := outcome.Candidates; len(candidates) > 0 {
		rendered := make([]any, 0, len(candidates))
		for _, c := range candidates {
			rendered = append(rendered, snapshotCandidate(c))
		}
		snap["candidates"] = rendered
	}

	if outcome.Best != nil {
		snap["best_index"] = outcome.Best.Index
		snap["best_score"] = fmt.Sprintf("%.3f", outcome.Best.Score)
	}

	return ir.MarshalCanonical(snap)
}

func snapshotCandidate(c ir.GeneratedCandidate) map[string]any {
	results := make([]any, 0, len(c.Report.Results))
	for _, res := range c.Report.Results {
		entry := map[string]any{
			"constraint": res.Describe,
			"passed":     res.Passed,
		}
		if res.Detail != "" {
			entry["detail"] = res.Detail
		}
		results = append(results, entry)
	}

	return map[string]any{
		"index":    c.Index,
		"source":   c.SourceText,
		"compiles": c.Compiles,
		"score":    fmt.Sprintf("%.3f", c.Score),
		"results":  results,
	}
}
