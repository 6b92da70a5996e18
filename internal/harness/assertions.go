package harness

import "fmt"

// CheckExpectations compares a run result against the scenario's declared
// expectations and returns one error per mismatch. An empty slice means
// the scenario holds.
func CheckExpectations(result *Result) []error {
	var errs []error
	expect := result.Scenario.Expect
	outcome := result.Outcome

	gate := GatePass
	if outcome.Blocked() {
		gate = GateBlock
	}
	if gate != expect.Gate {
		errs = append(errs, fmt.Errorf("gate: expected %s, got %s", expect.Gate, gate))
	}

	if len(expect.Issues) > 0 {
		issues := outcome.Interpretation.Issues
		if len(issues) != len(expect.Issues) {
			errs = append(errs, fmt.Errorf("issues: expected %d, got %d", len(expect.Issues), len(issues)))
		} else {
			for i, kind := range expect.Issues {
				if string(issues[i].Kind) != kind {
					errs = append(errs, fmt.Errorf("issues[%d]: expected kind %s, got %s", i, kind, issues[i].Kind))
				}
			}
		}
	}

	if expect.BestIndex != nil {
		switch {
		case outcome.Best == nil:
			errs = append(errs, fmt.Errorf("best_index: expected %d, but no candidate was selected", *expect.BestIndex))
		case outcome.Best.Index != *expect.BestIndex:
			errs = append(errs, fmt.Errorf("best_index: expected %d, got %d", *expect.BestIndex, outcome.Best.Index))
		}
	}

	if expect.BestScore != "" {
		switch {
		case outcome.Best == nil:
			errs = append(errs, fmt.Errorf("best_score: expected %s, but no candidate was selected", expect.BestScore))
		default:
			if got := fmt.Sprintf("%.3f", outcome.Best.Score); got != expect.BestScore {
				errs = append(errs, fmt.Errorf("best_score: expected %s, got %s", expect.BestScore, got))
			}
		}
	}

	return errs
}
