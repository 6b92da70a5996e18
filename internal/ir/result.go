package ir

// TraceRecord is the per-effect evaluation record of one interpretation.
// StateDelta maps bindings introduced by the effect to their declared types.
type TraceRecord struct {
	Position   int               `json:"position"`
	Reachable  bool              `json:"reachable"`
	StateDelta map[string]string `json:"state_delta,omitempty"`
}

// ExecutionTrace is the ordered sequence of per-effect evaluation records,
// built once per interpretation call and read-only thereafter.
type ExecutionTrace struct {
	Records []TraceRecord `json:"records"`
}

// ReachableAt reports whether the effect at the given position was reachable.
// Positions absent from the trace are reported unreachable. Positions need
// not be dense, so the lookup matches on the record's own Position field.
func (t ExecutionTrace) ReachableAt(position int) bool {
	for _, rec := range t.Records {
		if rec.Position == position {
			return rec.Reachable
		}
	}
	return false
}

// InterpretationResult is the outcome of one interpret call: the merged,
// deduplicated issue list in deterministic order, the execution trace, and
// the derived go/no-go decision for synthesis.
type InterpretationResult struct {
	Issues         []SemanticIssue `json:"issues"`
	Trace          ExecutionTrace  `json:"trace"`
	ShouldGenerate bool            `json:"should_generate"`
}

// Errors returns only the blocking issues.
func (r InterpretationResult) Errors() []SemanticIssue {
	var out []SemanticIssue
	for _, issue := range r.Issues {
		if issue.Blocking() {
			out = append(out, issue)
		}
	}
	return out
}

// ConstraintResult records the verification outcome of one constraint.
type ConstraintResult struct {
	Constraint Constraint `json:"-"`
	Describe   string     `json:"constraint"`
	Passed     bool       `json:"passed"`
	Detail     string     `json:"detail,omitempty"`
}

// ConstraintReport is the per-constraint pass/fail mapping for one
// generated candidate, in constraint declaration order.
type ConstraintReport struct {
	Compiles bool               `json:"compiles"`
	Results  []ConstraintResult `json:"results"`
}

// Passed looks up the result for a constraint. The second return value is
// false when the constraint was not part of the verified set.
func (r ConstraintReport) Passed(c Constraint) (bool, bool) {
	for _, res := range r.Results {
		if res.Constraint == c {
			return res.Passed, true
		}
	}
	return false, false
}

// Satisfied counts passing constraints.
func (r ConstraintReport) Satisfied() int {
	n := 0
	for _, res := range r.Results {
		if res.Passed {
			n++
		}
	}
	return n
}

// GeneratedCandidate is one synthesis attempt: the rendered source, its
// structural-compile flag, the constraint report, and the derived score.
// Index is the candidate's position in its best-of-N batch and is the
// deterministic tie-breaker during selection.
type GeneratedCandidate struct {
	Index      int              `json:"index"`
	SourceText string           `json:"source_text"`
	Compiles   bool             `json:"compiles"`
	Report     ConstraintReport `json:"report"`
	Score      float64          `json:"score"`
}
