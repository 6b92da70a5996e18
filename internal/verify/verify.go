// Package verify implements the constraint verifier: a best-effort static
// check of each declared constraint against rendered source text, plus the
// candidate scoring that feeds best-of-N selection.
//
// Verification is pattern matching over the text, not execution or full
// parsing. No check may fail loudly: unparseable source degrades to a
// report with Compiles=false and every constraint failing, never a panic
// or an error return.
package verify

import (
	"regexp"
	"strings"

	"synthgate/internal/ir"
)

// Verify evaluates each declared constraint against the rendered source,
// producing the per-constraint pass/fail report used for scoring and
// diagnostics. Each check is independent of the others.
func Verify(source string, constraints []ir.Constraint) ir.ConstraintReport {
	report := ir.ConstraintReport{
		Compiles: scanCompiles(source),
		Results:  make([]ir.ConstraintResult, 0, len(constraints)),
	}

	for _, c := range constraints {
		result := ir.ConstraintResult{
			Constraint: c,
			Describe:   c.Describe(),
		}
		if !report.Compiles {
			result.Detail = "source failed the structural compile scan"
		} else {
			result.Passed, result.Detail = check(source, c)
		}
		report.Results = append(report.Results, result)
	}

	return report
}

func check(source string, c ir.Constraint) (bool, string) {
	switch v := c.(type) {
	case ir.ReturnConstraint:
		return checkReturn(source, v)
	case ir.LoopBehaviorConstraint:
		return checkLoopBehavior(source, v)
	case ir.PositionConstraint:
		return checkPosition(source, v)
	case ir.TypeConstraint:
		// Declared result types are not statically refutable from text;
		// the IR-side validator is the authority for type agreement.
		return true, "result type not statically refutable from source"
	default:
		return false, "unknown constraint variant"
	}
}

var returnStmt = regexp.MustCompile(`(^|[^\w])return([^\w]|$)`)

func checkReturn(source string, c ir.ReturnConstraint) (bool, string) {
	found := returnStmt.MatchString(source)
	if c.MustReturn {
		if found {
			return true, ""
		}
		return false, "no return statement found"
	}
	if found {
		return false, "return statement present but forbidden"
	}
	return true, ""
}

// checkLoopBehavior classifies the textual position of returns relative to
// the first loop's body:
//   - FIRST_MATCH with early return: a return inside the loop body, and
//     the function's final return (the fallback) not trapped inside it
//   - every other pattern: full iteration, so no return inside the body
//     and the aggregation return after the loop
func checkLoopBehavior(source string, c ir.LoopBehaviorConstraint) (bool, string) {
	shape, ok := scanLoopShape(source)
	if !ok {
		return false, "no loop found in source"
	}

	if c.Pattern == ir.FirstMatch && c.EarlyReturn {
		if !shape.inLoopReturn {
			return false, "expected an early return inside the loop body"
		}
		if shape.lastReturnInLoop && shape.returnCount > 1 {
			return false, "fallback return sits inside the loop body; the loop can never complete"
		}
		return true, ""
	}

	if shape.inLoopReturn {
		return false, "return inside the loop body exits before full iteration"
	}
	if !shape.postLoopReturn {
		return false, "expected the aggregation return after the loop"
	}
	return true, ""
}

// loopShape is the textual classification of the first loop in a source.
type loopShape struct {
	inLoopReturn     bool
	postLoopReturn   bool
	lastReturnInLoop bool
	returnCount      int
}

var loopHeader = regexp.MustCompile(`^\s*(for|while)\b`)

// scanLoopShape locates the first loop header and classifies each return
// statement as inside the loop body (more indented, before the body ends)
// or after it. Returns ok=false when the source has no loop.
func scanLoopShape(source string) (loopShape, bool) {
	lines := strings.Split(source, "\n")

	loopLine := -1
	for i, line := range lines {
		if loopHeader.MatchString(line) {
			loopLine = i
			break
		}
	}
	if loopLine == -1 {
		return loopShape{}, false
	}

	loopIndent := indentWidth(lines[loopLine])
	bodyEnd := len(lines)
	for i := loopLine + 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "" {
			continue
		}
		if indentWidth(lines[i]) <= loopIndent {
			bodyEnd = i
			break
		}
	}

	var shape loopShape
	for i, line := range lines {
		if !returnStmt.MatchString(line) {
			continue
		}
		shape.returnCount++
		inLoop := i > loopLine && i < bodyEnd
		if inLoop {
			shape.inLoopReturn = true
		} else if i >= bodyEnd {
			shape.postLoopReturn = true
		}
		shape.lastReturnInLoop = inLoop
	}

	return shape, true
}

// indentWidth measures leading whitespace, counting a tab as four columns.
func indentWidth(line string) int {
	width := 0
	for _, r := range line {
		switch r {
		case ' ':
			width++
		case '\t':
			width += 4
		default:
			return width
		}
	}
	return width
}

// checkPosition tests the subjects' adjacency over the non-blank lines of
// the source. Two subjects on the same or consecutive non-blank lines are
// adjacent; matching is a case-insensitive substring scan.
func checkPosition(source string, c ir.PositionConstraint) (bool, string) {
	var lines []string
	for _, line := range strings.Split(source, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, strings.ToLower(line))
		}
	}

	lineOf := func(subject string) int {
		needle := strings.ToLower(subject)
		for i, line := range lines {
			if strings.Contains(line, needle) {
				return i
			}
		}
		return -1
	}

	a := lineOf(c.SubjectA)
	b := lineOf(c.SubjectB)
	if a == -1 || b == -1 {
		return false, "subject not found in source"
	}

	distance := a - b
	if distance < 0 {
		distance = -distance
	}
	adjacent := distance <= 1

	if c.Relation == ir.Adjacent && !adjacent {
		return false, "subjects are separated"
	}
	if c.Relation == ir.NotAdjacent && adjacent {
		return false, "subjects are adjacent"
	}
	return true, ""
}

// scanCompiles is the best-effort structural scan behind the Compiles
// flag: bracket balance outside string literals and no unterminated
// single-line string. It never rejects for anything subtler - this is not
// a parser, and a false positive only costs a wasted verification pass.
func scanCompiles(source string) bool {
	if strings.TrimSpace(source) == "" {
		return false
	}

	var stack []rune
	pairs := map[rune]rune{')': '(', ']': '[', '}': '{'}

	for _, line := range strings.Split(source, "\n") {
		var quote rune
		escaped := false
	scan:
		for _, r := range line {
			if escaped {
				escaped = false
				continue
			}
			if quote != 0 {
				switch r {
				case '\\':
					escaped = true
				case quote:
					quote = 0
				}
				continue
			}
			switch r {
			case '"', '\'':
				quote = r
			case '#':
				break scan // comment to end of line
			case '(', '[', '{':
				stack = append(stack, r)
			case ')', ']', '}':
				if len(stack) == 0 || stack[len(stack)-1] != pairs[r] {
					return false
				}
				stack = stack[:len(stack)-1]
			}
		}
		if quote != 0 {
			return false
		}
	}

	return len(stack) == 0
}
