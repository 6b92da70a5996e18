package ir

import "fmt"

// Severity classifies a SemanticIssue as blocking or advisory.
type Severity string

const (
	// SeverityError marks a blocking defect; synthesis must not proceed.
	SeverityError Severity = "ERROR"

	// SeverityWarning marks an advisory finding; synthesis proceeds but
	// the issue is still surfaced for diagnostics.
	SeverityWarning Severity = "WARNING"
)

// IssueKind identifies the category of a semantic finding.
type IssueKind string

const (
	// IssueMissingReturn: non-void signature with no return effect.
	IssueMissingReturn IssueKind = "MissingReturn"

	// IssueMissingBranch: returns exist only on some conditional paths.
	IssueMissingBranch IssueKind = "MissingBranch"

	// IssueLoopBehaviorMismatch: effect chain's loop shape contradicts a
	// declared LoopBehaviorConstraint.
	IssueLoopBehaviorMismatch IssueKind = "LoopBehaviorMismatch"

	// IssueTypeMismatch: a declared produced type is incompatible with how
	// a later effect (or the signature) consumes it.
	IssueTypeMismatch IssueKind = "TypeMismatch"

	// IssueUnreachableCode: an effect follows an unconditional return.
	IssueUnreachableCode IssueKind = "UnreachableCode"

	// IssueVariableShadowing: a binding hides a parameter or an enclosing
	// binding.
	IssueVariableShadowing IssueKind = "VariableShadowing"

	// IssueDanglingReference: an effect reads a variable no earlier effect
	// or parameter introduced.
	IssueDanglingReference IssueKind = "DanglingReference"

	// IssueVoidValueReturn: a void function returns a value.
	IssueVoidValueReturn IssueKind = "VoidValueReturn"

	// IssueDeadConstraint: the effect a constraint depends on is
	// unreachable, so the constraint can never be preserved.
	IssueDeadConstraint IssueKind = "DeadConstraint"
)

// NoLocation is the Location of an issue not tied to a specific effect.
const NoLocation = -1

// SemanticIssue is one finding produced by an analyzer. Issues are value
// objects; two issues with the same kind and location are duplicates and
// the interpreter keeps only the highest severity seen.
type SemanticIssue struct {
	Kind     IssueKind `json:"kind"`
	Severity Severity  `json:"severity"`
	Location int       `json:"location"` // effect position, or NoLocation
	Message  string    `json:"message"`
}

// String renders the issue for logs and CLI text output.
func (i SemanticIssue) String() string {
	if i.Location == NoLocation {
		return fmt.Sprintf("%s [%s]: %s", i.Severity, i.Kind, i.Message)
	}
	return fmt.Sprintf("%s [%s] effect %d: %s", i.Severity, i.Kind, i.Location, i.Message)
}

// Blocking reports whether the issue prevents synthesis.
func (i SemanticIssue) Blocking() bool {
	return i.Severity == SeverityError
}

// Errf constructs an ERROR issue at the given effect position.
func Errf(kind IssueKind, location int, format string, args ...any) SemanticIssue {
	return SemanticIssue{
		Kind:     kind,
		Severity: SeverityError,
		Location: location,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Warnf constructs a WARNING issue at the given effect position.
func Warnf(kind IssueKind, location int, format string, args ...any) SemanticIssue {
	return SemanticIssue{
		Kind:     kind,
		Severity: SeverityWarning,
		Location: location,
		Message:  fmt.Sprintf(format, args...),
	}
}
