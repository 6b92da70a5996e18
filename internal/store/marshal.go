package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"synthgate/internal/ir"
)

// marshalSpec converts an IR document to JSON TEXT for storage.
// Constraints serialize through their tagged envelope form, so the
// stored document round-trips the sealed interface.
func marshalSpec(spec *ir.IntermediateRepresentation) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(spec); err != nil {
		return "", fmt.Errorf("marshal spec: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// unmarshalSpec parses a stored IR document.
func unmarshalSpec(data string) (*ir.IntermediateRepresentation, error) {
	var spec ir.IntermediateRepresentation
	if err := json.Unmarshal([]byte(data), &spec); err != nil {
		return nil, fmt.Errorf("unmarshal spec: %w", err)
	}
	return &spec, nil
}

// marshalReport converts a constraint report to JSON TEXT for storage.
// The parsed Constraint values are deliberately dropped (json:"-"); the
// Describe strings carry what history display needs.
func marshalReport(report ir.ConstraintReport) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(report); err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// unmarshalReport parses a stored constraint report.
func unmarshalReport(data string) (ir.ConstraintReport, error) {
	var report ir.ConstraintReport
	if err := json.Unmarshal([]byte(data), &report); err != nil {
		return report, fmt.Errorf("unmarshal report: %w", err)
	}
	return report, nil
}
