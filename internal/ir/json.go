package ir

import "encoding/json"

// irDocument mirrors IntermediateRepresentation with constraints held in
// their tagged envelope form, so the sealed interface survives a JSON
// round-trip.
type irDocument struct {
	Intent         string            `json:"intent"`
	Signature      Signature         `json:"signature"`
	Effects        []Effect          `json:"effects"`
	Assertions     []string          `json:"assertions,omitempty"`
	Constraints    []json.RawMessage `json:"constraints,omitempty"`
	PatternExample string            `json:"pattern_example,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (spec IntermediateRepresentation) MarshalJSON() ([]byte, error) {
	doc := irDocument{
		Intent:         spec.Intent,
		Signature:      spec.Signature,
		Effects:        spec.Effects,
		Assertions:     spec.Assertions,
		PatternExample: spec.PatternExample,
	}
	for _, c := range spec.Constraints {
		raw, err := MarshalConstraint(c)
		if err != nil {
			return nil, err
		}
		doc.Constraints = append(doc.Constraints, raw)
	}
	return json.Marshal(doc)
}

// UnmarshalJSON implements json.Unmarshaler.
func (spec *IntermediateRepresentation) UnmarshalJSON(data []byte) error {
	var doc irDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	out := IntermediateRepresentation{
		Intent:         doc.Intent,
		Signature:      doc.Signature,
		Effects:        doc.Effects,
		Assertions:     doc.Assertions,
		PatternExample: doc.PatternExample,
	}
	for _, raw := range doc.Constraints {
		c, err := UnmarshalConstraint(raw)
		if err != nil {
			return err
		}
		out.Constraints = append(out.Constraints, c)
	}
	*spec = out
	return nil
}
