package cli

import (
	"fmt"
	"os"

	"synthgate/internal/compiler"
	"synthgate/internal/ir"
	"synthgate/internal/plan"
)

// CLI error codes (E100-E199).
const (
	ErrCodeGeneric  = "E100"
	ErrCodeNotFound = "E101"
	ErrCodeCompile  = "E102"
	ErrCodePlan     = "E103"
	ErrCodeDatabase = "E104"
)

// LoadError represents an error that occurred while loading command input.
type LoadError struct {
	Code    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadSpec compiles a CUE spec file into IRs and resolves the requested
// declaration. An empty function name selects the first declaration.
func LoadSpec(path, function string) (*ir.IntermediateRepresentation, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("spec file not found: %s", path)}
	}

	specs, err := compiler.LoadFunctions(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeCompile, Message: err.Error()}
	}

	if function == "" {
		return specs[0], nil
	}
	for _, spec := range specs {
		if spec.Signature.Name == function {
			return spec, nil
		}
	}
	return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("function %q not declared in %s", function, path)}
}

// LoadPlans reads and validates a plan document per candidate slot.
func LoadPlans(paths []string) ([]*plan.Document, error) {
	plans := make([]*plan.Document, 0, len(paths))
	for i, path := range paths {
		doc, err := plan.Load(path)
		if err != nil {
			return nil, &LoadError{Code: ErrCodePlan, Message: fmt.Sprintf("plans[%d]: %v", i, err)}
		}
		if errs := doc.Validate(); len(errs) > 0 {
			return nil, &LoadError{Code: ErrCodePlan, Message: fmt.Sprintf("plans[%d]: %v", i, errs[0])}
		}
		plans = append(plans, doc)
	}
	return plans, nil
}
