package compiler

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"synthgate/internal/ir"
)

// LoadFunctions compiles every function declaration in a .cue spec file.
// Declarations live under the top-level "function" struct, one field per
// function. Results follow declaration order.
//
// Loading performs CUE evaluation and IR construction only; callers run
// Validate over each returned spec for schema checking.
func LoadFunctions(path string) ([]*ir.IntermediateRepresentation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spec file: %w", err)
	}

	ctx := cuecontext.New()
	v := ctx.CompileString(string(data), cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	fnVal := v.LookupPath(cue.ParsePath("function"))
	if !fnVal.Exists() {
		return nil, &CompileError{
			Field:   "function",
			Message: fmt.Sprintf("no function declarations found in %s", path),
			Pos:     v.Pos(),
		}
	}

	iter, err := fnVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var specs []*ir.IntermediateRepresentation
	for iter.Next() {
		spec, err := CompileFunction(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("function %q: %w", iter.Label(), err)
		}
		specs = append(specs, spec)
	}
	if len(specs) == 0 {
		return nil, &CompileError{
			Field:   "function",
			Message: "function struct declares no functions",
			Pos:     fnVal.Pos(),
		}
	}

	return specs, nil
}
