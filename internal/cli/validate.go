package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"synthgate/internal/compiler"
	"synthgate/internal/ir"
	"synthgate/internal/semantics"
)

// ValidationResult holds validation results for one spec file.
type ValidationResult struct {
	Valid  bool                       `json:"valid"`
	Errors []compiler.ValidationError `json:"errors,omitempty"`
	Issues []ir.SemanticIssue         `json:"issues,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <spec.cue>",
		Short: "Validate function specs without generating code",
		Long: `Validate CUE function specs without generating candidates.

Runs schema validation over every declaration in the file, then the
semantic analyzers (effect chain, return completeness, logic errors)
over each structurally valid declaration. Warnings are reported but do
not fail the command; any ERROR does.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, specPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if _, err := os.Stat(specPath); os.IsNotExist(err) {
		msg := fmt.Sprintf("spec file not found: %s", specPath)
		_ = formatter.Error(ErrCodeNotFound, msg, nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", ErrCodeNotFound, msg))
	}

	specs, err := compiler.LoadFunctions(specPath)
	if err != nil {
		// A spec that fails to compile is a validation failure of the
		// input, not a command error.
		result := ValidationResult{
			Valid: false,
			Errors: []compiler.ValidationError{{
				Field:   "cue",
				Message: err.Error(),
				Code:    ErrCodeCompile,
			}},
		}
		return outputValidationFailure(formatter, result)
	}

	result := ValidationResult{Valid: true}
	for _, spec := range specs {
		formatter.VerboseLog("validating function: %s", spec.Signature.Name)

		errs := compiler.Validate(spec)
		if len(errs) > 0 {
			result.Errors = append(result.Errors, errs...)
			continue
		}

		// Semantic analysis only runs over structurally valid IRs.
		interp := semantics.Interpret(spec)
		result.Issues = append(result.Issues, interp.Issues...)
	}

	for _, issue := range result.Issues {
		if issue.Blocking() {
			result.Valid = false
			break
		}
	}
	if len(result.Errors) > 0 {
		result.Valid = false
	}

	if !result.Valid {
		return outputValidationFailure(formatter, result)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	for _, issue := range result.Issues {
		fmt.Fprintln(formatter.Writer, issue.String())
	}
	fmt.Fprintln(formatter.Writer, "✓ All declarations valid")
	return nil
}

// outputValidationFailure renders the failed result and maps it to exit
// code 1.
func outputValidationFailure(formatter *OutputFormatter, result ValidationResult) error {
	failures := len(result.Errors)
	for _, issue := range result.Issues {
		if issue.Blocking() {
			failures++
		}
	}

	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   result,
		}
		if len(result.Errors) > 0 {
			response.Error = &CLIError{
				Code:    result.Errors[0].Code,
				Message: result.Errors[0].Message,
			}
		}
		enc := json.NewEncoder(formatter.Writer)
		enc.SetIndent("", "  ")
		if err := enc.Encode(response); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", failures))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, e := range result.Errors {
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n", e.Code, e.Field, e.Message)
	}
	for _, issue := range result.Issues {
		fmt.Fprintf(formatter.Writer, "  %s\n", issue.String())
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", failures))
}
