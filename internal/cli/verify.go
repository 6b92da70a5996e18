package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"synthgate/internal/ir"
	"synthgate/internal/verify"
)

// VerifyResult holds the verification outcome for one source file.
type VerifyResult struct {
	Compiles bool                  `json:"compiles"`
	Score    float64               `json:"score"`
	Results  []ir.ConstraintResult `json:"results"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	var function string

	cmd := &cobra.Command{
		Use:   "verify <spec.cue> <source-file>",
		Short: "Verify source text against a spec's constraints",
		Long: `Verify rendered source text against the constraints a spec declares.

Each constraint is checked independently against the source; the score
is the satisfied fraction, or 0 when the source fails the structural
compile scan. The command exits 1 when any constraint fails.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(rootOpts, args[0], args[1], function, cmd)
		},
	}

	cmd.Flags().StringVar(&function, "function", "", "function declaration to verify against (default: first in file)")

	return cmd
}

func runVerify(opts *RootOptions, specPath, sourcePath, function string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	spec, err := LoadSpec(specPath, function)
	if err != nil {
		_ = formatter.Error(loadErrorCode(err), err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load spec", err)
	}

	source, err := os.ReadFile(sourcePath)
	if err != nil {
		_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read source file", err)
	}

	formatter.VerboseLog("verifying %q against %d constraint(s)", spec.Signature.Name, len(spec.Constraints))

	candidate := verify.NewCandidate(0, string(source), spec.Constraints)
	result := VerifyResult{
		Compiles: candidate.Compiles,
		Score:    candidate.Score,
		Results:  candidate.Report.Results,
	}

	failed := 0
	for _, r := range result.Results {
		if !r.Passed {
			failed++
		}
	}

	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		for _, r := range result.Results {
			mark := "✓"
			if !r.Passed {
				mark = "✗"
			}
			if r.Detail != "" {
				fmt.Fprintf(formatter.Writer, "%s %s (%s)\n", mark, r.Describe, r.Detail)
			} else {
				fmt.Fprintf(formatter.Writer, "%s %s\n", mark, r.Describe)
			}
		}
		fmt.Fprintf(formatter.Writer, "score: %.3f\n", result.Score)
	}

	if !result.Compiles || failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d constraint(s) failed", failed))
	}
	return nil
}

// loadErrorCode extracts the code from a LoadError, defaulting to the
// generic code.
func loadErrorCode(err error) string {
	if loadErr, ok := err.(*LoadError); ok {
		return loadErr.Code
	}
	return ErrCodeGeneric
}
