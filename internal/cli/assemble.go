package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"synthgate/internal/assemble"
	"synthgate/internal/plan"
)

// AssembleResult holds the output of the assemble command.
type AssembleResult struct {
	Source string `json:"source"`
	Nodes  int    `json:"nodes"`
}

// NewAssembleCommand creates the assemble command.
func NewAssembleCommand(rootOpts *RootOptions) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "assemble <plan.yaml>",
		Short: "Assemble source text from a structural plan",
		Long: `Assemble deterministic source text from a structural plan document.

The plan carries the node tree and a fragment per node; assembly indents
each fragment by its node depth and concatenates in tree order. The same
plan always renders the same bytes.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAssemble(rootOpts, args[0], outPath, cmd)
		},
	}

	cmd.Flags().StringVarP(&outPath, "output", "o", "", "write assembled source to file instead of stdout")

	return cmd
}

func runAssemble(opts *RootOptions, planPath, outPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	doc, err := plan.Load(planPath)
	if err != nil {
		_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load plan", err)
	}

	if errs := doc.Validate(); len(errs) > 0 {
		_ = formatter.Error(errs[0].Code, errs[0].Error(), errs)
		return NewExitError(ExitFailure, fmt.Sprintf("plan validation failed with %d error(s)", len(errs)))
	}

	formatter.VerboseLog("assembling %d node(s)", len(doc.Nodes))

	nodes, fragments := doc.Tree()
	source, err := assemble.Assemble(nodes, fragments)
	if err != nil {
		// Validate guards the assembly contract, so a contract error here
		// points at a plan/engine disagreement worth surfacing loudly.
		var contractErr *assemble.ContractError
		code := ErrCodePlan
		if !errors.As(err, &contractErr) {
			code = ErrCodeGeneric
		}
		_ = formatter.Error(code, err.Error(), nil)
		return WrapExitError(ExitFailure, "assembly failed", err)
	}

	if outPath != "" {
		if err := os.WriteFile(outPath, []byte(source), 0o644); err != nil {
			_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to write output", err)
		}
		formatter.VerboseLog("wrote %d byte(s) to %s", len(source), outPath)
		if formatter.Format == "json" {
			return formatter.Success(AssembleResult{Source: source, Nodes: len(doc.Nodes)})
		}
		return nil
	}

	if formatter.Format == "json" {
		return formatter.Success(AssembleResult{Source: source, Nodes: len(doc.Nodes)})
	}

	fmt.Fprint(formatter.Writer, source)
	return nil
}
