package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"synthgate/internal/bestof"
	"synthgate/internal/compiler"
	"synthgate/internal/ir"
	"synthgate/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Function string
	Plans    []string
	Database string

	// TokenGenerator allows overriding the run token generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	TokenGenerator bestof.RunTokenGenerator
}

// CandidateSummary is the per-slot view in run output.
type CandidateSummary struct {
	Index    int     `json:"index"`
	Compiles bool    `json:"compiles"`
	Score    float64 `json:"score"`
}

// RunResult holds the outcome of one best-of-N run.
type RunResult struct {
	RunID      string             `json:"run_id"`
	RevisionID string             `json:"revision_id"`
	GatePassed bool               `json:"gate_passed"`
	Issues     []ir.SemanticIssue `json:"issues,omitempty"`
	Candidates []CandidateSummary `json:"candidates,omitempty"`
	BestIndex  int                `json:"best_index"` // -1 when nothing was selected
	BestScore  float64            `json:"best_score"`
	BestSource string             `json:"best_source,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <spec.cue>",
		Short: "Run the full gate, assemble, verify, select pipeline",
		Long: `Run the full synthesis pipeline for one function spec.

The spec is compiled and semantically validated; when the gate passes,
each --plan document is assembled into a candidate, every candidate is
verified against the declared constraints, and the highest-scoring
candidate wins (earliest slot on ties). With --db, the revision, the
run, and every candidate are persisted content-addressed.

Example:
  synthgate run specs/index_of.cue --plan plans/a.yaml --plan plans/b.yaml
  synthgate run specs/index_of.cue --plan plans/a.yaml --db runs.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Function, "function", "", "function declaration to run (default: first in file)")
	cmd.Flags().StringArrayVar(&opts.Plans, "plan", nil, "structural plan document, one per candidate slot (required)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database for run persistence")
	_ = cmd.MarkFlagRequired("plan")

	return cmd
}

func runPipeline(opts *RunOptions, specPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	logLevel := slog.LevelWarn
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	}))

	spec, err := LoadSpec(specPath, opts.Function)
	if err != nil {
		_ = formatter.Error(loadErrorCode(err), err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load spec", err)
	}

	if errs := compiler.Validate(spec); len(errs) > 0 {
		_ = formatter.Error(errs[0].Code, errs[0].Error(), errs)
		return NewExitError(ExitFailure, fmt.Sprintf("spec validation failed with %d error(s)", len(errs)))
	}

	plans, err := LoadPlans(opts.Plans)
	if err != nil {
		_ = formatter.Error(loadErrorCode(err), err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load plans", err)
	}

	tokens := opts.TokenGenerator
	if tokens == nil {
		tokens = bestof.UUIDv7Generator{}
	}

	orch := bestof.New(bestof.NewPlanGenerator(plans...),
		bestof.WithCandidates(len(plans)),
		bestof.WithTokenGenerator(tokens),
		bestof.WithLogger(logger),
	)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	outcome, err := orch.Run(ctx, spec)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitFailure, "run failed", err)
	}

	revisionID, err := ir.RevisionID(spec)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to compute revision id", err)
	}

	if opts.Database != "" {
		if err := persistRun(ctx, opts.Database, spec, revisionID, outcome, logger); err != nil {
			_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to persist run", err)
		}
	}

	result := buildRunResult(revisionID, outcome)
	return outputRunResult(formatter, result)
}

// persistRun records the revision, the run, and all candidates in one
// transaction, claiming the run token so a replayed token is a no-op.
func persistRun(ctx context.Context, dbPath string, spec *ir.IntermediateRepresentation, revisionID string, outcome *bestof.Outcome, logger *slog.Logger) error {
	st, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	if _, _, err := st.WriteRevision(ctx, spec); err != nil {
		return err
	}

	run := store.Run{
		ID:         outcome.RunID,
		RevisionID: revisionID,
		GatePassed: !outcome.Blocked(),
		BestIndex:  -1,
	}
	if outcome.Best != nil {
		run.BestIndex = outcome.Best.Index
	}

	inserted, err := st.WriteRunAtomic(ctx, run, outcome.Candidates)
	if err != nil {
		return err
	}
	if !inserted {
		logger.Warn("run token already recorded, skipping persistence", "run_id", outcome.RunID)
	}
	return nil
}

func buildRunResult(revisionID string, outcome *bestof.Outcome) RunResult {
	result := RunResult{
		RunID:      outcome.RunID,
		RevisionID: revisionID,
		GatePassed: !outcome.Blocked(),
		Issues:     outcome.Interpretation.Issues,
		BestIndex:  -1,
	}

	for _, c := range outcome.Candidates {
		result.Candidates = append(result.Candidates, CandidateSummary{
			Index:    c.Index,
			Compiles: c.Compiles,
			Score:    c.Score,
		})
	}

	if outcome.Best != nil {
		result.BestIndex = outcome.Best.Index
		result.BestScore = outcome.Best.Score
		result.BestSource = outcome.Best.SourceText
	}

	return result
}

func outputRunResult(formatter *OutputFormatter, result RunResult) error {
	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		if !result.GatePassed {
			fmt.Fprintln(formatter.Writer, "✗ Gate blocked")
			for _, issue := range result.Issues {
				fmt.Fprintf(formatter.Writer, "  %s\n", issue.String())
			}
		} else {
			for _, c := range result.Candidates {
				fmt.Fprintf(formatter.Writer, "candidate %d: score %.3f\n", c.Index, c.Score)
			}
			fmt.Fprintf(formatter.Writer, "best: candidate %d (score %.3f)\n", result.BestIndex, result.BestScore)
			fmt.Fprint(formatter.Writer, result.BestSource)
		}
	}

	if !result.GatePassed {
		return NewExitError(ExitFailure, "semantic gate blocked the run")
	}
	return nil
}
