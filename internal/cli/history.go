package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"synthgate/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Revision string
	Limit    int
}

// HistoryEntry is the JSON view of one recorded run.
type HistoryEntry struct {
	RunID      string  `json:"run_id"`
	RevisionID string  `json:"revision_id"`
	GatePassed bool    `json:"gate_passed"`
	BestIndex  int     `json:"best_index"`
	BestScore  float64 `json:"best_score"`
	Candidates int     `json:"candidates"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs, newest first",
		Long: `List recorded best-of-N runs from the database, newest first.

With --revision, only runs against that revision are shown. The logical
sequence order of the database decides recency; timestamps are never
consulted.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Revision, "revision", "", "filter runs by revision id")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum entries to show (0 = all)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if _, err := os.Stat(opts.Database); os.IsNotExist(err) {
		msg := fmt.Sprintf("database not found: %s", opts.Database)
		_ = formatter.Error(ErrCodeNotFound, msg, nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", ErrCodeNotFound, msg))
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() { _ = st.Close() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	entries, err := st.History(ctx, opts.Revision, opts.Limit)
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read history", err)
	}

	out := make([]HistoryEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, HistoryEntry{
			RunID:      e.RunID,
			RevisionID: e.RevisionID,
			GatePassed: e.GatePassed,
			BestIndex:  e.BestIndex,
			BestScore:  e.BestScore,
			Candidates: e.Candidates,
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(out)
	}

	if len(out) == 0 {
		fmt.Fprintln(formatter.Writer, "no runs recorded")
		return nil
	}
	for _, e := range out {
		gate := "pass"
		if !e.GatePassed {
			gate = "block"
		}
		if e.BestIndex >= 0 {
			fmt.Fprintf(formatter.Writer, "%s  revision=%.12s  gate=%s  candidates=%d  best=%d (%.3f)\n",
				e.RunID, e.RevisionID, gate, e.Candidates, e.BestIndex, e.BestScore)
		} else {
			fmt.Fprintf(formatter.Writer, "%s  revision=%.12s  gate=%s  candidates=%d  best=none\n",
				e.RunID, e.RevisionID, gate, e.Candidates)
		}
	}
	return nil
}
