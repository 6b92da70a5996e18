package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"synthgate/internal/ir"
)

// RevisionInfo is one row of the revision listing.
type RevisionInfo struct {
	ID   string
	Name string
}

// HistoryEntry summarizes one recorded run for history display.
type HistoryEntry struct {
	RunID      string
	RevisionID string
	GatePassed bool
	BestIndex  int
	BestScore  float64 // 0 when no candidate was selected
	Candidates int
}

// ReadRevision returns the stored IR for a revision ID.
// Returns ErrNotFound if the revision does not exist.
func (s *Store) ReadRevision(ctx context.Context, id string) (*ir.IntermediateRepresentation, error) {
	var specJSON string
	err := s.db.QueryRowContext(ctx, `
		SELECT spec FROM revisions WHERE id = ?
	`, id).Scan(&specJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("revision %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read revision: %w", err)
	}

	return unmarshalSpec(specJSON)
}

// ListRevisions returns all stored revisions in insertion order.
// Returns an empty slice (not nil) when the store is empty.
func (s *Store) ListRevisions(ctx context.Context) ([]RevisionInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name FROM revisions ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	defer rows.Close()

	revisions := []RevisionInfo{}
	for rows.Next() {
		var info RevisionInfo
		if err := rows.Scan(&info.ID, &info.Name); err != nil {
			return nil, fmt.Errorf("scan revision: %w", err)
		}
		revisions = append(revisions, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate revisions: %w", err)
	}

	return revisions, nil
}

// ReadRunCandidates returns a run's candidates in slot order.
// Returns an empty slice (not nil) if the run recorded no candidates.
func (s *Store) ReadRunCandidates(ctx context.Context, runID string) ([]ir.GeneratedCandidate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT idx, source, compiles, score, report
		FROM candidates
		WHERE run_id = ?
		ORDER BY idx ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	candidates := []ir.GeneratedCandidate{}
	for rows.Next() {
		var (
			c          ir.GeneratedCandidate
			reportJSON string
		)
		if err := rows.Scan(&c.Index, &c.SourceText, &c.Compiles, &c.Score, &reportJSON); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		c.Report, err = unmarshalReport(reportJSON)
		if err != nil {
			return nil, fmt.Errorf("candidate %d: %w", c.Index, err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}

	return candidates, nil
}

// History returns the most recent runs, newest first, each with its
// candidate count and the winning score. An empty revisionID matches
// every revision. Limit <= 0 means no limit.
func (s *Store) History(ctx context.Context, revisionID string, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = -1 // SQLite: negative LIMIT disables the cap
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT
			r.id,
			r.revision_id,
			r.gate_passed,
			r.best_index,
			COALESCE(best.score, 0),
			COUNT(c.seq)
		FROM runs r
		LEFT JOIN candidates c ON c.run_id = r.id
		LEFT JOIN candidates best ON best.run_id = r.id AND best.idx = r.best_index
		WHERE ?1 = '' OR r.revision_id = ?1
		GROUP BY r.seq
		ORDER BY r.seq DESC
		LIMIT ?2
	`, revisionID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	entries := []HistoryEntry{}
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.RunID, &e.RevisionID, &e.GatePassed, &e.BestIndex, &e.BestScore, &e.Candidates); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}

	return entries, nil
}

// RunState reports the completeness of one recorded run for recovery
// analysis: a gate-passing run whose candidate batch is missing indicates
// a crash between the run and candidate writes under the non-atomic path.
type RunState struct {
	Run        Run
	Candidates int
	IsComplete bool
}

// GetRunState retrieves a run and analyzes its completeness.
// Returns ErrNotFound if the run does not exist.
func (s *Store) GetRunState(ctx context.Context, runID string) (RunState, error) {
	var state RunState
	err := s.db.QueryRowContext(ctx, `
		SELECT id, revision_id, gate_passed, best_index
		FROM runs WHERE id = ?
	`, runID).Scan(&state.Run.ID, &state.Run.RevisionID, &state.Run.GatePassed, &state.Run.BestIndex)
	if errors.Is(err, sql.ErrNoRows) {
		return state, fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	if err != nil {
		return state, fmt.Errorf("get run state: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM candidates WHERE run_id = ?
	`, runID).Scan(&state.Candidates)
	if err != nil {
		return state, fmt.Errorf("get run state: count candidates: %w", err)
	}

	// A blocked run legitimately has no candidates; a passing run without
	// them lost its batch.
	state.IsComplete = !state.Run.GatePassed || state.Candidates > 0
	return state, nil
}
