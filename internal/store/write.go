package store

import (
	"context"
	"fmt"

	"synthgate/internal/ir"
)

// Run is one recorded best-of-N batch against a revision.
// BestIndex is -1 when no candidate was selected (blocked gate or every
// generation slot failed).
type Run struct {
	ID         string
	RevisionID string
	GatePassed bool
	BestIndex  int
}

// WriteRevision inserts an IR revision, content-addressed by its
// canonical hash. Returns the revision ID and whether a new row was
// inserted; writing an identical spec twice is a silent no-op.
func (s *Store) WriteRevision(ctx context.Context, spec *ir.IntermediateRepresentation) (id string, inserted bool, err error) {
	id, err = ir.RevisionID(spec)
	if err != nil {
		return "", false, fmt.Errorf("write revision: %w", err)
	}

	specJSON, err := marshalSpec(spec)
	if err != nil {
		return "", false, fmt.Errorf("write revision: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO revisions (id, name, spec)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, id, spec.Signature.Name, specJSON)
	if err != nil {
		return "", false, fmt.Errorf("write revision: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return "", false, fmt.Errorf("write revision: rows affected: %w", err)
	}

	return id, rowsAffected > 0, nil
}

// WriteRun inserts a run record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate run tokens
// are silently ignored.
//
// Note: The revision referenced by RevisionID must exist (foreign key constraint).
func (s *Store) WriteRun(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, revision_id, gate_passed, best_index)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, run.ID, run.RevisionID, run.GatePassed, run.BestIndex)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// WriteCandidate inserts one scored candidate under a run.
// The candidate's content address covers the revision, slot index, and
// source text; duplicate writes are silently ignored.
//
// Note: The run referenced by runID must exist (foreign key constraint).
func (s *Store) WriteCandidate(ctx context.Context, revisionID, runID string, c ir.GeneratedCandidate) error {
	reportJSON, err := marshalReport(c.Report)
	if err != nil {
		return fmt.Errorf("write candidate: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO candidates (id, run_id, idx, source, compiles, score, report)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		ir.CandidateID(revisionID, c.Index, c.SourceText),
		runID,
		c.Index,
		c.SourceText,
		c.Compiles,
		c.Score,
		reportJSON,
	)
	if err != nil {
		return fmt.Errorf("write candidate: %w", err)
	}
	return nil
}

// WriteRunAtomic writes a run and all of its candidates in a single
// transaction, so a crash never leaves a run row without its batch.
// The run row claims the slot: if the run token already exists, the
// candidates are NOT rewritten and inserted=false is returned.
func (s *Store) WriteRunAtomic(ctx context.Context, run Run, candidates []ir.GeneratedCandidate) (inserted bool, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("atomic run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, revision_id, gate_passed, best_index)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, run.ID, run.RevisionID, run.GatePassed, run.BestIndex)
	if err != nil {
		return false, fmt.Errorf("atomic run: insert run: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("atomic run: rows affected: %w", err)
	}

	if rowsAffected == 0 {
		// Run already recorded - nothing more to do
		if err := tx.Commit(); err != nil {
			return false, fmt.Errorf("atomic run: commit (existing): %w", err)
		}
		return false, nil
	}

	for _, c := range candidates {
		reportJSON, err := marshalReport(c.Report)
		if err != nil {
			return false, fmt.Errorf("atomic run: candidate %d: %w", c.Index, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO candidates (id, run_id, idx, source, compiles, score, report)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT DO NOTHING
		`,
			ir.CandidateID(run.RevisionID, c.Index, c.SourceText),
			run.ID,
			c.Index,
			c.SourceText,
			c.Compiles,
			c.Score,
			reportJSON,
		)
		if err != nil {
			return false, fmt.Errorf("atomic run: insert candidate %d: %w", c.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("atomic run: commit: %w", err)
	}

	return true, nil
}
