package store

import (
	"context"
	"database/sql"
	"fmt"
)

// WritePass records a pass and its results in one transaction.
// Uses ON CONFLICT(id) DO NOTHING for idempotency: writing the same pass
// twice leaves the first copy and reports inserted=false.
func (s *Store) WritePass(ctx context.Context, p Pass) (inserted bool, err error) {
	evaluated, err := marshalIDs(p.Evaluated)
	if err != nil {
		return false, fmt.Errorf("write pass: %w", err)
	}
	cycles, err := marshalCycles(p.Cycles)
	if err != nil {
		return false, fmt.Errorf("write pass: %w", err)
	}
	failed, err := marshalIDs(p.Failed)
	if err != nil {
		return false, fmt.Errorf("write pass: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("write pass: begin: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	res, err := tx.ExecContext(ctx, `
		INSERT INTO passes (id, seq, manifest, digest, evaluated, cycles, failed)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, p.ID, p.Seq, p.Manifest, p.Digest, evaluated, cycles, failed)
	if err != nil {
		return false, fmt.Errorf("write pass: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("write pass: rows affected: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	for i, r := range p.Results {
		if err := writeResult(ctx, tx, p.ID, i, r); err != nil {
			return false, fmt.Errorf("write pass %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("write pass: commit: %w", err)
	}
	return true, nil
}

func writeResult(ctx context.Context, tx *sql.Tx, passID string, position int, r SourceResult) error {
	var value, code, msg sql.NullString
	if r.ErrorCode != "" {
		code = sql.NullString{String: r.ErrorCode, Valid: true}
		msg = sql.NullString{String: r.ErrorMessage, Valid: true}
	} else {
		text, err := marshalValue(r.Value)
		if err != nil {
			return fmt.Errorf("result %s: %w", r.SourceID, err)
		}
		value = sql.NullString{String: text, Valid: true}
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO pass_results (pass_id, position, source_id, kind, value, error_code, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, passID, position, r.SourceID, r.Kind, value, code, msg)
	if err != nil {
		return fmt.Errorf("result %s: %w", r.SourceID, err)
	}
	return nil
}
