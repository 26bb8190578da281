package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type rowScanner interface {
	Scan(dest ...any) error
}

const passColumns = `id, seq, manifest, digest, evaluated, cycles, failed`

// NextSeq returns the seq the next pass should use: one past the highest
// logged seq, or 1 for an empty log.
func (s *Store) NextSeq(ctx context.Context) (int64, error) {
	var maxSeq sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(seq) FROM passes`).Scan(&maxSeq); err != nil {
		return 0, fmt.Errorf("next seq: %w", err)
	}
	return maxSeq.Int64 + 1, nil
}

// ReadPasses returns the latest limit passes without their results,
// oldest first. limit <= 0 returns every pass.
//
// Returns an empty slice (not nil) if the log is empty.
func (s *Store) ReadPasses(ctx context.Context, limit int) ([]Pass, error) {
	query := `SELECT ` + passColumns + ` FROM passes ORDER BY seq ASC, id ASC COLLATE BINARY`
	args := []any{}
	if limit > 0 {
		query = `SELECT ` + passColumns + ` FROM (
			SELECT * FROM passes ORDER BY seq DESC LIMIT ?
		) ORDER BY seq ASC, id ASC COLLATE BINARY`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query passes: %w", err)
	}
	defer rows.Close()

	passes := []Pass{}
	for rows.Next() {
		p, err := scanPass(rows)
		if err != nil {
			return nil, err
		}
		passes = append(passes, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate passes: %w", err)
	}
	return passes, nil
}

// ReadPass returns one pass with its results in insertion order.
// Returns ErrNotFound if no pass has the id.
func (s *Store) ReadPass(ctx context.Context, id string) (Pass, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+passColumns+` FROM passes WHERE id = ?`, id)
	p, err := scanPass(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Pass{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Pass{}, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT source_id, kind, value, error_code, error_message
		FROM pass_results
		WHERE pass_id = ?
		ORDER BY position ASC
	`, id)
	if err != nil {
		return Pass{}, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	p.Results = []SourceResult{}
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return Pass{}, err
		}
		p.Results = append(p.Results, r)
	}
	if err := rows.Err(); err != nil {
		return Pass{}, fmt.Errorf("iterate results: %w", err)
	}
	return p, nil
}

// ReadSourceHistory returns the logged results of one source across all
// passes, oldest first.
func (s *Store) ReadSourceHistory(ctx context.Context, sourceID string) ([]SourceSnapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.seq, r.source_id, r.kind, r.value, r.error_code, r.error_message
		FROM pass_results r
		JOIN passes p ON p.id = r.pass_id
		WHERE r.source_id = ?
		ORDER BY p.seq ASC, p.id ASC COLLATE BINARY
	`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("query source history: %w", err)
	}
	defer rows.Close()

	snaps := []SourceSnapshot{}
	for rows.Next() {
		var snap SourceSnapshot
		var value, code, msg sql.NullString
		if err := rows.Scan(&snap.PassID, &snap.PassSeq, &snap.SourceID, &snap.Kind, &value, &code, &msg); err != nil {
			return nil, fmt.Errorf("scan source history: %w", err)
		}
		if err := fillResult(&snap.SourceResult, value, code, msg); err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate source history: %w", err)
	}
	return snaps, nil
}

func scanPass(row rowScanner) (Pass, error) {
	var p Pass
	var evaluated, cycles, failed string
	if err := row.Scan(&p.ID, &p.Seq, &p.Manifest, &p.Digest, &evaluated, &cycles, &failed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Pass{}, err
		}
		return Pass{}, fmt.Errorf("scan pass: %w", err)
	}

	var err error
	if p.Evaluated, err = unmarshalIDs(evaluated); err != nil {
		return Pass{}, err
	}
	if p.Cycles, err = unmarshalCycles(cycles); err != nil {
		return Pass{}, err
	}
	if p.Failed, err = unmarshalIDs(failed); err != nil {
		return Pass{}, err
	}
	return p, nil
}

func scanResult(row rowScanner) (SourceResult, error) {
	var r SourceResult
	var value, code, msg sql.NullString
	if err := row.Scan(&r.SourceID, &r.Kind, &value, &code, &msg); err != nil {
		return SourceResult{}, fmt.Errorf("scan result: %w", err)
	}
	if err := fillResult(&r, value, code, msg); err != nil {
		return SourceResult{}, err
	}
	return r, nil
}

func fillResult(r *SourceResult, value, code, msg sql.NullString) error {
	if code.Valid {
		r.ErrorCode = code.String
		r.ErrorMessage = msg.String
		return nil
	}
	v, err := unmarshalValue(value.String)
	if err != nil {
		return fmt.Errorf("result %s: %w", r.SourceID, err)
	}
	r.Value = v
	return nil
}
