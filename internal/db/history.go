package db

import (
	"context"
	"time"

	"github.com/google/uuid"

	"yuvai/internal/models"
)

// AppendHistory records a completed analysis.
func (d *DB) AppendHistory(ctx context.Context, e *models.HistoryEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	stampTime(&e.CreatedAt)

	_, err := d.Pool.Exec(ctx, `
		INSERT INTO history (id, username, claim, lang, verdict, score, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, e.ID, e.Username, e.Claim, e.Lang, e.Verdict, e.Score, e.CreatedAt)
	return err
}

// ListHistory returns a user's most recent analyses, newest first.
func (d *DB) ListHistory(ctx context.Context, username string, limit int) ([]models.HistoryEntry, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT id, username, claim, lang, verdict, score, created_at
		FROM history
		WHERE username = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, username, limitArg(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.HistoryEntry
	for rows.Next() {
		var e models.HistoryEntry
		if err := rows.Scan(&e.ID, &e.Username, &e.Claim, &e.Lang, &e.Verdict, &e.Score, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// PruneHistory deletes entries created before the cutoff.
func (d *DB) PruneHistory(ctx context.Context, before time.Time) (int64, error) {
	tag, err := d.Pool.Exec(ctx, `DELETE FROM history WHERE created_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// AddCorrection stores a user-submitted correction.
func (d *DB) AddCorrection(ctx context.Context, c *models.Correction) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	stampTime(&c.CreatedAt)

	_, err := d.Pool.Exec(ctx, `
		INSERT INTO corrections (id, username, claim, suggested_verdict, note, evidence_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, c.ID, c.Username, c.Claim, c.SuggestedVerdict, c.Note, c.EvidenceURL, c.CreatedAt)
	return err
}

// ListCorrections returns the most recent corrections, newest first.
func (d *DB) ListCorrections(ctx context.Context, limit int) ([]models.Correction, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT id, username, claim, suggested_verdict, note, evidence_url, created_at
		FROM corrections
		ORDER BY created_at DESC
		LIMIT $1
	`, limitArg(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Correction
	for rows.Next() {
		var c models.Correction
		if err := rows.Scan(&c.ID, &c.Username, &c.Claim, &c.SuggestedVerdict, &c.Note, &c.EvidenceURL, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// limitArg maps a non-positive limit to NULL, which Postgres treats as no limit.
func limitArg(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}
