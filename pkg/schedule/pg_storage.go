package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/notifykit/notifykit/pkg/pg"
)

// PgStorage is a PostgreSQL-backed Storage implementation. Claiming relies
// on FOR UPDATE SKIP LOCKED so multiple sweep instances can run against the
// same table without handing out the same row twice.
type PgStorage struct {
	pool *pgxpool.Pool
}

// NewPgStorage creates a PostgreSQL storage on top of an existing pool.
func NewPgStorage(pool *pgxpool.Pool) *PgStorage {
	return &PgStorage{pool: pool}
}

// Schema returns the DDL for the scheduled notifications table.
func Schema() string {
	return `
CREATE TABLE IF NOT EXISTS scheduled_notifications (
    id            UUID PRIMARY KEY,
    user_id       TEXT        NOT NULL,
    notification  JSONB       NOT NULL,
    scheduled_at  TIMESTAMPTZ NOT NULL,
    status        TEXT        NOT NULL DEFAULT 'pending',
    error         TEXT        NOT NULL DEFAULT '',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    claimed_at    TIMESTAMPTZ,
    processed_at  TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_scheduled_notifications_due
    ON scheduled_notifications (scheduled_at) WHERE status = 'pending';
CREATE INDEX IF NOT EXISTS idx_scheduled_notifications_claimed
    ON scheduled_notifications (claimed_at) WHERE status = 'processing';
CREATE INDEX IF NOT EXISTS idx_scheduled_notifications_user
    ON scheduled_notifications (user_id);
`
}

func (p *PgStorage) Create(ctx context.Context, s Scheduled) error {
	payload, err := json.Marshal(s.Notification)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	_, err = p.pool.Exec(ctx, `
		INSERT INTO scheduled_notifications (id, user_id, notification, scheduled_at, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		s.ID, s.UserID, payload, s.ScheduledAt, s.Status, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert scheduled notification: %w", err)
	}
	return nil
}

func (p *PgStorage) Get(ctx context.Context, id uuid.UUID) (Scheduled, error) {
	row := p.pool.QueryRow(ctx, `
		SELECT id, user_id, notification, scheduled_at, status, error, created_at, claimed_at, processed_at
		FROM scheduled_notifications WHERE id = $1`, id)

	s, err := scanScheduled(row)
	if pg.IsNotFound(err) {
		return Scheduled{}, ErrNotFound
	}
	return s, err
}

func (p *PgStorage) Cancel(ctx context.Context, id uuid.UUID, userID string) error {
	tag, err := p.pool.Exec(ctx, `
		UPDATE scheduled_notifications
		SET status = $1
		WHERE id = $2 AND user_id = $3 AND status = $4`,
		StatusCancelled, id, userID, StatusPending)
	if err != nil {
		return fmt.Errorf("cancel scheduled notification: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	// Distinguish a missing row from one that already left pending state.
	var status Status
	err = p.pool.QueryRow(ctx, `
		SELECT status FROM scheduled_notifications WHERE id = $1 AND user_id = $2`,
		id, userID).Scan(&status)
	if pg.IsNotFound(err) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lookup scheduled notification: %w", err)
	}
	return ErrNotPending
}

func (p *PgStorage) ClaimDue(ctx context.Context, now time.Time, limit int, lease time.Duration) ([]Scheduled, error) {
	// Processing rows with an expired claim belong to a sweep that died
	// mid-batch; they are reclaimed alongside the pending ones.
	rows, err := p.pool.Query(ctx, `
		WITH due AS (
			SELECT id FROM scheduled_notifications
			WHERE (status = $1 AND scheduled_at <= $2)
			   OR (status = $4 AND claimed_at <= $5)
			ORDER BY scheduled_at ASC
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		UPDATE scheduled_notifications sn
		SET status = $4, claimed_at = $2
		FROM due
		WHERE sn.id = due.id
		RETURNING sn.id, sn.user_id, sn.notification, sn.scheduled_at, sn.status, sn.error, sn.created_at, sn.claimed_at, sn.processed_at`,
		StatusPending, now, limit, StatusProcessing, now.Add(-lease))
	if err != nil {
		return nil, fmt.Errorf("claim due notifications: %w", err)
	}
	defer rows.Close()

	var claimed []Scheduled
	for rows.Next() {
		s, err := scanScheduled(rows)
		if err != nil {
			return nil, err
		}
		claimed = append(claimed, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("claim due notifications: %w", err)
	}

	// RETURNING does not preserve CTE ordering.
	slices.SortFunc(claimed, func(a, b Scheduled) int {
		return a.ScheduledAt.Compare(b.ScheduledAt)
	})
	return claimed, nil
}

func (p *PgStorage) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	return p.finish(ctx, id, StatusSent, at, "")
}

func (p *PgStorage) MarkFailed(ctx context.Context, id uuid.UUID, at time.Time, cause string) error {
	return p.finish(ctx, id, StatusFailed, at, cause)
}

func (p *PgStorage) finish(ctx context.Context, id uuid.UUID, status Status, at time.Time, cause string) error {
	tag, err := p.pool.Exec(ctx, `
		UPDATE scheduled_notifications
		SET status = $1, error = $2, processed_at = $3
		WHERE id = $4`,
		status, cause, at, id)
	if err != nil {
		return fmt.Errorf("finish scheduled notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanScheduled(row pgx.Row) (Scheduled, error) {
	var (
		s       Scheduled
		payload []byte
	)
	if err := row.Scan(&s.ID, &s.UserID, &payload, &s.ScheduledAt, &s.Status, &s.Error, &s.CreatedAt, &s.ClaimedAt, &s.ProcessedAt); err != nil {
		return Scheduled{}, err
	}
	if err := json.Unmarshal(payload, &s.Notification); err != nil {
		return Scheduled{}, fmt.Errorf("unmarshal notification: %w", err)
	}
	return s, nil
}
