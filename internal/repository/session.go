package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/comandero-software/comandero/internal/domain"
)

// StaffSessionRepository persists the staff realm's session rows. The
// customer realm lives in Redis and never touches these tables.
type StaffSessionRepository struct {
	pool PgxPool
}

func NewStaffSessionRepository(pool PgxPool) *StaffSessionRepository {
	return &StaffSessionRepository{pool: pool}
}

func (r *StaffSessionRepository) Create(ctx context.Context, session *domain.StaffSession) error {
	query := `
		INSERT INTO staff_sessions (id, staff_id, restaurant_id, issued_at, last_active_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}

	_, err := r.pool.Exec(ctx, query,
		session.ID,
		session.StaffID,
		session.RestaurantID,
		session.IssuedAt,
		session.LastActiveAt,
	)
	if err != nil {
		return fmt.Errorf("create staff session: %w", err)
	}

	return nil
}

func (r *StaffSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.StaffSession, error) {
	query := `
		SELECT id, staff_id, restaurant_id, issued_at, last_active_at, revoked_at
		FROM staff_sessions
		WHERE id = $1
	`

	var session domain.StaffSession
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&session.ID,
		&session.StaffID,
		&session.RestaurantID,
		&session.IssuedAt,
		&session.LastActiveAt,
		&session.RevokedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get staff session by id: %w", err)
	}

	return &session, nil
}

func (r *StaffSessionRepository) Revoke(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE staff_sessions
		SET revoked_at = NOW()
		WHERE id = $1 AND revoked_at IS NULL
	`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("revoke staff session: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}

	return nil
}

func (r *StaffSessionRepository) UpdateLastActive(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE staff_sessions
		SET last_active_at = NOW()
		WHERE id = $1 AND revoked_at IS NULL
	`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("update session last active: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}

	return nil
}

// DeleteInactiveSince removes sessions idle since the cutoff, revoked or
// not. Returns the number of deleted rows.
func (r *StaffSessionRepository) DeleteInactiveSince(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM staff_sessions
		WHERE last_active_at < $1
	`

	result, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete inactive staff sessions: %w", err)
	}

	return result.RowsAffected(), nil
}
