package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/comandero-software/comandero/internal/domain"
)

type StaffRepository struct {
	pool PgxPool
}

func NewStaffRepository(pool PgxPool) *StaffRepository {
	return &StaffRepository{pool: pool}
}

const staffColumns = `id, restaurant_id, email, name, role, password_hash, two_factor_enabled, is_active, created_at, updated_at`

func (r *StaffRepository) Create(ctx context.Context, staff *domain.Staff) error {
	query := `
		INSERT INTO staff (id, restaurant_id, email, name, role, password_hash, two_factor_enabled, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	if staff.ID == uuid.Nil {
		staff.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query,
		staff.ID,
		staff.RestaurantID,
		staff.Email,
		staff.Name,
		staff.Role,
		staff.PasswordHash,
		staff.TwoFactorEnabled,
		staff.IsActive,
	).Scan(&staff.CreatedAt, &staff.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return &domain.AppError{
				Code:       "STAFF_ALREADY_EXISTS",
				Message:    "Staff member with this email already exists",
				StatusCode: 409,
			}
		}
		return fmt.Errorf("create staff: %w", err)
	}

	return nil
}

func (r *StaffRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Staff, error) {
	query := `SELECT ` + staffColumns + ` FROM staff WHERE id = $1`

	staff, err := scanStaff(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrStaffNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get staff by id: %w", err)
	}

	return staff, nil
}

func (r *StaffRepository) GetByEmail(ctx context.Context, email string) (*domain.Staff, error) {
	query := `SELECT ` + staffColumns + ` FROM staff WHERE email = $1`

	staff, err := scanStaff(r.pool.QueryRow(ctx, query, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrStaffNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get staff by email: %w", err)
	}

	return staff, nil
}

func scanStaff(row pgx.Row) (*domain.Staff, error) {
	var staff domain.Staff
	err := row.Scan(
		&staff.ID,
		&staff.RestaurantID,
		&staff.Email,
		&staff.Name,
		&staff.Role,
		&staff.PasswordHash,
		&staff.TwoFactorEnabled,
		&staff.IsActive,
		&staff.CreatedAt,
		&staff.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &staff, nil
}
