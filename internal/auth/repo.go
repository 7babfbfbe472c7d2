package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/storeadmin/internal/shared"
)

// Repository defines persistence operations for auth module.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*Admin, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindByEmail fetches a non-deleted admin by email, case-insensitively.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*Admin, error) {
	var admin Admin
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, email, phone, password_hash, status, roles_name, created_at
		FROM admins
		WHERE lower(email) = lower($1) AND deleted_at IS NULL`, email).
		Scan(&admin.ID, &admin.Name, &admin.Email, &admin.Phone, &admin.PasswordHash, &admin.Status, &admin.RolesName, &admin.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("auth: find admin: %w", err)
	}
	return &admin, nil
}

var _ Repository = (*PGRepository)(nil)
