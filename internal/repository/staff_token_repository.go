package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/saharamess/messbot/internal/model"
	"github.com/saharamess/messbot/internal/repository/base"
)

type StaffTokenRepository struct {
	*base.Repository
}

func NewStaffTokenRepository(pool *pgxpool.Pool) *StaffTokenRepository {
	return &StaffTokenRepository{Repository: base.NewRepository(pool)}
}

// Create inserts a staff token. Only the hash is persisted.
func (r *StaffTokenRepository) Create(ctx context.Context, t *model.StaffToken) error {
	query := `
		INSERT INTO staff_tokens (label, token_hash, expires_at, active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, issued_at
	`

	err := r.QueryRow(
		ctx, query,
		t.Label,
		t.TokenHash,
		t.ExpiresAt,
		t.Active,
	).Scan(&t.ID, &t.IssuedAt)

	if err != nil {
		return fmt.Errorf("create staff token: %w", err)
	}

	return nil
}

// GetByHash returns a token by its sha256 digest, nil when absent.
func (r *StaffTokenRepository) GetByHash(ctx context.Context, hash string) (*model.StaffToken, error) {
	query := `
		SELECT id, label, token_hash, issued_at, expires_at, active, last_used_at
		FROM staff_tokens
		WHERE token_hash = $1
	`

	var t model.StaffToken
	err := r.QueryRow(ctx, query, hash).Scan(
		&t.ID,
		&t.Label,
		&t.TokenHash,
		&t.IssuedAt,
		&t.ExpiresAt,
		&t.Active,
		&t.LastUsedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get staff token by hash: %w", err)
	}

	return &t, nil
}

// LabelExists reports whether a token with the label already exists.
func (r *StaffTokenRepository) LabelExists(ctx context.Context, label string) (bool, error) {
	var exists bool
	err := r.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM staff_tokens WHERE label = $1)`, label).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check token label: %w", err)
	}
	return exists, nil
}

// TouchLastUsed stamps the token's last authentication time.
func (r *StaffTokenRepository) TouchLastUsed(ctx context.Context, id int64, at time.Time) error {
	_, err := r.ExecAffected(ctx, `UPDATE staff_tokens SET last_used_at = $1 WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("touch staff token: %w", err)
	}
	return nil
}

// Deactivate revokes a token. Returns rows affected so callers notice a
// missing id.
func (r *StaffTokenRepository) Deactivate(ctx context.Context, id int64) (int64, error) {
	affected, err := r.ExecAffected(ctx, `UPDATE staff_tokens SET active = false WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("deactivate staff token: %w", err)
	}
	return affected, nil
}

// List returns all tokens, newest first.
func (r *StaffTokenRepository) List(ctx context.Context) ([]*model.StaffToken, error) {
	query := `
		SELECT id, label, token_hash, issued_at, expires_at, active, last_used_at
		FROM staff_tokens
		ORDER BY issued_at DESC
	`

	rows, err := r.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list staff tokens: %w", err)
	}
	defer rows.Close()

	var tokens []*model.StaffToken
	for rows.Next() {
		var t model.StaffToken
		err := rows.Scan(&t.ID, &t.Label, &t.TokenHash, &t.IssuedAt, &t.ExpiresAt, &t.Active, &t.LastUsedAt)
		if err != nil {
			return nil, fmt.Errorf("scan staff token: %w", err)
		}
		tokens = append(tokens, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate staff tokens: %w", err)
	}

	return tokens, nil
}
