package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/saharamess/messbot/internal/model"
	"github.com/saharamess/messbot/internal/repository/base"
)

type ClosureRepository struct {
	*base.Repository
}

func NewClosureRepository(pool *pgxpool.Pool) *ClosureRepository {
	return &ClosureRepository{Repository: base.NewRepository(pool)}
}

// Create inserts a mess closure.
func (r *ClosureRepository) Create(ctx context.Context, c *model.MessClosure) error {
	query := `
		INSERT INTO mess_closures (from_date, to_date, reason, created_by_admin_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.QueryRow(
		ctx, query,
		c.FromDate,
		c.ToDate,
		c.Reason,
		c.CreatedByAdmin,
	).Scan(&c.ID, &c.CreatedAt)

	if err != nil {
		return fmt.Errorf("create mess closure: %w", err)
	}

	return nil
}

// HasOverlapping reports whether any closure shares a day with [from, to].
func (r *ClosureRepository) HasOverlapping(ctx context.Context, from, to time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM mess_closures
			WHERE from_date <= $2 AND to_date >= $1
		)
	`

	var exists bool
	if err := r.QueryRow(ctx, query, from, to).Scan(&exists); err != nil {
		return false, fmt.Errorf("check overlapping closure: %w", err)
	}
	return exists, nil
}

// HasClosureOn reports whether the mess is closed on the given day.
func (r *ClosureRepository) HasClosureOn(ctx context.Context, day time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM mess_closures
			WHERE from_date <= $1 AND to_date >= $1
		)
	`

	var exists bool
	if err := r.QueryRow(ctx, query, day).Scan(&exists); err != nil {
		return false, fmt.Errorf("check closure on day: %w", err)
	}
	return exists, nil
}

// ListUpcoming returns closures ending on or after the given day.
func (r *ClosureRepository) ListUpcoming(ctx context.Context, day time.Time) ([]*model.MessClosure, error) {
	query := `
		SELECT id, from_date, to_date, reason, created_by_admin_id, created_at
		FROM mess_closures
		WHERE to_date >= $1
		ORDER BY from_date
	`

	rows, err := r.Query(ctx, query, day)
	if err != nil {
		return nil, fmt.Errorf("list upcoming closures: %w", err)
	}
	defer rows.Close()

	var closures []*model.MessClosure
	for rows.Next() {
		var c model.MessClosure
		err := rows.Scan(&c.ID, &c.FromDate, &c.ToDate, &c.Reason, &c.CreatedByAdmin, &c.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan mess closure: %w", err)
		}
		closures = append(closures, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mess closures: %w", err)
	}

	return closures, nil
}
