package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/saharamess/messbot/internal/model"
	"github.com/saharamess/messbot/internal/repository/base"
)

type MessCutRepository struct {
	*base.Repository
}

func NewMessCutRepository(pool *pgxpool.Pool) *MessCutRepository {
	return &MessCutRepository{Repository: base.NewRepository(pool)}
}

// Create inserts a mess cut.
func (r *MessCutRepository) Create(ctx context.Context, c *model.MessCut) error {
	query := `
		INSERT INTO mess_cuts (student_id, from_date, to_date, applied_by, cutoff_ok)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, applied_at
	`

	err := r.QueryRow(
		ctx, query,
		c.StudentID,
		c.FromDate,
		c.ToDate,
		c.AppliedBy,
		c.CutoffOK,
	).Scan(&c.ID, &c.AppliedAt)

	if err != nil {
		return fmt.Errorf("create mess cut: %w", err)
	}

	return nil
}

// HasOverlapping reports whether the student already has a cut sharing a day
// with [from, to].
func (r *MessCutRepository) HasOverlapping(ctx context.Context, studentID int64, from, to time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM mess_cuts
			WHERE student_id = $1
			  AND from_date <= $3
			  AND to_date >= $2
		)
	`

	var exists bool
	if err := r.QueryRow(ctx, query, studentID, from, to).Scan(&exists); err != nil {
		return false, fmt.Errorf("check overlapping cut: %w", err)
	}
	return exists, nil
}

// HasCutOn reports whether the student is on a cut on the given day.
func (r *MessCutRepository) HasCutOn(ctx context.Context, studentID int64, day time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM mess_cuts
			WHERE student_id = $1 AND from_date <= $2 AND to_date >= $2
		)
	`

	var exists bool
	if err := r.QueryRow(ctx, query, studentID, day).Scan(&exists); err != nil {
		return false, fmt.Errorf("check cut on day: %w", err)
	}
	return exists, nil
}

// ListStartingOn returns cuts beginning on the given day with students
// joined. The 23:00 lock job uses this for tomorrow's confirmations.
func (r *MessCutRepository) ListStartingOn(ctx context.Context, day time.Time) ([]*model.MessCut, error) {
	query := `
		SELECT c.id, c.student_id, c.from_date, c.to_date, c.applied_at, c.applied_by, c.cutoff_ok,
		       s.id, s.tg_user_id, s.name, s.roll_no, s.room_no, s.phone, s.status, s.qr_version, s.qr_nonce, s.created_at, s.updated_at
		FROM mess_cuts c
		JOIN students s ON s.id = c.student_id
		WHERE c.from_date = $1
		ORDER BY s.roll_no
	`

	rows, err := r.Query(ctx, query, day)
	if err != nil {
		return nil, fmt.Errorf("list cuts starting on day: %w", err)
	}
	defer rows.Close()

	var cuts []*model.MessCut
	for rows.Next() {
		var c model.MessCut
		var s model.Student
		err := rows.Scan(
			&c.ID, &c.StudentID, &c.FromDate, &c.ToDate, &c.AppliedAt, &c.AppliedBy, &c.CutoffOK,
			&s.ID, &s.TgUserID, &s.Name, &s.RollNo, &s.RoomNo, &s.Phone, &s.Status, &s.QRVersion, &s.QRNonce, &s.CreatedAt, &s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan mess cut: %w", err)
		}
		c.Student = &s
		cuts = append(cuts, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mess cuts: %w", err)
	}

	return cuts, nil
}

// ListInRange returns cuts intersecting [from, to] with students joined,
// ordered by start date.
func (r *MessCutRepository) ListInRange(ctx context.Context, from, to time.Time) ([]*model.MessCut, error) {
	query := `
		SELECT c.id, c.student_id, c.from_date, c.to_date, c.applied_at, c.applied_by, c.cutoff_ok,
		       s.id, s.tg_user_id, s.name, s.roll_no, s.room_no, s.phone, s.status, s.qr_version, s.qr_nonce, s.created_at, s.updated_at
		FROM mess_cuts c
		JOIN students s ON s.id = c.student_id
		WHERE c.from_date <= $2 AND c.to_date >= $1
		ORDER BY c.from_date, s.roll_no
	`

	rows, err := r.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("list cuts in range: %w", err)
	}
	defer rows.Close()

	var cuts []*model.MessCut
	for rows.Next() {
		var c model.MessCut
		var s model.Student
		err := rows.Scan(
			&c.ID, &c.StudentID, &c.FromDate, &c.ToDate, &c.AppliedAt, &c.AppliedBy, &c.CutoffOK,
			&s.ID, &s.TgUserID, &s.Name, &s.RollNo, &s.RoomNo, &s.Phone, &s.Status, &s.QRVersion, &s.QRNonce, &s.CreatedAt, &s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan mess cut: %w", err)
		}
		c.Student = &s
		cuts = append(cuts, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mess cuts: %w", err)
	}

	return cuts, nil
}

// ListForStudent returns the student's cuts, newest first.
func (r *MessCutRepository) ListForStudent(ctx context.Context, studentID int64) ([]*model.MessCut, error) {
	query := `
		SELECT id, student_id, from_date, to_date, applied_at, applied_by, cutoff_ok
		FROM mess_cuts
		WHERE student_id = $1
		ORDER BY from_date DESC
	`

	rows, err := r.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("list cuts for student: %w", err)
	}
	defer rows.Close()

	var cuts []*model.MessCut
	for rows.Next() {
		var c model.MessCut
		err := rows.Scan(&c.ID, &c.StudentID, &c.FromDate, &c.ToDate, &c.AppliedAt, &c.AppliedBy, &c.CutoffOK)
		if err != nil {
			return nil, fmt.Errorf("scan mess cut: %w", err)
		}
		cuts = append(cuts, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mess cuts: %w", err)
	}

	return cuts, nil
}

// CountActiveOn returns how many cuts are active on the given day.
func (r *MessCutRepository) CountActiveOn(ctx context.Context, day time.Time) (int, error) {
	var count int
	err := r.QueryRow(ctx,
		`SELECT count(*) FROM mess_cuts WHERE from_date <= $1 AND to_date >= $1`,
		day,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count active cuts: %w", err)
	}
	return count, nil
}
