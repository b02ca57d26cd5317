package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/saharamess/messbot/internal/model"
	"github.com/saharamess/messbot/internal/repository/base"
)

const paymentColumns = "id, student_id, cycle_start, cycle_end, amount, screenshot_url, status, source, reviewer_admin_id, reviewed_at, created_at, updated_at"

type PaymentRepository struct {
	*base.Repository
}

func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{Repository: base.NewRepository(pool)}
}

func scanPayment(row pgx.Row) (*model.Payment, error) {
	var p model.Payment
	err := row.Scan(
		&p.ID,
		&p.StudentID,
		&p.CycleStart,
		&p.CycleEnd,
		&p.Amount,
		&p.ScreenshotURL,
		&p.Status,
		&p.Source,
		&p.ReviewerAdmin,
		&p.ReviewedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a payment record.
func (r *PaymentRepository) Create(ctx context.Context, p *model.Payment) error {
	query := `
		INSERT INTO payments (student_id, cycle_start, cycle_end, amount, screenshot_url, status, source, reviewer_admin_id, reviewed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		p.StudentID,
		p.CycleStart,
		p.CycleEnd,
		p.Amount,
		p.ScreenshotURL,
		p.Status,
		p.Source,
		p.ReviewerAdmin,
		p.ReviewedAt,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create payment: %w", err)
	}

	return nil
}

// GetByID returns a payment by primary key, nil when absent.
func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	p, err := scanPayment(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment by id: %w", err)
	}

	return p, nil
}

// HasOverlapping reports whether the student already has an UPLOADED or
// VERIFIED payment sharing at least one day with [start, end].
func (r *PaymentRepository) HasOverlapping(ctx context.Context, studentID int64, start, end time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM payments
			WHERE student_id = $1
			  AND status IN ('UPLOADED', 'VERIFIED')
			  AND cycle_start <= $3
			  AND cycle_end >= $2
		)
	`

	var exists bool
	if err := r.QueryRow(ctx, query, studentID, start, end).Scan(&exists); err != nil {
		return false, fmt.Errorf("check overlapping payment: %w", err)
	}
	return exists, nil
}

// HasVerifiedCovering reports whether a VERIFIED payment covers the given day.
func (r *PaymentRepository) HasVerifiedCovering(ctx context.Context, studentID int64, day time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM payments
			WHERE student_id = $1
			  AND status = 'VERIFIED'
			  AND cycle_start <= $2
			  AND cycle_end >= $2
		)
	`

	var exists bool
	if err := r.QueryRow(ctx, query, studentID, day).Scan(&exists); err != nil {
		return false, fmt.Errorf("check verified payment: %w", err)
	}
	return exists, nil
}

// SetReview stamps the admin decision on an uploaded payment. Returns the
// number of rows moved, zero when the payment was not in UPLOADED.
func (r *PaymentRepository) SetReview(ctx context.Context, id int64, status model.PaymentStatus, adminID int64, at time.Time) (int64, error) {
	affected, err := r.ExecAffected(ctx, `
		UPDATE payments
		SET status = $1, reviewer_admin_id = $2, reviewed_at = $3, updated_at = now()
		WHERE id = $4 AND status = 'UPLOADED'
	`, status, adminID, at, id)
	if err != nil {
		return 0, fmt.Errorf("set payment review: %w", err)
	}
	return affected, nil
}

// ListByStatus returns payments in a status with the owning student joined,
// oldest first.
func (r *PaymentRepository) ListByStatus(ctx context.Context, status model.PaymentStatus) ([]*model.Payment, error) {
	query := `
		SELECT p.id, p.student_id, p.cycle_start, p.cycle_end, p.amount, p.screenshot_url, p.status, p.source,
		       p.reviewer_admin_id, p.reviewed_at, p.created_at, p.updated_at,
		       s.id, s.tg_user_id, s.name, s.roll_no, s.room_no, s.phone, s.status, s.qr_version, s.qr_nonce, s.created_at, s.updated_at
		FROM payments p
		JOIN students s ON s.id = p.student_id
		WHERE p.status = $1
		ORDER BY p.created_at
	`

	rows, err := r.Query(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("list payments by status: %w", err)
	}
	defer rows.Close()

	var payments []*model.Payment
	for rows.Next() {
		var p model.Payment
		var s model.Student
		err := rows.Scan(
			&p.ID, &p.StudentID, &p.CycleStart, &p.CycleEnd, &p.Amount, &p.ScreenshotURL, &p.Status, &p.Source,
			&p.ReviewerAdmin, &p.ReviewedAt, &p.CreatedAt, &p.UpdatedAt,
			&s.ID, &s.TgUserID, &s.Name, &s.RollNo, &s.RoomNo, &s.Phone, &s.Status, &s.QRVersion, &s.QRNonce, &s.CreatedAt, &s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		p.Student = &s
		payments = append(payments, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payments: %w", err)
	}

	return payments, nil
}

// CountByStatus returns the number of payments per status.
func (r *PaymentRepository) CountByStatus(ctx context.Context, status model.PaymentStatus) (int, error) {
	var count int
	err := r.QueryRow(ctx, `SELECT count(*) FROM payments WHERE status = $1`, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count payments by status: %w", err)
	}
	return count, nil
}

// CountApprovedWithoutCover returns approved students lacking a VERIFIED
// payment that covers the given day.
func (r *PaymentRepository) CountApprovedWithoutCover(ctx context.Context, day time.Time) (int, error) {
	query := `
		SELECT count(*)
		FROM students s
		WHERE s.status = 'APPROVED'
		  AND NOT EXISTS (
			SELECT 1 FROM payments p
			WHERE p.student_id = s.id
			  AND p.status = 'VERIFIED'
			  AND p.cycle_start <= $1
			  AND p.cycle_end >= $1
		  )
	`

	var count int
	if err := r.QueryRow(ctx, query, day).Scan(&count); err != nil {
		return 0, fmt.Errorf("count students without cover: %w", err)
	}
	return count, nil
}

// ListVerifiedEndingOn returns verified payments whose cycle ends exactly on
// the given day, with students joined. Used for expiry warnings.
func (r *PaymentRepository) ListVerifiedEndingOn(ctx context.Context, day time.Time) ([]*model.Payment, error) {
	query := `
		SELECT p.id, p.student_id, p.cycle_start, p.cycle_end, p.amount, p.screenshot_url, p.status, p.source,
		       p.reviewer_admin_id, p.reviewed_at, p.created_at, p.updated_at,
		       s.id, s.tg_user_id, s.name, s.roll_no, s.room_no, s.phone, s.status, s.qr_version, s.qr_nonce, s.created_at, s.updated_at
		FROM payments p
		JOIN students s ON s.id = p.student_id
		WHERE p.status = 'VERIFIED' AND p.cycle_end = $1
		ORDER BY s.roll_no
	`

	rows, err := r.Query(ctx, query, day)
	if err != nil {
		return nil, fmt.Errorf("list payments ending on day: %w", err)
	}
	defer rows.Close()

	var payments []*model.Payment
	for rows.Next() {
		var p model.Payment
		var s model.Student
		err := rows.Scan(
			&p.ID, &p.StudentID, &p.CycleStart, &p.CycleEnd, &p.Amount, &p.ScreenshotURL, &p.Status, &p.Source,
			&p.ReviewerAdmin, &p.ReviewedAt, &p.CreatedAt, &p.UpdatedAt,
			&s.ID, &s.TgUserID, &s.Name, &s.RollNo, &s.RoomNo, &s.Phone, &s.Status, &s.QRVersion, &s.QRNonce, &s.CreatedAt, &s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		p.Student = &s
		payments = append(payments, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payments: %w", err)
	}

	return payments, nil
}

// LatestForStudent returns the most recent payment of a student, nil when the
// student has none.
func (r *PaymentRepository) LatestForStudent(ctx context.Context, studentID int64) (*model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE student_id = $1 ORDER BY created_at DESC LIMIT 1`

	p, err := scanPayment(r.QueryRow(ctx, query, studentID))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get latest payment: %w", err)
	}

	return p, nil
}

// ListForStudent returns all payments of a student, newest first.
func (r *PaymentRepository) ListForStudent(ctx context.Context, studentID int64) ([]*model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE student_id = $1 ORDER BY created_at DESC`

	rows, err := r.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("list payments for student: %w", err)
	}
	defer rows.Close()

	var payments []*model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payments: %w", err)
	}

	return payments, nil
}
