package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/saharamess/messbot/internal/model"
	"github.com/saharamess/messbot/internal/repository/base"
)

const studentColumns = "id, tg_user_id, name, roll_no, room_no, phone, status, qr_version, qr_nonce, created_at, updated_at"

type StudentRepository struct {
	*base.Repository
}

func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{Repository: base.NewRepository(pool)}
}

func scanStudent(row pgx.Row) (*model.Student, error) {
	var s model.Student
	err := row.Scan(
		&s.ID,
		&s.TgUserID,
		&s.Name,
		&s.RollNo,
		&s.RoomNo,
		&s.Phone,
		&s.Status,
		&s.QRVersion,
		&s.QRNonce,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a new pending student.
func (r *StudentRepository) Create(ctx context.Context, s *model.Student) error {
	query := `
		INSERT INTO students (tg_user_id, name, roll_no, room_no, phone, status, qr_version, qr_nonce)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		s.TgUserID,
		s.Name,
		s.RollNo,
		s.RoomNo,
		s.Phone,
		s.Status,
		s.QRVersion,
		s.QRNonce,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create student: %w", err)
	}

	return nil
}

// GetByID returns a student by primary key, nil when absent.
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*model.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1`

	s, err := scanStudent(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get student by id: %w", err)
	}

	return s, nil
}

// GetByTgUserID returns a student by Telegram user ID, nil when absent.
func (r *StudentRepository) GetByTgUserID(ctx context.Context, tgUserID int64) (*model.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE tg_user_id = $1`

	s, err := scanStudent(r.QueryRow(ctx, query, tgUserID))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get student by tg user id: %w", err)
	}

	return s, nil
}

// GetByRollNo returns a student by roll number, nil when absent.
func (r *StudentRepository) GetByRollNo(ctx context.Context, rollNo string) (*model.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE roll_no = $1`

	s, err := scanStudent(r.QueryRow(ctx, query, rollNo))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get student by roll no: %w", err)
	}

	return s, nil
}

// RollNoExists reports whether a roll number is already registered.
func (r *StudentRepository) RollNoExists(ctx context.Context, rollNo string) (bool, error) {
	var exists bool
	err := r.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM students WHERE roll_no = $1)`, rollNo).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check roll no: %w", err)
	}
	return exists, nil
}

// UpdateStatus moves a student to a new lifecycle status.
func (r *StudentRepository) UpdateStatus(ctx context.Context, id int64, status model.StudentStatus) error {
	affected, err := r.ExecAffected(ctx,
		`UPDATE students SET status = $1, updated_at = now() WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("update student status: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("student not found")
	}
	return nil
}

// RotateQR bumps the QR version and replaces the nonce, invalidating every
// previously issued card.
func (r *StudentRepository) RotateQR(ctx context.Context, id int64, nonce string) (*model.Student, error) {
	query := `
		UPDATE students
		SET qr_version = qr_version + 1, qr_nonce = $1, updated_at = now()
		WHERE id = $2
		RETURNING ` + studentColumns

	s, err := scanStudent(r.QueryRow(ctx, query, nonce, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("rotate student qr: %w", err)
	}

	return s, nil
}

// ListByStatus returns students in a lifecycle status, oldest first.
func (r *StudentRepository) ListByStatus(ctx context.Context, status model.StudentStatus) ([]*model.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE status = $1 ORDER BY created_at`

	rows, err := r.Query(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("list students by status: %w", err)
	}
	defer rows.Close()

	var students []*model.Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		students = append(students, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate students: %w", err)
	}

	return students, nil
}

// CountByStatus returns the number of students in a status.
func (r *StudentRepository) CountByStatus(ctx context.Context, status model.StudentStatus) (int, error) {
	var count int
	err := r.QueryRow(ctx, `SELECT count(*) FROM students WHERE status = $1`, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count students by status: %w", err)
	}
	return count, nil
}
