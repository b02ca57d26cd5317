package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/saharamess/messbot/internal/model"
	"github.com/saharamess/messbot/internal/repository/base"
)

type ScanRepository struct {
	*base.Repository
}

func NewScanRepository(pool *pgxpool.Pool) *ScanRepository {
	return &ScanRepository{Repository: base.NewRepository(pool)}
}

// Create records a scan attempt.
func (r *ScanRepository) Create(ctx context.Context, e *model.ScanEvent) error {
	query := `
		INSERT INTO scan_events (student_id, meal, staff_token_id, result, device_info)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, scanned_at
	`

	err := r.QueryRow(
		ctx, query,
		e.StudentID,
		e.Meal,
		e.StaffTokenID,
		e.Result,
		e.DeviceInfo,
	).Scan(&e.ID, &e.ScannedAt)

	if err != nil {
		return fmt.Errorf("create scan event: %w", err)
	}

	return nil
}

// HasAllowedScan reports whether the student already has an ALLOWED scan for
// the meal within [dayStart, dayEnd).
func (r *ScanRepository) HasAllowedScan(ctx context.Context, studentID int64, meal model.Meal, dayStart, dayEnd time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM scan_events
			WHERE student_id = $1
			  AND meal = $2
			  AND result = 'ALLOWED'
			  AND scanned_at >= $3
			  AND scanned_at < $4
		)
	`

	var exists bool
	if err := r.QueryRow(ctx, query, studentID, meal, dayStart, dayEnd).Scan(&exists); err != nil {
		return false, fmt.Errorf("check allowed scan: %w", err)
	}
	return exists, nil
}

// CountByResult returns scan counts grouped by result within [from, to).
func (r *ScanRepository) CountByResult(ctx context.Context, from, to time.Time) (map[model.ScanResult]int, error) {
	query := `
		SELECT result, count(*)
		FROM scan_events
		WHERE scanned_at >= $1 AND scanned_at < $2
		GROUP BY result
	`

	rows, err := r.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("count scans by result: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.ScanResult]int)
	for rows.Next() {
		var result model.ScanResult
		var count int
		if err := rows.Scan(&result, &count); err != nil {
			return nil, fmt.Errorf("scan result count: %w", err)
		}
		counts[result] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate result counts: %w", err)
	}

	return counts, nil
}

// CountAllowedByMeal returns ALLOWED scans per meal within [from, to).
func (r *ScanRepository) CountAllowedByMeal(ctx context.Context, from, to time.Time) (map[model.Meal]int, error) {
	query := `
		SELECT meal, count(*)
		FROM scan_events
		WHERE result = 'ALLOWED' AND scanned_at >= $1 AND scanned_at < $2
		GROUP BY meal
	`

	rows, err := r.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("count allowed scans by meal: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.Meal]int)
	for rows.Next() {
		var meal model.Meal
		var count int
		if err := rows.Scan(&meal, &count); err != nil {
			return nil, fmt.Errorf("scan meal count: %w", err)
		}
		counts[meal] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate meal counts: %w", err)
	}

	return counts, nil
}

// ListRecent returns the latest scans with students joined, newest first.
func (r *ScanRepository) ListRecent(ctx context.Context, limit int) ([]*model.ScanEvent, error) {
	query := `
		SELECT e.id, e.student_id, e.meal, e.scanned_at, e.staff_token_id, e.result, e.device_info,
		       s.id, s.tg_user_id, s.name, s.roll_no, s.room_no, s.phone, s.status, s.qr_version, s.qr_nonce, s.created_at, s.updated_at
		FROM scan_events e
		JOIN students s ON s.id = e.student_id
		ORDER BY e.scanned_at DESC
		LIMIT $1
	`

	rows, err := r.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent scans: %w", err)
	}
	defer rows.Close()

	var events []*model.ScanEvent
	for rows.Next() {
		var e model.ScanEvent
		var s model.Student
		err := rows.Scan(
			&e.ID, &e.StudentID, &e.Meal, &e.ScannedAt, &e.StaffTokenID, &e.Result, &e.DeviceInfo,
			&s.ID, &s.TgUserID, &s.Name, &s.RollNo, &s.RoomNo, &s.Phone, &s.Status, &s.QRVersion, &s.QRNonce, &s.CreatedAt, &s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Student = &s
		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scan events: %w", err)
	}

	return events, nil
}

// ListOlderThan returns scans before the given moment, oldest first, with
// students joined. Used by the archival job.
func (r *ScanRepository) ListOlderThan(ctx context.Context, before time.Time, limit int) ([]*model.ScanEvent, error) {
	query := `
		SELECT e.id, e.student_id, e.meal, e.scanned_at, e.staff_token_id, e.result, e.device_info,
		       s.id, s.tg_user_id, s.name, s.roll_no, s.room_no, s.phone, s.status, s.qr_version, s.qr_nonce, s.created_at, s.updated_at
		FROM scan_events e
		JOIN students s ON s.id = e.student_id
		WHERE e.scanned_at < $1
		ORDER BY e.scanned_at
		LIMIT $2
	`

	rows, err := r.Query(ctx, query, before, limit)
	if err != nil {
		return nil, fmt.Errorf("list scans older than: %w", err)
	}
	defer rows.Close()

	var events []*model.ScanEvent
	for rows.Next() {
		var e model.ScanEvent
		var s model.Student
		err := rows.Scan(
			&e.ID, &e.StudentID, &e.Meal, &e.ScannedAt, &e.StaffTokenID, &e.Result, &e.DeviceInfo,
			&s.ID, &s.TgUserID, &s.Name, &s.RollNo, &s.RoomNo, &s.Phone, &s.Status, &s.QRVersion, &s.QRNonce, &s.CreatedAt, &s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Student = &s
		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scan events: %w", err)
	}

	return events, nil
}

// DeleteOlderThan removes scans before the given moment and returns how many
// rows went away.
func (r *ScanRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	affected, err := r.ExecAffected(ctx, `DELETE FROM scan_events WHERE scanned_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("delete old scans: %w", err)
	}
	return affected, nil
}

// DeleteByIDs removes the given scans, returning how many rows went away.
func (r *ScanRepository) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	affected, err := r.ExecAffected(ctx, `DELETE FROM scan_events WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, fmt.Errorf("delete scans by id: %w", err)
	}
	return affected, nil
}
