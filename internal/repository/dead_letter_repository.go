package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/saharamess/messbot/internal/model"
	"github.com/saharamess/messbot/internal/repository/base"
)

type DeadLetterRepository struct {
	*base.Repository
}

func NewDeadLetterRepository(pool *pgxpool.Pool) *DeadLetterRepository {
	return &DeadLetterRepository{Repository: base.NewRepository(pool)}
}

// Create parks a failed side effect for later retries.
func (r *DeadLetterRepository) Create(ctx context.Context, d *model.DeadLetter) error {
	if d.Payload == nil {
		d.Payload = map[string]any{}
	}
	if d.MaxRetries == 0 {
		d.MaxRetries = 3
	}

	raw, err := json.Marshal(d.Payload)
	if err != nil {
		return fmt.Errorf("marshal dead letter payload: %w", err)
	}

	query := `
		INSERT INTO dead_letters (operation, payload, error_message, retry_count, max_retries)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err = r.QueryRow(ctx, query, d.Operation, raw, d.ErrorMsg, d.RetryCount, d.MaxRetries).
		Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		return fmt.Errorf("create dead letter: %w", err)
	}

	return nil
}

// ListRetryable returns unresolved letters with retry budget left, oldest
// first.
func (r *DeadLetterRepository) ListRetryable(ctx context.Context, limit int) ([]*model.DeadLetter, error) {
	query := `
		SELECT id, operation, payload, error_message, retry_count, max_retries, resolved, last_retry_at, created_at
		FROM dead_letters
		WHERE NOT resolved AND retry_count < max_retries
		ORDER BY created_at
		LIMIT $1
	`

	rows, err := r.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list retryable dead letters: %w", err)
	}
	defer rows.Close()

	var letters []*model.DeadLetter
	for rows.Next() {
		var d model.DeadLetter
		var raw []byte
		err := rows.Scan(&d.ID, &d.Operation, &raw, &d.ErrorMsg, &d.RetryCount, &d.MaxRetries, &d.Resolved, &d.LastRetryAt, &d.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan dead letter: %w", err)
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &d.Payload); err != nil {
				return nil, fmt.Errorf("unmarshal dead letter payload: %w", err)
			}
		}
		letters = append(letters, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dead letters: %w", err)
	}

	return letters, nil
}

// MarkResolved closes a letter after a successful replay.
func (r *DeadLetterRepository) MarkResolved(ctx context.Context, id int64) error {
	_, err := r.ExecAffected(ctx, `UPDATE dead_letters SET resolved = true WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("resolve dead letter: %w", err)
	}
	return nil
}

// BumpRetry records one more failed replay attempt.
func (r *DeadLetterRepository) BumpRetry(ctx context.Context, id int64, at time.Time, errMsg string) error {
	_, err := r.ExecAffected(ctx, `
		UPDATE dead_letters
		SET retry_count = retry_count + 1, last_retry_at = $1, error_message = $2
		WHERE id = $3
	`, at, errMsg, id)
	if err != nil {
		return fmt.Errorf("bump dead letter retry: %w", err)
	}
	return nil
}

// CountPending returns unresolved letters (for the daily report).
func (r *DeadLetterRepository) CountPending(ctx context.Context) (int, error) {
	var count int
	err := r.QueryRow(ctx, `SELECT count(*) FROM dead_letters WHERE NOT resolved`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count pending dead letters: %w", err)
	}
	return count, nil
}
