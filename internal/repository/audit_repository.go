package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/saharamess/messbot/internal/model"
	"github.com/saharamess/messbot/internal/repository/base"
)

type AuditRepository struct {
	*base.Repository
}

func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{Repository: base.NewRepository(pool)}
}

// Log writes one audit row. Payload is marshaled to JSONB.
func (r *AuditRepository) Log(ctx context.Context, actorType model.ActorType, actorID int64, eventType string, payload map[string]any) error {
	if payload == nil {
		payload = map[string]any{}
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	_, err = r.ExecAffected(ctx, `
		INSERT INTO audit_logs (actor_type, actor_id, event_type, payload)
		VALUES ($1, $2, $3, $4)
	`, actorType, actorID, eventType, raw)

	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}

	return nil
}

// ListRecent returns the latest audit rows, newest first.
func (r *AuditRepository) ListRecent(ctx context.Context, limit int) ([]*model.AuditLog, error) {
	query := `
		SELECT id, actor_type, actor_id, event_type, payload, created_at
		FROM audit_logs
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	var logs []*model.AuditLog
	for rows.Next() {
		var l model.AuditLog
		var raw []byte
		if err := rows.Scan(&l.ID, &l.ActorType, &l.ActorID, &l.EventType, &raw, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &l.Payload); err != nil {
				return nil, fmt.Errorf("unmarshal audit payload: %w", err)
			}
		}
		logs = append(logs, &l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit logs: %w", err)
	}

	return logs, nil
}
