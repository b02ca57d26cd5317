package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/saharamess/messbot/internal/model"
	"github.com/saharamess/messbot/internal/repository/base"
)

type SettingsRepository struct {
	*base.Repository
}

func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{Repository: base.NewRepository(pool)}
}

// Get returns the singleton settings row. The row is seeded by migration.
func (r *SettingsRepository) Get(ctx context.Context) (*model.Settings, error) {
	query := `SELECT id, qr_secret_version, updated_at FROM settings WHERE id = 1`

	var s model.Settings
	err := r.QueryRow(ctx, query).Scan(&s.ID, &s.QRSecretVersion, &s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}

	return &s, nil
}

// BumpQRSecretVersion increments the rotation counter and returns the new
// value.
func (r *SettingsRepository) BumpQRSecretVersion(ctx context.Context) (int, error) {
	query := `
		UPDATE settings
		SET qr_secret_version = qr_secret_version + 1, updated_at = now()
		WHERE id = 1
		RETURNING qr_secret_version
	`

	var version int
	if err := r.QueryRow(ctx, query).Scan(&version); err != nil {
		return 0, fmt.Errorf("bump qr secret version: %w", err)
	}

	return version, nil
}
