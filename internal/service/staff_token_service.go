package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/saharamess/messbot/internal/model"
	"github.com/saharamess/messbot/internal/repository"
)

// LabelMaxLength caps scanner token labels.
const LabelMaxLength = 64

// HashStaffToken digests a raw token the way it is stored.
func HashStaffToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// GenerateStaffToken returns a fresh random token and its stored digest.
func GenerateStaffToken() (raw, hash string, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("generate staff token: %w", err)
	}
	raw = base64.RawURLEncoding.EncodeToString(buf)
	return raw, HashStaffToken(raw), nil
}

type StaffTokenService struct {
	tokenRepo *repository.StaffTokenRepository
	auditRepo *repository.AuditRepository
	logger    *zap.Logger
}

func NewStaffTokenService(
	tokenRepo *repository.StaffTokenRepository,
	auditRepo *repository.AuditRepository,
	logger *zap.Logger,
) *StaffTokenService {
	return &StaffTokenService{
		tokenRepo: tokenRepo,
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// Issue creates a scanner token and returns the raw value exactly once. Only
// the digest is kept, so losing the raw value means issuing a new token.
func (s *StaffTokenService) Issue(ctx context.Context, label string, expiresAt *time.Time, adminID int64) (*model.StaffToken, string, error) {
	label = strings.TrimSpace(label)
	if label == "" || len(label) > LabelMaxLength {
		return nil, "", fmt.Errorf("%w: label must be 1-%d characters", ErrValidation, LabelMaxLength)
	}

	taken, err := s.tokenRepo.LabelExists(ctx, label)
	if err != nil {
		return nil, "", err
	}
	if taken {
		return nil, "", ErrTokenLabelTaken
	}

	raw, hash, err := GenerateStaffToken()
	if err != nil {
		return nil, "", err
	}

	token := &model.StaffToken{
		Label:     label,
		TokenHash: hash,
		ExpiresAt: expiresAt,
		Active:    true,
	}
	if err := s.tokenRepo.Create(ctx, token); err != nil {
		return nil, "", err
	}

	s.logger.Info("Staff token issued",
		zap.Int64("token_id", token.ID),
		zap.String("label", label),
	)

	s.audit(ctx, model.ActorAdmin, adminID, model.EventStaffTokenIssued, map[string]any{
		"token_id": token.ID,
		"label":    label,
	})

	return token, raw, nil
}

// Authenticate resolves a raw bearer token to its row. Inactive, expired and
// unknown tokens all fail the same way.
func (s *StaffTokenService) Authenticate(ctx context.Context, raw string) (*model.StaffToken, error) {
	if raw == "" {
		return nil, ErrTokenNotFound
	}

	token, err := s.tokenRepo.GetByHash(ctx, HashStaffToken(raw))
	if err != nil {
		return nil, err
	}
	if token == nil || !token.Usable(time.Now()) {
		return nil, ErrTokenNotFound
	}

	if err := s.tokenRepo.TouchLastUsed(ctx, token.ID, time.Now()); err != nil {
		s.logger.Warn("Failed to touch staff token", zap.Int64("token_id", token.ID), zap.Error(err))
	}

	return token, nil
}

// Revoke deactivates a token. Devices holding it stop authenticating at once.
func (s *StaffTokenService) Revoke(ctx context.Context, id, adminID int64) error {
	affected, err := s.tokenRepo.Deactivate(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTokenNotFound
	}

	s.logger.Info("Staff token revoked", zap.Int64("token_id", id))

	s.audit(ctx, model.ActorAdmin, adminID, model.EventStaffTokenRevoked, map[string]any{
		"token_id": id,
	})

	return nil
}

// List returns every token, newest first. Digests stay private.
func (s *StaffTokenService) List(ctx context.Context) ([]*model.StaffToken, error) {
	return s.tokenRepo.List(ctx)
}

// Bootstrap seeds one scanner token from the environment so a fresh deploy
// can scan before anyone reaches the admin panel. It never fails startup:
// missing credentials or an existing label just log and return.
func (s *StaffTokenService) Bootstrap(ctx context.Context, label, raw string) {
	if label == "" || raw == "" {
		s.logger.Info("Staff token bootstrap skipped, credentials not provided")
		return
	}

	taken, err := s.tokenRepo.LabelExists(ctx, label)
	if err != nil {
		s.logger.Error("Staff token bootstrap failed", zap.Error(err))
		return
	}
	if taken {
		s.logger.Info("Staff token bootstrap skipped, label exists", zap.String("label", label))
		return
	}

	token := &model.StaffToken{
		Label:     label,
		TokenHash: HashStaffToken(raw),
		Active:    true,
	}
	if err := s.tokenRepo.Create(ctx, token); err != nil {
		s.logger.Error("Staff token bootstrap failed", zap.Error(err))
		return
	}

	s.logger.Info("Staff token bootstrapped", zap.String("label", label))
	s.audit(ctx, model.ActorSystem, 0, model.EventStaffTokenIssued, map[string]any{
		"token_id":  token.ID,
		"label":     label,
		"bootstrap": true,
	})
}

func (s *StaffTokenService) audit(ctx context.Context, actor model.ActorType, actorID int64, event string, payload map[string]any) {
	if err := s.auditRepo.Log(ctx, actor, actorID, event, payload); err != nil {
		s.logger.Error("Failed to write audit log", zap.String("event", event), zap.Error(err))
	}
}
