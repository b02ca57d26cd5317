package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/saharamess/messbot/internal/model"
	"github.com/saharamess/messbot/internal/repository"
)

// retryBatchSize caps letters handled per retry sweep.
const retryBatchSize = 100

// Replayer retries one parked side effect.
type Replayer interface {
	Replay(ctx context.Context, letter *model.DeadLetter) error
}

// DeadLetterService sweeps the dead letter table and replays parked side
// effects through whoever originally owned them.
type DeadLetterService struct {
	dlqRepo   *repository.DeadLetterRepository
	replayers map[string]Replayer
	logger    *zap.Logger
}

func NewDeadLetterService(dlqRepo *repository.DeadLetterRepository, logger *zap.Logger) *DeadLetterService {
	return &DeadLetterService{
		dlqRepo:   dlqRepo,
		replayers: make(map[string]Replayer),
		logger:    logger,
	}
}

// RegisterReplayer binds an operation name to its replayer.
func (s *DeadLetterService) RegisterReplayer(operation string, r Replayer) {
	s.replayers[operation] = r
}

// RetryPending replays every letter with retry budget left. Successes are
// resolved, failures burn one retry.
func (s *DeadLetterService) RetryPending(ctx context.Context, now time.Time) (resolved, failed int, err error) {
	letters, err := s.dlqRepo.ListRetryable(ctx, retryBatchSize)
	if err != nil {
		return 0, 0, err
	}

	for _, letter := range letters {
		replayer, ok := s.replayers[letter.Operation]
		if !ok {
			failed++
			s.bump(ctx, letter, now, fmt.Errorf("no replayer for operation %s", letter.Operation))
			continue
		}

		if replayErr := replayer.Replay(ctx, letter); replayErr != nil {
			failed++
			s.bump(ctx, letter, now, replayErr)
			continue
		}

		if markErr := s.dlqRepo.MarkResolved(ctx, letter.ID); markErr != nil {
			s.logger.Error("Failed to resolve dead letter", zap.Int64("letter_id", letter.ID), zap.Error(markErr))
			continue
		}
		resolved++
	}

	if resolved > 0 || failed > 0 {
		s.logger.Info("Dead letter sweep finished",
			zap.Int("resolved", resolved),
			zap.Int("failed", failed),
		)
	}

	return resolved, failed, nil
}

// PendingCount returns how many letters still wait for a successful replay.
func (s *DeadLetterService) PendingCount(ctx context.Context) (int, error) {
	return s.dlqRepo.CountPending(ctx)
}

func (s *DeadLetterService) bump(ctx context.Context, letter *model.DeadLetter, now time.Time, cause error) {
	if err := s.dlqRepo.BumpRetry(ctx, letter.ID, now, cause.Error()); err != nil {
		s.logger.Error("Failed to bump dead letter", zap.Int64("letter_id", letter.ID), zap.Error(err))
	}
}
