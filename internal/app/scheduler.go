package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/saharamess/messbot/internal/service"
)

const (
	reportHour        = 6 // daily digest to admins
	expiryWarningHour = 9 // payment cycles ending soon
	dlqRetryInterval  = time.Hour
	archiveWeekday    = time.Sunday
	archiveHour       = 2
	scanRetentionDays = 30
)

// Scheduler runs the recurring mess jobs on mess-timezone wall clocks.
type Scheduler struct {
	cuts        *service.MessCutService
	reports     *service.ReportService
	payments    *service.PaymentService
	deadLetters *service.DeadLetterService
	scans       *service.ScanService

	cutoffHour   int
	cutoffMinute int
	loc          *time.Location
	logger       *zap.Logger

	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewScheduler(
	cuts *service.MessCutService,
	reports *service.ReportService,
	payments *service.PaymentService,
	deadLetters *service.DeadLetterService,
	scans *service.ScanService,
	cutoffHour, cutoffMinute int,
	loc *time.Location,
	logger *zap.Logger,
) *Scheduler {
	return &Scheduler{
		cuts:         cuts,
		reports:      reports,
		payments:     payments,
		deadLetters:  deadLetters,
		scans:        scans,
		cutoffHour:   cutoffHour,
		cutoffMinute: cutoffMinute,
		loc:          loc,
		logger:       logger,
		stopChan:     make(chan struct{}),
	}
}

// Start launches every job goroutine.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler")

	// Locking runs one minute after the cutoff so a cut at 22:59:59 still
	// lands before the day is sealed.
	lock := time.Date(2000, 1, 1, s.cutoffHour, s.cutoffMinute, 0, 0, time.UTC).Add(time.Minute)

	s.spawn(func() { s.runDailyAt(ctx, "messcut lock", lock.Hour(), lock.Minute(), s.lockCuts) })
	s.spawn(func() { s.runDailyAt(ctx, "daily report", reportHour, 0, s.sendReport) })
	s.spawn(func() { s.runDailyAt(ctx, "payment expiry warnings", expiryWarningHour, 0, s.warnExpiring) })
	s.spawn(func() { s.runEvery(ctx, "dead letter retry", dlqRetryInterval, s.retryDeadLetters) })
	s.spawn(func() { s.runWeeklyAt(ctx, "scan archival", archiveWeekday, archiveHour, s.archiveScans) })
}

// Stop signals every job and waits for them to exit.
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	close(s.stopChan)
	s.wg.Wait()
}

func (s *Scheduler) spawn(run func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		run()
	}()
}

// runDailyAt fires the job at the next HH:MM in the mess timezone, then
// daily. The next run is recomputed each cycle so clock changes stay exact.
func (s *Scheduler) runDailyAt(ctx context.Context, name string, hour, minute int, job func(context.Context)) {
	for {
		next := s.nextDaily(hour, minute)
		s.logger.Info("Job scheduled",
			zap.String("job", name),
			zap.Time("next_run", next),
		)

		if !s.sleepUntil(ctx, next) {
			s.logger.Info("Job stopped", zap.String("job", name))
			return
		}
		job(ctx)
	}
}

func (s *Scheduler) runWeeklyAt(ctx context.Context, name string, weekday time.Weekday, hour int, job func(context.Context)) {
	for {
		next := s.nextWeekly(weekday, hour)
		s.logger.Info("Job scheduled",
			zap.String("job", name),
			zap.Time("next_run", next),
		)

		if !s.sleepUntil(ctx, next) {
			s.logger.Info("Job stopped", zap.String("job", name))
			return
		}
		job(ctx)
	}
}

func (s *Scheduler) runEvery(ctx context.Context, name string, interval time.Duration, job func(context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			job(ctx)
		case <-s.stopChan:
			s.logger.Info("Job stopped", zap.String("job", name))
			return
		case <-ctx.Done():
			return
		}
	}
}

// sleepUntil waits for the moment, reporting false when the scheduler is
// shutting down instead.
func (s *Scheduler) sleepUntil(ctx context.Context, t time.Time) bool {
	timer := time.NewTimer(time.Until(t))
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-s.stopChan:
		return false
	case <-ctx.Done():
		return false
	}
}

func (s *Scheduler) nextDaily(hour, minute int) time.Time {
	now := time.Now().In(s.loc)
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, s.loc)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func (s *Scheduler) nextWeekly(weekday time.Weekday, hour int) time.Time {
	now := time.Now().In(s.loc)
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, s.loc)
	next = next.AddDate(0, 0, (int(weekday)-int(now.Weekday())+7)%7)
	if !next.After(now) {
		next = next.AddDate(0, 0, 7)
	}
	return next
}

func (s *Scheduler) lockCuts(ctx context.Context) {
	count, err := s.cuts.LockTomorrow(ctx, time.Now())
	if err != nil {
		s.logger.Error("Failed to lock tomorrow's mess cuts", zap.Error(err))
		return
	}
	s.logger.Info("Tomorrow's mess cuts locked", zap.Int("on_cut", count))
}

func (s *Scheduler) sendReport(ctx context.Context) {
	if err := s.reports.SendDaily(ctx, time.Now()); err != nil {
		s.logger.Error("Failed to send daily report", zap.Error(err))
	}
}

func (s *Scheduler) warnExpiring(ctx context.Context) {
	count, err := s.payments.SendExpiryWarnings(ctx, time.Now())
	if err != nil {
		s.logger.Error("Failed to send payment expiry warnings", zap.Error(err))
		return
	}
	if count > 0 {
		s.logger.Info("Payment expiry warnings sent", zap.Int("students", count))
	}
}

func (s *Scheduler) retryDeadLetters(ctx context.Context) {
	resolved, failed, err := s.deadLetters.RetryPending(ctx, time.Now())
	if err != nil {
		s.logger.Error("Dead letter retry sweep failed", zap.Error(err))
		return
	}
	if resolved > 0 || failed > 0 {
		s.logger.Info("Dead letter retry sweep finished",
			zap.Int("resolved", resolved),
			zap.Int("failed", failed),
		)
	}
}

func (s *Scheduler) archiveScans(ctx context.Context) {
	deleted, err := s.scans.ArchiveOldScans(ctx, time.Now(), scanRetentionDays)
	if err != nil {
		s.logger.Error("Scan archival failed", zap.Error(err))
		return
	}
	if deleted > 0 {
		s.logger.Info("Old scan events archived", zap.Int64("deleted", deleted))
	}
}
