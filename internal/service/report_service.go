package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/saharamess/messbot/internal/model"
	"github.com/saharamess/messbot/internal/repository"
)

// ReportService assembles the daily digest admins get every morning.
type ReportService struct {
	scans       *ScanService
	studentRepo *repository.StudentRepository
	paymentRepo *repository.PaymentRepository
	cutRepo     *repository.MessCutRepository
	dlqRepo     *repository.DeadLetterRepository
	notifier    Notifier
	sheets      Recorder
	loc         *time.Location
	logger      *zap.Logger
}

func NewReportService(
	scans *ScanService,
	studentRepo *repository.StudentRepository,
	paymentRepo *repository.PaymentRepository,
	cutRepo *repository.MessCutRepository,
	dlqRepo *repository.DeadLetterRepository,
	notifier Notifier,
	sheets Recorder,
	loc *time.Location,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{
		scans:       scans,
		studentRepo: studentRepo,
		paymentRepo: paymentRepo,
		cutRepo:     cutRepo,
		dlqRepo:     dlqRepo,
		notifier:    notifier,
		sheets:      sheets,
		loc:         loc,
		logger:      logger,
	}
}

// BuildDaily renders the report text for the morning of now.
func (s *ReportService) BuildDaily(ctx context.Context, now time.Time) (string, error) {
	local := now.In(s.loc)
	today := model.Day(local)

	stats, err := s.scans.YesterdayStats(ctx, now)
	if err != nil {
		return "", err
	}

	cutsToday, err := s.cutRepo.CountActiveOn(ctx, today)
	if err != nil {
		return "", err
	}
	pendingPayments, err := s.paymentRepo.CountByStatus(ctx, model.PaymentStatusUploaded)
	if err != nil {
		return "", err
	}
	pendingStudents, err := s.studentRepo.CountByStatus(ctx, model.StudentStatusPending)
	if err != nil {
		return "", err
	}
	uncovered, err := s.paymentRepo.CountApprovedWithoutCover(ctx, today)
	if err != nil {
		return "", err
	}
	queued, err := s.dlqRepo.CountPending(ctx)
	if err != nil {
		return "", err
	}

	served := stats.ByResult[model.ScanAllowed]
	blocked := 0
	for result, n := range stats.ByResult {
		if !result.Allowed() {
			blocked += n
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 Mess report — %s\n", local.Format("02 Jan 2006"))
	fmt.Fprintf(&b, "\n🍽 Yesterday: %d meals served\n", served)
	for _, meal := range []model.Meal{model.MealBreakfast, model.MealLunch, model.MealDinner} {
		fmt.Fprintf(&b, "   • %s: %d\n", mealTitle(meal), stats.AllowedByMeal[meal])
	}
	if blocked > 0 {
		fmt.Fprintf(&b, "🚫 Blocked scans: %d\n", blocked)
	}

	b.WriteString("\nToday:\n")
	fmt.Fprintf(&b, "✂️ %d students on mess cut\n", cutsToday)
	fmt.Fprintf(&b, "💳 %d payments awaiting review\n", pendingPayments)
	fmt.Fprintf(&b, "👤 %d registrations awaiting review\n", pendingStudents)
	fmt.Fprintf(&b, "💰 %d approved students without payment cover\n", uncovered)
	if queued > 0 {
		fmt.Fprintf(&b, "📭 %d side effects queued for retry\n", queued)
	}

	return b.String(), nil
}

// SendDaily builds the digest, messages the admins and records a summary row.
func (s *ReportService) SendDaily(ctx context.Context, now time.Time) error {
	text, err := s.BuildDaily(ctx, now)
	if err != nil {
		return fmt.Errorf("build daily report: %w", err)
	}

	s.notifier.NotifyAdmins(text)

	if s.sheets != nil {
		stats, err := s.scans.YesterdayStats(ctx, now)
		if err == nil {
			s.sheets.Record("reports", []any{
				stats.Date,
				stats.ByResult[model.ScanAllowed],
				stats.AllowedByMeal[model.MealBreakfast],
				stats.AllowedByMeal[model.MealLunch],
				stats.AllowedByMeal[model.MealDinner],
			})
		}
	}

	s.logger.Info("Daily report sent", zap.String("date", now.In(s.loc).Format(time.DateOnly)))
	return nil
}

// PaymentSummary groups the payment ledger by review outcome.
type PaymentSummary struct {
	Verified    int `json:"verified"`
	Pending     int `json:"pending"`
	Denied      int `json:"denied"`
	NotUploaded int `json:"not_uploaded"` // approved students with no cover today
}

func (s *ReportService) PaymentSummary(ctx context.Context, now time.Time) (*PaymentSummary, error) {
	today := model.Day(now.In(s.loc))

	verified, err := s.paymentRepo.CountByStatus(ctx, model.PaymentStatusVerified)
	if err != nil {
		return nil, err
	}
	pending, err := s.paymentRepo.CountByStatus(ctx, model.PaymentStatusUploaded)
	if err != nil {
		return nil, err
	}
	denied, err := s.paymentRepo.CountByStatus(ctx, model.PaymentStatusDenied)
	if err != nil {
		return nil, err
	}
	uncovered, err := s.paymentRepo.CountApprovedWithoutCover(ctx, today)
	if err != nil {
		return nil, err
	}

	return &PaymentSummary{
		Verified:    verified,
		Pending:     pending,
		Denied:      denied,
		NotUploaded: uncovered,
	}, nil
}

// CutsInRange lists mess cuts overlapping [from, to], student attached.
func (s *ReportService) CutsInRange(ctx context.Context, from, to time.Time) ([]*model.MessCut, error) {
	return s.cutRepo.ListInRange(ctx, model.Day(from), model.Day(to))
}

func mealTitle(m model.Meal) string {
	switch m {
	case model.MealBreakfast:
		return "Breakfast"
	case model.MealLunch:
		return "Lunch"
	case model.MealDinner:
		return "Dinner"
	default:
		return string(m)
	}
}
