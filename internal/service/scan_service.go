package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/saharamess/messbot/internal/model"
	"github.com/saharamess/messbot/internal/qr"
	"github.com/saharamess/messbot/internal/repository"
)

// gateChecks are the facts the verdict is decided from, gathered per scan.
type gateChecks struct {
	approved  bool
	paymentOK bool
	onCut     bool
	closed    bool
	duplicate bool
}

// verdict applies the gate rules in precedence order. The first failing rule
// names the result, so a student with several problems hears the most
// fundamental one.
func verdict(c gateChecks) model.ScanResult {
	switch {
	case !c.approved:
		return model.ScanBlockedStatus
	case !c.paymentOK:
		return model.ScanBlockedNoPayment
	case c.onCut:
		return model.ScanBlockedCut
	case c.closed:
		return model.ScanBlockedClosure
	case c.duplicate:
		return model.ScanBlockedDuplicate
	default:
		return model.ScanAllowed
	}
}

// VerdictText is the one-line explanation shown on the scanner screen.
func VerdictText(r model.ScanResult) string {
	switch r {
	case model.ScanAllowed:
		return "Allowed"
	case model.ScanBlockedStatus:
		return "Student is not approved"
	case model.ScanBlockedNoPayment:
		return "No verified payment for today"
	case model.ScanBlockedCut:
		return "Student is on a mess cut today"
	case model.ScanBlockedClosure:
		return "Mess is closed today"
	case model.ScanBlockedDuplicate:
		return "Already served this meal today"
	default:
		return string(r)
	}
}

// resolveMeal picks the meal being scanned for: an explicit override from the
// scanner wins, otherwise the wall clock decides.
func resolveMeal(schedule model.MealSchedule, override model.Meal, now time.Time) (model.Meal, error) {
	if override != "" {
		if !override.Valid() {
			return "", fmt.Errorf("%w: unknown meal %q", ErrValidation, override)
		}
		return override, nil
	}
	meal := schedule.Current(now)
	if meal == "" {
		return "", ErrNoActiveMeal
	}
	return meal, nil
}

// ScanVerdict is what the counter sees after presenting a QR.
type ScanVerdict struct {
	Result    model.ScanResult `json:"result"`
	Reason    string           `json:"reason"`
	Meal      model.Meal       `json:"meal"`
	Student   *model.Student   `json:"student"`
	ScannedAt time.Time        `json:"scanned_at"`
}

// StudentSnapshot is the manual-lookup view for scanner operators.
type StudentSnapshot struct {
	Student    *model.Student `json:"student"`
	PaymentOK  bool           `json:"payment_ok"`
	OnCut      bool           `json:"on_cut"`
	MessClosed bool           `json:"mess_closed"`
}

// DayStats aggregates one day of scans for dashboards and reports.
type DayStats struct {
	Date          string                   `json:"date"`
	ByResult      map[model.ScanResult]int `json:"by_result"`
	AllowedByMeal map[model.Meal]int       `json:"allowed_by_meal"`
}

type ScanService struct {
	studentRepo *repository.StudentRepository
	paymentRepo *repository.PaymentRepository
	cutRepo     *repository.MessCutRepository
	closureRepo *repository.ClosureRepository
	scanRepo    *repository.ScanRepository
	auditRepo   *repository.AuditRepository
	signer      *qr.Signer
	meals       model.MealSchedule
	loc         *time.Location
	notifier    Notifier
	sheets      Recorder
	feed        Broadcaster
	logger      *zap.Logger
}

func NewScanService(
	studentRepo *repository.StudentRepository,
	paymentRepo *repository.PaymentRepository,
	cutRepo *repository.MessCutRepository,
	closureRepo *repository.ClosureRepository,
	scanRepo *repository.ScanRepository,
	auditRepo *repository.AuditRepository,
	signer *qr.Signer,
	meals model.MealSchedule,
	loc *time.Location,
	notifier Notifier,
	sheets Recorder,
	feed Broadcaster,
	logger *zap.Logger,
) *ScanService {
	return &ScanService{
		studentRepo: studentRepo,
		paymentRepo: paymentRepo,
		cutRepo:     cutRepo,
		closureRepo: closureRepo,
		scanRepo:    scanRepo,
		auditRepo:   auditRepo,
		signer:      signer,
		meals:       meals,
		loc:         loc,
		notifier:    notifier,
		sheets:      sheets,
		feed:        feed,
		logger:      logger,
	}
}

// Scan verifies a presented QR payload and decides whether to serve. Every
// decision is recorded, blocked ones included. mealOverride lets the scanner
// force a meal outside its window; empty means use the wall clock.
func (s *ScanService) Scan(ctx context.Context, rawPayload string, staffTokenID *int64, deviceInfo string, mealOverride model.Meal) (*ScanVerdict, error) {
	payload, err := s.signer.Verify(rawPayload)
	if err != nil {
		return nil, ErrInvalidQR
	}

	student, err := s.studentRepo.GetByID(ctx, payload.StudentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, ErrInvalidQR
	}

	// A signature from a previous card generation is cryptographically fine
	// but revoked. Refuse it so regeneration actually cuts off old cards.
	if payload.Version != student.QRVersion || payload.Nonce != student.QRNonce {
		return nil, ErrStaleQR
	}

	now := time.Now().In(s.loc)
	meal, err := resolveMeal(s.meals, mealOverride, now)
	if err != nil {
		return nil, err
	}

	today := model.Day(now)
	checks := gateChecks{approved: student.IsApproved()}

	if checks.approved {
		checks.paymentOK, err = s.paymentRepo.HasVerifiedCovering(ctx, student.ID, today)
		if err != nil {
			return nil, err
		}
		checks.onCut, err = s.cutRepo.HasCutOn(ctx, student.ID, today)
		if err != nil {
			return nil, err
		}
		checks.closed, err = s.closureRepo.HasClosureOn(ctx, today)
		if err != nil {
			return nil, err
		}
		checks.duplicate, err = s.scanRepo.HasAllowedScan(ctx, student.ID, meal, today, today.AddDate(0, 0, 1))
		if err != nil {
			return nil, err
		}
	}

	result := verdict(checks)

	event := &model.ScanEvent{
		StudentID:    student.ID,
		Meal:         meal,
		StaffTokenID: staffTokenID,
		Result:       result,
		DeviceInfo:   deviceInfo,
	}
	if err := s.scanRepo.Create(ctx, event); err != nil {
		return nil, err
	}

	s.logger.Info("Qr scanned",
		zap.Int64("student_id", student.ID),
		zap.String("meal", string(meal)),
		zap.String("result", string(result)),
	)

	s.audit(ctx, model.ActorStaff, student.ID, model.EventQRScanned, map[string]any{
		"scan_id": event.ID,
		"meal":    string(meal),
		"result":  string(result),
	})

	if result.Allowed() {
		s.notifier.Text(student.TgUserID, fmt.Sprintf("🍽 %s served at %s. Bon appétit!",
			meal, event.ScannedAt.In(s.loc).Format("15:04")))
	}

	if s.sheets != nil {
		s.sheets.Record("scan_events", []any{
			event.ID, student.RollNo, string(meal), string(result),
			event.ScannedAt.In(s.loc).Format(time.RFC3339), deviceInfo,
		})
	}

	if s.feed != nil {
		s.feed.BroadcastScan(ScanFeedEvent{
			StudentName: student.Name,
			RollNo:      student.RollNo,
			Meal:        string(meal),
			Result:      string(result),
			ScannedAt:   event.ScannedAt,
		})
	}

	return &ScanVerdict{
		Result:    result,
		Reason:    VerdictText(result),
		Meal:      meal,
		Student:   student,
		ScannedAt: event.ScannedAt,
	}, nil
}

// Snapshot is the manual fallback when a QR will not scan: the operator looks
// the student up and sees the same facts the verdict would use.
func (s *ScanService) Snapshot(ctx context.Context, studentID int64) (*StudentSnapshot, error) {
	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, ErrStudentNotFound
	}

	today := model.Day(time.Now().In(s.loc))
	snap := &StudentSnapshot{Student: student}

	if snap.PaymentOK, err = s.paymentRepo.HasVerifiedCovering(ctx, studentID, today); err != nil {
		return nil, err
	}
	if snap.OnCut, err = s.cutRepo.HasCutOn(ctx, studentID, today); err != nil {
		return nil, err
	}
	if snap.MessClosed, err = s.closureRepo.HasClosureOn(ctx, today); err != nil {
		return nil, err
	}

	return snap, nil
}

// TodayStats aggregates today's scans.
func (s *ScanService) TodayStats(ctx context.Context, now time.Time) (*DayStats, error) {
	day := model.Day(now.In(s.loc))
	return s.statsFor(ctx, day)
}

// YesterdayStats aggregates the previous day, used by the morning report.
func (s *ScanService) YesterdayStats(ctx context.Context, now time.Time) (*DayStats, error) {
	day := model.Day(now.In(s.loc)).AddDate(0, 0, -1)
	return s.statsFor(ctx, day)
}

func (s *ScanService) statsFor(ctx context.Context, day time.Time) (*DayStats, error) {
	from, to := day, day.AddDate(0, 0, 1)

	byResult, err := s.scanRepo.CountByResult(ctx, from, to)
	if err != nil {
		return nil, err
	}
	byMeal, err := s.scanRepo.CountAllowedByMeal(ctx, from, to)
	if err != nil {
		return nil, err
	}

	return &DayStats{
		Date:          day.Format(time.DateOnly),
		ByResult:      byResult,
		AllowedByMeal: byMeal,
	}, nil
}

// RecentScans returns the latest scans with students joined.
func (s *ScanService) RecentScans(ctx context.Context, limit int) ([]*model.ScanEvent, error) {
	return s.scanRepo.ListRecent(ctx, limit)
}

// ArchiveOldScans copies scans older than the retention window to the
// spreadsheet archive and deletes them. Returns how many rows were removed.
func (s *ScanService) ArchiveOldScans(ctx context.Context, now time.Time, retentionDays int) (int64, error) {
	before := model.Day(now.In(s.loc)).AddDate(0, 0, -retentionDays)

	if s.sheets == nil {
		return s.scanRepo.DeleteOlderThan(ctx, before)
	}

	const batch = 500
	var deleted int64
	for {
		events, err := s.scanRepo.ListOlderThan(ctx, before, batch)
		if err != nil {
			return deleted, err
		}
		if len(events) == 0 {
			break
		}

		ids := make([]int64, 0, len(events))
		for _, ev := range events {
			roll := ""
			if ev.Student != nil {
				roll = ev.Student.RollNo
			}
			s.sheets.Record("scan_events_archive", []any{
				ev.ID, roll, string(ev.Meal), string(ev.Result),
				ev.ScannedAt.In(s.loc).Format(time.RFC3339), ev.DeviceInfo,
			})
			ids = append(ids, ev.ID)
		}

		n, err := s.scanRepo.DeleteByIDs(ctx, ids)
		if err != nil {
			return deleted, err
		}
		deleted += n
	}

	if deleted > 0 {
		s.logger.Info("Old scans archived",
			zap.Int64("deleted", deleted),
			zap.String("before", before.Format(time.DateOnly)),
		)
	}
	return deleted, nil
}

func (s *ScanService) audit(ctx context.Context, actor model.ActorType, actorID int64, event string, payload map[string]any) {
	if err := s.auditRepo.Log(ctx, actor, actorID, event, payload); err != nil {
		s.logger.Error("Failed to write audit log", zap.String("event", event), zap.Error(err))
	}
}
