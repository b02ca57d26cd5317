package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/saharamess/messbot/internal/model"
	"github.com/saharamess/messbot/internal/repository"
)

// MaxCycleDays caps a single payment cycle.
const MaxCycleDays = 92

// PaymentUpload is a student's claim of an online payment.
type PaymentUpload struct {
	StudentID     int64     `json:"student_id"`
	CycleStart    time.Time `json:"cycle_start"`
	CycleEnd      time.Time `json:"cycle_end"`
	Amount        int64     `json:"amount"` // paise
	ScreenshotURL string    `json:"screenshot_url"`
}

type PaymentService struct {
	paymentRepo *repository.PaymentRepository
	studentRepo *repository.StudentRepository
	auditRepo   *repository.AuditRepository
	notifier    Notifier
	sheets      Recorder
	loc         *time.Location
	logger      *zap.Logger
}

func NewPaymentService(
	paymentRepo *repository.PaymentRepository,
	studentRepo *repository.StudentRepository,
	auditRepo *repository.AuditRepository,
	notifier Notifier,
	sheets Recorder,
	loc *time.Location,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		studentRepo: studentRepo,
		auditRepo:   auditRepo,
		notifier:    notifier,
		sheets:      sheets,
		loc:         loc,
		logger:      logger,
	}
}

// validateCycle checks the date range. Students cannot claim cycles that
// already ended; admins recording offline payments can.
func (s *PaymentService) validateCycle(start, end, now time.Time, allowPast bool) error {
	start, end = model.Day(start), model.Day(end)
	if end.Before(start) {
		return fmt.Errorf("%w: cycle end is before cycle start", ErrInvalidRange)
	}
	if end.Sub(start) > MaxCycleDays*24*time.Hour {
		return fmt.Errorf("%w: cycle longer than %d days", ErrInvalidRange, MaxCycleDays)
	}
	if !allowPast && end.Before(model.Day(now.In(s.loc))) {
		return fmt.Errorf("%w: cycle already ended", ErrPastDate)
	}
	return nil
}

// Upload stores an UPLOADED online payment and prompts admins to review it.
func (s *PaymentService) Upload(ctx context.Context, up PaymentUpload) (*model.Payment, error) {
	student, err := s.studentRepo.GetByID(ctx, up.StudentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, ErrStudentNotFound
	}
	if !student.IsApproved() {
		return nil, ErrNotApproved
	}

	if up.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if up.ScreenshotURL == "" {
		return nil, fmt.Errorf("%w: screenshot is required", ErrValidation)
	}
	if err := s.validateCycle(up.CycleStart, up.CycleEnd, time.Now(), false); err != nil {
		return nil, err
	}

	overlapping, err := s.paymentRepo.HasOverlapping(ctx, up.StudentID, model.Day(up.CycleStart), model.Day(up.CycleEnd))
	if err != nil {
		return nil, err
	}
	if overlapping {
		return nil, ErrOverlappingPayment
	}

	payment := &model.Payment{
		StudentID:     up.StudentID,
		CycleStart:    model.Day(up.CycleStart),
		CycleEnd:      model.Day(up.CycleEnd),
		Amount:        up.Amount,
		ScreenshotURL: up.ScreenshotURL,
		Status:        model.PaymentStatusUploaded,
		Source:        model.PaymentSourceOnlineScreenshot,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	s.logger.Info("Payment uploaded",
		zap.Int64("payment_id", payment.ID),
		zap.Int64("student_id", up.StudentID),
		zap.Int64("amount", up.Amount),
	)

	s.audit(ctx, model.ActorStudent, up.StudentID, model.EventPaymentUploaded, map[string]any{
		"payment_id":  payment.ID,
		"cycle_start": payment.CycleStart.Format(time.DateOnly),
		"cycle_end":   payment.CycleEnd.Format(time.DateOnly),
		"amount":      payment.Amount,
	})

	s.notifier.AdminsPrompt(
		fmt.Sprintf("💳 Payment uploaded\n\n👤 %s (%s)\n📅 %s — %s\n💰 ₹%d.%02d",
			student.Name, student.RollNo,
			payment.CycleStart.Format("02 Jan 2006"), payment.CycleEnd.Format("02 Jan 2006"),
			payment.Amount/100, payment.Amount%100),
		[]Button{
			{Label: "✅ Verify", Data: fmt.Sprintf("verify_payment:%d", payment.ID)},
			{Label: "❌ Deny", Data: fmt.Sprintf("deny_payment:%d", payment.ID)},
		},
	)

	s.recordPaymentRow(student, payment)

	return payment, nil
}

// Verify marks an UPLOADED payment VERIFIED and tells the student.
func (s *PaymentService) Verify(ctx context.Context, paymentID, adminID int64) (*model.Payment, error) {
	return s.reviewPayment(ctx, paymentID, adminID, model.PaymentStatusVerified, model.EventPaymentVerified,
		"✅ Your payment was verified!\n\nCycle %s — %s is covered. Enjoy your meals.")
}

// Deny marks an UPLOADED payment DENIED and tells the student to retry.
func (s *PaymentService) Deny(ctx context.Context, paymentID, adminID int64) (*model.Payment, error) {
	return s.reviewPayment(ctx, paymentID, adminID, model.PaymentStatusDenied, model.EventPaymentDenied,
		"❌ Your payment for %s — %s was denied.\n\nCheck the screenshot and upload again with /payment.")
}

func (s *PaymentService) reviewPayment(ctx context.Context, paymentID, adminID int64, status model.PaymentStatus, event, studentText string) (*model.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}

	now := time.Now()
	affected, err := s.paymentRepo.SetReview(ctx, paymentID, status, adminID, now)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		// Somebody else reviewed it between our read and the update.
		return nil, ErrAlreadyReviewed
	}
	payment.Status = status
	payment.ReviewerAdmin = &adminID
	payment.ReviewedAt = &now

	s.logger.Info("Payment reviewed",
		zap.Int64("payment_id", paymentID),
		zap.Int64("admin_id", adminID),
		zap.String("status", string(status)),
	)

	s.audit(ctx, model.ActorAdmin, adminID, event, map[string]any{
		"payment_id": paymentID,
		"student_id": payment.StudentID,
	})

	student, err := s.studentRepo.GetByID(ctx, payment.StudentID)
	if err != nil {
		s.logger.Error("Failed to load student for notification", zap.Int64("student_id", payment.StudentID), zap.Error(err))
		return payment, nil
	}
	if student != nil {
		s.notifier.Text(student.TgUserID, fmt.Sprintf(studentText,
			payment.CycleStart.Format("02 Jan 2006"), payment.CycleEnd.Format("02 Jan 2006")))
		s.recordPaymentRow(student, payment)
	}

	return payment, nil
}

// RecordOffline stores an already-verified counter payment on behalf of a
// student. No review round trip; the admin is the reviewer.
func (s *PaymentService) RecordOffline(ctx context.Context, studentID int64, cycleStart, cycleEnd time.Time, amount, adminID int64) (*model.Payment, error) {
	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, ErrStudentNotFound
	}
	if !student.IsApproved() {
		return nil, ErrNotApproved
	}

	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if err := s.validateCycle(cycleStart, cycleEnd, time.Now(), true); err != nil {
		return nil, err
	}

	overlapping, err := s.paymentRepo.HasOverlapping(ctx, studentID, model.Day(cycleStart), model.Day(cycleEnd))
	if err != nil {
		return nil, err
	}
	if overlapping {
		return nil, ErrOverlappingPayment
	}

	now := time.Now()
	payment := &model.Payment{
		StudentID:     studentID,
		CycleStart:    model.Day(cycleStart),
		CycleEnd:      model.Day(cycleEnd),
		Amount:        amount,
		Status:        model.PaymentStatusVerified,
		Source:        model.PaymentSourceOfflineManual,
		ReviewerAdmin: &adminID,
		ReviewedAt:    &now,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	s.logger.Info("Offline payment recorded",
		zap.Int64("payment_id", payment.ID),
		zap.Int64("student_id", studentID),
		zap.Int64("admin_id", adminID),
	)

	s.audit(ctx, model.ActorAdmin, adminID, model.EventPaymentOffline, map[string]any{
		"payment_id": payment.ID,
		"student_id": studentID,
		"amount":     amount,
	})

	s.notifier.Text(student.TgUserID, fmt.Sprintf(
		"💵 An offline payment was recorded for you.\n\nCycle %s — %s is covered.",
		payment.CycleStart.Format("02 Jan 2006"), payment.CycleEnd.Format("02 Jan 2006")))

	s.recordPaymentRow(student, payment)

	return payment, nil
}

// HasValidPayment reports whether a verified cycle covers the given day.
func (s *PaymentService) HasValidPayment(ctx context.Context, studentID int64, day time.Time) (bool, error) {
	return s.paymentRepo.HasVerifiedCovering(ctx, studentID, model.Day(day.In(s.loc)))
}

// PendingPayments returns uploads waiting for review, students joined.
func (s *PaymentService) PendingPayments(ctx context.Context) ([]*model.Payment, error) {
	return s.paymentRepo.ListByStatus(ctx, model.PaymentStatusUploaded)
}

// HistoryForStudent returns a student's payments, newest first.
func (s *PaymentService) HistoryForStudent(ctx context.Context, studentID int64) ([]*model.Payment, error) {
	return s.paymentRepo.ListForStudent(ctx, studentID)
}

// LatestForStudent returns the newest payment, nil when there is none.
func (s *PaymentService) LatestForStudent(ctx context.Context, studentID int64) (*model.Payment, error) {
	return s.paymentRepo.LatestForStudent(ctx, studentID)
}

// SendExpiryWarnings messages every student whose verified cycle ends in
// exactly three days and returns how many were warned.
func (s *PaymentService) SendExpiryWarnings(ctx context.Context, now time.Time) (int, error) {
	target := model.Day(now.In(s.loc)).AddDate(0, 0, 3)

	payments, err := s.paymentRepo.ListVerifiedEndingOn(ctx, target)
	if err != nil {
		return 0, err
	}

	for _, p := range payments {
		if p.Student == nil {
			continue
		}
		s.notifier.Text(p.Student.TgUserID, fmt.Sprintf(
			"⏳ Your mess payment cycle ends on %s.\n\nRenew with /payment to keep your QR working.",
			p.CycleEnd.Format("02 Jan 2006")))
	}

	if len(payments) > 0 {
		s.logger.Info("Expiry warnings sent", zap.Int("count", len(payments)))
	}

	return len(payments), nil
}

func (s *PaymentService) recordPaymentRow(student *model.Student, p *model.Payment) {
	if s.sheets == nil {
		return
	}
	s.sheets.Record("payments", []any{
		p.ID, student.RollNo,
		p.CycleStart.Format(time.DateOnly), p.CycleEnd.Format(time.DateOnly),
		float64(p.Amount) / 100, string(p.Status), string(p.Source),
	})
}

func (s *PaymentService) audit(ctx context.Context, actor model.ActorType, actorID int64, event string, payload map[string]any) {
	if err := s.auditRepo.Log(ctx, actor, actorID, event, payload); err != nil {
		s.logger.Error("Failed to write audit log", zap.String("event", event), zap.Error(err))
	}
}
