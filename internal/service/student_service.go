package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/saharamess/messbot/internal/model"
	"github.com/saharamess/messbot/internal/qr"
	"github.com/saharamess/messbot/internal/repository"
)

// Registration field limits.
const (
	NameMinLength = 2
	NameMaxLength = 120
	RoomMaxLength = 16
)

var (
	rollNoPattern = regexp.MustCompile(`^[A-Za-z0-9/-]{2,32}$`)
	phonePattern  = regexp.MustCompile(`^\+?1?\d{9,15}$`)
)

// Registration is a student's application to use the mess.
type Registration struct {
	TgUserID int64  `json:"tg_user_id"`
	Name     string `json:"name"`
	RollNo   string `json:"roll_no"`
	RoomNo   string `json:"room_no"`
	Phone    string `json:"phone"`
}

type StudentService struct {
	studentRepo  *repository.StudentRepository
	settingsRepo *repository.SettingsRepository
	auditRepo    *repository.AuditRepository
	signer       *qr.Signer
	cards        *qr.CardRenderer
	notifier     Notifier
	sheets       Recorder
	logger       *zap.Logger
}

func NewStudentService(
	studentRepo *repository.StudentRepository,
	settingsRepo *repository.SettingsRepository,
	auditRepo *repository.AuditRepository,
	signer *qr.Signer,
	cards *qr.CardRenderer,
	notifier Notifier,
	sheets Recorder,
	logger *zap.Logger,
) *StudentService {
	return &StudentService{
		studentRepo:  studentRepo,
		settingsRepo: settingsRepo,
		auditRepo:    auditRepo,
		signer:       signer,
		cards:        cards,
		notifier:     notifier,
		sheets:       sheets,
		logger:       logger,
	}
}

// ValidateRegistration normalizes and checks the application fields.
func ValidateRegistration(reg *Registration) error {
	reg.Name = strings.TrimSpace(reg.Name)
	reg.RollNo = strings.ToUpper(strings.TrimSpace(reg.RollNo))
	reg.RoomNo = strings.TrimSpace(reg.RoomNo)
	reg.Phone = strings.TrimSpace(reg.Phone)

	if len(reg.Name) < NameMinLength || len(reg.Name) > NameMaxLength {
		return fmt.Errorf("%w: name must be %d-%d characters", ErrValidation, NameMinLength, NameMaxLength)
	}
	if !rollNoPattern.MatchString(reg.RollNo) {
		return fmt.Errorf("%w: roll number has an invalid format", ErrValidation)
	}
	if reg.RoomNo == "" || len(reg.RoomNo) > RoomMaxLength {
		return fmt.Errorf("%w: room number must be 1-%d characters", ErrValidation, RoomMaxLength)
	}
	if !phonePattern.MatchString(reg.Phone) {
		return fmt.Errorf("%w: phone number has an invalid format", ErrValidation)
	}
	return nil
}

// Register creates a pending student and alerts the admins.
func (s *StudentService) Register(ctx context.Context, reg Registration) (*model.Student, error) {
	if err := ValidateRegistration(&reg); err != nil {
		return nil, err
	}

	existing, err := s.studentRepo.GetByTgUserID(ctx, reg.TgUserID)
	if err != nil {
		return nil, fmt.Errorf("check existing student: %w", err)
	}
	if existing != nil {
		return nil, ErrAlreadyRegistered
	}

	taken, err := s.studentRepo.RollNoExists(ctx, reg.RollNo)
	if err != nil {
		return nil, fmt.Errorf("check roll number: %w", err)
	}
	if taken {
		return nil, ErrRollNoTaken
	}

	nonce, err := qr.NewNonce()
	if err != nil {
		return nil, err
	}

	student := &model.Student{
		TgUserID:  reg.TgUserID,
		Name:      reg.Name,
		RollNo:    reg.RollNo,
		RoomNo:    reg.RoomNo,
		Phone:     reg.Phone,
		Status:    model.StudentStatusPending,
		QRVersion: 1,
		QRNonce:   nonce,
	}

	if err := s.studentRepo.Create(ctx, student); err != nil {
		return nil, err
	}

	s.logger.Info("Registration submitted",
		zap.Int64("student_id", student.ID),
		zap.String("roll_no", student.RollNo),
	)

	s.audit(ctx, model.ActorStudent, student.ID, model.EventRegistrationSubmitted, map[string]any{
		"roll_no": student.RollNo,
		"name":    student.Name,
	})

	s.notifier.AdminsPrompt(
		fmt.Sprintf("🆕 New registration\n\n👤 %s\n🎓 Roll: %s\n🚪 Room: %s\n📱 %s",
			student.Name, student.RollNo, student.RoomNo, student.Phone),
		[]Button{
			{Label: "✅ Approve", Data: fmt.Sprintf("approve_student:%d", student.ID)},
			{Label: "❌ Deny", Data: fmt.Sprintf("deny_student:%d", student.ID)},
		},
	)

	if s.sheets != nil {
		s.sheets.Record("registrations", []any{
			student.ID, student.TgUserID, student.Name, student.RollNo,
			student.RoomNo, student.Phone, string(student.Status),
		})
	}

	return student, nil
}

// Approve moves a pending student to APPROVED and sends them their QR card.
func (s *StudentService) Approve(ctx context.Context, studentID, adminID int64) (*model.Student, error) {
	student, err := s.review(ctx, studentID, adminID, model.StudentStatusApproved, model.EventStudentApproved)
	if err != nil {
		return nil, err
	}

	png, err := s.CardPNG(student)
	if err != nil {
		s.logger.Error("Failed to render qr card", zap.Int64("student_id", student.ID), zap.Error(err))
		s.notifier.Text(student.TgUserID, "✅ Your mess registration is approved!\n\nUse /myqr to get your QR card.")
		return student, nil
	}

	s.notifier.Photo(student.TgUserID, png,
		"✅ Your mess registration is approved!\n\nShow this QR code at the counter. Keep it private.")

	return student, nil
}

// Deny rejects a pending student.
func (s *StudentService) Deny(ctx context.Context, studentID, adminID int64) (*model.Student, error) {
	student, err := s.review(ctx, studentID, adminID, model.StudentStatusDenied, model.EventStudentDenied)
	if err != nil {
		return nil, err
	}

	s.notifier.Text(student.TgUserID,
		"❌ Your mess registration was denied.\n\nContact the mess office if you believe this is a mistake.")

	return student, nil
}

// review applies an admin decision to a PENDING student.
func (s *StudentService) review(ctx context.Context, studentID, adminID int64, status model.StudentStatus, event string) (*model.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, ErrStudentNotFound
	}
	if student.Status != model.StudentStatusPending {
		return nil, ErrAlreadyReviewed
	}

	if err := s.studentRepo.UpdateStatus(ctx, studentID, status); err != nil {
		return nil, err
	}
	student.Status = status

	s.logger.Info("Registration reviewed",
		zap.Int64("student_id", studentID),
		zap.Int64("admin_id", adminID),
		zap.String("status", string(status)),
	)

	s.audit(ctx, model.ActorAdmin, adminID, event, map[string]any{
		"student_id": studentID,
		"roll_no":    student.RollNo,
	})

	if s.sheets != nil {
		s.sheets.Record("registrations", []any{
			student.ID, student.TgUserID, student.Name, student.RollNo,
			student.RoomNo, student.Phone, string(status),
		})
	}

	return student, nil
}

// GetByTgUserID returns the student owning a Telegram account.
func (s *StudentService) GetByTgUserID(ctx context.Context, tgUserID int64) (*model.Student, error) {
	return s.studentRepo.GetByTgUserID(ctx, tgUserID)
}

// GetByID returns a student by primary key.
func (s *StudentService) GetByID(ctx context.Context, id int64) (*model.Student, error) {
	return s.studentRepo.GetByID(ctx, id)
}

// GetByRollNo returns a student by roll number.
func (s *StudentService) GetByRollNo(ctx context.Context, rollNo string) (*model.Student, error) {
	return s.studentRepo.GetByRollNo(ctx, strings.ToUpper(strings.TrimSpace(rollNo)))
}

// PendingRegistrations returns students waiting for review.
func (s *StudentService) PendingRegistrations(ctx context.Context) ([]*model.Student, error) {
	return s.studentRepo.ListByStatus(ctx, model.StudentStatusPending)
}

// CardPNG renders the student's current QR card.
func (s *StudentService) CardPNG(student *model.Student) ([]byte, error) {
	payload := s.signer.Sign(qr.Payload{
		StudentID: student.ID,
		Version:   student.QRVersion,
		Nonce:     student.QRNonce,
	})
	return s.cards.Render(payload, "Mess Pass", fmt.Sprintf("%s · %s", student.Name, student.RollNo))
}

// RegenerateQR rotates one student's QR and returns the updated row. Old
// cards stop scanning immediately.
func (s *StudentService) RegenerateQR(ctx context.Context, studentID int64) (*model.Student, error) {
	nonce, err := qr.NewNonce()
	if err != nil {
		return nil, err
	}

	student, err := s.studentRepo.RotateQR(ctx, studentID, nonce)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, ErrStudentNotFound
	}

	s.audit(ctx, model.ActorSystem, 0, model.EventQRRegenerated, map[string]any{
		"student_id": studentID,
		"qr_version": student.QRVersion,
	})

	return student, nil
}

// BulkRegenerateQR bumps the secret version and rotates every approved
// student, pushing fresh cards. Per-student failures are logged and skipped.
func (s *StudentService) BulkRegenerateQR(ctx context.Context, adminID int64) (int, error) {
	version, err := s.settingsRepo.BumpQRSecretVersion(ctx)
	if err != nil {
		return 0, err
	}

	students, err := s.studentRepo.ListByStatus(ctx, model.StudentStatusApproved)
	if err != nil {
		return 0, err
	}

	rotated := 0
	for _, student := range students {
		nonce, err := qr.NewNonce()
		if err != nil {
			s.logger.Error("Failed to generate nonce", zap.Int64("student_id", student.ID), zap.Error(err))
			continue
		}

		updated, err := s.studentRepo.RotateQR(ctx, student.ID, nonce)
		if err != nil || updated == nil {
			s.logger.Error("Failed to rotate qr", zap.Int64("student_id", student.ID), zap.Error(err))
			continue
		}
		rotated++

		png, err := s.CardPNG(updated)
		if err != nil {
			s.logger.Error("Failed to render qr card", zap.Int64("student_id", student.ID), zap.Error(err))
			continue
		}
		s.notifier.Photo(updated.TgUserID, png,
			"🔄 Your mess QR code was regenerated. Old codes no longer work.")
	}

	s.logger.Info("Bulk qr regeneration finished",
		zap.Int("rotated", rotated),
		zap.Int("secret_version", version),
	)

	s.audit(ctx, model.ActorAdmin, adminID, model.EventQRBulkRegenerated, map[string]any{
		"rotated":        rotated,
		"secret_version": version,
	})

	return rotated, nil
}

// audit logs the event, never failing the caller.
func (s *StudentService) audit(ctx context.Context, actor model.ActorType, actorID int64, event string, payload map[string]any) {
	if err := s.auditRepo.Log(ctx, actor, actorID, event, payload); err != nil {
		s.logger.Error("Failed to write audit log", zap.String("event", event), zap.Error(err))
	}
}
