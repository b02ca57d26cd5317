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

// MaxCutDays caps a single mess cut.
const MaxCutDays = 62

// CutoffPolicy decides when students can still apply a cut for tomorrow.
// After the daily deadline the earliest cut moves one day out.
type CutoffPolicy struct {
	Loc    *time.Location
	Hour   int
	Minute int
}

// Deadline returns today's cutoff moment, end of the minute inclusive.
func (p CutoffPolicy) Deadline(now time.Time) time.Time {
	local := now.In(p.Loc)
	return time.Date(local.Year(), local.Month(), local.Day(), p.Hour, p.Minute, 59, 0, p.Loc)
}

// FirstAllowedFrom returns the earliest start date a student may cut from.
// Before the deadline that is today; afterwards tomorrow is sealed too, so
// the earliest start moves to the day after.
func (p CutoffPolicy) FirstAllowedFrom(now time.Time) time.Time {
	today := model.Day(now.In(p.Loc))
	if now.After(p.Deadline(now)) {
		return today.AddDate(0, 0, 2)
	}
	return today
}

// checkCutWindow validates a cut range against the policy. The returned flag
// reports whether the range respects the cutoff, which admins may override.
func checkCutWindow(policy CutoffPolicy, from, to, now time.Time) (cutoffOK bool, err error) {
	from, to = model.Day(from), model.Day(to)
	if to.Before(from) {
		return false, fmt.Errorf("%w: last day is before first day", ErrInvalidRange)
	}
	if to.Sub(from) > MaxCutDays*24*time.Hour {
		return false, fmt.Errorf("%w: cut longer than %d days", ErrInvalidRange, MaxCutDays)
	}

	today := model.Day(now.In(policy.Loc))
	if to.Before(today) {
		return false, ErrPastDate
	}

	// The deadline only guards near starts. Cuts beginning the day after
	// tomorrow or later can be booked at any hour.
	tomorrow := today.AddDate(0, 0, 1)
	if !from.After(tomorrow) {
		return !now.After(policy.Deadline(now)), nil
	}
	return true, nil
}

type MessCutService struct {
	cutRepo     *repository.MessCutRepository
	closureRepo *repository.ClosureRepository
	studentRepo *repository.StudentRepository
	auditRepo   *repository.AuditRepository
	notifier    Notifier
	sheets      Recorder
	policy      CutoffPolicy
	logger      *zap.Logger
}

func NewMessCutService(
	cutRepo *repository.MessCutRepository,
	closureRepo *repository.ClosureRepository,
	studentRepo *repository.StudentRepository,
	auditRepo *repository.AuditRepository,
	notifier Notifier,
	sheets Recorder,
	policy CutoffPolicy,
	logger *zap.Logger,
) *MessCutService {
	return &MessCutService{
		cutRepo:     cutRepo,
		closureRepo: closureRepo,
		studentRepo: studentRepo,
		auditRepo:   auditRepo,
		notifier:    notifier,
		sheets:      sheets,
		policy:      policy,
		logger:      logger,
	}
}

// Apply books a mess cut. Students are held to the cutoff; admins may apply
// late, in which case the cut is stored with cutoff_ok=false.
func (s *MessCutService) Apply(ctx context.Context, studentID int64, from, to time.Time, appliedBy model.CutAppliedBy) (*model.MessCut, error) {
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

	now := time.Now()
	cutoffOK, err := checkCutWindow(s.policy, from, to, now)
	if err != nil {
		return nil, err
	}
	if appliedBy == model.CutAppliedByStudent && !cutoffOK {
		return nil, ErrCutoffPassed
	}

	from, to = model.Day(from), model.Day(to)
	overlapping, err := s.cutRepo.HasOverlapping(ctx, studentID, from, to)
	if err != nil {
		return nil, err
	}
	if overlapping {
		return nil, ErrOverlappingCut
	}

	cut := &model.MessCut{
		StudentID: studentID,
		FromDate:  from,
		ToDate:    to,
		AppliedBy: appliedBy,
		CutoffOK:  cutoffOK,
	}
	if err := s.cutRepo.Create(ctx, cut); err != nil {
		return nil, err
	}

	s.logger.Info("Mess cut applied",
		zap.Int64("cut_id", cut.ID),
		zap.Int64("student_id", studentID),
		zap.String("from", from.Format(time.DateOnly)),
		zap.String("to", to.Format(time.DateOnly)),
		zap.String("applied_by", string(appliedBy)),
	)

	actor, actorID := model.ActorStudent, studentID
	if appliedBy == model.CutAppliedByAdmin {
		actor, actorID = model.ActorAdmin, 0
	}
	s.audit(ctx, actor, actorID, model.EventMessCutApplied, map[string]any{
		"cut_id":     cut.ID,
		"student_id": studentID,
		"from":       from.Format(time.DateOnly),
		"to":         to.Format(time.DateOnly),
		"cutoff_ok":  cutoffOK,
	})

	if s.sheets != nil {
		s.sheets.Record("mess_cuts", []any{
			cut.ID, student.RollNo,
			from.Format(time.DateOnly), to.Format(time.DateOnly),
			string(appliedBy), cutoffOK,
		})
	}

	return cut, nil
}

// FirstAllowedFrom exposes the policy's earliest start date for prompts.
func (s *MessCutService) FirstAllowedFrom(now time.Time) time.Time {
	return s.policy.FirstAllowedFrom(now)
}

// CutsForStudent returns a student's cuts, newest first.
func (s *MessCutService) CutsForStudent(ctx context.Context, studentID int64) ([]*model.MessCut, error) {
	return s.cutRepo.ListForStudent(ctx, studentID)
}

// LockTomorrow finalizes tomorrow's cuts at the cutoff and briefs the admins
// so the kitchen can plan quantities. Returns the number of students off.
func (s *MessCutService) LockTomorrow(ctx context.Context, now time.Time) (int, error) {
	tomorrow := model.Day(now.In(s.policy.Loc)).AddDate(0, 0, 1)

	count, err := s.cutRepo.CountActiveOn(ctx, tomorrow)
	if err != nil {
		return 0, err
	}

	starting, err := s.cutRepo.ListStartingOn(ctx, tomorrow)
	if err != nil {
		return 0, err
	}

	s.audit(ctx, model.ActorSystem, 0, model.EventMessCutLocked, map[string]any{
		"date":     tomorrow.Format(time.DateOnly),
		"active":   count,
		"starting": len(starting),
	})

	summary, confirmations := cutLockMessages(tomorrow, count, starting)
	s.notifier.NotifyAdmins(summary)
	for _, n := range confirmations {
		s.notifier.Text(n.tgUserID, n.text)
	}

	s.logger.Info("Mess cuts locked",
		zap.String("date", tomorrow.Format(time.DateOnly)),
		zap.Int("active", count),
		zap.Int("confirmed", len(confirmations)),
	)

	return count, nil
}

type cutLockNotice struct {
	tgUserID int64
	text     string
}

// cutLockMessages renders the lock notifications: one kitchen brief for the
// admins and one confirmation per student whose cut starts tomorrow.
func cutLockMessages(tomorrow time.Time, active int, starting []*model.MessCut) (string, []cutLockNotice) {
	var b strings.Builder
	fmt.Fprintf(&b, "🔒 Mess cuts locked for %s\n\n🍽 %d students off tomorrow", tomorrow.Format("02 Jan 2006"), active)

	var confirmations []cutLockNotice
	if len(starting) > 0 {
		b.WriteString("\n\nStarting tomorrow:")
		for _, cut := range starting {
			if cut.Student == nil {
				continue
			}
			fmt.Fprintf(&b, "\n• %s (%s) until %s", cut.Student.Name, cut.Student.RollNo, cut.ToDate.Format("02 Jan"))
			confirmations = append(confirmations, cutLockNotice{
				tgUserID: cut.Student.TgUserID,
				text: fmt.Sprintf("✅ Your mess cut %s is confirmed and locked.",
					formatDatesShort(cut.FromDate, cut.ToDate)),
			})
		}
	}
	return b.String(), confirmations
}

func formatDatesShort(from, to time.Time) string {
	if model.Day(from).Equal(model.Day(to)) {
		return "for " + from.Format("02 Jan 2006")
	}
	return fmt.Sprintf("from %s to %s", from.Format("02 Jan 2006"), to.Format("02 Jan 2006"))
}

// DeclareClosure records a mess-wide closure and broadcasts it to every
// approved student. Scans during the closure are refused.
func (s *MessCutService) DeclareClosure(ctx context.Context, from, to time.Time, reason string, adminID int64) (*model.MessClosure, error) {
	from, to = model.Day(from), model.Day(to)
	now := time.Now()

	if to.Before(from) {
		return nil, fmt.Errorf("%w: last day is before first day", ErrInvalidRange)
	}
	if from.Before(model.Day(now.In(s.policy.Loc))) {
		return nil, ErrPastDate
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: reason is required", ErrValidation)
	}

	overlapping, err := s.closureRepo.HasOverlapping(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if overlapping {
		return nil, ErrOverlappingClosure
	}

	closure := &model.MessClosure{
		FromDate:       from,
		ToDate:         to,
		Reason:         reason,
		CreatedByAdmin: adminID,
	}
	if err := s.closureRepo.Create(ctx, closure); err != nil {
		return nil, err
	}

	s.logger.Info("Mess closure declared",
		zap.Int64("closure_id", closure.ID),
		zap.String("from", from.Format(time.DateOnly)),
		zap.String("to", to.Format(time.DateOnly)),
	)

	s.audit(ctx, model.ActorAdmin, adminID, model.EventClosureDeclared, map[string]any{
		"closure_id": closure.ID,
		"from":       from.Format(time.DateOnly),
		"to":         to.Format(time.DateOnly),
		"reason":     reason,
	})

	students, err := s.studentRepo.ListByStatus(ctx, model.StudentStatusApproved)
	if err != nil {
		s.logger.Error("Failed to load students for closure broadcast", zap.Error(err))
		return closure, nil
	}

	text := fmt.Sprintf("📢 Mess closed %s — %s\n\nReason: %s\n\nNo meals will be served on these days.",
		from.Format("02 Jan 2006"), to.Format("02 Jan 2006"), reason)
	if from.Equal(to) {
		text = fmt.Sprintf("📢 Mess closed on %s\n\nReason: %s\n\nNo meals will be served that day.",
			from.Format("02 Jan 2006"), reason)
	}
	for _, student := range students {
		s.notifier.Text(student.TgUserID, text)
	}

	if s.sheets != nil {
		s.sheets.Record("mess_closures", []any{
			closure.ID, from.Format(time.DateOnly), to.Format(time.DateOnly), reason, adminID,
		})
	}

	return closure, nil
}

// UpcomingClosures returns closures that have not ended yet.
func (s *MessCutService) UpcomingClosures(ctx context.Context, now time.Time) ([]*model.MessClosure, error) {
	return s.closureRepo.ListUpcoming(ctx, model.Day(now.In(s.policy.Loc)))
}

func (s *MessCutService) audit(ctx context.Context, actor model.ActorType, actorID int64, event string, payload map[string]any) {
	if err := s.auditRepo.Log(ctx, actor, actorID, event, payload); err != nil {
		s.logger.Error("Failed to write audit log", zap.String("event", event), zap.Error(err))
	}
}
