package callbacks

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/saharamess/messbot/internal/controller/callbacks/admin"
	"github.com/saharamess/messbot/internal/controller/callbacks/callbacktypes"
	"github.com/saharamess/messbot/internal/controller/callbacks/common"
	"github.com/saharamess/messbot/internal/controller/callbacks/student"
)

// ========================
// Callback Data Patterns
// ========================

// Admin review callbacks, attached to the prompts admins receive.
const (
	ApproveStudent = "approve_student:" // approve_student:123
	DenyStudent    = "deny_student:"    // deny_student:123
	VerifyPayment  = "verify_payment:"  // verify_payment:123
	DenyPayment    = "deny_payment:"    // deny_payment:123
)

// Student payment cycle selection.
const (
	PayCycleCurrent = "pay_cycle_current"
	PayCycleNext    = "pay_cycle_next"
	PayCycleCustom  = "pay_cycle_custom"
)

// Admin panel screens.
const (
	AdminPanel           = "admin_panel"
	AdminPendingStudents = "admin_pending_students"
	AdminPendingPayments = "admin_pending_payments"
	AdminReport          = "admin_report"
	AdminClosure         = "admin_closure"
	AdminOffline         = "admin_offline"
	AdminRegenAll        = "admin_regen_all"
	AdminRegenAllConfirm = "admin_regen_all_confirm"
)

// Route dispatches a callback query to its handler.
func Route(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	data := callback.Data

	switch {
	case data == "noop":
		common.AnswerCallback(ctx, b, callback.ID, "")

	// ===== Student: payment cycle selection =====
	case data == PayCycleCurrent:
		student.HandlePayCycleCurrent(ctx, b, callback, h)
	case data == PayCycleNext:
		student.HandlePayCycleNext(ctx, b, callback, h)
	case data == PayCycleCustom:
		student.HandlePayCycleCustom(ctx, b, callback, h)

	// ===== Admin: registration review =====
	case strings.HasPrefix(data, ApproveStudent):
		admin.HandleApproveStudent(ctx, b, callback, h)
	case strings.HasPrefix(data, DenyStudent):
		admin.HandleDenyStudent(ctx, b, callback, h)

	// ===== Admin: payment review =====
	case strings.HasPrefix(data, VerifyPayment):
		admin.HandleVerifyPayment(ctx, b, callback, h)
	case strings.HasPrefix(data, DenyPayment):
		admin.HandleDenyPayment(ctx, b, callback, h)

	// ===== Admin: panel =====
	case data == AdminPanel:
		admin.HandlePanel(ctx, b, callback, h)
	case data == AdminPendingStudents:
		admin.HandlePendingStudents(ctx, b, callback, h)
	case data == AdminPendingPayments:
		admin.HandlePendingPayments(ctx, b, callback, h)
	case data == AdminReport:
		admin.HandleReport(ctx, b, callback, h)
	case data == AdminClosure:
		admin.HandleClosureStart(ctx, b, callback, h)
	case data == AdminOffline:
		admin.HandleOfflineStart(ctx, b, callback, h)
	case data == AdminRegenAll:
		admin.HandleRegenAll(ctx, b, callback, h)
	case data == AdminRegenAllConfirm:
		admin.HandleRegenAllConfirm(ctx, b, callback, h)

	default:
		common.AnswerCallback(ctx, b, callback.ID, "")
	}
}
