package admin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/saharamess/messbot/internal/controller/callbacks/callbacktypes"
	"github.com/saharamess/messbot/internal/controller/callbacks/common"
	"github.com/saharamess/messbot/internal/controller/callbacks/common/formatting"
	"github.com/saharamess/messbot/internal/controller/callbacks/common/keyboard"
)

// PanelKeyboard is the admin panel root menu. The /admin command and the
// back-navigation both render it.
func PanelKeyboard() *models.InlineKeyboardMarkup {
	return keyboard.NewBuilder().
		Row(keyboard.Button("👤 Pending registrations", "admin_pending_students")).
		Row(keyboard.Button("💳 Pending payments", "admin_pending_payments")).
		Row(keyboard.Button("📊 Today's report", "admin_report")).
		Row(keyboard.Button("📢 Declare closure", "admin_closure")).
		Row(keyboard.Button("💵 Record offline payment", "admin_offline")).
		Row(keyboard.Button("🔄 Regenerate all QR codes", "admin_regen_all")).
		Build()
}

func editWithKeyboard(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, text string, kb *models.InlineKeyboardMarkup) {
	msg := common.GetMessageFromCallback(callback)
	if msg == nil {
		return
	}
	params := &bot.EditMessageTextParams{
		ChatID:    msg.Chat.ID,
		MessageID: msg.ID,
		Text:      text,
	}
	if kb != nil {
		params.ReplyMarkup = kb
	}
	b.EditMessageText(ctx, params)
}

// HandlePanel shows the admin panel root.
func HandlePanel(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	if !requireAdmin(ctx, b, callback, h) {
		return
	}
	common.AnswerCallback(ctx, b, callback.ID, "")
	editWithKeyboard(ctx, b, callback, "🛠 Admin panel", PanelKeyboard())
}

// HandlePendingStudents lists registrations waiting for review, one
// approve/deny row per student.
func HandlePendingStudents(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	if !requireAdmin(ctx, b, callback, h) {
		return
	}

	students, err := h.StudentService.PendingRegistrations(ctx)
	if err != nil {
		h.Logger.Error("Failed to list pending students", zap.Error(err))
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return
	}
	common.AnswerCallback(ctx, b, callback.ID, "")

	if len(students) == 0 {
		editWithKeyboard(ctx, b, callback, "👤 No registrations waiting for review.",
			keyboard.NewBuilder().Row(keyboard.Button("⬅️ Back", "admin_panel")).Build())
		return
	}

	var text strings.Builder
	text.WriteString("👤 Pending registrations\n")
	kb := keyboard.NewBuilder()
	for _, s := range students {
		fmt.Fprintf(&text, "\n%s · %s · room %s · %s", s.Name, s.RollNo, s.RoomNo, s.Phone)
		kb.Row(
			keyboard.Button(fmt.Sprintf("✅ %s", s.RollNo), fmt.Sprintf("approve_student:%d", s.ID)),
			keyboard.Button(fmt.Sprintf("❌ %s", s.RollNo), fmt.Sprintf("deny_student:%d", s.ID)),
		)
	}
	kb.Row(keyboard.Button("⬅️ Back", "admin_panel"))

	editWithKeyboard(ctx, b, callback, text.String(), kb.Build())
}

// HandlePendingPayments lists uploads waiting for review.
func HandlePendingPayments(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	if !requireAdmin(ctx, b, callback, h) {
		return
	}

	payments, err := h.PaymentService.PendingPayments(ctx)
	if err != nil {
		h.Logger.Error("Failed to list pending payments", zap.Error(err))
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return
	}
	common.AnswerCallback(ctx, b, callback.ID, "")

	if len(payments) == 0 {
		editWithKeyboard(ctx, b, callback, "💳 No payments waiting for review.",
			keyboard.NewBuilder().Row(keyboard.Button("⬅️ Back", "admin_panel")).Build())
		return
	}

	var text strings.Builder
	text.WriteString("💳 Pending payments\n")
	kb := keyboard.NewBuilder()
	for _, p := range payments {
		name, roll := "?", "?"
		if p.Student != nil {
			name, roll = p.Student.Name, p.Student.RollNo
		}
		fmt.Fprintf(&text, "\n#%d · %s (%s) · %s · %s", p.ID, name, roll,
			formatting.FormatAmount(p.Amount),
			formatting.FormatDateRange(p.CycleStart, p.CycleEnd))
		kb.Row(
			keyboard.Button(fmt.Sprintf("✅ #%d", p.ID), fmt.Sprintf("verify_payment:%d", p.ID)),
			keyboard.Button(fmt.Sprintf("❌ #%d", p.ID), fmt.Sprintf("deny_payment:%d", p.ID)),
		)
	}
	kb.Row(keyboard.Button("⬅️ Back", "admin_panel"))

	editWithKeyboard(ctx, b, callback, text.String(), kb.Build())
}

// HandleReport shows the daily digest on demand.
func HandleReport(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	if !requireAdmin(ctx, b, callback, h) {
		return
	}

	text, err := h.ReportService.BuildDaily(ctx, time.Now())
	if err != nil {
		h.Logger.Error("Failed to build report", zap.Error(err))
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return
	}
	common.AnswerCallback(ctx, b, callback.ID, "")

	editWithKeyboard(ctx, b, callback, text,
		keyboard.NewBuilder().Row(keyboard.Button("⬅️ Back", "admin_panel")).Build())
}

// HandleClosureStart begins the closure declaration dialog.
func HandleClosureStart(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	if !requireAdmin(ctx, b, callback, h) {
		return
	}
	common.AnswerCallback(ctx, b, callback.ID, "")

	h.StateManager.SetState(callback.From.ID, callbacktypes.StateClosureFrom)
	editWithKeyboard(ctx, b, callback,
		"📢 Declaring a mess closure.\n\nEnter the first closed day (DD-MM-YYYY):", nil)
}

// HandleOfflineStart begins the offline payment dialog.
func HandleOfflineStart(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	if !requireAdmin(ctx, b, callback, h) {
		return
	}
	common.AnswerCallback(ctx, b, callback.ID, "")

	h.StateManager.SetState(callback.From.ID, callbacktypes.StateOfflineRoll)
	editWithKeyboard(ctx, b, callback,
		"💵 Recording an offline payment.\n\nEnter the student's roll number:", nil)
}

// HandleRegenAll asks for confirmation before rotating every QR card.
func HandleRegenAll(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	if !requireAdmin(ctx, b, callback, h) {
		return
	}
	common.AnswerCallback(ctx, b, callback.ID, "")

	editWithKeyboard(ctx, b, callback,
		"🔄 Regenerate QR codes for every approved student?\n\nAll existing cards stop working immediately.",
		keyboard.NewBuilder().
			Row(
				keyboard.Button("🔄 Yes, regenerate", "admin_regen_all_confirm"),
				keyboard.Button("⬅️ Cancel", "admin_panel"),
			).
			Build())
}

// HandleRegenAllConfirm rotates every approved student's QR.
func HandleRegenAllConfirm(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	if !requireAdmin(ctx, b, callback, h) {
		return
	}

	rotated, err := h.StudentService.BulkRegenerateQR(ctx, callback.From.ID)
	if err != nil {
		h.Logger.Error("Failed to regenerate qr codes", zap.Error(err))
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return
	}

	common.AnswerCallback(ctx, b, callback.ID, "✅ Done")
	editWithKeyboard(ctx, b, callback,
		fmt.Sprintf("🔄 Regenerated QR codes for %d students. Fresh cards were sent out.", rotated),
		keyboard.NewBuilder().Row(keyboard.Button("⬅️ Back", "admin_panel")).Build())
}
