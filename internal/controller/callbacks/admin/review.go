package admin

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/saharamess/messbot/internal/controller/callbacks/callbacktypes"
	"github.com/saharamess/messbot/internal/controller/callbacks/common"
)

// requireAdmin rejects callbacks from non-admin accounts.
func requireAdmin(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) bool {
	if h.IsAdmin(callback.From.ID) {
		return true
	}
	common.AnswerCallbackAlert(ctx, b, callback.ID, "🔒 Admins only")
	return false
}

// editCallbackMessage replaces the prompt the button was attached to, so the
// next admin sees the outcome instead of live buttons.
func editCallbackMessage(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, text string) {
	msg := common.GetMessageFromCallback(callback)
	if msg == nil {
		return
	}
	b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    msg.Chat.ID,
		MessageID: msg.ID,
		Text:      text,
	})
}

// HandleApproveStudent approves a pending registration.
func HandleApproveStudent(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	if !requireAdmin(ctx, b, callback, h) {
		return
	}

	studentID, err := common.ParseIDFromCallback(callback.Data)
	if err != nil {
		common.AnswerCallbackAlert(ctx, b, callback.ID, "❌ Invalid format")
		return
	}

	student, err := h.StudentService.Approve(ctx, studentID, callback.From.ID)
	if err != nil {
		h.Logger.Error("Failed to approve student", zap.Int64("student_id", studentID), zap.Error(err))
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return
	}

	common.AnswerCallback(ctx, b, callback.ID, "✅ Approved")
	editCallbackMessage(ctx, b, callback,
		fmt.Sprintf("✅ %s (%s) approved. QR card sent.", student.Name, student.RollNo))
}

// HandleDenyStudent denies a pending registration.
func HandleDenyStudent(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	if !requireAdmin(ctx, b, callback, h) {
		return
	}

	studentID, err := common.ParseIDFromCallback(callback.Data)
	if err != nil {
		common.AnswerCallbackAlert(ctx, b, callback.ID, "❌ Invalid format")
		return
	}

	student, err := h.StudentService.Deny(ctx, studentID, callback.From.ID)
	if err != nil {
		h.Logger.Error("Failed to deny student", zap.Int64("student_id", studentID), zap.Error(err))
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return
	}

	common.AnswerCallback(ctx, b, callback.ID, "❌ Denied")
	editCallbackMessage(ctx, b, callback,
		fmt.Sprintf("❌ %s (%s) denied.", student.Name, student.RollNo))
}

// HandleVerifyPayment verifies an uploaded payment.
func HandleVerifyPayment(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	if !requireAdmin(ctx, b, callback, h) {
		return
	}

	paymentID, err := common.ParseIDFromCallback(callback.Data)
	if err != nil {
		common.AnswerCallbackAlert(ctx, b, callback.ID, "❌ Invalid format")
		return
	}

	payment, err := h.PaymentService.Verify(ctx, paymentID, callback.From.ID)
	if err != nil {
		h.Logger.Error("Failed to verify payment", zap.Int64("payment_id", paymentID), zap.Error(err))
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return
	}

	common.AnswerCallback(ctx, b, callback.ID, "✅ Verified")
	editCallbackMessage(ctx, b, callback,
		fmt.Sprintf("✅ Payment #%d verified (%s — %s).",
			payment.ID,
			payment.CycleStart.Format("02 Jan"), payment.CycleEnd.Format("02 Jan 2006")))
}

// HandleDenyPayment denies an uploaded payment.
func HandleDenyPayment(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	if !requireAdmin(ctx, b, callback, h) {
		return
	}

	paymentID, err := common.ParseIDFromCallback(callback.Data)
	if err != nil {
		common.AnswerCallbackAlert(ctx, b, callback.ID, "❌ Invalid format")
		return
	}

	payment, err := h.PaymentService.Deny(ctx, paymentID, callback.From.ID)
	if err != nil {
		h.Logger.Error("Failed to deny payment", zap.Int64("payment_id", paymentID), zap.Error(err))
		common.AnswerCallbackAlert(ctx, b, callback.ID, common.ErrorMessage(err))
		return
	}

	common.AnswerCallback(ctx, b, callback.ID, "❌ Denied")
	editCallbackMessage(ctx, b, callback,
		fmt.Sprintf("❌ Payment #%d denied. The student was told to re-upload.", payment.ID))
}
