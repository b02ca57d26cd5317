package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/saharamess/messbot/internal/controller/callbacks/common"
	"github.com/saharamess/messbot/internal/controller/callbacks/common/formatting"
	"github.com/saharamess/messbot/internal/controller/state"
	"github.com/saharamess/messbot/internal/model"
	"github.com/saharamess/messbot/internal/service"
)

// HandleTextMessage continues whichever dialog the user is in. It is
// registered after the command handlers, so only non-command traffic and
// unknown commands land here.
func (h *Handlers) HandleTextMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}

	telegramID := update.Message.From.ID
	userState := h.stateManager.GetState(telegramID)

	if strings.HasPrefix(update.Message.Text, "/") {
		if userState == state.StateNone {
			h.sendMessage(ctx, b, update.Message.Chat.ID, "🤔 Unknown command. See /help.")
		} else {
			h.sendMessage(ctx, b, update.Message.Chat.ID,
				"✍️ You are in the middle of a dialog. Finish it or /cancel first.")
		}
		return
	}

	switch userState {
	// Registration
	case state.StateRegName:
		h.stepRegName(ctx, b, update)
	case state.StateRegRoll:
		h.stepRegRoll(ctx, b, update)
	case state.StateRegRoom:
		h.stepRegRoom(ctx, b, update)
	case state.StateRegPhone:
		h.stepRegPhone(ctx, b, update)

	// Payment upload
	case state.StatePayCustomFrom:
		h.stepPayCustomFrom(ctx, b, update)
	case state.StatePayCustomTo:
		h.stepPayCustomTo(ctx, b, update)
	case state.StatePayAmount:
		h.stepPayAmount(ctx, b, update)
	case state.StatePayScreenshot:
		h.sendMessage(ctx, b, update.Message.Chat.ID,
			"📸 Please send the payment screenshot as a photo, or /cancel.")

	// Mess cut
	case state.StateCutFrom:
		h.stepCutFrom(ctx, b, update)
	case state.StateCutTo:
		h.stepCutTo(ctx, b, update)

	// Admin: closure
	case state.StateClosureFrom:
		h.stepClosureFrom(ctx, b, update)
	case state.StateClosureTo:
		h.stepClosureTo(ctx, b, update)
	case state.StateClosureReason:
		h.stepClosureReason(ctx, b, update)

	// Admin: offline payment
	case state.StateOfflineRoll:
		h.stepOfflineRoll(ctx, b, update)
	case state.StateOfflineFrom:
		h.stepOfflineFrom(ctx, b, update)
	case state.StateOfflineTo:
		h.stepOfflineTo(ctx, b, update)
	case state.StateOfflineAmount:
		h.stepOfflineAmount(ctx, b, update)

	default:
		h.sendMessage(ctx, b, update.Message.Chat.ID, "🤔 Not sure what you mean. See /help.")
	}
}

// HandlePhotoMessage accepts the payment screenshot step.
func (h *Handlers) HandlePhotoMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || len(update.Message.Photo) == 0 {
		return
	}

	telegramID := update.Message.From.ID
	if h.stateManager.GetState(telegramID) != state.StatePayScreenshot {
		return
	}

	student, ok := h.requireApproved(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	from, okFrom := h.dataTime(telegramID, "pay_from")
	to, okTo := h.dataTime(telegramID, "pay_to")
	amount, okAmount := h.dataInt64(telegramID, "pay_amount")
	if !okFrom || !okTo || !okAmount {
		h.stateManager.ClearState(telegramID)
		h.sendError(ctx, b, chatID, "❌ The dialog got lost. Start again with /payment.")
		return
	}

	screenshotURL := h.screenshotLink(ctx, b, update.Message.Photo)

	payment, err := h.paymentService.Upload(ctx, service.PaymentUpload{
		StudentID:     student.ID,
		CycleStart:    from,
		CycleEnd:      to,
		Amount:        amount,
		ScreenshotURL: screenshotURL,
	})
	h.stateManager.ClearState(telegramID)
	if err != nil {
		h.sendError(ctx, b, chatID, common.ErrorMessage(err))
		return
	}

	h.sendMessage(ctx, b, chatID, fmt.Sprintf(
		"⏳ Payment of %s for %s sent for review.\n\nYou will hear back once an admin checks it.",
		formatting.FormatAmount(payment.Amount),
		formatting.FormatDateRange(payment.CycleStart, payment.CycleEnd)))
}

// ===== Registration steps =====

func (h *Handlers) stepRegName(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	name := strings.TrimSpace(update.Message.Text)

	if len(name) < service.NameMinLength || len(name) > service.NameMaxLength {
		h.sendError(ctx, b, update.Message.Chat.ID,
			fmt.Sprintf("❌ Name must be %d-%d characters. Try again:", service.NameMinLength, service.NameMaxLength))
		return
	}

	h.stateManager.SetData(telegramID, "name", name)
	h.stateManager.SetState(telegramID, state.StateRegRoll)
	h.sendMessage(ctx, b, update.Message.Chat.ID, "🎓 Your roll number?")
}

func (h *Handlers) stepRegRoll(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID

	h.stateManager.SetData(telegramID, "roll", strings.TrimSpace(update.Message.Text))
	h.stateManager.SetState(telegramID, state.StateRegRoom)
	h.sendMessage(ctx, b, update.Message.Chat.ID, "🚪 Your room number?")
}

func (h *Handlers) stepRegRoom(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID

	h.stateManager.SetData(telegramID, "room", strings.TrimSpace(update.Message.Text))
	h.stateManager.SetState(telegramID, state.StateRegPhone)
	h.sendMessage(ctx, b, update.Message.Chat.ID, "📱 Your phone number (with country code if not Indian)?")
}

func (h *Handlers) stepRegPhone(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	data := h.stateManager.GetAllData(telegramID)
	name, _ := data["name"].(string)
	roll, _ := data["roll"].(string)
	room, _ := data["room"].(string)

	student, err := h.studentService.Register(ctx, service.Registration{
		TgUserID: telegramID,
		Name:     name,
		RollNo:   roll,
		RoomNo:   room,
		Phone:    update.Message.Text,
	})
	h.stateManager.ClearState(telegramID)
	if err != nil {
		h.sendError(ctx, b, chatID, common.ErrorMessage(err)+"\n\nStart over with /register.")
		return
	}

	h.logger.Info("Registration dialog finished",
		zap.Int64("student_id", student.ID),
		zap.String("roll_no", student.RollNo),
	)
	h.sendMessage(ctx, b, chatID,
		"✅ Registration submitted!\n\n⏳ An admin will review it shortly. "+
			"You will get your QR card here once approved.")
}

// ===== Payment steps =====

func (h *Handlers) stepPayCustomFrom(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID

	from, err := formatting.ParseDate(update.Message.Text, h.loc)
	if err != nil {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Could not read that date. "+datePrompt)
		return
	}

	h.stateManager.SetData(telegramID, "pay_from", from)
	h.stateManager.SetState(telegramID, state.StatePayCustomTo)
	h.sendMessage(ctx, b, update.Message.Chat.ID, "📅 Last day of the cycle? "+datePrompt)
}

func (h *Handlers) stepPayCustomTo(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID

	to, err := formatting.ParseDate(update.Message.Text, h.loc)
	if err != nil {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Could not read that date. "+datePrompt)
		return
	}
	from, ok := h.dataTime(telegramID, "pay_from")
	if ok && to.Before(from) {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ The last day is before the first day. Try again:")
		return
	}

	h.stateManager.SetData(telegramID, "pay_to", to)
	h.stateManager.SetState(telegramID, state.StatePayAmount)
	h.sendMessage(ctx, b, update.Message.Chat.ID, "💰 Amount paid in rupees (e.g. 2800)?")
}

func (h *Handlers) stepPayAmount(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID

	amount, err := formatting.ParseAmount(update.Message.Text)
	if err != nil {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Could not read that amount. Enter rupees like 2800:")
		return
	}
	if amount < MinPaymentAmount || amount > MaxPaymentAmount {
		h.sendError(ctx, b, update.Message.Chat.ID, fmt.Sprintf(
			"❌ Amount must be between %s and %s. Try again:",
			formatting.FormatAmount(MinPaymentAmount), formatting.FormatAmount(MaxPaymentAmount)))
		return
	}

	h.stateManager.SetData(telegramID, "pay_amount", amount)
	h.stateManager.SetState(telegramID, state.StatePayScreenshot)
	h.sendMessage(ctx, b, update.Message.Chat.ID,
		"📸 Now send the payment screenshot as a photo.")
}

// ===== Mess cut steps =====

func (h *Handlers) stepCutFrom(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID

	from, err := formatting.ParseDate(update.Message.Text, h.loc)
	if err != nil {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Could not read that date. "+datePrompt)
		return
	}

	h.stateManager.SetData(telegramID, "cut_from", from)
	h.stateManager.SetState(telegramID, state.StateCutTo)
	h.sendMessage(ctx, b, update.Message.Chat.ID, "📅 Last day away? "+datePrompt)
}

func (h *Handlers) stepCutTo(ctx context.Context, b *bot.Bot, update *models.Update) {
	student, ok := h.requireApproved(ctx, b, update)
	if !ok {
		return
	}
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	to, err := formatting.ParseDate(update.Message.Text, h.loc)
	if err != nil {
		h.sendError(ctx, b, chatID, "❌ Could not read that date. "+datePrompt)
		return
	}
	from, okFrom := h.dataTime(telegramID, "cut_from")
	if !okFrom {
		h.stateManager.ClearState(telegramID)
		h.sendError(ctx, b, chatID, "❌ The dialog got lost. Start again with /messcut.")
		return
	}

	cut, err := h.cutService.Apply(ctx, student.ID, from, to, model.CutAppliedByStudent)
	h.stateManager.ClearState(telegramID)
	if err != nil {
		h.sendError(ctx, b, chatID, common.ErrorMessage(err))
		return
	}

	h.sendMessage(ctx, b, chatID, fmt.Sprintf(
		"✂️ Mess cut applied for %s.\n\nMeals on these days are off and will not be charged.",
		formatting.FormatDateRange(cut.FromDate, cut.ToDate)))
}

// ===== Admin closure steps =====

func (h *Handlers) stepClosureFrom(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.requireAdmin(ctx, b, update) {
		return
	}
	telegramID := update.Message.From.ID

	from, err := formatting.ParseDate(update.Message.Text, h.loc)
	if err != nil {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Could not read that date. "+datePrompt)
		return
	}

	h.stateManager.SetData(telegramID, "closure_from", from)
	h.stateManager.SetState(telegramID, state.StateClosureTo)
	h.sendMessage(ctx, b, update.Message.Chat.ID, "📅 Last closed day? "+datePrompt)
}

func (h *Handlers) stepClosureTo(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.requireAdmin(ctx, b, update) {
		return
	}
	telegramID := update.Message.From.ID

	to, err := formatting.ParseDate(update.Message.Text, h.loc)
	if err != nil {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Could not read that date. "+datePrompt)
		return
	}
	from, ok := h.dataTime(telegramID, "closure_from")
	if ok && to.Before(from) {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ The last day is before the first day. Try again:")
		return
	}

	h.stateManager.SetData(telegramID, "closure_to", to)
	h.stateManager.SetState(telegramID, state.StateClosureReason)
	h.sendMessage(ctx, b, update.Message.Chat.ID, "📝 Reason for the closure?")
}

func (h *Handlers) stepClosureReason(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.requireAdmin(ctx, b, update) {
		return
	}
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	reason := strings.TrimSpace(update.Message.Text)
	if len(reason) > ClosureReasonMaxLength {
		h.sendError(ctx, b, chatID, fmt.Sprintf("❌ Keep the reason under %d characters. Try again:", ClosureReasonMaxLength))
		return
	}

	from, okFrom := h.dataTime(telegramID, "closure_from")
	to, okTo := h.dataTime(telegramID, "closure_to")
	if !okFrom || !okTo {
		h.stateManager.ClearState(telegramID)
		h.sendError(ctx, b, chatID, "❌ The dialog got lost. Start again from /admin.")
		return
	}

	closure, err := h.cutService.DeclareClosure(ctx, from, to, reason, telegramID)
	h.stateManager.ClearState(telegramID)
	if err != nil {
		h.sendError(ctx, b, chatID, common.ErrorMessage(err))
		return
	}

	h.sendMessage(ctx, b, chatID, fmt.Sprintf(
		"📢 Closure declared for %s and broadcast to all approved students.",
		formatting.FormatDateRange(closure.FromDate, closure.ToDate)))
}

// ===== Admin offline payment steps =====

func (h *Handlers) stepOfflineRoll(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.requireAdmin(ctx, b, update) {
		return
	}
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	student, err := h.studentService.GetByRollNo(ctx, update.Message.Text)
	if err != nil {
		h.logger.Error("Failed to look up roll number", zap.Error(err))
		h.sendError(ctx, b, chatID, "❌ Something went wrong. Try again later.")
		return
	}
	if student == nil {
		h.sendError(ctx, b, chatID, "❌ No student with that roll number. Try again, or /cancel:")
		return
	}

	h.stateManager.SetData(telegramID, "offline_student_id", student.ID)
	h.stateManager.SetState(telegramID, state.StateOfflineFrom)
	h.sendMessage(ctx, b, chatID, fmt.Sprintf(
		"👤 %s (%s).\n\n📅 First day of the paid cycle? %s", student.Name, student.RollNo, datePrompt))
}

func (h *Handlers) stepOfflineFrom(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.requireAdmin(ctx, b, update) {
		return
	}
	telegramID := update.Message.From.ID

	from, err := formatting.ParseDate(update.Message.Text, h.loc)
	if err != nil {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Could not read that date. "+datePrompt)
		return
	}

	h.stateManager.SetData(telegramID, "offline_from", from)
	h.stateManager.SetState(telegramID, state.StateOfflineTo)
	h.sendMessage(ctx, b, update.Message.Chat.ID, "📅 Last day of the paid cycle? "+datePrompt)
}

func (h *Handlers) stepOfflineTo(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.requireAdmin(ctx, b, update) {
		return
	}
	telegramID := update.Message.From.ID

	to, err := formatting.ParseDate(update.Message.Text, h.loc)
	if err != nil {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Could not read that date. "+datePrompt)
		return
	}
	from, ok := h.dataTime(telegramID, "offline_from")
	if ok && to.Before(from) {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ The last day is before the first day. Try again:")
		return
	}

	h.stateManager.SetData(telegramID, "offline_to", to)
	h.stateManager.SetState(telegramID, state.StateOfflineAmount)
	h.sendMessage(ctx, b, update.Message.Chat.ID, "💰 Amount received in rupees?")
}

func (h *Handlers) stepOfflineAmount(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.requireAdmin(ctx, b, update) {
		return
	}
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	amount, err := formatting.ParseAmount(update.Message.Text)
	if err != nil {
		h.sendError(ctx, b, chatID, "❌ Could not read that amount. Enter rupees like 2800:")
		return
	}

	studentID, okID := h.dataInt64(telegramID, "offline_student_id")
	from, okFrom := h.dataTime(telegramID, "offline_from")
	to, okTo := h.dataTime(telegramID, "offline_to")
	if !okID || !okFrom || !okTo {
		h.stateManager.ClearState(telegramID)
		h.sendError(ctx, b, chatID, "❌ The dialog got lost. Start again from /admin.")
		return
	}

	payment, err := h.paymentService.RecordOffline(ctx, studentID, from, to, amount, telegramID)
	h.stateManager.ClearState(telegramID)
	if err != nil {
		h.sendError(ctx, b, chatID, common.ErrorMessage(err))
		return
	}

	h.sendMessage(ctx, b, chatID, fmt.Sprintf(
		"💵 Offline payment of %s recorded for %s. The student was notified.",
		formatting.FormatAmount(payment.Amount),
		formatting.FormatDateRange(payment.CycleStart, payment.CycleEnd)))
}

// ===== Dialog data accessors =====

func (h *Handlers) dataTime(telegramID int64, key string) (time.Time, bool) {
	v, ok := h.stateManager.GetData(telegramID, key)
	if !ok {
		return time.Time{}, false
	}
	t, ok := v.(time.Time)
	return t, ok
}

func (h *Handlers) dataInt64(telegramID int64, key string) (int64, bool) {
	v, ok := h.stateManager.GetData(telegramID, key)
	if !ok {
		return 0, false
	}
	n, ok := v.(int64)
	return n, ok
}
