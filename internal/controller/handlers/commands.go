package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/saharamess/messbot/internal/controller/callbacks/admin"
	"github.com/saharamess/messbot/internal/controller/callbacks/common/formatting"
	"github.com/saharamess/messbot/internal/controller/callbacks/common/keyboard"
	"github.com/saharamess/messbot/internal/controller/state"
	"github.com/saharamess/messbot/internal/model"
)

// HandleStart greets the user according to where they are in the lifecycle.
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	telegramID := update.Message.From.ID

	student, err := h.studentService.GetByTgUserID(ctx, telegramID)
	if err != nil {
		h.logger.Error("Failed to get student", zap.Int64("telegram_id", telegramID), zap.Error(err))
		h.sendError(ctx, b, chatID, "❌ Something went wrong. Try again later.")
		return
	}

	switch {
	case student == nil:
		h.sendMessage(ctx, b, chatID,
			"🍛 Welcome to the hostel mess bot!\n\n"+
				"Here you can register for the mess, pay for meal cycles, "+
				"apply mess cuts when you travel and get your meal QR card.\n\n"+
				"Start with /register")
	case student.Status == model.StudentStatusPending:
		h.sendMessage(ctx, b, chatID,
			fmt.Sprintf("👋 Hi %s!\n\n⏳ Your registration is waiting for admin approval. "+
				"You will get your QR card here once it is approved.", student.Name))
	case student.Status == model.StudentStatusDenied:
		h.sendMessage(ctx, b, chatID,
			fmt.Sprintf("👋 Hi %s.\n\n❌ Your registration was denied. "+
				"Contact the mess office if you believe this is a mistake.", student.Name))
	default:
		h.sendMessage(ctx, b, chatID,
			fmt.Sprintf("👋 Hi %s!\n\n"+
				"💳 /payment — pay for a meal cycle\n"+
				"✂️ /messcut — apply a mess cut\n"+
				"🎫 /myqr — your QR card\n"+
				"ℹ️ /status — where you stand\n"+
				"❓ /help — all commands", student.Name))
	}
}

// HandleHelp lists the commands.
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	text := "❓ Commands\n\n" +
		"📝 /register — register for the mess\n" +
		"💳 /payment — upload a payment for a meal cycle\n" +
		"✂️ /messcut — apply a mess cut for days you are away\n" +
		"🎫 /myqr — your meal QR card\n" +
		"ℹ️ /status — registration, payment and cut overview\n" +
		"🚫 /cancel — abort the current dialog"

	if h.isAdmin(update.Message.From.ID) {
		text += "\n\n🛠 /admin — admin panel"
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID, text)
}

// HandleRegister starts the registration dialog.
func (h *Handlers) HandleRegister(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	telegramID := update.Message.From.ID

	student, err := h.studentService.GetByTgUserID(ctx, telegramID)
	if err != nil {
		h.logger.Error("Failed to get student", zap.Int64("telegram_id", telegramID), zap.Error(err))
		h.sendError(ctx, b, chatID, "❌ Something went wrong. Try again later.")
		return
	}
	if student != nil {
		display := formatting.StudentStatusDisplay(student.Status)
		h.sendMessage(ctx, b, chatID,
			fmt.Sprintf("%s You are already registered (%s). Check /status.", display.Emoji, display.Text))
		return
	}

	h.stateManager.SetState(telegramID, state.StateRegName)
	h.sendMessage(ctx, b, chatID, "📝 Registration\n\nWhat is your full name?")
}

// HandlePayment offers the cycle choices for a payment upload.
func (h *Handlers) HandlePayment(ctx context.Context, b *bot.Bot, update *models.Update) {
	if _, ok := h.requireApproved(ctx, b, update); !ok {
		return
	}

	now := time.Now().In(h.loc)
	curFrom, curTo := model.CurrentCycle(now)
	nextFrom, nextTo := model.NextCycle(now)

	kb := keyboard.NewBuilder().
		Row(keyboard.Button(
			fmt.Sprintf("📅 This month (%s)", formatting.FormatDateRange(curFrom, curTo)), "pay_cycle_current")).
		Row(keyboard.Button(
			fmt.Sprintf("📅 Next month (%s)", formatting.FormatDateRange(nextFrom, nextTo)), "pay_cycle_next")).
		Row(keyboard.Button("🗓 Custom dates", "pay_cycle_custom")).
		Build()

	h.sendKeyboard(ctx, b, update.Message.Chat.ID,
		"💳 Which cycle are you paying for?", kb)
}

// HandleMessCut starts the mess cut dialog.
func (h *Handlers) HandleMessCut(ctx context.Context, b *bot.Bot, update *models.Update) {
	if _, ok := h.requireApproved(ctx, b, update); !ok {
		return
	}

	telegramID := update.Message.From.ID
	h.stateManager.SetState(telegramID, state.StateCutFrom)
	earliest := h.cutService.FirstAllowedFrom(time.Now())
	h.sendMessage(ctx, b, update.Message.Chat.ID,
		fmt.Sprintf("✂️ Mess cut\n\nApply before the evening cutoff; "+
			"the earliest start right now is %s.\n\nFirst day away? %s",
			earliest.Format("02 Jan 2006"), datePrompt))
}

// HandleMyQR sends the student's current QR card.
func (h *Handlers) HandleMyQR(ctx context.Context, b *bot.Bot, update *models.Update) {
	student, ok := h.requireApproved(ctx, b, update)
	if !ok {
		return
	}

	png, err := h.studentService.CardPNG(student)
	if err != nil {
		h.logger.Error("Failed to render qr card", zap.Int64("student_id", student.ID), zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Could not render your QR card. Try again later.")
		return
	}

	h.sendPhoto(ctx, b, update.Message.Chat.ID, png,
		"🎫 Your mess QR card. Show it at the counter and keep it private.")
}

// HandleStatus summarizes registration, payment cover, cuts and closures.
func (h *Handlers) HandleStatus(ctx context.Context, b *bot.Bot, update *models.Update) {
	student, ok := h.requireStudent(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	var text strings.Builder
	display := formatting.StudentStatusDisplay(student.Status)
	fmt.Fprintf(&text, "ℹ️ %s (%s)\n\n%s Registration: %s\n",
		student.Name, student.RollNo, display.Emoji, display.Text)

	if student.IsApproved() {
		payment, err := h.paymentService.LatestForStudent(ctx, student.ID)
		if err != nil {
			h.logger.Error("Failed to get latest payment", zap.Int64("student_id", student.ID), zap.Error(err))
		}
		if payment == nil {
			text.WriteString("➖ Payment: none yet, use /payment\n")
		} else {
			pd := formatting.PaymentStatusDisplay(payment.Status)
			fmt.Fprintf(&text, "%s Payment: %s, %s (%s)\n",
				pd.Emoji, pd.Text,
				formatting.FormatDateRange(payment.CycleStart, payment.CycleEnd),
				formatting.FormatAmount(payment.Amount))
		}

		cuts, err := h.cutService.CutsForStudent(ctx, student.ID)
		if err != nil {
			h.logger.Error("Failed to list cuts", zap.Int64("student_id", student.ID), zap.Error(err))
		}
		today := model.Day(time.Now().In(h.loc))
		upcoming := 0
		for _, cut := range cuts {
			if model.Day(cut.ToDate).Before(today) {
				continue
			}
			if upcoming == 0 {
				text.WriteString("\n✂️ Mess cuts:\n")
			}
			upcoming++
			if upcoming > 3 {
				text.WriteString("   …\n")
				break
			}
			fmt.Fprintf(&text, "   • %s\n", formatting.FormatDateRange(cut.FromDate, cut.ToDate))
		}

		closures, err := h.cutService.UpcomingClosures(ctx, time.Now())
		if err != nil {
			h.logger.Error("Failed to list closures", zap.Error(err))
		}
		for i, closure := range closures {
			if i == 0 {
				text.WriteString("\n📢 Mess closures:\n")
			}
			fmt.Fprintf(&text, "   • %s: %s\n",
				formatting.FormatDateRange(closure.FromDate, closure.ToDate), closure.Reason)
		}
	}

	h.sendMessage(ctx, b, chatID, text.String())
}

// HandleCancel aborts the active dialog.
func (h *Handlers) HandleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	telegramID := update.Message.From.ID

	if h.stateManager.GetState(telegramID) == state.StateNone {
		h.sendMessage(ctx, b, update.Message.Chat.ID, "Nothing to cancel.")
		return
	}

	h.stateManager.ClearState(telegramID)
	h.sendMessage(ctx, b, update.Message.Chat.ID, "🚫 Cancelled.")
}

// HandleAdmin opens the admin panel.
func (h *Handlers) HandleAdmin(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !h.requireAdmin(ctx, b, update) {
		return
	}

	h.sendKeyboard(ctx, b, update.Message.Chat.ID, "🛠 Admin panel", admin.PanelKeyboard())
}
