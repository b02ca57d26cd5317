package student

import (
	"context"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/saharamess/messbot/internal/controller/callbacks/callbacktypes"
	"github.com/saharamess/messbot/internal/controller/callbacks/common"
	"github.com/saharamess/messbot/internal/controller/callbacks/common/formatting"
	"github.com/saharamess/messbot/internal/model"
)

func editText(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, text string) {
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

// startAmountStep stores the chosen cycle and asks for the amount.
func startAmountStep(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler, from, to time.Time) {
	telegramID := callback.From.ID
	h.StateManager.SetData(telegramID, "pay_from", from)
	h.StateManager.SetData(telegramID, "pay_to", to)
	h.StateManager.SetState(telegramID, callbacktypes.StatePayAmount)

	common.AnswerCallback(ctx, b, callback.ID, "")
	editText(ctx, b, callback, fmt.Sprintf(
		"💳 Paying for %s.\n\nEnter the amount in rupees (e.g. 2800):",
		formatting.FormatDateRange(from, to)))
}

// HandlePayCycleCurrent selects the current calendar month.
func HandlePayCycleCurrent(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	from, to := model.CurrentCycle(time.Now().In(h.Loc))
	startAmountStep(ctx, b, callback, h, from, to)
}

// HandlePayCycleNext selects the next calendar month.
func HandlePayCycleNext(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	from, to := model.NextCycle(time.Now().In(h.Loc))
	startAmountStep(ctx, b, callback, h, from, to)
}

// HandlePayCycleCustom starts the custom date range dialog.
func HandlePayCycleCustom(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	h.StateManager.SetState(callback.From.ID, callbacktypes.StatePayCustomFrom)

	common.AnswerCallback(ctx, b, callback.ID, "")
	editText(ctx, b, callback, "💳 Custom cycle.\n\nEnter the first day (DD-MM-YYYY):")
}
