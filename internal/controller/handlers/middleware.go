package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/saharamess/messbot/internal/model"
)

// requireStudent loads the registered student behind the message.
// Returns nil and false (after telling the user) when there is none.
func (h *Handlers) requireStudent(ctx context.Context, b *bot.Bot, update *models.Update) (*model.Student, bool) {
	if update.Message == nil {
		return nil, false
	}

	telegramID := update.Message.From.ID
	student, err := h.studentService.GetByTgUserID(ctx, telegramID)
	if err != nil {
		h.logger.Error("Failed to get student", zap.Int64("telegram_id", telegramID), zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Something went wrong. Try again later.")
		return nil, false
	}

	if student == nil {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ You are not registered yet. Use /register first.")
		return nil, false
	}

	return student, true
}

// requireApproved additionally checks the student can use the mess.
func (h *Handlers) requireApproved(ctx context.Context, b *bot.Bot, update *models.Update) (*model.Student, bool) {
	student, ok := h.requireStudent(ctx, b, update)
	if !ok {
		return nil, false
	}

	if !student.IsApproved() {
		h.sendError(ctx, b, update.Message.Chat.ID,
			"⏳ Your registration is not approved yet. Check /status.")
		return nil, false
	}

	return student, true
}

// requireAdmin checks the sender against the configured admin list.
func (h *Handlers) requireAdmin(ctx context.Context, b *bot.Bot, update *models.Update) bool {
	if update.Message == nil {
		return false
	}

	if !h.isAdmin(update.Message.From.ID) {
		h.sendError(ctx, b, update.Message.Chat.ID, "🔒 This command is for admins only.")
		return false
	}

	return true
}
