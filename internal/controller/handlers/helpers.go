package handlers

import (
	"bytes"
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// sendMessage sends a plain message, logging delivery failures.
func (h *Handlers) sendMessage(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		h.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}

// sendError sends an error message, logging delivery failures.
func (h *Handlers) sendError(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		h.logger.Error("Failed to send error message",
			zap.Int64("chat_id", chatID),
			zap.String("text", text),
			zap.Error(err),
		)
	}
}

// sendKeyboard sends a message with an inline keyboard.
func (h *Handlers) sendKeyboard(ctx context.Context, b *bot.Bot, chatID int64, text string, kb *models.InlineKeyboardMarkup) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: kb,
	})
	if err != nil {
		h.logger.Error("Failed to send keyboard",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}

// fileResolver is the slice of the bot API needed to turn a file id into a
// download URL.
type fileResolver interface {
	GetFile(ctx context.Context, params *bot.GetFileParams) (*models.File, error)
	FileDownloadLink(f *models.File) string
}

// screenshotLink resolves the uploaded photo to a Telegram file URL.
// Telegram orders photo sizes ascending, so the last one is the original.
// When the lookup fails the raw file id is stored; the admin can still open
// it from the Telegram client.
func (h *Handlers) screenshotLink(ctx context.Context, b fileResolver, photos []models.PhotoSize) string {
	fileID := photos[len(photos)-1].FileID

	file, err := b.GetFile(ctx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		h.logger.Warn("Failed to resolve screenshot file", zap.String("file_id", fileID), zap.Error(err))
		return fileID
	}
	return b.FileDownloadLink(file)
}

// sendPhoto sends a PNG with a caption.
func (h *Handlers) sendPhoto(ctx context.Context, b *bot.Bot, chatID int64, photo []byte, caption string) {
	_, err := b.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID:  chatID,
		Photo:   &models.InputFileUpload{Filename: "qr.png", Data: bytes.NewReader(photo)},
		Caption: caption,
	})
	if err != nil {
		h.logger.Error("Failed to send photo",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}
