package notify

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/saharamess/messbot/internal/service"
)

// TelegramSender performs real Telegram API calls through the bot client.
type TelegramSender struct {
	bot *bot.Bot
}

var _ Sender = (*TelegramSender)(nil)

func NewTelegramSender(b *bot.Bot) *TelegramSender {
	return &TelegramSender{bot: b}
}

func (s *TelegramSender) SendText(ctx context.Context, chatID int64, text string) error {
	_, err := s.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func (s *TelegramSender) SendPhoto(ctx context.Context, chatID int64, photo []byte, caption string) error {
	_, err := s.bot.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID:  chatID,
		Photo:   &models.InputFileUpload{Filename: "qr.png", Data: bytes.NewReader(photo)},
		Caption: caption,
	})
	if err != nil {
		return fmt.Errorf("send photo: %w", err)
	}
	return nil
}

func (s *TelegramSender) SendButtons(ctx context.Context, chatID int64, text string, buttons []service.Button) error {
	row := make([]models.InlineKeyboardButton, 0, len(buttons))
	for _, b := range buttons {
		row = append(row, models.InlineKeyboardButton{Text: b.Label, CallbackData: b.Data})
	}

	_, err := s.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{row}},
	})
	if err != nil {
		return fmt.Errorf("send message with buttons: %w", err)
	}
	return nil
}
