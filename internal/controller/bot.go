package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/saharamess/messbot/internal/controller/callbacks"
	"github.com/saharamess/messbot/internal/controller/handlers"
	"github.com/saharamess/messbot/internal/controller/state"
	"github.com/saharamess/messbot/internal/service"
)

type BotController struct {
	bot             *bot.Bot
	handlers        *handlers.Handlers
	callbackHandler *callbacks.Handler
	webhookURL      string
	logger          *zap.Logger
}

func NewBotController(
	botInstance *bot.Bot,
	studentService *service.StudentService,
	paymentService *service.PaymentService,
	cutService *service.MessCutService,
	reportService *service.ReportService,
	loc *time.Location,
	isAdmin func(int64) bool,
	webhookURL string,
	logger *zap.Logger,
) *BotController {
	stateManager := state.NewManager()

	cmdHandlers := handlers.NewHandlers(
		studentService,
		paymentService,
		cutService,
		stateManager,
		loc,
		isAdmin,
		logger,
	)

	stateAdapter := state.NewAdapter(stateManager)

	callbackHandler := callbacks.NewHandler(
		studentService,
		paymentService,
		cutService,
		reportService,
		stateAdapter,
		loc,
		isAdmin,
		logger,
	)

	return &BotController{
		bot:             botInstance,
		handlers:        cmdHandlers,
		callbackHandler: callbackHandler,
		webhookURL:      webhookURL,
		logger:          logger,
	}
}

// RegisterHandlers wires every command, dialog and callback route.
// Exact command matches are registered before the catch-all prefix
// handlers so they win.
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, c.handlers.HandleStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, c.handlers.HandleHelp)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/register", bot.MatchTypeExact, c.handlers.HandleRegister)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/payment", bot.MatchTypeExact, c.handlers.HandlePayment)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/messcut", bot.MatchTypeExact, c.handlers.HandleMessCut)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/myqr", bot.MatchTypeExact, c.handlers.HandleMyQR)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/status", bot.MatchTypeExact, c.handlers.HandleStatus)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/cancel", bot.MatchTypeExact, c.handlers.HandleCancel)

	// Admin entry point
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/admin", bot.MatchTypeExact, c.handlers.HandleAdmin)

	// Dialog continuations: any other text, and photos for the
	// payment-screenshot step.
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, c.handlers.HandleTextMessage)
	c.bot.RegisterHandlerMatchFunc(func(update *models.Update) bool {
		return update.Message != nil && len(update.Message.Photo) > 0
	}, c.handlers.HandlePhotoMessage)

	// Inline keyboard presses
	c.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, c.callbackHandler.HandleCallbackQuery)

	return c.setCommands(ctx)
}

// setCommands publishes the command menu shown in the Telegram client.
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Start"},
		{Command: "register", Description: "📝 Register for the mess"},
		{Command: "myqr", Description: "🎫 My QR card"},
		{Command: "payment", Description: "💳 Upload a payment"},
		{Command: "messcut", Description: "✂️ Apply a mess cut"},
		{Command: "status", Description: "ℹ️ My status"},
		{Command: "cancel", Description: "❌ Cancel the current dialog"},
		{Command: "help", Description: "❓ Help"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})
	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("✅ Bot commands menu set")
	return nil
}

// WebhookHandler exposes the bot's webhook endpoint so the HTTP server
// can mount it.
func (c *BotController) WebhookHandler() http.Handler {
	return c.bot.WebhookHandler()
}

// Start runs the bot until ctx is cancelled. With a webhook URL
// configured it registers the webhook and serves updates pushed by
// Telegram; otherwise it long-polls.
func (c *BotController) Start(ctx context.Context) error {
	if c.webhookURL != "" {
		c.logger.Info("Starting bot in webhook mode", zap.String("url", c.webhookURL))
		if _, err := c.bot.SetWebhook(ctx, &bot.SetWebhookParams{URL: c.webhookURL}); err != nil {
			return err
		}
		c.bot.StartWebhook(ctx)
		return nil
	}

	c.logger.Info("Starting bot in long-polling mode")
	if _, err := c.bot.DeleteWebhook(ctx, &bot.DeleteWebhookParams{}); err != nil {
		c.logger.Warn("Failed to clear webhook before polling", zap.Error(err))
	}
	c.bot.Start(ctx)
	return nil
}
