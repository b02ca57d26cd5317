package callbacks

import (
	"context"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/saharamess/messbot/internal/controller/callbacks/callbacktypes"
	"github.com/saharamess/messbot/internal/service"
)

// Handler wraps callbacktypes.Handler with the entry-point method.
type Handler struct {
	*callbacktypes.Handler
}

// StateManager is re-exported so the wiring code has one import.
type StateManager = callbacktypes.StateManager

// UserState mirrors the dialog state type.
type UserState = callbacktypes.UserState

// NewHandler creates the callback handler with its dependencies.
func NewHandler(
	studentService *service.StudentService,
	paymentService *service.PaymentService,
	cutService *service.MessCutService,
	reportService *service.ReportService,
	stateManager callbacktypes.StateManager,
	loc *time.Location,
	isAdmin func(tgUserID int64) bool,
	logger *zap.Logger,
) *Handler {
	inner := &callbacktypes.Handler{
		StudentService: studentService,
		PaymentService: paymentService,
		CutService:     cutService,
		ReportService:  reportService,
		StateManager:   stateManager,
		Loc:            loc,
		IsAdmin:        isAdmin,
		Logger:         logger,
	}
	return &Handler{Handler: inner}
}

// HandleCallbackQuery is registered for every inline button press.
func (h *Handler) HandleCallbackQuery(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}

	callback := update.CallbackQuery

	h.Logger.Info("Callback received",
		zap.String("data", callback.Data),
		zap.Int64("user_id", callback.From.ID),
	)

	Route(ctx, b, callback, h.Handler)
}
