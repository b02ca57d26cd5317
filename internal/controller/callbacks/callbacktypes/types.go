package callbacktypes

import (
	"time"

	"go.uber.org/zap"

	"github.com/saharamess/messbot/internal/service"
)

// UserState mirrors the dialog state without importing the state package.
type UserState string

// Dialog states callback handlers move users into.
const (
	StatePayCustomFrom UserState = "pay_custom_from"
	StatePayAmount     UserState = "pay_amount"
	StateClosureFrom   UserState = "closure_from"
	StateOfflineRoll   UserState = "offline_roll"
)

// StateManager is the dialog-state surface callback handlers need.
type StateManager interface {
	ClearState(telegramID int64)
	GetState(telegramID int64) UserState
	SetState(telegramID int64, state UserState)
	SetData(telegramID int64, key string, value interface{})
	GetData(telegramID int64, key string) (interface{}, bool)
	GetAllData(telegramID int64) map[string]interface{}
}

// Handler carries the shared dependencies of all callback handlers.
type Handler struct {
	StudentService *service.StudentService
	PaymentService *service.PaymentService
	CutService     *service.MessCutService
	ReportService  *service.ReportService
	StateManager   StateManager
	Loc            *time.Location
	IsAdmin        func(tgUserID int64) bool
	Logger         *zap.Logger
}
