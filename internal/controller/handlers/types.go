package handlers

import (
	"time"

	"go.uber.org/zap"

	"github.com/saharamess/messbot/internal/controller/state"
	"github.com/saharamess/messbot/internal/service"
)

// Handlers carries the dependencies of all command and dialog handlers.
type Handlers struct {
	studentService *service.StudentService
	paymentService *service.PaymentService
	cutService     *service.MessCutService
	stateManager   *state.Manager
	loc            *time.Location
	isAdmin        func(tgUserID int64) bool
	logger         *zap.Logger
}

func NewHandlers(
	studentService *service.StudentService,
	paymentService *service.PaymentService,
	cutService *service.MessCutService,
	stateManager *state.Manager,
	loc *time.Location,
	isAdmin func(tgUserID int64) bool,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		studentService: studentService,
		paymentService: paymentService,
		cutService:     cutService,
		stateManager:   stateManager,
		loc:            loc,
		isAdmin:        isAdmin,
		logger:         logger,
	}
}
