package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/saharamess/messbot/internal/service"
)

// respondError translates a service error into the JSON error envelope.
// Unknown errors become an opaque 500 so internals never leak.
func (s *Server) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"

	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrInvalidRange),
		errors.Is(err, service.ErrPastDate),
		errors.Is(err, service.ErrInvalidQR),
		errors.Is(err, service.ErrStaleQR),
		errors.Is(err, service.ErrNoActiveMeal):
		status, msg = http.StatusBadRequest, err.Error()

	case errors.Is(err, service.ErrNotApproved):
		status, msg = http.StatusForbidden, err.Error()

	case errors.Is(err, service.ErrStudentNotFound),
		errors.Is(err, service.ErrPaymentNotFound),
		errors.Is(err, service.ErrTokenNotFound):
		status, msg = http.StatusNotFound, err.Error()

	case errors.Is(err, service.ErrAlreadyRegistered),
		errors.Is(err, service.ErrRollNoTaken),
		errors.Is(err, service.ErrAlreadyReviewed),
		errors.Is(err, service.ErrOverlappingPayment),
		errors.Is(err, service.ErrOverlappingCut),
		errors.Is(err, service.ErrOverlappingClosure),
		errors.Is(err, service.ErrCutoffPassed),
		errors.Is(err, service.ErrTokenLabelTaken):
		status, msg = http.StatusConflict, err.Error()

	default:
		s.logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}

	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}
