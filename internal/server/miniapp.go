package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/saharamess/messbot/internal/model"
	"github.com/saharamess/messbot/internal/service"
)

type miniAppAuthRequest struct {
	InitData string `json:"initData" binding:"required"`
}

// handleMiniAppAuth validates Telegram init data and mints a session token.
func (s *Server) handleMiniAppAuth(c *gin.Context) {
	var req miniAppAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	values, err := ValidateWebAppInitData(req.InitData, s.botToken)
	if err != nil {
		badRequest(c, "invalid telegram data")
		return
	}
	user, err := ParseWebAppUser(values)
	if err != nil {
		badRequest(c, "invalid telegram data")
		return
	}

	signed, expires, err := s.issueMiniAppJWT(user.ID, time.Now())
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"token":      signed,
		"expires_at": expires,
		"user":       user,
	})
}

func (s *Server) handleMiniAppStudent(c *gin.Context) {
	student, err := s.students.GetByTgUserID(c.Request.Context(), c.GetInt64(ctxTgUserID))
	if err != nil {
		s.respondError(c, err)
		return
	}

	// A missing registration is a normal state for the mini app, not a 404.
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"student": student,
	})
}

func (s *Server) handleMiniAppQR(c *gin.Context) {
	student, err := s.students.GetByTgUserID(c.Request.Context(), c.GetInt64(ctxTgUserID))
	if err != nil {
		s.respondError(c, err)
		return
	}
	if student == nil {
		s.respondError(c, service.ErrStudentNotFound)
		return
	}
	if student.Status != model.StudentStatusApproved {
		s.respondError(c, service.ErrNotApproved)
		return
	}

	png, err := s.students.CardPNG(student)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

func (s *Server) handleMiniAppPayments(c *gin.Context) {
	student, err := s.students.GetByTgUserID(c.Request.Context(), c.GetInt64(ctxTgUserID))
	if err != nil {
		s.respondError(c, err)
		return
	}
	if student == nil {
		s.respondError(c, service.ErrStudentNotFound)
		return
	}

	payments, err := s.payments.HistoryForStudent(c.Request.Context(), student.ID)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"payments": payments,
	})
}
