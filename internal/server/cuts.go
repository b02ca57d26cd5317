package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/saharamess/messbot/internal/model"
)

type messCutRequest struct {
	StudentID int64  `json:"student_id" binding:"required"`
	FromDate  string `json:"from_date" binding:"required"`
	ToDate    string `json:"to_date" binding:"required"`
}

func (s *Server) handleMessCut(c *gin.Context) {
	var req messCutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	from, err := s.parseDate(req.FromDate)
	if err != nil {
		s.respondError(c, err)
		return
	}
	to, err := s.parseDate(req.ToDate)
	if err != nil {
		s.respondError(c, err)
		return
	}

	cut, err := s.cuts.Apply(c.Request.Context(), req.StudentID, from, to, model.CutAppliedByStudent)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Mess cut applied",
		"mess_cut": cut,
	})
}

type messClosureRequest struct {
	AdminID  int64  `json:"admin_id"`
	FromDate string `json:"from_date" binding:"required"`
	ToDate   string `json:"to_date" binding:"required"`
	Reason   string `json:"reason" binding:"required"`
}

func (s *Server) handleMessClosure(c *gin.Context) {
	var req messClosureRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		badRequest(c, err.Error())
		return
	}

	from, err := s.parseDate(req.FromDate)
	if err != nil {
		s.respondError(c, err)
		return
	}
	to, err := s.parseDate(req.ToDate)
	if err != nil {
		s.respondError(c, err)
		return
	}

	closure, err := s.cuts.DeclareClosure(c.Request.Context(), from, to, req.Reason, c.GetInt64(ctxAdminID))
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Mess closure declared and students notified",
		"closure": closure,
	})
}
