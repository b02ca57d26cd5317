package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/saharamess/messbot/internal/model"
)

func (s *Server) handleRegenerateAll(c *gin.Context) {
	count, err := s.students.BulkRegenerateQR(c.Request.Context(), c.GetInt64(ctxAdminID))
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Regenerated QR codes for %d students", count),
		"count":   count,
	})
}

func (s *Server) handlePaymentReport(c *gin.Context) {
	summary, err := s.reports.PaymentSummary(c.Request.Context(), time.Now())
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// handleMessCutReport lists cuts overlapping a date window, defaulting to
// the next 30 days.
func (s *Server) handleMessCutReport(c *gin.Context) {
	now := time.Now().In(s.loc)
	from, to := model.Day(now), model.Day(now).AddDate(0, 0, 30)

	var err error
	if v := c.Query("from"); v != "" {
		if from, err = s.parseDate(v); err != nil {
			s.respondError(c, err)
			return
		}
	}
	if v := c.Query("to"); v != "" {
		if to, err = s.parseDate(v); err != nil {
			s.respondError(c, err)
			return
		}
	}

	cuts, err := s.reports.CutsInRange(c.Request.Context(), from, to)
	if err != nil {
		s.respondError(c, err)
		return
	}

	type cutRow struct {
		ID       int64  `json:"id"`
		RollNo   string `json:"roll_no"`
		Name     string `json:"name"`
		FromDate string `json:"from_date"`
		ToDate   string `json:"to_date"`
		By       string `json:"applied_by"`
	}
	rows := make([]cutRow, 0, len(cuts))
	for _, cut := range cuts {
		row := cutRow{
			ID:       cut.ID,
			FromDate: cut.FromDate.Format(time.DateOnly),
			ToDate:   cut.ToDate.Format(time.DateOnly),
			By:       string(cut.AppliedBy),
		}
		if cut.Student != nil {
			row.RollNo, row.Name = cut.Student.RollNo, cut.Student.Name
		}
		rows = append(rows, row)
	}

	c.JSON(http.StatusOK, gin.H{
		"from":  from.Format(time.DateOnly),
		"to":    to.Format(time.DateOnly),
		"count": len(rows),
		"cuts":  rows,
	})
}

func (s *Server) handleStaffTokenList(c *gin.Context) {
	tokens, err := s.tokens.List(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tokens": tokens})
}

type staffTokenCreateRequest struct {
	AdminID     int64  `json:"admin_id"`
	Label       string `json:"label" binding:"required"`
	ExpiresDays int    `json:"expires_days"`
}

func (s *Server) handleStaffTokenCreate(c *gin.Context) {
	var req staffTokenCreateRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		badRequest(c, err.Error())
		return
	}

	var expiresAt *time.Time
	if req.ExpiresDays > 0 {
		t := time.Now().AddDate(0, 0, req.ExpiresDays)
		expiresAt = &t
	}

	token, raw, err := s.tokens.Issue(c.Request.Context(), req.Label, expiresAt, c.GetInt64(ctxAdminID))
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token":     token,
		"raw_token": raw,
		"warning":   "Store this token now. It is not shown again.",
	})
}

func (s *Server) handleStaffTokenRevoke(c *gin.Context) {
	tokenID, err := pathID(c)
	if err != nil {
		badRequest(c, "invalid token id")
		return
	}

	if err := s.tokens.Revoke(c.Request.Context(), tokenID, c.GetInt64(ctxAdminID)); err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Staff token revoked"})
}
