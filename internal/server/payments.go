package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/saharamess/messbot/internal/model"
	"github.com/saharamess/messbot/internal/service"
)

type paymentUploadRequest struct {
	StudentID     int64   `json:"student_id" binding:"required"`
	CycleStart    string  `json:"cycle_start" binding:"required"`
	CycleEnd      string  `json:"cycle_end" binding:"required"`
	Amount        float64 `json:"amount" binding:"required,gt=0"` // rupees
	ScreenshotURL string  `json:"screenshot_url" binding:"required"`
}

func (s *Server) handlePaymentUpload(c *gin.Context) {
	var req paymentUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	start, err := s.parseDate(req.CycleStart)
	if err != nil {
		s.respondError(c, err)
		return
	}
	end, err := s.parseDate(req.CycleEnd)
	if err != nil {
		s.respondError(c, err)
		return
	}

	payment, err := s.payments.Upload(c.Request.Context(), service.PaymentUpload{
		StudentID:     req.StudentID,
		CycleStart:    start,
		CycleEnd:      end,
		Amount:        rupeesToPaise(req.Amount),
		ScreenshotURL: req.ScreenshotURL,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Payment uploaded. Awaiting verification.",
		"payment": payment,
	})
}

func (s *Server) handlePaymentVerify(c *gin.Context) {
	s.reviewPayment(c, true)
}

func (s *Server) handlePaymentDeny(c *gin.Context) {
	s.reviewPayment(c, false)
}

func (s *Server) reviewPayment(c *gin.Context, verify bool) {
	paymentID, err := pathID(c)
	if err != nil {
		badRequest(c, "invalid payment id")
		return
	}
	adminID := c.GetInt64(ctxAdminID)

	var payment *model.Payment
	if verify {
		payment, err = s.payments.Verify(c.Request.Context(), paymentID, adminID)
	} else {
		payment, err = s.payments.Deny(c.Request.Context(), paymentID, adminID)
	}
	if err != nil {
		s.respondError(c, err)
		return
	}

	action := "verified"
	if !verify {
		action = "denied"
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Payment " + action,
		"payment": payment,
	})
}

type offlinePaymentRequest struct {
	AdminID    int64   `json:"admin_id"`
	StudentID  int64   `json:"student_id"`
	RollNo     string  `json:"roll_no"`
	CycleStart string  `json:"cycle_start" binding:"required"`
	CycleEnd   string  `json:"cycle_end" binding:"required"`
	Amount     float64 `json:"amount" binding:"required,gt=0"` // rupees
}

// handlePaymentOffline records cash handed to the mess office. The student
// can be named by id or by roll number.
func (s *Server) handlePaymentOffline(c *gin.Context) {
	var req offlinePaymentRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		badRequest(c, err.Error())
		return
	}

	studentID := req.StudentID
	if studentID == 0 && req.RollNo != "" {
		student, err := s.students.GetByRollNo(c.Request.Context(), req.RollNo)
		if err != nil {
			s.respondError(c, err)
			return
		}
		if student == nil {
			s.respondError(c, service.ErrStudentNotFound)
			return
		}
		studentID = student.ID
	}
	if studentID == 0 {
		badRequest(c, "student_id or roll_no required")
		return
	}

	start, err := s.parseDate(req.CycleStart)
	if err != nil {
		s.respondError(c, err)
		return
	}
	end, err := s.parseDate(req.CycleEnd)
	if err != nil {
		s.respondError(c, err)
		return
	}

	payment, err := s.payments.RecordOffline(c.Request.Context(),
		studentID, start, end, rupeesToPaise(req.Amount), c.GetInt64(ctxAdminID))
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Offline payment recorded",
		"payment": payment,
	})
}

func rupeesToPaise(rupees float64) int64 {
	return int64(rupees*100 + 0.5)
}
