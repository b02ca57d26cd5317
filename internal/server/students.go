package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/saharamess/messbot/internal/model"
	"github.com/saharamess/messbot/internal/service"
)

type registerRequest struct {
	TgUserID int64  `json:"tg_user_id" binding:"required"`
	Name     string `json:"name" binding:"required"`
	RollNo   string `json:"roll_no" binding:"required"`
	RoomNo   string `json:"room_no"`
	Phone    string `json:"phone" binding:"required"`
}

func (s *Server) handleStudentRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	student, err := s.students.Register(c.Request.Context(), service.Registration{
		TgUserID: req.TgUserID,
		Name:     req.Name,
		RollNo:   req.RollNo,
		RoomNo:   req.RoomNo,
		Phone:    req.Phone,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration submitted. Awaiting admin approval.",
		"student": student,
	})
}

func (s *Server) handleStudentApprove(c *gin.Context) {
	s.reviewStudent(c, true)
}

func (s *Server) handleStudentDeny(c *gin.Context) {
	s.reviewStudent(c, false)
}

func (s *Server) reviewStudent(c *gin.Context, approve bool) {
	studentID, err := pathID(c)
	if err != nil {
		badRequest(c, "invalid student id")
		return
	}
	adminID := c.GetInt64(ctxAdminID)

	var student *model.Student
	if approve {
		student, err = s.students.Approve(c.Request.Context(), studentID, adminID)
	} else {
		student, err = s.students.Deny(c.Request.Context(), studentID, adminID)
	}
	if err != nil {
		s.respondError(c, err)
		return
	}

	action := "approved"
	if !approve {
		action = "denied"
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Student " + action,
		"student": student,
	})
}

func (s *Server) handleStudentSnapshot(c *gin.Context) {
	studentID, err := pathID(c)
	if err != nil {
		badRequest(c, "invalid student id")
		return
	}

	snapshot, err := s.scans.Snapshot(c.Request.Context(), studentID)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

func pathID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
