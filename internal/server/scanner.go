package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/saharamess/messbot/internal/model"
)

type scannerLoginRequest struct {
	Token string `json:"token" binding:"required"`
}

// handleScannerLogin trades a raw staff token for a scanner session JWT.
func (s *Server) handleScannerLogin(c *gin.Context) {
	var req scannerLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	token, err := s.tokens.Authenticate(c.Request.Context(), req.Token)
	if err != nil {
		unauthorized(c, "invalid staff token")
		return
	}

	signed, expires, err := s.issueScannerJWT(token, time.Now())
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      signed,
		"expires_at": expires,
		"label":      token.Label,
	})
}

type scanRequest struct {
	QRData     string `json:"qr_data" binding:"required"`
	Meal       string `json:"meal"`
	DeviceInfo string `json:"device_info"`
}

// handleScan evaluates one QR presentation. A blocked student is still a
// 200: the verdict is the answer, not an error.
func (s *Server) handleScan(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	staffTokenID := c.GetInt64(ctxStaffTokenID)

	verdict, err := s.scans.Scan(c.Request.Context(),
		req.QRData, &staffTokenID, req.DeviceInfo, model.Meal(req.Meal))
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, verdict)
}

func (s *Server) handleScannerStats(c *gin.Context) {
	stats, err := s.scans.TodayStats(c.Request.Context(), time.Now())
	if err != nil {
		s.respondError(c, err)
		return
	}

	recent, err := s.scans.RecentScans(c.Request.Context(), 10)
	if err != nil {
		s.respondError(c, err)
		return
	}

	total, allowed := 0, stats.ByResult[model.ScanAllowed]
	for _, n := range stats.ByResult {
		total += n
	}

	c.JSON(http.StatusOK, gin.H{
		"date":            stats.Date,
		"total":           total,
		"allowed":         allowed,
		"blocked":         total - allowed,
		"by_result":       stats.ByResult,
		"allowed_by_meal": stats.AllowedByMeal,
		"recent":          recent,
	})
}
