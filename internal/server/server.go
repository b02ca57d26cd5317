// Package server exposes the REST API, the staff scanner endpoints and the
// Telegram mini-app backend over one gin engine.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/saharamess/messbot/internal/service"
)

// Options carries the process-level knobs the server needs.
type Options struct {
	Addr          string
	Environment   string
	BotToken      string // for mini-app init data validation
	SessionSecret string // signs scanner and mini-app JWTs
	Loc           *time.Location
	IsAdmin       func(tgUserID int64) bool
	Webhook       http.Handler // Telegram webhook, nil in polling mode
}

type Server struct {
	httpSrv *http.Server
	hub     *Hub

	students *service.StudentService
	payments *service.PaymentService
	cuts     *service.MessCutService
	scans    *service.ScanService
	tokens   *service.StaffTokenService
	reports  *service.ReportService

	botToken      string
	sessionSecret []byte
	loc           *time.Location
	isAdmin       func(int64) bool
	logger        *zap.Logger
}

func NewServer(
	opts Options,
	students *service.StudentService,
	payments *service.PaymentService,
	cuts *service.MessCutService,
	scans *service.ScanService,
	tokens *service.StaffTokenService,
	reports *service.ReportService,
	hub *Hub,
	logger *zap.Logger,
) *Server {
	if opts.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		hub:           hub,
		students:      students,
		payments:      payments,
		cuts:          cuts,
		scans:         scans,
		tokens:        tokens,
		reports:       reports,
		botToken:      opts.BotToken,
		sessionSecret: []byte(opts.SessionSecret),
		loc:           opts.Loc,
		isAdmin:       opts.IsAdmin,
		logger:        logger,
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(logger))
	s.routes(engine, opts.Webhook)

	s.httpSrv = &http.Server{
		Addr:              opts.Addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

func (s *Server) routes(r *gin.Engine, webhook http.Handler) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/api", s.handleBanner)

	api := r.Group("/api")
	{
		api.POST("/students/register", s.handleStudentRegister)
		api.POST("/students/:id/approve", s.adminAuth(), s.handleStudentApprove)
		api.POST("/students/:id/deny", s.adminAuth(), s.handleStudentDeny)
		api.GET("/students/:id/snapshot", s.staffAuth(), s.handleStudentSnapshot)

		api.POST("/payments/upload", s.handlePaymentUpload)
		api.POST("/payments/:id/verify", s.adminAuth(), s.handlePaymentVerify)
		api.POST("/payments/:id/deny", s.adminAuth(), s.handlePaymentDeny)
		api.POST("/payments/offline", s.adminAuth(), s.handlePaymentOffline)

		api.POST("/mess-cuts", s.handleMessCut)
		api.POST("/mess-closures", s.adminAuth(), s.handleMessClosure)

		api.POST("/scanner/scan", s.staffAuth(), s.handleScan)
		api.GET("/scanner/stats", s.staffAuth(), s.handleScannerStats)

		admin := api.Group("/admin", s.adminAuth())
		{
			admin.POST("/qr/regenerate-all", s.handleRegenerateAll)
			admin.GET("/reports/payments", s.handlePaymentReport)
			admin.GET("/reports/mess-cuts", s.handleMessCutReport)
			admin.GET("/staff-tokens", s.handleStaffTokenList)
			admin.POST("/staff-tokens", s.handleStaffTokenCreate)
			admin.DELETE("/staff-tokens/:id", s.handleStaffTokenRevoke)
		}
	}

	r.POST("/scanner/login", s.handleScannerLogin)
	r.GET("/scanner/live", s.staffAuth(), s.handleScannerLive)

	if webhook != nil {
		r.POST("/telegram/webhook", gin.WrapH(webhook))
	}

	mini := r.Group("/miniapp")
	{
		mini.POST("/auth", s.handleMiniAppAuth)

		session := mini.Group("", s.miniappAuth())
		{
			session.GET("/student", s.handleMiniAppStudent)
			session.GET("/qr", s.handleMiniAppQR)
			session.GET("/payments", s.handleMiniAppPayments)
		}
	}
}

func (s *Server) handleBanner(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Sahara Mess API",
		"version": "1.0",
		"endpoints": []string{
			"/api/students", "/api/payments", "/api/mess-cuts", "/api/mess-closures",
			"/api/scanner", "/api/admin", "/scanner/login", "/miniapp",
		},
	})
}

// Run serves until Shutdown is called.
func (s *Server) Run() error {
	s.logger.Info("🌐 HTTP server listening", zap.String("addr", s.httpSrv.Addr))
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// parseDate reads a YYYY-MM-DD request field as a calendar date in the mess
// timezone.
func (s *Server) parseDate(v string) (time.Time, error) {
	t, err := time.ParseInLocation(time.DateOnly, v, s.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: dates must be YYYY-MM-DD", service.ErrValidation)
	}
	return t, nil
}
