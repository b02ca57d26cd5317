package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/saharamess/messbot/internal/app"
	"github.com/saharamess/messbot/internal/config"
	"github.com/saharamess/messbot/internal/controller"
	"github.com/saharamess/messbot/internal/model"
	"github.com/saharamess/messbot/internal/notify"
	"github.com/saharamess/messbot/internal/qr"
	"github.com/saharamess/messbot/internal/repository"
	"github.com/saharamess/messbot/internal/server"
	"github.com/saharamess/messbot/internal/service"
	"github.com/saharamess/messbot/internal/sheets"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	logger.Sugar().Infow("Starting mess bot",
		"environment", cfg.Environment,
		"timezone", cfg.Timezone,
		"telegram_mode", cfg.TelegramMode,
		"admins", len(cfg.AdminTgIDs))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	migrator, err := app.NewMigrator(pool, cfg.MigrationsDir)
	if err != nil {
		logger.Fatal("Failed to init migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	migrator.Close()

	studentRepo := repository.NewStudentRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)
	cutRepo := repository.NewMessCutRepository(pool)
	closureRepo := repository.NewClosureRepository(pool)
	scanRepo := repository.NewScanRepository(pool)
	settingsRepo := repository.NewSettingsRepository(pool)
	staffTokenRepo := repository.NewStaffTokenRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)
	deadLetterRepo := repository.NewDeadLetterRepository(pool)

	signer := qr.NewSigner(cfg.QRSecret)
	cards := qr.NewCardRenderer(cfg.QRCardFont)

	b, err := bot.New(cfg.TelegramToken)
	if err != nil {
		logger.Fatal("Failed to create telegram bot", zap.Error(err))
	}

	notifier := notify.NewNotifier(notify.NewTelegramSender(b), deadLetterRepo, cfg.AdminTgIDs, logger)
	notifier.Start()

	// The spreadsheet backup is optional. auditSheet stays a nil interface
	// when no credentials are configured, and services skip the recording.
	var (
		recorder   *sheets.Recorder
		auditSheet service.Recorder
	)
	if cfg.SheetsCredentialsJSON != "" && cfg.SheetsSpreadsheetID != "" {
		sheetClient, err := sheets.NewClient(ctx, []byte(cfg.SheetsCredentialsJSON), cfg.SheetsSpreadsheetID)
		if err != nil {
			logger.Fatal("Failed to init sheets client", zap.Error(err))
		}
		recorder = sheets.NewRecorder(sheetClient, deadLetterRepo, logger)
		recorder.Start()
		auditSheet = recorder
	} else {
		logger.Warn("Sheets backup disabled, SHEETS_CREDENTIALS_JSON or SHEETS_SPREADSHEET_ID not set")
	}

	policy := service.CutoffPolicy{
		Loc:    cfg.Location,
		Hour:   cfg.CutoffHour,
		Minute: cfg.CutoffMinute,
	}

	hub := server.NewHub(logger)

	studentService := service.NewStudentService(studentRepo, settingsRepo, auditRepo, signer, cards, notifier, auditSheet, logger)
	paymentService := service.NewPaymentService(paymentRepo, studentRepo, auditRepo, notifier, auditSheet, cfg.Location, logger)
	cutService := service.NewMessCutService(cutRepo, closureRepo, studentRepo, auditRepo, notifier, auditSheet, policy, logger)
	scanService := service.NewScanService(studentRepo, paymentRepo, cutRepo, closureRepo, scanRepo, auditRepo,
		signer, cfg.Meals, cfg.Location, notifier, auditSheet, hub, logger)
	staffTokenService := service.NewStaffTokenService(staffTokenRepo, auditRepo, logger)
	reportService := service.NewReportService(scanService, studentRepo, paymentRepo, cutRepo, deadLetterRepo,
		notifier, auditSheet, cfg.Location, logger)

	deadLetterService := service.NewDeadLetterService(deadLetterRepo, logger)
	deadLetterService.RegisterReplayer(model.OpTelegramSend, notifier)
	if recorder != nil {
		deadLetterService.RegisterReplayer(model.OpSheetsAppend, recorder)
	}

	staffTokenService.Bootstrap(ctx, cfg.StaffBootstrapLabel, cfg.StaffBootstrapToken)

	webhookURL := ""
	if cfg.TelegramMode == "webhook" {
		webhookURL = cfg.WebhookURL
	}

	botController := controller.NewBotController(
		b,
		studentService,
		paymentService,
		cutService,
		reportService,
		cfg.Location,
		cfg.IsAdmin,
		webhookURL,
		logger,
	)
	if err := botController.RegisterHandlers(ctx); err != nil {
		logger.Fatal("Failed to register bot handlers", zap.Error(err))
	}

	var webhook http.Handler
	if webhookURL != "" {
		webhook = botController.WebhookHandler()
	}

	srv := server.NewServer(
		server.Options{
			Addr:          cfg.HTTPAddr,
			Environment:   cfg.Environment,
			BotToken:      cfg.TelegramToken,
			SessionSecret: cfg.SessionSecret,
			Loc:           cfg.Location,
			IsAdmin:       cfg.IsAdmin,
			Webhook:       webhook,
		},
		studentService,
		paymentService,
		cutService,
		scanService,
		staffTokenService,
		reportService,
		hub,
		logger,
	)

	scheduler := app.NewScheduler(
		cutService,
		reportService,
		paymentService,
		deadLetterService,
		scanService,
		cfg.CutoffHour,
		cfg.CutoffMinute,
		cfg.Location,
		logger,
	)
	scheduler.Start(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		return srv.Run()
	})
	g.Go(func() error {
		return botController.Start(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Runtime failure", zap.Error(err))
	}

	scheduler.Stop()
	notifier.Stop()
	if recorder != nil {
		recorder.Stop()
	}

	logger.Info("Mess bot stopped")
}
