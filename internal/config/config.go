package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/saharamess/messbot/internal/model"
)

type Config struct {
	TelegramToken string
	TelegramMode  string // "polling" or "webhook"
	WebhookURL    string

	DBDSN         string
	Environment   string
	HTTPAddr      string
	MigrationsDir string

	QRSecret      string
	SessionSecret string
	QRCardFont    string

	AdminTgIDs []int64

	Timezone     string
	Location     *time.Location
	CutoffHour   int
	CutoffMinute int
	Meals        model.MealSchedule

	SheetsCredentialsJSON string
	SheetsSpreadsheetID   string

	StaffBootstrapLabel string
	StaffBootstrapToken string
}

func Load() (*Config, error) {
	// Load .env if present, ignore when missing
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	cfg := &Config{
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		TelegramMode:  os.Getenv("TELEGRAM_MODE"),
		WebhookURL:    os.Getenv("TELEGRAM_WEBHOOK_URL"),

		DBDSN:         os.Getenv("DB_DSN"),
		Environment:   os.Getenv("ENV"),
		HTTPAddr:      os.Getenv("HTTP_ADDR"),
		MigrationsDir: os.Getenv("MIGRATIONS_DIR"),

		QRSecret:      os.Getenv("QR_SECRET"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		QRCardFont:    os.Getenv("QR_CARD_FONT"),

		Timezone: os.Getenv("TIMEZONE"),

		SheetsCredentialsJSON: os.Getenv("SHEETS_CREDENTIALS_JSON"),
		SheetsSpreadsheetID:   os.Getenv("SHEETS_SPREADSHEET_ID"),

		StaffBootstrapLabel: os.Getenv("STAFF_BOOTSTRAP_LABEL"),
		StaffBootstrapToken: os.Getenv("STAFF_BOOTSTRAP_TOKEN"),
	}

	// Defaults
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.TelegramMode == "" {
		cfg.TelegramMode = "polling"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.MigrationsDir == "" {
		cfg.MigrationsDir = "migrations"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Asia/Kolkata"
	}
	if cfg.SessionSecret == "" {
		// Scanner/mini-app sessions fall back to the QR secret
		cfg.SessionSecret = cfg.QRSecret
	}

	// DB_DSN, or the individual component variables
	if cfg.DBDSN == "" {
		cfg.DBDSN = DatabaseDSN()
	}

	// Required fields
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN (or DB_HOST/DB_NAME/DB_USER) is required but not set")
	}
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is required but not set")
	}
	if cfg.QRSecret == "" {
		return nil, fmt.Errorf("QR_SECRET is required but not set")
	}
	if cfg.TelegramMode != "polling" && cfg.TelegramMode != "webhook" {
		return nil, fmt.Errorf("TELEGRAM_MODE must be polling or webhook, got %q", cfg.TelegramMode)
	}
	if cfg.TelegramMode == "webhook" && cfg.WebhookURL == "" {
		return nil, fmt.Errorf("TELEGRAM_WEBHOOK_URL is required in webhook mode")
	}

	adminIDs, err := parseAdminIDs(os.Getenv("ADMIN_TG_IDS"))
	if err != nil {
		return nil, err
	}
	cfg.AdminTgIDs = adminIDs

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}
	cfg.Location = loc

	cfg.CutoffHour, cfg.CutoffMinute, err = parseClock(getenvDefault("CUTOFF_TIME", "23:00"))
	if err != nil {
		return nil, fmt.Errorf("CUTOFF_TIME: %w", err)
	}

	cfg.Meals, err = loadMealSchedule()
	if err != nil {
		return nil, err
	}

	log.Printf("Config loaded (env=%s, tz=%s, admins=%d)\n", cfg.Environment, cfg.Timezone, len(cfg.AdminTgIDs))

	return cfg, nil
}

// IsAdmin reports whether the Telegram user is in ADMIN_TG_IDS.
func (c *Config) IsAdmin(tgUserID int64) bool {
	for _, id := range c.AdminTgIDs {
		if id == tgUserID {
			return true
		}
	}
	return false
}

// CutoffToday returns today's cutoff moment in the mess timezone.
func (c *Config) CutoffToday(now time.Time) time.Time {
	local := now.In(c.Location)
	return time.Date(local.Year(), local.Month(), local.Day(), c.CutoffHour, c.CutoffMinute, 59, 0, c.Location)
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// DatabaseDSN resolves the Postgres DSN from DB_DSN or, when that is unset,
// from the DB_HOST/DB_PORT/DB_NAME/DB_USER/DB_PASSWORD quintet. Shared with
// the stafftoken CLI, which needs the database but not the full config.
func DatabaseDSN() string {
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		return dsn
	}
	return dsnFromParts()
}

// dsnFromParts assembles a DSN from DB_HOST/DB_PORT/DB_NAME/DB_USER/DB_PASSWORD.
func dsnFromParts() string {
	host := os.Getenv("DB_HOST")
	name := os.Getenv("DB_NAME")
	user := os.Getenv("DB_USER")
	if host == "" || name == "" || user == "" {
		return ""
	}
	port := getenvDefault("DB_PORT", "5432")
	password := os.Getenv("DB_PASSWORD")
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s", user, password, host, port, name)
}

func parseAdminIDs(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("ADMIN_TG_IDS is required but not set")
	}

	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ADMIN_TG_IDS: invalid id %q", part)
		}
		ids = append(ids, id)
	}

	if len(ids) == 0 {
		return nil, fmt.Errorf("ADMIN_TG_IDS contains no valid ids")
	}

	return ids, nil
}

// parseClock parses "HH:MM".
func parseClock(s string) (hour, minute int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected HH:MM, got %q", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour, minute, nil
}

// loadMealSchedule starts from the standard windows and applies MEAL_BREAKFAST,
// MEAL_LUNCH, MEAL_DINNER overrides ("07:00-09:30").
func loadMealSchedule() (model.MealSchedule, error) {
	schedule := model.DefaultMealSchedule()

	overrides := map[model.Meal]string{
		model.MealBreakfast: os.Getenv("MEAL_BREAKFAST"),
		model.MealLunch:     os.Getenv("MEAL_LUNCH"),
		model.MealDinner:    os.Getenv("MEAL_DINNER"),
	}

	for i, w := range schedule {
		spec := overrides[w.Meal]
		if spec == "" {
			continue
		}
		parsed, err := model.ParseMealWindow(w.Meal, spec)
		if err != nil {
			return nil, fmt.Errorf("MEAL_%s: %w", w.Meal, err)
		}
		schedule[i] = parsed
	}

	return schedule, nil
}
