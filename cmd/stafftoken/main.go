package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/saharamess/messbot/internal/config"
	"github.com/saharamess/messbot/internal/repository"
	"github.com/saharamess/messbot/internal/service"
)

// Mints a staff token for a scanner device. The raw token is printed exactly
// once; only its digest lands in the database.
func main() {
	label := flag.String("label", "", `token label, e.g. "Main Counter"`)
	expires := flag.Int("expires", 0, "days until the token expires, 0 for no expiry")
	flag.Parse()

	if *label == "" {
		fmt.Fprintln(os.Stderr, "usage: stafftoken -label \"Main Counter\" [-expires 90]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	_ = godotenv.Load(".env")

	dsn := config.DatabaseDSN()
	if dsn == "" {
		fmt.Fprintln(os.Stderr, "DB_DSN (or DB_HOST/DB_NAME/DB_USER) is required but not set")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	tokens := service.NewStaffTokenService(
		repository.NewStaffTokenRepository(pool),
		repository.NewAuditRepository(pool),
		zap.NewNop(),
	)

	var expiresAt *time.Time
	if *expires > 0 {
		t := time.Now().AddDate(0, 0, *expires)
		expiresAt = &t
	}

	token, raw, err := tokens.Issue(ctx, *label, expiresAt, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to issue token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("✅ Staff token issued")
	fmt.Println()
	fmt.Printf("   Label:   %s\n", token.Label)
	fmt.Printf("   Token:   %s\n", raw)
	if expiresAt != nil {
		fmt.Printf("   Expires: %s\n", expiresAt.Format("02 Jan 2006"))
	} else {
		fmt.Println("   Expires: never")
	}
	fmt.Println()
	fmt.Println("⚠️  Save the token now. It is stored hashed and cannot be shown again.")
}
