package server

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/saharamess/messbot/internal/model"
)

const (
	scannerTokenTTL = 12 * time.Hour
	miniappTokenTTL = 24 * time.Hour

	subjectScanner = "scanner"
	subjectMiniApp = "miniapp"
)

type scannerClaims struct {
	StaffTokenID int64  `json:"staff_token_id"`
	Label        string `json:"label"`
	jwt.RegisteredClaims
}

type miniappClaims struct {
	TgUserID int64 `json:"tg_user_id"`
	jwt.RegisteredClaims
}

// issueScannerJWT exchanges an authenticated staff token for a short-lived
// session token, so the raw token does not travel with every scan.
func (s *Server) issueScannerJWT(token *model.StaffToken, now time.Time) (string, time.Time, error) {
	expires := now.Add(scannerTokenTTL)
	claims := scannerClaims{
		StaffTokenID: token.ID,
		Label:        token.Label,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectScanner,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.sessionSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign scanner token: %w", err)
	}
	return signed, expires, nil
}

func (s *Server) parseScannerJWT(raw string) (*scannerClaims, error) {
	claims := &scannerClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, s.jwtKey,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Subject != subjectScanner {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func (s *Server) issueMiniAppJWT(tgUserID int64, now time.Time) (string, time.Time, error) {
	expires := now.Add(miniappTokenTTL)
	claims := miniappClaims{
		TgUserID: tgUserID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectMiniApp,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.sessionSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign mini-app token: %w", err)
	}
	return signed, expires, nil
}

func (s *Server) parseMiniAppJWT(raw string) (*miniappClaims, error) {
	claims := &miniappClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, s.jwtKey,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Subject != subjectMiniApp {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func (s *Server) jwtKey(*jwt.Token) (interface{}, error) {
	return s.sessionSecret, nil
}
