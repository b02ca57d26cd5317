package qr

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Wire format: v|<student_id>|<qr_version>|<nonce>|<signature>
// where signature = hex(HMAC-SHA256(secret, "v|id|version|nonce")).
const payloadPrefix = "v"

var ErrInvalidPayload = errors.New("invalid qr payload")

// Payload is the signed content of a student's QR code.
type Payload struct {
	StudentID int64
	Version   int
	Nonce     string
}

// Signer signs and verifies QR payloads with a shared secret.
type Signer struct {
	secret []byte
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Sign returns the wire form of the payload.
func (s *Signer) Sign(p Payload) string {
	base := fmt.Sprintf("%s|%d|%d|%s", payloadPrefix, p.StudentID, p.Version, p.Nonce)
	return base + "|" + s.signature(base)
}

// Verify checks shape and signature of scanned data and returns the embedded
// payload. The signature check runs before any field parsing and uses a
// constant-time compare.
func (s *Signer) Verify(data string) (Payload, error) {
	parts := strings.Split(data, "|")
	if len(parts) != 5 || parts[0] != payloadPrefix {
		return Payload{}, ErrInvalidPayload
	}

	base := strings.Join(parts[:4], "|")
	if !hmac.Equal([]byte(s.signature(base)), []byte(parts[4])) {
		return Payload{}, ErrInvalidPayload
	}

	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || id <= 0 {
		return Payload{}, ErrInvalidPayload
	}
	version, err := strconv.Atoi(parts[2])
	if err != nil || version <= 0 {
		return Payload{}, ErrInvalidPayload
	}
	if parts[3] == "" {
		return Payload{}, ErrInvalidPayload
	}

	return Payload{StudentID: id, Version: version, Nonce: parts[3]}, nil
}

func (s *Signer) signature(base string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(base))
	return hex.EncodeToString(mac.Sum(nil))
}

// NewNonce returns a fresh 64-char hex nonce for a student's QR rotation.
func NewNonce() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
