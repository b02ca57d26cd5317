package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/saharamess/messbot/internal/model"
)

func testServer() *Server {
	gin.SetMode(gin.TestMode)
	return &Server{
		botToken:      testBotToken,
		sessionSecret: []byte("test-session-secret"),
		loc:           time.UTC,
		isAdmin:       func(id int64) bool { return id == 42 },
		logger:        zap.NewNop(),
	}
}

func TestScannerJWTRoundtrip(t *testing.T) {
	s := testServer()
	token := &model.StaffToken{ID: 3, Label: "Main Counter"}

	signed, expires, err := s.issueScannerJWT(token, time.Now())
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(scannerTokenTTL), expires, time.Minute)

	claims, err := s.parseScannerJWT(signed)
	require.NoError(t, err)
	assert.Equal(t, int64(3), claims.StaffTokenID)
	assert.Equal(t, "Main Counter", claims.Label)
	assert.NotEmpty(t, claims.ID)
}

func TestScannerJWTRejectsForeignSecret(t *testing.T) {
	s := testServer()
	signed, _, err := s.issueScannerJWT(&model.StaffToken{ID: 3, Label: "Gate"}, time.Now())
	require.NoError(t, err)

	other := testServer()
	other.sessionSecret = []byte("different-secret")
	_, err = other.parseScannerJWT(signed)
	assert.Error(t, err)
}

func TestScannerJWTRejectsMiniAppToken(t *testing.T) {
	s := testServer()

	// Same key, wrong audience: a mini-app session must not open the scanner.
	signed, _, err := s.issueMiniAppJWT(1001, time.Now())
	require.NoError(t, err)

	_, err = s.parseScannerJWT(signed)
	assert.Error(t, err)
}

func TestMiniAppJWTRoundtrip(t *testing.T) {
	s := testServer()

	signed, _, err := s.issueMiniAppJWT(1001, time.Now())
	require.NoError(t, err)

	claims, err := s.parseMiniAppJWT(signed)
	require.NoError(t, err)
	assert.Equal(t, int64(1001), claims.TgUserID)
}

func TestMiniAppJWTRejectsExpired(t *testing.T) {
	s := testServer()

	signed, _, err := s.issueMiniAppJWT(1001, time.Now().Add(-2*miniappTokenTTL))
	require.NoError(t, err)

	_, err = s.parseMiniAppJWT(signed)
	assert.Error(t, err)
}

func staffTestRouter(s *Server) *gin.Engine {
	r := gin.New()
	r.GET("/protected", s.staffAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"staff_token_id": c.GetInt64(ctxStaffTokenID)})
	})
	return r
}

func TestStaffAuthRequiresToken(t *testing.T) {
	r := staffTestRouter(testServer())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStaffAuthAcceptsScannerJWT(t *testing.T) {
	s := testServer()
	r := staffTestRouter(s)

	signed, _, err := s.issueScannerJWT(&model.StaffToken{ID: 3, Label: "Gate"}, time.Now())
	require.NoError(t, err)

	// In the Authorization header.
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"staff_token_id":3`)

	// And in ?token= for websocket clients.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected?token="+signed, nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func adminTestRouter(s *Server) *gin.Engine {
	r := gin.New()
	r.POST("/admin-only", s.adminAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"admin_id": c.GetInt64(ctxAdminID)})
	})
	return r
}

func TestAdminAuth(t *testing.T) {
	r := adminTestRouter(testServer())

	post := func(header string, body []byte) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/admin-only", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if header != "" {
			req.Header.Set("X-Admin-Id", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusUnauthorized, post("", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, post("not-a-number", nil).Code)
	assert.Equal(t, http.StatusForbidden, post("7", nil).Code)
	assert.Equal(t, http.StatusOK, post("42", nil).Code)

	// admin_id may ride in the JSON body instead of the header.
	assert.Equal(t, http.StatusOK, post("", []byte(`{"admin_id":42}`)).Code)
	assert.Equal(t, http.StatusForbidden, post("", []byte(`{"admin_id":7}`)).Code)
}

func TestMiniAppAuthMiddleware(t *testing.T) {
	s := testServer()
	r := gin.New()
	r.GET("/me", s.miniappAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"tg_user_id": c.GetInt64(ctxTgUserID)})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	signed, _, err := s.issueMiniAppJWT(1001, time.Now())
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"tg_user_id":1001`)
}
