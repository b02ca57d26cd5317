package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestAPI wires the full route table. Handlers that need storage are not
// exercised here; these tests cover the process-level surface.
func newTestAPI(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	return NewServer(
		Options{
			Addr:          ":0",
			Environment:   "development",
			BotToken:      testBotToken,
			SessionSecret: "test-session-secret",
			Loc:           time.UTC,
			IsAdmin:       func(id int64) bool { return id == 42 },
		},
		nil, nil, nil, nil, nil, nil,
		nil,
		zap.NewNop(),
	)
}

func TestHealth(t *testing.T) {
	s := newTestAPI(t)

	w := httptest.NewRecorder()
	s.httpSrv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestBanner(t *testing.T) {
	s := newTestAPI(t)

	w := httptest.NewRecorder()
	s.httpSrv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Message   string   `json:"message"`
		Endpoints []string `json:"endpoints"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Message)
	assert.Contains(t, body.Endpoints, "/api/scanner")
}

func TestMiniAppAuthEndpoint(t *testing.T) {
	s := newTestAPI(t)

	body, err := json.Marshal(map[string]string{"initData": testInitData()})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/miniapp/auth", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.httpSrv.Handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
		User    struct {
			ID int64 `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(1001), resp.User.ID)

	claims, err := s.parseMiniAppJWT(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(1001), claims.TgUserID)
}

func TestMiniAppAuthEndpointRejectsBadData(t *testing.T) {
	s := newTestAPI(t)

	for _, body := range []string{
		`{}`,
		`{"initData":"hash=deadbeef&user=%7B%22id%22%3A1%7D"}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/miniapp/auth", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		s.httpSrv.Handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %s", body)
	}
}

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	s := newTestAPI(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/students/1/approve"},
		{http.MethodGet, "/api/students/1/snapshot"},
		{http.MethodPost, "/api/scanner/scan"},
		{http.MethodGet, "/api/scanner/stats"},
		{http.MethodPost, "/api/admin/qr/regenerate-all"},
		{http.MethodGet, "/api/admin/reports/payments"},
		{http.MethodGet, "/miniapp/student"},
		{http.MethodGet, "/scanner/live"},
	} {
		w := httptest.NewRecorder()
		s.httpSrv.Handler.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", tc.method, tc.path)
	}
}
