package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
)

// Context keys set by the auth middlewares.
const (
	ctxStaffTokenID = "staff_token_id"
	ctxStaffLabel   = "staff_label"
	ctxAdminID      = "admin_id"
	ctxTgUserID     = "tg_user_id"
)

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)),
		)
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return ""
}

// staffAuth admits a scanner session token or a raw staff token. The token
// rides in the Authorization header, or in ?token= for websocket clients
// that cannot set headers.
func (s *Server) staffAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			raw = c.Query("token")
		}
		if raw == "" {
			unauthorized(c, "staff token required")
			return
		}

		if claims, err := s.parseScannerJWT(raw); err == nil {
			c.Set(ctxStaffTokenID, claims.StaffTokenID)
			c.Set(ctxStaffLabel, claims.Label)
			c.Next()
			return
		}

		token, err := s.tokens.Authenticate(c.Request.Context(), raw)
		if err != nil {
			unauthorized(c, "invalid staff token")
			return
		}

		c.Set(ctxStaffTokenID, token.ID)
		c.Set(ctxStaffLabel, token.Label)
		c.Next()
	}
}

// adminAuth admits Telegram admins. The id comes from the X-Admin-Id header
// or an admin_id field in a JSON body. There is no secret here: the API is
// expected to sit behind the hostel network / a reverse proxy, the same
// trust model the bot uses for admin commands.
func (s *Server) adminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		var adminID int64

		if header := c.GetHeader("X-Admin-Id"); header != "" {
			id, err := strconv.ParseInt(header, 10, 64)
			if err != nil {
				unauthorized(c, "invalid X-Admin-Id header")
				return
			}
			adminID = id
		} else if c.Request.Body != nil && c.Request.Method != http.MethodGet {
			var body struct {
				AdminID int64 `json:"admin_id"`
			}
			// ShouldBindBodyWith buffers the body so handlers can bind again.
			if err := c.ShouldBindBodyWith(&body, binding.JSON); err == nil {
				adminID = body.AdminID
			}
		}

		if adminID == 0 {
			unauthorized(c, "admin id required")
			return
		}
		if !s.isAdmin(adminID) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "not an admin"})
			return
		}

		c.Set(ctxAdminID, adminID)
		c.Next()
	}
}

// miniappAuth admits mini-app session tokens minted by /miniapp/auth.
func (s *Server) miniappAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			unauthorized(c, "session token required")
			return
		}

		claims, err := s.parseMiniAppJWT(raw)
		if err != nil {
			unauthorized(c, "invalid session token")
			return
		}

		c.Set(ctxTgUserID, claims.TgUserID)
		c.Next()
	}
}
