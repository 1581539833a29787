package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"buslane/internal/shared/config"
	"buslane/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// SessionTokenKey is the gin context key the session token is stored under
	SessionTokenKey = "session_token"

	sessionHeader = "X-Session-Token"
	adminHeader   = "X-Admin-Key"
)

// SessionToken resolves the opaque session token for reservation endpoints.
// The token is read from the X-Session-Token header, then from the session
// cookie; when neither is present a fresh UUID is minted and set as a cookie.
// The reservation core only ever sees it as an opaque string.
func SessionToken(cfg *config.Config) gin.HandlerFunc {
	cookieName := cfg.Booking.SessionCookieName
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.GetHeader(sessionHeader))
		if token == "" {
			if cookie, err := c.Cookie(cookieName); err == nil {
				token = strings.TrimSpace(cookie)
			}
		}
		if token == "" {
			token = uuid.New().String()
			// Session cookie, no explicit expiry; holds expire on their own
			c.SetCookie(cookieName, token, 0, "/", "", false, true)
		}

		c.Set(SessionTokenKey, token)
		c.Next()
	}
}

// GetSessionToken returns the session token resolved by SessionToken.
func GetSessionToken(c *gin.Context) string {
	if token, exists := c.Get(SessionTokenKey); exists {
		if s, ok := token.(string); ok {
			return s
		}
	}
	return ""
}

// RequireAdmin gates admin routes behind the deployment API key.
// Constant-time comparison; an empty configured key disables admin routes
// entirely rather than leaving them open.
func RequireAdmin(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(adminHeader)
		if cfg.Admin.APIKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(cfg.Admin.APIKey)) != 1 {
			response.RespondJSON(c, "error", http.StatusForbidden, "admin access required", nil, nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
