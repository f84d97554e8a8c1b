package middleware

import (
	"net/http"
	"strings"

	"github.com/dfryer1193/sitepress/auth"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	// SessionCookie holds the signed session token.
	SessionCookie = "session-token"
	sessionKey    = "session"
)

// Authorizer verifies session tokens.
type Authorizer interface {
	Authorize(token string) (*auth.Session, error)
}

// RequireSession rejects the request with 401 unless it carries a valid session.
// Handlers behind it never run for unauthenticated callers.
func RequireSession(a Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := a.Authorize(SessionToken(c))
		if err != nil {
			log.Debug().Err(err).Str("path", c.Request.URL.Path).Str("request_id", RequestID(c)).Msg("Rejected request without valid session")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		c.Set(sessionKey, session)
		c.Next()
	}
}

// SessionToken reads the session token from the session cookie, falling back to a bearer
// Authorization header.
func SessionToken(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie
	}

	scheme, token, found := strings.Cut(c.GetHeader("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// GetSession returns the session RequireSession attached to the request.
func GetSession(c *gin.Context) (*auth.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	session, ok := v.(*auth.Session)
	return session, ok
}
