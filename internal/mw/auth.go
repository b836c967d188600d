package mw

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pharma-elog-backend/internal/auth"
	"pharma-elog-backend/internal/store"
)

// SessionCookie is the cookie carrying the session token.
const SessionCookie = "elog_session"

const actingUserKey = "actingUser"

// RequireSession validates the session token (cookie or bearer header),
// re-loads the account so a deactivation takes effect immediately, and puts
// the ActingUser into the request context.
func RequireSession(tokens *auth.TokenManager, s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		claims, err := tokens.Parse(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		user, err := s.FindUserByID(c.Request.Context(), claims.Subject)
		if err != nil || !user.IsActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		c.Set(actingUserKey, auth.Acting(user))
		c.Next()
	}
}

// ActingUser returns the authenticated principal set by RequireSession.
func ActingUser(c *gin.Context) (auth.ActingUser, bool) {
	v, ok := c.Get(actingUserKey)
	if !ok {
		return auth.ActingUser{}, false
	}
	actor, ok := v.(auth.ActingUser)
	return actor, ok
}

func tokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
