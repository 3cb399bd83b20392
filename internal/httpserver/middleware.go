package httpserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"grocery-commerce/internal/session"
)

const sessionCtxKey = "commerce.session"

// sessionMiddleware resolves the bearer token to its live session and holds
// the session lock for the rest of the request.
func sessionMiddleware(identity *session.Identity, registry *session.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			abortError(c, http.StatusUnauthorized, "authorization token required")
			return
		}
		owner, err := identity.Lookup(token)
		if err != nil {
			abortError(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		sess := registry.Get(c.Request.Context(), owner)
		sess.Lock()
		defer sess.Unlock()
		c.Set(sessionCtxKey, sess)
		c.Next()
	}
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

func currentSession(c *gin.Context) *session.Session {
	return c.MustGet(sessionCtxKey).(*session.Session)
}
