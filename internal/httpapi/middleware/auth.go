package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/qondlabs/qad-assistant/internal/auth"
	"github.com/qondlabs/qad-assistant/internal/common"
)

const (
	// UsernameKey is the context key holding the authenticated username.
	UsernameKey = "auth_username"

	// SessionCookie carries the JWT for browser clients; API clients may
	// send it as a bearer token instead.
	SessionCookie = "qad_session"
)

func AuthRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			if cookie, err := c.Cookie(SessionCookie); err == nil {
				token = cookie
			}
		}
		if token == "" {
			common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
			c.Abort()
			return
		}

		username, err := auth.ParseJWT(token, secret)
		if err != nil {
			common.Fail(c, http.StatusUnauthorized, 40102, "invalid or expired session")
			c.Abort()
			return
		}

		c.Set(UsernameKey, username)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}
