package middleware

import (
	"strings"

	"github.com/farellandr/eventbook/internal/auth"
	"github.com/gin-gonic/gin"
)

const (
	SessionCookie = "eventbook_session"
	identityKey   = "identity"
)

// Identity resolves the caller from the session cookie or a bearer token and
// stores it on the context. It never rejects a request; the guards in
// package auth decide access.
func Identity(tokens *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			token, _ = c.Cookie(SessionCookie)
		}

		var id auth.Identity
		if token != "" {
			if parsed, err := tokens.Parse(token); err == nil {
				id = parsed
			}
		}

		c.Set(identityKey, id)
		c.Next()
	}
}

func GetIdentity(c *gin.Context) auth.Identity {
	v, exists := c.Get(identityKey)
	if !exists {
		return auth.Identity{}
	}
	id, _ := v.(auth.Identity)
	return id
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
