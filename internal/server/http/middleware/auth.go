package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/milkway/milkway/internal/domain/model"
)

// IdentityContextKey is the gin context key holding the verified caller.
const IdentityContextKey = "identity"

const authCookieName = "milkway_token"

// TokenParser verifies a bearer token and returns the identity it encodes.
type TokenParser interface {
	ParseToken(token string) (model.Identity, error)
}

// AuthRequired rejects requests without a valid token and stores the
// caller's identity in the request context.
func AuthRequired(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		ident, err := parser.ParseToken(token)
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		c.Set(IdentityContextKey, ident)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := c.Cookie(authCookieName); err == nil {
		return cookie
	}
	return ""
}

// SetAuthCookie attaches the issued token to the response as a cookie and
// an Authorization header.
func SetAuthCookie(c *gin.Context, token string) {
	c.SetCookie(authCookieName, token, 0, "/", "", false, true)
	c.Header("Authorization", "Bearer "+token)
}
