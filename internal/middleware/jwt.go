package middleware

import (
	"strings"

	"github.com/ampvending/amp-backend/internal/auth"
	"github.com/gin-gonic/gin"
)

const (
	// ContextKeyClaims is the Gin context key for verified session claims.
	ContextKeyClaims = "claims"
)

// TokenVerifier verifies a signed session token of a given kind.
type TokenVerifier interface {
	Verify(token string, kind auth.TokenKind) (*auth.Claims, error)
}

// GetClaims retrieves the session claims from the Gin context.
func GetClaims(c *gin.Context) *auth.Claims {
	val, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil
	}
	claims, ok := val.(*auth.Claims)
	if !ok {
		return nil
	}
	return claims
}

// extractToken reads the access token from the session cookie and falls
// back to an Authorization: Bearer header for API clients.
func extractToken(c *gin.Context) string {
	if v, err := c.Cookie(auth.CookieAccess); err == nil && v != "" {
		return v
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return ""
}
