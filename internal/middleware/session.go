package middleware

import (
	"net/http"

	"github.com/ampvending/amp-backend/internal/auth"
	"github.com/ampvending/amp-backend/internal/response"
	"github.com/gin-gonic/gin"
)

// RequireAdminSession is the session gate for every admin route. A request
// passes only with a valid, unexpired access token carrying a known role.
// Missing, malformed, mis-signed and expired tokens all answer 401 alike.
func RequireAdminSession(tokens TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := extractToken(c)
		if tokenStr == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrUnauthenticated)
			return
		}

		claims, err := tokens.Verify(tokenStr, auth.TokenKindAccess)
		if err != nil || !claims.Role.Valid() {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrUnauthenticated)
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}
