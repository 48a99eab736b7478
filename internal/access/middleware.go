package access

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"educhat-platform/internal/auth"
)

const authorizationHeader = "Authorization"

// Sub-codes carried inside 401 bodies. Clients branch on these, so the
// three-way split between missing, expired and invalid must be preserved.
const (
	codeTokenMissing = 401000
	codeTokenExpired = 401001
	codeTokenInvalid = 401002
)

// Gate returns the middleware enforcing the endpoint matrix. Public paths
// pass untouched. Everything else needs an access token that verifies and
// whose roles intersect the matched rule; admitted requests carry the
// decoded claims in request-scoped context for downstream handlers.
//
// The gate holds no mutable state of its own and performs no I/O, so
// concurrent requests never interfere.
func Gate(m *auth.Manager, matrix *Matrix) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := NormalizePath(c.Request.URL.Path)
		if IsPublic(path) {
			c.Next()
			return
		}

		tokens := auth.ParseBearer(c.GetHeader(authorizationHeader))
		if tokens.Access == "" {
			reject(c, http.StatusUnauthorized, codeTokenMissing, "Token missing")
			return
		}

		claims, err := m.Verify(tokens.Access)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrTokenMissing):
				reject(c, http.StatusUnauthorized, codeTokenMissing, "Token missing")
			case errors.Is(err, auth.ErrTokenExpired):
				reject(c, http.StatusUnauthorized, codeTokenExpired, "Token has expired")
			default:
				reject(c, http.StatusUnauthorized, codeTokenInvalid, "Invalid token")
			}
			return
		}

		rule, ok := matrix.Match(path)
		if !ok || !ExtractRoles(claims).Intersects(rule.Allow) {
			reject(c, http.StatusForbidden, http.StatusForbidden, "You do not have access to this resource")
			return
		}

		c.Request = c.Request.WithContext(auth.WithClaims(c.Request.Context(), claims))

		// Also store on gin context for handler convenience.
		c.Set(auth.GinContextKey, claims)

		c.Next()
	}
}

func reject(c *gin.Context, status, code int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success":     false,
		"message":     message,
		"status_code": code,
	})
}
