package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/booking-api/internal/handler"
	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/service/auth"
)

const (
	ContextAccountID = "account_id"
	ContextRole      = "role"
)

type AuthMiddleware struct {
	authService *auth.Service
}

func NewAuthMiddleware(authService *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// RequireRole authenticates the bearer token, checks the caller holds the
// given role, and when the route carries the matching account path
// parameter, checks the token subject owns it. A valid token for a
// different account is a 403, not a 401.
func (m *AuthMiddleware) RequireRole(role model.Role, pathParam string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authorization header"))
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid authorization format"))
			c.Abort()
			return
		}

		claims, err := m.authService.ValidateToken(c.Request.Context(), parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid token"))
			c.Abort()
			return
		}

		if claims.Role != role {
			c.JSON(http.StatusForbidden, handler.NewErrorResponse("access denied"))
			c.Abort()
			return
		}

		if pathParam != "" {
			if id := c.Param(pathParam); id != "" && id != claims.AccountID.String() {
				c.JSON(http.StatusForbidden, handler.NewErrorResponse("access denied"))
				c.Abort()
				return
			}
		}

		c.Set(ContextAccountID, claims.AccountID.String())
		c.Set(ContextRole, string(claims.Role))
		c.Next()
	}
}
