package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hanksha/turf-booking-backend/identity"
)

type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (identity.Principal, error)
}

// SessionAuth resolves the bearer token to a principal and stores both under
// "user" and "accessToken".
func SessionAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		accessToken, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		accessToken = strings.TrimSpace(accessToken)

		if !ok || len(accessToken) == 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authentication"})
			c.Abort()
			return
		}

		principal, err := auth.Authenticate(c.Request.Context(), accessToken)

		if err != nil {
			c.Error(err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authentication"})
			c.Abort()
			return
		}

		c.Set("user", principal)
		c.Set("accessToken", accessToken)
	}
}

func RequireRole(role identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(identity.Principal)

		if user.Role != role {
			c.JSON(http.StatusForbidden, gin.H{"error": "not allowed"})
			c.Abort()
			return
		}
	}
}

func currentUser(c *gin.Context) identity.Principal {
	return c.MustGet("user").(identity.Principal)
}
