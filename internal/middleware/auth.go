package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/patroliq-backend-go/internal/auth"
	"github.com/jengzang/patroliq-backend-go/pkg/response"
)

const claimsKey = "claims"

// RequireAuth rejects requests without a valid bearer token and stores the claims on the context
func RequireAuth(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			_ = c.Error(err)
			response.Unauthorized(c, "invalid token")
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireRole allows the request when the claims carry any of roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			response.Unauthorized(c, "no claims in context")
			return
		}
		for _, role := range roles {
			if claims.HasRole(role) {
				c.Next()
				return
			}
		}
		response.Forbidden(c, "required role(s): "+strings.Join(roles, ", "))
	}
}

// ClaimsFrom returns the claims stored by RequireAuth
func ClaimsFrom(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}
