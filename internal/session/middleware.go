package session

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const claimsKey = "session.claims"

// Auth enforces a bearer token signed with HS256 and stashes the
// verified claims on the request. The raw token is kept alongside so
// backend calls can forward it.
func Auth(signingKey, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if authz == "" || !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		tokenStr := strings.TrimSpace(authz[len("bearer "):])
		claims, err := Parse(tokenStr, signingKey, issuer)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(claimsKey, claims)
		c.Set(tokenKey, tokenStr)
		c.Next()
	}
}

const tokenKey = "session.token"

// RequireModerator gates manager/admin-only routes.
func RequireModerator() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := Current(c)
		if !ok || !claims.Role.CanModerate() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "manager or admin role required"})
			return
		}
		c.Next()
	}
}

// Current returns the verified claims for this request.
func Current(c *gin.Context) (Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return Claims{}, false
	}
	claims, ok := v.(Claims)
	return claims, ok
}

// Token returns the raw bearer token for forwarding to the backend.
func Token(c *gin.Context) string {
	v, ok := c.Get(tokenKey)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}
