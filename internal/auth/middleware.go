package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const claimsKey = "claims"

// Middleware enforces a signed session token, read from the session cookie
// or an Authorization bearer header. Expired sessions are answered with a
// distinguishable body so clients can redirect to re-login.
func Middleware(signingKey, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := tokenFromRequest(c)
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "You are not logged in!"})
			return
		}
		claims, err := Parse(tokenStr, signingKey, issuer)
		if err != nil {
			if errors.Is(err, ErrExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"expired": true, "message": "Session Expired"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token. Please log in again!"})
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// FromContext returns the verified claims set by Middleware.
func FromContext(c *gin.Context) (Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return Claims{}, false
	}
	claims, ok := v.(Claims)
	return claims, ok
}

func tokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie
	}
	authz := c.GetHeader("Authorization")
	if authz != "" && strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return strings.TrimSpace(authz[len("bearer "):])
	}
	return ""
}
