package middleware

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// accountIDKey is the gin context key under which the authenticated account
// id is stored.
const accountIDKey = "accountID"

// Auth enforces bearer JWT auth on dashboard and settings routes and injects
// the authenticated account id into the gin context.
func Auth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			respondUnauthorized(c, "missing authorization header")
			return
		}

		tokenString, ok := extractBearerToken(authHeader)
		if !ok {
			respondUnauthorized(c, "invalid authorization header")
			return
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return secret, nil
		})
		if err != nil || !token.Valid {
			log.Printf("WARN: [Auth] Token rejected for path %s: %v", c.Request.URL.Path, err)
			respondUnauthorized(c, "invalid or expired token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			respondUnauthorized(c, "invalid token claims")
			return
		}
		sub, _ := claims["sub"].(string)
		if sub == "" {
			respondUnauthorized(c, "token has no subject")
			return
		}

		c.Set(accountIDKey, sub)
		c.Next()
	}
}

// AccountID returns the authenticated account id placed in the context by
// Auth. It is empty on unauthenticated requests.
func AccountID(c *gin.Context) string {
	id, _ := c.Get(accountIDKey)
	s, _ := id.(string)
	return s
}

func extractBearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func respondUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}
