// Package middleware contains Gin middleware functions.
// Middleware in Gin is a handler that runs before (or after) your route handler.
// It calls c.Next() to proceed or c.Abort() to stop the chain.
package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ContextKeyAPIKey is where auth middleware stores the caller's key for
// downstream handlers (e.g., rate limiting).
const ContextKeyAPIKey = "api_key"

// APIKeyAuth returns middleware that validates API keys sent in the
// X-API-Key header or as an "Authorization: Bearer <key>" header.
// Bad or missing keys get 401.
func APIKeyAuth(validKeys []string) gin.HandlerFunc {
	return keyAuth(validKeys, "API key", http.StatusUnauthorized)
}

// AdminKeyAuth is APIKeyAuth for admin-only endpoints. A present but
// unknown key gets 403 instead of 401.
func AdminKeyAuth(adminKeys []string) gin.HandlerFunc {
	return keyAuth(adminKeys, "admin API key", http.StatusForbidden)
}

// keyAuth returns a closure over the configured keys. An empty key list
// rejects every request.
func keyAuth(validKeys []string, label string, invalidStatus int) gin.HandlerFunc {
	keys := make([][]byte, 0, len(validKeys))
	for _, k := range validKeys {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, []byte(k))
		}
	}

	return func(c *gin.Context) {
		key := requestKey(c)
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing " + label,
			})
			return
		}

		if !matchKey(keys, key) {
			c.AbortWithStatusJSON(invalidStatus, gin.H{
				"error": "invalid " + label,
			})
			return
		}

		c.Set(ContextKeyAPIKey, key)
		c.Next()
	}
}

func requestKey(c *gin.Context) string {
	if key := strings.TrimSpace(c.GetHeader("X-API-Key")); key != "" {
		return key
	}
	auth := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// matchKey compares in constant time so response timing does not reveal
// how much of a key was right.
func matchKey(keys [][]byte, candidate string) bool {
	c := []byte(candidate)
	found := false
	for _, k := range keys {
		if subtle.ConstantTimeCompare(k, c) == 1 {
			found = true
		}
	}
	return found
}
