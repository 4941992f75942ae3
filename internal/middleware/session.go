package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"drawsheet/internal/service"
)

const (
	ContextKeySessionID = "session_id"
	ContextKeyClaims    = "claims"
)

var errNoSession = errors.New("session id not found in context")

// SessionAuth validates the session bearer token and injects the session ID.
func SessionAuth(sessionService service.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "missing or invalid authorization header"},
			})
			return
		}

		claims, err := sessionService.ValidateToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "invalid or expired session token"},
			})
			return
		}

		c.Set(ContextKeySessionID, claims.SessionID)
		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// GetSessionID returns the session ID set by SessionAuth.
func GetSessionID(c *gin.Context) (uuid.UUID, error) {
	v, ok := c.Get(ContextKeySessionID)
	if !ok {
		return uuid.Nil, errNoSession
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return uuid.Nil, errNoSession
	}
	return id, nil
}
