// Package middleware provides identity, request id, recovery and validation middleware for the Gin web framework.
package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"quizgen/internal/observability"
	contextutils "quizgen/internal/utils"
)

// Context keys for storing identity in the gin context
const (
	// UserIDKey is the key used to store the caller's user id
	UserIDKey = "user_id"
	// AuthErrorKey holds the reason a presented token was rejected
	AuthErrorKey = "auth_error"
)

const bearerPrefix = "Bearer "

// OptionalAuth reads an optional HS256 bearer token. A valid token puts its user id
// on the gin and request contexts; a missing or invalid token leaves the caller
// anonymous. With an empty secret every caller is anonymous.
func OptionalAuth(secret string, logger *observability.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if secret == "" || !strings.HasPrefix(header, bearerPrefix) {
			c.Next()
			return
		}

		userID, err := ParseToken(secret, strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix)))
		if err != nil {
			logger.Debug(c.Request.Context(), "rejected bearer token", map[string]interface{}{"error": err.Error()})
			c.Set(AuthErrorKey, err.Error())
			c.Next()
			return
		}

		c.Set(UserIDKey, userID)
		c.Request = c.Request.WithContext(contextutils.WithUserID(c.Request.Context(), userID))
		c.Next()
	}
}

// RequireAuth rejects anonymous callers with 401
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserID(c) != "" {
			c.Next()
			return
		}
		details := "Authentication required"
		if reason := c.GetString(AuthErrorKey); reason != "" {
			details = reason
		}
		appErr := contextutils.NewWithDetails(contextutils.ErrUnauthorized, details, nil)
		_ = c.Error(appErr)
		c.AbortWithStatusJSON(http.StatusUnauthorized, appErr.ToJSON())
	}
}

// GetUserID returns the authenticated user id, or "" for anonymous callers
func GetUserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

// ParseToken validates an HS256 token and returns its user id, taken from the
// "sub" claim or, failing that, a "user_id" claim.
func ParseToken(secret, tokenString string) (string, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", contextutils.WrapErrorf(contextutils.ErrUnauthorized, "invalid token: %v", err)
	}

	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		return sub, nil
	}
	switch v := claims["user_id"].(type) {
	case string:
		if v != "" {
			return v, nil
		}
	case float64:
		return fmt.Sprintf("%.0f", v), nil
	}
	return "", contextutils.NewWithDetails(contextutils.ErrUnauthorized, "token has no subject", nil)
}

// IssueToken signs an HS256 token for userID valid for ttl
func IssueToken(secret, userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to sign token: %v", err)
	}
	return signed, nil
}
