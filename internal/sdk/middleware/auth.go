// Package middleware provides gin middleware for authentication,
// authorization, CORS, request logging and rate limiting.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/thapelomagqazana/social-media-2/internal/sdk/models"
	"github.com/thapelomagqazana/social-media-2/internal/sdk/mongodb"
	"github.com/thapelomagqazana/social-media-2/internal/services/jwt"
)

const (
	bearerPrefix = "Bearer "

	// Context keys set by Authenticate.
	UserKey   = "auth_user"
	UserIDKey = "auth_user_id"
	RoleKey   = "auth_role"
)

var ErrNoUser = errors.New("no authenticated user in context")

// Authenticate validates the bearer token and loads the acting identity.
//
// The same generic codes are returned for a bad signature, a malformed token
// and an expired one so callers cannot tell which check failed. A token whose
// subject no longer exists in the store is also rejected.
func Authenticate(tokens *jwt.TokenService, db mongodb.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_authorization_header"})
			return
		}

		if !strings.HasPrefix(authHeader, bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_authorization_header"})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, bearerPrefix)

		claims, err := tokens.ParseToken(c.Request.Context(), tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		user, err := db.GetUserByID(c.Request.Context(), claims.Subject)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		// Never carry the hash further down the chain.
		user.Password = ""

		c.Set(UserKey, user)
		c.Set(UserIDKey, user.ID.Hex())
		c.Set(RoleKey, user.Role)

		c.Next()
	}
}

// Admin gates a route group to admin users. Must run after Authenticate.
func Admin() gin.HandlerFunc {
	return func(c *gin.Context) {
		roleVal, exists := c.Get(RoleKey)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		role, ok := roleVal.(string)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		if role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		c.Next()
	}
}

// GetUser extracts the acting identity set by Authenticate.
func GetUser(c *gin.Context) (models.User, error) {
	val, exists := c.Get(UserKey)
	if !exists {
		return models.User{}, ErrNoUser
	}
	user, ok := val.(models.User)
	if !ok {
		return models.User{}, ErrNoUser
	}
	return user, nil
}

// GetUserID extracts the acting user's hex id set by Authenticate.
func GetUserID(c *gin.Context) (string, error) {
	val, exists := c.Get(UserIDKey)
	if !exists {
		return "", ErrNoUser
	}
	id, ok := val.(string)
	if !ok {
		return "", ErrNoUser
	}
	return id, nil
}
