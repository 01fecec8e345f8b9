package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"project-tracker-api/internal/response"
)

// UserIDKey is the gin context key holding the authenticated user id
const UserIDKey = "user_id"

var (
	ErrMissingUserID = errors.New("user id not found in token")
	ErrInvalidUserID = errors.New("invalid user id format")
)

// ParseToken validates an HMAC signed JWT and returns the user id it carries.
// The id is read from user_id, then sub, then uid.
func ParseToken(secret, tokenString string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	if !token.Valid {
		return uuid.Nil, jwt.ErrTokenSignatureInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, ErrMissingUserID
	}

	var userIDStr string
	for _, key := range []string{"user_id", "sub", "uid"} {
		if v, ok := claims[key].(string); ok && v != "" {
			userIDStr = v
			break
		}
	}
	if userIDStr == "" {
		return uuid.Nil, ErrMissingUserID
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, ErrInvalidUserID
	}
	return userID, nil
}

// Auth returns a middleware that validates bearer tokens locally
func Auth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Authorization header is required")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Invalid authorization header format")
			c.Abort()
			return
		}

		userID, err := ParseToken(jwtSecret, parts[1])
		if err != nil {
			message := "Invalid or expired token"
			switch {
			case errors.Is(err, ErrMissingUserID):
				message = "User ID not found in token"
			case errors.Is(err, ErrInvalidUserID):
				message = "Invalid user ID format"
			}
			response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, message)
			c.Abort()
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}
