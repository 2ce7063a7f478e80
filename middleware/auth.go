package middleware

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var errInvalidToken = errors.New("invalid token")

// IdentityFromToken validates a session token and returns the identity it
// carries.
func IdentityFromToken(tokenString string) (userID uint, isAdmin bool, err error) {
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid token signing method")
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return 0, false, errInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, false, errInvalidToken
	}
	id, ok := claims["user_id"].(float64)
	if !ok || id <= 0 {
		return 0, false, errInvalidToken
	}
	admin, _ := claims["is_admin"].(bool)
	return uint(id), admin, nil
}

// ValidateToken authenticates the request from its Bearer token and stores
// the caller's identity in the gin context. Handlers read "user_id" and
// "is_admin" instead of touching any ambient session state.
func ValidateToken(c *gin.Context) {
	tokenString := c.GetHeader("Authorization")
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Please login first"})
		c.Abort()
		return
	}

	userID, isAdmin, err := IdentityFromToken(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid or expired token"})
		c.Abort()
		return
	}

	c.Set("user_id", userID)
	c.Set("is_admin", isAdmin)
	c.Next()
}

// RequireAdmin gates a route group to admin callers. Must run after
// ValidateToken.
func RequireAdmin(c *gin.Context) {
	if !c.GetBool("is_admin") {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Admin access required"})
		c.Abort()
		return
	}
	c.Next()
}

// CurrentUserID returns the authenticated caller's id set by ValidateToken.
func CurrentUserID(c *gin.Context) uint {
	return c.GetUint("user_id")
}
