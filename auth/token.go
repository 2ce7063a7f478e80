package auth

import (
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shivarajya-arts/storefront-api/models"
)

// IssueToken generates a session JWT for a verified user.
func IssueToken(user models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  float64(user.ID),
		"email":    user.Email,
		"is_admin": user.IsAdmin,
		"name":     user.FirstName + " " + user.LastName,
		"exp":      time.Now().Add(24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}
