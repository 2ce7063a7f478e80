package usercontroller

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/mail"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shivarajya-arts/storefront-api/auth"
	"github.com/shivarajya-arts/storefront-api/mailer"
	"github.com/shivarajya-arts/storefront-api/middleware"
	"github.com/shivarajya-arts/storefront-api/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const otpValidity = 10 * time.Minute

var phonePattern = regexp.MustCompile(`^[+]?[0-9\s\-()]{10,15}$`)

type RegisterInput struct {
	FirstName string `json:"first_name" form:"first_name" binding:"required"`
	LastName  string `json:"last_name" form:"last_name" binding:"required"`
	Email     string `json:"email" form:"email" binding:"required"`
	Phone     string `json:"phone" form:"phone" binding:"required"`
	Password  string `json:"password" form:"password" binding:"required"`
}

// Register creates an unverified account. The client follows up with
// send-otp / verify-otp before the first login is possible.
// POST /auth/register
func Register(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input RegisterInput
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "All fields are required"})
			return
		}

		if _, err := mail.ParseAddress(input.Email); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid email format"})
			return
		}
		if !phonePattern.MatchString(input.Phone) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid phone number format"})
			return
		}
		if len(input.Password) < 6 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Password must be at least 6 characters"})
			return
		}

		var existing models.User
		if err := db.Where("email = ?", input.Email).First(&existing).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Email already registered"})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Registration failed"})
			return
		}

		user := models.User{
			FirstName:    input.FirstName,
			LastName:     input.LastName,
			Email:        input.Email,
			Phone:        input.Phone,
			PasswordHash: string(hash),
		}
		if err := db.Create(&user).Error; err != nil {
			log.Printf("register failed (request %s): %v", c.GetString("request_id"), err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Registration failed"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "Registration successful. Please verify your email.",
			"user_id": user.ID,
		})
	}
}

// SendOTP generates a fresh verification code, emails it through the
// injected sender, and stores it with a 10-minute expiry. The mail call is
// timeout-bounded so a stuck SMTP server cannot hang the request.
// POST /auth/send-otp
func SendOTP(db *gorm.DB, sender mailer.Sender) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.PostForm("email")
		if email == "" {
			var body struct {
				Email string `json:"email"`
			}
			if err := c.ShouldBindJSON(&body); err == nil {
				email = body.Email
			}
		}
		if email == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Email is required"})
			return
		}

		var user models.User
		if err := db.Where("email = ?", email).First(&user).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
			return
		}

		code, err := mailer.GenerateOTP()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to send OTP"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
		defer cancel()
		if err := sender.SendOTP(ctx, user.Email, user.FirstName, code); err != nil {
			log.Printf("otp send failed (request %s): %v", c.GetString("request_id"), err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to send OTP"})
			return
		}

		expires := time.Now().Add(otpValidity)
		err = db.Model(&user).Updates(map[string]interface{}{
			"otp_code":    code,
			"otp_expires": expires,
		}).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to store OTP"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "OTP sent successfully to your email"})
	}
}

type VerifyOTPInput struct {
	Email string `json:"email" form:"email" binding:"required"`
	OTP   string `json:"otp" form:"otp" binding:"required"`
}

// VerifyOTP checks the pending code and, on success, marks the account
// verified, clears the code, and opens a session.
// POST /auth/verify-otp
func VerifyOTP(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input VerifyOTPInput
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Email and OTP are required"})
			return
		}

		var user models.User
		if err := db.Where("email = ?", input.Email).First(&user).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
			return
		}

		if user.OTPCode == nil || *user.OTPCode != input.OTP {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid OTP"})
			return
		}
		if user.OTPExpires == nil || user.OTPExpires.Before(time.Now()) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "OTP has expired"})
			return
		}

		err := db.Model(&user).Updates(map[string]interface{}{
			"is_verified": true,
			"otp_code":    nil,
			"otp_expires": nil,
		}).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Verification failed"})
			return
		}
		user.IsVerified = true

		token, err := auth.IssueToken(user)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Verification failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Email verified successfully",
			"token":   token,
			"user":    sessionUser(user),
		})
	}
}

type LoginInput struct {
	Email    string `json:"email" form:"email" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// Login authenticates a verified account and returns a session token. An
// unverified account is refused regardless of credentials.
// POST /auth/login
func Login(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input LoginInput
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Email and password are required"})
			return
		}

		var user models.User
		if err := db.Where("email = ?", input.Email).First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid email or password"})
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid email or password"})
			return
		}
		if !user.IsVerified {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Please verify your email first"})
			return
		}

		token, err := auth.IssueToken(user)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Login failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Login successful",
			"token":   token,
			"user":    sessionUser(user),
		})
	}
}

// CheckSession reports whether the supplied token still maps to a user.
// Unlike the protected routes it never rejects; an absent or stale token
// just reads as logged out.
// GET /auth/session
func CheckSession(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("Authorization")
		if tokenString == "" {
			c.JSON(http.StatusOK, gin.H{"success": true, "logged_in": false})
			return
		}

		userID, _, err := middleware.IdentityFromToken(tokenString)
		if err != nil {
			c.JSON(http.StatusOK, gin.H{"success": true, "logged_in": false})
			return
		}

		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusOK, gin.H{"success": true, "logged_in": false})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to check session"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "logged_in": true, "user": sessionUser(user)})
	}
}

func sessionUser(user models.User) gin.H {
	return gin.H{
		"id":         user.ID,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"email":      user.Email,
		"phone":      user.Phone,
		"is_admin":   user.IsAdmin,
	}
}
