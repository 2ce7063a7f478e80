package routes

import (
	"github.com/gin-gonic/gin"
	usercontroller "github.com/shivarajya-arts/storefront-api/controllers/user"
	"github.com/shivarajya-arts/storefront-api/mailer"
	"gorm.io/gorm"
)

// SetupAuthRoutes registers all "/auth/*" endpoints (no middleware).
func SetupAuthRoutes(r *gin.Engine, db *gorm.DB, sender mailer.Sender) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", usercontroller.Register(db))
		authGroup.POST("/send-otp", usercontroller.SendOTP(db, sender))
		authGroup.POST("/verify-otp", usercontroller.VerifyOTP(db))
		authGroup.POST("/login", usercontroller.Login(db))
		authGroup.GET("/session", usercontroller.CheckSession(db))
	}
}
