package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/shivarajya-arts/storefront-api/mailer"
	"gorm.io/gorm"
)

// SetupRoutes is the single entry-point that wires up the public catalog,
// auth, user, and admin route groups.
func SetupRoutes(r *gin.Engine, db *gorm.DB, sender mailer.Sender) {
	SetupCatalogRoutes(r, db)
	SetupAuthRoutes(r, db, sender)
	SetupUserRoutes(r, db)
	SetupAdminRoutes(r, db)
}
