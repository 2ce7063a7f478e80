package routes

import (
	"github.com/gin-gonic/gin"
	admincontroller "github.com/shivarajya-arts/storefront-api/controllers/admin"
	claimcontroller "github.com/shivarajya-arts/storefront-api/controllers/claim"
	ordercontroller "github.com/shivarajya-arts/storefront-api/controllers/order"
	"github.com/shivarajya-arts/storefront-api/middleware"
	"gorm.io/gorm"
)

// SetupAdminRoutes registers all "/admin/*" endpoints. Requires a token with
// the admin flag.
func SetupAdminRoutes(r *gin.Engine, db *gorm.DB) {
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.ValidateToken, middleware.RequireAdmin)
	{
		adminGroup.GET("/dashboard", admincontroller.GetDashboardStats(db))
		adminGroup.GET("/users", admincontroller.GetUsers(db))

		claimMgmt := adminGroup.Group("/claims")
		{
			claimMgmt.GET("", admincontroller.GetClaims(db))
			claimMgmt.GET("/:id", claimcontroller.GetClaim(db))
			claimMgmt.PUT("/:id", admincontroller.UpdateClaim(db))
			claimMgmt.POST("/:id/approve", admincontroller.ApproveClaim(db))
			claimMgmt.PUT("", claimcontroller.UpdateClaimStatus(db))
		}

		orderMgmt := adminGroup.Group("/orders")
		{
			orderMgmt.GET("", admincontroller.GetOrders(db))
			orderMgmt.GET("/export-excel", admincontroller.ExportOrdersToExcel(db))
			orderMgmt.GET("/ws", ordercontroller.OrderFeedHandler)
			orderMgmt.GET("/:id", admincontroller.GetOrder(db))
			orderMgmt.PUT("/:id", admincontroller.UpdateOrder(db))
		}
	}
}
