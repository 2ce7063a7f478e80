package routes

import (
	"github.com/gin-gonic/gin"
	cartcontroller "github.com/shivarajya-arts/storefront-api/controllers/cart"
	claimcontroller "github.com/shivarajya-arts/storefront-api/controllers/claim"
	ordercontroller "github.com/shivarajya-arts/storefront-api/controllers/order"
	productcontroller "github.com/shivarajya-arts/storefront-api/controllers/product"
	"github.com/shivarajya-arts/storefront-api/middleware"
	"gorm.io/gorm"
)

// SetupCatalogRoutes registers the public product browsing endpoints.
func SetupCatalogRoutes(r *gin.Engine, db *gorm.DB) {
	r.GET("/products", productcontroller.GetProducts(db))
	r.GET("/products/:id", productcontroller.GetProductByID(db))
}

// SetupUserRoutes registers all "/user/*" endpoints. Requires JWT middleware.
func SetupUserRoutes(r *gin.Engine, db *gorm.DB) {
	userGroup := r.Group("/user")
	userGroup.Use(middleware.ValidateToken)
	{
		cartGroup := userGroup.Group("/cart")
		{
			cartGroup.GET("", cartcontroller.GetCart(db))
			cartGroup.POST("", cartcontroller.AddToCart(db))
			cartGroup.PUT("", cartcontroller.UpdateCartItem(db))
			cartGroup.DELETE("/:product_id", cartcontroller.RemoveCartItem(db))
			cartGroup.DELETE("", cartcontroller.ClearCart(db))
		}

		orderGroup := userGroup.Group("/orders")
		{
			orderGroup.POST("", ordercontroller.CreateOrder(db))
			orderGroup.POST("/checkout", ordercontroller.CheckoutCart(db))
			orderGroup.GET("", ordercontroller.GetUserOrders(db))
			orderGroup.GET("/:order_id", ordercontroller.GetOrderDetails(db))
		}

		claimGroup := userGroup.Group("/claims")
		{
			claimGroup.POST("", claimcontroller.SubmitClaim(db))
			claimGroup.GET("", claimcontroller.GetUserClaims(db))
			claimGroup.GET("/:id", claimcontroller.GetClaim(db))
		}
	}
}
