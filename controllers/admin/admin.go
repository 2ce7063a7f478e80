package admincontroller

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	claimcontroller "github.com/shivarajya-arts/storefront-api/controllers/claim"
	"github.com/shivarajya-arts/storefront-api/models"
	"gorm.io/gorm"
)

// GetDashboardStats aggregates the admin landing-page counters: order and
// non-admin user counts, claims awaiting review, and revenue from delivered
// orders.
// GET /admin/dashboard
func GetDashboardStats(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var totalOrders, pendingClaims, totalUsers int64
		var totalRevenue float64

		err := errors.Join(
			db.Model(&models.Order{}).Count(&totalOrders).Error,
			db.Model(&models.Claim{}).Where("status = ?", models.ClaimStatusPending).Count(&pendingClaims).Error,
			db.Model(&models.User{}).Where("is_admin = ?", false).Count(&totalUsers).Error,
			db.Model(&models.Order{}).Where("status = ?", models.OrderStatusDelivered).
				Select("COALESCE(SUM(total_amount), 0)").Scan(&totalRevenue).Error,
		)
		if err != nil {
			log.Printf("dashboard stats failed (request %s): %v", c.GetString("request_id"), err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load dashboard stats"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"stats": gin.H{
				"total_orders":   totalOrders,
				"pending_claims": pendingClaims,
				"total_users":    totalUsers,
				"total_revenue":  totalRevenue,
			},
		})
	}
}

// AdminClaimRow is a claim with reviewer context: who filed it and how many
// orders that customer has placed.
type AdminClaimRow struct {
	models.Claim
	FirstName      string `gorm:"column:first_name" json:"-"`
	LastName       string `gorm:"column:last_name" json:"-"`
	CustomerName   string `gorm:"-" json:"customer_name"`
	Email          string `json:"email"`
	ProductName    string `json:"product_name,omitempty"`
	UserOrderCount int    `json:"user_order_count"`
}

// GetClaims lists all claims for review, optionally filtered by status.
// GET /admin/claims?status=
func GetClaims(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Table("claims").
			Select(`claims.*, users.first_name, users.last_name, users.email,
				products.name AS product_name,
				(SELECT COUNT(*) FROM orders o2 WHERE o2.user_id = claims.user_id) AS user_order_count`).
			Joins("JOIN users ON users.id = claims.user_id").
			Joins("LEFT JOIN products ON products.id = claims.product_id")

		if status := c.Query("status"); status != "" {
			query = query.Where("claims.status = ?", status)
		}

		var claims []AdminClaimRow
		if err := query.Order("claims.created_at DESC").Scan(&claims).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch claims"})
			return
		}
		for i := range claims {
			claims[i].CustomerName = claims[i].FirstName + " " + claims[i].LastName
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "claims": claims})
	}
}

// UpdateClaim applies a review decision; the same validated path as the
// claim endpoint, reachable only behind the admin gate.
// PUT /admin/claims/:id
func UpdateClaim(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Claim ID and status are required"})
			return
		}

		var input struct {
			Status     string `json:"status" form:"status" binding:"required"`
			AdminNotes string `json:"admin_notes" form:"admin_notes"`
		}
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Claim ID and status are required"})
			return
		}

		if err := claimcontroller.ApplyReview(db, uint(claimID), input.Status, input.AdminNotes); err != nil {
			switch {
			case errors.Is(err, claimcontroller.ErrClaimNotFound):
				c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Claim not found"})
			case errors.Is(err, models.ErrInvalidClaimStatus):
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid status"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update claim"})
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Claim updated successfully"})
	}
}

// ApproveClaim is the one-click approval shortcut.
// POST /admin/claims/:id/approve
func ApproveClaim(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Claim ID is required"})
			return
		}
		notes := c.PostForm("admin_notes")

		if err := claimcontroller.ApplyReview(db, uint(claimID), string(models.ClaimStatusApproved), notes); err != nil {
			if errors.Is(err, claimcontroller.ErrClaimNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Claim not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to approve claim"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Claim approved"})
	}
}

// AdminOrderRow is an order with its customer label and item count.
type AdminOrderRow struct {
	models.Order
	FirstName    string `gorm:"column:first_name" json:"-"`
	LastName     string `gorm:"column:last_name" json:"-"`
	CustomerName string `gorm:"-" json:"customer_name"`
	Email        string `json:"email"`
	ItemCount    int    `json:"item_count"`
}

// GetOrders lists all orders, optionally filtered by status.
// GET /admin/orders?status=
func GetOrders(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Table("orders").
			Select(`orders.*, users.first_name, users.last_name, users.email,
				(SELECT COUNT(*) FROM order_items oi WHERE oi.order_id = orders.id) AS item_count`).
			Joins("JOIN users ON users.id = orders.user_id")

		if status := c.Query("status"); status != "" {
			query = query.Where("orders.status = ?", status)
		}

		var orders []AdminOrderRow
		if err := query.Order("orders.created_at DESC").Scan(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch orders"})
			return
		}
		for i := range orders {
			orders[i].CustomerName = orders[i].FirstName + " " + orders[i].LastName
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "orders": orders})
	}
}

// GetOrder returns any order with its item rows and customer label.
// GET /admin/orders/:id
func GetOrder(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Order ID is required"})
			return
		}

		var order models.Order
		if err := db.Preload("Items").First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch order"})
			return
		}

		var customer models.User
		if err := db.Select("first_name", "last_name", "email").First(&customer, order.UserID).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch order"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"order":   order,
			"customer": gin.H{
				"customer_name": customer.FirstName + " " + customer.LastName,
				"email":         customer.Email,
			},
		})
	}
}

// UpdateOrder moves an order along its status lifecycle and optionally
// attaches a shipment tracking id. Moves outside the transition table are
// rejected and leave the stored status untouched.
// PUT /admin/orders/:id
func UpdateOrder(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Order ID and status are required"})
			return
		}

		var input struct {
			Status     string `json:"status" form:"status" binding:"required"`
			TrackingID string `json:"tracking_id" form:"tracking_id"`
		}
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Order ID and status are required"})
			return
		}

		newStatus, err := models.ParseOrderStatus(input.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid status"})
			return
		}

		var order models.Order
		if err := db.First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch order"})
			return
		}

		if !models.CanTransition(order.Status, newStatus) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid status transition"})
			return
		}

		updates := map[string]interface{}{"status": newStatus}
		if input.TrackingID != "" {
			updates["tracking_id"] = input.TrackingID
		}
		if err := db.Model(&order).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update order"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Order updated successfully"})
	}
}

// AdminUserRow is a customer record with their lifetime order count.
type AdminUserRow struct {
	models.User
	OrderCount int `json:"order_count"`
}

// GetUsers lists all registered users, newest first.
// GET /admin/users
func GetUsers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var users []AdminUserRow
		err := db.Table("users").
			Select("users.*, (SELECT COUNT(*) FROM orders o WHERE o.user_id = users.id) AS order_count").
			Order("users.created_at DESC").
			Scan(&users).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch users"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "users": users})
	}
}
