package cartcontroller

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shivarajya-arts/storefront-api/middleware"
	"github.com/shivarajya-arts/storefront-api/models"
	"gorm.io/gorm"
)

type AddCartInput struct {
	ProductID    uint `json:"product_id" form:"product_id" binding:"required"`
	Quantity     int  `json:"quantity" form:"quantity" binding:"required,min=1"`
	IsDecorative bool `json:"is_decorative" form:"is_decorative"`
}

type UpdateCartInput struct {
	ProductID    uint `json:"product_id" form:"product_id" binding:"required"`
	Quantity     int  `json:"quantity" form:"quantity"`
	IsDecorative bool `json:"is_decorative" form:"is_decorative"`
}

// CartLine is a cart row joined with the current product record; price and
// subtotal are derived from the authoritative product prices at read time.
type CartLine struct {
	ID            uint    `json:"id"`
	ProductID     uint    `json:"product_id"`
	IsDecorative  bool    `json:"is_decorative"`
	Quantity      int     `json:"quantity"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	BasePrice     float64 `json:"base_price"`
	DecorativeP   float64 `gorm:"column:decorative_price" json:"decorative_price"`
	ImageURL      string  `json:"image_url"`
	StockQuantity int     `json:"stock_quantity"`
	Price         float64 `gorm:"-" json:"price"`
	Subtotal      float64 `gorm:"-" json:"subtotal"`
}

// AddToCart inserts a cart line or merges quantities into the existing line
// for the same (product, variant). The merged quantity may not exceed the
// product's stock.
// POST /user/cart
func AddToCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.CurrentUserID(c)

		var input AddCartInput
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid product or quantity"})
			return
		}

		var product models.Product
		if err := db.Where("is_active = ?", true).First(&product, input.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Product not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to validate product"})
			return
		}

		if product.StockQuantity < input.Quantity {
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Insufficient stock"})
			return
		}

		var item models.CartItem
		err := db.Where("user_id = ? AND product_id = ? AND is_decorative = ?",
			userID, input.ProductID, input.IsDecorative).First(&item).Error
		switch {
		case err == nil:
			merged := item.Quantity + input.Quantity
			if merged > product.StockQuantity {
				c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Cannot add more items. Stock limit reached."})
				return
			}
			if err := db.Model(&item).Update("quantity", merged).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update cart"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"success": true, "message": "Cart updated successfully"})
		case errors.Is(err, gorm.ErrRecordNotFound):
			newItem := models.CartItem{
				UserID:       userID,
				ProductID:    input.ProductID,
				IsDecorative: input.IsDecorative,
				Quantity:     input.Quantity,
			}
			if err := db.Create(&newItem).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to add item to cart"})
				return
			}
			c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Item added to cart successfully"})
		default:
			log.Printf("cart lookup failed (request %s): %v", c.GetString("request_id"), err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch cart item"})
		}
	}
}

// GetCart lists the caller's cart joined with current product data and
// computes per-line subtotals plus the cart total.
// GET /user/cart
func GetCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.CurrentUserID(c)

		var lines []CartLine
		err := db.Table("cart_items").
			Select(`cart_items.id, cart_items.product_id, cart_items.is_decorative, cart_items.quantity,
				products.name, products.description, products.base_price, products.decorative_price,
				products.image_url, products.stock_quantity`).
			Joins("JOIN products ON products.id = cart_items.product_id").
			Where("cart_items.user_id = ? AND products.is_active = ?", userID, true).
			Order("cart_items.created_at DESC").
			Scan(&lines).Error
		if err != nil {
			log.Printf("cart fetch failed (request %s): %v", c.GetString("request_id"), err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch cart"})
			return
		}

		total := 0.0
		for i := range lines {
			price := lines[i].BasePrice
			if lines[i].IsDecorative {
				price = lines[i].DecorativeP
			}
			lines[i].Price = price
			lines[i].Subtotal = price * float64(lines[i].Quantity)
			total += lines[i].Subtotal
		}

		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"cart_items": lines,
			"total":      total,
			"item_count": len(lines),
		})
	}
}

// UpdateCartItem sets a new quantity for a cart line. A quantity of zero or
// less removes the line, matching remove-from-cart.
// PUT /user/cart
func UpdateCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.CurrentUserID(c)

		var input UpdateCartInput
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Product ID is required"})
			return
		}

		if input.Quantity <= 0 {
			if err := db.Where("user_id = ? AND product_id = ? AND is_decorative = ?",
				userID, input.ProductID, input.IsDecorative).Delete(&models.CartItem{}).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to remove item"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"success": true, "message": "Item removed from cart"})
			return
		}

		var product models.Product
		if err := db.Where("is_active = ?", true).First(&product, input.ProductID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Product not found"})
			return
		}
		if product.StockQuantity < input.Quantity {
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Insufficient stock"})
			return
		}

		result := db.Model(&models.CartItem{}).
			Where("user_id = ? AND product_id = ? AND is_decorative = ?",
				userID, input.ProductID, input.IsDecorative).
			Update("quantity", input.Quantity)
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update cart"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Cart item not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Cart updated successfully"})
	}
}

// RemoveCartItem deletes one cart line. Removing an absent line still
// succeeds.
// DELETE /user/cart/:product_id?is_decorative=
func RemoveCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.CurrentUserID(c)

		productID, err := strconv.Atoi(c.Param("product_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Product ID is required"})
			return
		}
		isDecorative, _ := strconv.ParseBool(c.DefaultQuery("is_decorative", "false"))

		if err := db.Where("user_id = ? AND product_id = ? AND is_decorative = ?",
			userID, productID, isDecorative).Delete(&models.CartItem{}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to remove item"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Item removed from cart"})
	}
}

// ClearCart deletes every cart line for the caller. Clearing an empty cart
// succeeds.
// DELETE /user/cart
func ClearCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.CurrentUserID(c)

		if err := db.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to clear cart"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Cart cleared successfully"})
	}
}
