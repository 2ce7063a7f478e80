package ordercontroller

import (
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shivarajya-arts/storefront-api/middleware"
	"github.com/shivarajya-arts/storefront-api/models"
	"gorm.io/gorm"
)

// totalTolerance absorbs client-side float rounding when the submitted
// order total is checked against the server-computed one.
const totalTolerance = 0.01

var errInsufficientStock = errors.New("insufficient stock")

type CreateOrderInput struct {
	ProductID       uint    `json:"product_id" form:"product_id" binding:"required"`
	ProductName     string  `json:"product_name" form:"product_name" binding:"required"`
	Quantity        int     `json:"quantity" form:"quantity" binding:"required,min=1"`
	PriceOption     string  `json:"price_option" form:"price_option"`
	TotalAmount     float64 `json:"total_amount" form:"total_amount" binding:"required"`
	PaymentMethod   string  `json:"payment_method" form:"payment_method" binding:"required"`
	ShippingAddress string  `json:"shipping_address" form:"shipping_address" binding:"required"`
	PhoneNumber     string  `json:"phone_number" form:"phone_number" binding:"required"`
	Pincode         string  `json:"pincode" form:"pincode"`
	UPIID           string  `json:"upi_id" form:"upi_id"`
}

type CheckoutInput struct {
	PaymentMethod   string `json:"payment_method" form:"payment_method" binding:"required"`
	ShippingAddress string `json:"shipping_address" form:"shipping_address" binding:"required"`
	PhoneNumber     string `json:"phone_number" form:"phone_number" binding:"required"`
	Pincode         string `json:"pincode" form:"pincode"`
	UPIID           string `json:"upi_id" form:"upi_id"`
}

// reserveStock decrements a product's stock inside the surrounding
// transaction. The guard in the WHERE clause re-checks availability at
// decrement time, so two concurrent orders cannot oversell the row.
func reserveStock(tx *gorm.DB, productID uint, quantity int) error {
	res := tx.Model(&models.Product{}).
		Where("id = ? AND is_active = ? AND stock_quantity >= ?", productID, true, quantity).
		Update("stock_quantity", gorm.Expr("stock_quantity - ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errInsufficientStock
	}
	return nil
}

// CreateOrder places a single-line order for a direct product purchase. The
// submitted total is validated against the authoritative product price, and
// the stock decrement, order insert, and cart-line cleanup commit together.
// POST /user/orders
func CreateOrder(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.CurrentUserID(c)

		var input CreateOrderInput
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Please fill in all required fields"})
			return
		}

		priceOption := models.PriceOption(input.PriceOption)
		if priceOption == "" {
			priceOption = models.PriceOptionRegular
		}
		if priceOption != models.PriceOptionRegular && priceOption != models.PriceOptionDecorative {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid price option"})
			return
		}
		isDecorative := priceOption == models.PriceOptionDecorative

		var product models.Product
		if err := db.Where("is_active = ?", true).First(&product, input.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Product not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to validate product"})
			return
		}

		unitPrice := product.Price(isDecorative)
		expected := unitPrice * float64(input.Quantity)
		if math.Abs(expected-input.TotalAmount) > totalTolerance {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Order total does not match current product pricing"})
			return
		}

		order := models.Order{
			UserID:          userID,
			ProductID:       product.ID,
			ProductName:     product.Name,
			Quantity:        input.Quantity,
			PriceOption:     priceOption,
			TotalAmount:     expected,
			PaymentMethod:   input.PaymentMethod,
			UPIID:           input.UPIID,
			ShippingAddress: input.ShippingAddress,
			PhoneNumber:     input.PhoneNumber,
			Pincode:         input.Pincode,
			Status:          models.OrderStatusPending,
			Items: []models.OrderItem{{
				ProductID:    product.ID,
				ProductName:  product.Name,
				IsDecorative: isDecorative,
				UnitPrice:    unitPrice,
				Quantity:     input.Quantity,
			}},
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := reserveStock(tx, product.ID, input.Quantity); err != nil {
				return err
			}
			if err := tx.Create(&order).Error; err != nil {
				return err
			}
			// The purchased line no longer belongs in the cart.
			return tx.Where("user_id = ? AND product_id = ? AND is_decorative = ?",
				userID, product.ID, isDecorative).Delete(&models.CartItem{}).Error
		})
		if err != nil {
			if errors.Is(err, errInsufficientStock) {
				c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Insufficient stock"})
				return
			}
			log.Printf("order create failed (request %s): %v", c.GetString("request_id"), err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to place order"})
			return
		}

		broadcastNewOrder(order)
		c.JSON(http.StatusCreated, gin.H{
			"success":  true,
			"message":  "Order placed successfully",
			"order_id": order.ID,
		})
	}
}

// CheckoutCart materializes every cart line into an order item, decrements
// stock per line, and clears the cart, all in one transaction.
// POST /user/orders/checkout
func CheckoutCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.CurrentUserID(c)

		var input CheckoutInput
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Please fill in all required fields"})
			return
		}

		var cartItems []models.CartItem
		if err := db.Where("user_id = ?", userID).Order("created_at ASC").Find(&cartItems).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch cart"})
			return
		}
		if len(cartItems) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Cart is empty"})
			return
		}

		var order models.Order
		err := db.Transaction(func(tx *gorm.DB) error {
			var total float64
			var orderItems []models.OrderItem

			for _, item := range cartItems {
				var product models.Product
				if err := tx.Where("is_active = ?", true).First(&product, item.ProductID).Error; err != nil {
					return err
				}
				if err := reserveStock(tx, product.ID, item.Quantity); err != nil {
					if errors.Is(err, errInsufficientStock) {
						return fmt.Errorf("%w for product: %s", errInsufficientStock, product.Name)
					}
					return err
				}

				unitPrice := product.Price(item.IsDecorative)
				total += unitPrice * float64(item.Quantity)
				orderItems = append(orderItems, models.OrderItem{
					ProductID:    product.ID,
					ProductName:  product.Name,
					IsDecorative: item.IsDecorative,
					UnitPrice:    unitPrice,
					Quantity:     item.Quantity,
				})
			}

			priceOption := models.PriceOptionRegular
			if cartItems[0].IsDecorative {
				priceOption = models.PriceOptionDecorative
			}
			order = models.Order{
				UserID:          userID,
				ProductID:       orderItems[0].ProductID,
				ProductName:     orderItems[0].ProductName,
				Quantity:        orderItems[0].Quantity,
				PriceOption:     priceOption,
				TotalAmount:     total,
				PaymentMethod:   input.PaymentMethod,
				UPIID:           input.UPIID,
				ShippingAddress: input.ShippingAddress,
				PhoneNumber:     input.PhoneNumber,
				Pincode:         input.Pincode,
				Status:          models.OrderStatusPending,
				Items:           orderItems,
			}
			if err := tx.Create(&order).Error; err != nil {
				return err
			}

			return tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
		})
		if err != nil {
			if errors.Is(err, errInsufficientStock) {
				c.JSON(http.StatusConflict, gin.H{"success": false, "message": err.Error()})
				return
			}
			log.Printf("checkout failed (request %s): %v", c.GetString("request_id"), err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to place order"})
			return
		}

		broadcastNewOrder(order)
		c.JSON(http.StatusCreated, gin.H{
			"success":  true,
			"message":  "Order placed successfully",
			"order_id": order.ID,
		})
	}
}

// GetUserOrders lists the caller's orders, newest first.
// GET /user/orders
func GetUserOrders(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.CurrentUserID(c)

		var orders []models.Order
		if err := db.Where("user_id = ?", userID).
			Preload("Items").
			Order("created_at DESC").
			Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch orders"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "orders": orders})
	}
}

// GetOrderDetails returns one of the caller's orders with its item rows.
// GET /user/orders/:order_id
func GetOrderDetails(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.CurrentUserID(c)

		orderID, err := strconv.Atoi(c.Param("order_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid order ID"})
			return
		}

		var order models.Order
		if err := db.Preload("Items").
			Where("id = ? AND user_id = ?", orderID, userID).
			First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch order details"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
	}
}
