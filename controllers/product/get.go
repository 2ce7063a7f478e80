package productcontroller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shivarajya-arts/storefront-api/models"
	"gorm.io/gorm"
)

// GetProductByID returns a single active product.
// GET /products/:id
func GetProductByID(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid product ID"})
			return
		}

		var product models.Product
		if err := db.Where("is_active = ?", true).First(&product, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Product not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to retrieve product"})
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "product": product})
	}
}
