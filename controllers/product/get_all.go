package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shivarajya-arts/storefront-api/models"
	"gorm.io/gorm"
)

// GetProducts lists active catalog products, filtered by the category
// facets and an optional free-text search over name and description.
// GET /products?size=&material=&type=&search=
func GetProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Model(&models.Product{}).Where("is_active = ?", true)

		if size := c.Query("size"); size != "" {
			query = query.Where("size_category = ?", size)
		}
		if material := c.Query("material"); material != "" {
			query = query.Where("material_category = ?", material)
		}
		if typ := c.Query("type"); typ != "" {
			query = query.Where("type_category = ?", typ)
		}
		if search := c.Query("search"); search != "" {
			likePattern := "%" + search + "%"
			query = query.Where("name LIKE ? OR description LIKE ?", likePattern, likePattern)
		}

		var products []models.Product
		if err := query.Order("name ASC").Find(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch products"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "products": products})
	}
}
