package admincontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shivarajya-arts/storefront-api/models"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"
)

// ExportOrdersToExcel streams every order as an xlsx download for offline
// bookkeeping.
// GET /admin/orders/export-excel
func ExportOrdersToExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var orders []models.Order
		if err := db.Order("created_at DESC").Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch orders"})
			return
		}

		file := xlsx.NewFile()
		sheet, err := file.AddSheet("Orders")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create Excel sheet"})
			return
		}

		headers := []string{
			"ID", "UserID", "Product", "Quantity", "PriceOption", "TotalAmount",
			"PaymentMethod", "ShippingAddress", "PhoneNumber", "Pincode",
			"Status", "TrackingID", "CreatedAt",
		}
		headerRow := sheet.AddRow()
		for _, h := range headers {
			headerRow.AddCell().SetValue(h)
		}

		for _, o := range orders {
			row := sheet.AddRow()
			row.AddCell().SetValue(o.ID)
			row.AddCell().SetValue(o.UserID)
			row.AddCell().SetValue(o.ProductName)
			row.AddCell().SetValue(o.Quantity)
			row.AddCell().SetValue(string(o.PriceOption))
			row.AddCell().SetValue(o.TotalAmount)
			row.AddCell().SetValue(o.PaymentMethod)
			row.AddCell().SetValue(o.ShippingAddress)
			row.AddCell().SetValue(o.PhoneNumber)
			row.AddCell().SetValue(o.Pincode)
			row.AddCell().SetValue(string(o.Status))
			row.AddCell().SetValue(o.TrackingID)
			row.AddCell().SetValue(o.CreatedAt.Format("2006-01-02 15:04:05"))
		}

		c.Header("Content-Disposition", "attachment; filename=orders.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")

		if err := file.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to write Excel file"})
			return
		}
	}
}
