package claimcontroller

import (
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shivarajya-arts/storefront-api/middleware"
	"github.com/shivarajya-arts/storefront-api/models"
	"gorm.io/gorm"
)

// maxClaimImageSize caps claim evidence uploads at 5MB.
const maxClaimImageSize = 5 << 20

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// UploadRoot is the directory claim images are written under. The database
// keeps paths relative to its parent so the tree stays portable.
func UploadRoot() string {
	if dir := os.Getenv("UPLOAD_DIR"); dir != "" {
		return dir
	}
	return "uploads"
}

// ClaimRow is a claim joined with its product/order labels for listings.
type ClaimRow struct {
	models.Claim
	ProductName  string `json:"product_name,omitempty"`
	OrderNumber  uint   `json:"order_number,omitempty"`
	FirstName    string `gorm:"column:first_name" json:"-"`
	LastName     string `gorm:"column:last_name" json:"-"`
	CustomerName string `gorm:"-" json:"customer_name,omitempty"`
	Email        string `json:"email,omitempty"`
}

// SubmitClaim files a defect report with a photo. The image must be a
// jpeg/png/gif/webp of at most 5MB; an optional order reference must belong
// to the caller and an optional product reference must be active. If the
// database insert fails after the file was written, the file is removed
// again so no orphaned upload remains.
// POST /user/claims (multipart)
func SubmitClaim(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.CurrentUserID(c)

		description := c.PostForm("description")
		if description == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Description is required"})
			return
		}

		fileHeader, err := c.FormFile("claim_image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Please upload an image"})
			return
		}
		if fileHeader.Size > maxClaimImageSize {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "File size too large. Maximum 5MB allowed."})
			return
		}

		contentType, err := sniffContentType(fileHeader)
		if err != nil || !allowedImageTypes[contentType] {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid file type. Please upload an image."})
			return
		}

		// Resolve the optional references before anything touches disk.
		var orderID *uint
		if raw := c.PostForm("order_id"); raw != "" {
			id, err := strconv.Atoi(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid order selected"})
				return
			}
			var order models.Order
			if err := db.Where("id = ? AND user_id = ?", id, userID).First(&order).Error; err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid order selected"})
				return
			}
			orderID = &order.ID
		}

		var productID *uint
		if raw := c.PostForm("product_id"); raw != "" {
			id, err := strconv.Atoi(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid product selected"})
				return
			}
			var product models.Product
			if err := db.Where("is_active = ?", true).First(&product, id).Error; err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid product selected"})
				return
			}
			productID = &product.ID
		}

		claimsDir := filepath.Join(UploadRoot(), "claims")
		if err := os.MkdirAll(claimsDir, 0o755); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to upload image"})
			return
		}

		fileName := fmt.Sprintf("claim_%d_%d%s", userID, time.Now().Unix(), filepath.Ext(fileHeader.Filename))
		savePath := filepath.Join(claimsDir, fileName)
		relativePath := path.Join("uploads/claims", fileName)

		if err := c.SaveUploadedFile(fileHeader, savePath); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to upload image"})
			return
		}

		claim := models.Claim{
			UserID:      userID,
			OrderID:     orderID,
			ProductID:   productID,
			ImagePath:   relativePath,
			Description: description,
			Status:      models.ClaimStatusPending,
		}
		if err := db.Create(&claim).Error; err != nil {
			// Compensate the file write so no orphaned upload remains.
			if rmErr := os.Remove(savePath); rmErr != nil && !os.IsNotExist(rmErr) {
				log.Printf("claim upload cleanup failed for %s: %v", savePath, rmErr)
			}
			log.Printf("claim insert failed (request %s): %v", c.GetString("request_id"), err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to submit claim"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success":  true,
			"message":  "Claim submitted successfully",
			"claim_id": claim.ID,
		})
	}
}

// GetUserClaims lists the caller's claims, newest first, with product and
// order labels attached.
// GET /user/claims
func GetUserClaims(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.CurrentUserID(c)

		var claims []ClaimRow
		err := db.Table("claims").
			Select("claims.*, products.name AS product_name, orders.id AS order_number").
			Joins("LEFT JOIN products ON products.id = claims.product_id").
			Joins("LEFT JOIN orders ON orders.id = claims.order_id").
			Where("claims.user_id = ?", userID).
			Order("claims.created_at DESC").
			Scan(&claims).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch claims"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "claims": claims})
	}
}

// GetClaim fetches one claim. Admins may read any claim; a regular user only
// their own, and a foreign claim is reported as not found rather than
// confirming it exists.
// GET /user/claims/:id
func GetClaim(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Claim ID is required"})
			return
		}

		query := db.Table("claims").
			Select(`claims.*, users.first_name, users.last_name, users.email,
				products.name AS product_name, orders.id AS order_number`).
			Joins("JOIN users ON users.id = claims.user_id").
			Joins("LEFT JOIN products ON products.id = claims.product_id").
			Joins("LEFT JOIN orders ON orders.id = claims.order_id").
			Where("claims.id = ?", claimID)
		if !c.GetBool("is_admin") {
			query = query.Where("claims.user_id = ?", middleware.CurrentUserID(c))
		}

		var claim ClaimRow
		if err := query.Scan(&claim).Error; err != nil || claim.ID == 0 {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Claim not found"})
			return
		}
		claim.CustomerName = claim.FirstName + " " + claim.LastName

		c.JSON(http.StatusOK, gin.H{"success": true, "claim": claim})
	}
}

type UpdateClaimInput struct {
	ClaimID    uint   `json:"claim_id" form:"claim_id" binding:"required"`
	Status     string `json:"status" form:"status" binding:"required"`
	AdminNotes string `json:"admin_notes" form:"admin_notes"`
}

// UpdateClaimStatus records an admin's decision on a claim.
// PUT /user/claims/status (admin)
func UpdateClaimStatus(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input UpdateClaimInput
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Claim ID and status are required"})
			return
		}

		if err := ApplyReview(db, input.ClaimID, input.Status, input.AdminNotes); err != nil {
			switch {
			case errors.Is(err, ErrClaimNotFound):
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

func sniffContentType(fileHeader *multipart.FileHeader) (string, error) {
	f, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && n == 0 {
		return "", err
	}
	return http.DetectContentType(buf[:n]), nil
}

// Errors returned by ApplyReview, mapped to responses by both the user-facing
// and the admin claim handlers.
var (
	ErrClaimNotFound = errors.New("claim not found")
)

// ApplyReview validates and applies an admin's status decision to a claim.
// Notes replace any prior notes. Both the claim endpoint and the admin
// endpoint funnel through here so the validation cannot drift apart.
func ApplyReview(db *gorm.DB, claimID uint, status, notes string) error {
	parsed, err := models.ParseClaimStatus(status)
	if err != nil {
		return err
	}

	res := db.Model(&models.Claim{}).Where("id = ?", claimID).
		Updates(map[string]interface{}{"status": parsed, "admin_notes": notes})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrClaimNotFound
	}
	return nil
}
