package claimcontroller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shivarajya-arts/storefront-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// pngHeader is enough for http.DetectContentType to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Product{}, &models.CartItem{},
		&models.Order{}, &models.OrderItem{}, &models.Claim{},
	))
	return db
}

func asUser(userID uint, isAdmin bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("is_admin", isAdmin)
	}
}

func newClaimRouter(db *gorm.DB, userID uint, isAdmin bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	grp := r.Group("/user/claims", asUser(userID, isAdmin))
	grp.POST("", SubmitClaim(db))
	grp.GET("", GetUserClaims(db))
	grp.GET("/:id", GetClaim(db))
	grp.PUT("", UpdateClaimStatus(db))
	return r
}

// claimRequest builds the multipart body SubmitClaim expects. A nil image
// leaves the file part out entirely.
func claimRequest(t *testing.T, fields map[string]string, image []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if image != nil {
		part, err := w.CreateFormFile("claim_image", "photo.png")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/user/claims", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// claimFiles lists what ended up under <uploadDir>/claims.
func claimFiles(t *testing.T, uploadDir string) []string {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(uploadDir, "claims"))
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestSubmitClaimHappyPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("UPLOAD_DIR", dir)
	db := newTestDB(t)
	r := newClaimRouter(db, 1, false)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, claimRequest(t, map[string]string{
		"description": "Arrived with a cracked base",
	}, pngHeader))

	assert.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.NotZero(t, body["claim_id"])

	var claim models.Claim
	require.NoError(t, db.First(&claim).Error)
	assert.Equal(t, models.ClaimStatusPending, claim.Status)
	assert.True(t, strings.HasPrefix(claim.ImagePath, "uploads/claims/"),
		"stored path must be relative, got %q", claim.ImagePath)

	files := claimFiles(t, dir)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Base(claim.ImagePath), files[0])
}

func TestSubmitClaimRequiresDescription(t *testing.T) {
	t.Setenv("UPLOAD_DIR", t.TempDir())
	db := newTestDB(t)
	r := newClaimRouter(db, 1, false)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, claimRequest(t, map[string]string{}, pngHeader))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitClaimRequiresImage(t *testing.T) {
	t.Setenv("UPLOAD_DIR", t.TempDir())
	db := newTestDB(t)
	r := newClaimRouter(db, 1, false)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, claimRequest(t, map[string]string{"description": "broken"}, nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Please upload an image", decodeBody(t, w)["message"])
}

func TestSubmitClaimRejectsOversizeImage(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("UPLOAD_DIR", dir)
	db := newTestDB(t)
	r := newClaimRouter(db, 1, false)

	big := append(append([]byte{}, pngHeader...), make([]byte, 6<<20)...)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, claimRequest(t, map[string]string{"description": "broken"}, big))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "File size too large. Maximum 5MB allowed.", decodeBody(t, w)["message"])

	var count int64
	db.Model(&models.Claim{}).Count(&count)
	assert.Zero(t, count)
	assert.Empty(t, claimFiles(t, dir))
}

func TestSubmitClaimRejectsNonImage(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("UPLOAD_DIR", dir)
	db := newTestDB(t)
	r := newClaimRouter(db, 1, false)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, claimRequest(t, map[string]string{"description": "broken"},
		[]byte("#!/bin/sh\nrm -rf /\n")))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid file type. Please upload an image.", decodeBody(t, w)["message"])
	assert.Empty(t, claimFiles(t, dir))
}

func TestSubmitClaimRejectsForeignOrder(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("UPLOAD_DIR", dir)
	db := newTestDB(t)
	order := models.Order{UserID: 2, ProductName: "x", Quantity: 1,
		PaymentMethod: "cod", ShippingAddress: "a", PhoneNumber: "1", Status: models.OrderStatusPending}
	require.NoError(t, db.Create(&order).Error)
	r := newClaimRouter(db, 1, false)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, claimRequest(t, map[string]string{
		"description": "broken",
		"order_id":    fmt.Sprint(order.ID),
	}, pngHeader))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid order selected", decodeBody(t, w)["message"])
	// Reference checks run before the file write, so nothing hit disk.
	assert.Empty(t, claimFiles(t, dir))
}

func TestSubmitClaimRemovesFileWhenInsertFails(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("UPLOAD_DIR", dir)
	db := newTestDB(t)
	r := newClaimRouter(db, 1, false)

	// Force the insert to fail after the upload has been saved.
	require.NoError(t, db.Migrator().DropTable(&models.Claim{}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, claimRequest(t, map[string]string{"description": "broken"}, pngHeader))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, claimFiles(t, dir), "failed insert must not leave an orphaned upload")
}

func TestGetUserClaimsScopedToCaller(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&models.Claim{UserID: 1, ImagePath: "uploads/claims/a.png",
		Description: "mine", Status: models.ClaimStatusPending}).Error)
	require.NoError(t, db.Create(&models.Claim{UserID: 2, ImagePath: "uploads/claims/b.png",
		Description: "theirs", Status: models.ClaimStatusPending}).Error)
	r := newClaimRouter(db, 1, false)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/user/claims", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	claims := decodeBody(t, w)["claims"].([]interface{})
	require.Len(t, claims, 1)
}

func TestGetClaimVisibility(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&models.User{
		FirstName: "Asha", LastName: "Kumbhar", Email: "asha@example.com",
		PasswordHash: "x", IsVerified: true,
	}).Error)
	claim := models.Claim{UserID: 1, ImagePath: "uploads/claims/a.png",
		Description: "cracked", Status: models.ClaimStatusPending}
	require.NoError(t, db.Create(&claim).Error)

	// The owner can read it.
	owner := newClaimRouter(db, 1, false)
	w := httptest.NewRecorder()
	owner.ServeHTTP(w, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/user/claims/%d", claim.ID), nil))
	assert.Equal(t, http.StatusOK, w.Code)

	// Another user gets not-found, not forbidden.
	stranger := newClaimRouter(db, 2, false)
	w = httptest.NewRecorder()
	stranger.ServeHTTP(w, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/user/claims/%d", claim.ID), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	// An admin can read any claim and sees the customer label.
	admin := newClaimRouter(db, 99, true)
	w = httptest.NewRecorder()
	admin.ServeHTTP(w, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/user/claims/%d", claim.ID), nil))
	assert.Equal(t, http.StatusOK, w.Code)
	got := decodeBody(t, w)["claim"].(map[string]interface{})
	assert.Equal(t, "Asha Kumbhar", got["customer_name"])
}

func TestApplyReview(t *testing.T) {
	db := newTestDB(t)
	claim := models.Claim{UserID: 1, ImagePath: "uploads/claims/a.png",
		Description: "cracked", Status: models.ClaimStatusPending}
	require.NoError(t, db.Create(&claim).Error)

	require.NoError(t, ApplyReview(db, claim.ID, "approved", "replacement dispatched"))

	var got models.Claim
	require.NoError(t, db.First(&got, claim.ID).Error)
	assert.Equal(t, models.ClaimStatusApproved, got.Status)
	assert.Equal(t, "replacement dispatched", got.AdminNotes)

	err := ApplyReview(db, claim.ID, "escalated", "")
	assert.ErrorIs(t, err, models.ErrInvalidClaimStatus)

	err = ApplyReview(db, 9999, "rejected", "")
	assert.ErrorIs(t, err, ErrClaimNotFound)
}
