package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shivarajya-arts/storefront-api/auth"
	"github.com/shivarajya-arts/storefront-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protectedRouter(adminOnly bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := []gin.HandlerFunc{ValidateToken}
	if adminOnly {
		handlers = append(handlers, RequireAdmin)
	}
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": CurrentUserID(c), "is_admin": c.GetBool("is_admin")})
	})
	r.GET("/whoami", handlers...)
	return r
}

func get(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdentityRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := auth.IssueToken(models.User{ID: 42, Email: "a@b.c", IsAdmin: true})
	require.NoError(t, err)

	userID, isAdmin, err := IdentityFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
	assert.True(t, isAdmin)

	// The Bearer prefix browsers send is stripped transparently.
	userID, _, err = IdentityFromToken("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
}

func TestIdentityFromTokenRejectsForgery(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	token, err := auth.IssueToken(models.User{ID: 42})
	require.NoError(t, err)

	_, _, err = IdentityFromToken("not-a-jwt")
	assert.Error(t, err)

	// A token signed under a different secret must not verify.
	t.Setenv("JWT_SECRET", "rotated-secret")
	_, _, err = IdentityFromToken(token)
	assert.Error(t, err)
}

func TestValidateTokenGate(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	r := protectedRouter(false)

	w := get(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = get(r, "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := auth.IssueToken(models.User{ID: 7})
	require.NoError(t, err)
	w = get(r, token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdminGate(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	r := protectedRouter(true)

	userToken, err := auth.IssueToken(models.User{ID: 7})
	require.NoError(t, err)
	w := get(r, userToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	adminToken, err := auth.IssueToken(models.User{ID: 1, IsAdmin: true})
	require.NoError(t, err)
	w = get(r, adminToken)
	assert.Equal(t, http.StatusOK, w.Code)
}
