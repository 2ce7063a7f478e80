package usercontroller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shivarajya-arts/storefront-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeSender records outgoing codes instead of touching SMTP.
type fakeSender struct {
	lastEmail string
	lastCode  string
	fail      bool
}

func (f *fakeSender) SendOTP(_ context.Context, email, _, code string) error {
	if f.fail {
		return errors.New("smtp unreachable")
	}
	f.lastEmail = email
	f.lastCode = code
	return nil
}

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

func newAuthRouter(db *gorm.DB, sender *fakeSender) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	grp := r.Group("/auth")
	grp.POST("/register", Register(db))
	grp.POST("/send-otp", SendOTP(db, sender))
	grp.POST("/verify-otp", VerifyOTP(db))
	grp.POST("/login", Login(db))
	grp.GET("/session", CheckSession(db))
	return r
}

func doForm(r *gin.Engine, method, path string, form url.Values, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func registerForm(email string) url.Values {
	return url.Values{
		"first_name": {"Asha"},
		"last_name":  {"Kumbhar"},
		"email":      {email},
		"phone":      {"9876543210"},
		"password":   {"secret123"},
	}
}

func TestRegistrationAndVerificationFlow(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	db := newTestDB(t)
	sender := &fakeSender{}
	r := newAuthRouter(db, sender)

	w := doForm(r, http.MethodPost, "/auth/register", registerForm("asha@example.com"), nil)
	require.Equal(t, http.StatusCreated, w.Code)

	// Login before verification is refused even with good credentials.
	w = doForm(r, http.MethodPost, "/auth/login", url.Values{
		"email": {"asha@example.com"}, "password": {"secret123"},
	}, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Please verify your email first", decodeBody(t, w)["message"])

	w = doForm(r, http.MethodPost, "/auth/send-otp", url.Values{"email": {"asha@example.com"}}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, sender.lastCode, 6)
	assert.Equal(t, "asha@example.com", sender.lastEmail)

	w = doForm(r, http.MethodPost, "/auth/verify-otp", url.Values{
		"email": {"asha@example.com"}, "otp": {sender.lastCode},
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.NotEmpty(t, body["token"], "verification opens a session")

	// The code is one-shot.
	w = doForm(r, http.MethodPost, "/auth/verify-otp", url.Values{
		"email": {"asha@example.com"}, "otp": {sender.lastCode},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Now the login succeeds and the session endpoint recognizes the token.
	w = doForm(r, http.MethodPost, "/auth/login", url.Values{
		"email": {"asha@example.com"}, "password": {"secret123"},
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	token := decodeBody(t, w)["token"].(string)

	w = doForm(r, http.MethodGet, "/auth/session", nil, map[string]string{"Authorization": token})
	require.Equal(t, http.StatusOK, w.Code)
	session := decodeBody(t, w)
	assert.Equal(t, true, session["logged_in"])
	user := session["user"].(map[string]interface{})
	assert.Equal(t, "asha@example.com", user["email"])
}

func TestRegisterValidation(t *testing.T) {
	db := newTestDB(t)
	r := newAuthRouter(db, &fakeSender{})

	cases := []struct {
		name    string
		mutate  func(url.Values)
		message string
	}{
		{"missing field", func(f url.Values) { f.Del("first_name") }, "All fields are required"},
		{"bad email", func(f url.Values) { f.Set("email", "not-an-email") }, "Invalid email format"},
		{"bad phone", func(f url.Values) { f.Set("phone", "12") }, "Invalid phone number format"},
		{"short password", func(f url.Values) { f.Set("password", "abc") }, "Password must be at least 6 characters"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			form := registerForm("new@example.com")
			tc.mutate(form)
			w := doForm(r, http.MethodPost, "/auth/register", form, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tc.message, decodeBody(t, w)["message"])
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	r := newAuthRouter(db, &fakeSender{})

	w := doForm(r, http.MethodPost, "/auth/register", registerForm("asha@example.com"), nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doForm(r, http.MethodPost, "/auth/register", registerForm("asha@example.com"), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Email already registered", decodeBody(t, w)["message"])
}

func TestSendOTPUnknownUser(t *testing.T) {
	db := newTestDB(t)
	r := newAuthRouter(db, &fakeSender{})

	w := doForm(r, http.MethodPost, "/auth/send-otp", url.Values{"email": {"ghost@example.com"}}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSendOTPMailFailureStoresNothing(t *testing.T) {
	db := newTestDB(t)
	sender := &fakeSender{fail: true}
	r := newAuthRouter(db, sender)

	doForm(r, http.MethodPost, "/auth/register", registerForm("asha@example.com"), nil)
	w := doForm(r, http.MethodPost, "/auth/send-otp", url.Values{"email": {"asha@example.com"}}, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var user models.User
	require.NoError(t, db.Where("email = ?", "asha@example.com").First(&user).Error)
	assert.Nil(t, user.OTPCode, "a code that was never delivered must not become verifiable")
}

func TestVerifyOTPWrongCode(t *testing.T) {
	db := newTestDB(t)
	sender := &fakeSender{}
	r := newAuthRouter(db, sender)

	doForm(r, http.MethodPost, "/auth/register", registerForm("asha@example.com"), nil)
	doForm(r, http.MethodPost, "/auth/send-otp", url.Values{"email": {"asha@example.com"}}, nil)

	w := doForm(r, http.MethodPost, "/auth/verify-otp", url.Values{
		"email": {"asha@example.com"}, "otp": {"000000"},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid OTP", decodeBody(t, w)["message"])

	var user models.User
	require.NoError(t, db.Where("email = ?", "asha@example.com").First(&user).Error)
	assert.False(t, user.IsVerified)
}

func TestVerifyOTPExpired(t *testing.T) {
	db := newTestDB(t)
	sender := &fakeSender{}
	r := newAuthRouter(db, sender)

	doForm(r, http.MethodPost, "/auth/register", registerForm("asha@example.com"), nil)
	doForm(r, http.MethodPost, "/auth/send-otp", url.Values{"email": {"asha@example.com"}}, nil)

	// Age the stored code past its validity window.
	expired := time.Now().Add(-time.Minute)
	require.NoError(t, db.Model(&models.User{}).Where("email = ?", "asha@example.com").
		Update("otp_expires", expired).Error)

	w := doForm(r, http.MethodPost, "/auth/verify-otp", url.Values{
		"email": {"asha@example.com"}, "otp": {sender.lastCode},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "OTP has expired", decodeBody(t, w)["message"])
}

func TestLoginWrongPassword(t *testing.T) {
	db := newTestDB(t)
	r := newAuthRouter(db, &fakeSender{})

	doForm(r, http.MethodPost, "/auth/register", registerForm("asha@example.com"), nil)
	w := doForm(r, http.MethodPost, "/auth/login", url.Values{
		"email": {"asha@example.com"}, "password": {"wrong-pass"},
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password", decodeBody(t, w)["message"])
}

func TestCheckSessionWithoutToken(t *testing.T) {
	db := newTestDB(t)
	r := newAuthRouter(db, &fakeSender{})

	w := doForm(r, http.MethodGet, "/auth/session", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decodeBody(t, w)["logged_in"])

	w = doForm(r, http.MethodGet, "/auth/session", nil, map[string]string{"Authorization": "garbage"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decodeBody(t, w)["logged_in"])
}
