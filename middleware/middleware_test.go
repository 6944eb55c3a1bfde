package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"repairhub/config"
	"repairhub/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": c.GetString(utils.CtxUserID), "device": c.GetString(utils.CtxDeviceID)})
	})
	return r
}

func do(r http.Handler, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// signToken mints a token the way the identity provider does, using the
// shared JWT_SECRET.
func signToken(t *testing.T, secret, subject string, ttl time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(ttl).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestJWTAuthUserMiddleware(t *testing.T) {
	prev := config.AppConfig.JWTSecret
	config.AppConfig.JWTSecret = "test-secret"
	t.Cleanup(func() { config.AppConfig.JWTSecret = prev })
	r := newRouter(JWTAuthUserMiddleware())

	assert.Equal(t, http.StatusUnauthorized, do(r, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, map[string]string{"Authorization": "Bearer nonsense"}).Code)

	expired := signToken(t, "test-secret", "u42", -time.Minute)
	assert.Equal(t, http.StatusUnauthorized, do(r, map[string]string{"Authorization": "Bearer " + expired}).Code)

	forged := signToken(t, "other-secret", "u42", time.Hour)
	assert.Equal(t, http.StatusUnauthorized, do(r, map[string]string{"Authorization": "Bearer " + forged}).Code)

	token := signToken(t, "test-secret", "u42", time.Hour)
	w := do(r, map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user":"u42"`)
}

func TestDeviceMiddleware(t *testing.T) {
	r := newRouter(DeviceMiddleware())
	assert.Equal(t, http.StatusBadRequest, do(r, nil).Code)

	w := do(r, map[string]string{"X-Device-ID": "dev-1"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"device":"dev-1"`)
}

func TestAdminTokenMiddleware(t *testing.T) {
	prev := config.AppConfig.AdminToken
	t.Cleanup(func() { config.AppConfig.AdminToken = prev })

	r := newRouter(AdminTokenMiddleware())

	config.AppConfig.AdminToken = ""
	assert.Equal(t, http.StatusUnauthorized, do(r, map[string]string{"Authorization": "Bearer anything"}).Code)

	config.AppConfig.AdminToken = "s3cret"
	assert.Equal(t, http.StatusUnauthorized, do(r, map[string]string{"Authorization": "Bearer wrong"}).Code)
	assert.Equal(t, http.StatusOK, do(r, map[string]string{"Authorization": "Bearer s3cret"}).Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	r := newRouter(RateLimitMiddleware(2))
	assert.Equal(t, http.StatusOK, do(r, nil).Code)
	assert.Equal(t, http.StatusOK, do(r, nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, nil).Code)
	assert.Equal(t, http.StatusOK, do(r, map[string]string{"X-Real-IP": "10.0.0.2"}).Code)
	assert.Equal(t, http.StatusOK, do(r, map[string]string{"X-Device-ID": "d1"}).Code)
}

func TestRateKey(t *testing.T) {
	cases := []struct {
		header map[string]string
		want   string
	}{
		{nil, "ip:10.0.0.1"},
		{map[string]string{"X-Forwarded-For": "1.2.3.4, 10.0.0.9"}, "ip:1.2.3.4"},
		{map[string]string{"X-Real-IP": " 5.6.7.8 "}, "ip:5.6.7.8"},
		{map[string]string{"X-Device-ID": "d1", "X-Real-IP": "5.6.7.8"}, "device:d1"},
	}
	for _, tc := range cases {
		var got string
		r := gin.New()
		r.GET("/", func(c *gin.Context) { got = rateKey(c) })
		do(r, tc.header)
		assert.Equal(t, tc.want, got)
	}
}
