package webhook

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupHMACRouter(config HMACConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(HMACMiddleware(config))
	router.POST("/alert", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestVerifyHMAC(t *testing.T) {
	body := []byte(`{"alerts": []}`)
	secret := []byte("secret")

	signature := ComputeHMAC(body, secret)

	assert.True(t, VerifyHMAC(body, signature, secret))
	assert.False(t, VerifyHMAC(body, signature, []byte("other")))
	assert.False(t, VerifyHMAC([]byte("tampered"), signature, secret))
}

func TestHMACMiddleware_ValidSignature(t *testing.T) {
	config := DefaultHMACConfig("secret")
	router := setupHMACRouter(config)

	body := []byte(`{"alerts": []}`)
	req := httptest.NewRequest(http.MethodPost, "/alert", bytes.NewReader(body))
	req.Header.Set("X-Webhook-Signature", "sha256="+ComputeHMAC(body, []byte("secret")))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHMACMiddleware_MissingSignature(t *testing.T) {
	router := setupHMACRouter(DefaultHMACConfig("secret"))

	req := httptest.NewRequest(http.MethodPost, "/alert", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHMACMiddleware_InvalidSignature(t *testing.T) {
	router := setupHMACRouter(DefaultHMACConfig("secret"))

	req := httptest.NewRequest(http.MethodPost, "/alert", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("X-Webhook-Signature", "sha256=deadbeef")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHMACMiddleware_MissingPrefix(t *testing.T) {
	router := setupHMACRouter(DefaultHMACConfig("secret"))

	body := []byte(`{}`)
	req := httptest.NewRequest(http.MethodPost, "/alert", bytes.NewReader(body))
	req.Header.Set("X-Webhook-Signature", ComputeHMAC(body, []byte("secret")))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHMACMiddleware_NoSecretSkipsVerification(t *testing.T) {
	router := setupHMACRouter(HMACConfig{})

	req := httptest.NewRequest(http.MethodPost, "/alert", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
