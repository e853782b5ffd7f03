package webhook

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

var (
	// ErrMissingSignature is returned when the signature header is missing.
	ErrMissingSignature = errors.New("missing signature header")
	// ErrInvalidSignature is returned when the signature verification fails.
	ErrInvalidSignature = errors.New("invalid signature")
)

// HMACConfig holds HMAC verification settings.
type HMACConfig struct {
	// SignatureHeader is the name of the header containing the signature.
	SignatureHeader string
	// SignaturePrefix is the prefix in the header value (e.g., "sha256=").
	SignaturePrefix string
	// Secret is the secret key for HMAC verification.
	Secret []byte
}

// DefaultHMACConfig returns the HMAC config used for the alert webhook.
func DefaultHMACConfig(secret string) HMACConfig {
	return HMACConfig{
		SignatureHeader: "X-Webhook-Signature",
		SignaturePrefix: "sha256=",
		Secret:          []byte(secret),
	}
}

// VerifyHMAC verifies the HMAC-SHA256 signature of a request body using
// constant-time comparison.
func VerifyHMAC(body []byte, signature string, secret []byte) bool {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// ComputeHMAC computes the hex-encoded HMAC-SHA256 signature of the given
// body using the provided secret.
func ComputeHMAC(body []byte, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// HMACMiddleware creates a Gin middleware for HMAC signature verification.
// If the secret is empty, the middleware will skip verification
// (development mode).
func HMACMiddleware(config HMACConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(config.Secret) == 0 {
			c.Next()
			return
		}

		sigHeader := c.GetHeader(config.SignatureHeader)
		if sigHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": ErrMissingSignature.Error(),
			})
			return
		}

		signature := strings.TrimPrefix(sigHeader, config.SignaturePrefix)
		if signature == sigHeader {
			// Prefix was not present
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": ErrInvalidSignature.Error(),
			})
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": "failed to read request body",
			})
			return
		}

		// Restore body for downstream handlers
		c.Request.Body = io.NopCloser(bytes.NewBuffer(body))

		if !VerifyHMAC(body, signature, config.Secret) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": ErrInvalidSignature.Error(),
			})
			return
		}

		c.Next()
	}
}
