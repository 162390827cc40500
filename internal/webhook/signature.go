package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// signaturePrefix names the scheme so receivers can verify against the
// right algorithm if we ever add a second one.
const signaturePrefix = "sha256="

// Sign computes the X-Comandero-Signature header value for a payload:
// hex-encoded HMAC-SHA256 of the raw body under the endpoint's secret.
func Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature matches payload under secret. The
// comparison is constant time.
func Verify(secret string, payload []byte, signature string) bool {
	expected := Sign(secret, payload)
	return hmac.Equal([]byte(signature), []byte(expected))
}
