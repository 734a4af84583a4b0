package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// ComputeOrderSignature returns the hex HMAC-SHA256 digest the gateway hands
// to the client after checkout: HMAC(secret, orderID + "|" + paymentID).
func ComputeOrderSignature(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyOrderSignature checks a client-supplied signature in constant time.
func VerifyOrderSignature(orderID, paymentID, signature, secret string) bool {
	expected := ComputeOrderSignature(orderID, paymentID, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// ComputeWebhookSignature returns the hex HMAC-SHA256 digest of a raw webhook
// body under the webhook secret.
func ComputeWebhookSignature(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyWebhookSignature checks the X-Razorpay-Signature header value against
// the raw request body in constant time.
func VerifyWebhookSignature(body []byte, signature, secret string) bool {
	expected := ComputeWebhookSignature(body, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}
