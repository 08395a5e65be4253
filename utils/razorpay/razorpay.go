// Package razorpay implements the provider's signature contract and the
// token formats used for order and payment identifiers.
package razorpay

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeSignature computes the provider-style signature binding an order id
// and payment id: hex-encoded HMAC-SHA256 over "orderID|paymentID".
func ComputeSignature(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// IsValidSignature compares a computed signature with the provider-supplied
// one in constant time. An empty provided signature is always invalid.
func IsValidSignature(orderID, paymentID, providedSignature, secret string) bool {
	if providedSignature == "" {
		return false
	}
	expected := ComputeSignature(orderID, paymentID, secret)
	return hmac.Equal([]byte(expected), []byte(providedSignature))
}

// GenerateOrderID returns a fresh provider-style order identifier,
// "order_" followed by 16 hex characters.
func GenerateOrderID() string {
	return "order_" + randomHex(8)
}

// GenerateToken returns a synthetic identifier for records created outside
// the provider flow, e.g. "manual-order-<hex>".
func GenerateToken(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, randomHex(8))
}

func randomHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return hex.EncodeToString(buf)
}
