package duitku

import (
	"crypto/md5"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// datetimeLayout is the timestamp format the merchant API signs over.
const datetimeLayout = "2006-01-02 15:04:05"

func sha256Hex(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "")))
	return hex.EncodeToString(sum[:])
}

func md5Hex(parts ...string) string {
	sum := md5.Sum([]byte(strings.Join(parts, "")))
	return hex.EncodeToString(sum[:])
}

// AmountSignature is used by the payment method listing and the legacy
// inquiry: SHA-256(merchantCode + amount + datetime + apiKey).
func AmountSignature(merchantCode string, amount int64, datetime, apiKey string) string {
	return sha256Hex(merchantCode, strconv.FormatInt(amount, 10), datetime, apiKey)
}

// OrderSignature signs an inquiry: MD5(merchantCode + orderId + amount + apiKey).
func OrderSignature(merchantCode, merchantOrderID string, amount int64, apiKey string) string {
	return md5Hex(merchantCode, merchantOrderID, strconv.FormatInt(amount, 10), apiKey)
}

// StatusSignature signs a status check: MD5(merchantCode + orderId + apiKey).
func StatusSignature(merchantCode, merchantOrderID, apiKey string) string {
	return md5Hex(merchantCode, merchantOrderID, apiKey)
}

// CallbackSignature is the value a genuine callback carries:
// MD5(merchantCode + amount + merchantOrderId + apiKey).
func CallbackSignature(merchantCode, amount, merchantOrderID, apiKey string) string {
	return md5Hex(merchantCode, amount, merchantOrderID, apiKey)
}

// HeaderSignature goes into x-duitku-signature on POP requests:
// SHA-256(merchantCode + timestampMillis + apiKey).
func HeaderSignature(merchantCode string, timestampMillis int64, apiKey string) string {
	return sha256Hex(merchantCode, strconv.FormatInt(timestampMillis, 10), apiKey)
}

func signatureEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func formatDatetime(t time.Time) string {
	return t.Format(datetimeLayout)
}
