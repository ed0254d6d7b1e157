package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"math"
	"strconv"
	"time"
)

const signaturePrefix = "sha256="

var (
	ErrInvalidTimestamp  = errors.New("invalid timestamp")
	ErrStaleTimestamp    = errors.New("timestamp outside tolerance")
	ErrMissingSignature  = errors.New("missing signature")
	ErrSignatureLength   = errors.New("signature length mismatch")
	ErrSignatureMismatch = errors.New("signature mismatch")
)

// Sign returns "sha256=" + hex(HMAC-SHA256(secret, timestamp + "." + body)).
func Sign(secret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(timestamp))
	_, _ = mac.Write([]byte("."))
	_, _ = mac.Write(body)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature authenticates body at timestamp, with
// timestamp (unix seconds) within tolerance of now.
func Verify(secret, timestamp string, body []byte, signature string, tolerance time.Duration) bool {
	return Check(secret, timestamp, body, signature, tolerance, time.Now()) == nil
}

// Check is Verify with an explicit clock, returning the rejection reason.
// The timestamp, presence and length checks run before any HMAC is computed.
func Check(secret, timestamp string, body []byte, signature string, tolerance time.Duration, now time.Time) error {
	ts, err := strconv.ParseFloat(timestamp, 64)
	if err != nil || math.IsNaN(ts) || math.IsInf(ts, 0) {
		return ErrInvalidTimestamp
	}

	skew := float64(now.UnixNano())/1e9 - ts
	if math.Abs(skew) > tolerance.Seconds() {
		return ErrStaleTimestamp
	}

	if signature == "" {
		return ErrMissingSignature
	}
	// hex of a sha256 sum has a fixed width
	if len(signature) != len(signaturePrefix)+hex.EncodedLen(sha256.Size) {
		return ErrSignatureLength
	}

	expected := Sign(secret, timestamp, body)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrSignatureMismatch
	}
	return nil
}

// Reason maps a Check error to a short label for logs and metrics.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidTimestamp):
		return "invalid_timestamp"
	case errors.Is(err, ErrStaleTimestamp):
		return "stale_timestamp"
	case errors.Is(err, ErrMissingSignature):
		return "missing_signature"
	case errors.Is(err, ErrSignatureLength):
		return "length_mismatch"
	case errors.Is(err, ErrSignatureMismatch):
		return "signature_mismatch"
	default:
		return "unreadable_body"
	}
}
