package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"time"
)

const (
	SignatureHeader = "X-Soukhyam-Signature"
	TimestampHeader = "X-Soukhyam-Timestamp"
	EventHeader     = "X-Soukhyam-Event"

	// DefaultTolerance is how old a delivery may be before a receiver should
	// treat it as a replay.
	DefaultTolerance = 5 * time.Minute
)

var (
	ErrSignatureMismatch = errors.New("webhook signature mismatch")
	ErrSignatureExpired  = errors.New("webhook timestamp outside tolerance")
	ErrBadTimestamp      = errors.New("webhook timestamp is not a unix time")
)

// Sign returns "sha256=<hex>" over "<unix seconds>.<payload>". Binding the
// timestamp into the MAC lets receivers reject replayed alerts.
func Sign(secret string, timestamp time.Time, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(timestamp.Unix(), 10)))
	mac.Write([]byte{'.'})
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// Verify checks a delivery's headers against payload. The timestamp header
// must parse and lie within tolerance of now in either direction.
func Verify(secret string, payload []byte, timestampHeader, signature string, now time.Time, tolerance time.Duration) error {
	unix, err := strconv.ParseInt(timestampHeader, 10, 64)
	if err != nil {
		return ErrBadTimestamp
	}
	ts := time.Unix(unix, 0)

	if !hmac.Equal([]byte(signature), []byte(Sign(secret, ts, payload))) {
		return ErrSignatureMismatch
	}

	age := now.Sub(ts)
	if age < -tolerance || age > tolerance {
		return ErrSignatureExpired
	}
	return nil
}
