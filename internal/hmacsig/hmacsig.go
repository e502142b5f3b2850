// Package hmacsig computes and verifies the keyed digests that authenticate
// inbound content submissions.
//
// The signed material is the x-timestamp header value immediately followed by
// the raw request body, with no separator. Binding the timestamp into the
// digest means that tampering with either the timestamp or the body after
// signing produces the same detectable failure: an invalid signature.
package hmacsig

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// DigestLen is the length of a hex-encoded HMAC-SHA256 digest.
const DigestLen = 2 * sha256.Size

// Sign computes the HMAC-SHA256 digest over timestamp+body keyed with secret,
// rendered as a lowercase hex string of DigestLen characters.
func Sign(secret []byte, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(timestamp))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the expected digest for timestamp+body and compares it
// against providedHex using constant-time comparison (crypto/subtle) to
// prevent timing attacks. Returns false for any mismatch, including wrong
// length or non-hex input. Never panics.
func Verify(secret []byte, timestamp string, body []byte, providedHex string) bool {
	provided, err := hex.DecodeString(providedHex)
	if err != nil || len(provided) != sha256.Size {
		return false
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(timestamp))
	mac.Write(body)
	expected := mac.Sum(nil)

	return subtle.ConstantTimeCompare(expected, provided) == 1
}
