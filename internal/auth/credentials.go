package auth

import (
	"encoding/hex"
	"errors"

	"github.com/zeebo/blake3"
)

// Credentials holds the shared-secret material a trusted publisher uses to
// sign content submissions. Loaded once at startup and immutable for the
// process lifetime; there is no runtime rotation path in this core.
type Credentials struct {
	APIKey       string
	SharedSecret []byte
}

// Validate checks that both pieces of secret material are present.
func (c Credentials) Validate() error {
	if c.APIKey == "" {
		return errors.New("api key is required")
	}
	if len(c.SharedSecret) == 0 {
		return errors.New("shared secret is required")
	}
	return nil
}

// Fingerprint returns a short BLAKE3 digest of the shared secret, safe to
// include in logs. The secret itself must never be logged in full.
func (c Credentials) Fingerprint() string {
	sum := blake3.Sum256(c.SharedSecret)
	return hex.EncodeToString(sum[:4])
}
