// Package auth implements the shared-secret authentication protocol that
// guards the content-ingestion endpoint.
//
// A trusted publisher signs each submission with three headers:
//
//	x-api-key     opaque key identifying the publisher
//	x-timestamp   decimal milliseconds since the Unix epoch
//	x-signature   lowercase hex HMAC-SHA256 over timestamp+body
//
// The authenticator verifies the headers against process-wide Credentials,
// enforces a symmetric freshness window around the verifier's clock, and
// optionally rejects exact signature replays seen inside that window. Every
// verdict is a value, not an error: rejection is an expected, frequent
// outcome, and the caller maps it to its own transport vocabulary.
package auth

import (
	"crypto/subtle"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/quillcms/hookauth/internal/hmacsig"
)

// Request carries the security headers and raw body of an inbound
// submission exactly as received. Signature verification depends on
// byte-for-byte fidelity of Body; nothing here has been parsed yet.
type Request struct {
	APIKey    string
	Timestamp string
	Signature string
	Body      []byte
}

// Config assembles an Authenticator's collaborators.
type Config struct {
	Credentials Credentials

	// Clock supplies "now" for freshness checks. Defaults to the wall
	// clock; tests inject a fake.
	Clock clockwork.Clock

	// Replays tracks signatures already accepted inside the freshness
	// window. Defaults to NopReplayGuard (freshness-window-only variant).
	Replays ReplayGuard

	// MaxSkew is the symmetric freshness window. Defaults to DefaultMaxSkew.
	MaxSkew time.Duration
}

func (c *Config) applyDefaults() {
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	if c.Replays == nil {
		c.Replays = NopReplayGuard{}
	}
	if c.MaxSkew <= 0 {
		c.MaxSkew = DefaultMaxSkew
	}
}

// Authenticator decides whether an inbound request was produced by a holder
// of the shared secret, recently, and at most once. Safe for concurrent use.
type Authenticator struct {
	creds   Credentials
	clock   clockwork.Clock
	replays ReplayGuard
	maxSkew time.Duration
}

// New validates cfg.Credentials and returns a ready Authenticator.
func New(cfg Config) (*Authenticator, error) {
	if err := cfg.Credentials.Validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &Authenticator{
		creds:   cfg.Credentials,
		clock:   cfg.Clock,
		replays: cfg.Replays,
		maxSkew: cfg.MaxSkew,
	}, nil
}

// MaxSkew returns the configured freshness window.
func (a *Authenticator) MaxSkew() time.Duration { return a.maxSkew }

// Authenticate runs the fixed check sequence over req and returns a verdict.
// Checks short-circuit at the first failure, cheapest first: header
// presence, API key, timestamp format, timestamp freshness, signature,
// replay. The authenticator has no side effects until a request passes every
// check, at which point the signature is recorded with the replay guard.
func (a *Authenticator) Authenticate(req Request) Outcome {
	if req.APIKey == "" || req.Timestamp == "" || req.Signature == "" {
		return rejected(ReasonMissingHeaders)
	}

	if subtle.ConstantTimeCompare([]byte(req.APIKey), []byte(a.creds.APIKey)) != 1 {
		return rejected(ReasonInvalidAPIKey)
	}

	ts, err := ParseTimestamp(req.Timestamp)
	if err != nil {
		return rejected(ReasonBadTimestamp)
	}

	if !fresh(ts, a.clock.Now(), a.maxSkew) {
		return rejected(ReasonExpired)
	}

	if !hmacsig.Verify(a.creds.SharedSecret, req.Timestamp, req.Body, req.Signature) {
		return rejected(ReasonInvalidSignature)
	}

	// Cryptographically valid, but an exact repeat of a request we already
	// accepted inside the window.
	if a.replays.Seen(req.Signature) {
		return rejected(ReasonReplay)
	}

	a.replays.Record(req.Signature)
	return authenticated
}
