package auth

import "net/http"

// Reason identifies why a request failed authentication. The set is closed;
// there is no catch-all.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonMissingHeaders
	ReasonInvalidAPIKey
	ReasonBadTimestamp
	ReasonExpired
	ReasonInvalidSignature
	ReasonReplay
)

// Details returns the caller-facing reason string carried in the error
// response body. These strings are part of the publisher-facing contract.
func (r Reason) Details() string {
	switch r {
	case ReasonMissingHeaders:
		return "Missing required security headers (x-api-key, x-timestamp, x-signature)"
	case ReasonInvalidAPIKey:
		return "Invalid API key"
	case ReasonBadTimestamp:
		return "Invalid timestamp format"
	case ReasonExpired:
		return "Request expired"
	case ReasonInvalidSignature:
		return "Invalid signature"
	case ReasonReplay:
		return "Signature already used"
	}
	return ""
}

// String returns a short stable token for logs and metrics labels.
func (r Reason) String() string {
	switch r {
	case ReasonMissingHeaders:
		return "missing_headers"
	case ReasonInvalidAPIKey:
		return "invalid_api_key"
	case ReasonBadTimestamp:
		return "invalid_timestamp_format"
	case ReasonExpired:
		return "expired"
	case ReasonInvalidSignature:
		return "invalid_signature"
	case ReasonReplay:
		return "replay"
	}
	return "none"
}

// HTTPStatus maps a rejection to its transport status. Every authentication
// failure is unauthorized; malformed request bodies are the calling
// endpoint's concern and map to a 400-class status there, never here.
func (r Reason) HTTPStatus() int {
	return http.StatusUnauthorized
}

// Outcome is the authenticator's verdict for one request. Immutable once
// produced: either OK is true and Reason is ReasonNone, or OK is false and
// Reason names the first check that failed.
type Outcome struct {
	OK     bool
	Reason Reason
}

var authenticated = Outcome{OK: true}

func rejected(r Reason) Outcome {
	return Outcome{Reason: r}
}
