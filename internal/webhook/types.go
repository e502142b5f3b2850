package webhook

import (
	"context"
	"encoding/json"
	"time"
)

// Security header names. Lookup goes through http.Header, so matching is
// case-insensitive on the wire.
const (
	HeaderAPIKey    = "x-api-key"
	HeaderTimestamp = "x-timestamp"
	HeaderSignature = "x-signature"
)

// DefaultMaxBodySize caps submission bodies at 1 MB unless configured.
const DefaultMaxBodySize = 1 << 20

// ContentSink receives authenticated submissions. The CMS side of the house
// implements this; the ingest server only cares that the request was
// authentic.
type ContentSink interface {
	Ingest(ctx context.Context, sub Submission) error
}

// SinkFunc adapts a function to the ContentSink interface.
type SinkFunc func(ctx context.Context, sub Submission) error

func (f SinkFunc) Ingest(ctx context.Context, sub Submission) error {
	return f(ctx, sub)
}

// Submission is an authenticated, syntactically valid content payload.
type Submission struct {
	ID         string
	ReceivedAt time.Time
	Payload    json.RawMessage
}

// Config holds ingest server configuration.
type Config struct {
	// Listen is the address the HTTP server binds to.
	Listen string

	// Path is the URL path of the ingest endpoint (e.g. "/ingest").
	Path string

	// MaxBodySize is the maximum allowed request body size in bytes.
	MaxBodySize int64
}

// AcceptedResponse is the JSON response for accepted submissions.
type AcceptedResponse struct {
	ID string `json:"id"`
}

// ErrorResponse is the JSON response for rejected requests.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
