// Package webhook implements the HTTP ingest endpoint that trusted
// publishers push content to. Every request is authenticated with the
// shared-secret protocol in internal/auth before a single byte of the body
// is parsed.
//
// # Security Model
//
// - HMAC-SHA256 signature over timestamp+body, verified with constant-time
//   comparison before any body parsing
// - Symmetric timestamp freshness window (default 5 minutes)
// - Signature replay rejection inside the freshness window
// - Body size limits enforced to prevent DoS
// - Request logging excludes payloads and secret material
//
// # Request Flow
//
//  1. HTTP POST arrives at the configured ingest path
//  2. Body size checked (413 if too large)
//  3. x-api-key / x-timestamp / x-signature verified over the raw body
//     (401 with a structured reason on any failure)
//  4. Only then is the body decoded; malformed JSON is 400
//  5. Submission handed to the ContentSink, 202 Accepted with submission id
//
// # Error Responses
//
// Every authentication failure returns the same shape:
//
//	{"error": "Unauthorized", "details": "<reason>"}
//
// Malformed bodies are a separate concern and return 400 with
// {"error": "Bad Request", "details": "Invalid JSON payload"}.
package webhook
