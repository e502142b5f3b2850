package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/quillcms/hookauth/internal/auth"
	"github.com/quillcms/hookauth/internal/hmacsig"
)

const (
	testAPIKey = "k1"
	testSecret = "s1"
)

type captureSink struct {
	subs []Submission
	err  error
}

func (c *captureSink) Ingest(_ context.Context, sub Submission) error {
	if c.err != nil {
		return c.err
	}
	c.subs = append(c.subs, sub)
	return nil
}

type testEnv struct {
	clock  *clockwork.FakeClock
	router http.Handler
	sink   *captureSink
}

func newTestEnv(t *testing.T, cfg Config) *testEnv {
	t.Helper()

	clock := clockwork.NewFakeClockAt(time.UnixMilli(1700000000000))
	guard := auth.NewReplayGuard(5 * time.Minute)
	t.Cleanup(guard.Stop)

	authn, err := auth.New(auth.Config{
		Credentials: auth.Credentials{APIKey: testAPIKey, SharedSecret: []byte(testSecret)},
		Clock:       clock,
		Replays:     guard,
	})
	require.NoError(t, err)

	sink := &captureSink{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := New(cfg, authn, sink, logger)

	return &testEnv{
		clock:  clock,
		router: server.setupRoutes(),
		sink:   sink,
	}
}

// signedIngest builds a fully signed POST to the ingest path.
func (e *testEnv) signedIngest(path string, body []byte) *http.Request {
	timestamp := strconv.FormatInt(e.clock.Now().UnixMilli(), 10)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set(HeaderAPIKey, testAPIKey)
	req.Header.Set(HeaderTimestamp, timestamp)
	req.Header.Set(HeaderSignature, hmacsig.Sign([]byte(testSecret), timestamp, body))
	return req
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestHandleIngestValidSubmission(t *testing.T) {
	env := newTestEnv(t, Config{Listen: "127.0.0.1:0"})
	body := []byte(`{"event":"publish","page":"home"}`)

	rec := env.do(env.signedIngest("/ingest", body))

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp AcceptedResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotEmpty(t, resp.ID)

	require.Len(t, env.sink.subs, 1)
	require.Equal(t, resp.ID, env.sink.subs[0].ID)
	require.JSONEq(t, string(body), string(env.sink.subs[0].Payload))
}

func TestHandleIngestMissingHeaders(t *testing.T) {
	env := newTestEnv(t, Config{Listen: "127.0.0.1:0"})
	body := []byte(`{"x":1}`)

	req := env.signedIngest("/ingest", body)
	req.Header.Del(HeaderTimestamp)

	rec := env.do(req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	resp := decodeError(t, rec)
	require.Equal(t, "Unauthorized", resp.Error)
	require.Equal(t, "Missing required security headers (x-api-key, x-timestamp, x-signature)", resp.Details)
	require.Empty(t, env.sink.subs)
}

func TestHandleIngestInvalidAPIKey(t *testing.T) {
	env := newTestEnv(t, Config{Listen: "127.0.0.1:0"})

	req := env.signedIngest("/ingest", []byte(`{"x":1}`))
	req.Header.Set(HeaderAPIKey, "wrong")

	rec := env.do(req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Invalid API key", decodeError(t, rec).Details)
}

func TestHandleIngestExpiredTimestamp(t *testing.T) {
	env := newTestEnv(t, Config{Listen: "127.0.0.1:0"})
	body := []byte(`{"x":1}`)

	// Stamped ten minutes in the past, signed correctly for that stamp.
	stale := strconv.FormatInt(env.clock.Now().UnixMilli()-600000, 10)
	req := httptest.NewRequest(http.MethodPost, "/ingest", bytes.NewReader(body))
	req.Header.Set(HeaderAPIKey, testAPIKey)
	req.Header.Set(HeaderTimestamp, stale)
	req.Header.Set(HeaderSignature, hmacsig.Sign([]byte(testSecret), stale, body))

	rec := env.do(req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Request expired", decodeError(t, rec).Details)
}

func TestHandleIngestInvalidSignature(t *testing.T) {
	env := newTestEnv(t, Config{Listen: "127.0.0.1:0"})

	// Signature computed over different bytes than those sent.
	req := env.signedIngest("/ingest", []byte(`{"x":1}`))
	req.Body = io.NopCloser(bytes.NewReader([]byte(`{"x":2}`)))
	req.ContentLength = int64(len(`{"x":2}`))

	rec := env.do(req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Invalid signature", decodeError(t, rec).Details)
}

func TestHandleIngestReplay(t *testing.T) {
	env := newTestEnv(t, Config{Listen: "127.0.0.1:0"})
	body := []byte(`{"x":1}`)

	first := env.do(env.signedIngest("/ingest", body))
	require.Equal(t, http.StatusAccepted, first.Code)

	second := env.do(env.signedIngest("/ingest", body))
	require.Equal(t, http.StatusUnauthorized, second.Code)
	require.Equal(t, "Signature already used", decodeError(t, second).Details)
	require.Len(t, env.sink.subs, 1)
}

func TestHandleIngestAuthPrecedesBodyParsing(t *testing.T) {
	env := newTestEnv(t, Config{Listen: "127.0.0.1:0"})
	malformed := []byte(`{"x":`)

	// Unsigned garbage never reaches the JSON decoder: the verdict is
	// unauthorized, not bad request.
	unsigned := httptest.NewRequest(http.MethodPost, "/ingest", bytes.NewReader(malformed))
	unsigned.Header.Set(HeaderAPIKey, testAPIKey)
	unsigned.Header.Set(HeaderTimestamp, strconv.FormatInt(env.clock.Now().UnixMilli(), 10))
	unsigned.Header.Set(HeaderSignature, "deadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef")

	rec := env.do(unsigned)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Invalid signature", decodeError(t, rec).Details)

	// Correctly signed malformed JSON authenticates, then fails parsing.
	rec = env.do(env.signedIngest("/ingest", malformed))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Invalid JSON payload", decodeError(t, rec).Details)
	require.Empty(t, env.sink.subs)
}

func TestHandleIngestBodyTooLarge(t *testing.T) {
	env := newTestEnv(t, Config{Listen: "127.0.0.1:0", MaxBodySize: 64})

	big := bytes.Repeat([]byte("a"), 65)
	rec := env.do(env.signedIngest("/ingest", big))

	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestHandleIngestSinkFailure(t *testing.T) {
	env := newTestEnv(t, Config{Listen: "127.0.0.1:0"})
	env.sink.err = errors.New("downstream unavailable")

	rec := env.do(env.signedIngest("/ingest", []byte(`{"x":1}`)))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleIngestCustomPath(t *testing.T) {
	env := newTestEnv(t, Config{Listen: "127.0.0.1:0", Path: "/api/v1/content"})

	rec := env.do(env.signedIngest("/api/v1/content", []byte(`{"x":1}`)))
	require.Equal(t, http.StatusAccepted, rec.Code)

	rec = env.do(env.signedIngest("/ingest", []byte(`{"x":2}`)))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHeaderNamesAreCaseInsensitive(t *testing.T) {
	env := newTestEnv(t, Config{Listen: "127.0.0.1:0"})
	body := []byte(`{"x":1}`)
	timestamp := strconv.FormatInt(env.clock.Now().UnixMilli(), 10)

	req := httptest.NewRequest(http.MethodPost, "/ingest", bytes.NewReader(body))
	req.Header.Set("X-Api-Key", testAPIKey)
	req.Header.Set("X-TIMESTAMP", timestamp)
	req.Header.Set("X-Signature", hmacsig.Sign([]byte(testSecret), timestamp, body))

	rec := env.do(req)
	require.Equal(t, http.StatusAccepted, rec.Code)
}
