package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/quillcms/hookauth/internal/auth"
)

// Server is the ingest HTTP server.
type Server struct {
	config Config
	authn  *auth.Authenticator
	sink   ContentSink
	logger *slog.Logger
	server *http.Server
}

// New creates a new ingest server instance.
func New(config Config, authn *auth.Authenticator, sink ContentSink, logger *slog.Logger) *Server {
	if config.Path == "" {
		config.Path = "/ingest"
	}
	if config.MaxBodySize == 0 {
		config.MaxBodySize = DefaultMaxBodySize
	}
	return &Server{
		config: config,
		authn:  authn,
		sink:   sink,
		logger: logger,
	}
}

// Start starts the ingest HTTP server and blocks until ctx is cancelled or
// the server fails.
func (s *Server) Start(ctx context.Context) error {
	router := s.setupRoutes()

	s.server = &http.Server{
		Addr:         s.config.Listen,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("ingest server starting", "listen", s.config.Listen, "path", s.config.Path)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("ingest server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("ingest server shutdown failed: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return fmt.Errorf("ingest server error: %w", err)
	}
}

// setupRoutes configures the HTTP router.
func (s *Server) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Post(s.config.Path, s.handleIngest)

	return r
}

// loggingMiddleware logs HTTP requests. Bodies and security headers are
// never logged.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Info("ingest request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
			"remote_addr", r.RemoteAddr,
		)
	})
}

// handleIngest handles incoming content submissions. The raw body is
// authenticated before anything parses it; a request that fails
// authentication never reaches the JSON decoder.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limitedReader := io.LimitReader(r.Body, s.config.MaxBodySize+1)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "Internal Server Error", "failed to read request body")
		return
	}
	if int64(len(body)) > s.config.MaxBodySize {
		s.respondError(w, http.StatusRequestEntityTooLarge, "Payload Too Large", "")
		return
	}

	outcome := s.authn.Authenticate(auth.Request{
		APIKey:    r.Header.Get(HeaderAPIKey),
		Timestamp: r.Header.Get(HeaderTimestamp),
		Signature: r.Header.Get(HeaderSignature),
		Body:      body,
	})
	if !outcome.OK {
		s.logger.Warn("submission rejected",
			"reason", outcome.Reason.String(),
			"request_id", middleware.GetReqID(ctx),
		)
		s.respondError(w, outcome.Reason.HTTPStatus(), "Unauthorized", outcome.Reason.Details())
		return
	}

	// Authenticated. Only now do we look inside the body.
	if !json.Valid(body) {
		s.respondError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON payload")
		return
	}

	sub := Submission{
		ID:         uuid.NewString(),
		ReceivedAt: time.Now().UTC(),
		Payload:    json.RawMessage(body),
	}
	if err := s.sink.Ingest(ctx, sub); err != nil {
		s.logger.Error("content sink failed",
			"submission_id", sub.ID,
			"error", err,
		)
		s.respondError(w, http.StatusInternalServerError, "Internal Server Error", "failed to store submission")
		return
	}

	s.logger.Info("submission accepted",
		"submission_id", sub.ID,
		"bytes", len(body),
		"request_id", middleware.GetReqID(ctx),
	)

	s.respondJSON(w, http.StatusAccepted, AcceptedResponse{ID: sub.ID})
}

// respondJSON sends a JSON response.
func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends a JSON error response.
func (s *Server) respondError(w http.ResponseWriter, status int, message, details string) {
	s.respondJSON(w, status, ErrorResponse{Error: message, Details: details})
}
