// Package server exposes the conversation engine over HTTP.
//
// POST /api/image is the stateless round trip: the caller sends the prompt,
// any images and the history it holds. The /api/session endpoints drive a
// single server-held Conversation instead.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mhpenta/imageedit"
)

// ModelLister reports the models a server can route to.
type ModelLister interface {
	ListModelsInfo() []imageedit.ModelInfo
}

// Server serves the image API.
type Server struct {
	generator imageedit.Generator
	models    ModelLister
	config    *imageedit.GenerateConfig
	storage   imageedit.Storage
	logger    *slog.Logger

	// convMu serializes access to conv; a submit in flight holds it.
	convMu sync.Mutex
	conv   *imageedit.Conversation

	srv *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithModels sets the source for GET /api/models.
func WithModels(models ModelLister) Option {
	return func(s *Server) {
		s.models = models
	}
}

// WithGenerateConfig sets the config sent with every turn.
func WithGenerateConfig(config *imageedit.GenerateConfig) Option {
	return func(s *Server) {
		s.config = config
	}
}

// WithStorage keeps every generated image in storage.
func WithStorage(storage imageedit.Storage) Option {
	return func(s *Server) {
		s.storage = storage
	}
}

// New creates a Server dispatching through gen.
func New(gen imageedit.Generator, opts ...Option) *Server {
	s := &Server{
		generator: gen,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.conv = imageedit.NewConversation(gen,
		imageedit.WithConversationConfig(s.config),
		imageedit.WithConversationLogger(s.logger),
	)
	return s
}

// Handler returns the routed API with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Stateless round trip
	mux.HandleFunc("POST /api/image", s.handleImage)

	// Server-held conversation
	mux.HandleFunc("GET /api/session", s.handleGetSession)
	mux.HandleFunc("POST /api/session/images", s.handleStageImages)
	mux.HandleFunc("POST /api/session/submit", s.handleSubmit)
	mux.HandleFunc("POST /api/session/reset", s.handleReset)

	// Models
	mux.HandleFunc("GET /api/models", s.handleListModels)

	return s.corsMiddleware(s.logMiddleware(mux))
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("Starting web server", "addr", addr)
	err := s.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops the server, waiting for in-flight requests until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type requestIDKey struct{}

// statusRecorder captures the status code for the access log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))

		s.logger.Info("request",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encoding response", "error", err)
	}
}

// errorBody is the failure shape of every endpoint.
type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

func (s *Server) errorResponse(w http.ResponseWriter, r *http.Request, status int, summary string, err error) {
	s.logger.Error("API Error",
		"request_id", requestID(r.Context()),
		"status", status,
		"error", err,
	)
	s.jsonResponse(w, status, errorBody{Error: summary, Details: err.Error()})
}

// decodeBody reads a JSON request body. Malformed JSON is a validation failure.
func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if imageedit.IsValidationError(err) {
			return err
		}
		return &imageedit.ValidationError{Field: "body", Err: err}
	}
	return nil
}
