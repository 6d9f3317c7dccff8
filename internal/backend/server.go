// ABOUTME: HTTP surface of the development backend: GET /posts/, GET /post/{key}, POST /posts.
// ABOUTME: Serves the posts stored in DB, optional x-api-key auth, and Prometheus metrics.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/2389-research/postadmin/internal/models"
)

// Server serves posts from a DB.
type Server struct {
	db       *DB
	apiKey   string
	logger   zerolog.Logger
	registry *prometheus.Registry
	requests *prometheus.CounterVec
}

// ServerOption configures optional Server settings.
type ServerOption func(*Server)

// WithAPIKey requires the x-api-key header on post routes.
func WithAPIKey(key string) ServerOption {
	return func(s *Server) {
		s.apiKey = key
	}
}

// WithLogger sets the request logger.
func WithLogger(logger zerolog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a backend server over db.
func NewServer(db *DB, opts ...ServerOption) *Server {
	s := &Server{
		db:       db,
		logger:   zerolog.Nop(),
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "postadmin",
			Subsystem: "backend",
			Name:      "requests_total",
			Help:      "Requests served by route and status code.",
		}, []string{"route", "code"}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registry.MustRegister(s.requests)
	return s
}

// Handler returns the HTTP handler with every route mounted.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /posts/", s.route("list", s.handleList))
	mux.Handle("GET /posts", s.route("list", s.handleList))
	mux.Handle("GET /post/{key}", s.route("get", s.handleGet))
	mux.Handle("POST /posts", s.route("create", s.handleCreate))
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return mux
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("backend listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) route(name string, h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		start := time.Now()

		if s.apiKey != "" && r.Header.Get("x-api-key") != s.apiKey {
			writeError(rec, http.StatusUnauthorized, "invalid api key")
		} else {
			h(rec, r)
		}

		s.requests.WithLabelValues(name, strconv.Itoa(rec.code)).Inc()
		s.logger.Debug().
			Str("route", name).
			Str("path", r.URL.Path).
			Str("request_id", r.Header.Get("X-Request-ID")).
			Int("status", rec.code).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	posts, err := s.db.List()
	if err != nil {
		s.logger.Error().Err(err).Msg("list failed")
		writeError(w, http.StatusInternalServerError, "failed to list posts")
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	post, err := s.db.Get(r.PathValue("key"))
	if errors.Is(err, ErrPostNotFound) {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("get failed")
		writeError(w, http.StatusInternalServerError, "failed to get post")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var draft models.Post
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := models.ValidateDraft(draft); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	post, err := s.db.Insert(draft)
	if err != nil {
		s.logger.Error().Err(err).Msg("create failed")
		writeError(w, http.StatusInternalServerError, "failed to create post")
		return
	}
	s.logger.Info().Int("id", post.ID).Str("title", post.Title).Msg("post created")
	writeJSON(w, http.StatusCreated, post)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
