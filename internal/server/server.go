// Package server exposes the conversion pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/seeqdb/seeq/internal/dbcontext"
	"github.com/seeqdb/seeq/internal/llm"
	"github.com/seeqdb/seeq/internal/model"
	"github.com/seeqdb/seeq/internal/server/middleware"
)

// Config holds the HTTP server configuration.
type Config struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	RateLimit       int // requests per minute per IP, 0 disables
}

// DefaultConfig returns a Config with sensible production defaults.
func DefaultConfig() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            8080,
		ShutdownTimeout: 30 * time.Second,
		CORSOrigins:     []string{"*"},
		RateLimit:       60,
	}
}

// ConversionService runs the conversion loop for one question.
type ConversionService interface {
	Convert(ctx context.Context, question string) (*model.ConversionSession, error)
}

// SuggestionService derives example questions from the schema context.
type SuggestionService interface {
	Suggestions(ctx context.Context, limit int) ([]string, error)
}

// SchemaService supplies the cached schema context and invalidates it on
// demand.
type SchemaService interface {
	Context(ctx context.Context) (*model.SchemaContext, error)
	Invalidate()
}

// Pinger reports reachability of a backing service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the top-level HTTP server. It owns the Chi router and wires
// the conversion pipeline behind the REST API.
type Server struct {
	cfg        Config
	router     chi.Router
	converter  ConversionService
	suggester  SuggestionService
	schema     SchemaService
	db         Pinger
	generation Pinger
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a Server with all routes and middleware wired. Call
// ListenAndServe to start accepting connections.
func New(cfg Config, converter ConversionService, suggester SuggestionService, schema SchemaService, db, generation Pinger, logger *slog.Logger) *Server {
	s := &Server{
		cfg:        cfg,
		converter:  converter,
		suggester:  suggester,
		schema:     schema,
		db:         db,
		generation: generation,
		logger:     logger,
	}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(chimw.Compress(5))

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if s.cfg.RateLimit > 0 {
			r.Use(middleware.RateLimit(s.cfg.RateLimit))
		}
		r.Post("/query", s.handleQuery)
		r.Get("/schema", s.handleSchema)
		r.Post("/schema/refresh", s.handleSchemaRefresh)
		r.Get("/suggestions", s.handleSuggestions)
	})

	s.router = r
}

// handleQuery converts a natural-language question into executed SQL and
// returns the rows along with the full attempt history.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req model.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "question is required", nil)
		return
	}

	start := time.Now()
	session, err := s.converter.Convert(r.Context(), req.Question)
	if err != nil {
		switch {
		case errors.Is(err, dbcontext.ErrContextUnavailable):
			writeError(w, http.StatusServiceUnavailable, "database unavailable", nil)
		case errors.Is(err, llm.ErrUnavailable):
			writeError(w, http.StatusBadGateway, "generation service unavailable", map[string]any{
				"session_id": sessionID(session),
			})
		default:
			s.logger.Error("conversion failed", "error", err)
			writeError(w, http.StatusInternalServerError, "conversion failed", nil)
		}
		return
	}

	resp := model.QueryResponse{
		SessionID: session.ID,
		Question:  session.Question,
		SQL:       session.FinalSQL,
		Status:    session.Status,
		Verified:  session.Status.Verified(),
		Attempts:  session.Attempts,
		Resource:  []map[string]any{},
		Meta: &model.ResponseMeta{
			Attempts: len(session.Attempts),
			TookMs:   float64(time.Since(start).Microseconds()) / 1000.0,
		},
	}
	if session.Result != nil {
		resp.Columns = session.Result.Columns
		resp.Resource = session.Result.RowMaps()
		resp.Meta.Count = session.Result.RowCount()
	}

	status := http.StatusOK
	if session.Status == model.StatusExecutionFailedAllAttempts {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, resp)
}

// handleSchema returns the current schema context, building it if needed.
func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	sc, err := s.schema.Context(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "schema context unavailable", map[string]any{
			"reason": err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"built_at": sc.BuiltAt,
		"tables":   sc.Tables,
		"text":     sc.Text,
	})
}

// handleSchemaRefresh invalidates the cached schema context. The next
// conversion rebuilds it from the live database.
func (s *Server) handleSchemaRefresh(w http.ResponseWriter, r *http.Request) {
	s.schema.Invalidate()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "refresh scheduled"})
}

// handleSuggestions returns example questions derived from the schema.
func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	suggestions, err := s.suggester.Suggestions(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "suggestions unavailable", nil)
		return
	}
	if suggestions == nil {
		suggestions = []string{}
	}
	writeJSON(w, http.StatusOK, model.SuggestionsResponse{Resource: suggestions})
}

// handleHealthz is a liveness probe.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReadyz reports readiness: both the target database and the
// generation service must be reachable.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"database": "ok", "llm": "ok"}
	status := http.StatusOK

	if err := s.db.Ping(r.Context()); err != nil {
		checks["database"] = "error: " + err.Error()
		status = http.StatusServiceUnavailable
	}
	if err := s.generation.Ping(r.Context()); err != nil {
		checks["llm"] = "error: " + err.Error()
		status = http.StatusServiceUnavailable
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	writeJSON(w, status, map[string]any{"status": state, "checks": checks})
}

// ListenAndServe starts the server and blocks until SIGINT or SIGTERM,
// then drains in-flight requests before returning.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // conversions can take several LLM round trips
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server listen: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutdown signal received, draining connections")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// Router returns the underlying Chi router, useful for testing.
func (s *Server) Router() chi.Router { return s.router }

// ServeHTTP implements http.Handler, delegating to the router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string, context map[string]any) {
	writeJSON(w, status, model.ErrorResponse{Error: model.ErrorDetail{
		Code:    status,
		Message: message,
		Context: context,
	}})
}

func sessionID(s *model.ConversionSession) string {
	if s == nil {
		return ""
	}
	return s.ID
}
