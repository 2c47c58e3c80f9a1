// apps/go-server/internal/httpserver/server.go
//
// HTTP server wiring for the puzzle content pipeline.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, access log).
//   - Public endpoints: "/", "/health", GET /runs/{id}, GET /daily.
//   - Operator endpoints (require auth): POST /runs, GET /runs, POST /daily/generate.
//   - Operator login/logout with a bcrypt-checked password and a JWT cookie.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Pipeline runs can take several collaborator round trips, so the handler
//     timeout is configurable rather than the usual few seconds.

package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/puzzlenet/apps/go-server/internal/daily"
	"github.com/robalobadob/puzzlenet/apps/go-server/internal/pipeline"
	"github.com/robalobadob/puzzlenet/apps/go-server/internal/store"
)

// Runner executes one pipeline request. *pipeline.Orchestrator satisfies it.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (pipeline.Outcome, error)
}

// Config holds the HTTP-facing settings.
type Config struct {
	ClientOrigin      string
	JWTSecret         string
	JWTExpires        time.Duration
	AdminPasswordHash string
	CookieName        string
	SecureCookies     bool

	// RequestTimeout bounds ordinary handlers.
	RequestTimeout time.Duration
	// RunTimeout bounds the handlers that execute pipeline runs. It must
	// exceed a run's own worst case so the run reports its failure first.
	RunTimeout     time.Duration
}

// runSlack is added to the default RunTimeout on top of the stage call budget.
const runSlack = 30 * time.Second

// Deps are the services the handlers call into.
type Deps struct {
	Runner  Runner
	Runs    store.Store
	Daily   *daily.Generator
	Archive daily.Archive
}

// Server bundles the router and its dependencies.
type Server struct {
	r    *chi.Mux
	cfg  Config
	deps Deps
	now  func() time.Time
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg Config, deps Deps) *Server {
	if cfg.CookieName == "" {
		cfg.CookieName = "puzzlenet_token"
	}
	if cfg.JWTExpires <= 0 {
		cfg.JWTExpires = 14 * 24 * time.Hour
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = time.Duration(len(pipeline.Stages))*pipeline.DefaultCallTimeout + runSlack
	}
	s := &Server{r: chi.NewRouter(), cfg: cfg, deps: deps, now: time.Now}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(accessLog)       // zerolog line per request
	s.r.Use(chimw.Recoverer) // recover from panics
	s.r.Use(jsonContentType) // default JSON responses
	s.r.Use(s.cors)          // credentials-friendly CORS
	// Handler time limits are per route: see boundRequest and boundRun.

	// --- diagnostics ---
	s.r.With(s.boundRequest).Get("/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"service":   "puzzlenet-go",
			"endpoints": []string{"/health", "POST /runs", "GET /runs/{id}", "POST /daily/generate", "GET /daily", "/auth/*"},
		})
	})
	s.r.With(s.boundRequest).Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	s.mountAuth()
	s.mountRuns()
	s.mountDaily()

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// boundRequest limits ordinary handlers to cfg.RequestTimeout.
func (s *Server) boundRequest(next http.Handler) http.Handler {
	return chimw.Timeout(s.cfg.RequestTimeout)(next)
}

// boundRun limits pipeline handlers to cfg.RunTimeout.
func (s *Server) boundRun(next http.Handler) http.Handler {
	return chimw.Timeout(s.cfg.RunTimeout)(next)
}

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// accessLog writes one structured line per request.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Info().
			Str("req", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("elapsed", time.Since(start)).
			Msg("http")
	})
}

// ------------------------------- helpers -----------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
