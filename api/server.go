// Package api provides the HTTP REST API server for derivx.
//
// It exposes endpoints for option pricing, Greeks, strategy payoff curves,
// volatility estimates over OHLCV series, and a WebSocket event stream.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/seenimoa/derivx/internal/config"
	"github.com/seenimoa/derivx/internal/datasource"
	"github.com/seenimoa/derivx/internal/metrics"
)

// Version is reported by / and /api/health. Set by the CLI at startup.
var Version = "dev"

// Server is the HTTP API server.
type Server struct {
	router  chi.Router
	cfg     *config.Config
	store   *datasource.Store
	log     *zap.Logger
	metrics *metrics.Metrics
	wsHub   *WSHub
}

// NewServer creates a configured API server with all routes and middleware.
// log and m may be nil.
func NewServer(cfg *config.Config, store *datasource.Store, log *zap.Logger, m *metrics.Metrics) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if m == nil {
		m = metrics.New()
	}
	srv := &Server{
		cfg:     cfg,
		store:   store,
		log:     log,
		metrics: m,
		wsHub:   NewWSHub(m),
	}
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *WSHub {
	return s.wsHub
}

// ListenAndServe starts the HTTP server and blocks until SIGINT/SIGTERM or
// ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start WebSocket hub
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go s.wsHub.Run(hubCtx)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http listening", zap.String("addr", addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	timeout := time.Duration(s.cfg.API.RequestTimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/", s.handleIndex)
	r.Handle("/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		// WebSocket connections outlive the request timeout.
		r.Get("/ws", s.handleWebSocket)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(timeout))

			r.Get("/health", s.handleHealth)

			// Pricing
			r.Post("/calculate-option", s.handleCalculateOption)
			r.Post("/calculate-greeks", s.handleCalculateGreeks)
			r.Post("/calculate-strategy", s.handleCalculateStrategy)
			r.Post("/build-strategy", s.handleBuildStrategy)
			r.Post("/option-chain", s.handleOptionChain)

			// Market data
			r.Get("/volatility/{symbol}", s.handleVolatility)
			r.Get("/price/{symbol}", s.handlePrice)
			r.Get("/ohlcv/{symbol}", s.handleOHLCV)
			r.Get("/symbols", s.handleSymbols)

			// Configuration
			r.Get("/config", s.handleGetConfig)
			r.Get("/config/keys", s.handleGetConfigKeys)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return r
}

// ============================================================
// Response types
// ============================================================

// APIResponse is the error envelope. Successful responses are written as
// the bare payload.
type APIResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	// Suggestion hints at a fix, e.g. for a missing data file.
	Suggestion string `json:"suggestion,omitempty"`
}

// ============================================================
// Service handlers
// ============================================================

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "derivx",
		"version": Version,
		"endpoints": []string{
			"GET  /api/health",
			"POST /api/calculate-option",
			"POST /api/calculate-greeks",
			"POST /api/calculate-strategy",
			"POST /api/build-strategy",
			"POST /api/option-chain",
			"GET  /api/volatility/{symbol}",
			"GET  /api/price/{symbol}",
			"GET  /api/ohlcv/{symbol}",
			"GET  /api/symbols",
			"GET  /api/ws",
			"GET  /metrics",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"service":   "derivx",
		"version":   Version,
		"source":    s.store.Source().Name(),
		"wsClients": s.wsHub.ClientCount(),
	})
}

// ============================================================
// Helpers
// ============================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("failed to write JSON response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
