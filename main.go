package main

import (
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"clawban/internal/auth"
	"clawban/internal/board"
	"clawban/internal/config"
	"clawban/internal/middleware"
)

func main() {
	cfg := config.Load()
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger) // for third-party packages that use slog

	store, err := newStore(cfg)
	if err != nil {
		logger.Error("storage_init", slog.String("error", err.Error()))
		os.Exit(1)
	}
	svc := board.NewService(store)

	gate := auth.NewGate(cfg.EditPassword)
	if !gate.Enabled() {
		logger.Warn("edit_disabled", slog.String("reason", "CLAWBAN_EDIT_PASSWORD not set, board is view-only"))
	}

	r := newRouter(svc, gate, cfg, logger)

	logger.Info("server_listen",
		slog.String("addr", cfg.Addr),
		slog.String("storage", svc.StorageMode()),
	)
	if err := http.ListenAndServe(cfg.Addr, r); err != nil {
		logger.Error("server_error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// newStore is the backend selector: a relational connection string picks
// the SQL store, otherwise the local JSON document. Decided once per process.
func newStore(cfg config.Config) (board.Store, error) {
	if cfg.StorageMode() == "db" {
		return board.NewSQLStore(cfg.DatabaseURL)
	}
	return board.NewJSONStore(cfg.DataFile), nil
}

// newRouter wires the health endpoint, board routes, and middleware stack
func newRouter(svc *board.Service, gate *auth.Gate, cfg config.Config, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// RequestID first so downstream can include it (logger, traces)
	r.Use(chimw.RequestID)

	// Panic recovery: never crash the server; returns 500 on panics
	r.Use(chimw.Recoverer)

	// Timeouts: cancel handlers that exceed this duration
	r.Use(chimw.Timeout(15 * time.Second))

	// Credentials (the edit cookie) only work with explicit origins,
	// never with the wildcard.
	allowCreds := len(cfg.CORSOrigins) > 0 && cfg.CORSOrigins[0] != "*"
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID", "Trace-Id"},
		AllowCredentials: allowCreds,
		MaxAge:           300, // 5 minutes
	}))

	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.MetricsMiddleware)
	r.Use(middleware.TracingMiddleware)
	r.Use(middleware.RateLimitMiddleware(middleware.NewLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", middleware.MetricsHandler())

	board.RegisterRoutes(r, svc, gate)

	return r
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		l = slog.LevelDebug
	case "warn", "warning":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: l,
	})
	return slog.New(handler)
}
