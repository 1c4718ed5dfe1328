// Package server assembles the HTTP API: routing, CORS, rate limiting and
// request logging.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/cors"

	chathandler "github.com/smartspend/backend/internal/domain/chat/handler"
	expensehandler "github.com/smartspend/backend/internal/domain/expense/handler"
	"github.com/smartspend/backend/pkg/config"
)

// Server wraps the HTTP server with its middleware chain.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// New builds the server. The metrics handler may be nil when observability is
// disabled.
func New(
	cfg config.ServerConfig,
	chatHandler *chathandler.ChatHandler,
	expenseHandler *expensehandler.ExpenseHandler,
	metricsHandler http.Handler,
	logger *slog.Logger,
) *Server {
	mux := http.NewServeMux()
	chatHandler.RegisterRoutes(mux)
	expenseHandler.RegisterRoutes(mux)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})

	var handler http.Handler = mux
	handler = corsMiddleware.Handler(handler)
	handler = rateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst, handler)
	handler = requestLogging(logger, handler)

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Start serves until the server is shut down.
func (s *Server) Start() error {
	s.logger.Info("http server listening", slog.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
