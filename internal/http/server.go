// Package http exposes the expense tracker as a JSON API.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"aracgider/internal/cache"
	"aracgider/internal/core"
	applog "aracgider/internal/log"
	"aracgider/internal/middleware/ratelimit"
	"aracgider/internal/middleware/security"
	"aracgider/internal/middleware/trace"
	"aracgider/internal/store"
)

const (
	summaryCacheSize = 100
	summaryCacheTTL  = 5 * time.Minute
)

type Server struct {
	http.Server
	store store.Store

	summaryCache *cache.LRUCache[core.Summary]
	cacheManager *cache.Manager
	limiter      *ratelimit.Limiter
	clientIPs    *security.Resolver
	logger       *applog.Logger
	audit        *applog.StructuredLogger

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, st store.Store) *Server {
	mux := http.NewServeMux()

	logger := applog.New(applog.Config{
		Level:     slog.LevelInfo,
		Component: applog.ComponentHTTP,
		Handler:   slog.Default().Handler(),
	})

	s := &Server{
		store:        st,
		summaryCache: cache.NewLRUCache[core.Summary](summaryCacheSize, summaryCacheTTL),
		cacheManager: cache.NewManager(),
		limiter:      ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		clientIPs:    security.NewResolver(),
		logger:       logger,
		audit:        applog.NewStructuredLogger(logger),
	}

	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /vehicles", s.handleListVehicles)
	mux.HandleFunc("POST /vehicles", s.handleCreateVehicle)
	mux.HandleFunc("GET /vehicles/{id}", s.handleGetVehicle)
	mux.HandleFunc("DELETE /vehicles/{id}", s.handleDeleteVehicle)

	mux.HandleFunc("GET /expenses", s.handleListExpenses)
	mux.HandleFunc("POST /expenses", s.handleCreateExpense)
	mux.HandleFunc("GET /expenses/{id}", s.handleGetExpense)
	mux.HandleFunc("DELETE /expenses/{id}", s.handleDeleteExpense)
	mux.HandleFunc("GET /expenses/{id}/receipt", s.handleReceipt)

	mux.HandleFunc("GET /postings/preview", s.handlePostingPreview)
	mux.HandleFunc("GET /summary", s.handleSummary)
	mux.HandleFunc("GET /export/csv", s.handleExportCSV)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(s.clientIPs.ExtractClientIP)

	// Request logger rides inside the tracer so request IDs are in scope.
	requestLogger := applog.Middleware(s.logger)
	withRequestID := applog.RequestIDMiddleware(func(r *http.Request) string {
		return trace.GetRequestID(r.Context())
	})

	handler := headers.Middleware(
		tracer.Middleware(
			requestLogger(
				withRequestID(
					s.withWriteRateLimit(mux)))))

	s.Server = http.Server{
		Addr:    addr,
		Handler: handler,
	}

	return s
}

// withWriteRateLimit applies the per-client limiter to mutating requests only
func (s *Server) withWriteRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodDelete {
			clientIP := s.clientIPs.ExtractClientIP(r)
			if !s.limiter.Allow(clientIP) {
				s.logger.WarnContext(r.Context(), "Rate limit exceeded",
					applog.FieldClientIP, clientIP,
					applog.FieldMethod, r.Method,
					applog.FieldPath, r.URL.Path)
				w.Header().Set("Retry-After", "60")
				writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// invalidateSummaries drops cached summaries after any write
func (s *Server) invalidateSummaries() {
	s.summaryCache.Flush()
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
