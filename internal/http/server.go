package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"budgetvs/internal/log"
	"budgetvs/internal/middleware/ratelimit"
	"budgetvs/internal/middleware/security"
	"budgetvs/internal/middleware/trace"
	"budgetvs/internal/services"
)

// Options tunes the server around the API handlers.
type Options struct {
	RateLimitPerMinute int
	Logger             *log.Logger
}

type Server struct {
	http.Server
	svc *services.BudgetService

	logger   *log.Logger
	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware
	detector *security.Detector

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, svc *services.BudgetService, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	s := &Server{
		svc:      svc,
		logger:   logger,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		tracer:   trace.NewMiddleware(),
		detector: security.NewDetector(),
	}

	mux := http.NewServeMux()
	s.routes(mux)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limited := s.limiter.Middleware(s.detector.ExtractClientIP, true, s.handleRateLimited)

	var h http.Handler = mux
	h = limited(h)
	h = log.Middleware(logger, trace.RequestID, s.detector.ExtractClientIP)(h)
	h = s.tracer.Middleware(h)
	h = headers.Middleware(h)
	h = s.detector.Middleware(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("POST /sessions", s.handleCreateSession)
	mux.HandleFunc("POST /sessions/{id}/categories", s.handleAddCategory)
	mux.HandleFunc("GET /sessions/{id}/categories", s.handleListCategories)
	mux.HandleFunc("DELETE /sessions/{id}/categories", s.handleResetCategories)
	mux.HandleFunc("PUT /sessions/{id}/budgets/{category}", s.handleSetBudget)
	mux.HandleFunc("POST /sessions/{id}/expenses", s.handleLogExpense)
	mux.HandleFunc("GET /sessions/{id}/expenses", s.handleListExpenses)
	mux.HandleFunc("GET /sessions/{id}/summary", s.handleSummary)
	mux.HandleFunc("GET /sessions/{id}/trend", s.handleSessionTrend)

	mux.HandleFunc("POST /calc/variance", s.handleVariance)
	mux.HandleFunc("POST /calc/percentage", s.handlePercentage)
	mux.HandleFunc("POST /calc/trend", s.handleTrend)
	mux.HandleFunc("GET /calc/trend/sample", s.handleSampleTrend)
}

// Shutdown stops background routines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
