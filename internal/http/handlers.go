package http

import (
	"fmt"
	"net/http"
	"time"

	"budgetvs/internal/core"
	"budgetvs/internal/log"
)

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Ready(r.Context()); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	tm := s.tracer.GetMetrics()
	rm := s.limiter.GetMetrics()
	dm := s.detector.GetMetrics()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	fmt.Fprintf(w, "budget_http_requests_total %d\n", tm.TotalRequests)
	fmt.Fprintf(w, "budget_http_server_errors_total %d\n", tm.ServerErrors)
	fmt.Fprintf(w, "budget_http_response_time_avg_microseconds %d\n", tm.AverageResponseTime)
	fmt.Fprintf(w, "budget_rate_limit_rejected_total %d\n", rm.Rejected)
	fmt.Fprintf(w, "budget_rate_limit_clients %d\n", rm.ClientCount)
	fmt.Fprintf(w, "budget_security_suspicious_total %d\n", dm.SuspiciousRequests)
	fmt.Fprintf(w, "budget_security_blocked_total %d\n", dm.BlockedRequests)
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).
		WarnContext(r.Context(), "Rate limit exceeded", log.FieldPath, r.URL.Path)
	writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded", Kind: "rate_limited"})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	id, err := s.svc.CreateSession(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"session_id": id})
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	sid := r.PathValue("id")
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	var budgeted *float64
	if req.Budgeted.Set {
		budgeted = &req.Budgeted.Value
	}
	if err := s.svc.AddCategory(r.Context(), sid, sanitizeInput(req.Name), budgeted); err != nil {
		writeError(w, r, err)
		return
	}
	s.writeCategories(w, r, sid, http.StatusCreated)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	s.writeCategories(w, r, r.PathValue("id"), http.StatusOK)
}

func (s *Server) writeCategories(w http.ResponseWriter, r *http.Request, sid string, status int) {
	names, err := s.svc.Categories(r.Context(), sid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, status, categoriesResponse{Categories: names})
}

func (s *Server) handleResetCategories(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.ResetCategories(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	sid, category := r.PathValue("id"), r.PathValue("category")
	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if !req.Amount.Set {
		writeError(w, r, fmt.Errorf("%w: amount is required", core.ErrInvalidInput))
		return
	}
	if err := s.svc.SetBudget(r.Context(), sid, category, req.Amount.Value); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"category": category,
		"amount":   req.Amount.Value,
	})
}

func (s *Server) handleLogExpense(w http.ResponseWriter, r *http.Request) {
	sid := r.PathValue("id")
	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	rec, err := req.record(time.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.LogExpense(r.Context(), sid, rec); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newExpenseResponse(rec))
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	recs, err := s.svc.Expenses(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]expenseResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, newExpenseResponse(rec))
	}
	writeJSON(w, http.StatusOK, map[string]any{"expenses": out})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	report, err := s.svc.Summary(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newSummaryResponse(report))
}

func (s *Server) handleSessionTrend(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	t, err := s.svc.Trend(r.Context(), r.PathValue("id"), category)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newTrendResponse(category, t))
}

func (s *Server) handleVariance(w http.ResponseWriter, r *http.Request) {
	var req entriesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	v, err := s.svc.Variance(req.Category, req.entries())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"category":         req.Category,
		"variance":         v,
		"variance_display": core.FormatAmount(v),
	})
}

func (s *Server) handlePercentage(w http.ResponseWriter, r *http.Request) {
	var req entriesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := s.svc.PercentageSpent(req.Category, req.entries())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"category":           req.Category,
		"percentage_spent":   p,
		"percentage_display": core.FormatPercent(p),
	})
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	var req trendRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	series, err := req.points()
	if err != nil {
		writeError(w, r, err)
		return
	}
	t, err := s.svc.BuildTrend(req.Category, series)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newTrendResponse(req.Category, t))
}

func (s *Server) handleSampleTrend(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	t, err := s.svc.SampleTrend(category)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newTrendResponse(category, t))
}
