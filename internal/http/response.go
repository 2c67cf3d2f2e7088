package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"budgetvs/internal/core"
	"budgetvs/internal/log"
	"budgetvs/internal/services"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

type categoriesResponse struct {
	Categories []string `json:"categories"`
}

type expenseResponse struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Display  string  `json:"amount_display"`
	Date     string  `json:"date"`
}

type summaryRow struct {
	Category          string  `json:"category"`
	Budgeted          float64 `json:"budgeted"`
	Actual            float64 `json:"actual"`
	Variance          float64 `json:"variance"`
	PercentageSpent   float64 `json:"percentage_spent"`
	Overspent         bool    `json:"overspent"`
	Note              string  `json:"note,omitempty"`
	VarianceDisplay   string  `json:"variance_display"`
	PercentageDisplay string  `json:"percentage_display"`
}

type summaryTotals struct {
	Budgeted        float64 `json:"budgeted"`
	Actual          float64 `json:"actual"`
	Variance        float64 `json:"variance"`
	PercentageSpent float64 `json:"percentage_spent"`
}

type summaryResponse struct {
	Version uint64        `json:"version"`
	Rows    []summaryRow  `json:"rows"`
	Totals  summaryTotals `json:"totals"`
}

type trendPoint struct {
	Date     string  `json:"date"`
	Actual   float64 `json:"actual"`
	Smoothed float64 `json:"smoothed"`
}

type trendResponse struct {
	Category string       `json:"category"`
	Empty    bool         `json:"empty"`
	Points   []trendPoint `json:"points"`
}

func newExpenseResponse(rec core.ExpenseRecord) expenseResponse {
	return expenseResponse{
		Category: rec.Category,
		Amount:   rec.Amount,
		Display:  core.FormatAmount(rec.Amount),
		Date:     rec.Date.String(),
	}
}

func newSummaryResponse(r services.Report) summaryResponse {
	out := summaryResponse{
		Version: r.Version,
		Rows:    make([]summaryRow, 0, len(r.Rows)),
		Totals: summaryTotals{
			Budgeted:        r.Totals.Budgeted,
			Actual:          r.Totals.Actual,
			Variance:        r.Totals.Variance,
			PercentageSpent: r.Totals.PercentageSpent,
		},
	}
	for _, row := range r.Rows {
		out.Rows = append(out.Rows, summaryRow{
			Category:          row.Category,
			Budgeted:          row.Budgeted,
			Actual:            row.Actual,
			Variance:          row.Variance,
			PercentageSpent:   row.PercentageSpent,
			Overspent:         row.Overspent,
			Note:              row.Note,
			VarianceDisplay:   core.FormatAmount(row.Variance),
			PercentageDisplay: core.FormatPercent(row.PercentageSpent),
		})
	}
	return out
}

func newTrendResponse(category string, t core.Trend) trendResponse {
	out := trendResponse{Category: category, Empty: t.Empty(), Points: make([]trendPoint, 0, len(t.Points))}
	for _, p := range t.Points {
		out.Points = append(out.Points, trendPoint{Date: p.Date.String(), Actual: p.Actual, Smoothed: p.Smoothed})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, core.ErrMalformedEntry):
		return http.StatusUnprocessableEntity, "malformed_entry"
	case errors.Is(err, core.ErrInvalidAmount):
		return http.StatusUnprocessableEntity, "invalid_amount"
	case errors.Is(err, core.ErrInvalidInput):
		return http.StatusUnprocessableEntity, "invalid_input"
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, "not_found"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// writeError renders err as JSON. Internal errors are logged and their
// message is not leaked to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			log.FieldError, err, log.FieldPath, r.URL.Path)
		msg = "internal server error"
	}
	writeJSON(w, status, errorResponse{Error: msg, Kind: kind})
}
