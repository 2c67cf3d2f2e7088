package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"budgetvs/internal/aggregate"
	"budgetvs/internal/backend"
	"budgetvs/internal/cache"
	"budgetvs/internal/core"
	"budgetvs/internal/ledger"
	"budgetvs/internal/log"
	"budgetvs/internal/trend"
)

// Publisher announces logged expenses to other processes.
type Publisher interface {
	PublishExpenseLogged(ctx context.Context, sessionID string, rec core.ExpenseRecord) error
}

// Report is the budget-vs-actual table of one session.
type Report struct {
	Rows    []core.CategorySummary
	Totals  core.Totals
	Version uint64
}

// BudgetService orchestrates workspace operations across the backend and AMQP.
type BudgetService struct {
	backend   backend.Backend
	publisher Publisher
	logger    *log.Logger
	sl        *log.StructuredLogger

	reports *cache.LRUCache[Report]
}

// NewBudgetService wires a backend and an optional publisher. A nil
// publisher disables event publishing.
func NewBudgetService(b backend.Backend, publisher Publisher, logger *log.Logger) *BudgetService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentBudget)
	return &BudgetService{
		backend:   b,
		publisher: publisher,
		logger:    logger,
		sl:        log.NewStructuredLogger(logger),
		reports:   cache.NewLRUCache[Report](500, 5*time.Minute),
	}
}

// Caches lists the caches owned by the service for periodic cleanup.
func (s *BudgetService) Caches() []cache.Cleaner {
	return []cache.Cleaner{s.reports}
}

func (s *BudgetService) CreateSession(ctx context.Context) (string, error) {
	id, err := s.backend.CreateSession(ctx)
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	s.logger.DebugContext(ctx, "Session created", log.FieldSessionID, id)
	return id, nil
}

// AddCategory registers a category and, when budgeted is given, plans its
// amount. The budget is validated before anything is written.
func (s *BudgetService) AddCategory(ctx context.Context, sessionID, name string, budgeted *float64) error {
	if budgeted != nil {
		if _, err := ledger.ValidateBudget(name, *budgeted); err != nil {
			return err
		}
	}
	if err := s.backend.AddCategory(ctx, sessionID, name); err != nil {
		return err
	}
	if budgeted != nil {
		return s.backend.SetBudget(ctx, sessionID, name, *budgeted)
	}
	return nil
}

func (s *BudgetService) ResetCategories(ctx context.Context, sessionID string) error {
	return s.backend.ResetCategories(ctx, sessionID)
}

func (s *BudgetService) Categories(ctx context.Context, sessionID string) ([]string, error) {
	return s.backend.Categories(ctx, sessionID)
}

func (s *BudgetService) SetBudget(ctx context.Context, sessionID, category string, amount float64) error {
	return s.backend.SetBudget(ctx, sessionID, category, amount)
}

// LogExpense appends to the session ledger, then publishes the event.
// Publishing failures are logged and never undo the append.
func (s *BudgetService) LogExpense(ctx context.Context, sessionID string, rec core.ExpenseRecord) error {
	if err := s.backend.LogExpense(ctx, sessionID, rec); err != nil {
		return err
	}
	s.sl.LogExpenseLogged(ctx, sessionID, rec.Category, rec.Amount, rec.Date.String())

	if s.publisher == nil {
		return nil
	}
	if err := s.publisher.PublishExpenseLogged(ctx, sessionID, rec); err != nil {
		s.sl.LogError(ctx, "Failed to publish expense logged message", err, log.ComponentAMQP, log.OpPublish,
			log.NewFields().WithSession(sessionID))
	}
	return nil
}

func (s *BudgetService) Expenses(ctx context.Context, sessionID string) ([]core.ExpenseRecord, error) {
	return s.backend.Expenses(ctx, sessionID)
}

// Summary returns the per-category table and its totals. Results are
// cached until the session changes.
func (s *BudgetService) Summary(ctx context.Context, sessionID string) (Report, error) {
	version, err := s.backend.Version(ctx, sessionID)
	if err != nil {
		return Report{}, err
	}
	key := sessionID + ":" + strconv.FormatUint(version, 10)
	if r, ok := s.reports.Get(key); ok {
		s.logger.DebugContext(ctx, "Summary cache hit", log.FieldSessionID, sessionID, "version", version)
		r.Rows = append([]core.CategorySummary(nil), r.Rows...)
		return r, nil
	}

	entries, err := s.backend.Entries(ctx, sessionID)
	if err != nil {
		return Report{}, err
	}
	rows, err := aggregate.Summarize(entries)
	if err != nil {
		return Report{}, fmt.Errorf("summarize session %s: %w", sessionID, err)
	}
	r := Report{Rows: rows, Totals: aggregate.Totals(rows), Version: version}
	s.reports.Set(key, r)
	return r, nil
}

// Trend smooths the logged series of one category. A blank category
// yields an empty trend.
func (s *BudgetService) Trend(ctx context.Context, sessionID, category string) (core.Trend, error) {
	if strings.TrimSpace(category) == "" {
		if _, err := s.backend.Version(ctx, sessionID); err != nil {
			return core.Trend{}, err
		}
		return core.Trend{}, nil
	}
	series, err := s.backend.Series(ctx, sessionID, category)
	if err != nil {
		return core.Trend{}, err
	}
	return trend.Build(category, series)
}

// Ready reports whether the backend can serve requests.
func (s *BudgetService) Ready(ctx context.Context) error {
	if p, ok := s.backend.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Variance, PercentageSpent and SampleTrend operate on caller-supplied data
// and touch no session.

func (s *BudgetService) Variance(category string, entries []aggregate.Entry) (float64, error) {
	return aggregate.Variance(category, entries)
}

func (s *BudgetService) PercentageSpent(category string, entries []aggregate.Entry) (float64, error) {
	return aggregate.PercentageSpent(category, entries)
}

func (s *BudgetService) BuildTrend(category string, series []core.Point) (core.Trend, error) {
	return trend.Build(category, series)
}

func (s *BudgetService) SampleTrend(category string) (core.Trend, error) {
	return trend.FromPool(category, trend.SampleData())
}
