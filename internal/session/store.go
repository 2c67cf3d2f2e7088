// Package session keeps one ledger.Workspace per session ID in memory.
// Idle sessions expire; nothing is kept across restarts.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"budgetvs/internal/aggregate"
	"budgetvs/internal/cache"
	"budgetvs/internal/core"
	"budgetvs/internal/ledger"
)

// Store maps session IDs to workspaces.
type Store struct {
	workspaces *cache.LRUCache[*ledger.Workspace]
	logger     *slog.Logger
}

// NewStore keeps at most maxSessions workspaces, each for ttl after its
// last use. When a new session would exceed maxSessions, the least
// recently used one is dropped together with its ledger.
func NewStore(maxSessions int, ttl time.Duration) *Store {
	s := &Store{
		workspaces: cache.NewLRUCache[*ledger.Workspace](maxSessions, ttl),
		logger:     slog.Default(),
	}
	s.workspaces.OnEvict(s.logEviction)
	return s
}

func (s *Store) logEviction(id string, _ *ledger.Workspace, reason cache.EvictReason) {
	if reason == cache.EvictCapacity {
		s.logger.Warn("Session evicted to stay within SESSION_MAX", "session_id", id, "reason", reason.String())
		return
	}
	s.logger.Info("Session expired", "session_id", id, "reason", reason.String())
}

// CleanExpired implements cache.Cleaner.
func (s *Store) CleanExpired() int {
	return s.workspaces.CleanExpired()
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	return s.workspaces.Size()
}

// CreateSession starts an empty workspace and returns its ID.
func (s *Store) CreateSession(_ context.Context) (string, error) {
	id := uuid.NewString()
	s.workspaces.Set(id, ledger.NewWorkspace())
	return id, nil
}

// Workspace returns the session's workspace and refreshes its expiry.
func (s *Store) Workspace(id string) (*ledger.Workspace, error) {
	w, ok := s.workspaces.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: session %q", core.ErrNotFound, id)
	}
	s.workspaces.Set(id, w)
	return w, nil
}

func (s *Store) AddCategory(_ context.Context, id, name string) error {
	w, err := s.Workspace(id)
	if err != nil {
		return err
	}
	return w.AddCategory(name)
}

func (s *Store) ResetCategories(_ context.Context, id string) error {
	w, err := s.Workspace(id)
	if err != nil {
		return err
	}
	w.ResetCategories()
	return nil
}

func (s *Store) Categories(_ context.Context, id string) ([]string, error) {
	w, err := s.Workspace(id)
	if err != nil {
		return nil, err
	}
	return w.Categories(), nil
}

func (s *Store) SetBudget(_ context.Context, id, category string, amount float64) error {
	w, err := s.Workspace(id)
	if err != nil {
		return err
	}
	return w.SetBudget(category, amount)
}

func (s *Store) LogExpense(_ context.Context, id string, rec core.ExpenseRecord) error {
	w, err := s.Workspace(id)
	if err != nil {
		return err
	}
	return w.LogExpense(rec.Category, rec.Amount, rec.Date)
}

func (s *Store) Expenses(_ context.Context, id string) ([]core.ExpenseRecord, error) {
	w, err := s.Workspace(id)
	if err != nil {
		return nil, err
	}
	return w.Expenses(), nil
}

func (s *Store) Entries(_ context.Context, id string) ([]aggregate.Entry, error) {
	w, err := s.Workspace(id)
	if err != nil {
		return nil, err
	}
	return w.Entries(), nil
}

func (s *Store) Series(_ context.Context, id, category string) ([]core.Point, error) {
	w, err := s.Workspace(id)
	if err != nil {
		return nil, err
	}
	return w.Series(category), nil
}

func (s *Store) Version(_ context.Context, id string) (uint64, error) {
	w, err := s.Workspace(id)
	if err != nil {
		return 0, err
	}
	return w.Version(), nil
}

// Close is a no-op; the store owns no external resources.
func (s *Store) Close() error { return nil }
