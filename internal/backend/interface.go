package backend

import (
	"context"

	"budgetvs/internal/aggregate"
	"budgetvs/internal/core"
)

// Backend stores one workspace per session. Every operation addresses a
// session by ID and fails with core.ErrNotFound for unknown sessions.
type Backend interface {
	CreateSession(ctx context.Context) (string, error)

	AddCategory(ctx context.Context, sessionID, name string) error
	ResetCategories(ctx context.Context, sessionID string) error
	Categories(ctx context.Context, sessionID string) ([]string, error)

	SetBudget(ctx context.Context, sessionID, category string, amount float64) error

	LogExpense(ctx context.Context, sessionID string, rec core.ExpenseRecord) error
	Expenses(ctx context.Context, sessionID string) ([]core.ExpenseRecord, error)

	// Entries joins planned amounts and ledger sums into budget entries.
	Entries(ctx context.Context, sessionID string) ([]aggregate.Entry, error)
	// Series returns the logged (date, amount) points of one category.
	Series(ctx context.Context, sessionID, category string) ([]core.Point, error)
	// Version changes after every successful write to the session.
	Version(ctx context.Context, sessionID string) (uint64, error)

	// CleanExpired drops idle sessions and returns how many were removed.
	CleanExpired() int
	Close() error
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the backend instance and optional cleanup function
type BackendResult struct {
	Backend Backend
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	SQLiteBackend BackendType = "sqlite"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}
