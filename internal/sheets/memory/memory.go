// Package memory provides an in-process ExpenseMirror used by tests and
// by the worker when no spreadsheet is configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	"budgetvs/internal/core"
	"budgetvs/internal/sheets"
)

var _ sheets.ExpenseMirror = (*Store)(nil)

type Store struct {
	mu   sync.Mutex
	rows [][]string
}

func New() *Store {
	return &Store{}
}

// AppendExpense stores the rendered row and returns a synthetic row reference.
func (s *Store) AppendExpense(_ context.Context, sessionID string, rec core.ExpenseRecord) (string, error) {
	if err := rec.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, sheets.Row(sessionID, rec))
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (s *Store) Rows() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]string, len(s.rows))
	for i, r := range s.rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}
