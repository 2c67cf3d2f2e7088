package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"budgetvs/internal/core"
)

// ExpenseLoggedMessage announces one row appended to a session ledger.
// It carries the whole row, so consumers never read back from the API.
type ExpenseLoggedMessage struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Category  string    `json:"category"`
	Amount    float64   `json:"amount"`
	Date      string    `json:"date"`
	Timestamp time.Time `json:"timestamp"`
}

// NewExpenseLoggedMessage creates a message with a fresh ID.
func NewExpenseLoggedMessage(sessionID string, rec core.ExpenseRecord) *ExpenseLoggedMessage {
	return &ExpenseLoggedMessage{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Category:  rec.Category,
		Amount:    rec.Amount,
		Date:      rec.Date.String(),
		Timestamp: time.Now().UTC(),
	}
}

// Record converts the message back into a ledger row.
func (m *ExpenseLoggedMessage) Record() (core.ExpenseRecord, error) {
	d, err := core.ParseDate(m.Date)
	if err != nil {
		return core.ExpenseRecord{}, err
	}
	rec := core.ExpenseRecord{Category: m.Category, Amount: m.Amount, Date: d}
	if err := rec.Validate(); err != nil {
		return core.ExpenseRecord{}, err
	}
	return rec, nil
}

// ToJSON converts the message to JSON bytes
func (m *ExpenseLoggedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseLoggedMessageFromJSON decodes a message and checks its envelope.
func ExpenseLoggedMessageFromJSON(data []byte) (*ExpenseLoggedMessage, error) {
	var msg ExpenseLoggedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == "" || msg.SessionID == "" {
		return nil, fmt.Errorf("%w: message without id or session", core.ErrMalformedEntry)
	}
	return &msg, nil
}
