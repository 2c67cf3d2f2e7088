package amqp

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"budgetvs/internal/core"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},
		{10, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			result := exponentialBackoff(tt.attempt)
			if result != tt.expected {
				t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, result, tt.expected)
			}
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection refused", errors.New("connection refused"), true},
		{"EOF", errors.New("unexpected EOF"), true},
		{"broken pipe", errors.New("broken pipe"), true},
		{"closed channel", fmt.Errorf("publish: %w", amqp091.ErrClosed), true},
		{"other error", errors.New("some other error"), false},
		{"validation error", errors.New("invalid input"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.expected {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestClient_CircuitBreaker(t *testing.T) {
	client := &Client{exchangeName: "budget", queueName: "expense_logged"}

	t.Run("initial state is closed", func(t *testing.T) {
		if client.isCircuitOpen() {
			t.Error("Circuit breaker should be closed initially")
		}
	})

	t.Run("multiple failures open circuit", func(t *testing.T) {
		for i := 0; i < maxFailures; i++ {
			client.recordFailure()
		}
		if !client.isCircuitOpen() {
			t.Error("Circuit breaker should be open after max failures")
		}
	})

	t.Run("record success resets state", func(t *testing.T) {
		client.recordSuccess()
		if client.isCircuitOpen() {
			t.Error("Circuit breaker should be closed after success")
		}
		if atomic.LoadInt64(&client.failureCount) != 0 {
			t.Error("Failure count should be reset to 0 after success")
		}
	})

	t.Run("circuit transitions to half-open after timeout", func(t *testing.T) {
		atomic.StoreInt32(&client.state, StateOpen)
		client.lastFailure = time.Now().Add(-openTimeout - time.Second)

		if client.isCircuitOpen() {
			t.Error("Circuit should transition to half-open after timeout")
		}
		if atomic.LoadInt32(&client.state) != StateHalfOpen {
			t.Error("State should be StateHalfOpen after timeout")
		}
	})

	t.Run("failure while half-open reopens", func(t *testing.T) {
		atomic.StoreInt64(&client.failureCount, 0)
		client.recordFailure()
		if atomic.LoadInt32(&client.state) != StateOpen {
			t.Error("A half-open failure should reopen the circuit")
		}
	})
}

func TestClient_PublishExpenseLogged_Guards(t *testing.T) {
	rec := core.ExpenseRecord{Category: "Food", Amount: 10, Date: core.NewDate(2024, 1, 1)}

	t.Run("publish fails when circuit is open", func(t *testing.T) {
		client := &Client{}
		atomic.StoreInt32(&client.state, StateOpen)
		client.lastFailure = time.Now()

		err := client.PublishExpenseLogged(context.Background(), "s1", rec)
		if !errors.Is(err, ErrCircuitOpen) {
			t.Errorf("expected circuit breaker error, got: %v", err)
		}
	})

	t.Run("publish respects context cancellation", func(t *testing.T) {
		client := &Client{}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if err := client.PublishExpenseLogged(ctx, "s1", rec); err != context.Canceled {
			t.Errorf("expected context.Canceled, got: %v", err)
		}
	})
}

func TestExpenseLoggedMessage(t *testing.T) {
	rec := core.ExpenseRecord{Category: "Groceries", Amount: 42.5, Date: core.NewDate(2024, 2, 29)}
	msg := NewExpenseLoggedMessage("s1", rec)

	if msg.ID == "" || msg.Timestamp.IsZero() {
		t.Fatalf("message should carry id and timestamp: %+v", msg)
	}
	if msg.Date != "2024-02-29" {
		t.Errorf("Date = %q, want 2024-02-29", msg.Date)
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatal(err)
	}
	parsed, err := ExpenseLoggedMessageFromJSON(body)
	if err != nil {
		t.Fatal(err)
	}
	back, err := parsed.Record()
	if err != nil {
		t.Fatal(err)
	}
	if back != rec {
		t.Errorf("Record() = %+v, want %+v", back, rec)
	}
}

func TestExpenseLoggedMessageKeepsSubSecondDate(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 30, 15, 250_000_000, time.UTC)
	rec := core.ExpenseRecord{Category: "Fuel", Amount: 30, Date: core.Date{Time: at}}
	msg := NewExpenseLoggedMessage("s1", rec)

	if msg.Date != "2024-03-01T09:30:15.25Z" {
		t.Errorf("Date = %q", msg.Date)
	}
	back, err := msg.Record()
	if err != nil {
		t.Fatal(err)
	}
	if !back.Date.Equal(at) {
		t.Errorf("Record().Date = %v, want %v", back.Date, at)
	}
}

func TestExpenseLoggedMessage_Invalid(t *testing.T) {
	if _, err := ExpenseLoggedMessageFromJSON([]byte(`{"id": 5}`)); err == nil {
		t.Error("expected decode error")
	}
	if _, err := ExpenseLoggedMessageFromJSON([]byte(`{"id": "x"}`)); !errors.Is(err, core.ErrMalformedEntry) {
		t.Errorf("expected malformed entry, got %v", err)
	}
	bad := &ExpenseLoggedMessage{ID: "x", SessionID: "s", Amount: -1, Date: "2024-01-01"}
	if _, err := bad.Record(); !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("expected invalid input, got %v", err)
	}
}

type fakeAck struct {
	acked, nacked, requeued bool
}

func (f *fakeAck) Ack(bool) error { f.acked = true; return nil }

func (f *fakeAck) Nack(_ bool, requeue bool) error {
	f.nacked = true
	f.requeued = requeue
	return nil
}

func TestDispatch(t *testing.T) {
	body, _ := NewExpenseLoggedMessage("s1", core.ExpenseRecord{Category: "Rent", Amount: 900, Date: core.NewDate(2024, 3, 1)}).ToJSON()
	ok := func(context.Context, *ExpenseLoggedMessage) error { return nil }
	fail := func(context.Context, *ExpenseLoggedMessage) error { return errors.New("sheets down") }

	t.Run("ack on success", func(t *testing.T) {
		a := &fakeAck{}
		dispatch(context.Background(), body, a, ok)
		if !a.acked || a.nacked {
			t.Errorf("unexpected ack state: %+v", a)
		}
	})

	t.Run("requeue on handler error", func(t *testing.T) {
		a := &fakeAck{}
		dispatch(context.Background(), body, a, fail)
		if !a.nacked || !a.requeued {
			t.Errorf("unexpected ack state: %+v", a)
		}
	})

	t.Run("drop undecodable", func(t *testing.T) {
		a := &fakeAck{}
		called := false
		dispatch(context.Background(), []byte("not json"), a, func(context.Context, *ExpenseLoggedMessage) error {
			called = true
			return nil
		})
		if called || !a.nacked || a.requeued {
			t.Errorf("unexpected state: called=%v %+v", called, a)
		}
	})
}

func TestClose_NoConnection(t *testing.T) {
	c := &Client{}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatal("second Close should be a no-op")
	}
}
