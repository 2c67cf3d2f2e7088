package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newBufferLogger(level slog.Level) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(Config{Level: level, Component: ComponentApp, Output: &buf}), &buf
}

func TestLoggerAddsComponent(t *testing.T) {
	l, buf := newBufferLogger(slog.LevelInfo)
	l.WithComponent(ComponentStorage).Info("opened", "path", "mem")

	out := buf.String()
	if !strings.Contains(out, "component=storage") || !strings.Contains(out, "path=mem") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestSlogCarriesComponent(t *testing.T) {
	l, buf := newBufferLogger(slog.LevelInfo)
	l.WithComponent(ComponentWorker).Slog().Info("consuming")
	if !strings.Contains(buf.String(), "component=worker") {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestLoggerRespectsLevel(t *testing.T) {
	l, buf := newBufferLogger(slog.LevelWarn)
	l.Info("hidden")
	l.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestFromContextFallsBack(t *testing.T) {
	if got := FromContext(context.Background()); got == nil || got.Component() != "unknown" {
		t.Fatalf("unexpected fallback logger: %+v", got)
	}
}

func TestMiddlewareLogsCompletion(t *testing.T) {
	l, buf := newBufferLogger(slog.LevelInfo)
	h := Middleware(l, func(*http.Request) string { return "req_1" }, func(*http.Request) string { return "10.0.0.1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if FromContext(r.Context()).Component() != ComponentHTTP {
				t.Error("handler should see the http logger")
			}
			w.WriteHeader(http.StatusNotFound)
		}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/x/summary", nil))

	out := buf.String()
	for _, want := range []string{"level=WARN", "status_code=404", "request_id=req_1", "client_ip=10.0.0.1", "path=/sessions/x/summary"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}

func TestStructuredLogger(t *testing.T) {
	l, buf := newBufferLogger(slog.LevelInfo)
	sl := NewStructuredLogger(l)

	sl.LogExpenseLogged(context.Background(), "s1", "Food", 12.5, "2024-01-02")
	sl.LogError(context.Background(), "publish failed", errors.New("boom"), ComponentAMQP, OpPublish, nil)

	out := buf.String()
	for _, want := range []string{"session_id=s1", "category=Food", "amount=12.5", "component=budget", "error=boom", "component=amqp", "operation=publish"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}
