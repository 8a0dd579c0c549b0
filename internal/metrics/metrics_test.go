package metrics

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"trading-relay/internal/domain"
)

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.ConnectionOpened()
	m.ConnectionClosed()
	m.FrameProcessed("success")
	m.CompletionObserved("model", "success", time.Second, 1, 2)
	m.HealthChecked("healthy")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for nil metrics, got %d", rec.Code)
	}
}

func TestMetrics_Records(t *testing.T) {
	m := New(nil, "claude")

	m.ConnectionOpened()
	m.ConnectionOpened()
	m.ConnectionClosed()
	if got := testutil.ToFloat64(m.activeConnections); got != 1 {
		t.Fatalf("expected 1 active connection, got %v", got)
	}

	m.FrameProcessed("success")
	m.FrameProcessed("success")
	m.FrameProcessed("error")
	if got := testutil.ToFloat64(m.framesTotal.WithLabelValues("success")); got != 2 {
		t.Fatalf("expected 2 success frames, got %v", got)
	}

	m.CompletionObserved("claude", "success", 200*time.Millisecond, 10, 20)
	m.CompletionObserved("claude", "error", time.Second, 0, 0)
	if got := testutil.ToFloat64(m.tokensTotal.WithLabelValues("claude", "output")); got != 20 {
		t.Fatalf("expected 20 output tokens, got %v", got)
	}
	if got := testutil.CollectAndCount(m.completionLatency); got != 2 {
		t.Fatalf("expected 2 latency series, got %d", got)
	}

	m.HealthChecked("unhealthy")
	if got := testutil.ToFloat64(m.healthChecks.WithLabelValues("unhealthy")); got != 1 {
		t.Fatalf("expected 1 unhealthy check, got %v", got)
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := New(nil)
	m.FrameProcessed("success")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "trading_relay_frames_total") {
		t.Fatalf("expected frames counter in exposition")
	}
}

func TestMetrics_UnknownModelsShareOneSeries(t *testing.T) {
	m := New(nil, "claude-3-haiku-20240307")

	for i := 0; i < 500; i++ {
		m.CompletionObserved(fmt.Sprintf("junk-%d", i), "success", time.Millisecond, 1, 1)
	}
	m.CompletionObserved(domain.DefaultModel, "success", time.Millisecond, 1, 1)
	m.CompletionObserved("claude-3-haiku-20240307", "success", time.Millisecond, 1, 1)

	if got := testutil.CollectAndCount(m.completionLatency); got != 3 {
		t.Fatalf("expected 3 latency series, got %d", got)
	}
	if got := testutil.CollectAndCount(m.tokensTotal); got != 6 {
		t.Fatalf("expected 6 token series, got %d", got)
	}
	if got := testutil.ToFloat64(m.tokensTotal.WithLabelValues(otherModel, "input")); got != 500 {
		t.Fatalf("expected 500 input tokens under other, got %v", got)
	}
}
