package observability

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestWritePrometheusSortedAndLabeled(t *testing.T) {
	m := New()
	m.ObserveAPI("POST", "/api/spot-difference/click", "200", 30*time.Millisecond)
	m.ObserveAPI("GET", "/api/leaderboard/:exercise_id", "200", 5*time.Millisecond)
	m.IncAcquisition("easy", "reused")
	m.IncClick("hit")
	m.IncClick("hit")

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()

	get := `bf_api_requests_total{method="GET",route="/api/leaderboard/:exercise_id",status="200"} 1`
	post := `bf_api_requests_total{method="POST",route="/api/spot-difference/click",status="200"} 1`
	gi, pi := strings.Index(out, get), strings.Index(out, post)
	if gi < 0 || pi < 0 {
		t.Fatalf("missing api series in output:\n%s", out)
	}
	if gi > pi {
		t.Fatalf("series not sorted: GET should precede POST")
	}
	if !strings.Contains(out, `bf_clicks_total{outcome="hit"} 2`) {
		t.Fatalf("click counter missing")
	}
	if !strings.Contains(out, `bf_template_acquisitions_total{difficulty="easy",path="reused"} 1`) {
		t.Fatalf("acquisition counter missing")
	}
	if !strings.Contains(out, `le="+Inf"`) {
		t.Fatalf("histogram missing +Inf bucket")
	}
}

func TestHistogramBuckets(t *testing.T) {
	h := NewHistogramVec("x", "help", []string{"op"}, []float64{1, 2})
	h.Observe(0.5, "a")
	h.Observe(1.5, "a")
	h.Observe(3, "a")

	var buf bytes.Buffer
	if err := h.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`x_bucket{op="a",le="1"} 1`,
		`x_bucket{op="a",le="2"} 2`,
		`x_bucket{op="a",le="+Inf"} 3`,
		`x_sum{op="a"} 5`,
		`x_count{op="a"} 3`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestLabelEscapingAndDefaults(t *testing.T) {
	if got := labelString([]string{"a", "b"}, []string{`x"y`}); got != `{a="x\"y",b="unknown"}` {
		t.Fatalf("labelString = %s", got)
	}
	if got := withLe("", "1"); got != `{le="1"}` {
		t.Fatalf("withLe = %s", got)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/", "200", time.Millisecond)
	m.IncClick("miss")
	m.ObserveAggregateOperation("op", "success", time.Millisecond)
	m.ApiInflightInc()

	rec := httptest.NewRecorder()
	m.WriteHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 503 {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestInflightGauge(t *testing.T) {
	m := New()
	m.ApiInflightInc()
	m.ApiInflightInc()
	m.ApiInflightDec()
	if got := m.apiInflight.Value(); got != 1 {
		t.Fatalf("inflight = %v, want 1", got)
	}
}

func TestAggregateCounters(t *testing.T) {
	m := New()
	m.IncAggregateConflict("spotdiff.resolve_click")
	m.IncAggregateRetry("spotdiff.resolve_click")
	m.IncAggregateRetry("spotdiff.resolve_click")
	if got := m.aggregateConflicts.Value("spotdiff.resolve_click"); got != 1 {
		t.Fatalf("conflicts = %v", got)
	}
	if got := m.aggregateRetries.Value("spotdiff.resolve_click"); got != 2 {
		t.Fatalf("retries = %v", got)
	}
}
