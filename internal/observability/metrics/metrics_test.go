package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kirillkom/consent-tracker/internal/core/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestWorkflowMetricsTracksSubmissions(t *testing.T) {
	m := NewWorkflowMetrics("tracker")

	m.SubmissionStarted(domain.KindPaste)
	if got := testutil.ToFloat64(m.submissionInFlight); got != 1 {
		t.Fatalf("expected 1 in flight, got %v", got)
	}
	m.SubmissionFinished(domain.KindPaste, "success", 150*time.Millisecond)
	m.SubmissionRejected(domain.KindUpload, "busy")
	m.StaleResponseDiscarded("global_stats")
	m.ObserveGatewayCall("paste", "success", time.Second)
	m.ObserveGatewayCall("paste", "", time.Second)

	if got := testutil.ToFloat64(m.submissionInFlight); got != 0 {
		t.Fatalf("expected 0 in flight, got %v", got)
	}
	if got := testutil.ToFloat64(m.submissionsTotal.WithLabelValues("tracker", "paste", "success")); got != 1 {
		t.Fatalf("expected 1 finished submission, got %v", got)
	}
	if got := testutil.ToFloat64(m.rejectedTotal.WithLabelValues("tracker", "upload", "busy")); got != 1 {
		t.Fatalf("expected 1 rejection, got %v", got)
	}
	if got := testutil.ToFloat64(m.staleTotal.WithLabelValues("tracker", "global_stats")); got != 1 {
		t.Fatalf("expected 1 stale discard, got %v", got)
	}
	if got := testutil.ToFloat64(m.gatewayTotal.WithLabelValues("tracker", "paste", "unknown")); got != 1 {
		t.Fatalf("expected unknown outcome label, got %v", got)
	}
}

func TestSharedRegistryExposesBothFamilies(t *testing.T) {
	registry := prometheus.NewRegistry()
	wf := NewWorkflowMetricsWithRegistry("tracker", registry)
	httpMetrics := NewHTTPServerMetricsWithRegistry("tracker", registry)

	handler := httpMetrics.Middleware("tracker", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/analysis", nil))
	wf.ObserveGatewayCall("fetch_clauses", "success", time.Millisecond)

	res := httptest.NewRecorder()
	wf.Handler().ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := res.Body.String()
	for _, want := range []string{
		`tracker_http_requests_total{method="GET",path="/v1/analysis",service="tracker",status="418"} 1`,
		`tracker_gateway_calls_total{operation="fetch_clauses",outcome="success",service="tracker"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics output missing %q:\n%s", want, body)
		}
	}
}

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"/healthz":      "/healthz",
		"/v1/analysis":  "/v1/analysis",
		"/wp-admin.php": "other",
		"/metrics":      "/metrics",
	}
	for in, want := range cases {
		if got := normalizePath(in); got != want {
			t.Fatalf("normalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}
