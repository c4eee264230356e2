package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/campuscopilot/copilot-go/internal/copilot"
)

// newMetricsTestServer builds a Server backed by a fresh isolated registry so
// tests do not pollute prometheus.DefaultRegisterer.
func newMetricsTestServer(t *testing.T) (*Server, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	s := &Server{
		resolver: &fakeResolver{result: copilot.Result{Answer: "hi", Stage: copilot.StageFAQ}},
		index:    &fakeIndexer{},
		cfg: &Config{
			MetricsRegistry: reg,
			MetricsGatherer: reg,
		},
		metrics: newServerMetrics(reg),
	}
	return s, reg
}

// counterValue digs the value of a labelled counter out of gathered metric
// families. Returns -1 when the series is absent.
func counterValue(t *testing.T, reg *prometheus.Registry, name, label, value string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == label && lp.GetValue() == value {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return -1
}

func Test_Metrics_EndpointReturns200(t *testing.T) {
	t.Parallel()
	_, reg := newMetricsTestServer(t)

	srv := httptest.NewServer(promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	t.Cleanup(srv.Close)

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, srv.URL+"/metrics", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("want 200, got %d", resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("want text/plain content-type, got %q", ct)
	}
}

// Test_Metrics_QueryCounterByStage verifies that a chat request increments
// the query counter under the stage that answered it.
func Test_Metrics_QueryCounterByStage(t *testing.T) {
	t.Parallel()
	s, reg := newMetricsTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/chat",
		strings.NewReader(`{"sessionId":"sess-1","message":"hello"}`))
	req.Header.Set("Content-Type", "application/json")
	s.handleChat(httptest.NewRecorder(), req)

	got := counterValue(t, reg, "copilot_query_resolved_total", "stage", "faq")
	if got != 1 {
		t.Errorf("copilot_query_resolved_total{stage=\"faq\"}: want 1, got %v", got)
	}
}

// Test_Metrics_StagesArePartitioned verifies that different stages land in
// different series rather than one aggregate counter.
func Test_Metrics_StagesArePartitioned(t *testing.T) {
	t.Parallel()
	s, reg := newMetricsTestServer(t)

	s.metrics.queriesTotal.WithLabelValues("knowledge").Inc()
	s.metrics.queriesTotal.WithLabelValues("knowledge").Inc()
	s.metrics.queriesTotal.WithLabelValues("generative").Inc()

	if got := counterValue(t, reg, "copilot_query_resolved_total", "stage", "knowledge"); got != 2 {
		t.Errorf("knowledge: want 2, got %v", got)
	}
	if got := counterValue(t, reg, "copilot_query_resolved_total", "stage", "generative"); got != 1 {
		t.Errorf("generative: want 1, got %v", got)
	}
	if got := counterValue(t, reg, "copilot_query_resolved_total", "stage", "fallback"); got != -1 {
		t.Errorf("fallback: want no series, got %v", got)
	}
}

// Test_Metrics_IngestChunksCounter verifies that a successful ingest adds
// the chunk count to the ingest counter.
func Test_Metrics_IngestChunksCounter(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	s := &Server{
		resolver: &fakeResolver{},
		index:    &fakeIndexer{chunks: 4},
		cfg:      &Config{MetricsRegistry: reg, MetricsGatherer: reg},
		metrics:  newServerMetrics(reg),
	}

	req := httptest.NewRequest(http.MethodPost, "/api/ingest",
		strings.NewReader(`{"content":"some text","source":"notes.txt"}`))
	req.Header.Set("Content-Type", "application/json")
	s.handleIngest(httptest.NewRecorder(), req)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() == "copilot_ingest_chunks_total" {
			v := mf.GetMetric()[0].GetCounter().GetValue()
			if v != 4 {
				t.Errorf("want chunks_total=4, got %v", v)
			}
			return
		}
	}
	t.Error("copilot_ingest_chunks_total not found in gathered metrics")
}

// Test_Metrics_HTTPInstrumentation verifies that the instrument middleware
// records the method, path, and status of handled requests.
func Test_Metrics_HTTPInstrumentation(t *testing.T) {
	t.Parallel()
	s, reg := newMetricsTestServer(t)

	h := s.instrument(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/search", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	got := counterValue(t, reg, "copilot_http_requests_total", "code", "404")
	if got != 1 {
		t.Errorf("copilot_http_requests_total{code=\"404\"}: want 1, got %v", got)
	}
}
