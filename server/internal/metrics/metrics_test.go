package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

type fixedCount int

func (c fixedCount) Count() int { return int(c) }

func family(t *testing.T, m *Metrics, name string) *dto.MetricFamily {
	t.Helper()
	mfs, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	t.Fatalf("metric family %q not gathered", name)
	return nil
}

func TestRecordsGauge(t *testing.T) {
	m := New(fixedCount(2))

	mf := family(t, m, "pokedex_records")
	if mf.GetType() != dto.MetricType_GAUGE {
		t.Errorf("type: got %v, want GAUGE", mf.GetType())
	}
	if got := mf.GetMetric()[0].GetGauge().GetValue(); got != 2 {
		t.Errorf("pokedex_records: got %v, want 2", got)
	}
}

func TestObserveRequest(t *testing.T) {
	m := New(fixedCount(0))

	m.ObserveRequest("/pokemon/{id}", http.MethodGet, http.StatusNotFound, 5*time.Millisecond)
	m.ObserveRequest("/pokemon/{id}", http.MethodGet, http.StatusNotFound, 5*time.Millisecond)
	m.ObserveRequest("/pokemon", http.MethodPost, http.StatusOK, time.Millisecond)

	if got := testutil.ToFloat64(m.requests.WithLabelValues("/pokemon/{id}", "GET", "404")); got != 2 {
		t.Errorf("GET /pokemon/{id} 404: got %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("/pokemon", "POST", "200")); got != 1 {
		t.Errorf("POST /pokemon 200: got %v, want 1", got)
	}

	mf := family(t, m, "pokedex_http_request_duration_seconds")
	var samples uint64
	for _, metric := range mf.GetMetric() {
		samples += metric.GetHistogram().GetSampleCount()
	}
	if samples != 3 {
		t.Errorf("histogram samples: got %d, want 3", samples)
	}
}

func TestObserveRequest_NilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveRequest("/pokemon", http.MethodGet, http.StatusOK, time.Millisecond)
}

func TestHandler_Exposition(t *testing.T) {
	m := New(fixedCount(9))
	m.ObserveRequest("/pokemon", http.MethodGet, http.StatusOK, time.Millisecond)

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{
		"pokedex_records 9",
		`pokedex_http_requests_total{code="200",method="GET",route="/pokemon"} 1`,
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}

func TestTrackStreamClients(t *testing.T) {
	m := New(fixedCount(0))
	m.TrackStreamClients(fixedCount(3))

	mf := family(t, m, "pokedex_stream_clients")
	if got := mf.GetMetric()[0].GetGauge().GetValue(); got != 3 {
		t.Errorf("pokedex_stream_clients: got %v, want 3", got)
	}
}

func TestObserveRPC(t *testing.T) {
	m := New(fixedCount(0))
	m.ObserveRPC("/pokedex.v1.Pokedex/Get", "NotFound")
	m.ObserveRPC("/pokedex.v1.Pokedex/Get", "NotFound")

	got := testutil.ToFloat64(m.rpcs.WithLabelValues("/pokedex.v1.Pokedex/Get", "NotFound"))
	if got != 2 {
		t.Errorf("grpc requests: got %v, want 2", got)
	}

	var nilMetrics *Metrics
	nilMetrics.ObserveRPC("/pokedex.v1.Pokedex/Get", "OK")
}
