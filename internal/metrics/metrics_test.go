package metrics

import (
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/abrezinsky/snackcounter/internal/errors"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/snacks/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"1", "2", "3"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/snacks/"+id, nil))
	}

	got := testutil.ToFloat64(m.requests.WithLabelValues("/api/snacks/{id}", http.MethodGet, "404"))
	if got != 3 {
		t.Errorf("expected 3 requests under the route pattern, got %v", got)
	}
	if n := testutil.CollectAndCount(m.duration); n != 1 {
		t.Errorf("expected a single latency series, got %d", n)
	}
}

func TestMiddleware_UnmatchedRoute(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope/123", nil))

	if got := testutil.ToFloat64(m.requests.WithLabelValues("unmatched", http.MethodGet, "404")); got != 1 {
		t.Errorf("expected unmatched request to be counted, got %v", got)
	}
}

func TestMiddleware_ImplicitOK(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Snack API Running"))
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got := testutil.ToFloat64(m.requests.WithLabelValues("/", http.MethodGet, "200")); got != 1 {
		t.Errorf("expected 200 to be recorded, got %v", got)
	}
}

func TestObserveMutation(t *testing.T) {
	m := New()

	m.ObserveMutation("create", nil)
	m.ObserveMutation("update", errors.NotFound("Snack not found"))
	m.ObserveMutation("update", stderrors.New("raw"))

	tests := []struct {
		op, result string
		want       float64
	}{
		{"create", "ok", 1},
		{"update", "not_found", 1},
		{"update", "store", 1},
	}
	for _, tt := range tests {
		if got := testutil.ToFloat64(m.mutations.WithLabelValues(tt.op, tt.result)); got != tt.want {
			t.Errorf("%s/%s: expected %v, got %v", tt.op, tt.result, tt.want, got)
		}
	}
}

func TestRegisterGauge(t *testing.T) {
	m := New()
	clients := 2.0
	m.RegisterGauge("websocket_clients", "Connected websocket clients.", func() float64 { return clients })

	expected := `
# HELP snackcounter_websocket_clients Connected websocket clients.
# TYPE snackcounter_websocket_clients gauge
snackcounter_websocket_clients 2
`
	if err := testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "snackcounter_websocket_clients"); err != nil {
		t.Error(err)
	}
}

func TestHandler_ServesExposition(t *testing.T) {
	m := New()
	m.ObserveMutation("delete", nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `snackcounter_snack_mutations_total{op="delete",result="ok"} 1`) {
		t.Error("expected mutation counter in exposition output")
	}
}
