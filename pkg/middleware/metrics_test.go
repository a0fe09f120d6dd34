package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_CountsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics())
	r.Get("/api/v1/products/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	counter := requestsTotal.WithLabelValues("GET", "/api/v1/products/{id}", "200")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"p-1", "p-2"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+id, nil)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	// Both requests collapse onto the route pattern, not the raw paths.
	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}

func TestMetrics_RecordsErrorStatus(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics())
	r.Post("/api/v1/orders", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})

	counter := requestsTotal.WithLabelValues("POST", "/api/v1/orders", "409")
	before := testutil.ToFloat64(counter)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestMetrics_TracksInFlight(t *testing.T) {
	baseline := testutil.ToFloat64(requestsInFlight)

	var during float64
	r := chi.NewRouter()
	r.Use(Metrics())
	r.Get("/api/v1/carts", func(w http.ResponseWriter, _ *http.Request) {
		during = testutil.ToFloat64(requestsInFlight)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/carts", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, baseline+1, during)
	assert.Equal(t, baseline, testutil.ToFloat64(requestsInFlight))
}
