package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/referralnet/internal/domain"
	"github.com/vanshika/referralnet/internal/tree"
)

func gather(t *testing.T, m *Metrics) map[string]float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)

	out := make(map[string]float64)
	for _, fam := range families {
		for _, metric := range fam.GetMetric() {
			key := fam.GetName()
			for _, lp := range metric.GetLabel() {
				key += "|" + lp.GetName() + "=" + lp.GetValue()
			}
			switch {
			case metric.GetCounter() != nil:
				out[key] = metric.GetCounter().GetValue()
			case metric.GetHistogram() != nil:
				out[key] = float64(metric.GetHistogram().GetSampleCount())
			case metric.GetGauge() != nil:
				out[key] = metric.GetGauge().GetValue()
			}
		}
	}
	return out
}

func TestMetrics_ObserveBuild(t *testing.T) {
	m := New()
	forest, diags := tree.BuildForest([]domain.RawNode{
		{ID: "A", Name: "A", Email: "a@x", TotalIncome: -1},
		{ID: "A", Name: "A", Email: "a@x"},
	}, tree.Options{})

	m.ObserveBuild(forest, diags, 3*time.Millisecond)

	got := gather(t, m)
	assert.Equal(t, 1.0, got["referralnet_tree_builds_total"])
	assert.Equal(t, 1.0, got["referralnet_tree_forest_nodes"])
	assert.Equal(t, 1.0, got["referralnet_tree_diagnostics_total|kind="+string(domain.KindMalformedNode)])
	assert.Equal(t, 1.0, got["referralnet_tree_diagnostics_total|kind="+string(domain.KindDuplicateIdentifier)])
}

func TestMetrics_MiddlewareLabelsByRouteTemplate(t *testing.T) {
	m := New()
	router := mux.NewRouter()
	router.Use(m.Middleware)
	router.HandleFunc("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	router.Handle("/metrics", m.Handler())

	for _, path := range []string{"/users/1", "/users/2"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusTeapot, rec.Code)
	}

	got := gather(t, m)
	assert.Equal(t, 2.0, got["referralnet_http_requests_total|method=GET|route=/users/{id}|status=418"])
	assert.Equal(t, 2.0, got["referralnet_http_request_duration_seconds|method=GET|route=/users/{id}"])

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	assert.True(t, strings.Contains(string(body), "referralnet_http_requests_total"))
}
