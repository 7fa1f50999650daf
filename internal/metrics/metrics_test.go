package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/positions/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/positions/"+id, nil))
		require.Equal(t, http.StatusTeapot, rec.Code)
	}
	got := testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/api/positions/{id}", "418"))
	assert.Equal(t, 2.0, got)
}

func TestObserveSubmission(t *testing.T) {
	m := New()
	m.ObserveSubmission("completed", 83)
	m.ObserveSubmission("incomplete", 0)
	m.ObserveSubmission("completed", 40)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.submissions.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.submissions.WithLabelValues("incomplete")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.fitScore))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "personality_fit_score_count 2"), body)
	assert.True(t, strings.Contains(body, `personality_submissions_total{outcome="completed"} 2`))
}
