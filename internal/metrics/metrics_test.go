package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/myrjola/masks/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	t.Parallel()
	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	m := metrics.New(map[string]*sqlx.DB{"readwrite": db})
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/characters/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	handler := m.Middleware(mux)

	for range 2 {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/characters/x", nil))
	}
	m.Write("character", "create")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	exposition := string(body)

	assert.Contains(t, exposition, `masks_http_requests_total{code="404",pattern="GET /api/characters/{id}"} 2`)
	assert.Contains(t, exposition, `masks_http_request_duration_seconds_count{pattern="GET /api/characters/{id}"} 2`)
	assert.Contains(t, exposition, `masks_campaign_writes_total{entity="character",op="create"} 1`)
	assert.Contains(t, exposition, `go_sql_open_connections{db_name="readwrite"}`)
}
