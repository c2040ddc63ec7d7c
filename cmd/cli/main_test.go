package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/myrjola/masks/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

// startAPI serves mux under /api and returns the base URL of the API.
func startAPI(t *testing.T, mux *http.ServeMux) string {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv.URL + "/api"
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func investigators() []models.Character {
	return []models.Character{
		{
			ID:           "c1",
			Name:         "Jane Doe",
			Occupation:   "Librarian",
			MentalHealth: models.MentalHealth{Sanity: 45, MaxSanity: 60},
			Wounds:       2,
			MaxHealth:    11,
		},
		{
			ID:           "c2",
			Name:         "Jackson Elias",
			Occupation:   "Author",
			MentalHealth: models.MentalHealth{Sanity: 70, MaxSanity: 99},
			MaxHealth:    12,
		},
	}
}

func TestCharacters(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/characters", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusOK, investigators())
	})
	apiURL := startAPI(t, mux)

	out, err := execute(t, "characters", "--api-url", apiURL)
	require.NoError(t, err)
	assert.Contains(t, out, "OCCUPATION")
	assert.Contains(t, out, "Jane Doe")
	assert.Contains(t, out, "Jackson Elias")
	assert.Contains(t, out, "45/60")
	assert.Contains(t, out, "9/11")

	out, err = execute(t, "characters", "--api-url", apiURL, "--filter", "LIBRAR")
	require.NoError(t, err)
	assert.Contains(t, out, "Jane Doe")
	assert.NotContains(t, out, "Jackson Elias")
}

func TestRetriesSleepingAPIOnce(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/characters", func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(t, w, http.StatusOK, investigators())
	})
	apiURL := startAPI(t, mux)

	out, err := execute(t, "characters", "--api-url", apiURL, "--retry-delay", "1ms")
	require.NoError(t, err)
	assert.Contains(t, out, "Jane Doe")
	assert.Equal(t, int32(2), calls.Load())
}

func TestAPIErrorIsReported(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/sessions/search", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusBadRequest, map[string]string{"error": "query is required"})
	})
	apiURL := startAPI(t, mux)

	_, err := execute(t, "sessions", "search", "corbitt", "--api-url", apiURL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query is required")
}

func TestSessions(t *testing.T) {
	haunting := models.Session{
		ID:       "s1",
		Title:    "The Haunting Begins",
		Date:     "1925-03-15",
		Location: "Corbitt House",
		Tags:     []string{"combat", "investigation"},
	}
	var gotQuery, gotTags string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/sessions/search", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		writeJSON(t, w, http.StatusOK, []models.Session{haunting})
	})
	mux.HandleFunc("GET /api/sessions/tags", func(w http.ResponseWriter, r *http.Request) {
		gotTags = r.URL.Query().Get("tags")
		writeJSON(t, w, http.StatusOK, []models.Session{})
	})
	apiURL := startAPI(t, mux)

	out, err := execute(t, "sessions", "search", "walter", "corbitt", "--api-url", apiURL)
	require.NoError(t, err)
	assert.Equal(t, "walter corbitt", gotQuery)
	assert.Contains(t, out, "The Haunting Begins")
	assert.Contains(t, out, "combat, investigation")

	out, err = execute(t, "sessions", "tags", "ritual, horror,", "--api-url", apiURL)
	require.NoError(t, err)
	assert.Equal(t, "ritual,horror", gotTags)
	assert.NotContains(t, out, "The Haunting Begins")

	_, err = execute(t, "sessions", "tags", " , ", "--api-url", apiURL)
	require.Error(t, err)
}

func TestEvents(t *testing.T) {
	var gotFrom, gotTo string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/calendar", func(w http.ResponseWriter, r *http.Request) {
		gotFrom, gotTo = r.URL.Query().Get("from"), r.URL.Query().Get("to")
		writeJSON(t, w, http.StatusOK, []models.CalendarEvent{
			{ID: "e2", Title: "Character Creation Workshop", Date: "2024-03-30", Type: models.EventTypeWorkshop},
			{ID: "e1", Title: "Next Session: The Haunting", Date: "2024-03-23", Time: "19:00",
				Type: models.EventTypeSession},
		})
	})
	apiURL := startAPI(t, mux)

	out, err := execute(t, "events", "--month", "2024-03", "--api-url", apiURL)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", gotFrom)
	assert.Equal(t, "2024-03-31", gotTo)
	assert.Contains(t, out, "March 2024")
	haunting := bytes.Index([]byte(out), []byte("Next Session: The Haunting"))
	workshop := bytes.Index([]byte(out), []byte("Character Creation Workshop"))
	require.NotEqual(t, -1, haunting)
	require.NotEqual(t, -1, workshop)
	assert.Less(t, haunting, workshop, "events are listed by date")

	_, err = execute(t, "events", "--month", "March", "--api-url", apiURL)
	require.Error(t, err)
}

func TestBoard(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/investigation", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusOK, models.Board{
			Nodes: []models.Node{
				{ID: 1, Type: models.NodeTypeEvidence, Title: "Torn Letter"},
				{ID: 2, Type: models.NodeTypeEvidence, Title: "Wax Cylinder Recording"},
			},
			Connections: []models.Connection{{ID: 1, From: 1, To: 2, Label: "Both mention the ritual"}},
		})
	})
	apiURL := startAPI(t, mux)

	out, err := execute(t, "board", "--api-url", apiURL)
	require.NoError(t, err)
	assert.Contains(t, out, "Torn Letter")
	assert.Contains(t, out, "Both mention the ritual")
}

func TestWarmUp(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	apiURL := startAPI(t, mux)

	out, err := execute(t, "warmup", "--api-url", apiURL, "--interval", "1ms", "--deadline", "5s")
	require.NoError(t, err)
	assert.Contains(t, out, "awake after 3 attempt(s)")
}

func TestConfigFile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/characters", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusOK, investigators())
	})
	apiURL := startAPI(t, mux)

	path := filepath.Join(t.TempDir(), "masks.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_url: "+apiURL+"\ntimeout: 2s\n"), 0o600))

	out, err := execute(t, "characters", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Jane Doe")

	_, err = execute(t, "characters", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestDBMigrate(t *testing.T) {
	out, err := execute(t, "db", "migrate", "--sqlite-url", ":memory:")
	require.NoError(t, err)
	assert.Contains(t, out, "is up to date")
}
