package apiclient_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/myrjola/masks/internal/apiclient"
	"github.com/myrjola/masks/internal/errors"
	"github.com/myrjola/masks/internal/models"
	"github.com/myrjola/masks/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method string
	path   string
	body   string
}

// fakeAPI answers with the scripted statuses in order and records the requests it received.
// A zero status makes the handler hang until the client gives up.
type fakeAPI struct {
	mu       sync.Mutex
	statuses []int
	body     string
	requests []recorded
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recorded{method: r.Method, path: r.URL.RequestURI(), body: string(body)})
	status := http.StatusOK
	if len(f.statuses) > 0 {
		status = f.statuses[0]
		f.statuses = f.statuses[1:]
	}
	f.mu.Unlock()

	if status == 0 {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if status >= 400 {
		_, _ = io.WriteString(w, `{"error":"backend says no"}`)
		return
	}
	_, _ = io.WriteString(w, f.body)
}

func (f *fakeAPI) calls() []recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recorded(nil), f.requests...)
}

func newClient(t *testing.T, api *fakeAPI) *apiclient.Client {
	t.Helper()
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)
	return apiclient.New(server.URL+"/api",
		apiclient.WithTimeout(100*time.Millisecond),
		apiclient.WithRetryDelay(10*time.Millisecond),
		apiclient.WithLogger(testhelpers.NewLogger(t)),
	)
}

func TestClient_Retry(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		statuses   []int
		wantCalls  int
		wantStatus int
		wantErr    bool
	}{
		{name: "success", statuses: []int{200}, wantCalls: 1},
		{name: "bad gateway then success", statuses: []int{502, 200}, wantCalls: 2},
		{name: "unavailable then success", statuses: []int{503, 200}, wantCalls: 2},
		{name: "gateway timeout twice", statuses: []int{504, 504, 200}, wantCalls: 2, wantErr: true, wantStatus: 504},
		{name: "timeout then success", statuses: []int{0, 200}, wantCalls: 2},
		{name: "timeout twice", statuses: []int{0, 0, 200}, wantCalls: 2, wantErr: true},
		{name: "not found is final", statuses: []int{404, 200}, wantCalls: 1, wantErr: true, wantStatus: 404},
		{name: "bad request is final", statuses: []int{400, 200}, wantCalls: 1, wantErr: true, wantStatus: 400},
		{name: "internal error is final", statuses: []int{500, 200}, wantCalls: 1, wantErr: true, wantStatus: 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			api := &fakeAPI{statuses: tt.statuses, body: `{"id":"c1","name":"Jane Doe"}`}
			client := newClient(t, api)

			in := models.CharacterInput{Name: "Jane Doe", Occupation: "Dilettante"}
			got, err := client.UpdateCharacter(context.Background(), "c1", in)

			calls := api.calls()
			require.Len(t, calls, tt.wantCalls)
			for _, call := range calls {
				assert.Equal(t, calls[0], call, "retries replay the identical request")
			}
			assert.Equal(t, http.MethodPut, calls[0].method)
			assert.Equal(t, "/api/characters/c1", calls[0].path)
			var sent models.CharacterInput
			require.NoError(t, json.Unmarshal([]byte(calls[0].body), &sent))
			assert.Equal(t, in.Name, sent.Name)

			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, "Jane Doe", got.Name)
				return
			}
			require.Error(t, err)
			if tt.wantStatus == 0 {
				return
			}
			var statusErr *apiclient.StatusError
			require.True(t, errors.As(err, &statusErr))
			assert.Equal(t, tt.wantStatus, statusErr.StatusCode)
			assert.Equal(t, "backend says no", statusErr.Message)
		})
	}
}

func TestClient_RetryRespectsContext(t *testing.T) {
	t.Parallel()
	api := &fakeAPI{statuses: []int{503, 200}, body: `[]`}
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)
	client := apiclient.New(server.URL+"/api", apiclient.WithRetryDelay(time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := client.ListSessions(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Len(t, api.calls(), 1)
}

func TestClient_Queries(t *testing.T) {
	t.Parallel()
	api := &fakeAPI{body: `[]`}
	client := newClient(t, api)
	ctx := context.Background()

	sessions, err := client.SearchSessions(ctx, "dark & stormy")
	require.NoError(t, err)
	assert.Empty(t, sessions)
	_, err = client.SessionsByTags(ctx, []string{"ritual", "combat"})
	require.NoError(t, err)

	calls := api.calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "/api/sessions/search?q=dark+%26+stormy", calls[0].path)
	assert.Equal(t, "/api/sessions/tags?tags=ritual%2Ccombat", calls[1].path)
}

func TestClient_WarmUp(t *testing.T) {
	t.Parallel()
	api := &fakeAPI{statuses: []int{503, 502, 200}, body: `{"status":"ok"}`}
	client := newClient(t, api)

	attempts, err := client.WarmUp(context.Background(), 5*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	for _, call := range api.calls() {
		assert.Equal(t, "/health", call.path)
	}

	down := &fakeAPI{}
	for range 100 {
		down.statuses = append(down.statuses, http.StatusServiceUnavailable)
	}
	client = newClient(t, down)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = client.WarmUp(ctx, 5*time.Millisecond)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestResolveBaseURL(t *testing.T) {
	t.Parallel()
	unset := func(string) (string, bool) { return "", false }
	set := func(key string) (string, bool) {
		if key == apiclient.EnvAPIURL {
			return "https://example.com/api/", true
		}
		return "", false
	}
	assert.Equal(t, "https://example.com/api", apiclient.ResolveBaseURL(set, true))
	assert.Equal(t, "https://example.com/api", apiclient.ResolveBaseURL(set, false))
	assert.Equal(t, apiclient.DefaultProductionURL, apiclient.ResolveBaseURL(unset, true))
	assert.Equal(t, apiclient.DefaultLocalURL, apiclient.ResolveBaseURL(unset, false))
}
