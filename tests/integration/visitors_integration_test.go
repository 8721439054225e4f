package integration

import (
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countResponse struct {
	Count       int64  `json:"count"`
	Incremented bool   `json:"incremented"`
	Error       string `json:"error"`
}

func getJSON(t *testing.T, path string, out interface{}) int {
	t.Helper()
	resp, err := http.Get(testServerURL + path)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, out))
	return resp.StatusCode
}

func resetCounter(t *testing.T) {
	t.Helper()
	req, err := http.NewRequest(http.MethodDelete, testServerURL+"/api/visitors", nil)
	require.NoError(t, err)
	req.Header.Set("X-Admin-Key", testAdminKey)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestVisitorCounter_IncrementAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	resetCounter(t)

	var before countResponse
	status := getJSON(t, "/api/visitors", &before)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(0), before.Count)

	resp, err := http.Post(testServerURL+"/api/visitors", "application/json", nil)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var incremented countResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&incremented))
	assert.Equal(t, int64(1), incremented.Count)
	assert.True(t, incremented.Incremented)

	var after countResponse
	getJSON(t, "/api/visitors", &after)
	assert.Equal(t, int64(1), after.Count)
}

// Concurrent increments must each observe a distinct post-increment value and
// the final count must equal the starting count plus the number of requests.
func TestVisitorCounter_ConcurrentIncrements(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	resetCounter(t)

	const workers = 20
	results := make([]int64, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			resp, err := http.Post(testServerURL+"/api/visitors", "application/json", nil)
			if err != nil {
				t.Errorf("increment request failed: %v", err)
				return
			}
			defer func() { _ = resp.Body.Close() }()

			var body countResponse
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Errorf("failed to decode response: %v", err)
				return
			}
			results[idx] = body.Count
		}(i)
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i] < results[j] })
	for i, got := range results {
		assert.Equal(t, int64(i+1), got, "each concurrent increment must return a distinct count")
	}

	var final countResponse
	getJSON(t, "/api/visitors", &final)
	assert.Equal(t, int64(workers), final.Count)
}

func TestVisitorCounter_ResetRequiresAdminKey(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	resetCounter(t)

	resp, err := http.Post(testServerURL+"/api/visitors", "application/json", nil)
	require.NoError(t, err)
	_ = resp.Body.Close()

	req, err := http.NewRequest(http.MethodDelete, testServerURL+"/api/visitors", nil)
	require.NoError(t, err)
	req.Header.Set("X-Admin-Key", "wrong-key")

	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var count countResponse
	getJSON(t, "/api/visitors", &count)
	assert.Equal(t, int64(1), count.Count, "failed reset must leave the count untouched")
}

func TestVisitorCounter_Stats(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	resetCounter(t)

	resp, err := http.Post(testServerURL+"/api/visitors", "application/json", nil)
	require.NoError(t, err)
	_ = resp.Body.Close()

	var stats struct {
		Count          int64      `json:"count"`
		CreatedAt      *time.Time `json:"created_at"`
		UpdatedAt      *time.Time `json:"updated_at"`
		ActiveDuration string     `json:"active_duration"`
	}
	status := getJSON(t, "/api/visitors/stats", &stats)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(1), stats.Count)
	require.NotNil(t, stats.CreatedAt)
	require.NotNil(t, stats.UpdatedAt)
	assert.False(t, stats.UpdatedAt.Before(*stats.CreatedAt))
	assert.NotEmpty(t, stats.ActiveDuration)
}

func TestHealthEndpoints_AgainstLiveStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	for _, path := range []string{"/health", "/health/detailed", "/health/ready", "/health/live"} {
		var body map[string]interface{}
		status := getJSON(t, path, &body)
		assert.Equal(t, http.StatusOK, status, "expected %s to report healthy", path)
	}

	var detailed struct {
		Status       string `json:"status"`
		Dependencies struct {
			Database struct {
				Status string `json:"status"`
			} `json:"database"`
		} `json:"dependencies"`
	}
	getJSON(t, "/health/detailed", &detailed)
	assert.Equal(t, "OK", detailed.Status)
	assert.Equal(t, "connected", detailed.Dependencies.Database.Status)
}

func TestMetricsExposition_RecordsTraffic(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	resetCounter(t)

	resp, err := http.Post(testServerURL+"/api/visitors", "application/json", nil)
	require.NoError(t, err)
	_ = resp.Body.Close()

	resp, err = http.Get(testServerURL + "/metrics")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	text := string(body)

	assert.Contains(t, text, "# TYPE http_requests_total counter")
	assert.Contains(t, text, "# TYPE http_request_duration_seconds histogram")
	assert.Contains(t, text, `http_requests_total{method="POST",route="/api/visitors"`)
	assert.Contains(t, text, "# TYPE website_visitors_total gauge")
	assert.Contains(t, text, "process_uptime_seconds")
}

func TestNotFound_ReportsPath(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	resp, err := http.Get(testServerURL + "/no/such/route")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body struct {
		Error string `json:"error"`
		Path  string `json:"path"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Route not found", body.Error)
	assert.Equal(t, "/no/such/route", body.Path)
}

func TestContactSubmission(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	payload := `{"name":"Ada","email":"ada@example.com","project":"Booking","message":"Hi"}`
	resp, err := http.Post(testServerURL+"/api/contact", "application/json",
		strings.NewReader(payload))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Success bool `json:"success"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)

	resp, err = http.Post(testServerURL+"/api/contact", "application/json",
		strings.NewReader(`{"name":"Ada"}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
