package places

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-nearby-places/internal/types"
)

const sampleFoursquareBody = `{
	"results": [
		{
			"fsq_id": "4b55",
			"name": "Green Bowl",
			"categories": [{"id": 13065, "name": "Vegetarian Restaurant", "short_name": "Vegetarian"}],
			"distance": 420,
			"geocodes": {"main": {"latitude": 40.7186, "longitude": -74.0051}},
			"location": {"formatted_address": "77 Hudson St, New York, NY 10013"}
		}
	]
}`

func newTestFoursquareClient(baseURL string) *FoursquareClient {
	c := NewFoursquareClient("test-key", baseURL, 50, testLogger())
	c.retryBaseDelay = time.Millisecond
	return c
}

func TestFoursquareSearch_MapsResults(t *testing.T) {
	var gotAuth string
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleFoursquareBody))
	}))
	defer srv.Close()

	c := newTestFoursquareClient(srv.URL)
	raws, err := c.Search(context.Background(), ProviderSearchRequest{
		Latitude:     40.7128,
		Longitude:    -74.0060,
		RadiusMeters: 5000,
		Type:         "restaurant",
		Keyword:      "vegetarian",
		OpenNow:      true,
	})
	require.NoError(t, err)
	require.Len(t, raws, 1)

	assert.Equal(t, "4b55", raws[0].ID)
	assert.Equal(t, "Green Bowl", raws[0].Name)
	assert.Equal(t, 40.7186, raws[0].Latitude)
	assert.Equal(t, []string{"vegetarian"}, raws[0].Types)
	assert.Equal(t, "77 Hudson St, New York, NY 10013", raws[0].Address)

	assert.Equal(t, "test-key", gotAuth)
	assert.Equal(t, []string{"5000"}, gotQuery["radius"])
	assert.Equal(t, []string{"restaurant"}, gotQuery["categories"])
	assert.Equal(t, []string{"vegetarian"}, gotQuery["query"])
	assert.Equal(t, []string{"true"}, gotQuery["open_now"])
}

func TestFoursquareSearch_RetriesRateLimitThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleFoursquareBody))
	}))
	defer srv.Close()

	c := newTestFoursquareClient(srv.URL)
	raws, err := c.Search(context.Background(), ProviderSearchRequest{RadiusMeters: 5000})
	require.NoError(t, err)
	assert.Len(t, raws, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFoursquareSearch_RateLimitExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := newTestFoursquareClient(srv.URL)
	_, err := c.Search(context.Background(), ProviderSearchRequest{RadiusMeters: 5000})
	require.Error(t, err)
	assert.True(t, types.IsRateLimited(err))
	assert.Equal(t, int32(3), calls.Load())
}

func TestFoursquareSearch_NonRateLimitErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("invalid key"))
	}))
	defer srv.Close()

	c := newTestFoursquareClient(srv.URL)
	_, err := c.Search(context.Background(), ProviderSearchRequest{RadiusMeters: 5000})
	require.Error(t, err)

	var pe *types.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, http.StatusUnauthorized, pe.StatusCode)
	assert.Equal(t, "invalid key", pe.Message)
	assert.False(t, pe.RateLimited)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFoursquareSearch_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	c := newTestFoursquareClient(srv.URL)
	_, err := c.Search(context.Background(), ProviderSearchRequest{RadiusMeters: 5000})

	var pe *types.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, pe.Message, "malformed")
}

func TestFoursquareSearch_ContextCancelledDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewFoursquareClient("test-key", srv.URL, 50, testLogger())
	c.retryBaseDelay = time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Search(ctx, ProviderSearchRequest{RadiusMeters: 5000})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
