package location

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-nearby-places/internal/types"
)

func TestNominatimResolve_BestMatch(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"lat": "38.7077507", "lon": "-9.1365919", "display_name": "Lisboa, Portugal"},
			{"lat": "38.0", "lon": "-9.0", "display_name": "Somewhere else"}
		]`))
	}))
	defer srv.Close()

	c := NewNominatimClient(srv.URL, time.Second)
	pos, place, err := c.Resolve(context.Background(), "lisbon")
	require.NoError(t, err)

	assert.Equal(t, 38.7077507, pos.Latitude)
	assert.Equal(t, -9.1365919, pos.Longitude)
	assert.Equal(t, "Lisboa, Portugal", place)

	assert.Equal(t, []string{"lisbon"}, gotQuery["q"])
	assert.Equal(t, []string{"json"}, gotQuery["format"])
	assert.Equal(t, []string{"1"}, gotQuery["limit"])
}

func TestNominatimResolve_NoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewNominatimClient(srv.URL, time.Second)
	_, _, err := c.Resolve(context.Background(), "xyzzy nowhere")
	assert.ErrorIs(t, err, types.ErrLocationNotFound)
}

func TestNominatimResolve_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewNominatimClient(srv.URL, time.Second)
	_, _, err := c.Resolve(context.Background(), "lisbon")
	require.Error(t, err)
	assert.NotErrorIs(t, err, types.ErrLocationNotFound)
}

func TestNominatimResolve_MalformedCoordinate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"lat": "not-a-number", "lon": "-9.1", "display_name": "Broken"}]`))
	}))
	defer srv.Close()

	c := NewNominatimClient(srv.URL, time.Second)
	_, _, err := c.Resolve(context.Background(), "lisbon")
	assert.ErrorContains(t, err, "malformed geocoder latitude")
}
