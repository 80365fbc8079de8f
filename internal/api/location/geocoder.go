package location

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/FACorreiaa/go-nearby-places/internal/types"
)

// Geocoder resolves free-form text (city, zip, address) to a coordinate.
type Geocoder interface {
	Resolve(ctx context.Context, text string) (types.GeoPosition, string, error)
}

// NominatimClient geocodes through a Nominatim-style endpoint:
// GET {base}/search?q=<text>&format=json&limit=1.
type NominatimClient struct {
	baseURL    string
	httpClient *http.Client
}

var _ Geocoder = (*NominatimClient)(nil)

func NewNominatimClient(baseURL string, timeout time.Duration) *NominatimClient {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &NominatimClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Resolve returns the best match for the query, or ErrLocationNotFound
// when nothing matches. Network failures surface as-is; the caller may
// re-invoke, there is no automatic retry.
func (c *NominatimClient) Resolve(ctx context.Context, text string) (types.GeoPosition, string, error) {
	q := url.Values{}
	q.Set("q", text)
	q.Set("format", "json")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return types.GeoPosition{}, "", fmt.Errorf("failed to build geocode request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return types.GeoPosition{}, "", fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.GeoPosition{}, "", fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return types.GeoPosition{}, "", fmt.Errorf("malformed geocoder response: %w", err)
	}
	if len(results) == 0 {
		return types.GeoPosition{}, "", types.ErrLocationNotFound
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return types.GeoPosition{}, "", fmt.Errorf("malformed geocoder latitude %q: %w", results[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return types.GeoPosition{}, "", fmt.Errorf("malformed geocoder longitude %q: %w", results[0].Lon, err)
	}

	return types.GeoPosition{Latitude: lat, Longitude: lon}, results[0].DisplayName, nil
}
