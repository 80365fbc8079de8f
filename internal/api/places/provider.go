package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/FACorreiaa/go-nearby-places/app/observability/metrics"
	"github.com/FACorreiaa/go-nearby-places/internal/types"
)

// ProviderSearchRequest is one upstream nearby-search, already expressed
// in the provider's vocabulary. Radius is meters at this boundary.
type ProviderSearchRequest struct {
	Latitude     float64
	Longitude    float64
	RadiusMeters int
	Type         string
	Keyword      string
	OpenNow      bool
	MinPrice     int
	MaxPrice     int
	Limit        int
}

// Provider is the upstream places-search API. Both implementations
// normalize their records into types.RawPlace so the orchestrator's
// fan-out and retry logic stays provider-agnostic.
type Provider interface {
	Search(ctx context.Context, req ProviderSearchRequest) ([]types.RawPlace, error)
	Name() string
}

const (
	maxAttempts      = 3
	baseRetryDelay   = 1 * time.Second
	foursquareSearch = "/places/search"
)

// FoursquareClient talks to the Foursquare places REST API.
type FoursquareClient struct {
	apiKey     string
	baseURL    string
	limit      int
	httpClient *http.Client
	logger     *slog.Logger

	// retryBaseDelay is overridable in tests; production uses baseRetryDelay.
	retryBaseDelay time.Duration
}

var _ Provider = (*FoursquareClient)(nil)

func NewFoursquareClient(apiKey, baseURL string, limit int, logger *slog.Logger) *FoursquareClient {
	return &FoursquareClient{
		apiKey:         apiKey,
		baseURL:        strings.TrimRight(baseURL, "/"),
		limit:          limit,
		httpClient:     &http.Client{Timeout: 10 * time.Second},
		logger:         logger,
		retryBaseDelay: baseRetryDelay,
	}
}

func (c *FoursquareClient) Name() string { return "foursquare" }

type foursquareCategory struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
}

type foursquarePlace struct {
	FsqID      string               `json:"fsq_id"`
	Name       string               `json:"name"`
	Categories []foursquareCategory `json:"categories"`
	Distance   int                  `json:"distance"`
	Geocodes   struct {
		Main struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"main"`
	} `json:"geocodes"`
	Location struct {
		Address          string `json:"address"`
		Locality         string `json:"locality"`
		FormattedAddress string `json:"formatted_address"`
	} `json:"location"`
}

type foursquareResponse struct {
	Results []foursquarePlace `json:"results"`
}

// Search issues a places search, retrying rate-limited responses with
// bounded exponential backoff (1s base, doubling, 3 attempts total). A
// Retry-After hint from the provider overrides the computed delay. Other
// non-2xx responses surface immediately as a ProviderError.
func (c *FoursquareClient) Search(ctx context.Context, req ProviderSearchRequest) ([]types.RawPlace, error) {
	q := url.Values{}
	q.Set("ll", fmt.Sprintf("%f,%f", req.Latitude, req.Longitude))
	q.Set("radius", strconv.Itoa(req.RadiusMeters))
	limit := req.Limit
	if limit == 0 {
		limit = c.limit
	}
	q.Set("limit", strconv.Itoa(limit))
	if req.Type != "" {
		q.Set("categories", req.Type)
	}
	if req.Keyword != "" {
		q.Set("query", req.Keyword)
	}
	if req.OpenNow {
		q.Set("open_now", "true")
	}
	if req.MaxPrice > 0 {
		q.Set("max_price", strconv.Itoa(req.MaxPrice))
	}
	if req.MinPrice > 0 {
		q.Set("min_price", strconv.Itoa(req.MinPrice))
	}

	fullURL := c.baseURL + foursquareSearch + "?" + q.Encode()

	var lastErr error
	delay := c.retryBaseDelay
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		raws, retryAfter, err := c.doSearch(ctx, fullURL)
		if err == nil {
			return raws, nil
		}
		lastErr = err

		if !types.IsRateLimited(err) {
			if m := metrics.Get(); m != nil {
				m.ProviderErrorsTotal.Add(ctx, 1)
			}
			return nil, err
		}
		if attempt == maxAttempts {
			break
		}

		wait := delay
		if retryAfter > 0 {
			wait = retryAfter
		}
		c.logger.WarnContext(ctx, "Provider rate limited, backing off",
			slog.Int("attempt", attempt),
			slog.Duration("wait", wait),
		)
		if m := metrics.Get(); m != nil {
			m.ProviderRetriesTotal.Add(ctx, 1)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		delay *= 2
	}

	if m := metrics.Get(); m != nil {
		m.ProviderErrorsTotal.Add(ctx, 1)
	}
	return nil, lastErr
}

func (c *FoursquareClient) doSearch(ctx context.Context, fullURL string) ([]types.RawPlace, time.Duration, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build provider request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, 0, fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		var retryAfter time.Duration
		if hint := resp.Header.Get("Retry-After"); hint != "" {
			if secs, parseErr := strconv.Atoi(hint); parseErr == nil {
				retryAfter = time.Duration(secs) * time.Second
			}
		}
		io.Copy(io.Discard, resp.Body)
		return nil, retryAfter, &types.ProviderError{
			StatusCode:  resp.StatusCode,
			Message:     "rate limited",
			RateLimited: true,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, 0, &types.ProviderError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}

	var parsed foursquareResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, 0, &types.ProviderError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("malformed provider response: %s", err),
		}
	}

	raws := make([]types.RawPlace, 0, len(parsed.Results))
	for _, p := range parsed.Results {
		raws = append(raws, foursquareToRaw(p))
	}
	return raws, 0, nil
}

func foursquareToRaw(p foursquarePlace) types.RawPlace {
	rawTypes := make([]string, 0, len(p.Categories))
	for _, cat := range p.Categories {
		name := cat.ShortName
		if name == "" {
			name = cat.Name
		}
		rawTypes = append(rawTypes, strings.ReplaceAll(strings.ToLower(name), " ", "_"))
	}

	address := p.Location.FormattedAddress
	if address == "" {
		address = p.Location.Address
	}
	if address == "" {
		address = p.Location.Locality
	}

	// Foursquare's free tier carries no rating, price, hours or photos;
	// the transformer synthesizes those fields deterministically.
	return types.RawPlace{
		ID:        p.FsqID,
		Name:      p.Name,
		Latitude:  p.Geocodes.Main.Latitude,
		Longitude: p.Geocodes.Main.Longitude,
		Types:     rawTypes,
		Address:   address,
	}
}
