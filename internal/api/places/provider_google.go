package places

import (
	"context"
	"fmt"
	"log/slog"

	"googlemaps.github.io/maps"

	"github.com/FACorreiaa/go-nearby-places/internal/types"
)

// GoogleClient backs the Provider interface with the Google Places SDK.
// The SDK's callback-free Go surface already matches the request/response
// contract, so no extra wrapping is needed here.
type GoogleClient struct {
	client *maps.Client
	logger *slog.Logger
}

var _ Provider = (*GoogleClient)(nil)

// NewGoogleClient builds the maps client. A construction failure is the
// SDK-unavailable case: fatal for any search using this provider and not
// retried automatically.
func NewGoogleClient(apiKey string, logger *slog.Logger) (*GoogleClient, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrProviderUnavailable, err)
	}
	return &GoogleClient{client: client, logger: logger}, nil
}

func (c *GoogleClient) Name() string { return "google" }

func (c *GoogleClient) Search(ctx context.Context, req ProviderSearchRequest) ([]types.RawPlace, error) {
	searchReq := &maps.NearbySearchRequest{
		Location: &maps.LatLng{Lat: req.Latitude, Lng: req.Longitude},
		Radius:   uint(req.RadiusMeters),
		Keyword:  req.Keyword,
		OpenNow:  req.OpenNow,
	}
	if req.Type != "" {
		searchReq.Type = maps.PlaceType(req.Type)
	}
	if req.MinPrice > 0 {
		searchReq.MinPrice = googlePriceLevel(req.MinPrice)
	}
	if req.MaxPrice > 0 {
		searchReq.MaxPrice = googlePriceLevel(req.MaxPrice)
	}

	resp, err := c.client.NearbySearch(ctx, searchReq)
	if err != nil {
		c.logger.ErrorContext(ctx, "Google nearby search failed", slog.Any("error", err))
		return nil, &types.ProviderError{Message: err.Error()}
	}

	raws := make([]types.RawPlace, 0, len(resp.Results))
	for _, r := range resp.Results {
		raws = append(raws, googleToRaw(r))
	}
	return raws, nil
}

func googleToRaw(r maps.PlacesSearchResult) types.RawPlace {
	raw := types.RawPlace{
		ID:        r.PlaceID,
		Name:      r.Name,
		Latitude:  r.Geometry.Location.Lat,
		Longitude: r.Geometry.Location.Lng,
		Types:     r.Types,
		Rating:    float64(r.Rating),
		Reviews:   r.UserRatingsTotal,
		PriceTier: r.PriceLevel,
		Address:   r.Vicinity,
	}
	if r.OpeningHours != nil {
		raw.OpenNow = r.OpeningHours.OpenNow
		for _, period := range r.OpeningHours.Periods {
			if period.Close.Time > raw.LatestClose {
				raw.LatestClose = period.Close.Time
			}
		}
	}
	// Photo URLs need a separate Place Photo request; the transformer
	// falls back to the category placeholder set instead.
	return raw
}

func googlePriceLevel(tier int) maps.PriceLevel {
	switch tier {
	case 1:
		return maps.PriceLevelInexpensive
	case 2:
		return maps.PriceLevelModerate
	case 3:
		return maps.PriceLevelExpensive
	case 4:
		return maps.PriceLevelVeryExpensive
	default:
		return maps.PriceLevelFree
	}
}
