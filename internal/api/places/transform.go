package places

import (
	"fmt"
	"strings"

	"github.com/FACorreiaa/go-nearby-places/internal/types"
)

// placeholderImages stand in when the provider returns no photo; keyed by
// app category so cards still look reasonable.
var placeholderImages = map[types.CategoryTag]string{
	types.CategoryFood:        "https://images.unsplash.com/photo-1517248135467-4c7edcad34c4?w=800&auto=format&fit=crop",
	types.CategoryBars:        "https://images.unsplash.com/photo-1514933651103-005eec06c04b?w=800&auto=format&fit=crop",
	types.CategoryAttractions: "https://images.unsplash.com/photo-1544970828-5a98e7055193?w=800&auto=format&fit=crop",
	types.CategoryActivities:  "https://images.unsplash.com/photo-1534438327276-14e5300c3a48?w=800&auto=format&fit=crop",
}

// Transformer converts raw provider records into canonical points of
// interest, using the cache for per-id stability and the configured
// display unit for distances.
type Transformer struct {
	cache        *Cache
	distanceUnit string
}

func NewTransformer(cache *Cache, distanceUnit string) *Transformer {
	return &Transformer{
		cache:        cache,
		distanceUnit: distanceUnit,
	}
}

// Transform builds the canonical record for a raw place. A cache hit
// keeps rating, price range, reviews and category from the cached entry
// and refreshes only the position-dependent fields; distance is always
// recomputed against the current user position and never cached.
func (t *Transformer) Transform(raw types.RawPlace, userPos types.GeoPosition) types.PointOfInterest {
	meters := HaversineMeters(userPos.Latitude, userPos.Longitude, raw.Latitude, raw.Longitude)
	distance := DisplayDistance(meters, t.distanceUnit)

	if cached, found := t.cache.Get(raw.ID); found {
		cached.Distance = distance
		cached.OpenNow = raw.OpenNow
		t.cache.Put(raw.ID, cached)
		return cached
	}

	category := ClassifyRecord(raw)

	rating := raw.Rating
	if rating == 0 {
		rating = SynthesizedRating(raw.ID)
	}
	priceRange := raw.PriceTier
	if priceRange == 0 {
		priceRange = SynthesizedPrice(raw.ID)
	}
	reviews := raw.Reviews
	if reviews == 0 {
		reviews = SynthesizedReviews(raw.ID)
	}
	image := raw.PhotoURL
	if image == "" {
		image = placeholderImages[category]
	}

	var subcategory string
	tags := make([]string, 0, len(raw.Types))
	for _, rt := range raw.Types {
		tags = append(tags, strings.ReplaceAll(rt, "_", " "))
	}
	if len(tags) > 0 {
		subcategory = tags[0]
	}

	description := raw.Address
	if description == "" {
		description = "Located nearby"
	} else {
		description = fmt.Sprintf("Located in %s", raw.Address)
	}

	poi := types.PointOfInterest{
		ID:          raw.ID,
		Name:        raw.Name,
		Category:    category,
		Subcategory: subcategory,
		Description: description,
		Rating:      rating,
		Reviews:     reviews,
		Image:       image,
		Location: types.Location{
			Latitude:  raw.Latitude,
			Longitude: raw.Longitude,
			Address:   raw.Address,
		},
		PriceRange: priceRange,
		OpenNow:    raw.OpenNow,
		Distance:   distance,
		Tags:       tags,
	}

	t.cache.Put(raw.ID, poi)
	return poi
}
