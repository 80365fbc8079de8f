package places

import (
	"math"

	"github.com/patrickmn/go-cache"

	"github.com/FACorreiaa/go-nearby-places/internal/types"
)

// Cache keeps the transformed record for each provider place id so
// rating/price/reviews stay stable across repeated fetches in a session.
// Entries never expire on their own; the orchestrator clears the whole
// cache when the position revision advances.
type Cache struct {
	store *cache.Cache
}

func NewCache() *Cache {
	return &Cache{
		store: cache.New(cache.NoExpiration, 0),
	}
}

func (c *Cache) Get(id string) (types.PointOfInterest, bool) {
	v, found := c.store.Get(id)
	if !found {
		return types.PointOfInterest{}, false
	}
	return v.(types.PointOfInterest), true
}

func (c *Cache) Put(id string, poi types.PointOfInterest) {
	c.store.Set(id, poi, cache.NoExpiration)
}

func (c *Cache) Clear() {
	c.store.Flush()
}

func (c *Cache) Len() int {
	return c.store.ItemCount()
}

// idHash is a polynomial hash over the id's bytes. It only needs to be
// stable, not cryptographic: the same id must synthesize the same values
// across cache clears so re-visiting a location stays visually consistent.
func idHash(id string) uint64 {
	var h uint64
	for i := 0; i < len(id); i++ {
		h = h*31 + uint64(id[i])
	}
	return h
}

// SynthesizedRating derives a deterministic rating in [3.5, 5.0], step
// 0.1, for providers that return no rating.
func SynthesizedRating(id string) float64 {
	steps := idHash(id) % 16 // 3.5 .. 5.0 inclusive
	return math.Round((3.5+float64(steps)*0.1)*10) / 10
}

// SynthesizedPrice derives a deterministic price tier in 1..4.
func SynthesizedPrice(id string) int {
	return int(idHash(id)/16%4) + 1
}

// SynthesizedReviews derives a deterministic review count in 5..104.
func SynthesizedReviews(id string) int {
	return int(idHash(id)/64%100) + 5
}
