package places

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/go-nearby-places/app/observability/metrics"
	"github.com/FACorreiaa/go-nearby-places/internal/types"
)

const (
	defaultRadiusMeters = 10000

	// relaxedFallbackMinRating gates the relaxed intent filter when the
	// strict filter matches nothing.
	relaxedFallbackMinRating = 4.2
)

var _ Service = (*ServiceImpl)(nil)

// PositionSource supplies the current user position and its revision.
type PositionSource interface {
	Snapshot() (*types.GeoPosition, int64)
}

// Service defines the business logic contract for place searches.
type Service interface {
	Search(ctx context.Context, filters types.Filter, freeText string) (*types.SearchResponse, error)
}

type ServiceImpl struct {
	logger       *slog.Logger
	provider     Provider
	cache        *Cache
	transformer  *Transformer
	positions    PositionSource
	radiusKm     float64
	maxResults   int
	lastRevision int64
	mu           sync.Mutex
}

func NewServiceImpl(provider Provider, cache *Cache, transformer *Transformer, positions PositionSource, defaultRadiusKm float64, maxResults int, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:       logger,
		provider:     provider,
		cache:        cache,
		transformer:  transformer,
		positions:    positions,
		radiusKm:     defaultRadiusKm,
		maxResults:   maxResults,
		lastRevision: -1,
	}
}

// Search runs the full orchestration: request construction, concurrent
// provider fan-out, dedup, transform, intent post-filter, rating filter,
// distance sort. A nil position resolves immediately to an empty result.
func (s *ServiceImpl) Search(ctx context.Context, filters types.Filter, freeText string) (*types.SearchResponse, error) {
	ctx, span := otel.Tracer("PlacesService").Start(ctx, "Search", trace.WithAttributes(
		attribute.String("provider", s.provider.Name()),
	))
	defer span.End()
	start := time.Now()

	position, revision := s.positions.Snapshot()
	if position == nil {
		span.AddEvent("No position available, returning empty result set.")
		return &types.SearchResponse{Results: []types.PointOfInterest{}, Revision: revision}, nil
	}

	var intent *types.SearchIntent
	if strings.TrimSpace(freeText) != "" {
		parsed := ClassifyIntent(freeText)
		intent = &parsed
		span.SetAttributes(attribute.String("intent.tag", parsed.ClassificationTag))
	}

	// Moving to a new position invalidates the whole cache so stale
	// distances never leak into a new area. Synthesized ratings survive
	// the clear because they hash the place id.
	s.mu.Lock()
	if revision != s.lastRevision {
		s.cache.Clear()
		s.lastRevision = revision
	}
	s.mu.Unlock()

	requests := s.buildRequests(*position, filters, intent)
	span.SetAttributes(attribute.Int("fanout.requests", len(requests)))

	raws, err := s.executeAll(ctx, requests)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	pois := make([]types.PointOfInterest, 0, len(raws))
	for _, raw := range raws {
		pois = append(pois, s.transformer.Transform(raw, *position))
	}

	if intent != nil && intent.ClassificationTag != "general_search" {
		pois = applyIntentFilter(pois, intent.ClassificationTag)
	}
	if barsOnly(filters.SelectedCategories) {
		pois = filterByCategory(pois, types.CategoryBars)
	}

	// Min-rating is the final universal filter, regardless of intent.
	if filters.MinRating > 0 {
		filtered := pois[:0]
		for _, poi := range pois {
			if poi.Rating >= filters.MinRating {
				filtered = append(filtered, poi)
			}
		}
		pois = filtered
	}

	sort.SliceStable(pois, func(i, j int) bool {
		return pois[i].Distance < pois[j].Distance
	})
	if s.maxResults > 0 && len(pois) > s.maxResults {
		pois = pois[:s.maxResults]
	}

	// Epoch guard: if the user moved while this search was in flight,
	// these results describe a stale position and must not win.
	if _, current := s.positions.Snapshot(); current != revision {
		span.AddEvent("Position revision advanced mid-search, discarding results.")
		return nil, types.ErrSearchSuperseded
	}

	if m := metrics.Get(); m != nil {
		m.SearchRequestsTotal.Add(ctx, 1)
		m.SearchDurationSeconds.Record(ctx, time.Since(start).Seconds())
	}
	span.SetAttributes(attribute.Int("results.count", len(pois)))
	span.SetStatus(codes.Ok, "Search completed")

	if pois == nil {
		pois = []types.PointOfInterest{}
	}

	return &types.SearchResponse{
		Results:  pois,
		Count:    len(pois),
		Revision: revision,
		Intent:   intent,
	}, nil
}

// barSubSearches reproduces the dedicated bars fan-out: bars hide behind
// several provider types, so one typed search misses most of them.
var barSubSearches = []struct {
	providerType string
	keyword      string
}{
	{"bar", "bar pub tavern"},
	{"restaurant", "bar grill pub tavern"},
	{"night_club", ""},
	{"restaurant", "sports bar lounge"},
}

func (s *ServiceImpl) buildRequests(position types.GeoPosition, filters types.Filter, intent *types.SearchIntent) []ProviderSearchRequest {
	base := ProviderSearchRequest{
		Latitude:     position.Latitude,
		Longitude:    position.Longitude,
		RadiusMeters: defaultRadiusMeters,
		OpenNow:      filters.OpenNow,
		MinPrice:     filters.PriceRange[0],
		MaxPrice:     filters.PriceRange[1],
	}
	if filters.MaxDistanceKm > 0 {
		base.RadiusMeters = int(filters.MaxDistanceKm * 1000)
	} else if s.radiusKm > 0 {
		base.RadiusMeters = int(s.radiusKm * 1000)
	}

	if intent != nil {
		req := base
		req.Type = intent.ProviderType
		req.Keyword = intent.ProviderKeyword
		return []ProviderSearchRequest{req}
	}

	if len(filters.SelectedCategories) == 0 {
		return []ProviderSearchRequest{base}
	}

	var requests []ProviderSearchRequest
	var nonBarCategories []types.CategoryTag
	for _, tag := range filters.SelectedCategories {
		if tag == types.CategoryBars {
			for _, sub := range barSubSearches {
				req := base
				req.Type = sub.providerType
				req.Keyword = sub.keyword
				requests = append(requests, req)
			}
			continue
		}
		nonBarCategories = append(nonBarCategories, tag)
	}

	for _, providerType := range MapCategoriesToProvider(nonBarCategories) {
		req := base
		req.Type = providerType
		requests = append(requests, req)
	}
	return requests
}

// executeAll fans the requests out concurrently and merges by provider
// id, first-seen wins. A branch that fails contributes an empty set so a
// single slow or broken sub-search cannot sink the whole result; only a
// provider that cannot initialize at all is fatal.
func (s *ServiceImpl) executeAll(ctx context.Context, requests []ProviderSearchRequest) ([]types.RawPlace, error) {
	var mu sync.Mutex
	seen := make(map[string]struct{})
	var merged []types.RawPlace

	g, gctx := errgroup.WithContext(ctx)
	for _, req := range requests {
		req := req
		g.Go(func() error {
			raws, err := s.provider.Search(gctx, req)
			if err != nil {
				if errors.Is(err, types.ErrProviderUnavailable) {
					return err
				}
				s.logger.WarnContext(gctx, "Search branch failed, contributing empty set",
					slog.String("type", req.Type),
					slog.Any("error", err),
				)
				return nil
			}
			mu.Lock()
			for _, raw := range raws {
				if raw.ID == "" {
					continue
				}
				if _, dup := seen[raw.ID]; dup {
					continue
				}
				seen[raw.ID] = struct{}{}
				merged = append(merged, raw)
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return merged, nil
}

// intentTerms drives the strict post-filter for non-cuisine tags.
var intentTerms = map[string][]string{
	"movie":  {"cinema", "movie", "theater", "theatre", "film"},
	"park":   {"park", "garden", "playground", "trail"},
	"sports": {"stadium", "arena", "sports", "bowling", "golf"},
}

// cuisineDescriptors widens cuisine matching for well-rated food places.
var cuisineDescriptors = map[string][]string{
	"pizza":   {"pizza", "pizzeria", "italian"},
	"sushi":   {"sushi", "japanese"},
	"burger":  {"burger", "american", "grill"},
	"mexican": {"mexican", "taco", "burrito", "cantina"},
	"chinese": {"chinese", "dim sum", "dumpling", "noodle"},
	"italian": {"italian", "pasta", "trattoria", "pizzeria"},
	"thai":    {"thai"},
	"indian":  {"indian", "curry"},
	"coffee":  {"coffee", "cafe", "espresso"},
}

var intentExpectedCategory = map[string]types.CategoryTag{
	"movie":          types.CategoryAttractions,
	"park":           types.CategoryAttractions,
	"sports":         types.CategoryActivities,
	"dining_general": types.CategoryFood,
}

// applyIntentFilter applies the strict per-tag filter; when the strict
// pass yields nothing it falls back to well-rated places in the matching
// app category so the user never sees an empty screen for a plausible
// query.
func applyIntentFilter(pois []types.PointOfInterest, tag string) []types.PointOfInterest {
	expected := intentExpectedCategory[tag]
	var strictMatch func(types.PointOfInterest) bool

	switch {
	case strings.HasPrefix(tag, "cuisine_"):
		cuisine := strings.TrimPrefix(tag, "cuisine_")
		expected = types.CategoryFood
		descriptors := cuisineDescriptors[cuisine]
		strictMatch = func(poi types.PointOfInterest) bool {
			if poiMatchesTerms(poi, []string{cuisine}) {
				return true
			}
			return poi.Category == types.CategoryFood && poi.Rating >= 4.0 && poiMatchesTerms(poi, descriptors)
		}
	case tag == "dining_general":
		strictMatch = func(poi types.PointOfInterest) bool {
			return poi.Category == types.CategoryFood
		}
	default:
		terms := intentTerms[tag]
		if terms == nil {
			return pois
		}
		strictMatch = func(poi types.PointOfInterest) bool {
			return poiMatchesTerms(poi, terms)
		}
	}

	var strict []types.PointOfInterest
	for _, poi := range pois {
		if strictMatch(poi) {
			strict = append(strict, poi)
		}
	}
	if len(strict) > 0 {
		return strict
	}

	var relaxed []types.PointOfInterest
	for _, poi := range pois {
		if poi.Category == expected && poi.Rating >= relaxedFallbackMinRating {
			relaxed = append(relaxed, poi)
		}
	}
	return relaxed
}

func poiMatchesTerms(poi types.PointOfInterest, terms []string) bool {
	haystack := strings.ToLower(poi.Name + " " + poi.Subcategory + " " + strings.Join(poi.Tags, " "))
	for _, term := range terms {
		if strings.Contains(haystack, term) {
			return true
		}
	}
	return false
}

func filterByCategory(pois []types.PointOfInterest, tag types.CategoryTag) []types.PointOfInterest {
	filtered := pois[:0]
	for _, poi := range pois {
		if poi.Category == tag {
			filtered = append(filtered, poi)
		}
	}
	return filtered
}

func barsOnly(tags []types.CategoryTag) bool {
	if len(tags) == 0 {
		return false
	}
	for _, tag := range tags {
		if tag != types.CategoryBars {
			return false
		}
	}
	return true
}
