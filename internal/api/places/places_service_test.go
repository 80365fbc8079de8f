package places

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-nearby-places/internal/types"
)

// MockProvider is a mock implementation of Provider
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Search(ctx context.Context, req ProviderSearchRequest) ([]types.RawPlace, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.RawPlace), args.Error(1)
}

func (m *MockProvider) Name() string { return "mock" }

type stubPositions struct {
	pos  *types.GeoPosition
	revs []int64
	idx  int
}

func (s *stubPositions) Snapshot() (*types.GeoPosition, int64) {
	rev := s.revs[s.idx]
	if s.idx < len(s.revs)-1 {
		s.idx++
	}
	if s.pos == nil {
		return nil, rev
	}
	pos := *s.pos
	return &pos, rev
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(provider Provider, positions PositionSource) (*ServiceImpl, *Cache) {
	cache := NewCache()
	transformer := NewTransformer(cache, UnitMeters)
	svc := NewServiceImpl(provider, cache, transformer, positions, 10, 50, testLogger())
	return svc, cache
}

// One degree of latitude is ~111,195 m; these offsets place records at
// fixed distances from the test position.
func rawAtDistance(id, name string, meters float64) types.RawPlace {
	return types.RawPlace{
		ID:       id,
		Name:     name,
		Types:    []string{"restaurant"},
		Latitude: 40.7128 + meters/111194.93,
		Longitude: -74.0060,
	}
}

func TestSearch_SortsByDistanceAndClassifiesFood(t *testing.T) {
	provider := new(MockProvider)
	provider.On("Search", mock.Anything, mock.Anything).Return([]types.RawPlace{
		rawAtDistance("p-800", "Green Bowl", 800),
		rawAtDistance("p-1500", "Pasta Palace", 1500),
		rawAtDistance("p-600", "Corner Deli", 600),
	}, nil)

	positions := &stubPositions{
		pos:  &types.GeoPosition{Latitude: 40.7128, Longitude: -74.0060},
		revs: []int64{1},
	}
	svc, _ := newTestService(provider, positions)

	resp, err := svc.Search(context.Background(), types.Filter{
		MaxDistanceKm:      10,
		PriceRange:         [2]int{1, 4},
		SelectedCategories: []types.CategoryTag{types.CategoryFood},
	}, "")
	require.NoError(t, err)
	require.Len(t, resp.Results, 3)

	assert.Equal(t, "p-600", resp.Results[0].ID)
	assert.Equal(t, "p-800", resp.Results[1].ID)
	assert.Equal(t, "p-1500", resp.Results[2].ID)
	assert.InDelta(t, 600, resp.Results[0].Distance, 3)
	assert.InDelta(t, 800, resp.Results[1].Distance, 3)
	assert.InDelta(t, 1500, resp.Results[2].Distance, 3)
	for _, poi := range resp.Results {
		assert.Equal(t, types.CategoryFood, poi.Category)
	}
}

func TestSearch_MinRatingAppliedLast(t *testing.T) {
	low := rawAtDistance("p-low", "Corner Deli", 500)
	low.Rating = 3.7
	mid := rawAtDistance("p-mid", "Green Bowl", 700)
	mid.Rating = 4.6
	high := rawAtDistance("p-high", "Pasta Palace", 900)
	high.Rating = 4.9

	provider := new(MockProvider)
	provider.On("Search", mock.Anything, mock.Anything).Return([]types.RawPlace{low, mid, high}, nil)

	positions := &stubPositions{
		pos:  &types.GeoPosition{Latitude: 40.7128, Longitude: -74.0060},
		revs: []int64{1},
	}
	svc, _ := newTestService(provider, positions)

	resp, err := svc.Search(context.Background(), types.Filter{MinRating: 4.5}, "")
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "p-mid", resp.Results[0].ID)
	assert.Equal(t, "p-high", resp.Results[1].ID)
}

func TestSearch_NilPositionReturnsEmptyWithoutProviderCall(t *testing.T) {
	provider := new(MockProvider)
	positions := &stubPositions{pos: nil, revs: []int64{0}}
	svc, _ := newTestService(provider, positions)

	resp, err := svc.Search(context.Background(), types.Filter{}, "")
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
	provider.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestSearch_BarsFanOutAndDeduplicate(t *testing.T) {
	bar := types.RawPlace{
		ID: "b-1", Name: "Dive Bar", Types: []string{"bar"},
		Latitude: 40.7140, Longitude: -74.0060,
	}
	provider := new(MockProvider)
	provider.On("Search", mock.Anything, mock.Anything).Return([]types.RawPlace{bar}, nil)

	positions := &stubPositions{
		pos:  &types.GeoPosition{Latitude: 40.7128, Longitude: -74.0060},
		revs: []int64{1},
	}
	svc, _ := newTestService(provider, positions)

	resp, err := svc.Search(context.Background(), types.Filter{
		SelectedCategories: []types.CategoryTag{types.CategoryBars},
	}, "")
	require.NoError(t, err)

	// Four parallel sub-searches, one record after dedup
	provider.AssertNumberOfCalls(t, "Search", 4)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, types.CategoryBars, resp.Results[0].Category)
}

func TestSearch_IntentStrictFilter(t *testing.T) {
	pizzeria := rawAtDistance("p-pizza", "Tony's Pizzeria", 400)
	pizzeria.Rating = 4.6
	other := rawAtDistance("p-other", "Green Bowl", 300)
	other.Rating = 4.8

	provider := new(MockProvider)
	provider.On("Search", mock.Anything, mock.Anything).Return([]types.RawPlace{pizzeria, other}, nil)

	positions := &stubPositions{
		pos:  &types.GeoPosition{Latitude: 40.7128, Longitude: -74.0060},
		revs: []int64{1},
	}
	svc, _ := newTestService(provider, positions)

	resp, err := svc.Search(context.Background(), types.Filter{}, "I want pizza")
	require.NoError(t, err)
	require.NotNil(t, resp.Intent)
	assert.Equal(t, "cuisine_pizza", resp.Intent.ClassificationTag)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "p-pizza", resp.Results[0].ID)
}

func TestSearch_IntentRelaxedFallback(t *testing.T) {
	wellRated := rawAtDistance("p-good", "Green Bowl", 300)
	wellRated.Rating = 4.6
	poorlyRated := rawAtDistance("p-meh", "Corner Deli", 200)
	poorlyRated.Rating = 3.9

	provider := new(MockProvider)
	provider.On("Search", mock.Anything, mock.Anything).Return([]types.RawPlace{wellRated, poorlyRated}, nil)

	positions := &stubPositions{
		pos:  &types.GeoPosition{Latitude: 40.7128, Longitude: -74.0060},
		revs: []int64{1},
	}
	svc, _ := newTestService(provider, positions)

	// Nothing matches "pizza" strictly, so the relaxed filter keeps
	// well-rated food places
	resp, err := svc.Search(context.Background(), types.Filter{}, "I want pizza")
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "p-good", resp.Results[0].ID)
}

func TestSearch_FailedBranchContributesEmptySet(t *testing.T) {
	provider := new(MockProvider)
	provider.On("Search", mock.Anything, mock.Anything).Return(nil, &types.ProviderError{StatusCode: 500, Message: "boom"})

	positions := &stubPositions{
		pos:  &types.GeoPosition{Latitude: 40.7128, Longitude: -74.0060},
		revs: []int64{1},
	}
	svc, _ := newTestService(provider, positions)

	resp, err := svc.Search(context.Background(), types.Filter{
		SelectedCategories: []types.CategoryTag{types.CategoryFood},
	}, "")
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
}

func TestSearch_ProviderUnavailableIsFatal(t *testing.T) {
	provider := new(MockProvider)
	provider.On("Search", mock.Anything, mock.Anything).Return(nil, types.ErrProviderUnavailable)

	positions := &stubPositions{
		pos:  &types.GeoPosition{Latitude: 40.7128, Longitude: -74.0060},
		revs: []int64{1},
	}
	svc, _ := newTestService(provider, positions)

	_, err := svc.Search(context.Background(), types.Filter{}, "")
	assert.ErrorIs(t, err, types.ErrProviderUnavailable)
}

func TestSearch_SupersededByNewerPosition(t *testing.T) {
	provider := new(MockProvider)
	provider.On("Search", mock.Anything, mock.Anything).Return([]types.RawPlace{
		rawAtDistance("p-1", "Green Bowl", 500),
	}, nil)

	// Revision advances between the opening snapshot and the closing
	// epoch check
	positions := &stubPositions{
		pos:  &types.GeoPosition{Latitude: 40.7128, Longitude: -74.0060},
		revs: []int64{1, 2},
	}
	svc, _ := newTestService(provider, positions)

	_, err := svc.Search(context.Background(), types.Filter{}, "")
	assert.ErrorIs(t, err, types.ErrSearchSuperseded)
}

func TestSearch_CacheClearedOnRevisionAdvance(t *testing.T) {
	first := rawAtDistance("p-1", "Green Bowl", 500)
	first.Rating = 4.0

	provider := new(MockProvider)
	provider.On("Search", mock.Anything, mock.Anything).Return([]types.RawPlace{first}, nil).Once()

	positions := &stubPositions{
		pos:  &types.GeoPosition{Latitude: 40.7128, Longitude: -74.0060},
		revs: []int64{1},
	}
	svc, cache := newTestService(provider, positions)

	_, err := svc.Search(context.Background(), types.Filter{}, "")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Len())

	// Same id, new rating after the user moved: the cleared cache lets
	// the fresh value through
	second := first
	second.Rating = 4.5
	provider.On("Search", mock.Anything, mock.Anything).Return([]types.RawPlace{second}, nil)
	positions.revs = []int64{2}
	positions.idx = 0

	resp, err := svc.Search(context.Background(), types.Filter{}, "")
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, 4.5, resp.Results[0].Rating)
}
