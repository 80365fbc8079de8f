package favorites

import (
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/FACorreiaa/go-nearby-places/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service keeps the user's favorited places for the session. The store is
// in-memory on purpose: favorites lived in browser localStorage in the
// client app, and the server holds no durable state.
type Service interface {
	Add(poi types.PointOfInterest) Entry
	Remove(placeID string)
	List() []Entry
	IsFavorite(placeID string) bool
}

// Entry wraps a favorited place with bookkeeping fields.
type Entry struct {
	EntryID uuid.UUID             `json:"entry_id"`
	SavedAt time.Time             `json:"saved_at"`
	Place   types.PointOfInterest `json:"place"`
}

type ServiceImpl struct {
	logger *slog.Logger
	store  *cache.Cache
}

func NewServiceImpl(logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		store:  cache.New(cache.NoExpiration, 0),
	}
}

// Add favorites a place, silently replacing any previous entry for the
// same id.
func (s *ServiceImpl) Add(poi types.PointOfInterest) Entry {
	entry := Entry{
		EntryID: uuid.New(),
		SavedAt: time.Now(),
		Place:   poi,
	}
	s.store.Set(poi.ID, entry, cache.NoExpiration)
	s.logger.Debug("Place favorited", slog.String("placeID", poi.ID))
	return entry
}

// Remove unfavorites a place. Removing an absent id is a no-op.
func (s *ServiceImpl) Remove(placeID string) {
	s.store.Delete(placeID)
}

func (s *ServiceImpl) List() []Entry {
	items := s.store.Items()
	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		entries = append(entries, item.Object.(Entry))
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].SavedAt.Before(entries[j].SavedAt)
	})
	return entries
}

func (s *ServiceImpl) IsFavorite(placeID string) bool {
	_, found := s.store.Get(placeID)
	return found
}
