package container

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/FACorreiaa/go-nearby-places/config"
	"github.com/FACorreiaa/go-nearby-places/internal/api/favorites"
	"github.com/FACorreiaa/go-nearby-places/internal/api/location"
	"github.com/FACorreiaa/go-nearby-places/internal/api/places"
)

// Container holds all application dependencies
type Container struct {
	Config           *config.Config
	Logger           *slog.Logger
	PlacesCache      *places.Cache
	LocationService  *location.ServiceImpl
	PlacesService    *places.ServiceImpl
	FavoritesService *favorites.ServiceImpl
	PlacesHandler    *places.HandlerImpl
	LocationHandler  *location.HandlerImpl
	FavoritesHandler *favorites.HandlerImpl
}

// NewContainer initializes and returns a new dependency container
func NewContainer(cfg *config.Config, logger *slog.Logger) (*Container, error) {
	provider, err := newProvider(cfg, logger)
	if err != nil {
		return nil, err
	}

	geocoder := location.NewNominatimClient(cfg.Geocoder.BaseURL, cfg.Geocoder.Timeout)
	locationService := location.NewServiceImpl(geocoder, logger)

	placesCache := places.NewCache()
	transformer := places.NewTransformer(placesCache, cfg.Search.DistanceUnit)
	placesService := places.NewServiceImpl(
		provider,
		placesCache,
		transformer,
		locationService,
		cfg.Search.DefaultRadiusKm,
		cfg.Search.MaxResults,
		logger,
	)

	favoritesService := favorites.NewServiceImpl(logger)

	return &Container{
		Config:           cfg,
		Logger:           logger,
		PlacesCache:      placesCache,
		LocationService:  locationService,
		PlacesService:    placesService,
		FavoritesService: favoritesService,
		PlacesHandler:    places.NewHandlerImpl(placesService, logger),
		LocationHandler:  location.NewHandlerImpl(locationService, logger),
		FavoritesHandler: favorites.NewHandlerImpl(favoritesService, logger),
	}, nil
}

// newProvider selects the upstream places client from config. The API key
// comes from the environment; the client objects own it instead of a
// module-level global so independent containers never share state.
func newProvider(cfg *config.Config, logger *slog.Logger) (places.Provider, error) {
	apiKey := os.Getenv(cfg.Provider.APIKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("provider API key env %s is not set", cfg.Provider.APIKeyEnv)
	}

	switch cfg.Provider.Name {
	case "google":
		return places.NewGoogleClient(apiKey, logger)
	case "foursquare", "":
		return places.NewFoursquareClient(apiKey, cfg.Provider.BaseURL, cfg.Provider.Limit, logger), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider.Name)
	}
}
