package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/FACorreiaa/go-nearby-places/internal/api/favorites"
	"github.com/FACorreiaa/go-nearby-places/internal/api/location"
	"github.com/FACorreiaa/go-nearby-places/internal/api/places"
)

// Config contains dependencies needed for the router setup
type Config struct {
	PlacesHandler    *places.HandlerImpl
	LocationHandler  *location.HandlerImpl
	FavoritesHandler *favorites.HandlerImpl
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (logger, requestID, recoverer) are applied
// before mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/location", func(r chi.Router) {
			r.Get("/", cfg.LocationHandler.GetState)
			r.Put("/current", cfg.LocationHandler.SetCurrent)
			r.Post("/search", cfg.LocationHandler.SearchNamed)
		})

		r.Route("/places", func(r chi.Router) {
			r.Post("/search", cfg.PlacesHandler.Search)
			r.Get("/search", cfg.PlacesHandler.SearchGet)
		})

		r.Route("/favorites", func(r chi.Router) {
			r.Get("/", cfg.FavoritesHandler.List)
			r.Post("/", cfg.FavoritesHandler.Add)
			r.Delete("/{placeID}", cfg.FavoritesHandler.Remove)
		})
	})

	return r
}
