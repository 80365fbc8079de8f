package favorites

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/FACorreiaa/go-nearby-places/internal/api"
	"github.com/FACorreiaa/go-nearby-places/internal/types"
)

type HandlerImpl struct {
	favoritesService Service
	logger           *slog.Logger
}

func NewHandlerImpl(favoritesService Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		favoritesService: favoritesService,
		logger:           logger,
	}
}

// List handles GET /favorites.
func (h *HandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	api.WriteJSONResponse(w, r, http.StatusOK, h.favoritesService.List())
}

// Add handles POST /favorites.
func (h *HandlerImpl) Add(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("handler", "AddFavorite"))

	var poi types.PointOfInterest
	if err := api.DecodeJSONBody(w, r, &poi); err != nil {
		l.ErrorContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if poi.ID == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "place id is required")
		return
	}

	entry := h.favoritesService.Add(poi)
	api.WriteJSONResponse(w, r, http.StatusCreated, entry)
}

// Remove handles DELETE /favorites/{placeID}.
func (h *HandlerImpl) Remove(w http.ResponseWriter, r *http.Request) {
	placeID := chi.URLParam(r, "placeID")
	if placeID == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "place id is required")
		return
	}
	h.favoritesService.Remove(placeID)
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}
