package places

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-nearby-places/internal/api"
	"github.com/FACorreiaa/go-nearby-places/internal/types"
)

type HandlerImpl struct {
	placesService Service
	logger        *slog.Logger
}

func NewHandlerImpl(placesService Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		placesService: placesService,
		logger:        logger,
	}
}

// SearchRequest is the POST body for a place search. The position comes
// from the location service, not the request.
type SearchRequest struct {
	OpenNow            bool                `json:"open_now"`
	MinRating          float64             `json:"min_rating"`
	MaxDistance        float64             `json:"max_distance"`
	PriceRange         [2]int              `json:"price_range"`
	SelectedCategories []types.CategoryTag `json:"selected_categories"`
	Query              string              `json:"query"`
}

// Search handles POST /places/search.
func (h *HandlerImpl) Search(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlacesHandler").Start(r.Context(), "Search", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/places/search"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "Search"))

	var req SearchRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	h.runSearch(w, r, req)
}

// SearchGet handles GET /places/search with query parameters, the
// convenience surface for manual refresh links.
func (h *HandlerImpl) SearchGet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := SearchRequest{
		OpenNow: q.Get("open_now") == "true",
		Query:   q.Get("query"),
	}
	if v := q.Get("min_rating"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			req.MinRating = f
		}
	}
	if v := q.Get("max_distance"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			req.MaxDistance = f
		}
	}
	for _, c := range strings.Split(q.Get("categories"), ",") {
		if c = strings.TrimSpace(c); c != "" {
			req.SelectedCategories = append(req.SelectedCategories, types.CategoryTag(c))
		}
	}

	h.runSearch(w, r, req)
}

func (h *HandlerImpl) runSearch(w http.ResponseWriter, r *http.Request, req SearchRequest) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Search"))

	filters := types.Filter{
		OpenNow:            req.OpenNow,
		MinRating:          req.MinRating,
		MaxDistanceKm:      req.MaxDistance,
		PriceRange:         req.PriceRange,
		SelectedCategories: req.SelectedCategories,
	}

	resp, err := h.placesService.Search(ctx, filters, req.Query)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrSearchSuperseded):
			l.InfoContext(ctx, "Search superseded by newer position")
			api.ErrorResponse(w, r, http.StatusConflict, "search superseded by a newer position; retry")
		case errors.Is(err, types.ErrProviderUnavailable):
			l.ErrorContext(ctx, "Places provider unavailable", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusServiceUnavailable, "places provider unavailable; try reloading")
		default:
			var pe *types.ProviderError
			if errors.As(err, &pe) {
				l.ErrorContext(ctx, "Provider request failed", slog.Any("error", err))
				api.ErrorResponse(w, r, http.StatusBadGateway, pe.Error())
				return
			}
			l.ErrorContext(ctx, "Search failed", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "search failed")
		}
		return
	}

	// An empty result set is a successful outcome, not an error.
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}
