package location

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-nearby-places/internal/api"
	"github.com/FACorreiaa/go-nearby-places/internal/types"
)

type HandlerImpl struct {
	locationService Service
	logger          *slog.Logger
}

func NewHandlerImpl(locationService Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		locationService: locationService,
		logger:          logger,
	}
}

// GetState handles GET /location.
func (h *HandlerImpl) GetState(w http.ResponseWriter, r *http.Request) {
	api.WriteJSONResponse(w, r, http.StatusOK, h.locationService.State())
}

// DeviceFixRequest carries a device geolocation result pushed by the
// client. The browser should request the fix with a 10s timeout and
// maximumAge 0 so each push reflects the current position, not a cached
// one; a failed attempt reports Error instead of coordinates.
type DeviceFixRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Error     string   `json:"error"`
}

// SetCurrent handles PUT /location/current.
func (h *HandlerImpl) SetCurrent(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("LocationHandler").Start(r.Context(), "SetCurrent", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/location/current"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "SetCurrent"))

	var req DeviceFixRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if req.Error != "" {
		h.locationService.ReportDeviceError(req.Error)
		api.WriteJSONResponse(w, r, http.StatusOK, h.locationService.State())
		return
	}

	if req.Latitude == nil || req.Longitude == nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "latitude and longitude are required")
		return
	}

	revision, err := h.locationService.SetCurrentPosition(*req.Latitude, *req.Longitude)
	if err != nil {
		l.ErrorContext(ctx, "Invalid device fix", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	span.SetAttributes(semconv.HTTPResponseStatusCodeKey.Int(http.StatusOK))
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"success":  true,
		"revision": revision,
	})
}

type namedLocationRequest struct {
	Query string `json:"query"`
}

// SearchNamed handles POST /location/search.
func (h *HandlerImpl) SearchNamed(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("LocationHandler").Start(r.Context(), "SearchNamed", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/location/search"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "SearchNamed"))

	var req namedLocationRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "query is required")
		return
	}

	pos, place, err := h.locationService.ResolveNamedLocation(ctx, req.Query)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrLocationNotFound):
			l.InfoContext(ctx, "No match for named location", slog.String("query", req.Query))
			api.ErrorResponse(w, r, http.StatusNotFound, "no location matched that search")
		case errors.Is(err, types.ErrSearchSuperseded):
			api.ErrorResponse(w, r, http.StatusConflict, "superseded by a newer location search")
		default:
			l.ErrorContext(ctx, "Geocode failed", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusBadGateway, "location search failed; try again")
		}
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"position": pos,
		"place":    place,
	})
}
