package location

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-nearby-places/app/observability/metrics"
	"github.com/FACorreiaa/go-nearby-places/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service owns the user's current position. The position is replaced
// wholesale on every new fix; each replacement bumps a monotonic revision
// counter, which is the only signal consumers use to detect "the user
// moved". Two fixes at the same coordinate with different revisions are
// distinct search epochs.
type Service interface {
	SetCurrentPosition(lat, lng float64) (int64, error)
	ReportDeviceError(message string)
	ResolveNamedLocation(ctx context.Context, text string) (types.GeoPosition, string, error)
	Snapshot() (*types.GeoPosition, int64)
	State() State
}

// State is the position triple exposed to the presentation layer.
type State struct {
	Position  *types.GeoPosition `json:"position"`
	Revision  int64              `json:"revision"`
	LastError string             `json:"last_error,omitempty"`
	Place     string             `json:"place,omitempty"`
}

type ServiceImpl struct {
	logger   *slog.Logger
	geocoder Geocoder

	mu        sync.Mutex
	position  *types.GeoPosition
	revision  int64
	lastError string
	place     string

	// resolveToken guards against out-of-order geocode resolutions: a
	// completion whose token is no longer the latest is discarded.
	resolveToken atomic.Int64
}

func NewServiceImpl(geocoder Geocoder, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:   logger,
		geocoder: geocoder,
	}
}

// SetCurrentPosition applies a device geolocation fix pushed by the
// client. Returns the new revision.
func (s *ServiceImpl) SetCurrentPosition(lat, lng float64) (int64, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return 0, fmt.Errorf("coordinate out of range: %f,%f", lat, lng)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.position = &types.GeoPosition{Latitude: lat, Longitude: lng}
	s.revision++
	s.lastError = ""
	s.place = ""
	s.logger.Info("Position updated from device fix", slog.Int64("revision", s.revision))
	return s.revision, nil
}

// ReportDeviceError records a failed device geolocation attempt
// (permission denied, timeout, unsupported). The position is left
// unchanged; the error is terminal for that attempt.
func (s *ServiceImpl) ReportDeviceError(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = message
	s.logger.Warn("Device geolocation failed", slog.String("error", message))
}

// ResolveNamedLocation geocodes free-form text and replaces the position
// on success. On a no-match the previous position is cleared rather than
// kept: a failed named search must not silently keep showing results for
// a stale place.
func (s *ServiceImpl) ResolveNamedLocation(ctx context.Context, text string) (types.GeoPosition, string, error) {
	ctx, span := otel.Tracer("LocationService").Start(ctx, "ResolveNamedLocation", trace.WithAttributes(
		attribute.String("query", text),
	))
	defer span.End()

	token := s.resolveToken.Add(1)
	if m := metrics.Get(); m != nil {
		m.GeocodeRequestsTotal.Add(ctx, 1)
	}

	pos, place, err := s.geocoder.Resolve(ctx, text)

	s.mu.Lock()
	defer s.mu.Unlock()

	// A newer resolve started while this one was in flight: the latest
	// request wins, this result is dropped.
	if token != s.resolveToken.Load() {
		span.AddEvent("Stale geocode resolution discarded.")
		return types.GeoPosition{}, "", types.ErrSearchSuperseded
	}

	if err != nil {
		span.RecordError(err)
		s.lastError = err.Error()
		if errors.Is(err, types.ErrLocationNotFound) {
			s.position = nil
			s.place = ""
			s.revision++
		}
		return types.GeoPosition{}, "", err
	}

	s.position = &pos
	s.place = place
	s.revision++
	s.lastError = ""
	span.SetStatus(codes.Ok, "Location resolved")
	s.logger.InfoContext(ctx, "Position updated from named location",
		slog.String("place", place),
		slog.Int64("revision", s.revision),
	)
	return pos, place, nil
}

// Snapshot returns the current position (copy) and revision atomically.
func (s *ServiceImpl) Snapshot() (*types.GeoPosition, int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.position == nil {
		return nil, s.revision
	}
	pos := *s.position
	return &pos, s.revision
}

func (s *ServiceImpl) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := State{
		Revision:  s.revision,
		LastError: s.lastError,
		Place:     s.place,
	}
	if s.position != nil {
		pos := *s.position
		state.Position = &pos
	}
	return state
}
