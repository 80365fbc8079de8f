package types

import (
	"errors"
	"fmt"
)

var (
	// ErrLocationUnavailable means no device fix could be obtained; the user
	// can recover by entering a location manually.
	ErrLocationUnavailable = errors.New("location unavailable")

	// ErrLocationNotFound means a named-location query matched nothing. The
	// previous position is discarded so the UI never shows results for a
	// place the user navigated away from.
	ErrLocationNotFound = errors.New("location not found")

	// ErrProviderUnavailable means the provider client itself failed to
	// initialize. Fatal for the current search, never retried automatically.
	ErrProviderUnavailable = errors.New("places provider unavailable")

	// ErrSearchSuperseded means the position revision advanced while the
	// search was in flight; the stale results were discarded.
	ErrSearchSuperseded = errors.New("search superseded by newer position")
)

// ProviderError carries the upstream status for failed provider requests.
// RateLimited requests are retried with backoff before this surfaces.
type ProviderError struct {
	StatusCode  int
	Message     string
	RateLimited bool
}

func (e *ProviderError) Error() string {
	if e.RateLimited {
		return fmt.Sprintf("provider rate limited (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider request failed (status %d): %s", e.StatusCode, e.Message)
}

// IsRateLimited reports whether err is a rate-limit ProviderError.
func IsRateLimited(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.RateLimited
}
