package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	SearchRequestsTotal   metric.Int64Counter
	SearchDurationSeconds metric.Float64Histogram
	ProviderRetriesTotal  metric.Int64Counter
	ProviderErrorsTotal   metric.Int64Counter
	GeocodeRequestsTotal  metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metric instruments only once,
// using the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("NearbyPlacesAPI")
		var err error
		m := &AppMetrics{}

		m.SearchRequestsTotal, err = meter.Int64Counter(
			"search_requests_total",
			metric.WithDescription("Total number of place searches completed"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create search_requests_total: %v", err)
		}

		m.SearchDurationSeconds, err = meter.Float64Histogram(
			"search_duration_seconds",
			metric.WithDescription("Duration of place searches in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create search_duration_seconds: %v", err)
		}

		m.ProviderRetriesTotal, err = meter.Int64Counter(
			"provider_retries_total",
			metric.WithDescription("Total number of rate-limited provider requests retried"),
			metric.WithUnit("{retry}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create provider_retries_total: %v", err)
		}

		m.ProviderErrorsTotal, err = meter.Int64Counter(
			"provider_errors_total",
			metric.WithDescription("Total number of provider requests that failed after retries"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create provider_errors_total: %v", err)
		}

		m.GeocodeRequestsTotal, err = meter.Int64Counter(
			"geocode_requests_total",
			metric.WithDescription("Total number of named-location geocode lookups"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create geocode_requests_total: %v", err)
		}

		appMetrics = m
	})
}

// Get returns the global metrics instance. InitAppMetrics must have run.
func Get() *AppMetrics {
	return appMetrics
}
