package metrics

import (
	"strings"

	"github.com/domulabs/domu/internal/config"
	"go.opentelemetry.io/otel/attribute"
	otelprometheus "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
)

var Module = fx.Module("metrics",
	fx.Provide(NewMeterProvider),
	fx.Provide(NewHTTPMetrics),
)

// Config carries the labels stamped onto every instrument.
type Config struct {
	ServiceName string
	Environment string
}

// NewMeterProvider exposes OpenTelemetry instruments through the default
// prometheus registry, scraped at /metrics.
func NewMeterProvider(cfg config.Config) (metric.MeterProvider, error) {
	exporter, err := otelprometheus.New()
	if err != nil {
		return nil, err
	}
	return sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter)), nil
}

var sensitiveLabelKeys = []string{
	"password",
	"secret",
	"token",
	"authorization",
}

// FilterAttributes drops attributes with sensitive keys.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		key := strings.ToLower(strings.TrimSpace(string(attr.Key)))
		sensitive := false
		for _, needle := range sensitiveLabelKeys {
			if strings.Contains(key, needle) {
				sensitive = true
				break
			}
		}
		if sensitive {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
