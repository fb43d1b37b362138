package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// ProvisioningMetrics counts the fan-out work done when buildings and
// utilities are created.
type ProvisioningMetrics struct {
	provisionedRecords *prometheus.CounterVec
	failures           *prometheus.CounterVec
}

var (
	provisioningMetricsOnce sync.Once
	provisioningMetrics     *ProvisioningMetrics
)

func Provisioning() *ProvisioningMetrics {
	return ProvisioningWithConfig(Config{})
}

func ProvisioningWithConfig(cfg Config) *ProvisioningMetrics {
	provisioningMetricsOnce.Do(func() {
		provisioningMetrics = newProvisioningMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return provisioningMetrics
}

func ResetProvisioningMetricsForTest() {
	provisioningMetricsOnce = sync.Once{}
	provisioningMetrics = nil
}

func newProvisioningMetrics(registerer prometheus.Registerer, cfg Config) *ProvisioningMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "domu"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}

	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	provisionedRecords := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "domu_provisioned_records_total",
			Help:        "Records created by provisioning fan-out, by record type.",
			ConstLabels: constLabels,
		},
		[]string{"record"}, // utility | apartment | subscription
	)

	failures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "domu_provisioning_failures_total",
			Help:        "Provisioning transactions rolled back, by operation.",
			ConstLabels: constLabels,
		},
		[]string{"operation"},
	)

	registerer.MustRegister(
		provisionedRecords,
		failures,
	)

	return &ProvisioningMetrics{
		provisionedRecords: provisionedRecords,
		failures:           failures,
	}
}

func (m *ProvisioningMetrics) RecordProvisioned(utilities, apartments, subscriptions int) {
	if m == nil {
		return
	}
	if utilities > 0 {
		m.provisionedRecords.WithLabelValues("utility").Add(float64(utilities))
	}
	if apartments > 0 {
		m.provisionedRecords.WithLabelValues("apartment").Add(float64(apartments))
	}
	if subscriptions > 0 {
		m.provisionedRecords.WithLabelValues("subscription").Add(float64(subscriptions))
	}
}

func (m *ProvisioningMetrics) RecordFailure(operation string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(operation).Inc()
}
