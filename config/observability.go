package config

// ObservabilityConfig contains metrics configuration.
type ObservabilityConfig struct {
	// MetricsEnabled exposes prometheus metrics at /metrics when true.
	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`
}
