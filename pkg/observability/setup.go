// Package observability escolhe o destino das métricas do console.
package observability

import (
	"fmt"

	"github.com/DataDog/datadog-go/v5/statsd"

	"github.com/Egles-vieira/bolt-console/pkg/config"
	"github.com/Egles-vieira/bolt-console/pkg/metrics"
)

// DatadogProvider adapta o cliente statsd do Datadog para metrics.Provider.
type DatadogProvider struct {
	client statsd.ClientInterface
}

func (d *DatadogProvider) Count(name string, value float64, tags []string) error {
	return d.client.Count(name, int64(value), tags, 1)
}

func (d *DatadogProvider) Gauge(name string, value float64, tags []string) error {
	return d.client.Gauge(name, value, tags, 1)
}

func (d *DatadogProvider) Histogram(name string, value float64, tags []string) error {
	return d.client.Histogram(name, value, tags, 1)
}

// Close esvazia o buffer do statsd.
func (d *DatadogProvider) Close() error {
	return d.client.Close()
}

// SetupMetrics devolve o Datadog quando habilitado e NoopProvider caso
// contrário. service vira a tag "service" de todas as métricas.
func SetupMetrics(cfg config.MetricsConf, service string) (metrics.Provider, error) {
	if !cfg.Datadog.Enabled {
		return &metrics.NoopProvider{}, nil
	}

	opts := []statsd.Option{statsd.WithNamespace(cfg.Datadog.Namespace)}
	if service != "" {
		opts = append(opts, statsd.WithTags([]string{metrics.Tag("service", service)}))
	}

	client, err := statsd.New(cfg.Datadog.Addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar no datadog statsd: %w", err)
	}

	return &DatadogProvider{client: client}, nil
}
