package metrics

import (
	"time"

	"github.com/rs/zerolog/log"
)

// Provider define o contrato para envio de métricas.
// Isso permite trocar Datadog por Prometheus ou Logging sem alterar a lógica de negócio.
type Provider interface {
	Count(name string, value float64, tags []string) error
	Gauge(name string, value float64, tags []string) error
	Histogram(name string, value float64, tags []string) error
}

// NoopProvider é usado quando as métricas estão desabilitadas.
type NoopProvider struct{}

func (n *NoopProvider) Count(name string, value float64, tags []string) error     { return nil }
func (n *NoopProvider) Gauge(name string, value float64, tags []string) error     { return nil }
func (n *NoopProvider) Histogram(name string, value float64, tags []string) error { return nil }

// Tag monta uma tag no formato chave:valor do statsd.
func Tag(key, value string) string {
	return key + ":" + value
}

// Recorder envolve um Provider aplicando um prefixo comum aos nomes.
// Falhas de envio são apenas registradas em debug: métrica nunca derruba
// uma requisição.
type Recorder struct {
	provider Provider
	prefix   string
}

// NewRecorder cria um Recorder. Um provider nulo vira NoopProvider.
func NewRecorder(p Provider, prefix string) *Recorder {
	if p == nil {
		p = &NoopProvider{}
	}
	return &Recorder{provider: p, prefix: prefix}
}

// Incr incrementa um contador em 1.
func (r *Recorder) Incr(name string, tags ...string) {
	r.Add(name, 1, tags...)
}

// Add incrementa um contador em n.
func (r *Recorder) Add(name string, n float64, tags ...string) {
	if r == nil {
		return
	}
	if err := r.provider.Count(r.name(name), n, tags); err != nil {
		log.Debug().Err(err).Str("metric", name).Msg("falha ao enviar métrica")
	}
}

// Gauge registra o valor atual de uma grandeza.
func (r *Recorder) Gauge(name string, v float64, tags ...string) {
	if r == nil {
		return
	}
	if err := r.provider.Gauge(r.name(name), v, tags); err != nil {
		log.Debug().Err(err).Str("metric", name).Msg("falha ao enviar métrica")
	}
}

// Timing registra uma duração em milissegundos.
func (r *Recorder) Timing(name string, d time.Duration, tags ...string) {
	if r == nil {
		return
	}
	if err := r.provider.Histogram(r.name(name), float64(d.Milliseconds()), tags); err != nil {
		log.Debug().Err(err).Str("metric", name).Msg("falha ao enviar métrica")
	}
}

func (r *Recorder) name(n string) string {
	if r.prefix == "" {
		return n
	}
	return r.prefix + "." + n
}
