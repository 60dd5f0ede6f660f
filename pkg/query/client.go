package query

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Egles-vieira/bolt-console/pkg/metrics"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Options configura um Client. Apenas Cache é obrigatório.
type Options struct {
	Cache Cache
	// Retry é o número padrão de novas tentativas de uma leitura que falhou.
	Retry int
	// RetryDelay é o atraso da primeira nova tentativa; dobra a cada uma,
	// limitado a 30s.
	RetryDelay time.Duration
	// Retryable decide se um erro merece nova tentativa. Nulo = sempre.
	Retryable func(error) bool
	// FetchTimeout limita cada busca compartilhada.
	FetchTimeout time.Duration
	Metrics      *metrics.Recorder
	Logger       zerolog.Logger
	Now          func() time.Time
}

// Stats são contadores acumulados desde a criação do Client.
type Stats struct {
	Entries       int   `json:"entries"`
	Hits          int64 `json:"hits"`
	StaleHits     int64 `json:"stale_hits"`
	Misses        int64 `json:"misses"`
	Fetches       int64 `json:"fetches"`
	FetchErrors   int64 `json:"fetch_errors"`
	Invalidations int64 `json:"invalidations"`
	Evictions     int64 `json:"evictions"`
}

// Client coordena leituras, escritas e invalidações sobre um Cache.
type Client struct {
	cache   Cache
	opts    Options
	log     zerolog.Logger
	metrics *metrics.Recorder
	now     func() time.Time

	group singleflight.Group

	// flights guarda as buscas em andamento para que uma invalidação
	// concorrente marque o resultado delas como inválido.
	mu      sync.Mutex
	flights map[string]*flight

	hits, staleHits, misses, fetches, fetchErrors, invalidations, evictions atomic.Int64
}

type flight struct {
	key         Key
	invalidated bool
}

// NewClient cria um Client. Sem cache informado, usa um MemoryCache.
func NewClient(opts Options) *Client {
	if opts.Cache == nil {
		opts.Cache = NewMemoryCache()
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 30 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Client{
		cache:   opts.Cache,
		opts:    opts,
		log:     opts.Logger.With().Str("component", "query_client").Logger(),
		metrics: opts.Metrics,
		now:     opts.Now,
		flights: make(map[string]*flight),
	}
}

// Cache expõe o armazenamento usado pelo Client.
func (c *Client) Cache() Cache {
	return c.cache
}

// Invalidate marca as entradas que casam com o predicado, inclusive buscas
// ainda em andamento, para que a próxima leitura vá ao backend.
func (c *Client) Invalidate(ctx context.Context, match Predicate) (int, error) {
	c.mu.Lock()
	for _, f := range c.flights {
		if match(f.key) {
			f.invalidated = true
		}
	}
	c.mu.Unlock()

	n, err := c.cache.Invalidate(ctx, match)
	c.invalidations.Add(int64(n))
	c.metrics.Add("query.invalidated", float64(n))
	return n, err
}

// InvalidateFamilies é um atalho para Invalidate(ctx, Families(...)).
func (c *Client) InvalidateFamilies(ctx context.Context, families ...string) (int, error) {
	return c.Invalidate(ctx, Families(families...))
}

// Collect remove entradas sem uso há mais de gcTime.
func (c *Client) Collect(ctx context.Context, gcTime time.Duration) (int, error) {
	n, err := c.cache.Evict(ctx, c.now().Add(-gcTime))
	c.evictions.Add(int64(n))
	return n, err
}

// RunCollector executa Collect periodicamente até o contexto encerrar.
// Intervalo ou gcTime não positivos desligam a coleta.
func (c *Client) RunCollector(ctx context.Context, every, gcTime time.Duration) {
	if every <= 0 || gcTime <= 0 {
		c.log.Warn().Dur("every", every).Dur("gc_time", gcTime).Msg("coleta do cache desligada")
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := c.Collect(ctx, gcTime)
			if err != nil {
				c.log.Warn().Err(err).Msg("falha na coleta do cache")
				continue
			}
			if n > 0 {
				c.log.Debug().Int("removidas", n).Msg("entradas antigas removidas do cache")
			}
		}
	}
}

// Stats retorna um retrato dos contadores.
func (c *Client) Stats(ctx context.Context) Stats {
	entries, err := c.cache.Len(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("falha ao contar entradas do cache")
	}
	return Stats{
		Entries:       entries,
		Hits:          c.hits.Load(),
		StaleHits:     c.staleHits.Load(),
		Misses:        c.misses.Load(),
		Fetches:       c.fetches.Load(),
		FetchErrors:   c.fetchErrors.Load(),
		Invalidations: c.invalidations.Load(),
		Evictions:     c.evictions.Load(),
	}
}

type rawFetcher func(ctx context.Context) (json.RawMessage, error)

// load busca a chave no backend, agrupando chamadas concorrentes. A busca
// compartilhada roda num contexto desacoplado do chamador: quem desiste
// apenas descarta o resultado.
func (c *Client) load(ctx context.Context, key Key, staleTime time.Duration, retries int, fetch rawFetcher) <-chan singleflight.Result {
	hash := key.Hash()
	return c.group.DoChan(hash, func() (any, error) {
		f := &flight{key: key}
		c.mu.Lock()
		c.flights[hash] = f
		c.mu.Unlock()
		defer func() {
			c.mu.Lock()
			delete(c.flights, hash)
			c.mu.Unlock()
		}()

		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.opts.FetchTimeout)
		defer cancel()

		c.fetches.Add(1)
		start := c.now()
		data, err := c.fetchWithRetry(fctx, retries, fetch)
		c.metrics.Timing("query.fetch", c.now().Sub(start), metrics.Tag("family", key.Family()))
		if err != nil {
			c.fetchErrors.Add(1)
			c.metrics.Incr("query.error", metrics.Tag("family", key.Family()))
			return nil, err
		}

		now := c.now()
		entry := &Entry{
			Key:        key,
			Data:       data,
			FetchedAt:  now,
			StaleAfter: now.Add(staleTime),
			LastUsed:   now,
		}

		// A gravação acontece sob o lock para não cruzar com uma invalidação.
		c.mu.Lock()
		entry.Invalidated = f.invalidated
		err = c.cache.Set(fctx, entry)
		c.mu.Unlock()
		if err != nil {
			c.log.Warn().Err(err).Str("key", key.String()).Msg("falha ao gravar no cache")
		}
		return entry, nil
	})
}

func (c *Client) fetchWithRetry(ctx context.Context, retries int, fetch rawFetcher) (json.RawMessage, error) {
	delay := c.opts.RetryDelay
	for attempt := 0; ; attempt++ {
		data, err := fetch(ctx)
		if err == nil {
			return data, nil
		}
		if attempt >= retries || !c.retryable(err) {
			return nil, err
		}

		c.log.Debug().Err(err).Int("tentativa", attempt+1).Msg("leitura falhou, tentando novamente")
		select {
		case <-ctx.Done():
			return nil, err
		case <-time.After(delay):
		}
		delay *= 2
		if delay > 30*time.Second {
			delay = 30 * time.Second
		}
	}
}

func (c *Client) retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if c.opts.Retryable == nil {
		return true
	}
	return c.opts.Retryable(err)
}
