package query

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Egles-vieira/bolt-console/pkg/metrics"
)

// Status descreve de onde veio o dado de um Result.
type Status string

const (
	// StatusDisabled: a leitura não estava habilitada e nada foi buscado.
	StatusDisabled Status = "disabled"
	// StatusFresh: servido do cache dentro do prazo de validade.
	StatusFresh Status = "fresh"
	// StatusStale: servido do cache vencido; uma revalidação foi disparada.
	StatusStale Status = "stale"
	// StatusFetched: buscado agora no backend.
	StatusFetched Status = "fetched"
	// StatusLoading: ainda sem dado; a busca segue em segundo plano.
	StatusLoading Status = "loading"
	// StatusPlaceholder: dado da chave anterior exibido enquanto a nova carrega.
	StatusPlaceholder Status = "placeholder"
)

// Query descreve uma leitura.
type Query[T any] struct {
	Key   Key
	Fetch func(ctx context.Context) (T, error)
	// Disabled impede a busca: o resultado é "sem dado ainda", sem erro.
	Disabled bool
	// StaleTime é por quanto tempo o dado é servido sem revalidação.
	StaleTime time.Duration
	// NoRetry desliga as novas tentativas do Client para esta leitura.
	NoRetry bool
	// KeepPreviousData mantém o dado anterior visível durante a troca de
	// chave (paginação). Só tem efeito via Observer.
	KeepPreviousData bool
}

// Result é o resultado de uma leitura.
type Result[T any] struct {
	Key       Key       `json:"-"`
	Data      T         `json:"data"`
	Status    Status    `json:"status"`
	FetchedAt time.Time `json:"fetched_at,omitempty"`
}

// HasData indica se Data carrega um valor vindo do backend.
func (r Result[T]) HasData() bool {
	switch r.Status {
	case StatusFresh, StatusStale, StatusFetched, StatusPlaceholder:
		return true
	}
	return false
}

// IsFetching indica se há uma busca em segundo plano para esta chave.
func (r Result[T]) IsFetching() bool {
	switch r.Status {
	case StatusStale, StatusLoading, StatusPlaceholder:
		return true
	}
	return false
}

// Fetch executa a leitura q, bloqueando até haver dado ou erro.
//
// Leituras desabilitadas retornam StatusDisabled sem tocar a rede. Entradas
// velhas são devolvidas na hora e revalidadas em segundo plano. Entradas
// ausentes ou invalidadas disparam uma busca, compartilhada com outros
// chamadores da mesma chave. Falhas não alteram o cache.
func Fetch[T any](ctx context.Context, c *Client, q Query[T]) (Result[T], error) {
	if q.Disabled {
		return Result[T]{Key: q.Key, Status: StatusDisabled}, nil
	}

	if res, ok := cached(ctx, c, q); ok {
		return res, nil
	}

	select {
	case r := <-c.load(ctx, q.Key, q.StaleTime, retries(c, q), encode(q.Fetch)):
		if r.Err != nil {
			return Result[T]{Key: q.Key}, r.Err
		}
		return decode[T](r.Val.(*Entry), StatusFetched)
	case <-ctx.Done():
		return Result[T]{Key: q.Key}, ctx.Err()
	}
}

// Prefetch aquece o cache para q sem esperar o resultado.
func Prefetch[T any](ctx context.Context, c *Client, q Query[T]) {
	if q.Disabled {
		return
	}
	if _, ok := cached(ctx, c, q); ok {
		return
	}
	c.load(ctx, q.Key, q.StaleTime, retries(c, q), encode(q.Fetch))
}

// cached consulta o cache. Uma entrada velha dispara a revalidação.
func cached[T any](ctx context.Context, c *Client, q Query[T]) (Result[T], bool) {
	family := metrics.Tag("family", q.Key.Family())

	entry, ok, err := c.cache.Get(ctx, q.Key)
	if err != nil {
		c.log.Warn().Err(err).Str("key", q.Key.String()).Msg("cache indisponível, buscando no backend")
	}
	if !ok || entry.Invalidated {
		c.misses.Add(1)
		c.metrics.Incr("query.miss", family)
		return Result[T]{}, false
	}

	status := StatusFresh
	if !entry.Fresh(c.now()) {
		status = StatusStale
	}
	res, err := decode[T](entry, status)
	if err != nil {
		c.log.Warn().Err(err).Str("key", q.Key.String()).Msg("entrada de cache incompatível")
		c.misses.Add(1)
		return Result[T]{}, false
	}

	if status == StatusStale {
		c.staleHits.Add(1)
		c.metrics.Incr("query.stale", family)
		c.load(ctx, q.Key, q.StaleTime, retries(c, q), encode(q.Fetch))
	} else {
		c.hits.Add(1)
		c.metrics.Incr("query.hit", family)
	}
	return res, true
}

func retries[T any](c *Client, q Query[T]) int {
	if q.NoRetry {
		return 0
	}
	return c.opts.Retry
}

func encode[T any](fetch func(ctx context.Context) (T, error)) rawFetcher {
	return func(ctx context.Context) (json.RawMessage, error) {
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("erro ao serializar resultado: %w", err)
		}
		return raw, nil
	}
}

func decode[T any](e *Entry, status Status) (Result[T], error) {
	var data T
	if err := json.Unmarshal(e.Data, &data); err != nil {
		return Result[T]{Key: e.Key}, fmt.Errorf("erro ao decodificar entrada %s: %w", e.Key, err)
	}
	return Result[T]{Key: e.Key, Data: data, Status: status, FetchedAt: e.FetchedAt}, nil
}
