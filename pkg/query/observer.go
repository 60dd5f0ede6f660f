package query

import (
	"context"
	"sync"
)

// Observer acompanha uma leitura cuja chave muda ao longo do tempo (por
// exemplo, a página de uma listagem) e lembra o último resultado com dado.
type Observer[T any] struct {
	mu   sync.Mutex
	last *Result[T]
}

// Fetch funciona como a função Fetch e registra o resultado.
func (o *Observer[T]) Fetch(ctx context.Context, c *Client, q Query[T]) (Result[T], error) {
	res, err := Fetch(ctx, c, q)
	if err == nil && res.HasData() {
		o.remember(res)
	}
	return res, err
}

// Peek nunca bloqueia. Com dado em cache, devolve-o; caso contrário dispara a
// busca e devolve o dado da chave anterior (StatusPlaceholder) quando a
// leitura mantém dados anteriores, ou StatusLoading.
func (o *Observer[T]) Peek(ctx context.Context, c *Client, q Query[T]) Result[T] {
	if q.Disabled {
		return Result[T]{Key: q.Key, Status: StatusDisabled}
	}

	if res, ok := cached(ctx, c, q); ok {
		o.remember(res)
		return res
	}
	c.load(ctx, q.Key, q.StaleTime, retries(c, q), encode(q.Fetch))

	o.mu.Lock()
	defer o.mu.Unlock()
	if q.KeepPreviousData && o.last != nil {
		return Result[T]{
			Key:       o.last.Key,
			Data:      o.last.Data,
			Status:    StatusPlaceholder,
			FetchedAt: o.last.FetchedAt,
		}
	}
	return Result[T]{Key: q.Key, Status: StatusLoading}
}

// Last retorna o último resultado com dado, se houver.
func (o *Observer[T]) Last() (Result[T], bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.last == nil {
		return Result[T]{}, false
	}
	return *o.last, true
}

func (o *Observer[T]) remember(res Result[T]) {
	o.mu.Lock()
	o.last = &res
	o.mu.Unlock()
}
