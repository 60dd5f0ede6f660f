package query

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Entry é o valor guardado no cache para uma chave.
type Entry struct {
	Key         Key             `json:"key"`
	Data        json.RawMessage `json:"data"`
	FetchedAt   time.Time       `json:"fetched_at"`
	StaleAfter  time.Time       `json:"stale_after"`
	Invalidated bool            `json:"invalidated,omitempty"`
	LastUsed    time.Time       `json:"last_used"`
}

// Fresh indica se a entrada ainda pode ser servida sem revalidação.
func (e *Entry) Fresh(now time.Time) bool {
	return !e.Invalidated && now.Before(e.StaleAfter)
}

// Cache é o armazenamento das leituras. As implementações devem ser seguras
// para uso concorrente.
type Cache interface {
	// Get retorna uma cópia da entrada e atualiza seu último uso.
	Get(ctx context.Context, key Key) (*Entry, bool, error)
	Set(ctx context.Context, entry *Entry) error
	// Invalidate marca como invalidadas as entradas que casam com o predicado
	// e retorna quantas foram marcadas.
	Invalidate(ctx context.Context, match Predicate) (int, error)
	// Evict remove entradas sem uso desde o instante informado.
	Evict(ctx context.Context, unusedSince time.Time) (int, error)
	Len(ctx context.Context) (int, error)
}

// MemoryCache guarda as entradas em memória, no próprio processo.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]*Entry
	now     func() time.Time
}

// NewMemoryCache cria um cache vazio.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]*Entry),
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key Key) (*Entry, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key.Hash()]
	if !ok {
		return nil, false, nil
	}
	e.LastUsed = c.now()
	cp := *e
	return &cp, true, nil
}

func (c *MemoryCache) Set(_ context.Context, entry *Entry) error {
	cp := *entry
	if cp.LastUsed.IsZero() {
		cp.LastUsed = c.now()
	}

	c.mu.Lock()
	c.entries[entry.Key.Hash()] = &cp
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Invalidate(_ context.Context, match Predicate) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, e := range c.entries {
		if match(e.Key) {
			e.Invalidated = true
			n++
		}
	}
	return n, nil
}

func (c *MemoryCache) Evict(_ context.Context, unusedSince time.Time) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for h, e := range c.entries {
		if e.LastUsed.Before(unusedSince) {
			delete(c.entries, h)
			n++
		}
	}
	return n, nil
}

func (c *MemoryCache) Len(_ context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries), nil
}
