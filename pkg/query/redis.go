package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache compartilha o cache entre instâncias do console. A expiração por
// falta de uso fica a cargo do TTL do Redis, renovado a cada leitura.
type RedisCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisCache cria o cache usando prefix nas chaves do Redis. ttl é o tempo
// sem uso após o qual a entrada some (0 = sem expiração).
func NewRedisCache(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisCache {
	if prefix == "" {
		prefix = "console:query:"
	}
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *RedisCache) redisKey(k Key) string {
	return c.prefix + k.Hash()
}

func (c *RedisCache) Get(ctx context.Context, key Key) (*Entry, bool, error) {
	raw, err := c.client.GetEx(ctx, c.redisKey(key), c.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("erro ao ler cache no redis: %w", err)
	}

	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, false, fmt.Errorf("entrada de cache corrompida: %w", err)
	}
	e.LastUsed = time.Now()
	return &e, true, nil
}

func (c *RedisCache) Set(ctx context.Context, entry *Entry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("erro ao serializar entrada: %w", err)
	}
	if err := c.client.Set(ctx, c.redisKey(entry.Key), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("erro ao gravar cache no redis: %w", err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context, match Predicate) (int, error) {
	n := 0
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		rk := iter.Val()
		raw, err := c.client.Get(ctx, rk).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return n, fmt.Errorf("erro ao ler %s: %w", rk, err)
		}

		var e Entry
		if err := json.Unmarshal(raw, &e); err != nil || !match(e.Key) {
			continue
		}
		e.Invalidated = true
		updated, err := json.Marshal(&e)
		if err != nil {
			return n, err
		}
		if err := c.client.Set(ctx, rk, updated, redis.KeepTTL).Err(); err != nil {
			return n, fmt.Errorf("erro ao invalidar %s: %w", rk, err)
		}
		n++
	}
	if err := iter.Err(); err != nil {
		return n, fmt.Errorf("erro ao varrer chaves do cache: %w", err)
	}
	return n, nil
}

// Evict não faz nada: o Redis expira as entradas sozinho.
func (c *RedisCache) Evict(context.Context, time.Time) (int, error) {
	return 0, nil
}

func (c *RedisCache) Len(ctx context.Context) (int, error) {
	n := 0
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		n++
	}
	return n, iter.Err()
}
