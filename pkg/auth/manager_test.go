package auth

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedFetcher(token string, ttl time.Duration, err error) TokenFetcher {
	return func(context.Context) (string, time.Duration, error) {
		return token, ttl, err
	}
}

func TestManager_Token(t *testing.T) {
	t.Run("erro antes do Start", func(t *testing.T) {
		mgr := NewManager(fixedFetcher("", 0, nil), zerolog.Nop())
		_, err := mgr.Token(context.Background())
		assert.ErrorIs(t, err, ErrNotStarted)
	})

	t.Run("Start busca o primeiro token", func(t *testing.T) {
		var calls atomic.Int32
		mgr := NewManager(func(context.Context) (string, time.Duration, error) {
			calls.Add(1)
			return "token-1", time.Hour, nil
		}, zerolog.Nop())
		defer mgr.Stop()

		require.NoError(t, mgr.Start(context.Background()))

		token, err := mgr.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "token-1", token)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("falha inicial é devolvida", func(t *testing.T) {
		mgr := NewManager(fixedFetcher("", 0, errors.New("fora do ar")), zerolog.Nop())
		err := mgr.Start(context.Background())
		assert.ErrorContains(t, err, "fora do ar")
	})

	t.Run("renova antes de expirar", func(t *testing.T) {
		var calls atomic.Int32
		mgr := NewManager(func(context.Context) (string, time.Duration, error) {
			n := calls.Add(1)
			if n == 1 {
				return "primeiro", 20 * time.Millisecond, nil
			}
			return "renovado", time.Hour, nil
		}, zerolog.Nop())
		defer mgr.Stop()

		require.NoError(t, mgr.Start(context.Background()))

		assert.Eventually(t, func() bool {
			token, _ := mgr.Token(context.Background())
			return token == "renovado"
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("Stop pode ser chamado duas vezes", func(t *testing.T) {
		mgr := NewManager(fixedFetcher("x", time.Hour, nil), zerolog.Nop())
		mgr.Stop()
		assert.NotPanics(t, mgr.Stop)
	})
}

func TestRenewAfter(t *testing.T) {
	assert.Equal(t, 5*time.Minute, renewAfter(0))
	assert.Equal(t, 80*time.Second, renewAfter(100*time.Second))
}
