package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pageQuery(page int, release <-chan struct{}) Query[stats] {
	return Query[stats]{
		Key: NewKey("transportadoras", map[string]any{"page": page, "limit": 10}),
		Fetch: func(context.Context) (stats, error) {
			if release != nil {
				<-release
			}
			return stats{Total: page}, nil
		},
		StaleTime:        time.Minute,
		KeepPreviousData: true,
	}
}

func TestObserver(t *testing.T) {
	ctx := context.Background()

	t.Run("mantém a página anterior enquanto a nova carrega", func(t *testing.T) {
		c := newTestClient(&clock{now: time.Now()})
		var o Observer[stats]

		first, err := o.Fetch(ctx, c, pageQuery(1, nil))
		require.NoError(t, err)
		assert.Equal(t, 1, first.Data.Total)

		release := make(chan struct{})
		next := pageQuery(2, release)
		peek := o.Peek(ctx, c, next)
		assert.Equal(t, StatusPlaceholder, peek.Status)
		assert.Equal(t, 1, peek.Data.Total)
		assert.True(t, peek.IsFetching())

		close(release)
		assert.Eventually(t, func() bool {
			r := o.Peek(ctx, c, next)
			return r.Status == StatusFresh && r.Data.Total == 2
		}, time.Second, 5*time.Millisecond)

		last, ok := o.Last()
		require.True(t, ok)
		assert.Equal(t, 2, last.Data.Total)
	})

	t.Run("sem manter dados anteriores fica carregando", func(t *testing.T) {
		c := newTestClient(&clock{now: time.Now()})
		var o Observer[stats]

		_, err := o.Fetch(ctx, c, pageQuery(1, nil))
		require.NoError(t, err)

		release := make(chan struct{})
		defer close(release)
		q := pageQuery(2, release)
		q.KeepPreviousData = false

		r := o.Peek(ctx, c, q)
		assert.Equal(t, StatusLoading, r.Status)
		assert.False(t, r.HasData())
	})

	t.Run("leitura desabilitada", func(t *testing.T) {
		c := newTestClient(&clock{now: time.Now()})
		var o Observer[stats]
		q := pageQuery(1, nil)
		q.Disabled = true

		assert.Equal(t, StatusDisabled, o.Peek(ctx, c, q).Status)
		_, ok := o.Last()
		assert.False(t, ok)
	})
}
