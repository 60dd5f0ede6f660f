package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoles(t *testing.T) {
	r, err := ParseRole(" Gestor ")
	require.NoError(t, err)
	assert.Equal(t, RoleGestor, r)

	_, err = ParseRole("visitante")
	assert.Error(t, err)

	user := Roles(RoleOperador)
	assert.True(t, user.HasAny(nil))
	assert.False(t, user.HasAny(Roles(RoleAdmin, RoleGestor)))
	assert.True(t, Roles(RoleGestor).HasAny(Roles(RoleAdmin, RoleGestor)))
}

func TestSessions(t *testing.T) {
	s := NewSessions("segredo")
	ana := User{ID: "42", Name: "Ana", Roles: Roles(RoleAdmin)}

	t.Run("cabeçalho Bearer", func(t *testing.T) {
		token, err := s.Issue(ana, time.Hour)
		require.NoError(t, err)

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer "+token)

		got, err := s.Authenticate(r)
		require.NoError(t, err)
		assert.Equal(t, ana, got)
	})

	t.Run("cookie de sessão", func(t *testing.T) {
		token, err := s.Issue(ana, time.Hour)
		require.NoError(t, err)

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})

		got, err := s.Authenticate(r)
		require.NoError(t, err)
		assert.Equal(t, "42", got.ID)
	})

	t.Run("sem token", func(t *testing.T) {
		_, err := s.Authenticate(httptest.NewRequest(http.MethodGet, "/", nil))
		assert.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("token expirado", func(t *testing.T) {
		old := NewSessions("segredo")
		old.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, err := old.Issue(ana, time.Hour)
		require.NoError(t, err)

		_, err = s.Parse(token)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("assinatura de outro segredo", func(t *testing.T) {
		token, err := NewSessions("outro").Issue(ana, time.Hour)
		require.NoError(t, err)

		_, err = s.Parse(token)
		assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
	})

	t.Run("papéis desconhecidos são descartados", func(t *testing.T) {
		token, err := s.Issue(User{ID: "1", Roles: RoleSet{"root", RoleGestor}}, time.Hour)
		require.NoError(t, err)

		got, err := s.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, Roles(RoleGestor), got.Roles)
	})

	t.Run("usuário no contexto", func(t *testing.T) {
		ctx := WithUser(context.Background(), ana)
		got, ok := UserFrom(ctx)
		assert.True(t, ok)
		assert.Equal(t, ana, got)

		_, ok = UserFrom(context.Background())
		assert.False(t, ok)
	})
}
