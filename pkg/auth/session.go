package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookie é o cookie que carrega o token de sessão.
const SessionCookie = "session"

var ErrNoSession = errors.New("sessão ausente")

// User é o usuário autenticado.
type User struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Roles RoleSet `json:"roles"`
}

type claims struct {
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// Sessions lê e emite tokens de sessão HS256.
type Sessions struct {
	secret []byte
	parser *jwt.Parser
	now    func() time.Time
}

func NewSessions(secret string) *Sessions {
	return &Sessions{
		secret: []byte(secret),
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()),
		now:    time.Now,
	}
}

// Issue assina um token para o usuário.
func (s *Sessions) Issue(u User, ttl time.Duration) (string, error) {
	now := s.now()
	c := claims{
		Name:  u.Name,
		Roles: u.Roles.Strings(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
}

// Parse valida o token e devolve o usuário. Papéis desconhecidos são
// ignorados.
func (s *Sessions) Parse(raw string) (User, error) {
	var c claims
	_, err := s.parser.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return User{}, fmt.Errorf("token de sessão inválido: %w", err)
	}
	if c.Subject == "" {
		return User{}, errors.New("token de sessão sem sub")
	}

	u := User{ID: c.Subject, Name: c.Name}
	for _, r := range c.Roles {
		if role, err := ParseRole(r); err == nil {
			u.Roles = append(u.Roles, role)
		}
	}
	return u, nil
}

// Authenticate procura o token no cabeçalho Authorization e, na falta dele,
// no cookie de sessão.
func (s *Sessions) Authenticate(r *http.Request) (User, error) {
	raw := ""
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		raw = strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	} else if c, err := r.Cookie(SessionCookie); err == nil {
		raw = c.Value
	}
	if raw == "" {
		return User{}, ErrNoSession
	}
	return s.Parse(raw)
}

type userKey struct{}

func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFrom devolve o usuário da requisição, se houver.
func UserFrom(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(userKey{}).(User)
	return u, ok
}
