package api

import "context"

// TokenSource fornece o token enviado no cabeçalho Authorization.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken é um token fixo, lido da configuração.
type StaticToken string

func (s StaticToken) Token(context.Context) (string, error) {
	return string(s), nil
}
