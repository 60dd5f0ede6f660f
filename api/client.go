package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrBadRequest = errors.New("bad request")
)

// Config descreve o backend de transportadoras.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Envelope é o formato de resposta do backend: {data, message?, pagination?}.
type Envelope[T any] struct {
	Data       T           `json:"data"`
	Message    string      `json:"message,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Notice devolve a mensagem enviada pelo backend junto com os dados.
func (e Envelope[T]) Notice() string {
	return e.Message
}

// Pagination acompanha as respostas de listagem.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Page é uma página de resultados já desembrulhada do envelope.
type Page[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// APIError representa uma resposta de erro do backend.
type APIError struct {
	Status  int
	Message string
	Method  string
	Path    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %d: %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s: %d", e.Method, e.Path, e.Status)
}

// Is permite errors.Is(err, ErrNotFound) e errors.Is(err, ErrBadRequest).
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrBadRequest:
		return e.Status == http.StatusBadRequest || e.Status == http.StatusUnprocessableEntity
	}
	return false
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Message devolve a mensagem enviada pelo backend ou fallback quando o erro
// não trouxer uma.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// IsRetryable indica se vale tentar de novo: falhas de rede e respostas 5xx
// ou 429. Erros de validação e 404 são definitivos.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500 || apiErr.Status == http.StatusTooManyRequests
	}
	return !errors.Is(err, context.Canceled)
}

// Client é o cliente HTTP compartilhado pelos serviços do backend.
type Client struct {
	http   *resty.Client
	tokens TokenSource
}

// NewClient configura o resty com base URL, timeout e token de acesso.
// tokens pode ser nulo quando o backend não exige autenticação.
func NewClient(cfg Config, tokens TokenSource) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "bolt-console"
	}

	c := &Client{tokens: tokens}
	c.http = resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", cfg.UserAgent).
		OnBeforeRequest(c.authorize)
	return c
}

func (c *Client) authorize(_ *resty.Client, r *resty.Request) error {
	if c.tokens == nil {
		return nil
	}
	token, err := c.tokens.Token(r.Context())
	if err != nil {
		return fmt.Errorf("erro ao obter token de acesso: %w", err)
	}
	if token != "" {
		r.SetAuthToken(token)
	}
	return nil
}

type requestOption func(*resty.Request)

func withQuery(params map[string]string) requestOption {
	return func(r *resty.Request) {
		for k, v := range params {
			if v != "" {
				r.SetQueryParam(k, v)
			}
		}
	}
}

func withPath(name, value string) requestOption {
	return func(r *resty.Request) { r.SetPathParam(name, value) }
}

func withBody(body any) requestOption {
	return func(r *resty.Request) { r.SetBody(body) }
}

// call executa a requisição e decodifica o envelope de resposta.
func call[T any](ctx context.Context, c *Client, method, path string, opts ...requestOption) (Envelope[T], error) {
	var (
		env  Envelope[T]
		body errorBody
	)

	req := c.http.R().SetContext(ctx).SetResult(&env).SetError(&body)
	for _, opt := range opts {
		opt(req)
	}

	start := time.Now()
	resp, err := req.Execute(method, path)
	if err != nil {
		return env, fmt.Errorf("erro de conexão em %s %s: %w", method, path, err)
	}

	log.Ctx(ctx).Debug().
		Str("method", method).
		Str("path", resp.Request.URL).
		Int("status", resp.StatusCode()).
		Int64("latency_ms", time.Since(start).Milliseconds()).
		Msg("chamada ao backend")

	if resp.IsError() {
		msg := body.Message
		if msg == "" {
			msg = body.Error
		}
		return env, &APIError{Status: resp.StatusCode(), Message: msg, Method: method, Path: path}
	}
	return env, nil
}

// one busca um único recurso. Resposta de sucesso com "data" nulo ou
// ausente é tratada como recurso inexistente.
func one[T any](ctx context.Context, c *Client, method, path string, opts ...requestOption) (T, error) {
	var zero T
	env, err := call[*T](ctx, c, method, path, opts...)
	if err != nil {
		return zero, err
	}
	if env.Data == nil {
		return zero, fmt.Errorf("%s %s: resposta sem dados: %w", method, path, ErrNotFound)
	}
	return *env.Data, nil
}

func pageOf[T any](env Envelope[[]T]) Page[T] {
	p := Page[T]{Items: env.Data}
	if p.Items == nil {
		p.Items = []T{}
	}
	if env.Pagination != nil {
		p.Pagination = *env.Pagination
	}
	return p
}
