package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

var ErrNotStarted = errors.New("gerenciador de token não inicializado")

// ClientCredentials descreve o provedor OAuth2 do backend.
type ClientCredentials struct {
	TokenURL     string        `yaml:"token_url" json:"token_url" env:"UPSTREAM_TOKEN_URL"`
	ClientID     string        `yaml:"client_id" json:"client_id" env:"UPSTREAM_CLIENT_ID"`
	ClientSecret string        `yaml:"client_secret" json:"client_secret" env:"UPSTREAM_CLIENT_SECRET"`
	Scope        string        `yaml:"scope" json:"scope" env:"UPSTREAM_SCOPE"`
	Timeout      time.Duration `yaml:"timeout" json:"timeout"`
}

// Enabled indica que há provedor configurado.
func (c ClientCredentials) Enabled() bool {
	return c.TokenURL != ""
}

// tokenResponse segue a RFC 6749.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// TokenFetcher busca um novo token e o tempo de vida dele.
type TokenFetcher func(ctx context.Context) (string, time.Duration, error)

// Manager mantém o token do backend renovado em segundo plano. Satisfaz
// api.TokenSource.
type Manager struct {
	mu      sync.RWMutex
	token   string
	ready   bool
	fetcher TokenFetcher
	log     zerolog.Logger

	// retryAfter é a espera após uma renovação que falhou.
	retryAfter time.Duration

	stopOnce sync.Once
	stop     chan struct{}
}

func NewManager(fetcher TokenFetcher, log zerolog.Logger) *Manager {
	return &Manager{
		fetcher:    fetcher,
		log:        log.With().Str("component", "token_manager").Logger(),
		retryAfter: 10 * time.Second,
		stop:       make(chan struct{}),
	}
}

// Start busca o primeiro token de forma síncrona e agenda as renovações.
func (m *Manager) Start(ctx context.Context) error {
	token, ttl, err := m.fetcher(ctx)
	if err != nil {
		return fmt.Errorf("falha inicial ao obter token: %w", err)
	}
	m.set(token)
	go m.refresh(ctx, ttl)
	return nil
}

// Token devolve o token vigente.
func (m *Manager) Token(context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.ready {
		return "", ErrNotStarted
	}
	return m.token, nil
}

func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
}

func (m *Manager) set(token string) {
	m.mu.Lock()
	m.token = token
	m.ready = true
	m.mu.Unlock()
}

func (m *Manager) refresh(ctx context.Context, ttl time.Duration) {
	timer := time.NewTimer(renewAfter(ttl))
	defer timer.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ctx.Done():
			return
		case <-timer.C:
			token, next, err := m.fetcher(ctx)
			wait := m.retryAfter
			if err != nil {
				m.log.Warn().Err(err).Dur("retry_in", wait).Msg("falha ao renovar token")
			} else {
				m.set(token)
				wait = renewAfter(next)
				m.log.Debug().Dur("next_refresh", wait).Msg("token renovado")
			}
			timer.Reset(wait)
		}
	}
}

// renewAfter renova com 80% do tempo de vida; sem expires_in, em 5 minutos.
func renewAfter(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(float64(ttl) * 0.8)
}

// NewClientCredentialsFetcher implementa o fluxo client_credentials.
func NewClientCredentialsFetcher(cfg ClientCredentials) TokenFetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := resty.New().SetTimeout(timeout).SetHeader("Accept", "application/json")

	return func(ctx context.Context) (string, time.Duration, error) {
		form := map[string]string{
			"grant_type":    "client_credentials",
			"client_id":     cfg.ClientID,
			"client_secret": cfg.ClientSecret,
		}
		if cfg.Scope != "" {
			form["scope"] = cfg.Scope
		}

		var body tokenResponse
		resp, err := client.R().
			SetContext(ctx).
			SetFormData(form).
			SetResult(&body).
			Post(cfg.TokenURL)
		if err != nil {
			return "", 0, fmt.Errorf("erro de conexão oauth: %w", err)
		}
		if resp.IsError() {
			return "", 0, fmt.Errorf("oauth provider retornou erro: %d", resp.StatusCode())
		}
		if body.AccessToken == "" {
			return "", 0, errors.New("access_token veio vazio")
		}
		return body.AccessToken, time.Duration(body.ExpiresIn) * time.Second, nil
	}
}

// NewClientCredentialsManager cria o Manager já ligado ao provedor OAuth2.
func NewClientCredentialsManager(cfg ClientCredentials, log zerolog.Logger) *Manager {
	return NewManager(NewClientCredentialsFetcher(cfg), log)
}
