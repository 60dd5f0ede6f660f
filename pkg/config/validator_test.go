package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Egles-vieira/bolt-console/pkg/auth"
)

func validConfig() *ConsoleConfig {
	return &ConsoleConfig{
		Version: "1",
		Service: ServiceDetails{
			Name:        "bolt-console",
			Environment: "development",
			Runtime:     "local",
			Port:        8080,
			Timeout:     "30s",
			Logging:     LoggingConf{Level: "info", Format: "console"},
		},
		Upstream: UpstreamConf{BaseURL: "https://api.bolt.local"},
		Cache: CacheConf{
			Backend:      "memory",
			Retry:        1,
			GCTime:       10 * time.Minute,
			GCInterval:   time.Minute,
			FetchTimeout: 20 * time.Second,
		},
		Auth:     AuthConf{JWTSecret: "0123456789abcdef"},
	}
}

func TestValidator_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *ConsoleConfig)
		wantErr string
	}{
		{name: "configuração válida", mutate: func(*ConsoleConfig) {}},
		{
			name:    "url do backend obrigatória",
			mutate:  func(c *ConsoleConfig) { c.Upstream.BaseURL = "" },
			wantErr: "ConsoleConfig.Upstream.BaseURL",
		},
		{
			name:    "intervalo de coleta zerado",
			mutate:  func(c *ConsoleConfig) { c.Cache.GCInterval = 0 },
			wantErr: "ConsoleConfig.Cache.GCInterval",
		},
		{
			name:    "gc_time negativo",
			mutate:  func(c *ConsoleConfig) { c.Cache.GCTime = -time.Minute },
			wantErr: "ConsoleConfig.Cache.GCTime",
		},
		{
			name:    "timeout de busca zerado",
			mutate:  func(c *ConsoleConfig) { c.Cache.FetchTimeout = 0 },
			wantErr: "ConsoleConfig.Cache.FetchTimeout",
		},
		{
			name:    "segredo curto",
			mutate:  func(c *ConsoleConfig) { c.Auth.JWTSecret = "curto" },
			wantErr: "JWTSecret",
		},
		{
			name:    "runtime desconhecido",
			mutate:  func(c *ConsoleConfig) { c.Service.Runtime = "ecs" },
			wantErr: "oneof",
		},
		{
			name:    "redis sem endereço",
			mutate:  func(c *ConsoleConfig) { c.Cache.Backend = "redis" },
			wantErr: "cache.redis.addr",
		},
		{
			name: "token e oauth juntos",
			mutate: func(c *ConsoleConfig) {
				c.Upstream.Token = "tok"
				c.Upstream.OAuth = auth.ClientCredentials{TokenURL: "https://auth.local/token", ClientID: "id", ClientSecret: "s"}
			},
			wantErr: "não os dois",
		},
		{
			name: "oauth incompleto",
			mutate: func(c *ConsoleConfig) {
				c.Upstream.OAuth = auth.ClientCredentials{TokenURL: "https://auth.local/token"}
			},
			wantErr: "client_id",
		},
		{
			name: "fila no lambda",
			mutate: func(c *ConsoleConfig) {
				c.Service.Runtime = "lambda"
				c.Events.SQSQueueURL = "https://sqs.sa-east-1.amazonaws.com/123/invalidate"
			},
			wantErr: "runtime lambda",
		},
		{
			name:    "rota relativa",
			mutate:  func(c *ConsoleConfig) { c.Auth.Routes.LoginPath = "login" },
			wantErr: "login_path",
		},
		{
			name:    "datadog sem endereço",
			mutate:  func(c *ConsoleConfig) { c.Service.Metrics.Datadog.Enabled = true },
			wantErr: "Addr",
		},
	}

	v := NewValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := v.Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
