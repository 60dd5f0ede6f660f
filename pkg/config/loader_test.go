package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
version: "1"
service:
  name: bolt-console
  runtime: local
  port: 3000
  logging:
    level: debug
    format: console
upstream:
  base_url: https://api.bolt.local
  timeout: 5s
cache:
  backend: redis
  redis:
    addr: localhost:6379
  gc_time: 15m
auth:
  jwt_secret: ${env.TEST_JWT_SECRET}
  routes:
    login_path: /entrar
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("TEST_JWT_SECRET", "0123456789abcdef0123")

	t.Run("arquivo, ambiente e defaults", func(t *testing.T) {
		t.Setenv("PORT", "9000")

		cfg, err := Load(context.Background(), writeConfig(t, sampleYAML), nil)
		require.NoError(t, err)

		assert.Equal(t, 9000, cfg.Service.Port)
		assert.Equal(t, "debug", cfg.Service.Logging.Level)
		assert.Equal(t, 5*time.Second, cfg.Upstream.Timeout)
		assert.Equal(t, 15*time.Minute, cfg.Cache.GCTime)
		assert.Equal(t, time.Minute, cfg.Cache.GCInterval)
		assert.Equal(t, "bolt-console", cfg.Cache.Redis.Prefix)
		assert.Equal(t, "0123456789abcdef0123", cfg.Auth.JWTSecret)
		assert.Equal(t, "/entrar", cfg.Auth.Routes.LoginPath)
		assert.Equal(t, "/dashboard", cfg.Auth.Routes.HomePath)
		assert.Equal(t, 8*time.Hour, cfg.Auth.SessionTTL)
	})

	t.Run("chave desconhecida", func(t *testing.T) {
		_, err := Load(context.Background(), writeConfig(t, sampleYAML+"\nextra: true\n"), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "extra")
	})

	t.Run("arquivo explícito ausente", func(t *testing.T) {
		_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nao-existe.yaml"), nil)
		assert.Error(t, err)
	})

	t.Run("somente ambiente", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("API_URL", "https://api.bolt.local")
		t.Setenv("JWT_SECRET", "0123456789abcdef")

		cfg, err := Load(context.Background(), "", nil)
		require.NoError(t, err)
		assert.Equal(t, "memory", cfg.Cache.Backend)
		assert.Equal(t, 8080, cfg.Service.Port)
	})

	t.Run("configuração inválida", func(t *testing.T) {
		invalid := strings.Replace(sampleYAML, "runtime: local", "runtime: k8s", 1)
		_, err := Load(context.Background(), writeConfig(t, invalid), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Runtime")
	})
}
