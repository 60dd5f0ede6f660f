package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Egles-vieira/bolt-console/pkg/config"
)

func TestConfigure(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	t.Run("nível padrão info", func(t *testing.T) {
		_ = configure(config.LoggingConf{}, "", &bytes.Buffer{})
		assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	})

	t.Run("nível debug", func(t *testing.T) {
		_ = configure(config.LoggingConf{Level: "DEBUG"}, "", &bytes.Buffer{})
		assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
	})

	t.Run("json com nome do serviço", func(t *testing.T) {
		var buf bytes.Buffer
		l := configure(config.LoggingConf{Level: "info", Format: "json"}, "bolt-console", &buf)
		l.Info().Msg("pronto")

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "bolt-console", line["service"])
		assert.Equal(t, "pronto", line["message"])
	})

	t.Run("desligado não escreve", func(t *testing.T) {
		var buf bytes.Buffer
		l := configure(config.LoggingConf{Disabled: true}, "bolt-console", &buf)
		l.Info().Msg("teste")
		assert.Zero(t, buf.Len())
	})
}
