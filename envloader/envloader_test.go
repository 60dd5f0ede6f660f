package envloader

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type redisSection struct {
	Addr   string `env:"TEST_REDIS_ADDR" envDefault:"localhost:6379"`
	DB     int    `env:"TEST_REDIS_DB"`
	Prefix string `env:"TEST_REDIS_PREFIX" envDefault:"bolt-console"`
}

type cacheSection struct {
	Backend    string        `env:"TEST_CACHE_BACKEND" envDefault:"memory"`
	Retry      int           `env:"TEST_CACHE_RETRY" envDefault:"1"`
	GCTime     time.Duration `env:"TEST_CACHE_GC_TIME" envDefault:"10m"`
	Redis      redisSection
	Families   []string `env:"TEST_CACHE_FAMILIES"`
	MaxEntries uint32   `env:"TEST_CACHE_MAX_ENTRIES" envDefault:"5000"`
	HitRatio   float64  `env:"TEST_CACHE_HIT_RATIO" envDefault:"0.75"`
	Warm       bool     `env:"TEST_CACHE_WARM" envDefault:"false"`
}

type consoleSection struct {
	Name    string `env:"TEST_CONSOLE_NAME" envDefault:"bolt-console"`
	Port    int    `env:"TEST_CONSOLE_PORT" envDefault:"8080"`
	Version string // sem tag: o envloader não toca
	Cache   cacheSection
	Tracing *struct {
		Enabled bool `env:"TEST_TRACING_ENABLED" envDefault:"true"`
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg := &consoleSection{Version: "1"}
	require.NoError(t, Load(cfg))

	assert.Equal(t, "bolt-console", cfg.Name)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "1", cfg.Version)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 1, cfg.Cache.Retry)
	assert.Equal(t, 10*time.Minute, cfg.Cache.GCTime)
	assert.Equal(t, uint32(5000), cfg.Cache.MaxEntries)
	assert.Equal(t, 0.75, cfg.Cache.HitRatio)
	assert.False(t, cfg.Cache.Warm)
	assert.Nil(t, cfg.Cache.Families)

	t.Run("structs aninhadas e ponteiros", func(t *testing.T) {
		assert.Equal(t, "localhost:6379", cfg.Cache.Redis.Addr)
		assert.Equal(t, 0, cfg.Cache.Redis.DB)
		require.NotNil(t, cfg.Tracing)
		assert.True(t, cfg.Tracing.Enabled)
	})
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("TEST_CONSOLE_PORT", "9090")
	t.Setenv("TEST_CACHE_BACKEND", "redis")
	t.Setenv("TEST_CACHE_GC_TIME", "90s")
	t.Setenv("TEST_CACHE_WARM", "TRUE")
	t.Setenv("TEST_CACHE_HIT_RATIO", "0.5")
	t.Setenv("TEST_REDIS_DB", "3")
	t.Setenv("TEST_CACHE_FAMILIES", "transportadoras, transportadora-codigos,,")

	cfg := &consoleSection{}
	require.NoError(t, Load(cfg))

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, 90*time.Second, cfg.Cache.GCTime)
	assert.True(t, cfg.Cache.Warm)
	assert.Equal(t, 0.5, cfg.Cache.HitRatio)
	assert.Equal(t, 3, cfg.Cache.Redis.DB)
	assert.Equal(t, []string{"transportadoras", "transportadora-codigos"}, cfg.Cache.Families)
}

func TestLoad_Precedence(t *testing.T) {
	tests := []struct {
		name     string
		existing int
		env      string
		want     int
	}{
		{name: "default preenche campo zerado", want: 8080},
		{name: "valor do arquivo vence o default", existing: 3000, want: 3000},
		{name: "ambiente vence o arquivo", existing: 3000, env: "9000", want: 9000},
		{name: "variável vazia não apaga o arquivo", existing: 3000, env: "", want: 3000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_CONSOLE_PORT", tt.env)
			cfg := &consoleSection{Port: tt.existing}
			require.NoError(t, Load(cfg))
			assert.Equal(t, tt.want, cfg.Port)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Run("argumento que não é ponteiro para struct", func(t *testing.T) {
		for _, arg := range []any{consoleSection{}, new(int), "config", nil} {
			err := Load(arg)
			var invalid *InvalidConfigError
			require.ErrorAs(t, err, &invalid)
			assert.Contains(t, err.Error(), "ponteiro para struct")
		}
	})

	t.Run("conversão inválida", func(t *testing.T) {
		t.Setenv("TEST_CONSOLE_PORT", "oito mil")
		err := Load(&consoleSection{})

		var fieldErr *FieldError
		require.ErrorAs(t, err, &fieldErr)
		assert.Equal(t, "Port", fieldErr.FieldName)
		assert.Equal(t, "TEST_CONSOLE_PORT", fieldErr.EnvVar)
		var numErr *strconv.NumError
		assert.ErrorAs(t, err, &numErr)
	})

	t.Run("duração inválida", func(t *testing.T) {
		t.Setenv("TEST_CACHE_GC_TIME", "dez minutos")
		var fieldErr *FieldError
		require.ErrorAs(t, Load(&consoleSection{}), &fieldErr)
		assert.Equal(t, "GCTime", fieldErr.FieldName)
	})

	t.Run("tipo não suportado", func(t *testing.T) {
		type withMap struct {
			Tags map[string]string `env:"TEST_TAGS" envDefault:"a=b"`
		}
		var unsupported *UnsupportedTypeError
		assert.ErrorAs(t, Load(&withMap{}), &unsupported)

		type withInts struct {
			Ports []int `env:"TEST_PORTS" envDefault:"1,2"`
		}
		assert.ErrorAs(t, Load(&withInts{}), &unsupported)
	})
}

func TestLoad_Required(t *testing.T) {
	type authSection struct {
		Secret string `env:"TEST_JWT_SECRET,required"`
	}

	t.Run("ausente", func(t *testing.T) {
		err := Load(&authSection{})
		var reqErr *RequiredError
		require.ErrorAs(t, err, &reqErr)
		assert.Equal(t, "Secret", reqErr.FieldName)
		assert.Contains(t, err.Error(), "TEST_JWT_SECRET")
	})

	t.Run("preenchido pelo arquivo", func(t *testing.T) {
		assert.NoError(t, Load(&authSection{Secret: "abc"}))
	})

	t.Run("preenchido pelo ambiente", func(t *testing.T) {
		t.Setenv("TEST_JWT_SECRET", "xyz")
		cfg := &authSection{}
		require.NoError(t, Load(cfg))
		assert.Equal(t, "xyz", cfg.Secret)
	})
}

func TestMustLoad(t *testing.T) {
	cfg := &consoleSection{}
	assert.NotPanics(t, func() { MustLoad(cfg) })
	assert.Equal(t, "bolt-console", cfg.Name)

	assert.Panics(t, func() { MustLoad("não é ponteiro") })
}
