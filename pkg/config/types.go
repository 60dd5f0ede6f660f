package config

import (
	"time"

	"github.com/Egles-vieira/bolt-console/pkg/auth"
	"github.com/Egles-vieira/bolt-console/pkg/router"
)

// ConsoleConfig representa a estrutura raiz do arquivo YAML do console.
type ConsoleConfig struct {
	Version  string         `yaml:"version" env:"CONSOLE_CONFIG_VERSION" envDefault:"1" validate:"required"`
	Service  ServiceDetails `yaml:"service" validate:"required"`
	Upstream UpstreamConf   `yaml:"upstream"`
	Cache    CacheConf      `yaml:"cache"`
	Auth     AuthConf       `yaml:"auth"`
	Export   ExportConf     `yaml:"export"`
	Audit    AuditConf      `yaml:"audit"`
	Events   EventsConf     `yaml:"events"`
}

// ServiceDetails contém os metadados e configurações de runtime do serviço.
type ServiceDetails struct {
	Name        string      `yaml:"name" env:"CONSOLE_NAME" envDefault:"bolt-console" validate:"required,hostname_rfc1123"`
	Environment string      `yaml:"environment" env:"APP_ENV" envDefault:"development" validate:"oneof=development staging production"`
	Runtime     string      `yaml:"runtime" env:"CONSOLE_RUNTIME" envDefault:"local" validate:"required,oneof=local lambda"`
	Port        int         `yaml:"port" env:"PORT" envDefault:"8080" validate:"required_if=Runtime local,gte=0,lte=65535"`
	Timeout     string      `yaml:"timeout" env:"CONSOLE_TIMEOUT" envDefault:"30s" validate:"required"` // Ex: "500ms", "2s"
	Logging     LoggingConf `yaml:"logging"`
	Metrics     MetricsConf `yaml:"metrics"`
}

// LoggingConf liga o log por padrão; desligar é explícito.
type LoggingConf struct {
	Disabled bool   `yaml:"disabled" env:"LOG_DISABLED"`
	Level    string `yaml:"level" env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" env:"LOG_FORMAT" envDefault:"json" validate:"oneof=json console"`
}

type MetricsConf struct {
	Datadog DatadogConf `yaml:"datadog"`
}

type DatadogConf struct {
	Enabled   bool   `yaml:"enabled" env:"DD_ENABLED"`
	Addr      string `yaml:"addr" env:"DD_AGENT_HOST" validate:"required_if=Enabled true"`
	Namespace string `yaml:"namespace" env:"DD_NAMESPACE" envDefault:"bolt_console"`
}

// UpstreamConf descreve a API de transportadoras consumida pelo console.
type UpstreamConf struct {
	BaseURL string                 `yaml:"base_url" env:"API_URL" validate:"required,url"`
	Timeout time.Duration          `yaml:"timeout" env:"API_TIMEOUT" envDefault:"15s"`
	Token   string                 `yaml:"token" env:"API_TOKEN"`
	OAuth   auth.ClientCredentials `yaml:"oauth"`
}

type CacheConf struct {
	Backend string    `yaml:"backend" env:"CACHE_BACKEND" envDefault:"memory" validate:"oneof=memory redis"`
	Redis   RedisConf `yaml:"redis"`
	// Retry é o número de novas tentativas de uma leitura que falhou.
	Retry        int           `yaml:"retry" env:"CACHE_RETRY" envDefault:"1" validate:"gte=0,lte=5"`
	RetryDelay   time.Duration `yaml:"retry_delay" env:"CACHE_RETRY_DELAY" envDefault:"1s" validate:"gte=0"`
	GCTime       time.Duration `yaml:"gc_time" env:"CACHE_GC_TIME" envDefault:"10m" validate:"gt=0"`
	GCInterval   time.Duration `yaml:"gc_interval" env:"CACHE_GC_INTERVAL" envDefault:"1m" validate:"gt=0"`
	FetchTimeout time.Duration `yaml:"fetch_timeout" env:"CACHE_FETCH_TIMEOUT" envDefault:"20s" validate:"gt=0"`
}

type RedisConf struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
	Prefix   string `yaml:"prefix" env:"REDIS_PREFIX" envDefault:"bolt-console"`
}

type AuthConf struct {
	JWTSecret  string        `yaml:"jwt_secret" env:"JWT_SECRET" validate:"required,min=16"`
	SessionTTL time.Duration `yaml:"session_ttl" env:"SESSION_TTL" envDefault:"8h"`
	Routes     router.Config `yaml:"routes"`
}

// ExportConf habilita o arquivamento das exportações no S3.
type ExportConf struct {
	ArchiveBucket string `yaml:"archive_bucket" env:"EXPORT_BUCKET"`
	Prefix        string `yaml:"prefix" env:"EXPORT_PREFIX" envDefault:"exports"`
	Region        string `yaml:"region" env:"EXPORT_REGION"`
	TempDir       string `yaml:"temp_dir" env:"EXPORT_TEMP_DIR"`
}

// AuditConf aponta a tabela DynamoDB da trilha de auditoria. Sem tabela a
// trilha fica em memória.
type AuditConf struct {
	Table  string `yaml:"table" env:"AUDIT_TABLE"`
	Region string `yaml:"region" env:"AUDIT_REGION"`
}

// EventsConf configura a fila de invalidação externa de cache.
type EventsConf struct {
	SQSQueueURL string `yaml:"sqs_queue_url" env:"INVALIDATION_QUEUE_URL" validate:"omitempty,url"`
}

func (s ServiceDetails) GetTimeout() time.Duration {
	d, err := time.ParseDuration(s.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// Production indica ambiente produtivo; nele o .env não é lido.
func (s ServiceDetails) Production() bool {
	return s.Environment == "production"
}
