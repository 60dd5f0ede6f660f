package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ConfigValidator struct {
	validate *validator.Validate
}

// NewValidator cria uma nova instância do validador
func NewValidator() *ConfigValidator {
	return &ConfigValidator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Validate realiza validações estruturais (tags) e semânticas (lógica)
func (cv *ConfigValidator) Validate(cfg *ConsoleConfig) error {
	if err := cv.validate.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			errMsgs := make([]string, 0, len(validationErrors))
			for _, e := range validationErrors {
				errMsgs = append(errMsgs, fmt.Sprintf("Campo '%s' falhou na regra '%s'", e.Namespace(), e.Tag()))
			}
			return fmt.Errorf("erros de validação estrutural:\n- %s", strings.Join(errMsgs, "\n- "))
		}
		return fmt.Errorf("erro de validação estrutural: %w", err)
	}

	if err := cv.validateSemantics(cfg); err != nil {
		return fmt.Errorf("erro de validação semântica: %w", err)
	}

	return nil
}

func (cv *ConfigValidator) validateSemantics(cfg *ConsoleConfig) error {
	if cfg.Cache.Backend == "redis" && cfg.Cache.Redis.Addr == "" {
		return errors.New("cache.redis.addr é obrigatório quando cache.backend é 'redis'")
	}

	oauth := cfg.Upstream.OAuth
	if oauth.Enabled() {
		if cfg.Upstream.Token != "" {
			return errors.New("use upstream.token ou upstream.oauth, não os dois")
		}
		if oauth.ClientID == "" || oauth.ClientSecret == "" {
			return errors.New("upstream.oauth exige client_id e client_secret")
		}
	}

	// O listener de SQS é um loop de long polling; não cabe numa invocação.
	if cfg.Service.Runtime == "lambda" && cfg.Events.SQSQueueURL != "" {
		return errors.New("events.sqs_queue_url não é suportado no runtime lambda; assine a fila na própria função")
	}

	routes := cfg.Auth.Routes
	for name, p := range map[string]string{
		"login_path":     routes.LoginPath,
		"forbidden_path": routes.ForbiddenPath,
		"home_path":      routes.HomePath,
	} {
		if p != "" && !strings.HasPrefix(p, "/") {
			return fmt.Errorf("auth.routes.%s deve começar com '/': %q", name, p)
		}
	}

	if cfg.Auth.SessionTTL < 0 {
		return errors.New("auth.session_ttl não pode ser negativo")
	}

	return nil
}
