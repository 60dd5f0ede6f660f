package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/Egles-vieira/bolt-console/envloader"
	"github.com/Egles-vieira/bolt-console/pkg/config/injector"
)

const (
	// FileEnv aponta o arquivo de configuração.
	FileEnv = "CONSOLE_CONFIG_FILE"
	// DefaultFile é usado quando FileEnv não está definida.
	DefaultFile = "config.yaml"
)

// Load monta a configuração do console:
//
//  1. .env, fora de produção (APP_ENV=production pula);
//  2. arquivo YAML (ausência do arquivo padrão não é erro);
//  3. variáveis de ambiente e defaults via envloader;
//  4. placeholders ${env.}, ${ssm.} e ${secret.} via injector;
//  5. validação.
//
// path vazio usa FileEnv e depois DefaultFile.
func Load(ctx context.Context, path string, resolver injector.Resolver) (*ConsoleConfig, error) {
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("erro ao ler .env: %w", err)
		}
	}

	explicit := path != ""
	if !explicit {
		path = os.Getenv(FileEnv)
		explicit = path != ""
	}
	if path == "" {
		path = DefaultFile
	}

	cfg := &ConsoleConfig{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if cfg, err = Decode(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("erro ao interpretar %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		log.Debug().Str("file", path).Msg("arquivo de configuração ausente, usando apenas o ambiente")
	default:
		return nil, fmt.Errorf("erro ao ler %s: %w", path, err)
	}

	return Finish(ctx, cfg, resolver)
}

// Decode interpreta o YAML rejeitando chaves desconhecidas.
func Decode(r io.Reader) (*ConsoleConfig, error) {
	cfg := &ConsoleConfig{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return cfg, nil
}

// Finish aplica ambiente, placeholders e validação sobre uma configuração
// já decodificada.
func Finish(ctx context.Context, cfg *ConsoleConfig, resolver injector.Resolver) (*ConsoleConfig, error) {
	if err := envloader.Load(cfg); err != nil {
		return nil, fmt.Errorf("erro ao aplicar variáveis de ambiente: %w", err)
	}
	if err := injector.New(resolver).Inject(ctx, cfg); err != nil {
		return nil, err
	}
	if err := NewValidator().Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
