package cloud

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

type SSMClient interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

type SecretsClient interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// Parameters lê valores do SSM Parameter Store e do Secrets Manager.
type Parameters struct {
	ssm     SSMClient
	secrets SecretsClient
}

func NewParameters(ssmClient SSMClient, secrets SecretsClient) *Parameters {
	return &Parameters{ssm: ssmClient, secrets: secrets}
}

// NewParametersFromConfig cria os clientes reais a partir da configuração.
func NewParametersFromConfig(cfg aws.Config) *Parameters {
	return NewParameters(ssm.NewFromConfig(cfg), secretsmanager.NewFromConfig(cfg))
}

// Parameter lê um parâmetro, sempre com descriptografia.
func (p *Parameters) Parameter(ctx context.Context, path string) (string, error) {
	out, err := p.ssm.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(path),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("erro no SSM GetParameter %s: %w", path, err)
	}
	if out.Parameter == nil {
		return "", fmt.Errorf("parâmetro %s sem valor", path)
	}
	return aws.ToString(out.Parameter.Value), nil
}

// Secret lê um segredo. Com a forma "id#campo", o segredo é tratado como um
// objeto JSON e apenas o campo é devolvido.
func (p *Parameters) Secret(ctx context.Context, ref string) (string, error) {
	id, field, _ := strings.Cut(ref, "#")

	out, err := p.secrets.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(id),
	})
	if err != nil {
		return "", fmt.Errorf("erro no SecretsManager %s: %w", id, err)
	}
	val := aws.ToString(out.SecretString)
	if field == "" {
		return val, nil
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(val), &data); err != nil {
		return "", fmt.Errorf("segredo %s não é JSON: %w", id, err)
	}
	v, ok := data[field]
	if !ok {
		return "", fmt.Errorf("segredo %s sem o campo %s", id, field)
	}
	return fmt.Sprintf("%v", v), nil
}

// LazyParameters adia a criação dos clientes até o primeiro valor pedido.
// O console sobe sem credenciais da AWS quando a configuração não usa
// placeholders ${ssm.} ou ${secret.}.
type LazyParameters struct {
	region string

	once sync.Once
	p    *Parameters
	err  error
}

func NewLazyParameters(region string) *LazyParameters {
	return &LazyParameters{region: region}
}

func (l *LazyParameters) load(ctx context.Context) (*Parameters, error) {
	l.once.Do(func() {
		cfg, err := LoadConfig(ctx, l.region)
		if err != nil {
			l.err = fmt.Errorf("erro ao carregar configuração da AWS: %w", err)
			return
		}
		l.p = NewParametersFromConfig(cfg)
	})
	return l.p, l.err
}

func (l *LazyParameters) Parameter(ctx context.Context, path string) (string, error) {
	p, err := l.load(ctx)
	if err != nil {
		return "", err
	}
	return p.Parameter(ctx, path)
}

func (l *LazyParameters) Secret(ctx context.Context, ref string) (string, error) {
	p, err := l.load(ctx)
	if err != nil {
		return "", err
	}
	return p.Secret(ctx, ref)
}
