// Package cloud concentra o acesso à AWS usado pelo console: configuração do
// SDK, parâmetros do SSM, segredos do Secrets Manager e o arquivo de
// exportações no S3.
package cloud

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
)

var (
	cfgMu   sync.Mutex
	configs = map[string]aws.Config{}
)

// LoadConfig carrega a configuração da AWS (env vars, profile, IAM role) uma
// vez por região.
func LoadConfig(ctx context.Context, region string) (aws.Config, error) {
	cfgMu.Lock()
	defer cfgMu.Unlock()

	if cfg, ok := configs[region]; ok {
		return cfg, nil
	}
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, err
	}
	configs[region] = cfg
	return cfg, nil
}
