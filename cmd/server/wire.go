package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Egles-vieira/bolt-console/api"
	"github.com/Egles-vieira/bolt-console/pkg/audit"
	"github.com/Egles-vieira/bolt-console/pkg/auth"
	"github.com/Egles-vieira/bolt-console/pkg/cloud"
	"github.com/Egles-vieira/bolt-console/pkg/config"
	"github.com/Egles-vieira/bolt-console/pkg/export"
	"github.com/Egles-vieira/bolt-console/pkg/metrics"
	"github.com/Egles-vieira/bolt-console/pkg/pages"
	"github.com/Egles-vieira/bolt-console/pkg/queries"
	"github.com/Egles-vieira/bolt-console/pkg/query"
	"github.com/Egles-vieira/bolt-console/pkg/router"
	"github.com/Egles-vieira/bolt-console/pkg/transport"
)

// console reúne as peças montadas a partir da configuração.
type console struct {
	handler     http.Handler
	query       *query.Client
	pages       *pages.Pages
	invalidator *transport.SQSInvalidator
	closers     []func()
}

func (c *console) close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func build(ctx context.Context, cfg *config.ConsoleConfig, logger zerolog.Logger, rec *metrics.Recorder) (*console, error) {
	c := &console{}

	tokens, err := upstreamTokens(ctx, cfg.Upstream, logger, c)
	if err != nil {
		c.close()
		return nil, err
	}
	upstream := api.NewClient(api.Config{
		BaseURL:   cfg.Upstream.BaseURL,
		Timeout:   cfg.Upstream.Timeout,
		UserAgent: cfg.Service.Name,
	}, tokens)

	cache, err := newCache(ctx, cfg.Cache, c)
	if err != nil {
		c.close()
		return nil, err
	}
	c.query = query.NewClient(query.Options{
		Cache:        cache,
		Retry:        cfg.Cache.Retry,
		RetryDelay:   cfg.Cache.RetryDelay,
		Retryable:    api.IsRetryable,
		FetchTimeout: cfg.Cache.FetchTimeout,
		Metrics:      rec,
		Logger:       logger.With().Str("component", "query").Logger(),
	})

	auditLog, err := newAuditLog(ctx, cfg.Audit)
	if err != nil {
		c.close()
		return nil, err
	}
	deliverer, err := newDeliverer(ctx, cfg.Export)
	if err != nil {
		c.close()
		return nil, err
	}

	p := pages.New(pages.Deps{
		Query:           c.query,
		Transportadoras: queries.NewTransportadoras(api.NewTransportadoras(upstream)),
		Vinculos:        queries.NewVinculos(api.NewVinculos(upstream)),
		Audit:           auditLog,
		Export:          deliverer,
		Logger:          logger,
	})
	c.pages = p
	sessions := auth.NewSessions(cfg.Auth.JWTSecret)
	c.handler = router.New(cfg.Auth.Routes, sessions, p.Routes())

	if cfg.Events.SQSQueueURL != "" {
		awsCfg, err := cloud.LoadConfig(ctx, os.Getenv("AWS_REGION"))
		if err != nil {
			c.close()
			return nil, fmt.Errorf("erro ao configurar SQS: %w", err)
		}
		c.invalidator = transport.NewSQSInvalidator(sqs.NewFromConfig(awsCfg), cfg.Events.SQSQueueURL, c.query, rec)
	}
	return c, nil
}

// upstreamTokens escolhe a fonte do token do backend: OAuth2 client
// credentials, token fixo ou nenhum.
func upstreamTokens(ctx context.Context, cfg config.UpstreamConf, logger zerolog.Logger, c *console) (api.TokenSource, error) {
	switch {
	case cfg.OAuth.Enabled():
		m := auth.NewClientCredentialsManager(cfg.OAuth, logger.With().Str("component", "token").Logger())
		if err := m.Start(ctx); err != nil {
			return nil, err
		}
		c.closers = append(c.closers, m.Stop)
		return m, nil
	case cfg.Token != "":
		return api.StaticToken(cfg.Token), nil
	}
	return nil, nil
}

func newCache(ctx context.Context, cfg config.CacheConf, c *console) (query.Cache, error) {
	if cfg.Backend != "redis" {
		return query.NewMemoryCache(), nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis indisponível em %s: %w", cfg.Redis.Addr, err)
	}
	c.closers = append(c.closers, func() { _ = rdb.Close() })
	return query.NewRedisCache(rdb, cfg.Redis.Prefix, cfg.GCTime), nil
}

func newAuditLog(ctx context.Context, cfg config.AuditConf) (audit.Log, error) {
	if cfg.Table == "" {
		return audit.NewMemoryLog(0), nil
	}
	awsCfg, err := cloud.LoadConfig(ctx, cfg.Region)
	if err != nil {
		return nil, fmt.Errorf("erro ao configurar auditoria: %w", err)
	}
	return audit.NewDynamoLog(dynamodb.NewFromConfig(awsCfg), cfg.Table), nil
}

func newDeliverer(ctx context.Context, cfg config.ExportConf) (*export.Deliverer, error) {
	if cfg.TempDir != "" {
		if info, err := os.Stat(cfg.TempDir); err != nil || !info.IsDir() {
			return nil, errors.Join(fmt.Errorf("export.temp_dir inválido: %s", cfg.TempDir), err)
		}
	}
	if cfg.ArchiveBucket == "" {
		return export.NewDeliverer(nil, cfg.TempDir), nil
	}
	awsCfg, err := cloud.LoadConfig(ctx, cfg.Region)
	if err != nil {
		return nil, fmt.Errorf("erro ao configurar arquivo de exportações: %w", err)
	}
	archive := cloud.NewArchive(s3.NewFromConfig(awsCfg), cfg.ArchiveBucket, cfg.Prefix)
	return export.NewDeliverer(archive, cfg.TempDir), nil
}
