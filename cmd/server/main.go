package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"

	"github.com/Egles-vieira/bolt-console/pkg/cloud"
	"github.com/Egles-vieira/bolt-console/pkg/config"
	"github.com/Egles-vieira/bolt-console/pkg/logger"
	"github.com/Egles-vieira/bolt-console/pkg/metrics"
	"github.com/Egles-vieira/bolt-console/pkg/observability"
	"github.com/Egles-vieira/bolt-console/pkg/transport"
)

// Variáveis injetáveis para mocking
var (
	serverStarter = transport.StartHTTPServer
	lambdaStarter = func(h *transport.LambdaHandler) { lambda.Start(h.Handle) }
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Getenv(config.FileEnv)); err != nil {
		log.Fatal().Err(err).Msg("falha ao iniciar o console")
	}
}

// run contém a lógica principal testável
func run(ctx context.Context, cfgPath string) error {
	cfg, err := config.Load(ctx, cfgPath, cloud.NewLazyParameters(os.Getenv("AWS_REGION")))
	if err != nil {
		return err
	}

	lg := logger.Configure(cfg.Service.Logging, cfg.Service.Name)
	provider, err := observability.SetupMetrics(cfg.Service.Metrics, cfg.Service.Name)
	if err != nil {
		return err
	}
	if c, ok := provider.(io.Closer); ok {
		defer c.Close()
	}
	rec := metrics.NewRecorder(provider, "")

	app, err := build(ctx, cfg, lg, rec)
	if err != nil {
		return err
	}
	defer app.close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go app.query.RunCollector(ctx, cfg.Cache.GCInterval, cfg.Cache.GCTime)
	go app.pages.RunSweeper(ctx, cfg.Cache.GCInterval, cfg.Cache.GCTime)

	var handler http.Handler = transport.ObservabilityMiddleware(lg, rec)(app.handler)

	lg.Info().
		Str("runtime", cfg.Service.Runtime).
		Str("upstream", cfg.Upstream.BaseURL).
		Str("cache", cfg.Cache.Backend).
		Msg("console configurado")

	switch cfg.Service.Runtime {
	case "lambda":
		lambdaStarter(transport.NewLambdaHandler(handler))
		return nil
	default:
		if app.invalidator != nil {
			go app.invalidator.Start(ctx)
		}
		return serverStarter(ctx, handler, transport.ServerOptions{
			Addr:           ":" + strconv.Itoa(cfg.Service.Port),
			RequestTimeout: cfg.Service.GetTimeout(),
			Logger:         lg,
		})
	}
}
