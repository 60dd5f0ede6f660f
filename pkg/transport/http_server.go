// Package transport expõe o console: servidor HTTP local, adaptador para o
// API Gateway no Lambda e o listener de invalidação via SQS.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Egles-vieira/bolt-console/pkg/metrics"
)

const (
	HeaderCorrelationID = "x-correlation-id"
	HeaderLatency       = "x-latency-ms"
)

type corrIDKey struct{}

// CorrelationID devolve o id da requisição corrente, se houver.
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(corrIDKey{}).(string)
	return id
}

// ServerOptions configura o servidor HTTP local.
type ServerOptions struct {
	Addr string
	// RequestTimeout limita o contexto de cada requisição.
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	Logger          zerolog.Logger
}

// StartHTTPServer escuta em opts.Addr e serve h até ctx encerrar.
func StartHTTPServer(ctx context.Context, h http.Handler, opts ServerOptions) error {
	ln, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		return fmt.Errorf("erro ao escutar em %s: %w", opts.Addr, err)
	}
	return Serve(ctx, ln, h, opts)
}

// Serve atende em ln e faz shutdown gracioso quando ctx encerra. Retorna
// nil no encerramento normal.
func Serve(ctx context.Context, ln net.Listener, h http.Handler, opts ServerOptions) error {
	if opts.RequestTimeout > 0 {
		h = Timeout(opts.RequestTimeout)(h)
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}

	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		opts.Logger.Info().Str("addr", ln.Addr().String()).Msg("servidor HTTP ouvindo")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	opts.Logger.Info().Msg("encerrando servidor HTTP")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("erro no shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Timeout aplica um prazo ao contexto da requisição; as buscas ao backend
// herdam o prazo.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode  int
	startTime   time.Time
	wroteHeader bool
}

func (rw *responseWriterWrapper) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.statusCode = code
	rw.Header().Set(HeaderLatency, strconv.FormatInt(time.Since(rw.startTime).Milliseconds(), 10))
	rw.ResponseWriter.WriteHeader(code)
	rw.wroteHeader = true
}

func (rw *responseWriterWrapper) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// Unwrap permite que http.ResponseController alcance o writer original.
func (rw *responseWriterWrapper) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// ObservabilityMiddleware propaga o correlation id, injeta o logger no
// contexto, registra cada requisição e publica contagem e latência.
func ObservabilityMiddleware(base zerolog.Logger, rec *metrics.Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			corrID := r.Header.Get(HeaderCorrelationID)
			if corrID == "" {
				corrID = uuid.NewString()
			}
			w.Header().Set(HeaderCorrelationID, corrID)

			logger := base.With().Str("correlation_id", corrID).Logger()
			ctx := logger.WithContext(r.Context())
			ctx = context.WithValue(ctx, corrIDKey{}, corrID)

			wrapper := &responseWriterWrapper{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
				startTime:      start,
			}

			next.ServeHTTP(wrapper, r.WithContext(ctx))

			elapsed := time.Since(start)
			tags := []string{
				metrics.Tag("method", r.Method),
				metrics.Tag("status", strconv.Itoa(wrapper.statusCode/100)+"xx"),
			}
			rec.Incr("http.requests", tags...)
			rec.Timing("http.latency", elapsed, tags...)

			ev := logger.Info()
			if wrapper.statusCode >= http.StatusInternalServerError {
				ev = logger.Error()
			}
			ev.Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", wrapper.statusCode).
				Int64("latency_ms", elapsed.Milliseconds()).
				Msg("requisição concluída")
		})
	}
}
