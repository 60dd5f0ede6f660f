package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Egles-vieira/bolt-console/pkg/metrics"
)

// SQSClient define a interface necessária para o listener (permite Mocking)
type SQSClient interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Invalidator é satisfeito por *query.Client.
type Invalidator interface {
	InvalidateFamilies(ctx context.Context, families ...string) (int, error)
}

// InvalidationEvent é o corpo esperado na fila. Outros sistemas que alteram
// transportadoras ou vínculos publicam as famílias afetadas.
type InvalidationEvent struct {
	Families []string `json:"families"`
	Source   string   `json:"source,omitempty"`
}

var errEmptyEvent = errors.New("evento sem famílias")

// SQSInvalidator consome a fila de invalidação e marca as famílias no
// cache do console.
type SQSInvalidator struct {
	client     SQSClient
	queueURL   string
	target     Invalidator
	metrics    *metrics.Recorder
	logger     zerolog.Logger
	retryDelay time.Duration
}

// NewSQSInvalidator cria o listener. rec pode ser nulo.
func NewSQSInvalidator(client SQSClient, queueURL string, target Invalidator, rec *metrics.Recorder) *SQSInvalidator {
	return &SQSInvalidator{
		client:     client,
		queueURL:   queueURL,
		target:     target,
		metrics:    rec,
		logger:     log.With().Str("component", "sqs_invalidator").Logger(),
		retryDelay: 5 * time.Second,
	}
}

// Start faz long polling até ctx encerrar (bloqueante).
func (s *SQSInvalidator) Start(ctx context.Context) {
	if s.queueURL == "" {
		s.logger.Warn().Msg("URL da fila SQS não configurada; invalidação externa desativada")
		return
	}

	s.logger.Info().Str("queue", s.queueURL).Msg("monitorando fila de invalidação")

	for {
		out, err := s.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(s.queueURL),
			MaxNumberOfMessages: 10,
			WaitTimeSeconds:     20,
		})
		if ctx.Err() != nil {
			s.logger.Info().Msg("parando monitoramento SQS")
			return
		}
		if err != nil {
			s.logger.Error().Err(err).Dur("retry_in", s.retryDelay).Msg("erro no SQS")
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.retryDelay):
			}
			continue
		}

		for _, msg := range out.Messages {
			s.process(ctx, msg)
		}
	}
}

// process aplica uma mensagem. Mensagens malformadas são descartadas;
// falhas ao invalidar ficam na fila para nova entrega.
func (s *SQSInvalidator) process(ctx context.Context, msg types.Message) {
	logger := s.logger.With().Str("message_id", aws.ToString(msg.MessageId)).Logger()

	ev, err := ParseInvalidation(aws.ToString(msg.Body))
	if err != nil {
		logger.Warn().Err(err).Msg("mensagem de invalidação descartada")
		s.delete(ctx, msg, logger)
		return
	}

	n, err := s.target.InvalidateFamilies(ctx, ev.Families...)
	if err != nil {
		logger.Error().Err(err).Strs("families", ev.Families).Msg("falha ao invalidar; mensagem volta para a fila")
		return
	}
	s.metrics.Add("invalidation.external", float64(n))
	logger.Info().Strs("families", ev.Families).Str("source", ev.Source).Int("entries", n).Msg("cache invalidado por evento externo")
	s.delete(ctx, msg, logger)
}

func (s *SQSInvalidator) delete(ctx context.Context, msg types.Message, logger zerolog.Logger) {
	_, err := s.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(s.queueURL),
		ReceiptHandle: msg.ReceiptHandle,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("falha ao remover mensagem da fila")
	}
}

// ParseInvalidation lê o corpo da mensagem, aceitando também o envelope de
// uma notificação SNS entregue na fila.
func ParseInvalidation(body string) (InvalidationEvent, error) {
	var sns events.SNSEntity
	if err := json.Unmarshal([]byte(body), &sns); err == nil && sns.Type == "Notification" && sns.Message != "" {
		body = sns.Message
	}

	var ev InvalidationEvent
	if err := json.Unmarshal([]byte(body), &ev); err != nil {
		return ev, fmt.Errorf("corpo inválido: %w", err)
	}
	families := ev.Families[:0]
	for _, f := range ev.Families {
		if f != "" {
			families = append(families, f)
		}
	}
	ev.Families = families
	if len(ev.Families) == 0 {
		return ev, errEmptyEvent
	}
	return ev, nil
}
