package query

import (
	"context"

	"github.com/Egles-vieira/bolt-console/pkg/metrics"
)

// Mutation descreve uma escrita e as leituras que ela torna obsoletas.
type Mutation[In, Out any] struct {
	Name string
	Do   func(ctx context.Context, in In) (Out, error)
	// Invalidates lista as famílias de leitura afetadas em caso de sucesso.
	Invalidates []string
	// InvalidatesKeys acrescenta chaves específicas derivadas da entrada,
	// como o detalhe de um registro alterado.
	InvalidatesKeys func(in In) []Key
	// Success e Failure são as mensagens usadas quando o backend não envia
	// uma própria.
	Success string
	Failure string
}

// Predicate retorna o predicado de invalidação da escrita para a entrada in.
func (m Mutation[In, Out]) Predicate(in In) Predicate {
	var keys []Key
	if m.InvalidatesKeys != nil {
		keys = m.InvalidatesKeys(in)
	}
	return AnyOf(Families(m.Invalidates...), Prefix(keys...))
}

// Mutate executa a escrita exatamente uma vez, sem novas tentativas. Em caso
// de sucesso invalida as leituras declaradas; em caso de falha o cache fica
// intacto e o erro é devolvido.
func Mutate[In, Out any](ctx context.Context, c *Client, m Mutation[In, Out], in In) (Out, error) {
	tag := metrics.Tag("mutation", m.Name)

	out, err := m.Do(ctx, in)
	if err != nil {
		c.metrics.Incr("mutation.failure", tag)
		c.log.Warn().Err(err).Str("mutation", m.Name).Msg("escrita falhou")
		return out, err
	}
	c.metrics.Incr("mutation.success", tag)

	// A invalidação acontece mesmo que o chamador já tenha desistido.
	n, ierr := c.Invalidate(context.WithoutCancel(ctx), m.Predicate(in))
	if ierr != nil {
		c.log.Error().Err(ierr).Str("mutation", m.Name).Msg("falha ao invalidar leituras")
	} else {
		c.log.Debug().Str("mutation", m.Name).Int("invalidadas", n).Msg("leituras invalidadas")
	}
	return out, nil
}
