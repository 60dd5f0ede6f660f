package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Step é uma etapa do pipeline.
type Step struct {
	// Name é o identificador único da etapa.
	Name string
	// Required, se true, qualquer falha desta etapa cancela todo o pipeline.
	Required bool
	// Dependencies lista as etapas que precisam terminar antes desta.
	Dependencies []string
	// Run recebe os resultados das dependências que terminaram com sucesso.
	Run func(ctx context.Context, deps map[string]any) (any, error)
}

// Results reúne o que cada etapa produziu.
type Results struct {
	Data   map[string]any
	Errors map[string]error
}

// Value retorna o resultado tipado de uma etapa.
func Value[T any](r Results, name string) (T, bool) {
	v, ok := r.Data[name].(T)
	return v, ok
}

// Pipeline executa etapas em paralelo respeitando dependências (DAG).
// As telas usam o pipeline para disparar leituras independentes ao mesmo
// tempo, como a listagem e os indicadores.
type Pipeline struct {
	steps []Step
}

type stepResult struct {
	name string
	data any
	err  error
}

// NewPipeline cria o pipeline com as etapas informadas.
func NewPipeline(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute executa todas as etapas. Etapas opcionais que falham ficam em
// Results.Errors; a falha de uma etapa obrigatória interrompe o pipeline.
func (p *Pipeline) Execute(ctx context.Context) (Results, error) {
	if err := p.validate(); err != nil {
		return Results{}, err
	}

	start := time.Now()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	res := Results{Data: make(map[string]any), Errors: make(map[string]error)}
	var mu sync.RWMutex

	resultChan := make(chan stepResult, len(p.steps))
	completed := make(map[string]bool)
	started := make(map[string]bool)

	run := func(s Step) {
		mu.RLock()
		deps := make(map[string]any, len(s.Dependencies))
		for _, d := range s.Dependencies {
			if v, ok := res.Data[d]; ok {
				deps[d] = v
			}
		}
		mu.RUnlock()

		data, err := s.Run(ctx, deps)
		select {
		case resultChan <- stepResult{name: s.Name, data: data, err: err}:
		case <-ctx.Done():
		}
	}

	// 1. Inicia as etapas sem dependências
	for _, s := range p.steps {
		if len(s.Dependencies) == 0 {
			started[s.Name] = true
			go run(s)
		}
	}

	// 2. Coleta resultados e libera as dependentes
	for len(completed) < len(p.steps) {
		select {
		case r := <-resultChan:
			mu.Lock()
			if r.err != nil {
				res.Errors[r.name] = r.err
			} else {
				res.Data[r.name] = r.data
			}
			mu.Unlock()
			completed[r.name] = true

			if r.err != nil {
				log.Ctx(ctx).Debug().Err(r.err).Str("step", r.name).Msg("etapa falhou")
				if p.required(r.name) {
					return res, fmt.Errorf("etapa obrigatória '%s' falhou: %w", r.name, r.err)
				}
			}

			for _, s := range p.steps {
				if started[s.Name] || !ready(s, completed) {
					continue
				}
				started[s.Name] = true
				go run(s)
			}

		case <-ctx.Done():
			return res, fmt.Errorf("pipeline interrompido: %w", ctx.Err())
		}
	}

	log.Ctx(ctx).Debug().Int64("duration_ms", time.Since(start).Milliseconds()).Msg("pipeline executado")
	return res, nil
}

func (p *Pipeline) required(name string) bool {
	for _, s := range p.steps {
		if s.Name == name {
			return s.Required
		}
	}
	return false
}

func ready(s Step, completed map[string]bool) bool {
	for _, d := range s.Dependencies {
		if !completed[d] {
			return false
		}
	}
	return true
}

// validate rejeita nomes repetidos, dependências desconhecidas e ciclos,
// que deixariam o pipeline esperando para sempre.
func (p *Pipeline) validate() error {
	byName := make(map[string]Step, len(p.steps))
	for _, s := range p.steps {
		if _, dup := byName[s.Name]; dup {
			return fmt.Errorf("etapa duplicada: '%s'", s.Name)
		}
		byName[s.Name] = s
	}
	for _, s := range p.steps {
		for _, d := range s.Dependencies {
			if _, ok := byName[d]; !ok {
				return fmt.Errorf("etapa '%s' depende de '%s', que não existe", s.Name, d)
			}
		}
	}

	const (
		visiting = 1
		done     = 2
	)
	state := make(map[string]int, len(p.steps))
	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case visiting:
			return fmt.Errorf("dependência circular envolvendo '%s'", name)
		case done:
			return nil
		}
		state[name] = visiting
		for _, d := range byName[name].Dependencies {
			if err := visit(d); err != nil {
				return err
			}
		}
		state[name] = done
		return nil
	}
	for _, s := range p.steps {
		if err := visit(s.Name); err != nil {
			return err
		}
	}
	return nil
}
