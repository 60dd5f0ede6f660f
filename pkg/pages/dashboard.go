package pages

import (
	"context"
	"net/http"

	"github.com/Egles-vieira/bolt-console/api"
	"github.com/Egles-vieira/bolt-console/pkg/query"
	"github.com/Egles-vieira/bolt-console/pkg/router"
)

type dashboardView struct {
	User            string                   `json:"user"`
	Transportadoras *api.TransportadoraStats `json:"transportadoras,omitempty"`
	Vinculos        *api.VinculoStats        `json:"vinculos,omitempty"`
	Errors          map[string]string        `json:"errors,omitempty"`
}

// fetchStep transforma uma leitura em etapa de pipeline.
func fetchStep[T any](p *Pages, name string, required bool, q query.Query[T]) api.Step {
	return api.Step{
		Name:     name,
		Required: required,
		Run: func(ctx context.Context, _ map[string]any) (any, error) {
			res, err := query.Fetch(ctx, p.Query, q)
			if err != nil {
				return nil, err
			}
			return res, nil
		},
	}
}

// stepData extrai o dado de uma etapa criada por fetchStep.
func stepData[T any](r api.Results, name string) (T, bool) {
	res, ok := api.Value[query.Result[T]](r, name)
	if !ok || !res.HasData() {
		var zero T
		return zero, false
	}
	return res.Data, true
}

func (p *Pages) dashboard(w http.ResponseWriter, r *http.Request) {
	pl := api.NewPipeline(
		fetchStep(p, "transportadoras", false, p.Transportadoras.Stats()),
		fetchStep(p, "vinculos", false, p.Vinculos.Stats()),
	)
	res, err := pl.Execute(r.Context())
	if err != nil {
		readError(w, err, "", "Erro ao carregar o painel")
		return
	}

	view := dashboardView{User: currentUser(r).Name}
	if s, ok := stepData[api.TransportadoraStats](res, "transportadoras"); ok {
		view.Transportadoras = &s
	}
	if s, ok := stepData[api.VinculoStats](res, "vinculos"); ok {
		view.Vinculos = &s
	}
	for name, err := range res.Errors {
		if view.Errors == nil {
			view.Errors = make(map[string]string)
		}
		view.Errors[name] = api.Message(err, "Erro ao carregar indicadores")
	}
	router.JSON(w, http.StatusOK, view)
}
