package queries

import (
	"context"
	"unicode/utf8"

	"github.com/Egles-vieira/bolt-console/api"
	"github.com/Egles-vieira/bolt-console/pkg/format"
	"github.com/Egles-vieira/bolt-console/pkg/query"
)

// TransportadoraService é o subconjunto do cliente do backend usado aqui.
type TransportadoraService interface {
	List(ctx context.Context, p api.ListParams) (api.Page[api.Transportadora], error)
	Get(ctx context.Context, id string) (api.Transportadora, error)
	GetByCNPJ(ctx context.Context, cnpj string) (api.Transportadora, error)
	GetByUF(ctx context.Context, uf string) ([]api.Transportadora, error)
	Search(ctx context.Context, q string, limit int) ([]api.Transportadora, error)
	Stats(ctx context.Context) (api.TransportadoraStats, error)
	ValidateCNPJ(ctx context.Context, cnpj string) (api.CNPJValidation, error)
	Create(ctx context.Context, in api.TransportadoraInput) (api.Envelope[api.Transportadora], error)
	Update(ctx context.Context, id string, in api.TransportadoraInput) (api.Envelope[api.Transportadora], error)
	Delete(ctx context.Context, id string) (api.Envelope[any], error)
	Restore(ctx context.Context, id string) (api.Envelope[api.Transportadora], error)
}

// UpdateTransportadora é a entrada da edição.
type UpdateTransportadora struct {
	ID   string
	Data api.TransportadoraInput
}

// Transportadoras monta as leituras e escritas de transportadoras.
type Transportadoras struct {
	svc TransportadoraService
}

func NewTransportadoras(svc TransportadoraService) *Transportadoras {
	return &Transportadoras{svc: svc}
}

// List é a listagem paginada; mantém a página anterior durante a troca.
func (t *Transportadoras) List(p api.ListParams) query.Query[api.Page[api.Transportadora]] {
	return query.Query[api.Page[api.Transportadora]]{
		Key:              query.NewKey(FamilyTransportadoras, p),
		Fetch:            func(ctx context.Context) (api.Page[api.Transportadora], error) { return t.svc.List(ctx, p) },
		StaleTime:        StaleTime,
		KeepPreviousData: true,
	}
}

func (t *Transportadoras) Detail(id string) query.Query[api.Transportadora] {
	return query.Query[api.Transportadora]{
		Key:       query.NewKey(FamilyTransportadora, id),
		Fetch:     func(ctx context.Context) (api.Transportadora, error) { return t.svc.Get(ctx, id) },
		Disabled:  id == "",
		StaleTime: StaleTime,
	}
}

// ByCNPJ só busca quando o CNPJ tem 14 dígitos.
func (t *Transportadoras) ByCNPJ(cnpj string) query.Query[api.Transportadora] {
	digits := format.RemoveFormatting(cnpj)
	return query.Query[api.Transportadora]{
		Key:       query.NewKey(FamilyTransportadoraCNPJ, digits),
		Fetch:     func(ctx context.Context) (api.Transportadora, error) { return t.svc.GetByCNPJ(ctx, digits) },
		Disabled:  len(digits) != 14,
		StaleTime: StaleTime,
	}
}

// ByUF só busca com uma sigla de dois caracteres.
func (t *Transportadoras) ByUF(uf string) query.Query[[]api.Transportadora] {
	return query.Query[[]api.Transportadora]{
		Key:       query.NewKey(FamilyTransportadorasUF, uf),
		Fetch:     func(ctx context.Context) ([]api.Transportadora, error) { return t.svc.GetByUF(ctx, uf) },
		Disabled:  len(uf) != 2,
		StaleTime: StaleTime,
	}
}

// Search exige pelo menos dois caracteres e envelhece em um minuto.
func (t *Transportadoras) Search(term string, limit int) query.Query[[]api.Transportadora] {
	if limit <= 0 {
		limit = PageSize
	}
	return query.Query[[]api.Transportadora]{
		Key:       query.NewKey(FamilyTransportadorasBusca, term, limit),
		Fetch:     func(ctx context.Context) ([]api.Transportadora, error) { return t.svc.Search(ctx, term, limit) },
		Disabled:  utf8.RuneCountInString(term) < SearchMinLength,
		StaleTime: SearchStaleTime,
	}
}

func (t *Transportadoras) Stats() query.Query[api.TransportadoraStats] {
	return query.Query[api.TransportadoraStats]{
		Key:       query.NewKey(FamilyTransportadorasStats),
		Fetch:     t.svc.Stats,
		StaleTime: StaleTime,
	}
}

// ValidateCNPJ nunca tenta de novo e nunca é servida como fresca: cada
// leitura revalida no backend.
func (t *Transportadoras) ValidateCNPJ(cnpj string) query.Query[api.CNPJValidation] {
	digits := format.RemoveFormatting(cnpj)
	return query.Query[api.CNPJValidation]{
		Key:       query.NewKey(FamilyValidateCNPJ, digits),
		Fetch:     func(ctx context.Context) (api.CNPJValidation, error) { return t.svc.ValidateCNPJ(ctx, digits) },
		Disabled: len(digits) != 14,
		NoRetry:  true,
	}
}

func detailKey(id string) []query.Key {
	return []query.Key{query.NewKey(FamilyTransportadora, id)}
}

func (t *Transportadoras) Create() query.Mutation[api.TransportadoraInput, api.Envelope[api.Transportadora]] {
	return query.Mutation[api.TransportadoraInput, api.Envelope[api.Transportadora]]{
		Name:        "transportadora.create",
		Do:          t.svc.Create,
		Invalidates: []string{FamilyTransportadoras, FamilyTransportadorasStats},
		Success:     "Transportadora criada com sucesso!",
		Failure:     "Erro ao criar transportadora",
	}
}

func (t *Transportadoras) Update() query.Mutation[UpdateTransportadora, api.Envelope[api.Transportadora]] {
	return query.Mutation[UpdateTransportadora, api.Envelope[api.Transportadora]]{
		Name: "transportadora.update",
		Do: func(ctx context.Context, in UpdateTransportadora) (api.Envelope[api.Transportadora], error) {
			return t.svc.Update(ctx, in.ID, in.Data)
		},
		Invalidates:     []string{FamilyTransportadoras, FamilyTransportadorasStats},
		InvalidatesKeys: func(in UpdateTransportadora) []query.Key { return detailKey(in.ID) },
		Success:         "Transportadora atualizada com sucesso!",
		Failure:         "Erro ao atualizar transportadora",
	}
}

// Delete também invalida o detalhe, que passa a exibir a data de exclusão.
func (t *Transportadoras) Delete() query.Mutation[string, api.Envelope[any]] {
	return query.Mutation[string, api.Envelope[any]]{
		Name:            "transportadora.delete",
		Do:              t.svc.Delete,
		Invalidates:     []string{FamilyTransportadoras, FamilyTransportadorasStats},
		InvalidatesKeys: detailKey,
		Success:         "Transportadora deletada com sucesso!",
		Failure:         "Erro ao deletar transportadora",
	}
}

func (t *Transportadoras) Restore() query.Mutation[string, api.Envelope[api.Transportadora]] {
	return query.Mutation[string, api.Envelope[api.Transportadora]]{
		Name:            "transportadora.restore",
		Do:              t.svc.Restore,
		Invalidates:     []string{FamilyTransportadoras, FamilyTransportadorasStats},
		InvalidatesKeys: detailKey,
		Success:         "Transportadora restaurada com sucesso!",
		Failure:         "Erro ao restaurar transportadora",
	}
}
