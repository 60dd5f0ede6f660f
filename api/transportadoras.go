package api

import (
	"context"
	"net/http"
	"strconv"
	"time"
)

// Transportadora é o cadastro de uma transportadora no backend.
type Transportadora struct {
	ID                    int64      `json:"id"`
	CNPJ                  string     `json:"cnpj"`
	Nome                  string     `json:"nome"`
	Endereco              string     `json:"endereco"`
	Municipio             string     `json:"municipio"`
	UF                    string     `json:"uf"`
	IntegracaoOcorrencia  string     `json:"integracao_ocorrencia,omitempty"`
	RomaneioAuto          bool       `json:"romaneio_auto"`
	RoterizacaoAutomatica bool       `json:"roterizacao_automatica"`
	TotalRomaneios        int        `json:"total_romaneios,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
	DeletedAt             *time.Time `json:"deleted_at,omitempty"`
}

// Ativa indica que o registro não foi excluído.
func (t Transportadora) Ativa() bool {
	return t.DeletedAt == nil
}

// TransportadoraInput é o corpo de criação e edição.
type TransportadoraInput struct {
	CNPJ                  string `json:"cnpj" validate:"required,cnpj"`
	Nome                  string `json:"nome" validate:"required,max=255"`
	Endereco              string `json:"endereco" validate:"max=255"`
	Municipio             string `json:"municipio" validate:"required,max=100"`
	UF                    string `json:"uf" validate:"required,uf"`
	IntegracaoOcorrencia  string `json:"integracao_ocorrencia,omitempty" validate:"max=100"`
	RomaneioAuto          bool   `json:"romaneio_auto"`
	RoterizacaoAutomatica bool   `json:"roterizacao_automatica"`
}

// TransportadoraStats alimenta os cartões da listagem.
type TransportadoraStats struct {
	Total        int `json:"total"`
	Ativas       int `json:"ativas"`
	RomaneioAuto int `json:"romaneio_auto"`
	TotalEstados int `json:"total_estados"`
}

// CNPJValidation é a resposta da verificação de CNPJ.
type CNPJValidation struct {
	Valid   bool   `json:"valid"`
	Exists  bool   `json:"exists"`
	Message string `json:"message,omitempty"`
}

// ListParams são os filtros da listagem de transportadoras.
type ListParams struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Nome  string `json:"nome,omitempty"`
	UF    string `json:"uf,omitempty"`
}

func (p ListParams) query() map[string]string {
	q := map[string]string{"nome": p.Nome, "uf": p.UF}
	if p.Page > 0 {
		q["page"] = strconv.Itoa(p.Page)
	}
	if p.Limit > 0 {
		q["limit"] = strconv.Itoa(p.Limit)
	}
	return q
}

// Transportadoras acessa o recurso /transportadoras.
type Transportadoras struct {
	c *Client
}

func NewTransportadoras(c *Client) *Transportadoras {
	return &Transportadoras{c: c}
}

func (s *Transportadoras) List(ctx context.Context, p ListParams) (Page[Transportadora], error) {
	env, err := call[[]Transportadora](ctx, s.c, http.MethodGet, "/transportadoras", withQuery(p.query()))
	if err != nil {
		return Page[Transportadora]{}, err
	}
	return pageOf(env), nil
}

func (s *Transportadoras) Get(ctx context.Context, id string) (Transportadora, error) {
	return one[Transportadora](ctx, s.c, http.MethodGet, "/transportadoras/{id}", withPath("id", id))
}

func (s *Transportadoras) GetByCNPJ(ctx context.Context, cnpj string) (Transportadora, error) {
	return one[Transportadora](ctx, s.c, http.MethodGet, "/transportadoras/cnpj/{cnpj}", withPath("cnpj", cnpj))
}

func (s *Transportadoras) GetByUF(ctx context.Context, uf string) ([]Transportadora, error) {
	env, err := call[[]Transportadora](ctx, s.c, http.MethodGet, "/transportadoras/uf/{uf}", withPath("uf", uf))
	return env.Data, err
}

// Search faz a busca textual usada no autocomplete.
func (s *Transportadoras) Search(ctx context.Context, q string, limit int) ([]Transportadora, error) {
	params := map[string]string{"q": q}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}
	env, err := call[[]Transportadora](ctx, s.c, http.MethodGet, "/transportadoras/search", withQuery(params))
	return env.Data, err
}

func (s *Transportadoras) Stats(ctx context.Context) (TransportadoraStats, error) {
	env, err := call[TransportadoraStats](ctx, s.c, http.MethodGet, "/transportadoras/stats")
	return env.Data, err
}

func (s *Transportadoras) ValidateCNPJ(ctx context.Context, cnpj string) (CNPJValidation, error) {
	env, err := call[CNPJValidation](ctx, s.c, http.MethodGet, "/transportadoras/validate-cnpj/{cnpj}", withPath("cnpj", cnpj))
	return env.Data, err
}

func (s *Transportadoras) Create(ctx context.Context, in TransportadoraInput) (Envelope[Transportadora], error) {
	return call[Transportadora](ctx, s.c, http.MethodPost, "/transportadoras", withBody(in))
}

func (s *Transportadoras) Update(ctx context.Context, id string, in TransportadoraInput) (Envelope[Transportadora], error) {
	return call[Transportadora](ctx, s.c, http.MethodPut, "/transportadoras/{id}", withPath("id", id), withBody(in))
}

func (s *Transportadoras) Delete(ctx context.Context, id string) (Envelope[any], error) {
	return call[any](ctx, s.c, http.MethodDelete, "/transportadoras/{id}", withPath("id", id))
}

func (s *Transportadoras) Restore(ctx context.Context, id string) (Envelope[Transportadora], error) {
	return call[Transportadora](ctx, s.c, http.MethodPost, "/transportadoras/{id}/restore", withPath("id", id))
}
