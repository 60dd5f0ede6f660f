package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

const vinculosPath = "/transportadora-codigo-ocorrencia"

// Vinculo associa uma transportadora a um código de ocorrência de entrega.
type Vinculo struct {
	ID                   int64           `json:"id"`
	TransportadoraID     int64           `json:"transportadora_id"`
	CodigoOcorrencia     int             `json:"codigo_ocorrencia"`
	CodigoTransportadora string          `json:"codigo_transportadora,omitempty"`
	Descricao            string          `json:"descricao,omitempty"`
	Ativo                bool            `json:"ativo"`
	Transportadora       *Transportadora `json:"transportadora,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// VinculoInput é o corpo de criação e edição de vínculos.
type VinculoInput struct {
	TransportadoraID     int64  `json:"transportadora_id" validate:"required,gt=0"`
	CodigoOcorrencia     int    `json:"codigo_ocorrencia" validate:"required,gt=0"`
	CodigoTransportadora string `json:"codigo_transportadora,omitempty" validate:"max=50"`
	Descricao            string `json:"descricao,omitempty" validate:"max=255"`
	Ativo                bool   `json:"ativo"`
}

// VinculoStats resume os vínculos cadastrados.
type VinculoStats struct {
	Total                int `json:"total"`
	Ativos               int `json:"ativos"`
	TotalTransportadoras int `json:"total_transportadoras"`
	TotalCodigos         int `json:"total_codigos"`
}

// ImportResult é a resposta da importação de CSV.
type ImportResult struct {
	Importados int      `json:"importados"`
	Ignorados  int      `json:"ignorados"`
	Erros      []string `json:"erros,omitempty"`
}

// VinculoParams filtra as listagens de vínculos.
type VinculoParams struct {
	Page             int    `json:"page"`
	Limit            int    `json:"limit"`
	TransportadoraID string `json:"transportadora_id,omitempty"`
	Codigo           string `json:"codigo_ocorrencia,omitempty"`
}

func (p VinculoParams) query() map[string]string {
	q := map[string]string{"transportadora_id": p.TransportadoraID, "codigo_ocorrencia": p.Codigo}
	if p.Page > 0 {
		q["page"] = strconv.Itoa(p.Page)
	}
	if p.Limit > 0 {
		q["limit"] = strconv.Itoa(p.Limit)
	}
	return q
}

// ExportParams define o formato e o recorte da exportação.
type ExportParams struct {
	Format           string `json:"format"`
	TransportadoraID string `json:"transportadora_id,omitempty"`
	Codigo           string `json:"codigo_ocorrencia,omitempty"`
}

// Vinculos acessa o recurso /transportadora-codigo-ocorrencia.
type Vinculos struct {
	c *Client
}

func NewVinculos(c *Client) *Vinculos {
	return &Vinculos{c: c}
}

func (s *Vinculos) List(ctx context.Context, p VinculoParams) (Page[Vinculo], error) {
	env, err := call[[]Vinculo](ctx, s.c, http.MethodGet, vinculosPath, withQuery(p.query()))
	if err != nil {
		return Page[Vinculo]{}, err
	}
	return pageOf(env), nil
}

func (s *Vinculos) Get(ctx context.Context, id string) (Vinculo, error) {
	return one[Vinculo](ctx, s.c, http.MethodGet, vinculosPath+"/{id}", withPath("id", id))
}

// ByTransportadora lista os códigos vinculados a uma transportadora.
func (s *Vinculos) ByTransportadora(ctx context.Context, transportadoraID string, p VinculoParams) (Page[Vinculo], error) {
	env, err := call[[]Vinculo](ctx, s.c, http.MethodGet, vinculosPath+"/transportadora/{id}",
		withPath("id", transportadoraID), withQuery(p.query()))
	if err != nil {
		return Page[Vinculo]{}, err
	}
	return pageOf(env), nil
}

// ByCodigo lista as transportadoras vinculadas a um código de ocorrência.
func (s *Vinculos) ByCodigo(ctx context.Context, codigo string, p VinculoParams) (Page[Vinculo], error) {
	env, err := call[[]Vinculo](ctx, s.c, http.MethodGet, vinculosPath+"/codigo/{codigo}",
		withPath("codigo", codigo), withQuery(p.query()))
	if err != nil {
		return Page[Vinculo]{}, err
	}
	return pageOf(env), nil
}

// Vinculo busca o vínculo entre uma transportadora e um código específico.
func (s *Vinculos) Vinculo(ctx context.Context, transportadoraID, codigo string) (Vinculo, error) {
	return one[Vinculo](ctx, s.c, http.MethodGet, vinculosPath+"/vinculo/{id}/{codigo}",
		withPath("id", transportadoraID), withPath("codigo", codigo))
}

func (s *Vinculos) Stats(ctx context.Context) (VinculoStats, error) {
	env, err := call[VinculoStats](ctx, s.c, http.MethodGet, vinculosPath+"/stats")
	return env.Data, err
}

func (s *Vinculos) Create(ctx context.Context, in VinculoInput) (Envelope[Vinculo], error) {
	return call[Vinculo](ctx, s.c, http.MethodPost, vinculosPath, withBody(in))
}

// CreateMany cria vários vínculos numa única chamada.
func (s *Vinculos) CreateMany(ctx context.Context, in []VinculoInput) (Envelope[[]Vinculo], error) {
	return call[[]Vinculo](ctx, s.c, http.MethodPost, vinculosPath+"/bulk", withBody(map[string]any{"vinculos": in}))
}

func (s *Vinculos) Update(ctx context.Context, id string, in VinculoInput) (Envelope[Vinculo], error) {
	return call[Vinculo](ctx, s.c, http.MethodPut, vinculosPath+"/{id}", withPath("id", id), withBody(in))
}

func (s *Vinculos) Delete(ctx context.Context, id string) (Envelope[any], error) {
	return call[any](ctx, s.c, http.MethodDelete, vinculosPath+"/{id}", withPath("id", id))
}

func (s *Vinculos) DeleteByTransportadora(ctx context.Context, transportadoraID string) (Envelope[any], error) {
	return call[any](ctx, s.c, http.MethodDelete, vinculosPath+"/transportadora/{id}", withPath("id", transportadoraID))
}

func (s *Vinculos) DeleteByCodigo(ctx context.Context, codigo string) (Envelope[any], error) {
	return call[any](ctx, s.c, http.MethodDelete, vinculosPath+"/codigo/{codigo}", withPath("codigo", codigo))
}

// ImportCSV envia o arquivo como multipart. transportadoraID é opcional e
// restringe a importação a uma transportadora.
func (s *Vinculos) ImportCSV(ctx context.Context, filename string, file io.Reader, transportadoraID string) (Envelope[ImportResult], error) {
	return call[ImportResult](ctx, s.c, http.MethodPost, vinculosPath+"/import", func(r *resty.Request) {
		r.SetFileReader("file", filename, file)
		if transportadoraID != "" {
			r.SetFormData(map[string]string{"transportadora_id": transportadoraID})
		}
	})
}

// Export devolve o corpo da exportação sem lê-lo. Quem chama é responsável
// por fechar o io.ReadCloser.
func (s *Vinculos) Export(ctx context.Context, p ExportParams) (io.ReadCloser, string, error) {
	if p.Format == "" {
		p.Format = "csv"
	}
	req := s.c.http.R().SetContext(ctx).SetDoNotParseResponse(true)
	withQuery(map[string]string{
		"format":            p.Format,
		"transportadora_id": p.TransportadoraID,
		"codigo_ocorrencia": p.Codigo,
	})(req)

	resp, err := req.Get(vinculosPath + "/export")
	if err != nil {
		return nil, "", fmt.Errorf("erro de conexão na exportação: %w", err)
	}

	body := resp.RawBody()
	if resp.IsError() {
		defer body.Close()
		var eb errorBody
		raw, _ := io.ReadAll(io.LimitReader(body, 64<<10))
		_ = json.Unmarshal(raw, &eb)
		return nil, "", &APIError{Status: resp.StatusCode(), Message: eb.Message, Method: http.MethodGet, Path: vinculosPath + "/export"}
	}
	return body, resp.Header().Get("Content-Type"), nil
}
