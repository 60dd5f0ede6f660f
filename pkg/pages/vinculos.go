package pages

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/Egles-vieira/bolt-console/api"
	"github.com/Egles-vieira/bolt-console/pkg/export"
	"github.com/Egles-vieira/bolt-console/pkg/format"
	"github.com/Egles-vieira/bolt-console/pkg/listing"
	"github.com/Egles-vieira/bolt-console/pkg/queries"
	"github.com/Egles-vieira/bolt-console/pkg/query"
	"github.com/Egles-vieira/bolt-console/pkg/router"
)

const (
	vinculoNotFound            = "Vínculo não encontrado"
	deleteVinculoPrompt        = "Tem certeza que deseja deletar este vínculo?"
	deleteVinculosPrompt       = "Tem certeza que deseja deletar todos os vínculos desta transportadora?"
	deleteVinculosCodigoPrompt = "Tem certeza que deseja deletar todos os vínculos deste código?"
	maxImportSize              = 10 << 20
)

var exportFormats = map[string]bool{"csv": true, "xlsx": true}

type vinculoRow struct {
	ID                   int64  `json:"id"`
	TransportadoraID     int64  `json:"transportadora_id"`
	Transportadora       string `json:"transportadora,omitempty"`
	CodigoOcorrencia     int    `json:"codigo_ocorrencia"`
	CodigoTransportadora string `json:"codigo_transportadora,omitempty"`
	Descricao            string `json:"descricao,omitempty"`
	Ativo                bool   `json:"ativo"`
	Status               string `json:"status"`
	CreatedAt            string `json:"created_at"`
}

func vinculoRowOf(v api.Vinculo) vinculoRow {
	row := vinculoRow{
		ID:                   v.ID,
		TransportadoraID:     v.TransportadoraID,
		CodigoOcorrencia:     v.CodigoOcorrencia,
		CodigoTransportadora: v.CodigoTransportadora,
		Descricao:            format.TruncateDefault(v.Descricao),
		Ativo:                v.Ativo,
		Status:               "Inativo",
		CreatedAt:            format.Date(v.CreatedAt, false),
	}
	if v.Ativo {
		row.Status = "Ativo"
	}
	if v.Transportadora != nil {
		row.Transportadora = v.Transportadora.Nome
	}
	return row
}

func vinculoRows(items []api.Vinculo) []vinculoRow {
	rows := make([]vinculoRow, 0, len(items))
	for _, v := range items {
		rows = append(rows, vinculoRowOf(v))
	}
	return rows
}

type vinculoListView struct {
	Filters    listing.State     `json:"filters"`
	Status     query.Status      `json:"status"`
	Rows       []vinculoRow      `json:"rows"`
	Pagination api.Pagination    `json:"pagination"`
	Stats      *api.VinculoStats `json:"stats,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// renderVinculoPage busca uma listagem de vínculos junto com os indicadores.
func (p *Pages) renderVinculoPage(w http.ResponseWriter, r *http.Request, view string, state listing.State, q query.Query[api.Page[api.Vinculo]]) {
	user := currentUser(r)
	obs := observer[api.Page[api.Vinculo]](p, user.ID, view)
	out := vinculoListView{Filters: state, Rows: []vinculoRow{}}

	if q.Disabled {
		out.Status = query.StatusDisabled
		router.JSON(w, http.StatusOK, out)
		return
	}

	if !waitFor(r) {
		res := obs.Peek(r.Context(), p.Query, q)
		out.Status = res.Status
		if res.HasData() {
			out.Rows = vinculoRows(res.Data.Items)
			out.Pagination = res.Data.Pagination
		}
		router.JSON(w, http.StatusOK, out)
		return
	}

	pl := api.NewPipeline(
		api.Step{
			Name:     "list",
			Required: true,
			Run: func(ctx context.Context, _ map[string]any) (any, error) {
				return obs.Fetch(ctx, p.Query, q)
			},
		},
		fetchStep(p, "stats", false, p.Vinculos.Stats()),
	)
	res, err := pl.Execute(r.Context())
	if err != nil {
		out.Error = api.Message(err, "Erro ao carregar vínculos")
		router.JSON(w, http.StatusBadGateway, out)
		return
	}
	if page, ok := api.Value[query.Result[api.Page[api.Vinculo]]](res, "list"); ok {
		out.Status = page.Status
		out.Rows = vinculoRows(page.Data.Items)
		out.Pagination = page.Data.Pagination
	}
	if s, ok := stepData[api.VinculoStats](res, "stats"); ok {
		out.Stats = &s
	}
	router.JSON(w, http.StatusOK, out)
}

func (p *Pages) listVinculos(w http.ResponseWriter, r *http.Request) {
	state := p.Listing.Update(currentUser(r).ID, "vinculos", listChange(r, "codigo"))
	params := api.VinculoParams{
		Page:             state.Page,
		Limit:            state.Limit,
		Codigo:           state.Search,
		TransportadoraID: r.URL.Query().Get("transportadora_id"),
	}
	p.renderVinculoPage(w, r, "vinculos", state, p.Vinculos.List(params))
}

func (p *Pages) vinculosByTransportadora(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	view := "vinculos:transportadora:" + id
	state := p.Listing.Update(currentUser(r).ID, view, listChange(r, "codigo"))
	params := api.VinculoParams{Page: state.Page, Limit: state.Limit, Codigo: state.Search}
	p.renderVinculoPage(w, r, view, state, p.Vinculos.ByTransportadora(id, params))
}

func (p *Pages) vinculosByCodigo(w http.ResponseWriter, r *http.Request) {
	codigo := mux.Vars(r)["codigo"]
	view := "vinculos:codigo:" + codigo
	state := p.Listing.Update(currentUser(r).ID, view, listChange(r, "transportadora_id"))
	params := api.VinculoParams{Page: state.Page, Limit: state.Limit, TransportadoraID: state.Search}
	p.renderVinculoPage(w, r, view, state, p.Vinculos.ByCodigo(codigo, params))
}

type vinculoView struct {
	vinculoRow
	DescricaoCompleta string            `json:"descricao_completa,omitempty"`
	Dates             map[string]string `json:"dates"`
}

func vinculoViewOf(v api.Vinculo) vinculoView {
	return vinculoView{
		vinculoRow:        vinculoRowOf(v),
		DescricaoCompleta: v.Descricao,
		Dates:             dates(v.CreatedAt, v.UpdatedAt),
	}
}

func (p *Pages) vinculoEspecifico(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	res, err := query.Fetch(r.Context(), p.Query, p.Vinculos.Especifico(vars["id"], vars["codigo"]))
	if err != nil {
		readError(w, err, vinculoNotFound, "Erro ao carregar vínculo")
		return
	}
	router.JSON(w, http.StatusOK, vinculoViewOf(res.Data))
}

type vinculoForm struct {
	Mode   string           `json:"mode"`
	ID     string           `json:"id,omitempty"`
	Values api.VinculoInput `json:"values"`
}

func (p *Pages) editVinculoForm(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["vinculoId"]
	res, err := query.Fetch(r.Context(), p.Query, p.Vinculos.Detail(id))
	if err != nil {
		readError(w, err, vinculoNotFound, "Erro ao carregar vínculo")
		return
	}
	v := res.Data
	router.JSON(w, http.StatusOK, vinculoForm{
		Mode: "edit",
		ID:   id,
		Values: api.VinculoInput{
			TransportadoraID:     v.TransportadoraID,
			CodigoOcorrencia:     v.CodigoOcorrencia,
			CodigoTransportadora: v.CodigoTransportadora,
			Descricao:            v.Descricao,
			Ativo:                v.Ativo,
		},
	})
}

// transportadoraID lê o {id} da rota como número.
func transportadoraID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		badRequest(w, errors.New("transportadora inválida"))
		return 0, false
	}
	return id, true
}

func (p *Pages) readVinculo(w http.ResponseWriter, r *http.Request) (api.VinculoInput, bool) {
	tid, ok := transportadoraID(w, r)
	if !ok {
		return api.VinculoInput{}, false
	}
	var in api.VinculoInput
	if err := decodeJSON(r, &in); err != nil {
		badRequest(w, err)
		return in, false
	}
	in.TransportadoraID = tid
	in.CodigoTransportadora = strings.TrimSpace(in.CodigoTransportadora)

	if err := p.validate.Struct(in); err != nil {
		router.JSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": fieldErrors(err)})
		return in, false
	}
	return in, true
}

func (p *Pages) createVinculo(w http.ResponseWriter, r *http.Request) {
	in, ok := p.readVinculo(w, r)
	if !ok {
		return
	}
	out, note, err := mutate(p, r, p.Vinculos.Create(), in, strconv.FormatInt(in.TransportadoraID, 10))
	writeMutation(w, http.StatusCreated, out.Data, note, err)
}

type bulkVinculos struct {
	Vinculos []api.VinculoInput `json:"vinculos" validate:"required,min=1,dive"`
}

func (p *Pages) createVinculos(w http.ResponseWriter, r *http.Request) {
	tid, ok := transportadoraID(w, r)
	if !ok {
		return
	}
	var in bulkVinculos
	if err := decodeJSON(r, &in); err != nil {
		badRequest(w, err)
		return
	}
	for i := range in.Vinculos {
		in.Vinculos[i].TransportadoraID = tid
	}
	if err := p.validate.Struct(in); err != nil {
		router.JSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": fieldErrors(err)})
		return
	}

	out, note, err := mutate(p, r, p.Vinculos.CreateMany(), in.Vinculos, strconv.FormatInt(tid, 10))
	writeMutation(w, http.StatusCreated, out.Data, note, err)
}

func (p *Pages) updateVinculo(w http.ResponseWriter, r *http.Request) {
	in, ok := p.readVinculo(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["vinculoId"]
	out, note, err := mutate(p, r, p.Vinculos.Update(), queries.UpdateVinculo{ID: id, Data: in}, id)
	writeMutation(w, http.StatusOK, out.Data, note, err)
}

func (p *Pages) deleteVinculo(w http.ResponseWriter, r *http.Request) {
	if !confirmed(r) {
		needsConfirmation(w, deleteVinculoPrompt)
		return
	}
	id := mux.Vars(r)["vinculoId"]
	_, note, err := mutate(p, r, p.Vinculos.Delete(), id, id)
	writeMutation(w, http.StatusOK, nil, note, err)
}

func (p *Pages) deleteVinculosByTransportadora(w http.ResponseWriter, r *http.Request) {
	if !confirmed(r) {
		needsConfirmation(w, deleteVinculosPrompt)
		return
	}
	id := mux.Vars(r)["id"]
	_, note, err := mutate(p, r, p.Vinculos.DeleteByTransportadora(), id, id)
	writeMutation(w, http.StatusOK, nil, note, err)
}

func (p *Pages) deleteVinculosByCodigo(w http.ResponseWriter, r *http.Request) {
	if !confirmed(r) {
		needsConfirmation(w, deleteVinculosCodigoPrompt)
		return
	}
	codigo := mux.Vars(r)["codigo"]
	_, note, err := mutate(p, r, p.Vinculos.DeleteByCodigo(), codigo, codigo)
	writeMutation(w, http.StatusOK, nil, note, err)
}

func (p *Pages) importVinculos(w http.ResponseWriter, r *http.Request) {
	if _, ok := transportadoraID(w, r); !ok {
		return
	}
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		badRequest(w, errors.New("arquivo inválido"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		badRequest(w, errors.New("arquivo CSV obrigatório"))
		return
	}
	defer file.Close()

	id := mux.Vars(r)["id"]
	in := queries.ImportCSV{Filename: header.Filename, File: file, TransportadoraID: id}
	out, note, err := mutate(p, r, p.Vinculos.ImportCSV(), in, id)
	writeMutation(w, http.StatusOK, out.Data, note, err)
}

func (p *Pages) exportVinculos(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := api.ExportParams{
		Format:           strings.ToLower(q.Get("format")),
		TransportadoraID: q.Get("transportadora_id"),
		Codigo:           q.Get("codigo"),
	}
	if params.Format == "" {
		params.Format = "csv"
	}
	if !exportFormats[params.Format] {
		badRequest(w, errors.New("formato de exportação não suportado"))
		return
	}

	// A auditoria só é gravada depois da entrega, que também pode falhar.
	m := p.Vinculos.Export()
	file, err := query.Mutate(r.Context(), p.Query, m, params)
	if err != nil {
		note := failure(api.Message(err, m.Failure))
		p.record(r, m.Name, params.Format, note)
		writeMutation(w, 0, nil, note, err)
		return
	}

	err = p.Export.Deliver(r.Context(), w, file)
	if err == nil {
		p.record(r, m.Name, params.Format, success(m.Success))
		return
	}

	p.Logger.Error().Err(err).Str("file", file.Filename).Msg("falha ao entregar exportação")
	note := failure(m.Failure)
	p.record(r, m.Name, params.Format, note)
	if !errors.Is(err, export.ErrInterrupted) {
		router.JSON(w, http.StatusBadGateway, map[string]any{"notification": note})
	}
}
