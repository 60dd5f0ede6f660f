package pages

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/Egles-vieira/bolt-console/api"
	"github.com/Egles-vieira/bolt-console/pkg/format"
	"github.com/Egles-vieira/bolt-console/pkg/listing"
	"github.com/Egles-vieira/bolt-console/pkg/queries"
	"github.com/Egles-vieira/bolt-console/pkg/query"
	"github.com/Egles-vieira/bolt-console/pkg/router"
)

const (
	transportadoraNotFound     = "Transportadora não encontrada"
	deleteTransportadoraPrompt = "Tem certeza que deseja deletar esta transportadora?"
)

type transportadoraRow struct {
	ID           int64  `json:"id"`
	Nome         string `json:"nome"`
	CNPJ         string `json:"cnpj"`
	Municipio    string `json:"municipio"`
	UF           string `json:"uf"`
	Status       string `json:"status"`
	Ativa        bool   `json:"ativa"`
	RomaneioAuto bool   `json:"romaneio_auto"`
	CreatedAt    string `json:"created_at"`
}

func transportadoraRowOf(t api.Transportadora) transportadoraRow {
	status := "Ativa"
	if !t.Ativa() {
		status = "Inativa"
	}
	return transportadoraRow{
		ID:           t.ID,
		Nome:         t.Nome,
		CNPJ:         format.CNPJ(t.CNPJ),
		Municipio:    t.Municipio,
		UF:           t.UF,
		Status:       status,
		Ativa:        t.Ativa(),
		RomaneioAuto: t.RomaneioAuto,
		CreatedAt:    format.Date(t.CreatedAt, false),
	}
}

func transportadoraRows(items []api.Transportadora) []transportadoraRow {
	rows := make([]transportadoraRow, 0, len(items))
	for _, t := range items {
		rows = append(rows, transportadoraRowOf(t))
	}
	return rows
}

type transportadoraListView struct {
	Filters    listing.State            `json:"filters"`
	UFs        []string                 `json:"ufs"`
	Status     query.Status             `json:"status"`
	Rows       []transportadoraRow      `json:"rows"`
	Pagination api.Pagination           `json:"pagination"`
	Stats      *api.TransportadoraStats `json:"stats,omitempty"`
	Error      string                   `json:"error,omitempty"`
}

// listChange lê page, nome e uf da query; parâmetros ausentes não alteram o
// estado salvo.
func listChange(r *http.Request, searchParam string) listing.Change {
	q := r.URL.Query()
	var c listing.Change
	if q.Has("page") {
		if n, err := strconv.Atoi(q.Get("page")); err == nil {
			c.Page = &n
		}
	}
	if q.Has(searchParam) {
		s := strings.TrimSpace(q.Get(searchParam))
		c.Search = &s
	}
	if q.Has("uf") {
		uf := q.Get("uf")
		c.UF = &uf
	}
	return c
}

// waitFor indica se a tela deve esperar a busca; wait=false devolve o que
// houver (inclusive a página anterior) sem bloquear.
func waitFor(r *http.Request) bool {
	return r.URL.Query().Get("wait") != "false"
}

func (p *Pages) listTransportadoras(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	state := p.Listing.Update(user.ID, "transportadoras", listChange(r, "nome"))
	list := p.Transportadoras.List(api.ListParams{Page: state.Page, Limit: state.Limit, Nome: state.Search, UF: state.UF})
	obs := observer[api.Page[api.Transportadora]](p, user.ID, "transportadoras")

	view := transportadoraListView{Filters: state, UFs: format.UFs, Rows: []transportadoraRow{}}

	if !waitFor(r) {
		res := obs.Peek(r.Context(), p.Query, list)
		view.Status = res.Status
		if res.HasData() {
			view.Rows = transportadoraRows(res.Data.Items)
			view.Pagination = res.Data.Pagination
		}
		stats := observer[api.TransportadoraStats](p, user.ID, "transportadoras-stats").Peek(r.Context(), p.Query, p.Transportadoras.Stats())
		if stats.HasData() {
			view.Stats = &stats.Data
		}
		router.JSON(w, http.StatusOK, view)
		return
	}

	pl := api.NewPipeline(
		api.Step{
			Name:     "list",
			Required: true,
			Run: func(ctx context.Context, _ map[string]any) (any, error) {
				return obs.Fetch(ctx, p.Query, list)
			},
		},
		fetchStep(p, "stats", false, p.Transportadoras.Stats()),
	)
	res, err := pl.Execute(r.Context())
	if err != nil {
		view.Error = api.Message(err, "Erro ao carregar transportadoras")
		router.JSON(w, http.StatusBadGateway, view)
		return
	}

	if page, ok := api.Value[query.Result[api.Page[api.Transportadora]]](res, "list"); ok {
		view.Status = page.Status
		view.Rows = transportadoraRows(page.Data.Items)
		view.Pagination = page.Data.Pagination
	}
	if s, ok := stepData[api.TransportadoraStats](res, "stats"); ok {
		view.Stats = &s
	}
	router.JSON(w, http.StatusOK, view)
}

type transportadoraView struct {
	transportadoraRow
	Endereco              string            `json:"endereco"`
	IntegracaoOcorrencia  string            `json:"integracao_ocorrencia,omitempty"`
	RoterizacaoAutomatica bool              `json:"roterizacao_automatica"`
	TotalRomaneios        int               `json:"total_romaneios"`
	Dates                 map[string]string `json:"dates"`
	DeletedAt             string            `json:"deleted_at,omitempty"`
}

func transportadoraViewOf(t api.Transportadora) transportadoraView {
	v := transportadoraView{
		transportadoraRow:     transportadoraRowOf(t),
		Endereco:              t.Endereco,
		IntegracaoOcorrencia:  t.IntegracaoOcorrencia,
		RoterizacaoAutomatica: t.RoterizacaoAutomatica,
		TotalRomaneios:        t.TotalRomaneios,
		Dates:                 dates(t.CreatedAt, t.UpdatedAt),
	}
	if t.DeletedAt != nil {
		v.DeletedAt = format.DateTime(*t.DeletedAt)
	}
	return v
}

func (p *Pages) transportadoraDetail(w http.ResponseWriter, r *http.Request) {
	res, err := query.Fetch(r.Context(), p.Query, p.Transportadoras.Detail(mux.Vars(r)["id"]))
	if err != nil {
		readError(w, err, transportadoraNotFound, "Erro ao carregar transportadora")
		return
	}
	router.JSON(w, http.StatusOK, transportadoraViewOf(res.Data))
}

func (p *Pages) transportadoraByCNPJ(w http.ResponseWriter, r *http.Request) {
	res, err := query.Fetch(r.Context(), p.Query, p.Transportadoras.ByCNPJ(mux.Vars(r)["cnpj"]))
	if err != nil {
		readError(w, err, transportadoraNotFound, "Erro ao buscar transportadora")
		return
	}
	if !res.HasData() {
		router.JSON(w, http.StatusOK, map[string]any{"status": res.Status})
		return
	}
	router.JSON(w, http.StatusOK, transportadoraViewOf(res.Data))
}

func (p *Pages) transportadorasByUF(w http.ResponseWriter, r *http.Request) {
	uf := strings.ToUpper(mux.Vars(r)["uf"])
	res, err := query.Fetch(r.Context(), p.Query, p.Transportadoras.ByUF(uf))
	if err != nil {
		readError(w, err, "", "Erro ao carregar transportadoras")
		return
	}
	router.JSON(w, http.StatusOK, map[string]any{"status": res.Status, "uf": uf, "rows": transportadoraRows(res.Data)})
}

func (p *Pages) searchTransportadoras(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("q"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	res, err := query.Fetch(r.Context(), p.Query, p.Transportadoras.Search(term, limit))
	if err != nil {
		readError(w, err, "", "Erro na busca")
		return
	}
	router.JSON(w, http.StatusOK, map[string]any{"status": res.Status, "q": term, "rows": transportadoraRows(res.Data)})
}

type cnpjView struct {
	Status  query.Status `json:"status"`
	CNPJ    string       `json:"cnpj"`
	Valid   bool         `json:"valid"`
	Exists  bool         `json:"exists"`
	Message string       `json:"message,omitempty"`
}

func (p *Pages) validateCNPJ(w http.ResponseWriter, r *http.Request) {
	cnpj := r.URL.Query().Get("cnpj")
	res, err := query.Fetch(r.Context(), p.Query, p.Transportadoras.ValidateCNPJ(cnpj))
	if err != nil {
		readError(w, err, "", "Erro ao validar CNPJ")
		return
	}
	router.JSON(w, http.StatusOK, cnpjView{
		Status:  res.Status,
		CNPJ:    format.CNPJ(cnpj),
		Valid:   res.Data.Valid,
		Exists:  res.Data.Exists,
		Message: res.Data.Message,
	})
}

type transportadoraForm struct {
	Mode   string                  `json:"mode"`
	ID     string                  `json:"id,omitempty"`
	Values api.TransportadoraInput `json:"values"`
	UFs    []string                `json:"ufs"`
}

func (p *Pages) newTransportadoraForm(w http.ResponseWriter, _ *http.Request) {
	router.JSON(w, http.StatusOK, transportadoraForm{Mode: "create", UFs: format.UFs})
}

func (p *Pages) editTransportadoraForm(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	res, err := query.Fetch(r.Context(), p.Query, p.Transportadoras.Detail(id))
	if err != nil {
		readError(w, err, transportadoraNotFound, "Erro ao carregar transportadora")
		return
	}
	t := res.Data
	router.JSON(w, http.StatusOK, transportadoraForm{
		Mode: "edit",
		ID:   id,
		Values: api.TransportadoraInput{
			CNPJ:                  format.CNPJ(t.CNPJ),
			Nome:                  t.Nome,
			Endereco:              t.Endereco,
			Municipio:             t.Municipio,
			UF:                    t.UF,
			IntegracaoOcorrencia:  t.IntegracaoOcorrencia,
			RomaneioAuto:          t.RomaneioAuto,
			RoterizacaoAutomatica: t.RoterizacaoAutomatica,
		},
		UFs: format.UFs,
	})
}

// readTransportadora decodifica, normaliza e valida o formulário. Em caso
// de falha a resposta já foi escrita.
func (p *Pages) readTransportadora(w http.ResponseWriter, r *http.Request) (api.TransportadoraInput, bool) {
	var in api.TransportadoraInput
	if err := decodeJSON(r, &in); err != nil {
		badRequest(w, err)
		return in, false
	}
	in.CNPJ = format.RemoveFormatting(in.CNPJ)
	in.UF = strings.ToUpper(strings.TrimSpace(in.UF))
	in.Nome = strings.TrimSpace(in.Nome)

	if err := p.validate.Struct(in); err != nil {
		router.JSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": fieldErrors(err)})
		return in, false
	}
	return in, true
}

func (p *Pages) createTransportadora(w http.ResponseWriter, r *http.Request) {
	in, ok := p.readTransportadora(w, r)
	if !ok {
		return
	}
	out, note, err := mutate(p, r, p.Transportadoras.Create(), in, in.CNPJ)
	writeMutation(w, http.StatusCreated, out.Data, note, err)
}

func (p *Pages) updateTransportadora(w http.ResponseWriter, r *http.Request) {
	in, ok := p.readTransportadora(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]
	out, note, err := mutate(p, r, p.Transportadoras.Update(), queries.UpdateTransportadora{ID: id, Data: in}, id)
	writeMutation(w, http.StatusOK, out.Data, note, err)
}

func (p *Pages) deleteTransportadora(w http.ResponseWriter, r *http.Request) {
	if !confirmed(r) {
		needsConfirmation(w, deleteTransportadoraPrompt)
		return
	}
	id := mux.Vars(r)["id"]
	_, note, err := mutate(p, r, p.Transportadoras.Delete(), id, id)
	writeMutation(w, http.StatusOK, nil, note, err)
}

func (p *Pages) restoreTransportadora(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	out, note, err := mutate(p, r, p.Transportadoras.Restore(), id, id)
	writeMutation(w, http.StatusOK, out.Data, note, err)
}
