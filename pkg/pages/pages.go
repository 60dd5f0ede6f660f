// Package pages implementa as telas do console como view models JSON. Cada
// handler trata os erros na própria fronteira: leitura desabilitada vira
// estado vazio, registro ausente vira a tela de "não encontrado" e qualquer
// outra falha vira a tela de erro com a mensagem do backend.
package pages

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/Egles-vieira/bolt-console/api"
	"github.com/Egles-vieira/bolt-console/pkg/audit"
	"github.com/Egles-vieira/bolt-console/pkg/auth"
	"github.com/Egles-vieira/bolt-console/pkg/export"
	"github.com/Egles-vieira/bolt-console/pkg/format"
	"github.com/Egles-vieira/bolt-console/pkg/listing"
	"github.com/Egles-vieira/bolt-console/pkg/queries"
	"github.com/Egles-vieira/bolt-console/pkg/query"
	"github.com/Egles-vieira/bolt-console/pkg/router"
)

// Deps reúne o que as telas precisam.
type Deps struct {
	Query           *query.Client
	Transportadoras *queries.Transportadoras
	Vinculos        *queries.Vinculos
	Listing         *listing.Store
	Audit           audit.Log
	Export          *export.Deliverer
	Logger          zerolog.Logger
}

// Pages agrupa os handlers.
type Pages struct {
	Deps
	validate *validator.Validate

	mu        sync.Mutex
	observers map[string]*observed
	now       func() time.Time
}

type observed struct {
	o    any
	used time.Time
}

func New(d Deps) *Pages {
	if d.Listing == nil {
		d.Listing = listing.NewStore()
	}
	if d.Audit == nil {
		d.Audit = audit.NewMemoryLog(0)
	}
	if d.Export == nil {
		d.Export = export.NewDeliverer(nil, "")
	}
	return &Pages{Deps: d, validate: NewValidator(), observers: make(map[string]*observed), now: time.Now}
}

var (
	gestao = auth.Roles(auth.RoleAdmin, auth.RoleGestor)
	admin  = auth.Roles(auth.RoleAdmin)
)

// Routes devolve a tabela de rotas. Rotas literais vêm antes das que têm
// variáveis no mesmo nível.
func (p *Pages) Routes() []router.Route {
	get, post := http.MethodGet, http.MethodPost
	h := func(f http.HandlerFunc) http.Handler { return f }

	return []router.Route{
		{Name: "health", Method: get, Path: "/healthz", Public: true, Handler: h(p.health)},
		{Name: "dashboard", Method: get, Path: "/dashboard", Handler: h(p.dashboard)},

		{Name: "transportadoras", Method: get, Path: "/transportadoras", Roles: gestao, Handler: h(p.listTransportadoras)},
		{Name: "transportadora.novo", Method: get, Path: "/transportadoras/novo", Roles: gestao, Handler: h(p.newTransportadoraForm)},
		{Name: "transportadora.criar", Method: post, Path: "/transportadoras/novo", Roles: gestao, Handler: h(p.createTransportadora)},
		{Name: "transportadoras.busca", Method: get, Path: "/transportadoras/busca", Roles: gestao, Handler: h(p.searchTransportadoras)},
		{Name: "transportadoras.validar-cnpj", Method: get, Path: "/transportadoras/validar-cnpj", Roles: gestao, Handler: h(p.validateCNPJ)},
		{Name: "transportadoras.uf", Method: get, Path: "/transportadoras/uf/{uf}", Roles: gestao, Handler: h(p.transportadorasByUF)},
		{Name: "transportadoras.cnpj", Method: get, Path: "/transportadoras/cnpj/{cnpj}", Roles: gestao, Handler: h(p.transportadoraByCNPJ)},
		{Name: "transportadora", Method: get, Path: "/transportadoras/{id}", Roles: gestao, Handler: h(p.transportadoraDetail)},
		{Name: "transportadora.editar", Method: get, Path: "/transportadoras/{id}/editar", Roles: gestao, Handler: h(p.editTransportadoraForm)},
		{Name: "transportadora.atualizar", Method: post, Path: "/transportadoras/{id}/editar", Roles: gestao, Handler: h(p.updateTransportadora)},
		{Name: "transportadora.excluir", Method: post, Path: "/transportadoras/{id}/excluir", Roles: gestao, Handler: h(p.deleteTransportadora)},
		{Name: "transportadora.restaurar", Method: post, Path: "/transportadoras/{id}/restaurar", Roles: gestao, Handler: h(p.restoreTransportadora)},

		{Name: "vinculos", Method: get, Path: "/vinculos", Roles: gestao, Handler: h(p.listVinculos)},
		{Name: "vinculos.exportar", Method: get, Path: "/vinculos/exportar", Roles: gestao, Handler: h(p.exportVinculos)},
		{Name: "vinculos.codigo", Method: get, Path: "/vinculos/codigo/{codigo}", Roles: gestao, Handler: h(p.vinculosByCodigo)},
		{Name: "vinculos.codigo.excluir", Method: post, Path: "/vinculos/codigo/{codigo}/excluir-todos", Roles: gestao, Handler: h(p.deleteVinculosByCodigo)},
		{Name: "transportadora.vinculos", Method: get, Path: "/transportadoras/{id}/vinculos", Roles: gestao, Handler: h(p.vinculosByTransportadora)},
		{Name: "transportadora.vinculos.novo", Method: post, Path: "/transportadoras/{id}/vinculos/novo", Roles: gestao, Handler: h(p.createVinculo)},
		{Name: "transportadora.vinculos.lote", Method: post, Path: "/transportadoras/{id}/vinculos/lote", Roles: gestao, Handler: h(p.createVinculos)},
		{Name: "transportadora.vinculos.excluir", Method: post, Path: "/transportadoras/{id}/vinculos/excluir-todos", Roles: gestao, Handler: h(p.deleteVinculosByTransportadora)},
		{Name: "transportadora.vinculos.importar", Method: post, Path: "/transportadoras/{id}/vinculos/importar", Roles: gestao, Handler: h(p.importVinculos)},
		{Name: "transportadora.vinculo.codigo", Method: get, Path: "/transportadoras/{id}/vinculos/codigo/{codigo}", Roles: gestao, Handler: h(p.vinculoEspecifico)},
		{Name: "transportadora.vinculo.editar", Method: get, Path: "/transportadoras/{id}/vinculos/{vinculoId}/editar", Roles: gestao, Handler: h(p.editVinculoForm)},
		{Name: "transportadora.vinculo.atualizar", Method: post, Path: "/transportadoras/{id}/vinculos/{vinculoId}/editar", Roles: gestao, Handler: h(p.updateVinculo)},
		{Name: "transportadora.vinculo.excluir", Method: post, Path: "/transportadoras/{id}/vinculos/{vinculoId}/excluir", Roles: gestao, Handler: h(p.deleteVinculo)},

		{Name: "monitoring", Method: get, Path: "/monitoring", Roles: gestao, Handler: h(p.monitoring)},
		{Name: "admin.cache", Method: get, Path: "/admin/cache", Roles: admin, Handler: h(p.cacheStatus)},
		{Name: "admin.cache.invalidate", Method: post, Path: "/admin/cache/invalidate", Roles: admin, Handler: h(p.invalidateCache)},
	}
}

// Notification é o aviso exibido após uma escrita.
type Notification struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func success(msg string) *Notification { return &Notification{Type: "success", Message: msg} }
func failure(msg string) *Notification { return &Notification{Type: "error", Message: msg} }

type noticer interface{ Notice() string }

// mutate executa a escrita, registra a auditoria e monta o aviso.
func mutate[In, Out any](p *Pages, r *http.Request, m query.Mutation[In, Out], in In, target string) (Out, *Notification, error) {
	ctx := r.Context()
	out, err := query.Mutate(ctx, p.Query, m, in)

	var note *Notification
	if err != nil {
		note = failure(api.Message(err, m.Failure))
	} else {
		msg := m.Success
		if n, ok := any(out).(noticer); ok && n.Notice() != "" {
			msg = n.Notice()
		}
		note = success(msg)
	}

	p.record(r, m.Name, target, note)
	return out, note, err
}

func (p *Pages) record(r *http.Request, action, target string, note *Notification) {
	ctx := r.Context()
	user, _ := auth.UserFrom(ctx)
	rec := audit.Record{User: user.ID, Action: action, Target: target, Success: note.Type == "success", Message: note.Message}
	if aerr := p.Audit.Record(ctx, rec); aerr != nil {
		p.Logger.Warn().Err(aerr).Str("action", action).Msg("falha ao registrar auditoria")
	}
}

// errorStatus traduz o erro do backend em status da resposta.
func errorStatus(err error) int {
	var apiErr *api.APIError
	switch {
	case errors.Is(err, api.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, api.ErrBadRequest) && errors.As(err, &apiErr):
		return apiErr.Status
	default:
		return http.StatusBadGateway
	}
}

// writeMutation responde uma escrita com o aviso e, em caso de sucesso, os
// dados devolvidos.
func writeMutation(w http.ResponseWriter, okStatus int, data any, note *Notification, err error) {
	if err != nil {
		router.JSON(w, errorStatus(err), map[string]any{"notification": note})
		return
	}
	router.JSON(w, okStatus, map[string]any{"notification": note, "data": data})
}

// readError responde uma leitura que falhou.
func readError(w http.ResponseWriter, err error, notFound, fallback string) {
	if errors.Is(err, api.ErrNotFound) {
		router.JSON(w, http.StatusNotFound, map[string]string{"error": notFound})
		return
	}
	router.JSON(w, http.StatusBadGateway, map[string]string{"error": api.Message(err, fallback)})
}

// decodeJSON lê o corpo da requisição em dst.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("corpo inválido: %w", err)
	}
	return nil
}

func badRequest(w http.ResponseWriter, err error) {
	router.JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
}

// confirmed exige confirm=true na query ou no formulário.
func confirmed(r *http.Request) bool {
	return strings.EqualFold(r.FormValue("confirm"), "true")
}

func needsConfirmation(w http.ResponseWriter, prompt string) {
	router.JSON(w, http.StatusConflict, map[string]any{"confirm": prompt})
}

// observer devolve o Observer de uma tela para o usuário.
func observer[T any](p *Pages, user, view string) *query.Observer[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	k := user + "\x00" + view
	if e, ok := p.observers[k]; ok {
		if o, ok := e.o.(*query.Observer[T]); ok {
			e.used = p.now()
			return o
		}
	}
	o := &query.Observer[T]{}
	p.observers[k] = &observed{o: o, used: p.now()}
	return o
}

// Sweep descarta observers e estados de listagem sem uso há mais de idle.
func (p *Pages) Sweep(idle time.Duration) int {
	p.mu.Lock()
	cutoff := p.now().Add(-idle)
	n := 0
	for k, e := range p.observers {
		if e.used.Before(cutoff) {
			delete(p.observers, k)
			n++
		}
	}
	p.mu.Unlock()
	return n + p.Listing.Evict(idle)
}

// RunSweeper executa Sweep periodicamente até o contexto encerrar.
func (p *Pages) RunSweeper(ctx context.Context, every, idle time.Duration) {
	if every <= 0 || idle <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := p.Sweep(idle); n > 0 {
				p.Logger.Debug().Int("removidos", n).Msg("estado de telas ociosas descartado")
			}
		}
	}
}

func currentUser(r *http.Request) auth.User {
	u, _ := auth.UserFrom(r.Context())
	return u
}

// dates formata o par criação/atualização.
func dates(created, updated any) map[string]string {
	return map[string]string{
		"created_at": format.DateTime(created),
		"updated_at": format.DateTime(updated),
	}
}

func (p *Pages) health(w http.ResponseWriter, _ *http.Request) {
	router.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
