package pages

import (
	"errors"
	"net/http"

	"github.com/Egles-vieira/bolt-console/pkg/audit"
	"github.com/Egles-vieira/bolt-console/pkg/query"
	"github.com/Egles-vieira/bolt-console/pkg/router"
)

type monitoringView struct {
	Cache  query.Stats    `json:"cache"`
	Recent []audit.Record `json:"recent"`
	Error  string         `json:"error,omitempty"`
}

func (p *Pages) monitoring(w http.ResponseWriter, r *http.Request) {
	view := monitoringView{Cache: p.Query.Stats(r.Context()), Recent: []audit.Record{}}

	recent, err := p.Audit.Recent(r.Context(), 20)
	if err != nil {
		p.Logger.Warn().Err(err).Msg("falha ao ler auditoria")
		view.Error = "Erro ao carregar auditoria"
	} else if recent != nil {
		view.Recent = recent
	}
	router.JSON(w, http.StatusOK, view)
}

func (p *Pages) cacheStatus(w http.ResponseWriter, r *http.Request) {
	router.JSON(w, http.StatusOK, p.Query.Stats(r.Context()))
}

type invalidateRequest struct {
	Families []string `json:"families" validate:"required,min=1,dive,required"`
}

func (p *Pages) invalidateCache(w http.ResponseWriter, r *http.Request) {
	var in invalidateRequest
	if err := decodeJSON(r, &in); err != nil {
		badRequest(w, err)
		return
	}
	if err := p.validate.Struct(in); err != nil {
		badRequest(w, errors.New("informe ao menos uma família"))
		return
	}

	n, err := p.Query.InvalidateFamilies(r.Context(), in.Families...)
	user := currentUser(r)
	rec := audit.Record{User: user.ID, Action: "cache.invalidate", Success: err == nil}
	if aerr := p.Audit.Record(r.Context(), rec); aerr != nil {
		p.Logger.Warn().Err(aerr).Msg("falha ao registrar auditoria")
	}
	if err != nil {
		router.JSON(w, http.StatusInternalServerError, map[string]any{"notification": failure("Erro ao invalidar cache")})
		return
	}
	router.JSON(w, http.StatusOK, map[string]any{
		"notification": success("Cache invalidado"),
		"invalidated":  n,
	})
}
