// Package router monta a tabela de rotas do console sobre gorilla/mux e
// aplica a porta de autorização: sessão obrigatória fora das rotas públicas
// e papéis exigidos por rota.
package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/Egles-vieira/bolt-console/pkg/auth"
)

// Route é uma entrada da tabela de rotas.
type Route struct {
	Name    string
	Method  string
	Path    string
	Roles   auth.RoleSet
	Public  bool
	Handler http.Handler
}

// Authenticator resolve o usuário da requisição.
type Authenticator interface {
	Authenticate(r *http.Request) (auth.User, error)
}

// Config define os destinos de redirecionamento.
type Config struct {
	LoginPath     string `yaml:"login_path" json:"login_path" env:"AUTH_LOGIN_PATH" envDefault:"/login"`
	ForbiddenPath string `yaml:"forbidden_path" json:"forbidden_path" env:"AUTH_FORBIDDEN_PATH" envDefault:"/dashboard"`
	HomePath      string `yaml:"home_path" json:"home_path" env:"AUTH_HOME_PATH" envDefault:"/dashboard"`
}

func (c Config) withDefaults() Config {
	if c.LoginPath == "" {
		c.LoginPath = "/login"
	}
	if c.ForbiddenPath == "" {
		c.ForbiddenPath = "/dashboard"
	}
	if c.HomePath == "" {
		c.HomePath = "/dashboard"
	}
	return c
}

// New registra as rotas e devolve o roteador.
func New(cfg Config, authn Authenticator, routes []Route) *mux.Router {
	cfg = cfg.withDefaults()

	r := mux.NewRouter()
	r.Use(Recover)

	r.Handle("/", http.RedirectHandler(cfg.HomePath, http.StatusFound)).Methods(http.MethodGet)
	for _, rt := range routes {
		h := rt.Handler
		if !rt.Public {
			h = gate(cfg, authn, rt.Roles, h)
		}
		r.Handle(rt.Path, h).Methods(rt.Method).Name(rt.Name)
	}
	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(notFound)
	return r
}

// gate exige sessão válida e algum dos papéis da rota.
func gate(cfg Config, authn Authenticator, roles auth.RoleSet, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := authn.Authenticate(r)
		if err != nil {
			log.Ctx(r.Context()).Debug().Err(err).Str("path", r.URL.Path).Msg("requisição sem sessão")
			target := fmt.Sprintf("%s?next=%s", cfg.LoginPath, url.QueryEscape(r.URL.RequestURI()))
			http.Redirect(w, r, target, http.StatusFound)
			return
		}
		if !user.Roles.HasAny(roles) {
			log.Ctx(r.Context()).Info().
				Str("user", user.ID).
				Strs("required", roles.Strings()).
				Str("path", r.URL.Path).
				Msg("acesso negado")
			http.Redirect(w, r, cfg.ForbiddenPath, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
	})
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusNotFound, map[string]string{"error": "Página não encontrada"})
}

// Recover impede que um pânico derrube o processo.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Ctx(r.Context()).Error().
					Interface("panic", rec).
					Str("path", r.URL.Path).
					Msg("pânico no handler")
				JSON(w, http.StatusInternalServerError, map[string]string{"error": "Erro interno"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// JSON escreve body como JSON com o status informado.
func JSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("erro ao codificar resposta")
	}
}
