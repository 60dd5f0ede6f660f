package router

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Egles-vieira/bolt-console/pkg/auth"
)

type fakeAuth struct {
	user *auth.User
}

func (f fakeAuth) Authenticate(*http.Request) (auth.User, error) {
	if f.user == nil {
		return auth.User{}, errors.New("sem sessão")
	}
	return *f.user, nil
}

func whoAmI() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, _ := auth.UserFrom(r.Context())
		JSON(w, http.StatusOK, map[string]string{"id": u.ID})
	})
}

func routes() []Route {
	return []Route{
		{Name: "health", Method: http.MethodGet, Path: "/healthz", Public: true, Handler: whoAmI()},
		{Name: "dashboard", Method: http.MethodGet, Path: "/dashboard", Handler: whoAmI()},
		{Name: "transportadoras", Method: http.MethodGet, Path: "/transportadoras", Roles: auth.Roles(auth.RoleAdmin, auth.RoleGestor), Handler: whoAmI()},
		{Name: "panic", Method: http.MethodGet, Path: "/panic", Public: true, Handler: http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })},
	}
}

func serve(a Authenticator, method, target string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	New(Config{}, a, routes()).ServeHTTP(rr, httptest.NewRequest(method, target, nil))
	return rr
}

func TestRouter(t *testing.T) {
	operador := &auth.User{ID: "7", Roles: auth.Roles(auth.RoleOperador)}
	gestor := &auth.User{ID: "8", Roles: auth.Roles(auth.RoleGestor)}

	tests := []struct {
		name     string
		user     *auth.User
		method   string
		target   string
		status   int
		location string
		body     string
	}{
		{name: "raiz vai para o dashboard", user: gestor, method: http.MethodGet, target: "/", status: http.StatusFound, location: "/dashboard"},
		{name: "rota pública sem sessão", method: http.MethodGet, target: "/healthz", status: http.StatusOK},
		{name: "sem sessão vai para o login", method: http.MethodGet, target: "/transportadoras?page=2", status: http.StatusFound, location: "/login?next=%2Ftransportadoras%3Fpage%3D2"},
		{name: "papel insuficiente", user: operador, method: http.MethodGet, target: "/transportadoras", status: http.StatusFound, location: "/dashboard"},
		{name: "papel suficiente", user: gestor, method: http.MethodGet, target: "/transportadoras", status: http.StatusOK, body: `{"id":"8"}`},
		{name: "rota sem papéis aceita qualquer usuário", user: operador, method: http.MethodGet, target: "/dashboard", status: http.StatusOK, body: `{"id":"7"}`},
		{name: "rota desconhecida", user: gestor, method: http.MethodGet, target: "/clientes", status: http.StatusNotFound, body: `{"error":"Página não encontrada"}`},
		{name: "pânico vira 500", method: http.MethodGet, target: "/panic", status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(fakeAuth{user: tt.user}, tt.method, tt.target)

			assert.Equal(t, tt.status, rr.Code)
			if tt.location != "" {
				assert.Equal(t, tt.location, rr.Header().Get("Location"))
			}
			if tt.body != "" {
				assert.JSONEq(t, tt.body, rr.Body.String())
			}
		})
	}
}

func TestRouter_ForbiddenPath(t *testing.T) {
	rr := httptest.NewRecorder()
	r := New(Config{ForbiddenPath: "/sem-acesso"}, fakeAuth{user: &auth.User{ID: "1"}}, routes())
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/transportadoras", nil))

	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/sem-acesso", rr.Header().Get("Location"))
}
