package auth

import (
	"fmt"
	"strings"
)

// Role é um papel de acesso do console.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleGestor   Role = "gestor"
	RoleOperador Role = "operador"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleGestor, RoleOperador:
		return r, nil
	}
	return "", fmt.Errorf("papel desconhecido: %q", s)
}

// RoleSet é um conjunto de papéis.
type RoleSet []Role

// Roles monta um RoleSet.
func Roles(roles ...Role) RoleSet {
	return RoleSet(roles)
}

func (s RoleSet) Has(r Role) bool {
	for _, x := range s {
		if x == r {
			return true
		}
	}
	return false
}

// HasAny é verdadeiro se o conjunto tem algum dos papéis exigidos. Exigência
// vazia aceita qualquer usuário autenticado.
func (s RoleSet) HasAny(required RoleSet) bool {
	if len(required) == 0 {
		return true
	}
	for _, r := range required {
		if s.Has(r) {
			return true
		}
	}
	return false
}

func (s RoleSet) Strings() []string {
	out := make([]string, len(s))
	for i, r := range s {
		out[i] = string(r)
	}
	return out
}
