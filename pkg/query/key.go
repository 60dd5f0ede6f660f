package query

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Key identifica uma leitura: o primeiro elemento é a família do recurso e os
// demais são os parâmetros. Duas chaves são iguais quando seus elementos são
// estruturalmente iguais, independente da ordem dos campos de mapas ou
// structs.
type Key []any

// NewKey monta uma chave a partir da família e dos parâmetros.
func NewKey(family string, params ...any) Key {
	k := make(Key, 0, len(params)+1)
	k = append(k, family)
	return append(k, params...)
}

// Family retorna o primeiro elemento da chave.
func (k Key) Family() string {
	if len(k) == 0 {
		return ""
	}
	s, _ := k[0].(string)
	return s
}

// Hash é a identidade canônica da chave.
func (k Key) Hash() string {
	parts := make([]string, len(k))
	for i, el := range k {
		parts[i] = canonical(el)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Equal compara duas chaves estruturalmente.
func (k Key) Equal(other Key) bool {
	return len(k) == len(other) && k.HasPrefix(other)
}

// HasPrefix indica se os primeiros elementos de k são iguais a prefix.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if canonical(k[i]) != canonical(prefix[i]) {
			return false
		}
	}
	return true
}

func (k Key) String() string {
	return k.Hash()
}

// canonical serializa um elemento de forma estável. Structs e mapas passam
// por um ciclo JSON para que ambos produzam objetos com campos ordenados.
func canonical(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%#v", v)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return string(raw)
	}
	out, err := json.Marshal(generic)
	if err != nil {
		return string(raw)
	}
	return string(out)
}

// Predicate seleciona chaves para invalidação.
type Predicate func(Key) bool

// Families casa chaves cuja família está na lista.
func Families(families ...string) Predicate {
	set := make(map[string]struct{}, len(families))
	for _, f := range families {
		set[f] = struct{}{}
	}
	return func(k Key) bool {
		_, ok := set[k.Family()]
		return ok
	}
}

// Prefix casa chaves que começam com algum dos prefixos.
func Prefix(prefixes ...Key) Predicate {
	return func(k Key) bool {
		for _, p := range prefixes {
			if k.HasPrefix(p) {
				return true
			}
		}
		return false
	}
}

// AnyOf combina predicados com "ou". Predicados nulos são ignorados.
func AnyOf(preds ...Predicate) Predicate {
	return func(k Key) bool {
		for _, p := range preds {
			if p != nil && p(k) {
				return true
			}
		}
		return false
	}
}
