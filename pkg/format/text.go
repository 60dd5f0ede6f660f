package format

import (
	"strings"
	"time"
	_ "time/tzdata"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// Location é o fuso usado na exibição de datas. Datas sem fuso explícito
// são interpretadas nele.
var Location = loadLocation("America/Sao_Paulo")

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Date formata v como DD/MM/AAAA, acrescentando HH:MM quando includeTime é
// verdadeiro. Aceita time.Time, *time.Time e strings ISO 8601. Entradas
// vazias ou inválidas resultam em "".
func Date(v any, includeTime bool) string {
	t, ok := toTime(v)
	if !ok {
		return ""
	}
	t = t.In(Location)
	if includeTime {
		return t.Format("02/01/2006 15:04")
	}
	return t.Format("02/01/2006")
}

// DateTime é um atalho para Date(v, true).
func DateTime(v any) string {
	return Date(v, true)
}

// Truncate corta s em max caracteres e acrescenta "...". Limite negativo
// conta como zero.
func Truncate(s string, max int) string {
	if s == "" {
		return ""
	}
	if max < 0 {
		max = 0
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "..."
}

// TruncateDefault usa o limite padrão de 50 caracteres.
func TruncateDefault(s string) string {
	return Truncate(s, 50)
}

// Capitalize deixa apenas o primeiro caractere em maiúscula.
func Capitalize(s string) string {
	if s == "" {
		return ""
	}
	_, size := utf8.DecodeRuneInString(s)
	return cases.Upper(locale).String(s[:size]) + cases.Lower(locale).String(s[size:])
}

// Name normaliza nomes próprios: palavras com até duas letras (de, da, e)
// ficam minúsculas e as demais são capitalizadas.
func Name(s string) string {
	if s == "" {
		return ""
	}
	words := strings.Split(cases.Lower(locale).String(s), " ")
	for i, w := range words {
		if utf8.RuneCountInString(w) > 2 {
			words[i] = Capitalize(w)
		}
	}
	return strings.Join(words, " ")
}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil || t.IsZero() {
			return time.Time{}, false
		}
		return *t, true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if parsed, err := time.ParseInLocation(layout, s, Location); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}

func loadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
