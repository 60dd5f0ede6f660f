package format

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var locale = language.BrazilianPortuguese

// Currency formata v como moeda brasileira: R$ 1.234,56.
func Currency(v any) string {
	f, ok := toFloat64(v)
	if !ok {
		return "R$ 0,00"
	}
	if f < 0 && round(f, 2) != 0 {
		return "-R$ " + decimal(-f, 2)
	}
	return "R$ " + decimal(math.Abs(f), 2)
}

// Number formata v com separador de milhar "." e decimal ",".
// Valores ausentes viram "0".
func Number(v any, decimals int) string {
	f, ok := toFloat64(v)
	if !ok {
		return "0"
	}
	return decimal(f, decimals)
}

// Percentage formata v com o número de casas informado seguido de "%".
func Percentage(v any, decimals int) string {
	f, ok := toFloat64(v)
	if !ok {
		return "0%"
	}
	return decimal(f, decimals) + "%"
}

// PercentageDefault usa duas casas decimais.
func PercentageDefault(v any) string {
	return Percentage(v, 2)
}

// Weight formata pesos em quilogramas com duas casas.
func Weight(v any) string {
	f, ok := toFloat64(v)
	if !ok {
		return "0 kg"
	}
	return decimal(f, 2) + " kg"
}

// Volume formata volumes em metros cúbicos com três casas.
func Volume(v any) string {
	f, ok := toFloat64(v)
	if !ok {
		return "0 m³"
	}
	return decimal(f, 3) + " m³"
}

// decimal arredonda antes de delegar ao x/text, assim o modo de
// arredondamento é sempre "meio para longe do zero".
func decimal(f float64, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	f = round(f, decimals)
	if f == 0 {
		f = 0 // evita "-0"
	}

	p := message.NewPrinter(locale)
	if decimals == 0 {
		return p.Sprintf("%v", number.Decimal(int64(f)))
	}
	return p.Sprintf("%v", number.Decimal(f,
		number.MinFractionDigits(decimals),
		number.MaxFractionDigits(decimals),
	))
}

func round(f float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(f*pow) / pow
}

// toFloat64 normaliza os tipos numéricos que chegam do JSON ou do código.
// Tipos não suportados são tratados como valor ausente.
func toFloat64(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	case *float64:
		if n == nil {
			return 0, false
		}
		f = *n
	case *int:
		if n == nil {
			return 0, false
		}
		f = float64(*n)
	case *int64:
		if n == nil {
			return 0, false
		}
		f = float64(*n)
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
