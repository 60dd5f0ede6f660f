package format

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDocuments(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) string
		in   string
		want string
	}{
		{"CNPJ com 14 dígitos", CNPJ, "12345678000195", "12.345.678/0001-95"},
		{"CNPJ já formatado é reformatado", CNPJ, "12.345.678/0001-95", "12.345.678/0001-95"},
		{"CNPJ curto volta intacto", CNPJ, "123", "123"},
		{"CNPJ vazio", CNPJ, "", ""},
		{"CPF com 11 dígitos", CPF, "12345678901", "123.456.789-01"},
		{"CPF inválido volta intacto", CPF, "1234", "1234"},
		{"CEP com 8 dígitos", CEP, "01310100", "01310-100"},
		{"CEP com traço", CEP, "01310-100", "01310-100"},
		{"CEP curto", CEP, "0131", "0131"},
		{"telefone fixo", Phone, "1133334444", "(11) 3333-4444"},
		{"celular", Phone, "11987654321", "(11) 98765-4321"},
		{"telefone com 9 dígitos", Phone, "119876543", "119876543"},
		{"telefone vazio", Phone, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fn(tt.in))
		})
	}
}

func TestCNPJ_IdaEVolta(t *testing.T) {
	masked := regexp.MustCompile(`^\d{2}\.\d{3}\.\d{3}/\d{4}-\d{2}$`)

	t.Run("14 dígitos formatam e voltam iguais", func(t *testing.T) {
		var n uint64 = 1
		for i := 0; i < 500; i++ {
			n = (n*6364136223846793005 + 1442695040888963407) % 100000000000000
			digits := fmt.Sprintf("%014d", n)

			got := CNPJ(digits)
			assert.Regexp(t, masked, got, digits)
			assert.Equal(t, digits, RemoveFormatting(got))
		}
	})

	t.Run("outros tamanhos voltam intactos", func(t *testing.T) {
		for size := 1; size <= 20; size++ {
			if size == 14 {
				continue
			}
			digits := strings.Repeat("7", size)
			assert.Equal(t, digits, CNPJ(digits), "tamanho %d", size)
		}
	})
}

func TestRemoveFormatting(t *testing.T) {
	assert.Equal(t, "12345678000195", RemoveFormatting("12.345.678/0001-95"))
	assert.Equal(t, "", RemoveFormatting(""))
	assert.Equal(t, "", RemoveFormatting("abc"))
}

func TestPredicates(t *testing.T) {
	t.Run("CNPJ considera apenas dígitos", func(t *testing.T) {
		assert.True(t, IsCNPJ("12.345.678/0001-95"))
		assert.False(t, IsCNPJ("12.345.678/0001"))
	})

	t.Run("UF precisa ser uma sigla conhecida", func(t *testing.T) {
		assert.True(t, IsUF("SP"))
		assert.True(t, IsUF("df"))
		assert.False(t, IsUF("XX"))
		assert.False(t, IsUF("ZZ"))
		assert.False(t, IsUF("S"))
		assert.False(t, IsUF("SP1"))
		assert.False(t, IsUF("12"))
	})

	t.Run("lista de UFs completa", func(t *testing.T) {
		assert.Len(t, UFs, 27)
		assert.Contains(t, UFs, "DF")
	})
}

func TestNumbers(t *testing.T) {
	value := 1234.56
	var absent *float64

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"moeda", Currency(1234.56), "R$ 1.234,56"},
		{"moeda a partir de ponteiro", Currency(&value), "R$ 1.234,56"},
		{"moeda ausente", Currency(nil), "R$ 0,00"},
		{"moeda com ponteiro nulo", Currency(absent), "R$ 0,00"},
		{"moeda negativa", Currency(-10), "-R$ 10,00"},
		{"moeda com milhões", Currency(1234567.8), "R$ 1.234.567,80"},
		{"número inteiro", Number(1234567, 0), "1.234.567"},
		{"número com casas", Number(1234.5, 2), "1.234,50"},
		{"número arredondado", Number(2.346, 2), "2,35"},
		{"número ausente", Number(nil, 2), "0"},
		{"número a partir de json", Number(json.Number("42"), 0), "42"},
		{"número a partir de texto inválido", Number("abc", 0), "0"},
		{"porcentagem", PercentageDefault(12.5), "12,50%"},
		{"porcentagem ausente", PercentageDefault(nil), "0%"},
		{"peso", Weight(10), "10,00 kg"},
		{"peso ausente", Weight(nil), "0 kg"},
		{"volume", Volume(1.5), "1,500 m³"},
		{"volume ausente", Volume(nil), "0 m³"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestDate(t *testing.T) {
	t.Run("data ISO sem hora", func(t *testing.T) {
		assert.Equal(t, "15/01/2024", Date("2024-01-15", false))
	})

	t.Run("data UTC exibida no fuso de São Paulo", func(t *testing.T) {
		assert.Equal(t, "15/01/2024 10:45", Date("2024-01-15T13:45:00Z", true))
	})

	t.Run("time.Time", func(t *testing.T) {
		ts := time.Date(2023, 12, 31, 23, 5, 0, 0, Location)
		assert.Equal(t, "31/12/2023 23:05", DateTime(ts))
		assert.Equal(t, "31/12/2023", Date(&ts, false))
	})

	t.Run("entradas vazias ou inválidas", func(t *testing.T) {
		assert.Equal(t, "", Date("", false))
		assert.Equal(t, "", Date("not-a-date", true))
		assert.Equal(t, "", Date(nil, false))
		assert.Equal(t, "", Date(time.Time{}, false))
	})
}

func TestText(t *testing.T) {
	t.Run("truncate", func(t *testing.T) {
		assert.Equal(t, "abc", Truncate("abc", 5))
		assert.Equal(t, "abcde...", Truncate("abcdefgh", 5))
		assert.Equal(t, "", Truncate("", 5))
		assert.Equal(t, "açõe...", Truncate("ações", 4))
	})

	t.Run("truncate com limite zero ou negativo", func(t *testing.T) {
		assert.Equal(t, "...", Truncate("abc", 0))
		assert.Equal(t, "...", Truncate("abc", -1))
		assert.Equal(t, "", Truncate("", -3))
	})

	t.Run("truncate padrão de 50", func(t *testing.T) {
		long := "0123456789012345678901234567890123456789012345678901234"
		assert.Equal(t, long[:50]+"...", TruncateDefault(long))
	})

	t.Run("capitalize", func(t *testing.T) {
		assert.Equal(t, "Transportadora", Capitalize("tRANSPORTADORA"))
		assert.Equal(t, "", Capitalize(""))
		assert.Equal(t, "Érica", Capitalize("érica"))
	})

	t.Run("nome próprio", func(t *testing.T) {
		assert.Equal(t, "João da Silva", Name("JOÃO DA SILVA"))
		assert.Equal(t, "Maria de Souza e Lima", Name("maria de souza e lima"))
		assert.Equal(t, "", Name(""))
	})
}
