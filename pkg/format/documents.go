// Package format reúne os formatadores de exibição usados pelas telas do
// console: documentos brasileiros (CNPJ, CPF, CEP), telefones, datas e
// valores numéricos no padrão pt-BR.
//
// Todas as funções são totais: entradas ausentes ou malformadas nunca geram
// erro, apenas o valor vazio definido para cada formatador ou a própria
// entrada sem alteração.
package format

import (
	"slices"
	"strings"
)

// UFs lista as 27 unidades federativas aceitas pelo filtro de estado.
var UFs = []string{
	"AC", "AL", "AP", "AM", "BA", "CE", "DF", "ES", "GO", "MA", "MT", "MS", "MG", "PA",
	"PB", "PR", "PE", "PI", "RJ", "RN", "RS", "RO", "RR", "SC", "SP", "SE", "TO",
}

// RemoveFormatting mantém apenas os dígitos de s.
func RemoveFormatting(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CNPJ formata 14 dígitos como 00.000.000/0000-00.
// Com outra quantidade de dígitos a entrada volta intacta.
func CNPJ(s string) string {
	return mask(s, 14, "##.###.###/####-##")
}

// CPF formata 11 dígitos como 000.000.000-00.
func CPF(s string) string {
	return mask(s, 11, "###.###.###-##")
}

// CEP formata 8 dígitos como 00000-000.
func CEP(s string) string {
	return mask(s, 8, "#####-###")
}

// Phone formata telefones fixos (10 dígitos) e celulares (11 dígitos).
func Phone(s string) string {
	if s == "" {
		return ""
	}
	switch len(RemoveFormatting(s)) {
	case 10:
		return mask(s, 10, "(##) ####-####")
	case 11:
		return mask(s, 11, "(##) #####-####")
	}
	return s
}

// IsCNPJ indica se s possui exatamente 14 dígitos depois de limpo.
// Não calcula dígitos verificadores; essa validação é do backend.
func IsCNPJ(s string) bool {
	return len(RemoveFormatting(s)) == 14
}

// IsUF indica se s é uma das siglas de UFs, sem diferenciar maiúsculas.
func IsUF(s string) bool {
	return len(s) == 2 && slices.Contains(UFs, strings.ToUpper(s))
}

// mask aplica o padrão (# = dígito) quando a entrada limpa tem exatamente
// size dígitos.
func mask(s string, size int, pattern string) string {
	if s == "" {
		return ""
	}
	digits := RemoveFormatting(s)
	if len(digits) != size {
		return s
	}

	var b strings.Builder
	b.Grow(len(pattern))
	i := 0
	for _, r := range pattern {
		if r == '#' {
			b.WriteByte(digits[i])
			i++
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
