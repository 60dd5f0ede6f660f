// Package queries declara as leituras e escritas do console sobre o backend:
// chave de cache, condição de habilitação, prazo de validade e, para as
// escritas, as famílias de leitura que cada uma invalida.
package queries

import "time"

// Famílias de leitura de transportadoras.
const (
	FamilyTransportadoras      = "transportadoras"
	FamilyTransportadora       = "transportadora"
	FamilyTransportadoraCNPJ   = "transportadora-cnpj"
	FamilyTransportadorasUF    = "transportadoras-uf"
	FamilyTransportadorasBusca = "transportadoras-search"
	FamilyTransportadorasStats = "transportadoras-stats"
	FamilyValidateCNPJ         = "validate-cnpj"
)

// Famílias de leitura de vínculos transportadora x código de ocorrência.
const (
	FamilyVinculos              = "transportadora-codigos"
	FamilyVinculo               = "transportadora-codigo"
	FamilyCodigosTransportadora = "codigos-transportadora"
	FamilyTransportadorasCodigo = "transportadoras-codigo"
	FamilyVinculoEspecifico     = "vinculo-especifico"
	FamilyVinculosStats         = "transportadora-codigo-stats"
)

const (
	// StaleTime vale para dados de referência.
	StaleTime = 5 * time.Minute
	// SearchStaleTime vale para a busca textual, que muda com mais frequência.
	SearchStaleTime = time.Minute
	// PageSize é o tamanho fixo das páginas de listagem.
	PageSize = 10
	// SearchMinLength é o tamanho mínimo do termo de busca.
	SearchMinLength = 2
)
