// Copyright 2025 Egles Vieira
// Licensed under the Mozilla Public License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.mozilla.org/en-US/MPL/2.0/
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// Package api contém os clientes do backend de transportadoras e um pipeline
// para executar leituras concorrentes com dependências.
//
// Visão Geral:
// Todas as respostas do backend seguem o envelope {data, message?,
// pagination?}. Os clientes desembrulham o envelope, convertem respostas de
// erro em *APIError (preservando a mensagem do servidor) e permitem testar
// com errors.Is(err, api.ErrNotFound).
//
// Funcionalidades Principais:
//   - Transportadoras: listagem paginada, detalhe, busca por CNPJ/UF, busca
//     textual, indicadores, validação de CNPJ, criação, edição, exclusão e
//     restauração.
//   - Vinculos: vínculos entre transportadoras e códigos de ocorrência,
//     incluindo criação em lote, importação de CSV e exportação.
//   - Pipeline: execução paralela de etapas com dependências (DAG); etapas
//     obrigatórias cancelam o restante quando falham.
//
// Exemplo:
//
//	client := api.NewClient(api.Config{BaseURL: "https://backend/api"}, api.StaticToken(token))
//	svc := api.NewTransportadoras(client)
//
//	page, err := svc.List(ctx, api.ListParams{Page: 1, Limit: 10, UF: "SP"})
//	if errors.Is(err, api.ErrNotFound) {
//		// ...
//	}
//
// Pipeline:
//
//	p := api.NewPipeline(
//		api.Step{Name: "list", Required: true, Run: loadList},
//		api.Step{Name: "stats", Run: loadStats},
//	)
//	results, err := p.Execute(ctx)
package api
