// Package boltconsole é o console administrativo de transportadoras e dos
// vínculos entre códigos de transportadora e o cadastro do backend.
//
// O console é um servidor HTTP (ou função Lambda atrás do API Gateway) que
// consulta a API do backend e mantém um cache de consultas com revalidação
// em segundo plano.
//
// Sub-pacotes principais:
//
//  1. api: cliente resty do backend, com Pipeline para chamadas
//     concorrentes com dependências.
//  2. pkg/query: cache de consultas (memória ou Redis), observadores,
//     mutações e invalidação por família de chave.
//  3. pkg/queries: as famílias de consulta de transportadoras e vínculos.
//  4. pkg/pages e pkg/router: handlers JSON, rotas gorilla/mux e controle de
//     acesso por papel.
//  5. pkg/config e envloader: YAML, variáveis de ambiente e placeholders
//     ${env.}, ${ssm.} e ${secret.}.
//  6. pkg/transport: servidor HTTP, adaptador Lambda e invalidação via SQS.
//
// Binários:
//
//	cmd/server   servidor do console (runtime local ou lambda)
//	cmd/toolkit  validate, token e format para CI e suporte
//
// Exemplo mínimo de configuração:
//
//	version: "1"
//	service:
//	  name: bolt-console
//	  runtime: local
//	  port: 8080
//	upstream:
//	  base_url: https://backend.interno/api
//	  token: ${ssm./bolt/api-token}
//	cache:
//	  backend: redis
//	  redis: {addr: localhost:6379}
//	auth:
//	  jwt_secret: ${secret.bolt/console#jwt}
package boltconsole
