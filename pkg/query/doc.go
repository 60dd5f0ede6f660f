// Package query implementa a camada de cache de leituras do console.
//
// Cada leitura é identificada por uma Key (família + parâmetros) e guardada
// num Cache injetado junto com o instante da busca e o momento em que passa
// a ser considerada velha. Leituras velhas são servidas imediatamente e
// revalidadas em segundo plano; leituras invalidadas por uma escrita nunca
// são servidas e obrigam uma nova busca.
//
// Buscas concorrentes pela mesma chave são agrupadas numa única chamada ao
// backend (singleflight). Escritas (Mutation) executam exatamente uma vez e,
// apenas em caso de sucesso, invalidam as famílias declaradas na sua
// definição.
//
// Exemplo:
//
//	client := query.NewClient(query.Options{Cache: query.NewMemoryCache()})
//	res, err := query.Fetch(ctx, client, query.Query[Stats]{
//		Key:       query.NewKey("transportadoras-stats"),
//		Fetch:     svc.Stats,
//		StaleTime: 5 * time.Minute,
//	})
package query
