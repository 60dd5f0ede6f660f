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
// Package envloader preenche structs de configuração a partir de variáveis
// de ambiente, usando as tags `env` e `envDefault`.
//
// O console carrega primeiro o YAML e depois chama Load sobre a mesma
// struct; por isso a ordem de precedência é ambiente, arquivo e por último
// o default da tag. Defaults só tocam campos zerados.
//
// Tipos aceitos: string, inteiros com e sem sinal, bool, float,
// time.Duration (formato de time.ParseDuration) e []string separado por
// vírgulas. Structs aninhadas e ponteiros para struct são percorridos.
//
// A opção ",required" na tag env faz Load falhar com *RequiredError quando
// o campo termina vazio:
//
//	type CacheConf struct {
//		Backend string        `env:"CACHE_BACKEND" envDefault:"memory"`
//		GCTime  time.Duration `env:"CACHE_GC_TIME" envDefault:"10m"`
//		Secret  string        `env:"JWT_SECRET,required"`
//	}
//
//	var cfg CacheConf
//	if err := envloader.Load(&cfg); err != nil {
//		log.Fatal().Err(err).Msg("configuração inválida")
//	}
//
// Erros de conversão chegam como *FieldError, que embrulha o erro original.
package envloader
