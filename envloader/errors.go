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
package envloader

import (
	"fmt"
	"reflect"
)

// InvalidConfigError indica que Load não recebeu um ponteiro para struct.
type InvalidConfigError struct {
	Value reflect.Type
}

func (e *InvalidConfigError) Error() string {
	if e.Value == nil {
		return "envloader: esperado ponteiro para struct, recebido nil"
	}
	if e.Value.Kind() == reflect.Ptr {
		return fmt.Sprintf("envloader: esperado ponteiro para struct, recebido ponteiro para %s", e.Value.Elem().Kind())
	}
	return fmt.Sprintf("envloader: esperado ponteiro para struct, recebido %s", e.Value.Kind())
}

// FieldError descreve um valor de ambiente (ou default) que não pôde ser
// convertido para o tipo do campo. Err é o erro de conversão original.
type FieldError struct {
	FieldName string
	EnvVar    string
	Value     string
	Err       error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("envloader: campo %s (%s=%q): %v", e.FieldName, e.EnvVar, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// UnsupportedTypeError aparece para maps, interfaces e slices que não são
// de string.
type UnsupportedTypeError struct {
	Type reflect.Type
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("envloader: tipo %s não suportado", e.Type)
}

// RequiredError indica um campo ",required" que terminou sem valor.
type RequiredError struct {
	FieldName string
	EnvVar    string
}

func (e *RequiredError) Error() string {
	return fmt.Sprintf("envloader: campo obrigatório %s sem valor; defina %s", e.FieldName, e.EnvVar)
}
