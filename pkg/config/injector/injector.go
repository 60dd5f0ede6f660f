// Package injector resolve placeholders nas strings da configuração:
// ${env.NOME}, ${ssm./caminho} e ${secret.id} (ou ${secret.id#campo}).
package injector

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strings"
)

var pattern = regexp.MustCompile(`\$\{(env|ssm|secret)\.([^}]+)\}`)

// ErrNoResolver indica um placeholder remoto sem Resolver configurado.
var ErrNoResolver = errors.New("injector: placeholder remoto sem resolver")

// Resolver busca valores remotos. cloud.Parameters satisfaz a interface.
type Resolver interface {
	Parameter(ctx context.Context, path string) (string, error)
	Secret(ctx context.Context, ref string) (string, error)
}

type Injector struct {
	resolver Resolver
}

// New cria o injector. Com resolver nulo apenas ${env.} é aceito.
func New(resolver Resolver) *Injector {
	return &Injector{resolver: resolver}
}

// Inject percorre target (ponteiro para struct) substituindo os
// placeholders de todos os campos string, inclusive em mapas, slices e
// structs aninhadas.
func (i *Injector) Inject(ctx context.Context, target any) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("target deve ser um ponteiro para struct não nulo")
	}
	return i.walk(ctx, v.Elem())
}

func (i *Injector) walk(ctx context.Context, v reflect.Value) error {
	switch v.Kind() {
	case reflect.Struct:
		for k := 0; k < v.NumField(); k++ {
			if !v.Type().Field(k).IsExported() {
				continue
			}
			if err := i.walk(ctx, v.Field(k)); err != nil {
				return err
			}
		}

	case reflect.String:
		if !v.CanSet() {
			return nil
		}
		s, err := i.Interpolate(ctx, v.String())
		if err != nil {
			return err
		}
		v.SetString(s)

	case reflect.Ptr, reflect.Interface:
		if !v.IsNil() {
			return i.walk(ctx, v.Elem())
		}

	case reflect.Slice, reflect.Array:
		for j := 0; j < v.Len(); j++ {
			if err := i.walk(ctx, v.Index(j)); err != nil {
				return err
			}
		}

	case reflect.Map:
		if v.IsNil() || v.Type().Key().Kind() != reflect.String {
			return nil
		}
		return i.walkMap(ctx, v)
	}
	return nil
}

// walkMap trata mapas à parte: valores de mapa não são endereçáveis, então
// cada string resolvida é regravada na chave.
func (i *Injector) walkMap(ctx context.Context, v reflect.Value) error {
	iter := v.MapRange()
	updates := make(map[string]reflect.Value)

	for iter.Next() {
		elem := iter.Value()
		if elem.Kind() == reflect.Interface {
			elem = elem.Elem()
		}
		if !elem.IsValid() {
			continue
		}

		switch elem.Kind() {
		case reflect.String:
			s, err := i.Interpolate(ctx, elem.String())
			if err != nil {
				return err
			}
			updates[iter.Key().String()] = reflect.ValueOf(s).Convert(v.Type().Elem())
		case reflect.Map:
			if err := i.walk(ctx, elem); err != nil {
				return err
			}
		}
	}

	for k, val := range updates {
		v.SetMapIndex(reflect.ValueOf(k).Convert(v.Type().Key()), val)
	}
	return nil
}

// Interpolate resolve os placeholders de uma string. Variáveis de ambiente
// ausentes viram texto vazio; falhas remotas interrompem a carga.
func (i *Injector) Interpolate(ctx context.Context, input string) (string, error) {
	if !strings.Contains(input, "${") {
		return input, nil
	}

	var firstErr error
	out := pattern.ReplaceAllStringFunc(input, func(match string) string {
		if firstErr != nil {
			return match
		}
		m := pattern.FindStringSubmatch(match)
		val, err := i.fetch(ctx, m[1], m[2])
		if err != nil {
			firstErr = fmt.Errorf("erro ao resolver %s: %w", match, err)
			return match
		}
		return val
	})
	return out, firstErr
}

func (i *Injector) fetch(ctx context.Context, source, key string) (string, error) {
	switch source {
	case "env":
		return os.Getenv(key), nil
	case "ssm":
		if i.resolver == nil {
			return "", ErrNoResolver
		}
		return i.resolver.Parameter(ctx, key)
	case "secret":
		if i.resolver == nil {
			return "", ErrNoResolver
		}
		return i.resolver.Secret(ctx, key)
	}
	return "", fmt.Errorf("origem desconhecida %q", source)
}
