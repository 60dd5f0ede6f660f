package pages

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Egles-vieira/bolt-console/pkg/format"
)

// NewValidator registra as regras de documento usadas nos formulários:
// cnpj (14 dígitos depois de limpar a formatação) e uf (uma das siglas de
// format.UFs).
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("cnpj", func(fl validator.FieldLevel) bool {
		return format.IsCNPJ(fl.Field().String())
	})
	_ = v.RegisterValidation("uf", func(fl validator.FieldLevel) bool {
		return format.IsUF(fl.Field().String())
	})
	return v
}

// fieldErrors converte os erros do validator em mensagens por campo.
func fieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fieldMessage(fe)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Campo obrigatório"
	case "cnpj":
		return "CNPJ deve ter 14 dígitos"
	case "uf":
		return "UF inválida"
	case "max":
		return fmt.Sprintf("Máximo de %s caracteres", fe.Param())
	case "gt":
		return fmt.Sprintf("Deve ser maior que %s", fe.Param())
	}
	return "Valor inválido"
}
