package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Egles-vieira/bolt-console/pkg/auth"
	"github.com/Egles-vieira/bolt-console/pkg/cloud"
	"github.com/Egles-vieira/bolt-console/pkg/config"
	"github.com/Egles-vieira/bolt-console/pkg/config/injector"
	"github.com/Egles-vieira/bolt-console/pkg/format"
)

const usage = "Comandos esperados: validate | token | format"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// run devolve o código de saída do processo.
func run(args []string, stdout io.Writer) int {
	if len(args) < 1 {
		fmt.Fprintln(stdout, usage)
		return 1
	}

	var err error
	switch args[0] {
	case "validate":
		err = runValidate(args[1:], stdout)
	case "token":
		err = runToken(args[1:], stdout)
	case "format":
		err = runFormat(args[1:], stdout)
	default:
		fmt.Fprintln(stdout, "Comando desconhecido:", args[0])
		fmt.Fprintln(stdout, usage)
		return 1
	}
	if err != nil {
		fmt.Fprintf(stdout, "❌ %v\n", err)
		return 1
	}
	return 0
}

// Report é a saída JSON do validate, consumida pelo pipeline de deploy.
type Report struct {
	File     string   `json:"file"`
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Runtime  string   `json:"runtime,omitempty"`
	Cache    string   `json:"cache,omitempty"`
	Upstream string   `json:"upstream,omitempty"`
}

// dryResolver aceita qualquer placeholder remoto sem consultar a AWS.
type dryResolver struct{}

func (dryResolver) Parameter(_ context.Context, path string) (string, error) {
	return "ssm:" + path, nil
}

func (dryResolver) Secret(_ context.Context, ref string) (string, error) {
	return "secret:" + ref, nil
}

func runValidate(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(stdout)
	file := fs.String("file", "", "Caminho do arquivo YAML")
	resolve := fs.Bool("resolve", false, "Resolve placeholders ${ssm.} e ${secret.} na AWS")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return errors.New("flag -file é obrigatória")
	}

	var resolver injector.Resolver = dryResolver{}
	if *resolve {
		resolver = cloud.NewLazyParameters(os.Getenv("AWS_REGION"))
	}

	jsonOut := os.Getenv("OUTPUT_FORMAT") == "json"
	if !jsonOut {
		fmt.Fprintf(stdout, "🔍 Analisando configuração: %s ...\n", *file)
	}

	report := Report{File: *file}
	cfg, err := config.Load(context.Background(), *file, resolver)
	if err != nil {
		report.Errors = strings.Split(err.Error(), "\n")
	} else {
		report.Valid = true
		report.Runtime = cfg.Service.Runtime
		report.Cache = cfg.Cache.Backend
		report.Upstream = cfg.Upstream.BaseURL
	}

	if jsonOut {
		if encErr := json.NewEncoder(stdout).Encode(report); encErr != nil {
			return encErr
		}
		if !report.Valid {
			return errors.New("configuração inválida")
		}
		return nil
	}

	if err != nil {
		return fmt.Errorf("a configuração contém erros:\n%v", err)
	}
	fmt.Fprintln(stdout, "✅ Configuração válida e pronta para deploy!")
	return nil
}

// runToken emite um token de sessão para testes manuais e automação.
func runToken(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(stdout)
	file := fs.String("file", "", "Arquivo de configuração de onde ler auth.jwt_secret")
	secret := fs.String("secret", "", "Segredo HS256; tem precedência sobre -file")
	user := fs.String("user", "", "ID do usuário (padrão: UUID aleatório)")
	name := fs.String("name", "", "Nome exibido")
	roles := fs.String("roles", string(auth.RoleOperador), "Papéis separados por vírgula")
	ttl := fs.Duration("ttl", 0, "Validade do token (padrão: auth.session_ttl ou 8h)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	key, validity := *secret, *ttl
	if key == "" {
		if *file == "" {
			return errors.New("informe -secret ou -file")
		}
		cfg, err := config.Load(context.Background(), *file, cloud.NewLazyParameters(os.Getenv("AWS_REGION")))
		if err != nil {
			return err
		}
		key = cfg.Auth.JWTSecret
		if validity == 0 {
			validity = cfg.Auth.SessionTTL
		}
	}
	if validity <= 0 {
		validity = 8 * time.Hour
	}

	u := auth.User{ID: *user, Name: *name}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	for _, r := range strings.Split(*roles, ",") {
		if strings.TrimSpace(r) == "" {
			continue
		}
		role, err := auth.ParseRole(r)
		if err != nil {
			return err
		}
		u.Roles = append(u.Roles, role)
	}

	token, err := auth.NewSessions(key).Issue(u, validity)
	if err != nil {
		return fmt.Errorf("erro ao assinar token: %w", err)
	}
	fmt.Fprintln(stdout, token)
	return nil
}

func runFormat(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("format", flag.ContinueOnError)
	fs.SetOutput(stdout)
	kind := fs.String("type", "cnpj", "cnpj | cpf | cep | phone | currency")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("informe ao menos um valor")
	}

	var f func(string) string
	switch *kind {
	case "cnpj":
		f = format.CNPJ
	case "cpf":
		f = format.CPF
	case "cep":
		f = format.CEP
	case "phone":
		f = format.Phone
	case "currency":
		f = func(s string) string { return format.Currency(s) }
	default:
		return fmt.Errorf("tipo de formatação desconhecido: %s", *kind)
	}

	for _, v := range fs.Args() {
		fmt.Fprintln(stdout, f(v))
	}
	return nil
}
