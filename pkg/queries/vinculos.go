package queries

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Egles-vieira/bolt-console/api"
	"github.com/Egles-vieira/bolt-console/pkg/query"
)

// VinculoService é o subconjunto do cliente de vínculos usado aqui.
type VinculoService interface {
	List(ctx context.Context, p api.VinculoParams) (api.Page[api.Vinculo], error)
	Get(ctx context.Context, id string) (api.Vinculo, error)
	ByTransportadora(ctx context.Context, transportadoraID string, p api.VinculoParams) (api.Page[api.Vinculo], error)
	ByCodigo(ctx context.Context, codigo string, p api.VinculoParams) (api.Page[api.Vinculo], error)
	Vinculo(ctx context.Context, transportadoraID, codigo string) (api.Vinculo, error)
	Stats(ctx context.Context) (api.VinculoStats, error)
	Create(ctx context.Context, in api.VinculoInput) (api.Envelope[api.Vinculo], error)
	CreateMany(ctx context.Context, in []api.VinculoInput) (api.Envelope[[]api.Vinculo], error)
	Update(ctx context.Context, id string, in api.VinculoInput) (api.Envelope[api.Vinculo], error)
	Delete(ctx context.Context, id string) (api.Envelope[any], error)
	DeleteByTransportadora(ctx context.Context, transportadoraID string) (api.Envelope[any], error)
	DeleteByCodigo(ctx context.Context, codigo string) (api.Envelope[any], error)
	ImportCSV(ctx context.Context, filename string, file io.Reader, transportadoraID string) (api.Envelope[api.ImportResult], error)
	Export(ctx context.Context, p api.ExportParams) (io.ReadCloser, string, error)
}

// UpdateVinculo é a entrada da edição de vínculo.
type UpdateVinculo struct {
	ID   string
	Data api.VinculoInput
}

// ImportCSV é a entrada da importação.
type ImportCSV struct {
	Filename         string
	File             io.Reader
	TransportadoraID string
}

// ExportFile é o resultado da exportação. Body deve ser fechado por quem
// recebe.
type ExportFile struct {
	Body        io.ReadCloser
	ContentType string
	Filename    string
}

// Vinculos monta as leituras e escritas de vínculos.
type Vinculos struct {
	svc VinculoService
	now func() time.Time
}

func NewVinculos(svc VinculoService) *Vinculos {
	return &Vinculos{svc: svc, now: time.Now}
}

// ExportFilename gera o nome do arquivo exportado: vinculos_<unix-ms>.<formato>.
func ExportFilename(format string, at time.Time) string {
	if format == "" {
		format = "csv"
	}
	return fmt.Sprintf("vinculos_%d.%s", at.UnixMilli(), format)
}

func (v *Vinculos) List(p api.VinculoParams) query.Query[api.Page[api.Vinculo]] {
	return query.Query[api.Page[api.Vinculo]]{
		Key:              query.NewKey(FamilyVinculos, p),
		Fetch:            func(ctx context.Context) (api.Page[api.Vinculo], error) { return v.svc.List(ctx, p) },
		StaleTime:        StaleTime,
		KeepPreviousData: true,
	}
}

func (v *Vinculos) Detail(id string) query.Query[api.Vinculo] {
	return query.Query[api.Vinculo]{
		Key:       query.NewKey(FamilyVinculo, id),
		Fetch:     func(ctx context.Context) (api.Vinculo, error) { return v.svc.Get(ctx, id) },
		Disabled:  id == "",
		StaleTime: StaleTime,
	}
}

// ByTransportadora lista os códigos de uma transportadora.
func (v *Vinculos) ByTransportadora(transportadoraID string, p api.VinculoParams) query.Query[api.Page[api.Vinculo]] {
	return query.Query[api.Page[api.Vinculo]]{
		Key: query.NewKey(FamilyCodigosTransportadora, transportadoraID, p),
		Fetch: func(ctx context.Context) (api.Page[api.Vinculo], error) {
			return v.svc.ByTransportadora(ctx, transportadoraID, p)
		},
		Disabled:         transportadoraID == "",
		StaleTime:        StaleTime,
		KeepPreviousData: true,
	}
}

// ByCodigo lista as transportadoras de um código de ocorrência.
func (v *Vinculos) ByCodigo(codigo string, p api.VinculoParams) query.Query[api.Page[api.Vinculo]] {
	return query.Query[api.Page[api.Vinculo]]{
		Key: query.NewKey(FamilyTransportadorasCodigo, codigo, p),
		Fetch: func(ctx context.Context) (api.Page[api.Vinculo], error) {
			return v.svc.ByCodigo(ctx, codigo, p)
		},
		Disabled:         codigo == "",
		StaleTime:        StaleTime,
		KeepPreviousData: true,
	}
}

// Especifico exige transportadora e código.
func (v *Vinculos) Especifico(transportadoraID, codigo string) query.Query[api.Vinculo] {
	return query.Query[api.Vinculo]{
		Key: query.NewKey(FamilyVinculoEspecifico, transportadoraID, codigo),
		Fetch: func(ctx context.Context) (api.Vinculo, error) {
			return v.svc.Vinculo(ctx, transportadoraID, codigo)
		},
		Disabled:  transportadoraID == "" || codigo == "",
		StaleTime: StaleTime,
	}
}

func (v *Vinculos) Stats() query.Query[api.VinculoStats] {
	return query.Query[api.VinculoStats]{
		Key:       query.NewKey(FamilyVinculosStats),
		Fetch:     v.svc.Stats,
		StaleTime: StaleTime,
	}
}

var vinculoFamilies = []string{
	FamilyVinculos,
	FamilyCodigosTransportadora,
	FamilyTransportadorasCodigo,
	FamilyVinculosStats,
}

func (v *Vinculos) Create() query.Mutation[api.VinculoInput, api.Envelope[api.Vinculo]] {
	return query.Mutation[api.VinculoInput, api.Envelope[api.Vinculo]]{
		Name:        "vinculo.create",
		Do:          v.svc.Create,
		Invalidates: vinculoFamilies,
		Success:     "Vínculo criado com sucesso!",
		Failure:     "Erro ao criar vínculo",
	}
}

func (v *Vinculos) CreateMany() query.Mutation[[]api.VinculoInput, api.Envelope[[]api.Vinculo]] {
	return query.Mutation[[]api.VinculoInput, api.Envelope[[]api.Vinculo]]{
		Name:        "vinculo.create_many",
		Do:          v.svc.CreateMany,
		Invalidates: vinculoFamilies,
		Success:     "Vínculos criados com sucesso!",
		Failure:     "Erro ao criar vínculos",
	}
}

func (v *Vinculos) Update() query.Mutation[UpdateVinculo, api.Envelope[api.Vinculo]] {
	return query.Mutation[UpdateVinculo, api.Envelope[api.Vinculo]]{
		Name: "vinculo.update",
		Do: func(ctx context.Context, in UpdateVinculo) (api.Envelope[api.Vinculo], error) {
			return v.svc.Update(ctx, in.ID, in.Data)
		},
		Invalidates: []string{FamilyVinculos, FamilyCodigosTransportadora, FamilyTransportadorasCodigo},
		InvalidatesKeys: func(in UpdateVinculo) []query.Key {
			return []query.Key{query.NewKey(FamilyVinculo, in.ID)}
		},
		Success: "Vínculo atualizado com sucesso!",
		Failure: "Erro ao atualizar vínculo",
	}
}

func (v *Vinculos) Delete() query.Mutation[string, api.Envelope[any]] {
	return query.Mutation[string, api.Envelope[any]]{
		Name:        "vinculo.delete",
		Do:          v.svc.Delete,
		Invalidates: vinculoFamilies,
		Success:     "Vínculo deletado com sucesso!",
		Failure:     "Erro ao deletar vínculo",
	}
}

func (v *Vinculos) DeleteByTransportadora() query.Mutation[string, api.Envelope[any]] {
	return query.Mutation[string, api.Envelope[any]]{
		Name:        "vinculo.delete_by_transportadora",
		Do:          v.svc.DeleteByTransportadora,
		Invalidates: []string{FamilyVinculos, FamilyCodigosTransportadora, FamilyVinculosStats},
		Success:     "Vínculos deletados com sucesso!",
		Failure:     "Erro ao deletar vínculos",
	}
}

func (v *Vinculos) DeleteByCodigo() query.Mutation[string, api.Envelope[any]] {
	return query.Mutation[string, api.Envelope[any]]{
		Name:        "vinculo.delete_by_codigo",
		Do:          v.svc.DeleteByCodigo,
		Invalidates: []string{FamilyVinculos, FamilyTransportadorasCodigo, FamilyVinculosStats},
		Success:     "Vínculos deletados com sucesso!",
		Failure:     "Erro ao deletar vínculos",
	}
}

func (v *Vinculos) ImportCSV() query.Mutation[ImportCSV, api.Envelope[api.ImportResult]] {
	return query.Mutation[ImportCSV, api.Envelope[api.ImportResult]]{
		Name: "vinculo.import_csv",
		Do: func(ctx context.Context, in ImportCSV) (api.Envelope[api.ImportResult], error) {
			return v.svc.ImportCSV(ctx, in.Filename, in.File, in.TransportadoraID)
		},
		Invalidates: []string{FamilyVinculos, FamilyCodigosTransportadora, FamilyVinculosStats},
		Success:     "Vínculos importados com sucesso!",
		Failure:     "Erro ao importar vínculos",
	}
}

// Export não invalida nada: apenas lê.
func (v *Vinculos) Export() query.Mutation[api.ExportParams, ExportFile] {
	return query.Mutation[api.ExportParams, ExportFile]{
		Name: "vinculo.export",
		Do: func(ctx context.Context, p api.ExportParams) (ExportFile, error) {
			if p.Format == "" {
				p.Format = "csv"
			}
			body, contentType, err := v.svc.Export(ctx, p)
			if err != nil {
				return ExportFile{}, err
			}
			return ExportFile{
				Body:        body,
				ContentType: contentType,
				Filename:    ExportFilename(p.Format, v.now()),
			}, nil
		},
		Success: "Exportação concluída!",
		Failure: "Erro ao exportar vínculos",
	}
}
