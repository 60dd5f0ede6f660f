package pages

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/Egles-vieira/bolt-console/api"
)

type MockTransportadoras struct {
	mock.Mock
}

func (m *MockTransportadoras) List(ctx context.Context, p api.ListParams) (api.Page[api.Transportadora], error) {
	args := m.Called(ctx, p)
	return args.Get(0).(api.Page[api.Transportadora]), args.Error(1)
}

func (m *MockTransportadoras) Get(ctx context.Context, id string) (api.Transportadora, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(api.Transportadora), args.Error(1)
}

func (m *MockTransportadoras) GetByCNPJ(ctx context.Context, cnpj string) (api.Transportadora, error) {
	args := m.Called(ctx, cnpj)
	return args.Get(0).(api.Transportadora), args.Error(1)
}

func (m *MockTransportadoras) GetByUF(ctx context.Context, uf string) ([]api.Transportadora, error) {
	args := m.Called(ctx, uf)
	return args.Get(0).([]api.Transportadora), args.Error(1)
}

func (m *MockTransportadoras) Search(ctx context.Context, q string, limit int) ([]api.Transportadora, error) {
	args := m.Called(ctx, q, limit)
	return args.Get(0).([]api.Transportadora), args.Error(1)
}

func (m *MockTransportadoras) Stats(ctx context.Context) (api.TransportadoraStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(api.TransportadoraStats), args.Error(1)
}

func (m *MockTransportadoras) ValidateCNPJ(ctx context.Context, cnpj string) (api.CNPJValidation, error) {
	args := m.Called(ctx, cnpj)
	return args.Get(0).(api.CNPJValidation), args.Error(1)
}

func (m *MockTransportadoras) Create(ctx context.Context, in api.TransportadoraInput) (api.Envelope[api.Transportadora], error) {
	args := m.Called(ctx, in)
	return args.Get(0).(api.Envelope[api.Transportadora]), args.Error(1)
}

func (m *MockTransportadoras) Update(ctx context.Context, id string, in api.TransportadoraInput) (api.Envelope[api.Transportadora], error) {
	args := m.Called(ctx, id, in)
	return args.Get(0).(api.Envelope[api.Transportadora]), args.Error(1)
}

func (m *MockTransportadoras) Delete(ctx context.Context, id string) (api.Envelope[any], error) {
	args := m.Called(ctx, id)
	return args.Get(0).(api.Envelope[any]), args.Error(1)
}

func (m *MockTransportadoras) Restore(ctx context.Context, id string) (api.Envelope[api.Transportadora], error) {
	args := m.Called(ctx, id)
	return args.Get(0).(api.Envelope[api.Transportadora]), args.Error(1)
}

type MockVinculos struct {
	mock.Mock
}

func (m *MockVinculos) List(ctx context.Context, p api.VinculoParams) (api.Page[api.Vinculo], error) {
	args := m.Called(ctx, p)
	return args.Get(0).(api.Page[api.Vinculo]), args.Error(1)
}

func (m *MockVinculos) Get(ctx context.Context, id string) (api.Vinculo, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(api.Vinculo), args.Error(1)
}

func (m *MockVinculos) ByTransportadora(ctx context.Context, id string, p api.VinculoParams) (api.Page[api.Vinculo], error) {
	args := m.Called(ctx, id, p)
	return args.Get(0).(api.Page[api.Vinculo]), args.Error(1)
}

func (m *MockVinculos) ByCodigo(ctx context.Context, codigo string, p api.VinculoParams) (api.Page[api.Vinculo], error) {
	args := m.Called(ctx, codigo, p)
	return args.Get(0).(api.Page[api.Vinculo]), args.Error(1)
}

func (m *MockVinculos) Vinculo(ctx context.Context, id, codigo string) (api.Vinculo, error) {
	args := m.Called(ctx, id, codigo)
	return args.Get(0).(api.Vinculo), args.Error(1)
}

func (m *MockVinculos) Stats(ctx context.Context) (api.VinculoStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(api.VinculoStats), args.Error(1)
}

func (m *MockVinculos) Create(ctx context.Context, in api.VinculoInput) (api.Envelope[api.Vinculo], error) {
	args := m.Called(ctx, in)
	return args.Get(0).(api.Envelope[api.Vinculo]), args.Error(1)
}

func (m *MockVinculos) CreateMany(ctx context.Context, in []api.VinculoInput) (api.Envelope[[]api.Vinculo], error) {
	args := m.Called(ctx, in)
	return args.Get(0).(api.Envelope[[]api.Vinculo]), args.Error(1)
}

func (m *MockVinculos) Update(ctx context.Context, id string, in api.VinculoInput) (api.Envelope[api.Vinculo], error) {
	args := m.Called(ctx, id, in)
	return args.Get(0).(api.Envelope[api.Vinculo]), args.Error(1)
}

func (m *MockVinculos) Delete(ctx context.Context, id string) (api.Envelope[any], error) {
	args := m.Called(ctx, id)
	return args.Get(0).(api.Envelope[any]), args.Error(1)
}

func (m *MockVinculos) DeleteByTransportadora(ctx context.Context, id string) (api.Envelope[any], error) {
	args := m.Called(ctx, id)
	return args.Get(0).(api.Envelope[any]), args.Error(1)
}

func (m *MockVinculos) DeleteByCodigo(ctx context.Context, codigo string) (api.Envelope[any], error) {
	args := m.Called(ctx, codigo)
	return args.Get(0).(api.Envelope[any]), args.Error(1)
}

func (m *MockVinculos) ImportCSV(ctx context.Context, filename string, file io.Reader, id string) (api.Envelope[api.ImportResult], error) {
	args := m.Called(ctx, filename, file, id)
	return args.Get(0).(api.Envelope[api.ImportResult]), args.Error(1)
}

func (m *MockVinculos) Export(ctx context.Context, p api.ExportParams) (io.ReadCloser, string, error) {
	args := m.Called(ctx, p)
	body, _ := args.Get(0).(io.ReadCloser)
	return body, args.String(1), args.Error(2)
}
