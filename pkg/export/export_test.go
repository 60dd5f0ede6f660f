package export

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Egles-vieira/bolt-console/pkg/queries"
)

type MockArchiver struct {
	mock.Mock
	got string
}

func (m *MockArchiver) Put(ctx context.Context, name string, body io.ReadSeeker, contentType string) (string, error) {
	data, _ := io.ReadAll(body)
	m.got = string(data)
	args := m.Called(ctx, name, contentType)
	return args.String(0), args.Error(1)
}

type trackingBody struct {
	io.Reader
	closed bool
}

func (b *trackingBody) Close() error {
	b.closed = true
	return nil
}

func file(content string) (queries.ExportFile, *trackingBody) {
	body := &trackingBody{Reader: strings.NewReader(content)}
	return queries.ExportFile{Body: body, ContentType: "text/csv", Filename: "vinculos_1700000000000.csv"}, body
}

func tempEntries(t *testing.T, dir string) int {
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return len(entries)
}

func TestDeliver(t *testing.T) {
	t.Run("envia como anexo e remove o temporário", func(t *testing.T) {
		dir := t.TempDir()
		f, body := file("id;codigo\n1;10\n")
		rr := httptest.NewRecorder()

		err := NewDeliverer(nil, dir).Deliver(context.Background(), rr, f)

		require.NoError(t, err)
		assert.Equal(t, "text/csv", rr.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="vinculos_1700000000000.csv"`, rr.Header().Get("Content-Disposition"))
		assert.Equal(t, "15", rr.Header().Get("Content-Length"))
		assert.Equal(t, "id;codigo\n1;10\n", rr.Body.String())
		assert.True(t, body.closed)
		assert.Zero(t, tempEntries(t, dir))
	})

	t.Run("arquiva uma cópia", func(t *testing.T) {
		dir := t.TempDir()
		archive := &MockArchiver{}
		archive.On("Put", mock.Anything, "vinculos_1700000000000.csv", "text/csv").Return("exports/x.csv", nil).Once()
		f, _ := file("a;b")
		rr := httptest.NewRecorder()

		require.NoError(t, NewDeliverer(archive, dir).Deliver(context.Background(), rr, f))

		assert.Equal(t, "a;b", archive.got)
		assert.Equal(t, "a;b", rr.Body.String())
		archive.AssertExpectations(t)
	})

	t.Run("falha no arquivamento não impede o download", func(t *testing.T) {
		dir := t.TempDir()
		archive := &MockArchiver{}
		archive.On("Put", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("s3 fora"))
		f, _ := file("a;b")
		rr := httptest.NewRecorder()

		require.NoError(t, NewDeliverer(archive, dir).Deliver(context.Background(), rr, f))

		assert.Equal(t, "a;b", rr.Body.String())
		assert.Zero(t, tempEntries(t, dir))
	})

	t.Run("erro de leitura também remove o temporário", func(t *testing.T) {
		dir := t.TempDir()
		body := &trackingBody{Reader: io.MultiReader(strings.NewReader("parcial"), errReader{})}
		rr := httptest.NewRecorder()

		err := NewDeliverer(nil, dir).Deliver(context.Background(), rr, queries.ExportFile{Body: body, Filename: "x.csv"})

		assert.ErrorContains(t, err, "conexão caiu")
		assert.NotErrorIs(t, err, ErrInterrupted)
		assert.Empty(t, rr.Header().Get("Content-Disposition"))
		assert.Zero(t, rr.Body.Len())
		assert.True(t, body.closed)
		assert.Zero(t, tempEntries(t, dir))
	})

	t.Run("falha depois dos cabeçalhos é ErrInterrupted", func(t *testing.T) {
		dir := t.TempDir()
		f, _ := file("id;codigo\n1;10\n")
		w := &brokenWriter{ResponseRecorder: httptest.NewRecorder()}

		err := NewDeliverer(nil, dir).Deliver(context.Background(), w, f)

		assert.ErrorIs(t, err, ErrInterrupted)
		assert.Equal(t, 200, w.Code)
		assert.Zero(t, tempEntries(t, dir))
	})
}

type brokenWriter struct {
	*httptest.ResponseRecorder
}

func (w *brokenWriter) Write([]byte) (int, error) { return 0, errors.New("cliente desconectou") }

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("conexão caiu") }
