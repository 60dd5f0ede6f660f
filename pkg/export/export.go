// Package export entrega arquivos exportados pelo backend ao navegador.
// O corpo é copiado para um arquivo temporário, opcionalmente arquivado no
// S3 e então enviado como anexo. O temporário é sempre removido.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/Egles-vieira/bolt-console/pkg/queries"
)

// ErrInterrupted indica falha depois que os cabeçalhos já foram enviados;
// a resposta não pode mais ser trocada por uma tela de erro.
var ErrInterrupted = errors.New("export: envio interrompido")

// Archiver guarda uma cópia do arquivo exportado.
type Archiver interface {
	Put(ctx context.Context, name string, body io.ReadSeeker, contentType string) (string, error)
}

// Deliverer envia exportações como anexo.
type Deliverer struct {
	archive Archiver
	dir     string
}

// NewDeliverer cria o entregador. archive pode ser nulo; dir vazio usa o
// diretório temporário do sistema.
func NewDeliverer(archive Archiver, dir string) *Deliverer {
	return &Deliverer{archive: archive, dir: dir}
}

// Deliver consome e fecha f.Body. Qualquer erro que não seja ErrInterrupted
// acontece antes de escrever em w.
func (d *Deliverer) Deliver(ctx context.Context, w http.ResponseWriter, f queries.ExportFile) error {
	defer f.Body.Close()

	tmp, err := os.CreateTemp(d.dir, "export-*")
	if err != nil {
		return fmt.Errorf("erro ao criar arquivo temporário: %w", err)
	}
	defer func() {
		tmp.Close()
		if err := os.Remove(tmp.Name()); err != nil && !os.IsNotExist(err) {
			log.Ctx(ctx).Warn().Err(err).Str("file", tmp.Name()).Msg("temporário não removido")
		}
	}()

	size, err := io.Copy(tmp, f.Body)
	if err != nil {
		return fmt.Errorf("erro ao receber exportação: %w", err)
	}

	contentType := f.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if d.archive != nil {
		if _, err := tmp.Seek(0, io.SeekStart); err != nil {
			return err
		}
		key, err := d.archive.Put(ctx, f.Filename, tmp, contentType)
		if err != nil {
			// Falha no arquivamento não impede o download.
			log.Ctx(ctx).Error().Err(err).Str("file", f.Filename).Msg("falha ao arquivar exportação")
		} else {
			log.Ctx(ctx).Info().Str("key", key).Msg("exportação arquivada")
		}
	}

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return err
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", f.Filename))
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, tmp); err != nil {
		return fmt.Errorf("%w: %w", ErrInterrupted, err)
	}
	return nil
}
