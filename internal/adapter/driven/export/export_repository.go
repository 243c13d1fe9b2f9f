package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/diillson/cloudability-export-go/internal/domain/entity"
	"github.com/diillson/cloudability-export-go/internal/domain/repository"
	"github.com/diillson/cloudability-export-go/internal/shared/types"
)

const exportFileMode os.FileMode = 0o644

// ExportRepositoryImpl implementa o ExportRepository.
type ExportRepositoryImpl struct {
	fs      afero.Fs
	out     io.Writer
	console types.ConsoleInterface
	logger  *zap.Logger
}

// NewExportRepository cria uma nova implementação do ExportRepository.
// Files are written through fs; the display sink writes to out.
func NewExportRepository(fs afero.Fs, out io.Writer, console types.ConsoleInterface, logger *zap.Logger) repository.ExportRepository {
	return &ExportRepositoryImpl{
		fs:      fs,
		out:     out,
		console: console,
		logger:  logger,
	}
}

// Display escreve a tabela no terminal: cabeçalho e uma linha por registro.
func (r *ExportRepositoryImpl) Display(table *entity.Table) error {
	if len(table.Columns) == 0 {
		if _, err := fmt.Fprintln(r.out, "(no columns)"); err != nil {
			return fmt.Errorf("%w: writing table: %w", types.ErrIO, err)
		}
		return nil
	}

	t := r.console.CreateTable()
	for _, col := range table.Columns {
		t.AddColumn(col)
	}
	for i := range table.Rows {
		row := table.Strings(i)
		cells := make([]interface{}, len(row))
		for c, v := range row {
			cells[c] = v
		}
		t.AddRow(cells...)
	}

	if _, err := fmt.Fprintln(r.out, t.Render()); err != nil {
		return fmt.Errorf("%w: writing table: %w", types.ErrIO, err)
	}
	return nil
}

// CSV writes the header row followed by one row per record. Null cells are
// written as empty fields.
func (r *ExportRepositoryImpl) CSV(table *entity.Table, target entity.CSVTarget) (string, error) {
	return r.writeAtomically(target.Path, func(w io.Writer) error {
		writer := csv.NewWriter(w)
		if err := writer.Write(table.Columns); err != nil {
			return err
		}
		for i := range table.Rows {
			if err := writer.Write(table.Strings(i)); err != nil {
				return err
			}
		}
		writer.Flush()
		return writer.Error()
	})
}

// writeAtomically grava num arquivo temporário no diretório de destino e só
// renomeia sobre o destino depois que a escrita e o fechamento deram certo.
func (r *ExportRepositoryImpl) writeAtomically(path string, write func(w io.Writer) error) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: no output file given", types.ErrIO)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: resolving %s: %w", types.ErrIO, path, err)
	}

	tmp, err := afero.TempFile(r.fs, filepath.Dir(absPath), "."+filepath.Base(absPath)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("%w: creating temporary file for %s: %w", types.ErrIO, absPath, err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		if rmErr := r.fs.Remove(tmpName); rmErr != nil && !os.IsNotExist(rmErr) {
			r.logger.Warn("could not remove temporary file", zap.String("path", tmpName), zap.Error(rmErr))
		}
	}

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", fmt.Errorf("%w: writing %s: %w", types.ErrIO, absPath, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", fmt.Errorf("%w: closing %s: %w", types.ErrIO, absPath, err)
	}
	if err := r.fs.Chmod(tmpName, exportFileMode); err != nil {
		cleanup()
		return "", fmt.Errorf("%w: setting mode on %s: %w", types.ErrIO, absPath, err)
	}
	if err := r.fs.Rename(tmpName, absPath); err != nil {
		cleanup()
		return "", fmt.Errorf("%w: moving output into %s: %w", types.ErrIO, absPath, err)
	}

	r.logger.Debug("export written", zap.String("path", absPath))
	return absPath, nil
}
