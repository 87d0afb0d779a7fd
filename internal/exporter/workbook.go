package exporter

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"adarecon/internal/dataprocessing"
	"adarecon/internal/infrastructure"
	"adarecon/pkg/contracts/domain"
)

// WorkbookWriter fills the reconciliation sheet of an existing workbook.
// Every value is applied in memory and the workbook is persisted once.
type WorkbookWriter struct {
	sheet  string
	logger *slog.Logger
}

// NewWorkbookWriter creates a writer targeting the named sheet.
func NewWorkbookWriter(sheet string, logger *slog.Logger) *WorkbookWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookWriter{
		sheet:  sheet,
		logger: infrastructure.WithComponent(logger, "workbook_writer"),
	}
}

// WriteFile fills the workbook at path and saves it to outPath, or back to
// path when outPath is empty.
func (w *WorkbookWriter) WriteFile(path, outPath string, values []domain.CellValue) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if err := w.apply(f, values); err != nil {
		return err
	}

	if outPath == "" || outPath == path {
		err = f.Save()
		outPath = path
	} else {
		err = f.SaveAs(outPath)
	}
	if err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	w.logger.Info("Workbook updated",
		slog.String("file", outPath),
		slog.String("sheet", w.sheet),
		slog.Int("cells", len(values)))
	return nil
}

// WriteStream reads a workbook from r, fills it and writes the result to out.
func (w *WorkbookWriter) WriteStream(r io.Reader, out io.Writer, values []domain.CellValue) error {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if err := w.apply(f, values); err != nil {
		return err
	}
	if err := f.Write(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (w *WorkbookWriter) apply(f *excelize.File, values []domain.CellValue) error {
	if idx, err := f.GetSheetIndex(w.sheet); err != nil || idx < 0 {
		return fmt.Errorf("%w: %q", dataprocessing.ErrSheetNotFound, w.sheet)
	}
	for _, v := range values {
		if err := f.SetCellValue(w.sheet, v.Address, v.Value); err != nil {
			return fmt.Errorf("failed to set %s (%s): %w", v.Address, v.Key, err)
		}
	}
	return nil
}
