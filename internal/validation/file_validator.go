package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"adarecon/internal/infrastructure"
)

var (
	// ErrNotWorkbook is returned for paths without a workbook extension.
	ErrNotWorkbook = errors.New("not an .xlsx workbook")
	// ErrLockFile is returned for the "~$" owner files Excel leaves beside
	// open workbooks.
	ErrLockFile = errors.New("workbook lock file")
)

// workbookExtensions lists the formats the spreadsheet reader opens.
var workbookExtensions = map[string]bool{
	".xlsx": true,
	".xlsm": true,
}

// FileValidator checks input workbooks and output directories before a run
// touches them.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: infrastructure.WithComponent(logger, "file_validator"),
	}
}

// ValidateFile checks that path exists, is a regular file and can be opened.
// A missing file wraps os.ErrNotExist.
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		v.logger.Error("File not accessible",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateWorkbook checks that path is a readable workbook and not a lock
// file.
func (v *FileValidator) ValidateWorkbook(path string) error {
	base := filepath.Base(path)
	if strings.HasPrefix(base, "~$") {
		v.logger.Warn("Refusing workbook lock file", slog.String("file", path))
		return fmt.Errorf("%w: %s", ErrLockFile, path)
	}
	ext := strings.ToLower(filepath.Ext(base))
	if !workbookExtensions[ext] {
		return fmt.Errorf("%w: %s (extension %q)", ErrNotWorkbook, path, ext)
	}
	return v.ValidateFile(path)
}

// ValidateOutputDirectory creates dir when needed and verifies that it is
// writable.
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	testFile, err := os.CreateTemp(dir, ".write_test_*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	name := testFile.Name()
	testFile.Close()
	os.Remove(name)

	v.logger.Debug("Output directory validated", slog.String("directory", dir))
	return nil
}
