package files

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"adarecon/internal/infrastructure"
)

// ErrInputNotFound is returned when no search directory holds a match.
var ErrInputNotFound = errors.New("input file not found")

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery provides file discovery operations
type Discovery struct {
	basePath string
	logger   *slog.Logger
}

// NewDiscovery creates a new file discovery instance. Relative directories
// are resolved against basePath.
func NewDiscovery(basePath string, logger *slog.Logger) *Discovery {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discovery{basePath: basePath, logger: infrastructure.WithComponent(logger, "discovery")}
}

func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) || d.basePath == "" {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}

// FindFilesByPattern finds files matching a glob pattern, oldest first.
// Excel lock files ("~$...") are skipped.
func (d *Discovery) FindFilesByPattern(dir string, pattern string) ([]FileInfo, error) {
	searchPattern := filepath.Join(d.resolve(dir), pattern)

	matches, err := filepath.Glob(searchPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
	}

	var files []FileInfo
	for _, match := range matches {
		name := filepath.Base(match)
		if strings.HasPrefix(name, "~$") {
			continue
		}
		info, err := os.Stat(match)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, FileInfo{
			Path:    match,
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].ModTime.Before(files[j].ModTime)
	})
	return files, nil
}

// FindLatestInput returns the newest file matching pattern in the first
// directory of dirs that holds any match. Missing directories are skipped.
func (d *Discovery) FindLatestInput(dirs []string, pattern string) (FileInfo, error) {
	for _, dir := range dirs {
		files, err := d.FindFilesByPattern(dir, pattern)
		if err != nil {
			return FileInfo{}, err
		}
		if latest, ok := GetLatestFile(files); ok {
			d.logger.Info("Found attendance summary",
				slog.String("path", latest.Path),
				slog.Int("candidates", len(files)))
			return latest, nil
		}
		d.logger.Debug("No match in search directory", slog.String("dir", dir))
	}
	return FileInfo{}, fmt.Errorf("%w: %s in %s", ErrInputNotFound, pattern, strings.Join(dirs, ", "))
}

// GetLatestFile returns the most recently modified file from a list
func GetLatestFile(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}

	latest := files[0]
	for _, file := range files[1:] {
		if file.ModTime.After(latest.ModTime) {
			latest = file
		}
	}
	return latest, true
}
