package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Paths contains all the application paths
// This is the single source of truth for ALL file paths in the application
type Paths struct {
	ExecutableDir string
	DataDir       string
	DownloadsDir  string
	ReportsDir    string
	LogsDir       string

	// Directories searched, in order, for the attendance summary.
	SearchDirs []string
}

// GetPaths returns the application paths relative to the executable location
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %v", err)
	}

	// Resolve symlinks to get the actual executable location
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %v", err)
	}

	return NewPaths(filepath.Dir(exe)), nil
}

// NewPaths lays out the standard tree under baseDir:
//
//	<base>/
//	  ├── data/
//	  │   ├── downloads/     (attendance summaries)
//	  │   └── reports/       (dashboard CSVs, filled workbooks)
//	  └── logs/
func NewPaths(baseDir string) *Paths {
	dataDir := filepath.Join(baseDir, DefaultDataDir)
	downloads := filepath.Join(baseDir, DefaultDownloadsDir)

	search := []string{downloads}
	if home, err := os.UserHomeDir(); err == nil {
		search = append(search,
			filepath.Join(home, "Downloads"),
			filepath.Join(home, "Desktop"))
	}
	search = append(search, ".")

	return &Paths{
		ExecutableDir: baseDir,
		DataDir:       dataDir,
		DownloadsDir:  downloads,
		ReportsDir:    filepath.Join(baseDir, DefaultReportsDir),
		LogsDir:       filepath.Join(baseDir, DefaultLogsDir),
		SearchDirs:    search,
	}
}

// Apply overrides directories set in the configuration. Relative overrides
// are resolved against the executable directory.
func (p *Paths) Apply(cfg PathsConfig) *Paths {
	resolve := func(dir string) string {
		if filepath.IsAbs(dir) {
			return dir
		}
		return filepath.Join(p.ExecutableDir, dir)
	}
	if cfg.DataDir != "" {
		p.DataDir = resolve(cfg.DataDir)
	}
	if cfg.ReportsDir != "" {
		p.ReportsDir = resolve(cfg.ReportsDir)
	}
	if cfg.LogsDir != "" {
		p.LogsDir = resolve(cfg.LogsDir)
	}
	if len(cfg.SearchDirs) > 0 {
		p.SearchDirs = append([]string(nil), cfg.SearchDirs...)
	}
	return p
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.DownloadsDir,
		p.ReportsDir,
		p.LogsDir,
	}

	logger := slog.Default()
	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}
		logger.Debug("Ensured directory exists", slog.String("directory", dir))
	}
	return nil
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// GetDownloadPath returns the path for a downloaded file
func (p *Paths) GetDownloadPath(filename string) string {
	return filepath.Join(p.DownloadsDir, filename)
}

// GetReportPath returns the path for a report file
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// GetLogPath returns the path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// GetDashboardCSVPaths returns the timestamped and the stable dashboard
// output paths, e.g. ada_dashboard_output_20250714_093000.csv and
// ada_dashboard_output.csv.
func (p *Paths) GetDashboardCSVPaths(name string, at time.Time) (stamped, stable string) {
	stamped = p.GetReportPath(fmt.Sprintf("%s_%s.csv", name, at.Format(TimestampLayout)))
	stable = p.GetReportPath(name + ".csv")
	return stamped, stable
}

// LogPathResolution logs detailed path resolution information for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("executable", p.ExecutableDir),
			slog.String("data", p.DataDir),
			slog.String("downloads", p.DownloadsDir),
			slog.String("reports", p.ReportsDir),
			slog.String("logs", p.LogsDir),
		),
		slog.Any("search_dirs", p.SearchDirs))
}
