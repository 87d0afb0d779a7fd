package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"adarecon/internal/dataprocessing"
	"adarecon/pkg/contracts/domain"
)

// EnvPrefix namespaces every environment override, e.g. ADA_RUN_SCHOOL_YEAR.
const EnvPrefix = "ADA"

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Run       RunConfig       `yaml:"run" envconfig:"RUN"`
	Sheet     SheetConfig     `yaml:"sheet" envconfig:"SHEET"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`

	// Deployment tables. These are file-only; environment variables cannot
	// express them.
	Programs      domain.Catalog             `yaml:"programs" ignored:"true" validate:"required,min=1,dive"`
	Adjacency     []domain.ProgramCode       `yaml:"adjacency" ignored:"true" validate:"required,min=1"`
	Consolidation []domain.ConsolidationRule `yaml:"consolidation" ignored:"true" validate:"dive"`
	Layout        domain.LayoutSpec          `yaml:"layout" ignored:"true"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int             `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	MaxUploadBytes  int64           `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" validate:"gt=0"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"gte=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"gte=0"`
}

// PathsConfig overrides the executable-relative directories. Empty fields
// keep the defaults computed by GetPaths.
type PathsConfig struct {
	DataDir    string   `yaml:"data_dir" envconfig:"DATA_DIR"`
	ReportsDir string   `yaml:"reports_dir" envconfig:"REPORTS_DIR"`
	LogsDir    string   `yaml:"logs_dir" envconfig:"LOGS_DIR"`
	SearchDirs []string `yaml:"search_dirs" envconfig:"SEARCH_DIRS"`
}

// RunConfig holds the operator-facing defaults of a pipeline run.
type RunConfig struct {
	SchoolYear   string `yaml:"school_year" envconfig:"SCHOOL_YEAR" validate:"required"`
	SchoolName   string `yaml:"school_name" envconfig:"SCHOOL_NAME" validate:"required"`
	Location     string `yaml:"location" envconfig:"LOCATION" validate:"required"`
	InputPattern string `yaml:"input_pattern" envconfig:"INPUT_PATTERN" validate:"required"`
	OutputName   string `yaml:"output_name" envconfig:"OUTPUT_NAME" validate:"required"`
}

// SheetConfig holds the 0-based column offsets of the attendance summary.
// ADAColumn and PercentColumn feed the reconciliation audit; the dashboard
// export reads its own measure columns.
type SheetConfig struct {
	Name          string         `yaml:"name" envconfig:"NAME"`
	LabelColumn   int            `yaml:"label_column" envconfig:"LABEL_COLUMN" validate:"gte=0"`
	MonthColumn   int            `yaml:"month_column" envconfig:"MONTH_COLUMN" validate:"gte=0"`
	GradeColumn   int            `yaml:"grade_column" envconfig:"GRADE_COLUMN" validate:"gte=0"`
	ADAColumn     int            `yaml:"ada_column" envconfig:"ADA_COLUMN" validate:"gte=0"`
	PercentColumn int            `yaml:"percent_column" envconfig:"PERCENT_COLUMN" validate:"gte=-1"`
	Dashboard     MeasureColumns `yaml:"dashboard" envconfig:"DASHBOARD"`
}

// MeasureColumns selects the ADA and percentage columns of one output mode.
// A negative PercentColumn disables the percentage.
type MeasureColumns struct {
	ADAColumn     int `yaml:"ada_column" envconfig:"ADA_COLUMN" validate:"gte=0"`
	PercentColumn int `yaml:"percent_column" envconfig:"PERCENT_COLUMN" validate:"gte=-1"`
}

// TelemetryConfig toggles run tracing and the metrics textfile.
type TelemetryConfig struct {
	Tracing     bool   `yaml:"tracing" envconfig:"TRACING"`
	MetricsFile string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in increasing order of precedence. A .env file in the working
// directory is loaded into the environment first when present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()

	if path == "" {
		path = getConfigFilePath()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	cfg.Consolidation = dataprocessing.NormalizeRules(cfg.Consolidation)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFromFile layers a YAML file over cfg. Tables present in the file
// replace the defaults wholesale.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.UnmarshalStrict(data, cfg)
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"adarecon.yaml",
		"configs/adarecon.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// Validate checks field constraints and that every table references only
// declared programs.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	labels := make(map[string]bool, len(c.Programs))
	codes := make(map[domain.ProgramCode]bool, len(c.Programs))
	for _, p := range c.Programs {
		if labels[p.Label] {
			return fmt.Errorf("duplicate program label %q", p.Label)
		}
		if codes[p.Code] {
			return fmt.Errorf("duplicate program code %q", p.Code)
		}
		labels[p.Label] = true
		codes[p.Code] = true
	}

	seen := make(map[domain.ProgramCode]bool, len(c.Adjacency))
	for _, code := range c.Adjacency {
		if !codes[code] {
			return fmt.Errorf("adjacency references unknown program %q", code)
		}
		if seen[code] {
			return fmt.Errorf("adjacency lists %q twice", code)
		}
		seen[code] = true
	}

	for _, rule := range c.Consolidation {
		if !codes[rule.Parent] {
			return fmt.Errorf("consolidation parent %q is not a declared program", rule.Parent)
		}
		for _, child := range rule.Children {
			if !codes[child] {
				return fmt.Errorf("consolidation child %q of %q is not a declared program", child, rule.Parent)
			}
		}
	}

	for _, block := range c.Layout.Blocks {
		for _, line := range block.Lines {
			if !codes[line.Program] {
				return fmt.Errorf("layout block %q references unknown program %q", block.Name, line.Program)
			}
			if !line.Band.Known() {
				return fmt.Errorf("layout block %q has unknown grade band %q", block.Name, line.Band)
			}
		}
	}
	return nil
}

// Columns converts the sheet offsets for the audit extractor.
func (s SheetConfig) Columns() dataprocessing.Columns {
	return s.columns(s.ADAColumn, s.PercentColumn)
}

// DashboardColumns converts the sheet offsets for the dashboard extractor.
func (s SheetConfig) DashboardColumns() dataprocessing.Columns {
	return s.columns(s.Dashboard.ADAColumn, s.Dashboard.PercentColumn)
}

func (s SheetConfig) columns(ada, percent int) dataprocessing.Columns {
	return dataprocessing.Columns{
		Label:   s.LabelColumn,
		Month:   s.MonthColumn,
		Grade:   s.GradeColumn,
		ADA:     ada,
		Percent: percent,
	}
}

// Meta returns the run metadata stamped on dashboard rows.
func (r RunConfig) Meta() domain.RunMeta {
	return domain.RunMeta{SchoolYear: r.SchoolYear, SchoolName: r.SchoolName, Location: r.Location}
}
