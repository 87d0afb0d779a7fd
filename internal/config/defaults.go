package config

import (
	"time"

	"adarecon/pkg/contracts/domain"
)

// Program codes of the standard charter deployment.
const (
	ProgC    domain.ProgramCode = "Prog_C"
	ProgCTK  domain.ProgramCode = "Prog_C_TK"
	ProgCCM  domain.ProgramCode = "Prog_C_CM"
	ProgCSYC domain.ProgramCode = "Prog_C_SYC"
	ProgN    domain.ProgramCode = "Prog_N"
	ProgNTK  domain.ProgramCode = "Prog_N_TK"
	ProgNCM  domain.ProgramCode = "Prog_N_CM"
	ProgNSYC domain.ProgramCode = "Prog_N_SYC"
	ProgJ    domain.ProgramCode = "Prog_J"
	ProgJTK  domain.ProgramCode = "Prog_J_TK"
	ProgK    domain.ProgramCode = "Prog_K"
	ProgKTK  domain.ProgramCode = "Prog_K_TK"
)

// DefaultPrograms is the program table of the monthly attendance summary
// export. Labels must match the summary text exactly, including the double
// space after the dash.
func DefaultPrograms() domain.Catalog {
	return domain.Catalog{
		{Label: "Program C Charter Resident", Code: ProgC, Display: "C"},
		{Label: "Program C Charter Resident -  Transitional Kindergarten(TK)", Code: ProgCTK, Display: "C", TK: true},
		{Label: "Program C Charter Resident -  McClellan(CM)", Code: ProgCCM, Display: "C"},
		{Label: "Program C Charter Resident -  Sac Youth Center(SYC)", Code: ProgCSYC, Display: "C"},
		{Label: "Program N Non-Resident Charter", Code: ProgN, Display: "N"},
		{Label: "Program N Non-Resident Charter -  Transitional Kindergarten(TK)", Code: ProgNTK, Display: "N", TK: true},
		{Label: "Program N Non-Resident Charter -  McClellan(CM)", Code: ProgNCM, Display: "N"},
		{Label: "Program N Non-Resident Charter -  Sac Youth Center(SYC)", Code: ProgNSYC, Display: "N"},
		{Label: "Program J Indep Study Charter Resident", Code: ProgJ, Display: "J"},
		{Label: "Program J Indep Study Charter Non-Resident -  Transitional Kindergarten(TK)", Code: ProgJTK, Display: "J", TK: true},
		{Label: "Program K Indep Study Charter Non-Resident", Code: ProgK, Display: "K"},
		{Label: "Program K Indep Study Charter Non-Resident -  Transitional Kindergarten(TK)", Code: ProgKTK, Display: "K", TK: true},
	}
}

// DefaultAdjacency is the order in which neighbouring intervals are trimmed.
func DefaultAdjacency() []domain.ProgramCode {
	return []domain.ProgramCode{ProgC, ProgCTK, ProgN, ProgNTK, ProgJ, ProgK}
}

// DefaultConsolidation folds the McClellan and Sac Youth Center sites into
// their parent programs. Every other program consolidates to itself.
func DefaultConsolidation() []domain.ConsolidationRule {
	return []domain.ConsolidationRule{
		{Parent: ProgC, Children: []domain.ProgramCode{ProgC, ProgCCM, ProgCSYC}},
		{Parent: ProgCTK, Children: []domain.ProgramCode{ProgCTK}},
		{Parent: ProgN, Children: []domain.ProgramCode{ProgN, ProgNCM, ProgNSYC}},
		{Parent: ProgNTK, Children: []domain.ProgramCode{ProgNTK}},
		{Parent: ProgJ, Children: []domain.ProgramCode{ProgJ}},
		{Parent: ProgJTK, Children: []domain.ProgramCode{ProgJTK}},
		{Parent: ProgK, Children: []domain.ProgramCode{ProgK}},
		{Parent: ProgKTK, Children: []domain.ProgramCode{ProgKTK}},
	}
}

// DefaultLayout is the apportionment summary of the reconciliation workbook:
// months July..June in columns E..P, one five-line block per program.
func DefaultLayout() domain.LayoutSpec {
	return domain.LayoutSpec{
		Sheet:        "Template- Apportionment Summary",
		FirstColumn:  "E",
		ColumnStride: 1,
		RowStride:    1,
		Blocks: []domain.LayoutBlock{
			domain.StandardBlock("Program C", 57, ProgC, ProgCTK),
			domain.StandardBlock("Program J", 65, ProgJ, ProgJTK),
			domain.StandardBlock("Program N", 74, ProgN, ProgNTK),
			domain.StandardBlock("Program K", 82, ProgK, ProgKTK),
		},
	}
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Output:   "both",
			FilePath: "logs/adarecon.log",
		},
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			MaxUploadBytes:  DefaultMaxUploadBytes,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimit,
				Burst:   DefaultBurstSize,
			},
		},
		Run: RunConfig{
			SchoolYear:   "2025-2026",
			SchoolName:   "CCCS",
			Location:     "TK-8",
			InputPattern: InputFilePattern,
			OutputName:   DashboardOutputName,
		},
		Sheet: SheetConfig{
			LabelColumn:   1,
			MonthColumn:   2,
			GradeColumn:   4,
			ADAColumn:     35,
			PercentColumn: -1,
			Dashboard: MeasureColumns{
				ADAColumn:     39,
				PercentColumn: 47,
			},
		},
		Programs:      DefaultPrograms(),
		Adjacency:     DefaultAdjacency(),
		Consolidation: DefaultConsolidation(),
		Layout:        DefaultLayout(),
	}
}
