// Package config provides centralized configuration management for adarecon.
//
// # Configuration Sources
//
// Configuration is assembled in order of increasing precedence:
//
//  1. Default values (the standard charter deployment, see Default)
//  2. A YAML file (adarecon.yaml, configs/adarecon.yaml or --config)
//  3. Environment variables prefixed ADA_, optionally loaded from .env
//
// Environment variables follow the struct layout:
//
//	ADA_RUN_SCHOOL_YEAR=2025-2026
//	ADA_SHEET_ADA_COLUMN=39
//	ADA_SHEET_PERCENT_COLUMN=47
//	ADA_LOGGING_LEVEL=debug
//
// The program table, adjacency order, consolidation rules and output layout
// are file-only.
//
// # Validation
//
// Load validates field constraints and cross-references: adjacency,
// consolidation and layout may only name declared programs, and program
// labels and codes are unique.
//
// # Path Management
//
// Paths resolves the data, reports and logs directories relative to the
// executable, and the ordered directories searched for input files.
package config
