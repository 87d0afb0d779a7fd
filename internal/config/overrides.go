package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"

	"adarecon/internal/dataprocessing"
	"adarecon/pkg/contracts/domain"
)

// LoadOverrides reads a boundary override file. The file maps program codes
// to "start,stop" strings, either of which may be "none":
//
//	Prog_C: "12,57"
//	Prog_N_TK: "none,none"
func LoadOverrides(path string) (map[domain.ProgramCode]domain.Override, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read overrides: %w", err)
	}
	return ParseOverrides(data)
}

// ParseOverrides parses the YAML override document accepted by LoadOverrides.
// Empty input yields an empty map.
func ParseOverrides(data []byte) (map[domain.ProgramCode]domain.Override, error) {
	raw := make(map[string]string)
	if err := yaml.UnmarshalStrict(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", dataprocessing.ErrMalformedOverride, err)
	}

	out := make(map[domain.ProgramCode]domain.Override, len(raw))
	for code, text := range raw {
		o, err := dataprocessing.ParseOverride(text)
		if err != nil {
			return nil, fmt.Errorf("program %s: %w", code, err)
		}
		out[domain.ProgramCode(strings.TrimSpace(code))] = o
	}
	return out, nil
}
