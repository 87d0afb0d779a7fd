package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adarecon/pkg/contracts/domain"
)

func TestIntervalForMatches(t *testing.T) {
	tests := []struct {
		name      string
		rows      []int
		wantStart int
		wantStop  int
	}{
		{"empty", nil, 0, 0},
		{"single", []int{7}, 7, 7},
		{"ascending", []int{3, 4, 9}, 3, 9},
		{"unordered", []int{12, 2, 30, 5}, 2, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, stop := IntervalForMatches(tt.rows)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantStop, stop)
		})
	}
}

func TestLocateBoundaries(t *testing.T) {
	catalog := append(twoProgramCatalog(), domain.Program{Label: "Program Z", Code: "Program_Z", Display: "Z"})
	got := LocateBoundaries(twoProgramSheet(), 1, catalog)

	assert.Equal(t, domain.Boundaries{
		{Program: "Program_X", Start: 1, Stop: 10},
		{Program: "Program_Y", Start: 11, Stop: 20},
		{Program: "Program_Z"},
	}, got)
}

func TestResolveOverlaps(t *testing.T) {
	provisional := domain.Boundaries{
		{Program: "C", Start: 5, Stop: 30},
		{Program: "C_TK", Start: 12, Stop: 40},
		{Program: "N", Start: 41, Stop: 41},
		{Program: "N_TK", Start: 60, Stop: 62},
		{Program: "J"},
		{Program: "K", Start: 90, Stop: 95},
		{Program: "C_CM", Start: 200, Stop: 210},
	}
	order := []domain.ProgramCode{"C", "C_TK", "N", "N_TK", "J", "K"}

	resolved := ResolveOverlaps(order, provisional)

	assert.Equal(t, domain.Boundaries{
		{Program: "C", Start: 5, Stop: 11},
		{Program: "C_TK", Start: 12, Stop: 40},
		{Program: "N", Start: 41, Stop: 59},
		{Program: "N_TK", Start: 60, Stop: 62}, // next (J) not found: provisional stop kept
		{Program: "J"},
		{Program: "K", Start: 90, Stop: 95},
		{Program: "C_CM", Start: 200, Stop: 210}, // not in order
	}, resolved)

	// input untouched
	assert.Equal(t, 30, provisional[0].Stop)
}

func TestResolveOverlaps_UnknownCodesIgnored(t *testing.T) {
	provisional := domain.Boundaries{{Program: "A", Start: 1, Stop: 9}}
	resolved := ResolveOverlaps([]domain.ProgramCode{"A", "B"}, provisional)
	assert.Equal(t, provisional, resolved)
}

func TestResolvedIntervalsAreDisjoint(t *testing.T) {
	provisional := domain.Boundaries{
		{Program: "A", Start: 1, Stop: 50},
		{Program: "B", Start: 20, Stop: 70},
		{Program: "C", Start: 45, Stop: 90},
	}
	resolved := ResolveOverlaps([]domain.ProgramCode{"A", "B", "C"}, provisional)

	for row := 1; row <= 100; row++ {
		owners := 0
		for _, b := range resolved {
			if b.Contains(row) {
				owners++
			}
		}
		assert.LessOrEqual(t, owners, 1, "row %d", row)
	}
	assert.True(t, CheckReadiness(resolved).Clean())
}

func TestApplyOverrides(t *testing.T) {
	b := domain.Boundaries{
		{Program: "A", Start: 1, Stop: 10},
		{Program: "B", Start: 11, Stop: 20},
	}

	got, err := ApplyOverrides(b, map[domain.ProgramCode]domain.Override{
		"B": {Start: 12, Stop: 0},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.Boundary{Program: "B", Start: 12}, got[1])
	assert.Equal(t, 11, b[1].Start)

	_, err = ApplyOverrides(b, map[domain.ProgramCode]domain.Override{"Z": {}})
	assert.ErrorIs(t, err, ErrUnknownProgram)
}

func TestParseOverride(t *testing.T) {
	tests := []struct {
		input   string
		want    domain.Override
		wantErr bool
	}{
		{"57,61", domain.Override{Start: 57, Stop: 61}, false},
		{" 57 , 61 ", domain.Override{Start: 57, Stop: 61}, false},
		{"none,61", domain.Override{Stop: 61}, false},
		{"NONE, none", domain.Override{}, false},
		{"57", domain.Override{}, true},
		{"57,61,70", domain.Override{}, true},
		{"a,b", domain.Override{}, true},
		{"0,5", domain.Override{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseOverride(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedOverride)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, mustParse(t, FormatOverride(got)))
		})
	}
}

func mustParse(t *testing.T, s string) domain.Override {
	t.Helper()
	o, err := ParseOverride(s)
	require.NoError(t, err)
	return o
}

func TestCheckReadiness(t *testing.T) {
	b := domain.Boundaries{
		{Program: "A", Start: 1, Stop: 10},
		{Program: "B", Start: 8, Stop: 20},
		{Program: "C", Start: 30, Stop: 25},
		{Program: "D"},
		{Program: "E"},
		{Program: "F"},
		{Program: "G"},
		{Program: "H"},
		{Program: "I"},
	}
	r := CheckReadiness(b)

	assert.Equal(t, 2, r.Resolved)
	assert.Equal(t, 9, r.Total)
	assert.Equal(t, []domain.ProgramCode{"C"}, r.Inverted)
	assert.Equal(t, [][2]domain.ProgramCode{{"A", "B"}}, r.Overlaps)
	assert.False(t, r.Sufficient())
	assert.False(t, r.Clean())
	assert.Contains(t, r.Message(), "Only 2 out of 9")
	assert.Contains(t, r.Message(), "D, E, F, G, H (and 1 more)")
}

func TestCheckReadiness_NoneAndSufficient(t *testing.T) {
	none := CheckReadiness(domain.Boundaries{{Program: "A"}})
	assert.True(t, none.None())
	assert.Contains(t, none.Message(), "No valid program boundaries")

	half := CheckReadiness(domain.Boundaries{{Program: "A", Start: 1, Stop: 2}, {Program: "B"}})
	assert.True(t, half.Sufficient())
	assert.Equal(t, "Boundaries validated: 1/2 programs ready", half.Message())
}
