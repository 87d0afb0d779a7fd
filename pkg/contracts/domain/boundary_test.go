package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoundaryContains(t *testing.T) {
	tests := []struct {
		name string
		b    Boundary
		row  int
		want bool
	}{
		{"inside", Boundary{Start: 3, Stop: 9}, 5, true},
		{"start inclusive", Boundary{Start: 3, Stop: 9}, 3, true},
		{"stop inclusive", Boundary{Start: 3, Stop: 9}, 9, true},
		{"after", Boundary{Start: 3, Stop: 9}, 10, false},
		{"unset", Boundary{}, 1, false},
		{"start only", Boundary{Start: 3}, 3, false},
		{"inverted", Boundary{Start: 9, Stop: 3}, 5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.b.Contains(tt.row))
		})
	}
}

func TestBoundaryOverlaps(t *testing.T) {
	a := Boundary{Program: "A", Start: 1, Stop: 10}
	assert.True(t, a.Overlaps(Boundary{Start: 10, Stop: 12}))
	assert.False(t, a.Overlaps(Boundary{Start: 11, Stop: 12}))
	assert.False(t, a.Overlaps(Boundary{Start: 12, Stop: 5}))
	assert.False(t, a.Overlaps(Boundary{}))
}

func TestBoundaryString(t *testing.T) {
	assert.Equal(t, "Prog_C [57, none]", Boundary{Program: "Prog_C", Start: 57}.String())
}

func TestGradeBandRank(t *testing.T) {
	assert.Equal(t, 0, GradeTK3.Rank())
	assert.Equal(t, 3, Grade9to12.Rank())
	assert.False(t, GradeBand("K-3").Known())
}
