package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// RecordKey identifies one attendance figure.
type RecordKey struct {
	Program ProgramCode `json:"program"`
	Month   int         `json:"month"`
	Band    GradeBand   `json:"grade_band"`
	TK      bool        `json:"tk"`
}

const monthSeparator = "_Month_"

// String renders the key as "<program>_Month_<m>_<band>". The TK flag is carried
// by the program code itself, so it is not repeated.
func (k RecordKey) String() string {
	return fmt.Sprintf("%s%s%d_%s", k.Program, monthSeparator, k.Month, k.Band)
}

// ParseRecordKey reverses RecordKey.String. The TK flag cannot be recovered
// from the text and is reported by the supplied catalog, when given.
func ParseRecordKey(s string, catalog Catalog) (RecordKey, error) {
	i := strings.LastIndex(s, monthSeparator)
	if i <= 0 {
		return RecordKey{}, fmt.Errorf("record key %q: missing month marker", s)
	}
	program := ProgramCode(s[:i])
	rest := s[i+len(monthSeparator):]
	j := strings.Index(rest, "_")
	if j <= 0 {
		return RecordKey{}, fmt.Errorf("record key %q: missing grade band", s)
	}
	month, err := strconv.Atoi(rest[:j])
	if err != nil {
		return RecordKey{}, fmt.Errorf("record key %q: invalid month: %w", s, err)
	}
	key := RecordKey{Program: program, Month: month, Band: GradeBand(rest[j+1:])}
	if p, ok := catalog.Lookup(program); ok {
		key.TK = p.TK
	}
	return key, nil
}

// Measure is an optional numeric cell value.
type Measure struct {
	Value float64 `json:"value"`
	Valid bool    `json:"valid"`
}

// Or returns the value, or def when the measure is absent.
func (m Measure) Or(def float64) float64 {
	if !m.Valid {
		return def
	}
	return m.Value
}

// AttendanceRecord is a single extracted or consolidated figure.
type AttendanceRecord struct {
	Key        RecordKey `json:"key"`
	MonthLabel string    `json:"month_label,omitempty"`
	ADA        Measure   `json:"ada"`
	Percent    Measure   `json:"percent"`
	Row        int       `json:"row,omitempty"` // source row; zero for consolidated records
}

// RecordSet holds at most one record per key.
type RecordSet map[RecordKey]AttendanceRecord

// Put inserts or overwrites the record for its key.
func (rs RecordSet) Put(r AttendanceRecord) {
	rs[r.Key] = r
}

// SortedKeys returns keys ordered by program (catalog order, then name),
// month, then grade band.
func (rs RecordSet) SortedKeys(catalog Catalog) []RecordKey {
	rank := make(map[ProgramCode]int, len(catalog))
	for i, p := range catalog {
		rank[p.Code] = i
	}
	programRank := func(c ProgramCode) int {
		if r, ok := rank[c]; ok {
			return r
		}
		return len(catalog)
	}

	keys := make([]RecordKey, 0, len(rs))
	for k := range rs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if ra, rb := programRank(a.Program), programRank(b.Program); ra != rb {
			return ra < rb
		}
		if a.Program != b.Program {
			return a.Program < b.Program
		}
		if a.Month != b.Month {
			return a.Month < b.Month
		}
		if ra, rb := a.Band.Rank(), b.Band.Rank(); ra != rb {
			return ra < rb
		}
		return a.Band < b.Band
	})
	return keys
}

// RunMeta is the operator-supplied context stamped on dashboard rows.
type RunMeta struct {
	SchoolYear string `json:"school_year" yaml:"school_year" validate:"required"`
	SchoolName string `json:"school_name" yaml:"school_name" validate:"required"`
	Location   string `json:"location" yaml:"location" validate:"required"`
}
