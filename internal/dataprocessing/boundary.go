package dataprocessing

import (
	"fmt"
	"strconv"
	"strings"

	"adarecon/pkg/contracts/domain"
)

// IntervalForMatches returns the lowest and highest matched row, or (0, 0)
// when rows is empty. The stop is provisional: it is the last row carrying the
// label, not the last row of the program's data block.
func IntervalForMatches(rows []int) (start, stop int) {
	if len(rows) == 0 {
		return 0, 0
	}
	start, stop = rows[0], rows[0]
	for _, r := range rows[1:] {
		if r < start {
			start = r
		}
		if r > stop {
			stop = r
		}
	}
	return start, stop
}

// LocateBoundaries computes the provisional interval of every catalog program
// by scanning the label column. The result follows catalog order.
func LocateBoundaries(s *Sheet, labelColumn int, catalog domain.Catalog) domain.Boundaries {
	out := make(domain.Boundaries, 0, len(catalog))
	for _, p := range catalog {
		start, stop := IntervalForMatches(ScanForLabel(s, labelColumn, p.Label))
		out = append(out, domain.Boundary{Program: p.Code, Start: start, Stop: stop})
	}
	return out
}

// ResolveOverlaps truncates each program in order to end one row before the
// next program in order starts. A program is only truncated when both its own
// start and the next start are known; otherwise its provisional stop is kept
// and must be verified by the operator. Programs not named in order are left
// as they are. The input is not modified.
func ResolveOverlaps(order []domain.ProgramCode, provisional domain.Boundaries) domain.Boundaries {
	resolved := provisional.Clone()
	pos := make(map[domain.ProgramCode]int, len(resolved))
	for i, b := range resolved {
		pos[b.Program] = i
	}

	for i := 0; i+1 < len(order); i++ {
		ci, ok := pos[order[i]]
		if !ok {
			continue
		}
		ni, ok := pos[order[i+1]]
		if !ok {
			continue
		}
		if resolved[ci].Start > 0 && resolved[ni].Start > 0 {
			resolved[ci].Stop = resolved[ni].Start - 1
		}
	}
	return resolved
}

// ApplyOverrides replaces computed intervals verbatim with operator-supplied
// ones. Overrides naming programs absent from the set are rejected.
func ApplyOverrides(b domain.Boundaries, overrides map[domain.ProgramCode]domain.Override) (domain.Boundaries, error) {
	out := b.Clone()
	pos := make(map[domain.ProgramCode]int, len(out))
	for i, bb := range out {
		pos[bb.Program] = i
	}
	for code, o := range overrides {
		i, ok := pos[code]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownProgram, code)
		}
		out[i].Start = o.Start
		out[i].Stop = o.Stop
	}
	return out, nil
}

// ParseOverride parses operator text of the form "start,stop" where either
// token may be the literal "none".
func ParseOverride(text string) (domain.Override, error) {
	parts := strings.Split(text, ",")
	if len(parts) != 2 {
		return domain.Override{}, fmt.Errorf("%w: %q: expected exactly two values separated by a comma", ErrMalformedOverride, text)
	}
	start, err := parseBound(parts[0])
	if err != nil {
		return domain.Override{}, fmt.Errorf("%w: %q: %v", ErrMalformedOverride, text, err)
	}
	stop, err := parseBound(parts[1])
	if err != nil {
		return domain.Override{}, fmt.Errorf("%w: %q: %v", ErrMalformedOverride, text, err)
	}
	return domain.Override{Start: start, Stop: stop}, nil
}

func parseBound(token string) (int, error) {
	token = strings.TrimSpace(token)
	if strings.EqualFold(token, "none") {
		return 0, nil
	}
	n, err := strconv.Atoi(token)
	if err != nil {
		return 0, fmt.Errorf("invalid row %q", token)
	}
	if n < 1 {
		return 0, fmt.Errorf("row %d must be positive", n)
	}
	return n, nil
}

// FormatOverride renders an override in the form accepted by ParseOverride.
func FormatOverride(o domain.Override) string {
	return boundText(o.Start) + "," + boundText(o.Stop)
}

func boundText(row int) string {
	if row <= 0 {
		return "none"
	}
	return strconv.Itoa(row)
}

// Readiness summarizes whether a boundary set is usable for extraction.
type Readiness struct {
	Resolved int                     `json:"resolved"`
	Total    int                     `json:"total"`
	Missing  []domain.ProgramCode    `json:"missing,omitempty"`
	Inverted []domain.ProgramCode    `json:"inverted,omitempty"`
	Overlaps [][2]domain.ProgramCode `json:"overlaps,omitempty"`
}

// CheckReadiness reports missing, inverted and overlapping intervals.
func CheckReadiness(b domain.Boundaries) Readiness {
	r := Readiness{Total: len(b)}
	for i, bb := range b {
		switch {
		case !bb.Found():
			r.Missing = append(r.Missing, bb.Program)
		case bb.Inverted():
			r.Inverted = append(r.Inverted, bb.Program)
		default:
			r.Resolved++
		}
		for _, other := range b[i+1:] {
			if bb.Overlaps(other) {
				r.Overlaps = append(r.Overlaps, [2]domain.ProgramCode{bb.Program, other.Program})
			}
		}
	}
	return r
}

// None reports that no program resolved.
func (r Readiness) None() bool {
	return r.Resolved == 0
}

// Sufficient reports that at least half of the programs resolved.
func (r Readiness) Sufficient() bool {
	return r.Resolved > 0 && float64(r.Resolved) >= float64(r.Total)/2
}

// Clean reports no inverted or overlapping intervals.
func (r Readiness) Clean() bool {
	return len(r.Inverted) == 0 && len(r.Overlaps) == 0
}

// Message renders the operator-facing summary. Only the first five missing
// programs are listed.
func (r Readiness) Message() string {
	if r.None() {
		return "No valid program boundaries found. Check the input file and program labels."
	}
	if !r.Sufficient() {
		var sb strings.Builder
		fmt.Fprintf(&sb, "Only %d out of %d programs have valid boundaries. Missing boundaries for: %s",
			r.Resolved, r.Total, joinCodes(r.Missing, 5))
		return sb.String()
	}
	return fmt.Sprintf("Boundaries validated: %d/%d programs ready", r.Resolved, r.Total)
}

func joinCodes(codes []domain.ProgramCode, limit int) string {
	shown := codes
	if len(shown) > limit {
		shown = shown[:limit]
	}
	parts := make([]string, len(shown))
	for i, c := range shown {
		parts[i] = string(c)
	}
	s := strings.Join(parts, ", ")
	if len(codes) > limit {
		s += fmt.Sprintf(" (and %d more)", len(codes)-limit)
	}
	return s
}
