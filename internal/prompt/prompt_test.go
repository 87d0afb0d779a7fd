package prompt

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adarecon/pkg/contracts/domain"
)

// scripted replays canned answers and records the prompts shown.
type scripted struct {
	answers []string
	prompts []string
	current string
}

func (s *scripted) SetPrompt(p string) { s.current = p }

func (s *scripted) Readline() (string, error) {
	s.prompts = append(s.prompts, s.current)
	if len(s.answers) == 0 {
		return "", io.EOF
	}
	a := s.answers[0]
	s.answers = s.answers[1:]
	return a, nil
}

func newScripted(answers ...string) (*Prompter, *scripted, *bytes.Buffer) {
	rl := &scripted{answers: answers}
	var out bytes.Buffer
	return New(rl, &out), rl, &out
}

func TestAsk(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		def    string
		want   string
		prompt string
	}{
		{"default on empty", "", "2025-2026", "2025-2026", "School year [2025-2026]: "},
		{"answer wins", " 2024-2025 ", "2025-2026", "2024-2025", "School year [2025-2026]: "},
		{"no default", "x", "", "x", "School year: "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, rl, _ := newScripted(tt.answer)
			got, err := p.Ask("School year", tt.def)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, []string{tt.prompt}, rl.prompts)
		})
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		name    string
		answers []string
		def     bool
		want    bool
		retries int
	}{
		{"yes", []string{"yes"}, false, true, 0},
		{"short no", []string{"N"}, true, false, 0},
		{"empty takes default", []string{""}, true, true, 0},
		{"repeats until well formed", []string{"maybe", "yep", "y"}, false, true, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, rl, out := newScripted(tt.answers...)
			got, err := p.Confirm("Proceed?", tt.def)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Len(t, rl.prompts, tt.retries+1)
			assert.Equal(t, tt.retries, bytes.Count(out.Bytes(), []byte("Please answer yes or no.")))
		})
	}
}

func TestConfirm_EOF(t *testing.T) {
	p, _, _ := newScripted()
	_, err := p.Confirm("Proceed?", true)
	assert.ErrorIs(t, err, ErrInterrupted)
}

func TestRunMeta(t *testing.T) {
	def := domain.RunMeta{SchoolYear: "2025-2026", SchoolName: "CCCS", Location: "TK-8"}

	p, _, _ := newScripted("Elementary", "", "Lincoln")
	got, err := p.RunMeta(def)
	require.NoError(t, err)
	assert.Equal(t, domain.RunMeta{SchoolYear: "2025-2026", SchoolName: "Lincoln", Location: "Elementary"}, got)
}

func TestConfirmBoundaries(t *testing.T) {
	computed := domain.Boundaries{
		{Program: "Prog_C", Start: 1, Stop: 10},
		{Program: "Prog_N", Start: 11, Stop: 20},
		{Program: "Prog_J"},
	}

	p, rl, out := newScripted(
		"yes",       // Prog_C
		"no",        // Prog_N
		"11",        // malformed
		"eleven,20", // malformed
		"11, 18",    // accepted
		"n",         // Prog_J
		"none,none", // accepted
	)
	overrides, err := p.ConfirmBoundaries(computed)
	require.NoError(t, err)

	assert.Equal(t, map[domain.ProgramCode]domain.Override{
		"Prog_N": {Start: 11, Stop: 18},
		"Prog_J": {},
	}, overrides)
	assert.Len(t, rl.prompts, 7)
	assert.Equal(t, "Are the boundaries for Prog_C [1, 10] correct? (Y/n): ", rl.prompts[0])
	assert.Equal(t, 2, bytes.Count(out.Bytes(), []byte("Invalid input")))
	assert.Contains(t, out.String(), "Updated Prog_N to 11,18")
}

func TestConfirmBoundaries_Interrupted(t *testing.T) {
	p, _, _ := newScripted("no", "bad")
	_, err := p.ConfirmBoundaries(domain.Boundaries{{Program: "Prog_C", Start: 1, Stop: 2}})
	assert.ErrorIs(t, err, ErrInterrupted)
}

func TestContinue(t *testing.T) {
	p, rl, out := newScripted("")
	ok, err := p.Continue("Only 4 out of 12 programs have valid boundaries.")
	require.NoError(t, err)
	assert.False(t, ok, "abort is the default")
	assert.Contains(t, out.String(), "Only 4 out of 12")
	assert.Equal(t, []string{"Continue anyway? (y/N): "}, rl.prompts)
}
