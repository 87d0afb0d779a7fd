package prompt

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"adarecon/internal/dataprocessing"
	"adarecon/pkg/contracts/domain"
)

// ErrInterrupted is returned when the operator interrupts or closes input.
var ErrInterrupted = errors.New("prompt interrupted")

// LineReader reads one line per prompt. *readline.Instance satisfies it.
type LineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
}

// Prompter asks the operator for run details and boundary confirmation.
type Prompter struct {
	rl  LineReader
	out io.Writer
}

// New creates a prompter reading from rl and writing messages to out.
func New(rl LineReader, out io.Writer) *Prompter {
	return &Prompter{rl: rl, out: out}
}

// NewTerminal creates a readline-backed prompter. The returned close
// function restores the terminal.
func NewTerminal(in io.ReadCloser, out io.Writer) (*Prompter, func() error, error) {
	rl, err := readline.NewEx(&readline.Config{
		Stdin:           in,
		Stdout:          out,
		InterruptPrompt: "^C",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize prompt: %w", err)
	}
	return New(rl, out), rl.Close, nil
}

func (p *Prompter) readLine(prompt string) (string, error) {
	p.rl.SetPrompt(prompt)
	line, err := p.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
		return "", ErrInterrupted
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Ask returns the operator's answer, or def when the answer is empty.
func (p *Prompter) Ask(question, def string) (string, error) {
	prompt := question + ": "
	if def != "" {
		prompt = fmt.Sprintf("%s [%s]: ", question, def)
	}
	answer, err := p.readLine(prompt)
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// Confirm asks a yes/no question until the answer is one of y, yes, n or
// no. An empty answer selects def.
func (p *Prompter) Confirm(question string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	for {
		answer, err := p.readLine(fmt.Sprintf("%s (%s): ", question, hint))
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(p.out, "Please answer yes or no.")
	}
}

// RunMeta asks for location, school year and school name.
func (p *Prompter) RunMeta(def domain.RunMeta) (domain.RunMeta, error) {
	var (
		meta domain.RunMeta
		err  error
	)
	if meta.Location, err = p.Ask("Location (e.g. TK-8, Elementary, Middle, High)", def.Location); err != nil {
		return meta, err
	}
	if meta.SchoolYear, err = p.Ask("School year (e.g. 2025-2026)", def.SchoolYear); err != nil {
		return meta, err
	}
	if meta.SchoolName, err = p.Ask("School name", def.SchoolName); err != nil {
		return meta, err
	}
	return meta, nil
}

// ConfirmBoundaries walks the computed intervals in order and asks whether
// each is correct. Rejected intervals are re-entered as "start,stop" until
// the text parses. The result holds only corrected programs.
func (p *Prompter) ConfirmBoundaries(computed domain.Boundaries) (map[domain.ProgramCode]domain.Override, error) {
	overrides := make(map[domain.ProgramCode]domain.Override)
	for _, b := range computed {
		ok, err := p.Confirm(fmt.Sprintf("Are the boundaries for %s correct?", b), true)
		if err != nil {
			return nil, err
		}
		if ok {
			continue
		}

		for {
			text, err := p.readLine(fmt.Sprintf("New start,stop for %s ('none' allowed): ", b.Program))
			if err != nil {
				return nil, err
			}
			o, err := dataprocessing.ParseOverride(text)
			if err != nil {
				fmt.Fprintf(p.out, "Invalid input: %v\n", err)
				continue
			}
			overrides[b.Program] = o
			fmt.Fprintf(p.out, "Updated %s to %s\n", b.Program, dataprocessing.FormatOverride(o))
			break
		}
	}
	return overrides, nil
}

// Continue shows message and asks whether to proceed anyway.
func (p *Prompter) Continue(message string) (bool, error) {
	fmt.Fprintln(p.out, message)
	return p.Confirm("Continue anyway?", false)
}
