package prompter

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Confirmer asks yes/no questions before destructive operations.
type Confirmer interface {
	Confirm(question string) (bool, error)
}

type TextPrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func New(in io.Reader, out io.Writer) *TextPrompter {
	return &TextPrompter{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// Confirm returns true only for "y" or "yes". Closed input counts as no.
func (p *TextPrompter) Confirm(q string) (bool, error) {
	if _, err := fmt.Fprintf(p.out, "%s [y/N]: ", q); err != nil {
		return false, err
	}

	resp, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}

	r := strings.ToLower(strings.TrimSpace(resp))
	return r == "y" || r == "yes", nil
}

// Always answers every question with the same value, for --yes.
type Always bool

func (a Always) Confirm(string) (bool, error) { return bool(a), nil }
