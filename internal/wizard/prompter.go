package wizard

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Prompter asks questions on a line-oriented terminal
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:  bufio.NewReader(in),
		out: out,
	}
}

func (p *Prompter) Printf(format string, args ...interface{}) {
	fmt.Fprintf(p.out, format, args...)
}

// Ask returns the trimmed answer; the end of input is an error
func (p *Prompter) Ask(question string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", question)
	line, err := p.in.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", errors.Wrapf(err, "no answer to %q", question)
	}
	return strings.TrimSpace(line), nil
}

// AskRequired repeats the question until the answer is not empty
func (p *Prompter) AskRequired(question string) (string, error) {
	for {
		answer, err := p.Ask(question)
		if err != nil {
			return "", err
		}
		if answer != "" {
			return answer, nil
		}
		fmt.Fprintln(p.out, "A value is required.")
	}
}

// Choose lists the options numbered from 1 and returns the zero-based index picked.
// An optional choice returns -1 on an empty answer, a required one asks again.
// Anything that is not a listed number is an error.
func (p *Prompter) Choose(question string, options []string, optional bool) (int, error) {
	if len(options) == 0 {
		return -1, errors.Errorf("no options to choose from for %q", question)
	}
	for i, o := range options {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, o)
	}

	for {
		answer, err := p.Ask(question)
		if err != nil {
			return -1, err
		}
		if answer == "" {
			if optional {
				return -1, nil
			}
			fmt.Fprintln(p.out, "A choice is required.")
			continue
		}

		n, err := strconv.Atoi(answer)
		if err != nil {
			return -1, errors.Errorf("invalid choice %q for %q: not a number", answer, question)
		}
		if n < 1 || n > len(options) {
			return -1, errors.Errorf("invalid choice %d for %q: expected 1 to %d", n, question, len(options))
		}
		return n - 1, nil
	}
}

func (p *Prompter) Confirm(question string) (bool, error) {
	answer, err := p.Ask(question + " [y/N]")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
