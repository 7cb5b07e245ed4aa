// Package prompt asks the user questions on a terminal.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/starford/hugoblog/internal/apperr"
)

// EndOfText terminates Multiline input when entered alone on a line.
const EndOfText = "."

// Prompter is the interactive capability used by the workflows.
type Prompter interface {
	// Text asks for one line. An empty answer yields def.
	Text(label, def string) (string, error)
	// Confirm asks a yes/no question. An empty answer yields def.
	Confirm(label string, def bool) (bool, error)
	// Select asks the user to pick one of options and returns its index.
	Select(label string, options []string) (int, error)
	// Multiline reads lines until EndOfText or end of input.
	Multiline(label string) (string, error)
}

// Terminal is a Prompter reading answers line by line from in.
// End of input before an answer is treated as cancellation.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
}

var _ Prompter = (*Terminal)(nil)

// NewTerminal creates a Terminal.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out}
}

func (t *Terminal) readLine() (string, error) {
	line, err := t.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		if errors.Is(err, io.EOF) {
			return "", apperr.ErrCancelled
		}
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (t *Terminal) Text(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(t.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(t.out, "%s: ", label)
	}
	line, err := t.readLine()
	if err != nil {
		return "", err
	}
	if line = strings.TrimSpace(line); line == "" {
		return def, nil
	}
	return line, nil
}

func (t *Terminal) Confirm(label string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	for {
		fmt.Fprintf(t.out, "%s [%s]: ", label, hint)
		line, err := t.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(t.out, "Please answer y or n.")
	}
}

func (t *Terminal) Select(label string, options []string) (int, error) {
	if len(options) == 0 {
		return 0, fmt.Errorf("%s: nothing to choose from: %w", label, apperr.ErrNotFound)
	}
	fmt.Fprintln(t.out, label)
	for i, o := range options {
		fmt.Fprintf(t.out, "  %d) %s\n", i+1, o)
	}
	for {
		fmt.Fprintf(t.out, "Enter a number (1-%d): ", len(options))
		line, err := t.readLine()
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(strings.TrimSpace(line))
		if err == nil && n >= 1 && n <= len(options) {
			return n - 1, nil
		}
		fmt.Fprintln(t.out, "Invalid choice.")
	}
}

func (t *Terminal) Multiline(label string) (string, error) {
	fmt.Fprintf(t.out, "%s (finish with a line containing only %q):\n", label, EndOfText)
	var lines []string
	for {
		line, err := t.readLine()
		if errors.Is(err, apperr.ErrCancelled) {
			if len(lines) == 0 {
				return "", err
			}
			break
		}
		if err != nil {
			return "", err
		}
		if line == EndOfText {
			break
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}

// SplitList splits a comma-separated answer, dropping empty items.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
