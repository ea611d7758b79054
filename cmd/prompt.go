package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// consolePrompter decodes operator intents from an interactive terminal. It
// is one driver of the enrollment workflow; tests use a scripted one.
type consolePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newConsolePrompter(in io.Reader, out io.Writer) *consolePrompter {
	return &consolePrompter{in: bufio.NewReader(in), out: out}
}

func (p *consolePrompter) Name(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *consolePrompter) Confirm(prompt string) (bool, error) {
	fmt.Fprintf(p.out, "%s [y/N]: ", prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

// listPrompter feeds a fixed list of names, for scripted enrollment via
// --names. Confirmations are auto-accepted since the operator already chose
// the names.
type listPrompter struct {
	names []string
	next  int
}

func (p *listPrompter) Name(string) (string, error) {
	if p.next >= len(p.names) {
		return "", nil
	}
	name := p.names[p.next]
	p.next++
	return strings.TrimSpace(name), nil
}

func (p *listPrompter) Confirm(string) (bool, error) {
	return true, nil
}
