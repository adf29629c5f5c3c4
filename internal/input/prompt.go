package input

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/mattn/go-isatty"
)

// Prompter asks the operator for one line of input.
type Prompter interface {
	Prompt(label string) (string, error)
}

const (
	emailLabel  = "Notification email for Let's Encrypt"
	headerLabel = "X-Powered-By header value (leave empty to omit)"
)

// Answers holds the interactively collected values.
type Answers struct {
	Email     string
	PoweredBy string
}

// Collect asks for the email, then the optional header value. There are no
// retries: an empty or malformed email aborts before anything else happens.
func Collect(p Prompter) (Answers, error) {
	email, err := p.Prompt(emailLabel)
	if err != nil {
		return Answers{}, fmt.Errorf("failed to read email: %w", err)
	}
	email = strings.TrimSpace(email)
	if err := ValidateEmail(email); err != nil {
		return Answers{}, err
	}

	header, err := p.Prompt(headerLabel)
	if err != nil {
		return Answers{}, fmt.Errorf("failed to read header value: %w", err)
	}
	header = strings.TrimSpace(header)
	if err := ValidateHeaderValue(header); err != nil {
		return Answers{}, err
	}

	return Answers{Email: email, PoweredBy: header}, nil
}

// NewPrompter picks the interactive prompt on a terminal and a plain line
// reader otherwise, so piped input keeps working.
func NewPrompter(in *os.File, out io.Writer) Prompter {
	if isatty.IsTerminal(in.Fd()) || isatty.IsCygwinTerminal(in.Fd()) {
		return &TerminalPrompter{}
	}
	return NewLinePrompter(NewBufferedReader(in), out)
}

// TerminalPrompter uses promptui for line editing on a TTY.
type TerminalPrompter struct{}

// Prompt runs one promptui prompt.
func (p *TerminalPrompter) Prompt(label string) (string, error) {
	prompt := promptui.Prompt{Label: label}
	return prompt.Run()
}

// LinePrompter prints the label and reads a single line.
type LinePrompter struct {
	in  Reader
	out io.Writer
}

// NewLinePrompter creates a LinePrompter.
func NewLinePrompter(in Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: in, out: out}
}

// Prompt reads up to the next newline. End of input counts as an empty
// answer, so a closed stdin fails the required email check downstream.
func (p *LinePrompter) Prompt(label string) (string, error) {
	if p.out != nil {
		_, _ = fmt.Fprintf(p.out, "%s: ", label)
	}
	line, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
