package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/user/debugpanel/internal/entity"
	"github.com/user/debugpanel/pkg/config"
)

// Prompter asks the operator for missing credentials.
type Prompter interface {
	Prompt(label string) (string, error)
	PromptSecret(label string) (string, error)
}

type terminalPrompter struct {
	in     io.Reader
	reader *bufio.Reader
	out    io.Writer
}

// NewTerminalPrompter prompts on out and reads from in. Secrets are read
// with echo disabled, which needs in to be a terminal.
func NewTerminalPrompter(in io.Reader, out io.Writer) Prompter {
	return &terminalPrompter{in: in, reader: bufio.NewReader(in), out: out}
}

func (p *terminalPrompter) Prompt(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	line, err := p.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", entity.Configurationf("reading %s: %v", label, err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (p *terminalPrompter) PromptSecret(label string) (string, error) {
	f, ok := p.in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return "", entity.Configurationf("no terminal available to prompt for the %s (use --password or %s_PASSWORD)", label, config.EnvPrefix)
	}
	fmt.Fprintf(p.out, "%s: ", label)
	secret, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(p.out)
	if err != nil {
		return "", entity.Configurationf("reading %s: %v", label, err)
	}
	return string(secret), nil
}
