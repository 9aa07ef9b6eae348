/*
Package input reads secrets and other data entered by the user.
*/
package input

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ReadWriter combines reader and writer to be used as a terminal.
type ReadWriter struct {
	io.Reader
	io.Writer
}

// Terminal is a terminal used for input. If `nil`, stdin is used.
var Terminal *term.Terminal

// ReadLine reads line from the input without trailing '\n'.
func ReadLine(w io.Writer, prompt string) (string, error) {
	if Terminal != nil {
		_, err := Terminal.Write([]byte(prompt))
		if err != nil {
			return "", err
		}
		raw, err := Terminal.ReadLine()
		return strings.TrimRight(raw, "\n"), err
	}
	fmt.Fprint(w, prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	return strings.TrimRight(line, "\r\n"), err
}

// ReadSecret reads a secret (like private key) with prompt, the input isn't
// echoed if stdin is a terminal.
func ReadSecret(w io.Writer, prompt string) (string, error) {
	if Terminal != nil {
		return Terminal.ReadPassword(prompt)
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return ReadLine(w, prompt)
	}
	fmt.Fprint(w, prompt)
	raw, err := term.ReadPassword(fd)
	if err != nil {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}
	fmt.Fprintln(w)
	return strings.TrimRight(string(raw), "\n"), nil
}
