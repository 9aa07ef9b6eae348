package input

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/term"
)

func TestTerminal(t *testing.T) {
	in := bytes.NewBufferString("first line\r0x5a0f\r")
	Terminal = term.NewTerminal(ReadWriter{
		Reader: in,
		Writer: io.Discard,
	}, "")
	t.Cleanup(func() { Terminal = nil })

	line, err := ReadLine(io.Discard, "> ")
	require.NoError(t, err)
	require.Equal(t, "first line", line)

	secret, err := ReadSecret(io.Discard, "key > ")
	require.NoError(t, err)
	require.Equal(t, "0x5a0f", secret)
}
