package cli

import (
	"bytes"
	"testing"

	"github.com/urfave/cli/v2"
)

// runCommand runs cmd through a throwaway app and returns what it printed.
// Exit errors are returned instead of terminating the test binary.
func runCommand(t *testing.T, cmd *cli.Command, args ...string) (string, error) {
	t.Helper()

	var buf bytes.Buffer
	app := &cli.App{
		Commands:       []*cli.Command{cmd},
		Writer:         &buf,
		ErrWriter:      &buf,
		ExitErrHandler: func(*cli.Context, error) {},
	}

	err := app.Run(append([]string{"firstapp", cmd.Name}, args...))
	return buf.String(), err
}
