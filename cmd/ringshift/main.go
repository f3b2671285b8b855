package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ringshift/ringshift/pkg/version"
	"github.com/urfave/cli/v2"
)

// errNotReady marks a run whose evaluation completed but did not clear
// the promotion threshold. The exit handler turns it into exit code 1
// without an error banner, the printed summary already told the
// operator why.
var errNotReady = errors.New("policy is not ready for promotion")

func main() {
	app := createApp(os.Stdin, os.Stdout, exitErrHandler)
	app.Run(os.Args) //nolint:errcheck
}

func createApp(reader io.Reader, writer io.Writer, exitErrHandler cli.ExitErrHandlerFunc) *cli.App {
	app := cli.NewApp()
	app.Name = "ringshift"
	app.Usage = "Promote Intune policies through deployment rings"
	app.UsageText = `ringshift <command> [options]`
	app.Version = version.Version().Version
	app.ExitErrHandler = exitErrHandler
	cli.VersionPrinter = func(c *cli.Context) {
		version.PrintFull(c.App.Writer)
	}
	app.Reader = reader
	app.Writer = writer
	app.ErrWriter = writer

	app.Commands = []*cli.Command{
		promoteCommand(),
		statusCommand(),
		versionCommand(),
	}
	return app
}

func exitErrHandler(c *cli.Context, err error) {
	if err == nil {
		return
	}
	if !errors.Is(err, errNotReady) {
		fmt.Fprintf(c.App.ErrWriter, "Error: %v\n", err)
	}
	cli.OsExiter(1)
}
