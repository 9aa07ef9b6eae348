package app

import (
	"fmt"
	"os"
	"runtime"

	"github.com/nspcc-dev/sbfeed/cli/account"
	"github.com/nspcc-dev/sbfeed/cli/feed"
	"github.com/nspcc-dev/sbfeed/cli/job"
	"github.com/nspcc-dev/sbfeed/cli/query"
	"github.com/nspcc-dev/sbfeed/pkg/config"
	"github.com/urfave/cli"
)

func versionPrinter(c *cli.Context) {
	_, _ = fmt.Fprintf(c.App.Writer, "sbfeed\nVersion: %s\nGoVersion: %s\n",
		config.Version,
		runtime.Version(),
	)
}

// New creates an sbfeed instance of [cli.App] with all commands included.
func New() *cli.App {
	cli.VersionPrinter = versionPrinter
	ctl := cli.NewApp()
	ctl.Name = "sbfeed"
	ctl.Version = config.Version
	ctl.Usage = "Switchboard data feed bootstrapper for Aptos"
	ctl.ErrWriter = os.Stderr

	ctl.Commands = append(ctl.Commands, feed.NewCommands()...)
	ctl.Commands = append(ctl.Commands, job.NewCommands()...)
	ctl.Commands = append(ctl.Commands, account.NewCommands()...)
	ctl.Commands = append(ctl.Commands, query.NewCommands()...)
	return ctl
}
