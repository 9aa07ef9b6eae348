package job

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/nspcc-dev/sbfeed/cli/options"
	"github.com/nspcc-dev/sbfeed/pkg/job"
	"github.com/urfave/cli"
	"gopkg.in/yaml.v3"
)

// NewCommands returns 'job' command.
func NewCommands() []cli.Command {
	encodeFlags := []cli.Flag{
		cli.StringFlag{
			Name:  "url, u",
			Usage: "URL to fetch (encodes a single job instead of configured ones)",
		},
		cli.StringFlag{
			Name:  "path, p",
			Usage: "JSONPath of the value in the response, used with --url",
		},
		options.Config,
		options.ConfigFile,
	}
	encodeFlags = append(encodeFlags, options.Network...)
	return []cli.Command{{
		Name:  "job",
		Usage: "work with oracle job definitions",
		Subcommands: []cli.Command{
			{
				Name:      "encode",
				Usage:     "print base64-encoded jobs as they're stored in the feed",
				UsageText: "sbfeed job encode [--config-file <file>] [--url <url> --path <jsonpath>]",
				Action:    encodeJobs,
				Flags:     encodeFlags,
			},
			{
				Name:      "decode",
				Usage:     "print tasks of the base64-encoded job",
				UsageText: "sbfeed job decode <base64>",
				Action:    decodeJob,
			},
		},
	}}
}

func encodeJobs(ctx *cli.Context) error {
	var (
		u    = ctx.String("url")
		path = ctx.String("path")
	)
	if u != "" || path != "" {
		if u == "" || path == "" {
			return cli.NewExitError(errors.New("both --url and --path are required"), 1)
		}
		data, err := job.New(u, path).Base64()
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		fmt.Fprintln(ctx.App.Writer, data)
		return nil
	}

	cfg, err := options.GetConfigFromContext(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	tw := tabwriter.NewWriter(ctx.App.Writer, 0, 4, 1, ' ', 0)
	for _, j := range cfg.Feed.Jobs {
		data, err := j.Base64()
		if err != nil {
			return cli.NewExitError(fmt.Errorf("job %s: %w", j.Name, err), 1)
		}
		_, _ = fmt.Fprintf(tw, "%s:\t%s\n", j.Name, data)
	}
	_ = tw.Flush()
	return nil
}

func decodeJob(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.NewExitError(errors.New("exactly one base64-encoded job is expected"), 1)
	}
	j, err := job.FromBase64(ctx.Args().First())
	if err != nil {
		return cli.NewExitError(fmt.Errorf("failed to decode job: %w", err), 1)
	}
	out, err := yaml.Marshal(j)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	_, _ = ctx.App.Writer.Write(out)
	return nil
}
