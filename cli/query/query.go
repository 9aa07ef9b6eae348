package query

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"text/tabwriter"

	"github.com/aptos-labs/aptos-go-sdk/api"
	"github.com/nspcc-dev/sbfeed/cli/options"
	"github.com/nspcc-dev/sbfeed/pkg/config"
	"github.com/urfave/cli"
)

var txHashRe = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

// NewCommands returns 'query' command.
func NewCommands() []cli.Command {
	queryTxFlags := []cli.Flag{options.Config, options.ConfigFile}
	queryTxFlags = append(queryTxFlags, options.Network...)
	queryTxFlags = append(queryTxFlags, options.RPC...)
	return []cli.Command{{
		Name:  "query",
		Usage: "query",
		Subcommands: []cli.Command{
			{
				Name:      "tx",
				Usage:     "query tx status, waits for the transaction to be committed",
				UsageText: "sbfeed query tx <hash>",
				Action:    queryTx,
				Flags:     queryTxFlags,
			},
		},
	}}
}

func queryTx(ctx *cli.Context) error {
	args := ctx.Args()
	if len(args) == 0 {
		return cli.NewExitError("Transaction hash is missing", 1)
	}
	if !txHashRe.MatchString(args[0]) {
		return cli.NewExitError(fmt.Sprintf("Invalid tx hash: %s", args[0]), 1)
	}

	cfg, err := options.GetConfigFromContext(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	c, ec := options.GetRPCClient(ctx, cfg)
	if ec != nil {
		return ec
	}
	tx, err := c.WaitForTransaction(args[0])
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	dumpTransaction(ctx, tx)
	return nil
}

func dumpTransaction(ctx *cli.Context, tx *api.UserTransaction) {
	buf := bytes.NewBuffer(nil)

	// Ignore the errors below because `Write` to buffer doesn't return error.
	tw := tabwriter.NewWriter(buf, 0, 4, 4, '\t', 0)
	_, _ = tw.Write([]byte("Hash:\t" + tx.Hash + "\n"))
	_, _ = tw.Write([]byte("Version:\t" + strconv.FormatUint(tx.Version, 10) + "\n"))
	_, _ = tw.Write([]byte(fmt.Sprintf("Success:\t%t\n", tx.Success)))
	_, _ = tw.Write([]byte("VMStatus:\t" + tx.VmStatus + "\n"))
	_, _ = tw.Write([]byte("GasUsed:\t" + strconv.FormatUint(tx.GasUsed, 10) + "\n"))
	if tx.GasUnitPrice != 0 {
		_, _ = tw.Write([]byte("Fee:\t" + config.Amount(tx.GasUsed*tx.GasUnitPrice).String() + "\n"))
	}
	_ = tw.Flush()
	fmt.Fprint(ctx.App.Writer, buf.String())
}
