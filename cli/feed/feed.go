package feed

import (
	"errors"
	"fmt"

	"github.com/aptos-labs/aptos-go-sdk"
	"github.com/nspcc-dev/sbfeed/cli/flags"
	"github.com/nspcc-dev/sbfeed/cli/options"
	"github.com/nspcc-dev/sbfeed/pkg/bootstrap"
	"github.com/nspcc-dev/sbfeed/pkg/config"
	"github.com/nspcc-dev/sbfeed/pkg/rpcclient/switchboard"
	"github.com/nspcc-dev/sbfeed/pkg/wallet"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

var aggregatorFlag = flags.AddressFlag{
	Name:  "aggregator, a",
	Usage: "address of the feed (aggregator)",
}

func commonFlags(flags ...cli.Flag) []cli.Flag {
	flags = append(flags, options.Config, options.ConfigFile, options.Debug)
	flags = append(flags, options.Network...)
	return append(flags, options.RPC...)
}

// NewCommands returns 'feed' command.
func NewCommands() []cli.Command {
	createFlags := commonFlags(
		cli.BoolFlag{
			Name:  "generate, g",
			Usage: "use a newly generated key funded from the faucet; conflicts with key flags",
		},
		cli.StringFlag{
			Name:  "out",
			Usage: "save the generated key to the given YAML key file",
		},
		cli.BoolFlag{
			Name:  "fund",
			Usage: "request coins from the faucet before feed creation (implied by --generate)",
		},
		cli.BoolFlag{
			Name:  "no-open-round",
			Usage: "don't request an update right after creation",
		},
	)
	createFlags = append(createFlags, options.Key...)
	createFlags = append(createFlags, options.Tx...)

	openRoundFlags := commonFlags(aggregatorFlag, cli.Uint64Flag{
		Name:  "jitter",
		Usage: "update jitter (configured value is used if not set)",
	})
	openRoundFlags = append(openRoundFlags, options.Key...)
	openRoundFlags = append(openRoundFlags, options.Tx...)

	return []cli.Command{{
		Name:  "feed",
		Usage: "create and update Switchboard data feeds",
		Subcommands: []cli.Command{
			{
				Name:      "create",
				Usage:     "create a data feed with configured jobs and open the first round",
				UsageText: "sbfeed feed create [--config-file <file>] [-k <key> | --key-file <file> | --generate [--out <file>]] [--fund] [--no-open-round]",
				Description: `Creates a data feed (aggregator) using the Switchboard queue and crank
   from configuration, the feed gets configured jobs encoded as OracleJob
   protobufs. The feed is created in a new resource account and then the
   first update round is requested (unless disabled). The account used to
   sign transactions is given by the private key, the key file or is
   generated and funded from the faucet. If no key flag is given, the key
   is requested from the terminal.
`,
				Action: createFeed,
				Flags:  createFlags,
			},
			{
				Name:      "open-round",
				Usage:     "request an update round for the feed",
				UsageText: "sbfeed feed open-round --aggregator <address> [-k <key> | --key-file <file>] [--jitter <n>]",
				Action:    openRound,
				Flags:     openRoundFlags,
			},
			{
				Name:      "show",
				Usage:     "print the latest confirmed value of the feed",
				UsageText: "sbfeed feed show --aggregator <address>",
				Action:    showFeed,
				Flags:     commonFlags(aggregatorFlag),
			},
		},
	}}
}

func createFeed(ctx *cli.Context) error {
	if ctx.NArg() > 0 {
		return cli.NewExitError(fmt.Errorf("unexpected arguments: %v", ctx.Args()), 1)
	}
	generate := ctx.Bool("generate")
	if generate && options.IsKeySet(ctx) {
		return cli.NewExitError(errors.New("--generate flag conflicts with key flags"), 1)
	}
	if ctx.String("out") != "" && !generate {
		return cli.NewExitError(errors.New("--out flag can only be used with --generate"), 1)
	}
	cfg, err := options.GetSwitchboardConfigFromContext(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	log, err := options.HandleLoggingParams(ctx.Bool("debug"), cfg.Application)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer func() { _ = log.Sync() }()

	var acc *wallet.Account
	if generate {
		acc, err = wallet.NewAccount()
		if err == nil && ctx.String("out") != "" {
			err = wallet.NewKeyFile(acc).Save(ctx.String("out"))
		}
	} else {
		acc, err = options.GetAccFromContext(ctx)
	}
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	c, act, ec := options.GetRPCWithActor(ctx, cfg, acc)
	if ec != nil {
		return ec
	}
	program, err := cfg.Switchboard.ProgramAddress()
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	bc := bootstrap.Config{
		Log:         log,
		Contract:    switchboard.New(act, program),
		Account:     acc.Address,
		Switchboard: cfg.Switchboard,
		Feed:        cfg.Feed,
		OpenRound:   cfg.Application.OpenRound && !ctx.Bool("no-open-round"),
		Jitter:      cfg.Application.Jitter,
	}
	if generate || ctx.Bool("fund") {
		bc.Funder = c
		bc.FundAmount = uint64(cfg.Application.FundAmount)
	}

	gctx, cancel := options.GetSignalContext()
	defer cancel()

	fmt.Fprintf(ctx.App.Writer, "Account: %s\n", acc.Address.String())
	res, err := bootstrap.Run(gctx, bc)
	if res != nil && res.CreateTx != "" {
		if res.Aggregator != (aptos.AccountAddress{}) {
			fmt.Fprintf(ctx.App.Writer, "Aggregator: %s\n", res.Aggregator.String())
		}
		fmt.Fprintf(ctx.App.Writer, "Transaction: %s\n", res.CreateTx)
		if res.OpenRoundTx != "" && err == nil {
			fmt.Fprintf(ctx.App.Writer, "Round opened: %s\n", res.OpenRoundTx)
		}
	}
	if err != nil {
		log.Error("bootstrap failed", zap.Error(err))
		return cli.NewExitError(err, 1)
	}
	return nil
}

func openRound(ctx *cli.Context) error {
	cfg, aggr, err := getConfigAndAggregator(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	acc, err := options.GetAccFromContext(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	_, act, ec := options.GetRPCWithActor(ctx, cfg, acc)
	if ec != nil {
		return ec
	}
	program, err := cfg.Switchboard.ProgramAddress()
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	jitter := cfg.Application.Jitter
	if ctx.IsSet("jitter") {
		jitter = ctx.Uint64("jitter")
	}
	h, err := switchboard.New(act, program).Aggregator(aggr, cfg.Feed.CoinType).OpenRound(jitter)
	if err != nil {
		if h != "" {
			fmt.Fprintf(ctx.App.Writer, "Transaction: %s\n", h)
		}
		return cli.NewExitError(fmt.Errorf("failed to open round: %w", err), 1)
	}
	fmt.Fprintf(ctx.App.Writer, "Round opened: %s\n", h)
	return nil
}

func showFeed(ctx *cli.Context) error {
	cfg, aggr, err := getConfigAndAggregator(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	c, ec := options.GetRPCClient(ctx, cfg)
	if ec != nil {
		return ec
	}
	program, err := cfg.Switchboard.ProgramAddress()
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	v, err := switchboard.NewReader(c, program).LatestValue(aggr)
	if err != nil {
		return cli.NewExitError(fmt.Errorf("failed to get the latest value: %w", err), 1)
	}
	fmt.Fprintf(ctx.App.Writer, "Aggregator: %s\n", aggr.String())
	fmt.Fprintf(ctx.App.Writer, "Value: %s\n", v.String())
	return nil
}

func getConfigAndAggregator(ctx *cli.Context) (config.Config, aptos.AccountAddress, error) {
	aggr, ok := flags.AddressFromContext(ctx, "aggregator")
	if !ok {
		return config.Config{}, aggr, errors.New("aggregator address is missing, use --aggregator flag")
	}
	cfg, err := options.GetSwitchboardConfigFromContext(ctx)
	return cfg, aggr, err
}
