package account

import (
	"errors"
	"fmt"

	"github.com/aptos-labs/aptos-go-sdk"
	"github.com/nspcc-dev/sbfeed/cli/flags"
	"github.com/nspcc-dev/sbfeed/cli/options"
	"github.com/nspcc-dev/sbfeed/pkg/config"
	"github.com/nspcc-dev/sbfeed/pkg/wallet"
	"github.com/urfave/cli"
)

var amountFlag = flags.AmountFlag{
	Name:  "amount",
	Usage: "amount in octas or in APT with the suffix (\"1.5 APT\"), configured amount is used if not set",
}

func rpcFlags(flags ...cli.Flag) []cli.Flag {
	flags = append(flags, options.Config, options.ConfigFile)
	flags = append(flags, options.Network...)
	return append(flags, options.RPC...)
}

// NewCommands returns 'account' command.
func NewCommands() []cli.Command {
	newFlags := rpcFlags(
		cli.StringFlag{
			Name:  "out",
			Usage: "save the key to the given YAML key file instead of printing it",
		},
		cli.BoolFlag{
			Name:  "fund",
			Usage: "request coins from the faucet for the new account",
		},
		amountFlag,
	)
	showFlags := rpcFlags(options.Key...)
	fundFlags := rpcFlags(flags.AddressFlag{
		Name:  "address, a",
		Usage: "address to fund, the key is used if not set",
	}, amountFlag)
	fundFlags = append(fundFlags, options.Key...)

	return []cli.Command{{
		Name:  "account",
		Usage: "manage signing accounts",
		Subcommands: []cli.Command{
			{
				Name:      "new",
				Usage:     "generate a new account",
				UsageText: "sbfeed account new [--out <file>] [--fund [--amount <amount>]]",
				Action:    newAccount,
				Flags:     newFlags,
			},
			{
				Name:      "show",
				Usage:     "print the account address and balance",
				UsageText: "sbfeed account show [-k <key> | --key-file <file>]",
				Action:    showAccount,
				Flags:     showFlags,
			},
			{
				Name:      "fund",
				Usage:     "request coins from the faucet",
				UsageText: "sbfeed account fund [--address <address> | -k <key> | --key-file <file>] [--amount <amount>]",
				Action:    fundAccount,
				Flags:     fundFlags,
			},
		},
	}}
}

func newAccount(ctx *cli.Context) error {
	if ctx.IsSet("amount") && !ctx.Bool("fund") {
		return cli.NewExitError(errors.New("--amount flag can only be used with --fund"), 1)
	}
	acc, err := wallet.NewAccount()
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	if out := ctx.String("out"); out != "" {
		if err := wallet.NewKeyFile(acc).Save(out); err != nil {
			return cli.NewExitError(fmt.Errorf("failed to save key: %w", err), 1)
		}
	}
	fmt.Fprintf(ctx.App.Writer, "Address: %s\n", acc.Address.String())
	if ctx.String("out") == "" {
		fmt.Fprintf(ctx.App.Writer, "Private key: %s\n", acc.PrivateKeyHex())
	}
	if !ctx.Bool("fund") {
		return nil
	}
	return fund(ctx, acc.Address)
}

func showAccount(ctx *cli.Context) error {
	acc, err := options.GetAccFromContext(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	cfg, err := options.GetConfigFromContext(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	c, ec := options.GetRPCClient(ctx, cfg)
	if ec != nil {
		return ec
	}
	fmt.Fprintf(ctx.App.Writer, "Address: %s\n", acc.Address.String())
	balance, err := c.AccountAPTBalance(acc.Address)
	if err != nil {
		return cli.NewExitError(fmt.Errorf("failed to get balance: %w", err), 1)
	}
	fmt.Fprintf(ctx.App.Writer, "Balance: %s\n", config.Amount(balance))
	return nil
}

func fundAccount(ctx *cli.Context) error {
	addr, ok := flags.AddressFromContext(ctx, "address")
	if ok {
		if options.IsKeySet(ctx) {
			return cli.NewExitError(errors.New("--address flag conflicts with key flags"), 1)
		}
	} else {
		acc, err := options.GetAccFromContext(ctx)
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		addr = acc.Address
	}
	return fund(ctx, addr)
}

func fund(ctx *cli.Context, addr aptos.AccountAddress) error {
	cfg, err := options.GetConfigFromContext(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	amount := flags.AmountFromContext(ctx, "amount", cfg.Application.FundAmount)
	c, ec := options.GetRPCClient(ctx, cfg)
	if ec != nil {
		return ec
	}
	if err := c.Fund(addr, uint64(amount)); err != nil {
		return cli.NewExitError(fmt.Errorf("failed to fund %s: %w", addr.String(), err), 1)
	}
	fmt.Fprintf(ctx.App.Writer, "Funded: %s\n", amount)
	return nil
}
