/*
Package options contains a set of common CLI options and helper functions to use them.
*/
package options

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/aptos-labs/aptos-go-sdk"
	"github.com/nspcc-dev/sbfeed/cli/input"
	"github.com/nspcc-dev/sbfeed/pkg/config"
	"github.com/nspcc-dev/sbfeed/pkg/config/netmode"
	"github.com/nspcc-dev/sbfeed/pkg/rpcclient"
	"github.com/nspcc-dev/sbfeed/pkg/rpcclient/actor"
	"github.com/nspcc-dev/sbfeed/pkg/wallet"
	"github.com/urfave/cli"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultTimeout is the default timeout used for RPC requests.
const DefaultTimeout = 30 * time.Second

// RPCEndpointFlag is a long flag name for an RPC endpoint. It can be used to
// check for flag presence in the context.
const RPCEndpointFlag = "rpc-endpoint"

// PrivateKeyEnv is the environment variable the private key can be passed in.
const PrivateKeyEnv = "SBFEED_PRIVATE_KEY"

// Key is a set of flags used to get the signing key.
var Key = []cli.Flag{
	cli.StringFlag{
		Name:   "private-key, k",
		Usage:  "hex-encoded Ed25519 private key to sign transactions with; conflicts with --key-file flag",
		EnvVar: PrivateKeyEnv,
	},
	cli.StringFlag{
		Name:  "key-file",
		Usage: "path to the YAML key file to get the key for transaction signing; conflicts with --private-key flag",
	},
}

// Network is a set of flags for choosing the network to operate on
// (mainnet/testnet/devnet/localnet).
var Network = []cli.Flag{
	cli.BoolFlag{Name: "mainnet, m", Usage: "use mainnet network configuration (Switchboard addresses must come from --config-file or --config-path)"},
	cli.BoolFlag{Name: "testnet, t", Usage: "use testnet network configuration (default)"},
	cli.BoolFlag{Name: "devnet", Usage: "use devnet network configuration (Switchboard addresses must come from --config-file or --config-path)"},
	cli.BoolFlag{Name: "localnet", Usage: "use local network configuration (Switchboard addresses must come from --config-file or --config-path)"},
}

// RPC is a set of flags used for RPC connections (endpoints and timeout).
var RPC = []cli.Flag{
	cli.StringFlag{
		Name:  RPCEndpointFlag + ", r",
		Usage: "fullnode REST API URL (overrides configuration)",
	},
	cli.StringFlag{
		Name:  "faucet",
		Usage: "faucet URL (overrides configuration)",
	},
	cli.DurationFlag{
		Name:  "timeout, s",
		Value: DefaultTimeout,
		Usage: "Timeout for every request",
	},
}

// Tx is a set of flags used for transaction sending.
var Tx = []cli.Flag{
	cli.Uint64Flag{
		Name:  "max-gas",
		Usage: "maximum amount of gas units the transaction can use (network default if not set)",
	},
	cli.Uint64Flag{
		Name:  "gas-price",
		Usage: "gas unit price in octas (network default if not set)",
	},
}

// Config is a flag for commands that use configuration files.
var Config = cli.StringFlag{
	Name:  "config-path",
	Usage: "path to directory with per-network configuration files (may be overridden by --config-file option for the configuration file)",
}

// ConfigFile is a flag for commands that use configuration and provide
// path to the specific config file instead of config path.
var ConfigFile = cli.StringFlag{
	Name:  "config-file",
	Usage: "path to the configuration file (overrides --config-path option)",
}

// Debug is a flag for commands that allow debug logging.
var Debug = cli.BoolFlag{
	Name:  "debug, d",
	Usage: "enable debug logging (overrides configuration)",
}

var (
	errConflictingKeyFlags = errors.New("--private-key flag conflicts with --key-file flag, please, provide one of them to specify the key")
	errConflictingNetFlags = errors.New("only one of --mainnet, --testnet, --devnet and --localnet flags can be used")
	errNoSwitchboard       = errors.New("built-in Switchboard addresses are only valid for testnet, provide them with --config-file or --config-path")
)

// RPCClient is the set of node methods used by commands.
type RPCClient interface {
	actor.RPCActor

	Fund(addr aptos.AccountAddress, amount uint64) error
	AccountAPTBalance(addr aptos.AccountAddress, ledgerVersion ...uint64) (uint64, error)
}

// NewRPCClient creates the client used by GetRPCClient. It can be replaced
// to work with a different node implementation.
var NewRPCClient = func(network aptos.NetworkConfig, timeout time.Duration) (RPCClient, error) {
	return rpcclient.New(network, rpcclient.Options{RequestTimeout: timeout})
}

// GetNetwork examines Context's flags and returns the appropriate network. It
// defaults to TestNet if no flags are given, the second value is true if any
// of the network flags is set.
func GetNetwork(ctx *cli.Context) (netmode.Mode, bool, error) {
	var (
		net   = netmode.TestNet
		count int
	)
	for _, m := range []netmode.Mode{netmode.MainNet, netmode.TestNet, netmode.DevNet, netmode.LocalNet} {
		if ctx.Bool(m.String()) {
			net = m
			count++
		}
	}
	if count > 1 {
		return net, true, errConflictingNetFlags
	}
	return net, count == 1, nil
}

// GetTimeoutContext returns a context.Context with the default or a user-set timeout.
func GetTimeoutContext(ctx *cli.Context) (context.Context, func()) {
	return context.WithTimeout(context.Background(), getTimeout(ctx))
}

// GetSignalContext returns a context.Context that is cancelled on SIGINT or
// SIGTERM.
func GetSignalContext() (context.Context, func()) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func getTimeout(ctx *cli.Context) time.Duration {
	dur := ctx.Duration("timeout")
	if dur == 0 {
		dur = DefaultTimeout
	}
	return dur
}

// GetConfigFromContext looks at the path and the mode flags in the given
// context and returns an appropriate config. Built-in defaults are used if
// neither --config-file nor --config-path is given. Network flags and
// endpoint flags override the network configuration.
func GetConfigFromContext(ctx *cli.Context) (config.Config, error) {
	var (
		cfg = config.Default()
		err error
	)
	net, netSet, err := GetNetwork(ctx)
	if err != nil {
		return cfg, err
	}
	switch {
	case ctx.String("config-file") != "":
		cfg, err = config.LoadFile(ctx.String("config-file"))
	case ctx.String("config-path") != "":
		cfg, err = config.Load(ctx.String("config-path"), net)
	}
	if err != nil {
		return cfg, err
	}
	if netSet {
		cfg.Network = config.NetworkConfiguration{Name: net.String()}
	}
	if endpoint := ctx.String(RPCEndpointFlag); endpoint != "" {
		cfg.Network.NodeURL = endpoint
	}
	if faucet := ctx.String("faucet"); faucet != "" {
		cfg.Network.FaucetURL = faucet
	}
	if err := cfg.Network.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid network: %w", err)
	}
	return cfg, nil
}

// GetSwitchboardConfigFromContext is GetConfigFromContext for commands
// calling Switchboard. It fails if a non-testnet network is used with the
// built-in testnet Switchboard addresses.
func GetSwitchboardConfigFromContext(ctx *cli.Context) (config.Config, error) {
	cfg, err := GetConfigFromContext(ctx)
	if err != nil {
		return cfg, err
	}
	if cfg.Network.Name != netmode.TestNet.String() && cfg.Switchboard == config.Default().Switchboard {
		return cfg, errNoSwitchboard
	}
	return cfg, nil
}

// GetRPCClient returns an RPC client instance for the given Context and
// configuration.
func GetRPCClient(ctx *cli.Context, cfg config.Config) (RPCClient, cli.ExitCoder) {
	c, err := NewRPCClient(cfg.AptosNetwork(), getTimeout(ctx))
	if err != nil {
		return nil, cli.NewExitError(err, 1)
	}
	return c, nil
}

// GetRPCWithActor returns an RPC client instance and Actor instance for the
// given context and signing account.
func GetRPCWithActor(ctx *cli.Context, cfg config.Config, acc *wallet.Account) (RPCClient, *actor.Actor, cli.ExitCoder) {
	c, ec := GetRPCClient(ctx, cfg)
	if ec != nil {
		return nil, nil, ec
	}
	a, err := actor.NewTuned(c, acc.Account, actor.Options{
		MaxGasAmount: ctx.Uint64("max-gas"),
		GasUnitPrice: ctx.Uint64("gas-price"),
		PollTimeout:  getTimeout(ctx),
	})
	if err != nil {
		return nil, nil, cli.NewExitError(fmt.Errorf("failed to create Actor: %w", err), 1)
	}
	return c, a, nil
}

// IsKeySet returns true if any of the key flags is given.
func IsKeySet(ctx *cli.Context) bool {
	return ctx.String("private-key") != "" || ctx.String("key-file") != ""
}

// GetAccFromContext returns the signing account from --private-key or
// --key-file flags. If none of them is given, the key is requested from user.
func GetAccFromContext(ctx *cli.Context) (*wallet.Account, error) {
	var (
		key     = ctx.String("private-key")
		keyFile = ctx.String("key-file")
	)
	if key != "" && keyFile != "" {
		return nil, errConflictingKeyFlags
	}
	if keyFile != "" {
		kf, err := wallet.ReadKeyFile(keyFile)
		if err != nil {
			return nil, err
		}
		return kf.Account()
	}
	if key == "" {
		raw, err := input.ReadSecret(ctx.App.ErrWriter, "Enter private key > ")
		if err != nil {
			return nil, fmt.Errorf("error reading private key: %w", err)
		}
		key = strings.TrimSpace(raw)
	}
	return wallet.NewAccountFromHex(key)
}

// HandleLoggingParams reads logging parameters.
// If a user selected debug level -- function enables it.
// If logPath is configured -- function creates a dir and a file for logging.
func HandleLoggingParams(debug bool, cfg config.ApplicationConfiguration) (*zap.Logger, error) {
	var (
		level = zapcore.InfoLevel
		err   error
	)
	if len(cfg.LogLevel) > 0 {
		level, err = zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("log setting: %w", err)
		}
	}
	if debug {
		level = zapcore.DebugLevel
	}

	cc := zap.NewProductionConfig()
	cc.DisableCaller = true
	cc.DisableStacktrace = true
	cc.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	cc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cc.Encoding = "console"
	cc.Level = zap.NewAtomicLevelAt(level)
	cc.Sampling = nil

	if logPath := cfg.LogPath; logPath != "" {
		if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
			return nil, fmt.Errorf("could not create dir for logger: %w", err)
		}
		cc.OutputPaths = []string{logPath}
	}

	return cc.Build()
}
