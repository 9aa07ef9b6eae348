package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aptos-labs/aptos-go-sdk"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/nspcc-dev/sbfeed/pkg/config/netmode"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is the default directory with per-network configuration
// files.
const DefaultConfigPath = "./config"

// Version is the version of the program, set at build time.
var Version string

// Config is the top level configuration structure.
type Config struct {
	Network     NetworkConfiguration     `yaml:"Network"`
	Switchboard SwitchboardConfiguration `yaml:"Switchboard"`
	Feed        FeedConfiguration        `yaml:"Feed"`
	Application ApplicationConfiguration `yaml:"Application"`
}

// Default returns the configuration used when no file is given: a BTC/USD
// style feed created on the testnet Switchboard deployment.
func Default() Config {
	return Config{
		Network: NetworkConfiguration{
			Name: netmode.TestNet.String(),
		},
		Switchboard: SwitchboardConfiguration{
			Address: TestNetSwitchboardAddress,
			Queue:   TestNetSwitchboardAddress,
			Crank:   TestNetSwitchboardAddress,
		},
		Feed: FeedConfiguration{
			BatchSize:             1,
			MinJobResults:         1,
			MinOracleResults:      1,
			MinUpdateDelaySeconds: 5,
			VarianceThreshold:     "0",
			CoinType:              DefaultCoinType,
			InitialLoadAmount:     10_000_000,
			Jobs: []JobConfiguration{{
				Name:      "BTC/USD",
				Metadata:  "binance",
				Weight:    1,
				OracleJob: defaultJob(),
			}},
		},
		Application: ApplicationConfiguration{
			LogLevel:   "info",
			FundAmount: 100_000_000,
			OpenRound:  true,
			Jitter:     1,
		},
	}
}

// Load attempts to load the config from the given path for the given
// network.
func Load(path string, mode netmode.Mode) (Config, error) {
	return LoadFile(fmt.Sprintf("%s/sbfeed.%s.yml", path, mode))
}

// LoadFile loads the config from the given file. Values missing from the
// file are taken from Default, the result is validated.
func LoadFile(configPath string) (Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return Config{}, fmt.Errorf("config '%s' doesn't exist", configPath)
	}

	configData, err := os.ReadFile(configPath)
	if err != nil {
		return Config{}, fmt.Errorf("unable to read config: %w", err)
	}

	config := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(configData))
	decoder.KnownFields(true)
	err = decoder.Decode(&config)
	if err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}

// Validate implements the validation.Validatable interface.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Network),
		validation.Field(&c.Switchboard),
		validation.Field(&c.Feed),
		validation.Field(&c.Application),
	)
}

// AptosNetwork returns the SDK network configuration: defaults of the named
// network with URLs and chain ID overridden by the configuration.
func (c Config) AptosNetwork() aptos.NetworkConfig {
	var cfg aptos.NetworkConfig
	if mode, err := netmode.Parse(c.Network.Name); err == nil {
		cfg = mode.NetworkConfig()
	} else {
		cfg.Name = c.Network.Name
	}
	if c.Network.NodeURL != "" {
		cfg.NodeUrl = c.Network.NodeURL
	}
	if c.Network.FaucetURL != "" {
		cfg.FaucetUrl = c.Network.FaucetURL
	}
	if c.Network.ChainID != 0 {
		cfg.ChainId = c.Network.ChainID
	}
	return cfg
}
