package netmode

import (
	"fmt"

	"github.com/aptos-labs/aptos-go-sdk"
)

const (
	// MainNet is the Aptos main network.
	MainNet Mode = iota + 1
	// TestNet is the public Aptos testing network.
	TestNet
	// DevNet is the Aptos developer network, it's reset regularly.
	DevNet
	// LocalNet is a network run locally with `aptos node run-local-testnet`.
	LocalNet
)

// Mode describes the Aptos network to operate on.
type Mode byte

// String implements the stringer interface.
func (m Mode) String() string {
	switch m {
	case MainNet:
		return "mainnet"
	case TestNet:
		return "testnet"
	case DevNet:
		return "devnet"
	case LocalNet:
		return "localnet"
	default:
		return fmt.Sprintf("net %d", byte(m))
	}
}

// Parse returns the Mode with the given name.
func Parse(s string) (Mode, error) {
	for _, m := range []Mode{MainNet, TestNet, DevNet, LocalNet} {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown network %q", s)
}

// NetworkConfig returns SDK defaults (node, faucet and chain ID) for the
// network. An unknown mode gets an empty configuration.
func (m Mode) NetworkConfig() aptos.NetworkConfig {
	switch m {
	case MainNet:
		return aptos.MainnetConfig
	case TestNet:
		return aptos.TestnetConfig
	case DevNet:
		return aptos.DevnetConfig
	case LocalNet:
		return aptos.LocalnetConfig
	default:
		return aptos.NetworkConfig{}
	}
}
