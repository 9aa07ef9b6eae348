package config

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// NetworkConfiguration selects the Aptos network to work with. Name is one of
// mainnet, testnet, devnet or localnet; other names require NodeURL.
type NetworkConfiguration struct {
	Name      string `yaml:"Name"`
	NodeURL   string `yaml:"NodeURL"`
	FaucetURL string `yaml:"FaucetURL"`
	ChainID   uint8  `yaml:"ChainID"`
}

// Validate implements the validation.Validatable interface.
func (n NetworkConfiguration) Validate() error {
	return validation.ValidateStruct(&n,
		validation.Field(&n.Name, validation.When(n.NodeURL == "",
			validation.Required,
			validation.In("mainnet", "testnet", "devnet", "localnet").Error("unknown network, NodeURL is required"))),
		validation.Field(&n.NodeURL, is.URL),
		validation.Field(&n.FaucetURL, is.URL),
	)
}
