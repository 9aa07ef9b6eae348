package config

import (
	"errors"
	"fmt"

	"github.com/aptos-labs/aptos-go-sdk"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// TestNetSwitchboardAddress is the account holding the Switchboard program,
// its oracle queue and crank on the Aptos testnet.
const TestNetSwitchboardAddress = "0x34e2eead0aefbc3d0af13c0522be94b002658f4bef8e0740a21086d22236ad77"

// SwitchboardConfiguration contains addresses of the Switchboard deployment:
// the program itself and accounts holding OracleQueue and Crank resources.
type SwitchboardConfiguration struct {
	Address string `yaml:"Address"`
	Queue   string `yaml:"Queue"`
	Crank   string `yaml:"Crank"`
}

// Validate implements the validation.Validatable interface.
func (s SwitchboardConfiguration) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Address, validation.Required, isAddress),
		validation.Field(&s.Queue, validation.Required, isAddress),
		validation.Field(&s.Crank, validation.Required, isAddress),
	)
}

// ProgramAddress returns the parsed program address.
func (s SwitchboardConfiguration) ProgramAddress() (aptos.AccountAddress, error) {
	return ParseAddress(s.Address)
}

// QueueAddress returns the parsed queue address.
func (s SwitchboardConfiguration) QueueAddress() (aptos.AccountAddress, error) {
	return ParseAddress(s.Queue)
}

// CrankAddress returns the parsed crank address.
func (s SwitchboardConfiguration) CrankAddress() (aptos.AccountAddress, error) {
	return ParseAddress(s.Crank)
}

// ParseAddress parses a hex account address, short forms like "0x1" are
// accepted.
func ParseAddress(s string) (aptos.AccountAddress, error) {
	var addr aptos.AccountAddress
	if s == "" {
		return addr, errors.New("empty address")
	}
	if err := addr.ParseStringRelaxed(s); err != nil {
		return addr, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return addr, nil
}

var isAddress = validation.By(func(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	_, err := ParseAddress(s)
	return err
})
