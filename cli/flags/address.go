package flags

import (
	"flag"
	"strings"

	"github.com/aptos-labs/aptos-go-sdk"
	"github.com/nspcc-dev/sbfeed/pkg/config"
	"github.com/urfave/cli"
)

// Address is a wrapper for an account address with flag.Value methods.
type Address struct {
	IsSet bool
	Value aptos.AccountAddress
}

// AddressFlag is a flag with type aptos.AccountAddress.
type AddressFlag struct {
	Name  string
	Usage string
	Value Address
}

var (
	_ flag.Value = (*Address)(nil)
	_ cli.Flag   = AddressFlag{}
)

// String implements the fmt.Stringer interface.
func (a Address) String() string {
	if !a.IsSet {
		return ""
	}
	return a.Value.String()
}

// Set implements the flag.Value interface.
func (a *Address) Set(s string) error {
	addr, err := config.ParseAddress(s)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	a.IsSet = true
	a.Value = addr
	return nil
}

// Address returns the address value.
func (a *Address) Address() aptos.AccountAddress {
	if !a.IsSet {
		// It is a programmer error to call this method without
		// checking if the value was provided.
		panic("address was not set")
	}
	return a.Value
}

// IsSet checks if flag was set to a non-default value.
func (f AddressFlag) IsSet() bool {
	return f.Value.IsSet
}

// String returns a readable representation of this value
// (for usage defaults).
func (f AddressFlag) String() string {
	var names []string
	eachName(f.Name, func(name string) {
		names = append(names, getNameHelp(name))
	})

	return strings.Join(names, ", ") + "\t" + f.Usage
}

// GetName returns the name of the flag.
func (f AddressFlag) GetName() string {
	return f.Name
}

// Apply populates the flag given the flag set and environment.
// Ignores errors.
func (f AddressFlag) Apply(set *flag.FlagSet) {
	eachName(f.Name, func(name string) {
		set.Var(&f.Value, name, f.Usage)
	})
}

// AddressFromContext returns the address given by the flag with the
// provided name, ok is false if the flag wasn't set.
func AddressFromContext(ctx *cli.Context, name string) (aptos.AccountAddress, bool) {
	a, ok := ctx.Generic(name).(*Address)
	if !ok || !a.IsSet {
		return aptos.AccountAddress{}, false
	}
	return a.Value, true
}
