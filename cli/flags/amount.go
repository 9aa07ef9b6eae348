package flags

import (
	"flag"
	"strings"

	"github.com/nspcc-dev/sbfeed/pkg/config"
	"github.com/urfave/cli"
)

// Amount is a wrapper for config.Amount with flag.Value methods, both octas
// ("1000") and APT ("0.5 APT") forms are accepted.
type Amount struct {
	IsSet bool
	Value config.Amount
}

// AmountFlag is a flag with type config.Amount.
type AmountFlag struct {
	Name  string
	Usage string
	Value Amount
}

var (
	_ flag.Value = (*Amount)(nil)
	_ cli.Flag   = AmountFlag{}
)

// String implements the fmt.Stringer interface.
func (a Amount) String() string {
	if !a.IsSet {
		return ""
	}
	return a.Value.String()
}

// Set implements the flag.Value interface.
func (a *Amount) Set(s string) error {
	v, err := config.ParseAmount(s)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	a.IsSet = true
	a.Value = v
	return nil
}

// String returns a readable representation of this value
// (for usage defaults).
func (f AmountFlag) String() string {
	var names []string
	eachName(f.Name, func(name string) {
		names = append(names, getNameHelp(name))
	})

	return strings.Join(names, ", ") + "\t" + f.Usage
}

// GetName returns the name of the flag.
func (f AmountFlag) GetName() string {
	return f.Name
}

// Apply populates the flag given the flag set and environment.
// Ignores errors.
func (f AmountFlag) Apply(set *flag.FlagSet) {
	eachName(f.Name, func(name string) {
		set.Var(&f.Value, name, f.Usage)
	})
}

// AmountFromContext returns the amount given by the flag with the provided
// name or def if the flag wasn't set.
func AmountFromContext(ctx *cli.Context, name string, def config.Amount) config.Amount {
	a, ok := ctx.Generic(name).(*Amount)
	if !ok || !a.IsSet {
		return def
	}
	return a.Value
}
