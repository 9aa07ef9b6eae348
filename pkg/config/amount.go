package config

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// OctasPerAPT is the number of octas in one APT.
const OctasPerAPT = 100_000_000

const (
	aptDecimals = 8
	aptSuffix   = "APT"
)

var maxAmount = decimal.NewFromBigInt(new(big.Int).SetUint64(math.MaxUint64), 0)

// Amount is an amount of octas. It's written either as an integer number of
// octas or as a decimal number with the APT suffix ("0.1 APT").
type Amount uint64

// ParseAmount parses the textual amount representation.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if v, ok := strings.CutSuffix(s, aptSuffix); ok {
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("bad APT amount %q: %w", s, err)
		}
		octas := d.Shift(aptDecimals)
		switch {
		case octas.IsNegative():
			return 0, fmt.Errorf("negative amount %q", s)
		case !octas.IsInteger():
			return 0, fmt.Errorf("amount %q has more than %d decimal places", s, aptDecimals)
		case octas.GreaterThan(maxAmount):
			return 0, fmt.Errorf("amount %q is too big", s)
		}
		return Amount(octas.BigInt().Uint64()), nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad amount %q: %w", s, err)
	}
	return Amount(v), nil
}

// String returns the amount in APT.
func (a Amount) String() string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(a)), -aptDecimals).String() + " " + aptSuffix
}

// MarshalYAML implements the yaml.Marshaler interface.
func (a Amount) MarshalYAML() (any, error) {
	return uint64(a), nil
}

// UnmarshalYAML implements the yaml.Unmarshaler interface.
func (a *Amount) UnmarshalYAML(node *yaml.Node) error {
	v, err := ParseAmount(node.Value)
	if err != nil {
		return err
	}
	*a = v
	return nil
}
