/*
Package unwrap provides a set of proxy methods to process view function results.

Functions implemented there are intended to be used as wrappers for other
functions that return ([]any, error) pair (of which there are many, view
calls return JSON-decoded Move values this way). These functions will check
for error, check the number of results, cast them to appropriate type (if
everything is OK) and then return a result or error. They're mostly useful for
other higher-level module-specific packages.
*/
package unwrap

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"

	"github.com/shopspring/decimal"
)

// Item returns the value from the result if it's the only one returned.
func Item(r []any, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	if len(r) == 0 {
		return nil, errors.New("result is empty")
	}
	if len(r) > 1 {
		return nil, fmt.Errorf("too many (%d) result items", len(r))
	}
	return r[0], nil
}

// Map expects a single struct value returned, structs are represented as
// maps of field names to values.
func Map(r []any, err error) (map[string]any, error) {
	itm, err := Item(r, err)
	if err != nil {
		return nil, err
	}
	m, ok := itm.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%T is not a struct", itm)
	}
	return m, nil
}

// Decimal expects a single decimal struct returned, that is a struct with
// unsigned "value" mantissa, "dec" scale and "neg" sign fields.
func Decimal(r []any, err error) (decimal.Decimal, error) {
	m, err := Map(r, err)
	if err != nil {
		return decimal.Zero, err
	}
	return ToDecimal(m)
}

// ToDecimal converts a decimal struct representation into decimal.Decimal.
func ToDecimal(m map[string]any) (decimal.Decimal, error) {
	value, err := field(m, "value", toBigInt)
	if err != nil {
		return decimal.Zero, err
	}
	if value.Sign() < 0 {
		return decimal.Zero, errors.New("negative decimal mantissa")
	}
	dec, err := field(m, "dec", toUint64)
	if err != nil {
		return decimal.Zero, err
	}
	if dec > 255 {
		return decimal.Zero, fmt.Errorf("decimal scale %d is too big", dec)
	}
	neg, err := field(m, "neg", toBool)
	if err != nil {
		return decimal.Zero, err
	}
	d := decimal.NewFromBigInt(value, -int32(dec))
	if neg {
		d = d.Neg()
	}
	return d, nil
}

func field[T any](m map[string]any, name string, conv func(any) (T, error)) (T, error) {
	v, ok := m[name]
	if !ok {
		var zero T
		return zero, fmt.Errorf("no %q field", name)
	}
	res, err := conv(v)
	if err != nil {
		return res, fmt.Errorf("field %q: %w", name, err)
	}
	return res, nil
}

func toBool(v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%T is not a bool", v)
	}
	return b, nil
}

func toUint64(v any) (uint64, error) {
	switch x := v.(type) {
	case string:
		return strconv.ParseUint(x, 10, 64)
	case float64:
		if x < 0 || x != float64(uint64(x)) {
			return 0, fmt.Errorf("%v is not an unsigned integer", x)
		}
		return uint64(x), nil
	default:
		return 0, fmt.Errorf("%T is not an integer", v)
	}
}

func toBigInt(v any) (*big.Int, error) {
	switch x := v.(type) {
	case string:
		i, ok := new(big.Int).SetString(x, 10)
		if !ok {
			return nil, fmt.Errorf("%q is not an integer", x)
		}
		return i, nil
	case float64:
		u, err := toUint64(x)
		if err != nil {
			return nil, err
		}
		return new(big.Int).SetUint64(u), nil
	default:
		return nil, fmt.Errorf("%T is not an integer", v)
	}
}
