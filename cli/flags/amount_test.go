package flags

import (
	"flag"
	"io"
	"testing"

	"github.com/nspcc-dev/sbfeed/pkg/config"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
)

func TestAmount_Set(t *testing.T) {
	a := Amount{}
	require.Error(t, a.Set("lots"))
	require.Error(t, a.Set("-1 APT"))
	require.False(t, a.IsSet)

	require.NoError(t, a.Set("0.5 APT"))
	require.True(t, a.IsSet)
	require.Equal(t, config.Amount(50_000_000), a.Value)
	require.Equal(t, "0.5 APT", a.String())

	require.NoError(t, a.Set("1000"))
	require.Equal(t, config.Amount(1000), a.Value)
}

func TestAmountFlag_String(t *testing.T) {
	flag := AmountFlag{
		Name:  "amount",
		Usage: "Amount to pass",
	}

	require.Equal(t, "--amount value\tAmount to pass", flag.String())
	require.Equal(t, "amount", flag.GetName())
}

func TestAmountFromContext(t *testing.T) {
	f := AmountFlag{Name: "amount"}
	set := flag.NewFlagSet("flagSet", flag.ContinueOnError)
	set.SetOutput(io.Discard)
	f.Apply(set)

	ctx := cli.NewContext(cli.NewApp(), set, nil)
	require.Equal(t, config.Amount(7), AmountFromContext(ctx, "amount", 7))

	require.NoError(t, set.Parse([]string{"--amount", "2 APT"}))
	require.Equal(t, config.Amount(200_000_000), AmountFromContext(ctx, "amount", 7))
}
