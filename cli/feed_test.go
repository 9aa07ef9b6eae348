package main

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aptos-labs/aptos-go-sdk"
	"github.com/nspcc-dev/sbfeed/pkg/rpcclient/switchboard"
	"github.com/nspcc-dev/sbfeed/pkg/wallet"
	"github.com/stretchr/testify/require"
)

const (
	createFeedModule = "create_feed_action"
	openRoundModule  = "aggregator_open_round_action"
)

const testSwitchboardSection = `Switchboard:
  Address: "0xb91d3fef0eeb4e685dc85e739c7d3e2968784945be4424e92e2f86e2418bf271"
  Queue: "0xc9c3d5c1e8a8b1e0c6d3e6f0e3a8b1e0c6d3e6f0e3a8b1e0c6d3e6f0e3a8b1e0"
  Crank: "0xc9c3d5c1e8a8b1e0c6d3e6f0e3a8b1e0c6d3e6f0e3a8b1e0c6d3e6f0e3a8b1e0"
`

func txHash(n int) string {
	return fmt.Sprintf("0x%064x", n)
}

func TestFeedCreate(t *testing.T) {
	e := newExecutor(t)
	e.Run(t, "sbfeed", "feed", "create", "-k", testKey)

	require.Equal(t, []string{createFeedModule, openRoundModule}, e.Node.modules())
	require.Equal(t, "testnet", e.Node.network.Name)
	require.Equal(t, 30*time.Second, e.Node.timeout)
	require.Empty(t, e.Node.funded)

	create := e.Node.sent[0]
	require.Equal(t, switchboardAddr, create.Module.Address.String())
	require.Len(t, create.Args, 26)
	require.Equal(t, testAcc.Address[:], create.Args[0])
	seed := create.Args[24]
	aggr := switchboard.ResourceAccountAddress(testAcc.Address, seed)

	e.checkNextLine(t, "^Account: "+testAcc.Address.String()+"$")
	e.checkNextLine(t, "^Aggregator: "+aggr.String()+"$")
	e.checkNextLine(t, "^Transaction: "+txHash(1)+"$")
	e.checkNextLine(t, "^Round opened: "+txHash(2)+"$")
	e.checkEOF(t)

	open := e.Node.sent[1]
	require.Equal(t, aggr[:], open.Args[0])
	require.Equal(t, binary.LittleEndian.AppendUint64(nil, 1), open.Args[1])
}

func TestFeedCreateKeySources(t *testing.T) {
	t.Run("prompt", func(t *testing.T) {
		e := newExecutor(t)
		e.In.WriteString(testKey + "\r")
		e.Run(t, "sbfeed", "feed", "create")
		e.checkNextLine(t, "^Account: "+testAcc.Address.String()+"$")
	})

	t.Run("environment", func(t *testing.T) {
		e := newExecutor(t)
		t.Setenv("SBFEED_PRIVATE_KEY", testKey)
		e.Run(t, "sbfeed", "feed", "create")
		e.checkNextLine(t, "^Account: "+testAcc.Address.String()+"$")
	})

	t.Run("key file", func(t *testing.T) {
		e := newExecutor(t)
		path := filepath.Join(t.TempDir(), "key.yml")
		require.NoError(t, wallet.NewKeyFile(testAcc).Save(path))
		e.Run(t, "sbfeed", "feed", "create", "--key-file", path, "--fund")
		e.checkNextLine(t, "^Account: "+testAcc.Address.String()+"$")
		require.Equal(t, uint64(100_000_000), e.Node.funded[testAcc.Address])
	})

	t.Run("generate", func(t *testing.T) {
		e := newExecutor(t)
		path := filepath.Join(t.TempDir(), "generated.yml")
		e.Run(t, "sbfeed", "feed", "create", "--generate", "--out", path)

		kf, err := wallet.ReadKeyFile(path)
		require.NoError(t, err)
		acc, err := kf.Account()
		require.NoError(t, err)
		e.checkNextLine(t, "^Account: "+acc.Address.String()+"$")
		require.Equal(t, map[aptos.AccountAddress]uint64{acc.Address: 100_000_000}, e.Node.funded)

		fi, err := os.Stat(path)
		require.NoError(t, err)
		require.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
	})

	t.Run("conflicts", func(t *testing.T) {
		e := newExecutor(t)
		e.RunWithError(t, "sbfeed", "feed", "create", "--generate", "-k", testKey)
		e.RunWithError(t, "sbfeed", "feed", "create", "-k", testKey, "--key-file", "key.yml")
		e.RunWithError(t, "sbfeed", "feed", "create", "-k", testKey, "--out", "key.yml")
		e.RunWithError(t, "sbfeed", "feed", "create", "-k", "0xbad")
		e.RunWithError(t, "sbfeed", "feed", "create", "-k", testKey, "--testnet", "--devnet")
		e.RunWithError(t, "sbfeed", "feed", "create", "-k", testKey, "extra")
		require.Empty(t, e.Node.sent)
	})

	t.Run("no faucet", func(t *testing.T) {
		e := newExecutor(t)
		cfgPath := filepath.Join(t.TempDir(), "mainnet.yml")
		require.NoError(t, os.WriteFile(cfgPath, []byte("Network:\n  Name: mainnet\n"+testSwitchboardSection), 0o644))
		e.RunWithError(t, "sbfeed", "feed", "create", "--generate", "--config-file", cfgPath)
		require.Empty(t, e.Node.sent)
	})

	t.Run("testnet switchboard on other network", func(t *testing.T) {
		for _, net := range []string{"--mainnet", "--devnet", "--localnet"} {
			e := newExecutor(t)
			e.RunWithErrorCheck(t, "Switchboard addresses are only valid for testnet", "sbfeed", "feed", "create", "-k", testKey, net)
			e.RunWithErrorCheck(t, "Switchboard addresses are only valid for testnet", "sbfeed", "feed", "open-round", "-k", testKey, "--aggregator", "0xa6", net)
			e.RunWithErrorCheck(t, "Switchboard addresses are only valid for testnet", "sbfeed", "feed", "show", "--aggregator", "0xa6", net)
			require.Empty(t, e.Node.sent)
		}
	})
}

func TestFeedCreateFailures(t *testing.T) {
	t.Run("create rejected", func(t *testing.T) {
		e := newExecutor(t)
		e.Node.failModule = createFeedModule
		e.RunWithErrorCheck(t, "failed to create feed: transaction execution failed: Move abort in "+createFeedModule, "sbfeed", "feed", "create", "-k", testKey)

		require.Equal(t, []string{createFeedModule}, e.Node.modules())
		e.checkNextLine(t, "^Account: ")
		e.checkNextLine(t, "^Transaction: "+txHash(1)+"$")
		e.checkEOF(t)
	})

	t.Run("open round rejected", func(t *testing.T) {
		e := newExecutor(t)
		e.Node.failModule = openRoundModule
		e.RunWithErrorCheck(t, "failed to open round", "sbfeed", "feed", "create", "-k", testKey)

		require.Equal(t, []string{createFeedModule, openRoundModule}, e.Node.modules())
		e.checkNextLine(t, "^Account: ")
		e.checkNextLine(t, "^Aggregator: 0x[0-9a-f]{64}$")
		e.checkNextLine(t, "^Transaction: "+txHash(1)+"$")
		e.checkEOF(t)
	})
}

func TestFeedCreateConfig(t *testing.T) {
	e := newExecutor(t)
	cfgPath := filepath.Join(t.TempDir(), "feed.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`Network:
  Name: devnet
`+testSwitchboardSection+`Feed:
  Name: ETH/USD
  BatchSize: 2
  Jobs:
    - Name: first
      Tasks:
        - HTTP:
            URL: https://example.com/eth
        - JSONParse:
            Path: $.price
    - Name: second
      Weight: 2
      Tasks:
        - HTTP:
            URL: https://example.org/eth
        - JSONParse:
            Path: $.data.price
Application:
  OpenRound: false
`), 0o644))

	e.Run(t, "sbfeed", "feed", "create", "-k", testKey, "--config-file", cfgPath)
	require.Equal(t, []string{createFeedModule}, e.Node.modules())
	require.Equal(t, "devnet", e.Node.network.Name)

	args := e.Node.sent[0].Args
	require.Equal(t, append([]byte{7}, "ETH/USD"...), args[1])
	require.Equal(t, binary.LittleEndian.AppendUint64(nil, 2), args[4])
	require.Equal(t, []byte{2, 1, 2}, args[23])

	e.checkNextLine(t, "^Account: ")
	e.checkNextLine(t, "^Aggregator: ")
	e.checkNextLine(t, "^Transaction: ")
	e.checkEOF(t)

	t.Run("no open round flag", func(t *testing.T) {
		e := newExecutor(t)
		e.Run(t, "sbfeed", "feed", "create", "-k", testKey, "--no-open-round")
		require.Equal(t, []string{createFeedModule}, e.Node.modules())
	})

	t.Run("invalid config", func(t *testing.T) {
		e := newExecutor(t)
		bad := filepath.Join(t.TempDir(), "bad.yml")
		require.NoError(t, os.WriteFile(bad, []byte("Feed:\n  Jobs: []\n"), 0o644))
		e.RunWithError(t, "sbfeed", "feed", "create", "-k", testKey, "--config-file", bad)
		require.Empty(t, e.Node.sent)
	})
}

func TestFeedOpenRound(t *testing.T) {
	e := newExecutor(t)
	e.RunWithError(t, "sbfeed", "feed", "open-round", "-k", testKey)
	e.RunWithUsageError(t, "sbfeed", "feed", "open-round", "-k", testKey, "--aggregator", "0xzz")

	e.Run(t, "sbfeed", "feed", "open-round", "-k", testKey, "--aggregator", "0xa6", "--jitter", "7")
	e.checkNextLine(t, "^Round opened: "+txHash(1)+"$")
	e.checkEOF(t)

	require.Equal(t, []string{openRoundModule}, e.Node.modules())
	var aggr aptos.AccountAddress
	aggr[31] = 0xa6
	require.Equal(t, [][]byte{aggr[:], binary.LittleEndian.AppendUint64(nil, 7)}, e.Node.sent[0].Args)

	e.Node.failModule = openRoundModule
	e.RunWithError(t, "sbfeed", "feed", "open-round", "-k", testKey, "--aggregator", "0xa6")
	e.checkNextLine(t, "^Transaction: "+txHash(2)+"$")
}

func TestFeedShow(t *testing.T) {
	e := newExecutor(t)
	e.Node.view = []any{map[string]any{"value": "123450", "dec": float64(3), "neg": false}}

	e.Run(t, "sbfeed", "feed", "show", "--aggregator", "0xa6")
	e.checkNextLine(t, "^Aggregator: 0x0+a6$")
	e.checkNextLine(t, "^Value: 123.45$")
	e.checkEOF(t)

	e.Node.view = []any{"garbage"}
	e.RunWithError(t, "sbfeed", "feed", "show", "--aggregator", "0xa6")

	e.RunWithError(t, "sbfeed", "feed", "show")
}
