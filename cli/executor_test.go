package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aptos-labs/aptos-go-sdk"
	"github.com/aptos-labs/aptos-go-sdk/api"
	"github.com/nspcc-dev/sbfeed/cli/app"
	"github.com/nspcc-dev/sbfeed/cli/input"
	"github.com/nspcc-dev/sbfeed/cli/options"
	"github.com/nspcc-dev/sbfeed/pkg/wallet"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
	"golang.org/x/term"
)

const (
	testKey = "0x5a0fa5377c25b0187bffa20d577715c53067c6d929e261343e7915da849f266d"

	switchboardAddr = "0x34e2eead0aefbc3d0af13c0522be94b002658f4bef8e0740a21086d22236ad77"
)

var testAcc, _ = wallet.NewAccountFromHex(testKey)

// testNode is an in-memory node implementation commands are run against.
type testNode struct {
	network aptos.NetworkConfig
	timeout time.Duration
	// failModule is the module which calls fail during execution.
	failModule string
	// submitErr is returned for every transaction submission.
	submitErr error
	view      []any
	viewErr   error
	balance   uint64

	sent   []*aptos.EntryFunction
	txs    map[string]*api.UserTransaction
	funded map[aptos.AccountAddress]uint64
}

func newTestNode() *testNode {
	return &testNode{
		txs:    make(map[string]*api.UserTransaction),
		funded: make(map[aptos.AccountAddress]uint64),
	}
}

func (n *testNode) BuildSignAndSubmitTransaction(sender aptos.TransactionSigner, payload aptos.TransactionPayload, opts ...any) (*api.SubmitTransactionResponse, error) {
	if n.submitErr != nil {
		return nil, n.submitErr
	}
	ef, ok := payload.Payload.(*aptos.EntryFunction)
	if !ok {
		return nil, errors.New("unexpected payload")
	}
	n.sent = append(n.sent, ef)
	h := fmt.Sprintf("0x%064x", len(n.sent))
	tx := &api.UserTransaction{
		Hash:         h,
		Version:      uint64(1000 + len(n.sent)),
		Success:      true,
		VmStatus:     "Executed successfully",
		GasUsed:      1500,
		GasUnitPrice: 100,
	}
	if ef.Module.Name == n.failModule {
		tx.Success = false
		tx.VmStatus = "Move abort in " + ef.Module.Name + ": 0x60001"
	}
	n.txs[h] = tx
	return &api.SubmitTransactionResponse{Hash: h}, nil
}

func (n *testNode) WaitForTransaction(txnHash string, opts ...any) (*api.UserTransaction, error) {
	tx, ok := n.txs[txnHash]
	if !ok {
		return nil, errors.New("transaction not found")
	}
	return tx, nil
}

func (n *testNode) View(payload *aptos.ViewPayload, ledgerVersion ...uint64) ([]any, error) {
	return n.view, n.viewErr
}

func (n *testNode) Fund(addr aptos.AccountAddress, amount uint64) error {
	if n.network.FaucetUrl == "" {
		return errors.New("no faucet")
	}
	n.funded[addr] += amount
	return nil
}

func (n *testNode) AccountAPTBalance(addr aptos.AccountAddress, ledgerVersion ...uint64) (uint64, error) {
	return n.balance, nil
}

// modules returns module names of all sent transactions.
func (n *testNode) modules() []string {
	var res []string
	for _, ef := range n.sent {
		res = append(res, ef.Module.Name)
	}
	return res
}

// executor represents context for a test instance.
// It can be safely used in multiple tests, but not in parallel.
type executor struct {
	// CLI is a cli application to test.
	CLI *cli.App
	// Node is the node all commands talk to.
	Node *testNode
	// Out contains command output.
	Out *bytes.Buffer
	// Err contains command errors.
	Err *bytes.Buffer
	// In contains command input.
	In *bytes.Buffer
}

func newExecutor(t *testing.T) *executor {
	e := &executor{
		CLI:  app.New(),
		Node: newTestNode(),
		Out:  bytes.NewBuffer(nil),
		Err:  bytes.NewBuffer(nil),
		In:   bytes.NewBuffer(nil),
	}
	e.CLI.Writer = e.Out
	e.CLI.ErrWriter = e.Err

	orig := options.NewRPCClient
	options.NewRPCClient = func(network aptos.NetworkConfig, timeout time.Duration) (options.RPCClient, error) {
		e.Node.network = network
		e.Node.timeout = timeout
		return e.Node, nil
	}
	t.Cleanup(func() {
		options.NewRPCClient = orig
		e.Close(t)
	})
	return e
}

func (e *executor) Close(t *testing.T) {
	input.Terminal = nil
}

func (e *executor) getNextLine(t *testing.T) string {
	line, err := e.Out.ReadString('\n')
	require.NoError(t, err)
	return strings.TrimSuffix(line, "\n")
}

func (e *executor) checkNextLine(t *testing.T, expected string) {
	line := e.getNextLine(t)
	e.checkLine(t, line, expected)
}

func (e *executor) checkLine(t *testing.T, line, expected string) {
	require.Regexp(t, expected, line)
}

func (e *executor) checkEOF(t *testing.T) {
	_, err := e.Out.ReadString('\n')
	require.True(t, errors.Is(err, io.EOF))
}

func setExitFunc() <-chan int {
	ch := make(chan int, 1)
	cli.OsExiter = func(code int) {
		ch <- code
	}
	return ch
}

func checkExit(t *testing.T, ch <-chan int, code int) {
	select {
	case c := <-ch:
		require.Equal(t, code, c)
	default:
		if code != 0 {
			require.Fail(t, "no exit was called")
		}
	}
}

// RunWithError runs command and checks that is exits with error.
func (e *executor) RunWithError(t *testing.T, args ...string) {
	ch := setExitFunc()
	require.Error(t, e.run(args...))
	checkExit(t, ch, 1)
}

// RunWithErrorCheck runs command and checks that it exits with the error
// containing msg.
func (e *executor) RunWithErrorCheck(t *testing.T, msg string, args ...string) {
	ch := setExitFunc()
	err := e.run(args...)
	require.ErrorContains(t, err, msg)
	checkExit(t, ch, 1)
}

// RunWithUsageError runs command and checks that it fails on flag parsing,
// such errors don't lead to exit.
func (e *executor) RunWithUsageError(t *testing.T, args ...string) {
	ch := setExitFunc()
	require.Error(t, e.run(args...))
	checkExit(t, ch, 0)
}

// Run runs command and checks that there were no errors.
func (e *executor) Run(t *testing.T, args ...string) {
	ch := setExitFunc()
	require.NoError(t, e.run(args...))
	checkExit(t, ch, 0)
}

func (e *executor) run(args ...string) error {
	e.Out.Reset()
	e.Err.Reset()
	input.Terminal = term.NewTerminal(input.ReadWriter{
		Reader: e.In,
		Writer: io.Discard,
	}, "")
	err := e.CLI.Run(args)
	input.Terminal = nil
	e.In.Reset()
	return err
}
