package actor

import (
	"errors"
	"testing"
	"time"

	"github.com/aptos-labs/aptos-go-sdk"
	"github.com/aptos-labs/aptos-go-sdk/api"
	"github.com/stretchr/testify/require"
)

type RPCClient struct {
	err     error
	hash    string
	waitErr error
	tx      *api.UserTransaction
	view    []any

	sent     []aptos.TransactionPayload
	sendOpts []any
	waited   []string
	waitOpts []any
}

func (r *RPCClient) BuildSignAndSubmitTransaction(sender aptos.TransactionSigner, payload aptos.TransactionPayload, options ...any) (*api.SubmitTransactionResponse, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.sent = append(r.sent, payload)
	r.sendOpts = options
	return &api.SubmitTransactionResponse{Hash: r.hash}, nil
}

func (r *RPCClient) WaitForTransaction(txnHash string, options ...any) (*api.UserTransaction, error) {
	r.waited = append(r.waited, txnHash)
	r.waitOpts = options
	return r.tx, r.waitErr
}

func (r *RPCClient) View(payload *aptos.ViewPayload, ledgerVersion ...uint64) ([]any, error) {
	return r.view, r.err
}

func testRPCAndAccount(t *testing.T) (*RPCClient, *aptos.Account) {
	client := &RPCClient{
		hash: "0x01",
		tx:   &api.UserTransaction{Hash: "0x01", Success: true, VmStatus: "Executed successfully"},
	}
	acc, err := aptos.NewEd25519Account()
	require.NoError(t, err)
	return client, acc
}

func TestNew(t *testing.T) {
	client, acc := testRPCAndAccount(t)

	_, err := New(nil, acc)
	require.Error(t, err)

	_, err = New(client, nil)
	require.Error(t, err)

	a, err := New(client, acc)
	require.NoError(t, err)
	require.Equal(t, acc.Address, a.Sender())
}

func TestSendCall(t *testing.T) {
	client, acc := testRPCAndAccount(t)
	a, err := New(client, acc)
	require.NoError(t, err)

	module := aptos.ModuleId{Address: aptos.AccountOne, Name: "coin"}
	h, err := a.SendCall(module, "transfer", nil, []byte{1}, []byte{2, 3})
	require.NoError(t, err)
	require.Equal(t, "0x01", h)
	require.Equal(t, []string{"0x01"}, client.waited)
	require.Len(t, client.sent, 1)
	require.Empty(t, client.sendOpts)
	require.Empty(t, client.waitOpts)

	ef, ok := client.sent[0].Payload.(*aptos.EntryFunction)
	require.True(t, ok)
	require.Equal(t, module, ef.Module)
	require.Equal(t, "transfer", ef.Function)
	require.NotNil(t, ef.ArgTypes)
	require.Empty(t, ef.ArgTypes)
	require.Equal(t, [][]byte{{1}, {2, 3}}, ef.Args)

	t.Run("submit error", func(t *testing.T) {
		client.err = errors.New("connection refused")
		defer func() { client.err = nil }()

		client.waited = nil
		h, err := a.SendCall(module, "transfer", nil)
		require.ErrorIs(t, err, client.err)
		require.Empty(t, h)
		require.Empty(t, client.waited)
	})
	t.Run("wait error", func(t *testing.T) {
		client.waitErr = errors.New("timeout")
		defer func() { client.waitErr = nil }()

		h, err := a.SendCall(module, "transfer", nil)
		require.ErrorIs(t, err, client.waitErr)
		require.Equal(t, "0x01", h)
	})
	t.Run("execution failed", func(t *testing.T) {
		client.tx = &api.UserTransaction{Hash: "0x01", Success: false, VmStatus: "Move abort in 0x1::coin: EINSUFFICIENT_BALANCE"}

		h, err := a.SendCall(module, "transfer", nil)
		require.ErrorIs(t, err, ErrExecFailed)
		require.ErrorContains(t, err, "EINSUFFICIENT_BALANCE")
		require.Equal(t, "0x01", h)
	})
}

func TestWaitPassesError(t *testing.T) {
	client, acc := testRPCAndAccount(t)
	a, err := New(client, acc)
	require.NoError(t, err)

	sendErr := errors.New("bad")
	_, err = a.Wait("", sendErr)
	require.ErrorIs(t, err, sendErr)
	require.Empty(t, client.waited)
}

func TestNewTuned(t *testing.T) {
	client, acc := testRPCAndAccount(t)
	a, err := NewTuned(client, acc, Options{
		MaxGasAmount: 20000,
		GasUnitPrice: 150,
		PollTimeout:  time.Minute,
	})
	require.NoError(t, err)

	_, err = a.SendCall(aptos.ModuleId{Address: aptos.AccountOne, Name: "coin"}, "transfer", nil)
	require.NoError(t, err)
	require.ElementsMatch(t, []any{aptos.MaxGasAmount(20000), aptos.GasUnitPrice(150)}, client.sendOpts)
	require.Equal(t, []any{aptos.PollTimeout(time.Minute)}, client.waitOpts)
}

func TestView(t *testing.T) {
	client, acc := testRPCAndAccount(t)
	a, err := New(client, acc)
	require.NoError(t, err)

	client.view = []any{"42"}
	res, err := a.View(&aptos.ViewPayload{
		Module:   aptos.ModuleId{Address: aptos.AccountOne, Name: "coin"},
		Function: "balance",
	})
	require.NoError(t, err)
	require.Equal(t, []any{"42"}, res)
}
