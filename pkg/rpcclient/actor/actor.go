/*
Package actor provides a way to change chain state via RPC client.

This layer builds on top of the basic RPC client, it simplifies creating,
signing, sending and awaiting entry function transactions (since that's the
only way chain state is changed). It's generic enough to be used for any Move
module that you may want to call and module-specific functions can build on
top of it.
*/
package actor

import (
	"errors"
	"fmt"
	"time"

	"github.com/aptos-labs/aptos-go-sdk"
	"github.com/aptos-labs/aptos-go-sdk/api"
)

// ErrExecFailed is returned when transaction was accepted to the chain, but
// its execution failed. The error is wrapped with the VM status.
var ErrExecFailed = errors.New("transaction execution failed")

// RPCActor is an interface required from the RPC client to successfully
// create, send and await transactions.
type RPCActor interface {
	BuildSignAndSubmitTransaction(sender aptos.TransactionSigner, payload aptos.TransactionPayload, options ...any) (*api.SubmitTransactionResponse, error)
	WaitForTransaction(txnHash string, options ...any) (*api.UserTransaction, error)
	View(payload *aptos.ViewPayload, ledgerVersion ...uint64) ([]any, error)
}

// Options are used to create Actor with non-standard transaction parameters.
// Zero values mean network defaults.
type Options struct {
	MaxGasAmount uint64
	GasUnitPrice uint64
	// PollTimeout limits transaction awaiting.
	PollTimeout time.Duration
}

// Actor keeps a connection to the RPC endpoint and allows to perform
// state-changing actions on behalf of a single signer. Every transaction
// is an entry function call, *Call methods accept a module, a function name,
// type arguments and BCS-encoded arguments. "Make" prefix is used for methods
// that only create payloads, while "Send" prefix is used by methods that
// transmit transactions to the RPC server.
type Actor struct {
	client RPCActor
	signer aptos.TransactionSigner
	opts   Options
}

// New creates an Actor instance using the specified RPC interface and the
// signer. It uses default Options.
func New(ra RPCActor, signer aptos.TransactionSigner) (*Actor, error) {
	return NewTuned(ra, signer, Options{})
}

// NewTuned is the same as New, but allows to override default Options.
func NewTuned(ra RPCActor, signer aptos.TransactionSigner, opts Options) (*Actor, error) {
	if ra == nil {
		return nil, errors.New("nil RPC client")
	}
	if signer == nil {
		return nil, errors.New("signer (sender) is required")
	}
	return &Actor{
		client: ra,
		signer: signer,
		opts:   opts,
	}, nil
}

// Sender returns the address of the transaction sender.
func (a *Actor) Sender() aptos.AccountAddress {
	return a.signer.AccountAddress()
}

// View performs a read-only call of a view function, it doesn't need a
// signature.
func (a *Actor) View(payload *aptos.ViewPayload, ledgerVersion ...uint64) ([]any, error) {
	return a.client.View(payload, ledgerVersion...)
}

// MakeCall creates an entry function payload.
func (a *Actor) MakeCall(module aptos.ModuleId, function string, typeArgs []aptos.TypeTag, args ...[]byte) aptos.TransactionPayload {
	if typeArgs == nil {
		typeArgs = []aptos.TypeTag{}
	}
	if args == nil {
		args = [][]byte{}
	}
	return aptos.TransactionPayload{
		Payload: &aptos.EntryFunction{
			Module:   module,
			Function: function,
			ArgTypes: typeArgs,
			Args:     args,
		},
	}
}

// Send signs the payload and sends the resulting transaction to the network.
// It returns the transaction hash.
func (a *Actor) Send(payload aptos.TransactionPayload) (string, error) {
	var opts []any
	if a.opts.MaxGasAmount != 0 {
		opts = append(opts, aptos.MaxGasAmount(a.opts.MaxGasAmount))
	}
	if a.opts.GasUnitPrice != 0 {
		opts = append(opts, aptos.GasUnitPrice(a.opts.GasUnitPrice))
	}
	resp, err := a.client.BuildSignAndSubmitTransaction(a.signer, payload, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to submit transaction: %w", err)
	}
	return resp.Hash, nil
}

// Wait waits until the transaction is committed. It accepts the hash and the
// error so that it can be used as a wrapper for Send. A transaction that was
// committed, but failed, results in ErrExecFailed.
func (a *Actor) Wait(hash string, err error) (*api.UserTransaction, error) {
	if err != nil {
		return nil, err
	}
	var opts []any
	if a.opts.PollTimeout > 0 {
		opts = append(opts, aptos.PollTimeout(a.opts.PollTimeout))
	}
	tx, err := a.client.WaitForTransaction(hash, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to await transaction %s: %w", hash, err)
	}
	if !tx.Success {
		return tx, fmt.Errorf("%w: %s (transaction %s)", ErrExecFailed, tx.VmStatus, hash)
	}
	return tx, nil
}

// SendCall creates, signs and sends an entry function call, then waits for
// the result. The hash is returned even if execution failed.
func (a *Actor) SendCall(module aptos.ModuleId, function string, typeArgs []aptos.TypeTag, args ...[]byte) (string, error) {
	hash, err := a.Send(a.MakeCall(module, function, typeArgs, args...))
	if err != nil {
		return "", err
	}
	_, err = a.Wait(hash, nil)
	return hash, err
}
