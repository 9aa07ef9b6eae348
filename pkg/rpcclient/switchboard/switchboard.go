/*
Package switchboard allows to work with the Switchboard oracle program on Aptos
via RPC.

Safe methods are encapsulated into ContractReader structure while Contract
provides methods to perform state-changing calls: data feed (aggregator)
creation and update round requests. Aggregator is a handle for an existing
feed.
*/
package switchboard

import (
	"crypto/rand"
	"fmt"

	"github.com/aptos-labs/aptos-go-sdk"
	"github.com/nspcc-dev/sbfeed/pkg/rpcclient/unwrap"
	"github.com/shopspring/decimal"
)

// Invoker is used by ContractReader to call view functions.
type Invoker interface {
	View(payload *aptos.ViewPayload, ledgerVersion ...uint64) ([]any, error)
}

// Actor is used by Contract to create and send transactions.
type Actor interface {
	Invoker

	Sender() aptos.AccountAddress
	SendCall(module aptos.ModuleId, function string, typeArgs []aptos.TypeTag, args ...[]byte) (string, error)
}

const (
	createFeedModule = "create_feed_action"
	openRoundModule  = "aggregator_open_round_action"
	aggregatorModule = "aggregator"

	// All actions are modules with a single "run" entry function.
	actionFunction  = "run"
	latestValueView = "latest_value"
)

// ContractReader provides an interface to call read-only Switchboard
// functions.
type ContractReader struct {
	invoker Invoker
	program aptos.AccountAddress
}

// Contract represents the Switchboard program client that can be used to
// create feeds and to request updates. Both actions are paid by the sender
// of the Actor.
type Contract struct {
	ContractReader

	actor Actor
}

// Aggregator is a handle for a data feed created by the program.
type Aggregator struct {
	Address aptos.AccountAddress
	// CoinType is the coin the feed is paid with, it's a type argument
	// for the feed actions.
	CoinType string

	contract *Contract
}

// NewReader creates an instance of ContractReader that can be used to read
// data from the program deployed at the given address.
func NewReader(invoker Invoker, program aptos.AccountAddress) *ContractReader {
	return &ContractReader{invoker, program}
}

// New creates an instance of Contract to perform actions using
// the given Actor.
func New(actor Actor, program aptos.AccountAddress) *Contract {
	return &Contract{*NewReader(actor, program), actor}
}

// Program returns the address the program is deployed at.
func (c *ContractReader) Program() aptos.AccountAddress {
	return c.program
}

func (c *ContractReader) module(name string) aptos.ModuleId {
	return aptos.ModuleId{Address: c.program, Name: name}
}

// LatestValue returns the latest confirmed value of the feed.
func (c *ContractReader) LatestValue(aggregator aptos.AccountAddress) (decimal.Decimal, error) {
	var b argsBuilder
	b.address(aggregator)
	return unwrap.Decimal(c.invoker.View(&aptos.ViewPayload{
		Module:   c.module(aggregatorModule),
		Function: latestValueView,
		ArgTypes: []aptos.TypeTag{},
		Args:     b.args,
	}))
}

// CreateFeed creates and sends a transaction that creates a new data feed
// with the given jobs and pushes it to the crank. The feed is created in a
// resource account derived from the sender address and the seed (random one
// is used if not set in parameters). It returns the feed handle and the
// transaction hash, the hash is also returned (along with an error) if the
// transaction has failed.
func (c *Contract) CreateFeed(p FeedParams) (*Aggregator, string, error) {
	if err := p.check(); err != nil {
		return nil, "", err
	}
	coin, err := ParseStructTag(p.CoinType)
	if err != nil {
		return nil, "", err
	}
	var seed aptos.AccountAddress
	if p.Seed != nil {
		seed = *p.Seed
	} else if _, err = rand.Read(seed[:]); err != nil {
		return nil, "", fmt.Errorf("failed to generate seed: %w", err)
	}
	sender := c.actor.Sender()
	args, err := p.args(sender, seed)
	if err != nil {
		return nil, "", err
	}
	h, err := c.actor.SendCall(c.module(createFeedModule), actionFunction, []aptos.TypeTag{coin}, args...)
	if err != nil {
		return nil, h, err
	}
	return c.Aggregator(ResourceAccountAddress(sender, seed[:]), p.CoinType), h, nil
}

// Aggregator returns a handle for an existing feed paid with the given coin.
func (c *Contract) Aggregator(addr aptos.AccountAddress, coinType string) *Aggregator {
	return &Aggregator{
		Address:  addr,
		CoinType: coinType,
		contract: c,
	}
}

// OpenRound creates and sends a transaction that requests an update round
// for the feed. Jitter is added by oracles to the round timing. It returns
// the transaction hash, it's also returned (along with an error) if the
// transaction has failed.
func (a *Aggregator) OpenRound(jitter uint64) (string, error) {
	coin, err := ParseStructTag(a.CoinType)
	if err != nil {
		return "", err
	}
	var b argsBuilder
	b.address(a.Address)
	b.u64(jitter)
	if b.err != nil {
		return "", b.err
	}
	return a.contract.actor.SendCall(a.contract.module(openRoundModule), actionFunction, []aptos.TypeTag{coin}, b.args...)
}

// LatestValue returns the latest confirmed value of the feed.
func (a *Aggregator) LatestValue() (decimal.Decimal, error) {
	return a.contract.LatestValue(a.Address)
}
