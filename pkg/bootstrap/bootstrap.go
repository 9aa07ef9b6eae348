/*
Package bootstrap implements data feed bootstrapping: it funds the account if
needed, creates a Switchboard data feed with the configured jobs and requests
the first update round for it.
*/
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/aptos-labs/aptos-go-sdk"
	"github.com/nspcc-dev/sbfeed/pkg/config"
	"github.com/nspcc-dev/sbfeed/pkg/rpcclient/switchboard"
	"go.uber.org/zap"
)

// Funder requests coins for an account, it's usually a network faucet.
type Funder interface {
	Fund(addr aptos.AccountAddress, amount uint64) error
}

// Config is a bootstrap configuration.
type Config struct {
	Log *zap.Logger
	// Contract is bound to the actor of Account.
	Contract *switchboard.Contract
	Account  aptos.AccountAddress
	// Funder is used to fund Account with FundAmount before creating the
	// feed, no funding is done if it's nil.
	Funder     Funder
	FundAmount uint64

	Switchboard config.SwitchboardConfiguration
	Feed        config.FeedConfiguration
	// OpenRound requests an update after the feed is created.
	OpenRound bool
	Jitter    uint64
}

// Result contains the bootstrap outcome. Fields are filled in as steps
// complete, so a partial result is available on failure.
type Result struct {
	Account     aptos.AccountAddress
	Aggregator  aptos.AccountAddress
	CreateTx    string
	OpenRoundTx string
}

// Run performs the bootstrap sequence. Every step is awaited before the next
// one starts, the first failure stops it (there are no retries). The context
// is checked between steps.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	if cfg.Contract == nil {
		return nil, errors.New("no contract")
	}
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	res := &Result{Account: cfg.Account}

	if cfg.Funder != nil {
		log.Info("funding account",
			zap.String("account", res.Account.String()),
			zap.Stringer("amount", config.Amount(cfg.FundAmount)))
		if err := cfg.Funder.Fund(res.Account, cfg.FundAmount); err != nil {
			return res, fmt.Errorf("failed to fund account: %w", err)
		}
	}
	log.Info("account ready", zap.String("account", res.Account.String()))

	params, err := FeedParams(cfg.Switchboard, cfg.Feed)
	if err != nil {
		return res, fmt.Errorf("failed to prepare feed: %w", err)
	}
	for _, j := range params.Jobs {
		log.Debug("job encoded", zap.String("name", j.Name), zap.String("data", j.Data))
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	aggr, h, err := cfg.Contract.CreateFeed(params)
	res.CreateTx = h
	if err != nil {
		return res, fmt.Errorf("failed to create feed: %w", err)
	}
	res.Aggregator = aggr.Address
	log.Info("feed created",
		zap.String("aggregator", res.Aggregator.String()),
		zap.String("tx", res.CreateTx))

	if !cfg.OpenRound {
		return res, nil
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	h, err = aggr.OpenRound(cfg.Jitter)
	res.OpenRoundTx = h
	if err != nil {
		return res, fmt.Errorf("failed to open round: %w", err)
	}
	log.Info("round opened",
		zap.String("aggregator", res.Aggregator.String()),
		zap.String("tx", res.OpenRoundTx))
	return res, nil
}
