package bootstrap

import (
	"fmt"

	"github.com/aptos-labs/aptos-go-sdk"
	"github.com/nspcc-dev/sbfeed/pkg/config"
	"github.com/nspcc-dev/sbfeed/pkg/rpcclient/switchboard"
)

// FeedParams converts the feed configuration into the program parameters,
// jobs are encoded into their base64 form.
func FeedParams(sb config.SwitchboardConfiguration, feed config.FeedConfiguration) (switchboard.FeedParams, error) {
	var (
		p   switchboard.FeedParams
		err error
	)
	if p.Queue, err = sb.QueueAddress(); err != nil {
		return p, fmt.Errorf("queue: %w", err)
	}
	if p.Crank, err = sb.CrankAddress(); err != nil {
		return p, fmt.Errorf("crank: %w", err)
	}
	if p.Authority, err = optionalAddress(feed.Authority); err != nil {
		return p, fmt.Errorf("authority: %w", err)
	}
	if p.RewardEscrow, err = optionalAddress(feed.RewardEscrow); err != nil {
		return p, fmt.Errorf("reward escrow: %w", err)
	}
	if feed.Seed != "" {
		seed, err := config.ParseAddress(feed.Seed)
		if err != nil {
			return p, fmt.Errorf("seed: %w", err)
		}
		p.Seed = &seed
	}
	for _, s := range feed.ReadWhitelist {
		a, err := config.ParseAddress(s)
		if err != nil {
			return p, fmt.Errorf("read whitelist: %w", err)
		}
		p.ReadWhitelist = append(p.ReadWhitelist, a)
	}
	if p.VarianceThreshold, err = feed.Variance(); err != nil {
		return p, fmt.Errorf("variance threshold: %w", err)
	}
	for i, j := range feed.Jobs {
		data, err := j.Base64()
		if err != nil {
			return p, fmt.Errorf("job #%d (%s): %w", i, j.Name, err)
		}
		p.Jobs = append(p.Jobs, switchboard.JobInit{
			Name:     j.Name,
			Metadata: j.Metadata,
			Data:     data,
			Weight:   j.JobWeight(),
		})
	}
	p.Name = feed.Name
	p.Metadata = feed.Metadata
	p.BatchSize = feed.BatchSize
	p.MinOracleResults = feed.MinOracleResults
	p.MinJobResults = feed.MinJobResults
	p.MinUpdateDelaySeconds = feed.MinUpdateDelaySeconds
	p.StartAfter = feed.StartAfter
	p.ForceReportPeriod = feed.ForceReportPeriod
	p.Expiration = feed.Expiration
	p.DisableCrank = feed.DisableCrank
	p.HistorySize = feed.HistorySize
	p.ReadCharge = feed.ReadCharge
	p.LimitReadsToWhitelist = feed.LimitReadsToWhitelist
	p.InitialLoadAmount = uint64(feed.InitialLoadAmount)
	p.CoinType = feed.CoinType
	return p, nil
}

func optionalAddress(s string) (aptos.AccountAddress, error) {
	if s == "" {
		return aptos.AccountAddress{}, nil
	}
	return config.ParseAddress(s)
}
