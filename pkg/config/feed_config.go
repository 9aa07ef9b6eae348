package config

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/nspcc-dev/sbfeed/pkg/job"
	"github.com/nspcc-dev/sbfeed/pkg/rpcclient/switchboard"
	"github.com/shopspring/decimal"
)

const (
	// DefaultCoinType is the coin used to pay for oracle updates.
	DefaultCoinType = "0x1::aptos_coin::AptosCoin"

	defaultJobURL  = "https://data-server-aptos.onrender.com/odds/1268085"
	defaultJobPath = "$.home"
)

var isCoinType = validation.By(func(value any) error {
	s, _ := value.(string)
	_, err := switchboard.ParseStructTag(s)
	return err
})

// FeedConfiguration describes the data feed (aggregator) to create.
type FeedConfiguration struct {
	// Authority can reconfigure the feed, the account creating it is used
	// if not set.
	Authority             string `yaml:"Authority"`
	Name                  string `yaml:"Name"`
	Metadata              string `yaml:"Metadata"`
	BatchSize             uint64 `yaml:"BatchSize"`
	MinJobResults         uint64 `yaml:"MinJobResults"`
	MinOracleResults      uint64 `yaml:"MinOracleResults"`
	MinUpdateDelaySeconds uint64 `yaml:"MinUpdateDelaySeconds"`
	StartAfter            uint64 `yaml:"StartAfter"`
	// VarianceThreshold is a decimal number, like "0.5".
	VarianceThreshold     string             `yaml:"VarianceThreshold"`
	ForceReportPeriod     uint64             `yaml:"ForceReportPeriod"`
	Expiration            uint64             `yaml:"Expiration"`
	DisableCrank          bool               `yaml:"DisableCrank"`
	HistorySize           uint64             `yaml:"HistorySize"`
	ReadCharge            uint64             `yaml:"ReadCharge"`
	RewardEscrow          string             `yaml:"RewardEscrow"`
	ReadWhitelist         []string           `yaml:"ReadWhitelist"`
	LimitReadsToWhitelist bool               `yaml:"LimitReadsToWhitelist"`
	CoinType              string             `yaml:"CoinType"`
	InitialLoadAmount     Amount             `yaml:"InitialLoadAmount"`
	Seed                  string             `yaml:"Seed"`
	Jobs                  []JobConfiguration `yaml:"Jobs"`
}

// JobConfiguration is a job of the feed along with its name and weight.
type JobConfiguration struct {
	Name          string `yaml:"Name"`
	Metadata      string `yaml:"Metadata"`
	Weight        uint8  `yaml:"Weight"`
	job.OracleJob `yaml:",inline"`
}

func defaultJob() job.OracleJob {
	return *job.New(defaultJobURL, defaultJobPath)
}

// Validate implements the validation.Validatable interface.
func (f FeedConfiguration) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Authority, isAddress),
		validation.Field(&f.BatchSize, validation.Required),
		validation.Field(&f.MinJobResults, validation.Required),
		validation.Field(&f.MinOracleResults, validation.Required),
		validation.Field(&f.VarianceThreshold, validation.By(func(any) error {
			_, err := f.Variance()
			return err
		})),
		validation.Field(&f.RewardEscrow, isAddress),
		validation.Field(&f.ReadWhitelist, validation.Each(isAddress)),
		validation.Field(&f.CoinType, validation.Required, isCoinType),
		validation.Field(&f.InitialLoadAmount, validation.Required),
		validation.Field(&f.Seed, isAddress),
		validation.Field(&f.Jobs, validation.Required, validation.Length(1, switchboard.MaxJobs)),
	)
}

// Variance returns the parsed variance threshold, empty string is zero.
func (f FeedConfiguration) Variance() (decimal.Decimal, error) {
	if f.VarianceThreshold == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(f.VarianceThreshold)
	if err != nil {
		return decimal.Zero, fmt.Errorf("bad decimal: %w", err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative threshold %s", d)
	}
	return d, nil
}

// Validate implements the validation.Validatable interface.
func (j JobConfiguration) Validate() error {
	return j.OracleJob.Validate()
}

// JobWeight returns the job weight, unset weight is 1.
func (j JobConfiguration) JobWeight() uint8 {
	if j.Weight == 0 {
		return 1
	}
	return j.Weight
}
