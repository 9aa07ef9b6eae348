package config

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ApplicationConfiguration contains settings of the program itself.
type ApplicationConfiguration struct {
	LogLevel string `yaml:"LogLevel"`
	LogPath  string `yaml:"LogPath"`
	// FundAmount is requested from the faucet for generated accounts.
	FundAmount Amount `yaml:"FundAmount"`
	// OpenRound requests an update right after the feed is created.
	OpenRound bool   `yaml:"OpenRound"`
	Jitter    uint64 `yaml:"Jitter"`
}

// Validate implements the validation.Validatable interface.
func (a ApplicationConfiguration) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.LogLevel, validation.In("debug", "info", "warn", "error", "dpanic", "panic", "fatal")),
	)
}
