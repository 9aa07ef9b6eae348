/*
Package rpcclient implements a client for the Aptos fullnode REST API and the
network faucet.

It's a thin layer over the Aptos Go SDK client that binds it to a particular
network configuration and applies request timeouts. Transaction creation and
awaiting is implemented by the [actor] package, contract-specific APIs are
provided by subpackages like [switchboard].
*/
package rpcclient

import (
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/aptos-labs/aptos-go-sdk"
)

const (
	defaultDialTimeout    = 4 * time.Second
	defaultRequestTimeout = 30 * time.Second
)

var (
	// ErrNoEndpoint is returned from New when network configuration has no
	// fullnode URL.
	ErrNoEndpoint = errors.New("no fullnode endpoint")
	// ErrNoFaucet is returned from Fund when the network has no faucet.
	ErrNoFaucet = errors.New("no faucet configured for the network")
)

// Client is an Aptos node client bound to a network. It embeds the SDK client,
// so every SDK method is available on it. Client is thread-safe.
type Client struct {
	*aptos.Client

	network aptos.NetworkConfig
}

// Options defines options for the RPC client. All values are optional.
// If any duration is not specified, a default one is used (4 seconds for
// dialing and 30 seconds for the whole request).
type Options struct {
	DialTimeout    time.Duration
	RequestTimeout time.Duration
	// Limit total number of connections per host. No limit by default.
	MaxConnsPerHost int
}

// New returns a new Client ready to use for the given network.
func New(network aptos.NetworkConfig, opts Options) (*Client, error) {
	if network.NodeUrl == "" {
		return nil, ErrNoEndpoint
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = defaultDialTimeout
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultRequestTimeout
	}
	httpClient := &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout: opts.DialTimeout,
			}).DialContext,
			MaxConnsPerHost: opts.MaxConnsPerHost,
		},
		Timeout: opts.RequestTimeout,
	}
	cli, err := aptos.NewClient(network, httpClient)
	if err != nil {
		return nil, err
	}
	return &Client{
		Client:  cli,
		network: network,
	}, nil
}

// Network returns the network configuration the client is bound to.
func (c *Client) Network() aptos.NetworkConfig {
	return c.network
}

// Fund requests the given amount of octas for the address from the network
// faucet and waits for the funding transaction to be applied.
func (c *Client) Fund(addr aptos.AccountAddress, amount uint64) error {
	if c.network.FaucetUrl == "" {
		return ErrNoFaucet
	}
	return c.Client.Fund(addr, amount)
}
