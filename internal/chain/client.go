// Package chain implements core.Client against a Cosmos LCD (REST) endpoint.
// Queries use the wasm smart query route; executions build, sign and
// broadcast a MsgExecuteContract transaction.
package chain

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cosmos/cosmos-sdk/client"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/tidwall/gjson"

	"clicker/internal/core"
	"clicker/internal/lcdclient"
)

const (
	// DefaultGasAdjustment scales simulated gas before it is used as the limit.
	DefaultGasAdjustment = 1.4
	// DefaultPollInterval is the delay between inclusion checks after a broadcast.
	DefaultPollInterval = time.Second
)

// Resolver maps a contract name or address to a bech32 contract address.
type Resolver interface {
	Resolve(contract string) (string, error)
}

// Config holds the transaction parameters of one chain.
type Config struct {
	ChainID      string
	Bech32Prefix string

	// GasPrice is a decimal coin such as "0.15uluna".
	GasPrice string
	// GasLimit is used as-is when non-zero; zero means simulate.
	GasLimit      uint64
	GasAdjustment float64

	// BroadcastTimeout bounds the wait for inclusion after a sync broadcast.
	// Zero returns right after the broadcast is accepted.
	BroadcastTimeout time.Duration
	PollInterval     time.Duration
}

// Client is the LCD-backed contract client.
type Client struct {
	lcd      *lcdclient.Client
	resolver Resolver
	config   Config
	gasPrice sdk.DecCoin
	txConfig client.TxConfig
}

var _ core.Client = (*Client)(nil)

// New creates a chain client. It fails when the gas price cannot be parsed.
func New(lcd *lcdclient.Client, resolver Resolver, config Config) (*Client, error) {
	gasPrice, err := sdk.ParseDecCoin(config.GasPrice)
	if err != nil {
		return nil, core.NewConfigError(fmt.Sprintf("invalid gas price %q", config.GasPrice), err)
	}
	if config.GasAdjustment <= 0 {
		config.GasAdjustment = DefaultGasAdjustment
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}

	_, txConfig, err := NewTxConfig(config.Bech32Prefix)
	if err != nil {
		return nil, core.NewConfigError("failed to set up tx encoding", err)
	}

	return &Client{
		lcd:      lcd,
		resolver: resolver,
		config:   config,
		gasPrice: gasPrice,
		txConfig: txConfig,
	}, nil
}

// TxConfig exposes the encoding config, mainly for decoding in tests and tools.
func (c *Client) TxConfig() client.TxConfig {
	return c.txConfig
}

// Query runs a smart query against contract and returns the contract's
// answer exactly as the node reported it.
func (c *Client) Query(ctx context.Context, contract string, msg any) (json.RawMessage, error) {
	addr, err := c.resolver.Resolve(contract)
	if err != nil {
		return nil, err
	}

	queryBytes, err := json.Marshal(msg)
	if err != nil {
		return nil, core.NewInvalidRequestError("failed to marshal query message", err)
	}

	resp, err := c.lcd.DoRaw(ctx, lcdclient.Request{
		Method:   http.MethodGet,
		Endpoint: "/cosmwasm/wasm/v1/contract/" + addr + "/smart/" + base64.URLEncoding.EncodeToString(queryBytes),
	})
	if err != nil {
		return nil, err
	}

	data := gjson.GetBytes(resp.Body, "data")
	if !data.Exists() {
		return nil, core.NewNetworkError(http.StatusBadGateway, "smart query response has no data field", nil)
	}
	return json.RawMessage(data.Raw), nil
}
