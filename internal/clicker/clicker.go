// Package clicker binds the clicker contract's queries and executions to a
// chain client. Every call is a single forward to the client; results and
// errors come back untouched.
package clicker

import (
	"context"
	"encoding/json"

	"clicker/config"
	"clicker/internal/core"
	"clicker/internal/refs"
)

// ContractName is the refs name the wrapper addresses.
const ContractName = "clicker"

// Env is supplied by the caller. The wrapper neither owns nor validates it.
type Env struct {
	Wallets core.Wallets
	Refs    refs.Book
	Config  *config.Config
	Client  core.Client
}

// Clicker is the contract wrapper.
type Clicker struct {
	env Env
}

// New binds a wrapper to env.
func New(env Env) *Clicker {
	return &Clicker{env: env}
}

// Option adjusts a single execute call.
type Option func(*callOptions)

type callOptions struct {
	signer    core.Signer
	signerSet bool
}

// WithSigner signs the call with s instead of the validator wallet.
func WithSigner(s core.Signer) Option {
	return func(o *callOptions) {
		o.signer = s
		o.signerSet = true
	}
}

// signer resolves the default at call time so later changes to the
// wallets map are honoured.
func (c *Clicker) signer(opts []Option) core.Signer {
	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.signerSet {
		return o.signer
	}
	return c.env.Wallets.Validator()
}

// GetFortune queries get_fortune.
func (c *Clicker) GetFortune(ctx context.Context) (json.RawMessage, error) {
	return c.env.Client.Query(ctx, ContractName, QueryMsg{GetFortune: &struct{}{}})
}

// GetScores queries get_scores.
func (c *Clicker) GetScores(ctx context.Context) (json.RawMessage, error) {
	return c.env.Client.Query(ctx, ContractName, QueryMsg{GetScores: &struct{}{}})
}

// UpsertScore records score for the signer's address.
func (c *Clicker) UpsertScore(ctx context.Context, score uint16, opts ...Option) (*core.TxResult, error) {
	return c.env.Client.Execute(ctx, c.signer(opts), ContractName, ExecuteMsg{
		UpsertScore: &UpsertScoreMsg{Score: score},
	})
}

// Send asks the contract to pay amount to addr.
func (c *Clicker) Send(ctx context.Context, addr, amount string, opts ...Option) (*core.TxResult, error) {
	return c.env.Client.Execute(ctx, c.signer(opts), ContractName, ExecuteMsg{
		Send: &SendMsg{Addr: addr, Amount: amount},
	})
}
