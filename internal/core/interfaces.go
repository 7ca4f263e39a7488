package core

import (
	"context"
	"encoding/json"

	cryptotypes "github.com/cosmos/cosmos-sdk/crypto/types"
)

// Client defines the generic contract interface used by contract wrappers.
// The contract argument is either a name known to the refs book or a bech32
// contract address.
type Client interface {
	// Query runs a read-only smart query and returns the raw response data
	Query(ctx context.Context, contract string, msg any) (json.RawMessage, error)

	// Execute signs and broadcasts a state-changing contract message
	Execute(ctx context.Context, signer Signer, contract string, msg any) (*TxResult, error)
}

// Signer is an identity capable of authorizing a transaction.
type Signer interface {
	// Name is the identity name the signer was derived from
	Name() string

	// Address is the bech32 account address
	Address() string

	PubKey() cryptotypes.PubKey

	// Sign signs the given sign bytes
	Sign(msg []byte) ([]byte, error)
}

// DefaultSignerName is the wallet used when a caller does not pick a signer.
const DefaultSignerName = "validator"

// Wallets maps wallet names to signers. Lookups happen at call time so that
// later changes to the map are visible to bound wrappers.
type Wallets map[string]Signer

// Validator returns the default signer, or nil when none is registered.
func (w Wallets) Validator() Signer {
	if w == nil {
		return nil
	}
	return w[DefaultSignerName]
}
