// Package refs keeps the contract address book: which code id and contract
// addresses a contract name resolves to on each network. The JSON layout is
// the one written by terrain deployments (refs.terrain.json).
package refs

import (
	"context"
	"fmt"
	"sort"

	"github.com/cosmos/cosmos-sdk/types/bech32"

	"clicker/internal/core"
)

// DefaultInstance is the instance name used when a contract has one deployment.
const DefaultInstance = "default"

// ContractRef records one deployed contract.
type ContractRef struct {
	CodeID            string            `json:"codeId"`
	ContractAddresses map[string]string `json:"contractAddresses"`
}

// Book maps network → contract name → reference. A nil Book is empty.
type Book map[string]map[string]ContractRef

// Address returns the default instance address of contract on network.
func (b Book) Address(network, contract string) (string, bool) {
	ref, ok := b[network][contract]
	if !ok {
		return "", false
	}
	addr, ok := ref.ContractAddresses[DefaultInstance]
	return addr, ok && addr != ""
}

// SetAddress records addr as the given instance of contract on network.
func (b Book) SetAddress(network, contract, instance, addr string) {
	if instance == "" {
		instance = DefaultInstance
	}
	contracts, ok := b[network]
	if !ok {
		contracts = make(map[string]ContractRef)
		b[network] = contracts
	}
	ref := contracts[contract]
	if ref.ContractAddresses == nil {
		ref.ContractAddresses = make(map[string]string)
	}
	ref.ContractAddresses[instance] = addr
	contracts[contract] = ref
}

// Contracts returns the contract names known on network, sorted.
func (b Book) Contracts(network string) []string {
	names := make([]string, 0, len(b[network]))
	for name := range b[network] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Store defines the interface for address book storage.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get retrieves the book. Returns nil, nil if nothing is stored yet.
	Get(ctx context.Context) (Book, error)

	// Set replaces the stored book.
	Set(ctx context.Context, book Book) error

	// Close releases any resources held by the store.
	Close() error
}

// Resolver turns contract names into addresses on one network.
type Resolver struct {
	book    Book
	network string
}

// NewResolver binds book to network.
func NewResolver(book Book, network string) *Resolver {
	return &Resolver{book: book, network: network}
}

// Network returns the network the resolver is bound to.
func (r *Resolver) Network() string { return r.network }

// Resolve returns contract unchanged when it already is a bech32 address,
// otherwise the default address recorded for it.
func (r *Resolver) Resolve(contract string) (string, error) {
	if _, _, err := bech32.DecodeAndConvert(contract); err == nil {
		return contract, nil
	}
	addr, ok := r.book.Address(r.network, contract)
	if !ok {
		return "", core.NewNotFoundError(fmt.Sprintf("contract %q has no address on network %q", contract, r.network))
	}
	return addr, nil
}
