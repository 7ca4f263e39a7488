// Package wallet derives secp256k1 signing wallets from identity credentials.
package wallet

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/cosmos/cosmos-sdk/crypto/hd"
	"github.com/cosmos/cosmos-sdk/crypto/keys/secp256k1"
	cryptotypes "github.com/cosmos/cosmos-sdk/crypto/types"
	"github.com/cosmos/cosmos-sdk/types/bech32"
	"github.com/tyler-smith/go-bip39"

	"clicker/internal/core"
	"clicker/internal/keys"
)

// Params selects the address format and HD path of a network.
type Params struct {
	// Bech32Prefix is the account address prefix, e.g. "terra"
	Bech32Prefix string
	// CoinType is the BIP44 coin type, e.g. 330 for Terra, 118 for the Cosmos Hub
	CoinType uint32
}

var _ core.Signer = (*Wallet)(nil)

// Wallet is an in-memory signer backed by a secp256k1 private key.
type Wallet struct {
	name    string
	priv    cryptotypes.PrivKey
	address string
}

// FromCredential derives the wallet for one identity. Mnemonics use the path
// m/44'/<coin type>'/0'/0/0.
func FromCredential(name string, cred keys.Credential, params Params) (*Wallet, error) {
	var (
		priv cryptotypes.PrivKey
		err  error
	)
	switch cred.Kind() {
	case keys.KindMnemonic:
		phrase, _ := cred.Mnemonic()
		priv, err = fromMnemonic(phrase, params.CoinType)
	case keys.KindPrivateKey:
		raw, _ := cred.PrivateKey()
		priv, err = fromRawKey(raw)
	default:
		err = keys.ErrInvalidCredential
	}
	if err != nil {
		return nil, fmt.Errorf("wallet %q: %w", name, err)
	}

	address, err := bech32.ConvertAndEncode(params.Bech32Prefix, priv.PubKey().Address())
	if err != nil {
		return nil, fmt.Errorf("wallet %q: encode address: %w", name, err)
	}

	return &Wallet{name: name, priv: priv, address: address}, nil
}

func fromMnemonic(phrase string, coinType uint32) (cryptotypes.PrivKey, error) {
	if !bip39.IsMnemonicValid(phrase) {
		return nil, fmt.Errorf("invalid mnemonic")
	}
	hdPath := hd.CreateHDPath(coinType, 0, 0).String()
	derived, err := hd.Secp256k1.Derive()(phrase, "", hdPath)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return hd.Secp256k1.Generate()(derived), nil
}

// fromRawKey accepts a 32-byte key as hex (optionally 0x-prefixed) or base64.
func fromRawKey(raw string) (cryptotypes.PrivKey, error) {
	raw = strings.TrimPrefix(raw, "0x")

	var (
		b   []byte
		err error
	)
	if len(raw) == 2*secp256k1.PrivKeySize {
		b, err = hex.DecodeString(raw)
	} else {
		b, err = base64.StdEncoding.DecodeString(raw)
	}
	if err != nil {
		return nil, fmt.Errorf("decode private key: %w", err)
	}
	if len(b) != secp256k1.PrivKeySize {
		return nil, fmt.Errorf("private key must be %d bytes, got %d", secp256k1.PrivKeySize, len(b))
	}
	return &secp256k1.PrivKey{Key: b}, nil
}

// Name returns the identity the wallet was derived from.
func (w *Wallet) Name() string { return w.name }

// Address returns the bech32 account address.
func (w *Wallet) Address() string { return w.address }

// PubKey returns the compressed secp256k1 public key.
func (w *Wallet) PubKey() cryptotypes.PubKey { return w.priv.PubKey() }

// Sign signs msg; secp256k1 keys hash with sha256 before signing.
func (w *Wallet) Sign(msg []byte) ([]byte, error) {
	return w.priv.Sign(msg)
}

// FromSet derives one wallet per identity and registers defaultSigner under
// core.DefaultSignerName as well.
func FromSet(set keys.Set, params Params, defaultSigner string) (core.Wallets, error) {
	wallets := make(core.Wallets, len(set)+1)
	for _, name := range set.Names() {
		cred, _ := set.Get(name)
		w, err := FromCredential(name, cred, params)
		if err != nil {
			return nil, err
		}
		wallets[name] = w
	}

	if defaultSigner != "" {
		w, ok := wallets[defaultSigner]
		if !ok {
			return nil, core.NewConfigError(fmt.Sprintf("default signer %q is not a configured identity", defaultSigner), nil)
		}
		wallets[core.DefaultSignerName] = w
	}
	return wallets, nil
}
