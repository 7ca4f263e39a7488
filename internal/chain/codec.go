package chain

import (
	"fmt"

	"cosmossdk.io/x/tx/signing"
	wasmtypes "github.com/CosmWasm/wasmd/x/wasm/types"
	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/codec"
	"github.com/cosmos/cosmos-sdk/codec/address"
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	"github.com/cosmos/cosmos-sdk/std"
	authtx "github.com/cosmos/cosmos-sdk/x/auth/tx"
	"github.com/cosmos/gogoproto/proto"
)

// NewTxConfig builds the codec and tx config for a chain whose account
// addresses use bech32Prefix. Only the interfaces needed to encode wasm
// execute transactions are registered.
func NewTxConfig(bech32Prefix string) (codec.Codec, client.TxConfig, error) {
	signingOptions := signing.Options{
		AddressCodec:          address.NewBech32Codec(bech32Prefix),
		ValidatorAddressCodec: address.NewBech32Codec(bech32Prefix + "valoper"),
	}

	registry, err := codectypes.NewInterfaceRegistryWithOptions(codectypes.InterfaceRegistryOptions{
		ProtoFiles:     proto.HybridResolver,
		SigningOptions: signingOptions,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create interface registry: %w", err)
	}

	std.RegisterInterfaces(registry)
	wasmtypes.RegisterInterfaces(registry)

	cdc := codec.NewProtoCodec(registry)
	txConfig, err := authtx.NewTxConfigWithOptions(cdc, authtx.ConfigOptions{
		EnabledSignModes: authtx.DefaultSignModes,
		SigningOptions:   &signingOptions,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create tx config: %w", err)
	}

	return cdc, txConfig, nil
}
