package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	sdkmath "cosmossdk.io/math"
	wasmtypes "github.com/CosmWasm/wasmd/x/wasm/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	signingtypes "github.com/cosmos/cosmos-sdk/types/tx/signing"
	authsigning "github.com/cosmos/cosmos-sdk/x/auth/signing"
	"github.com/tidwall/gjson"

	"clicker/internal/core"
	"clicker/internal/lcdclient"
)

const signMode = signingtypes.SignMode_SIGN_MODE_DIRECT

// Execute signs and broadcasts a MsgExecuteContract from signer to contract.
// When a broadcast timeout is configured it waits for the tx to be included.
// On timeout both the pending result and an error are returned.
func (c *Client) Execute(ctx context.Context, signer core.Signer, contract string, msg any) (*core.TxResult, error) {
	if signer == nil {
		return nil, core.NewInvalidRequestError("no signer available for execute", nil)
	}

	addr, err := c.resolver.Resolve(contract)
	if err != nil {
		return nil, err
	}

	msgBytes, err := json.Marshal(msg)
	if err != nil {
		return nil, core.NewInvalidRequestError("failed to marshal execute message", err)
	}

	acc, err := c.getAccount(ctx, signer.Address())
	if err != nil {
		return nil, err
	}

	execMsg := &wasmtypes.MsgExecuteContract{
		Sender:   signer.Address(),
		Contract: addr,
		Msg:      wasmtypes.RawContractMessage(msgBytes),
	}

	gasLimit := c.config.GasLimit
	if gasLimit == 0 {
		gasLimit, err = c.estimateGas(ctx, signer, acc, execMsg)
		if err != nil {
			return nil, err
		}
	}

	txBytes, err := c.buildTx(ctx, signer, acc, execMsg, gasLimit, true)
	if err != nil {
		return nil, err
	}

	result, err := c.broadcast(ctx, txBytes)
	if err != nil {
		return nil, err
	}

	slog.Info("tx broadcast",
		"tx_hash", result.TxHash,
		"contract", addr,
		"signer", signer.Name(),
		"gas_limit", gasLimit,
		"request_id", core.GetRequestID(ctx),
	)

	if c.config.BroadcastTimeout <= 0 {
		return result, nil
	}
	return c.waitForTx(ctx, result)
}

// buildTx assembles the tx. Without sign it carries an empty signature,
// which is what the simulate endpoint expects.
func (c *Client) buildTx(
	ctx context.Context,
	signer core.Signer,
	acc *account,
	msg sdk.Msg,
	gasLimit uint64,
	sign bool,
) ([]byte, error) {
	builder := c.txConfig.NewTxBuilder()
	if err := builder.SetMsgs(msg); err != nil {
		return nil, core.NewInvalidRequestError("failed to set messages", err)
	}
	builder.SetGasLimit(gasLimit)
	builder.SetFeeAmount(c.fee(gasLimit))

	pubKey := signer.PubKey()
	sig := signingtypes.SignatureV2{
		PubKey: pubKey,
		Data: &signingtypes.SingleSignatureData{
			SignMode:  signMode,
			Signature: nil,
		},
		Sequence: acc.Sequence,
	}
	if err := builder.SetSignatures(sig); err != nil {
		return nil, core.NewInvalidRequestError("failed to set signature placeholder", err)
	}

	if sign {
		signerData := authsigning.SignerData{
			ChainID:       c.config.ChainID,
			AccountNumber: acc.AccountNumber,
			Sequence:      acc.Sequence,
			PubKey:        pubKey,
			Address:       acc.Address,
		}
		bytesToSign, err := authsigning.GetSignBytesAdapter(ctx, c.txConfig.SignModeHandler(), signMode, signerData, builder.GetTx())
		if err != nil {
			return nil, core.NewInvalidRequestError("failed to get sign bytes", err)
		}
		signature, err := signer.Sign(bytesToSign)
		if err != nil {
			return nil, core.NewInvalidRequestError(fmt.Sprintf("signer %q failed to sign", signer.Name()), err)
		}
		sig.Data = &signingtypes.SingleSignatureData{
			SignMode:  signMode,
			Signature: signature,
		}
		if err := builder.SetSignatures(sig); err != nil {
			return nil, core.NewInvalidRequestError("failed to set signature", err)
		}
	}

	txBytes, err := c.txConfig.TxEncoder()(builder.GetTx())
	if err != nil {
		return nil, core.NewInvalidRequestError("failed to encode transaction", err)
	}
	return txBytes, nil
}

// fee rounds up so the tx never underpays.
func (c *Client) fee(gasLimit uint64) sdk.Coins {
	gas := sdkmath.LegacyNewDecFromInt(sdkmath.NewIntFromUint64(gasLimit))
	amount := c.gasPrice.Amount.Mul(gas).Ceil().TruncateInt()
	return sdk.NewCoins(sdk.NewCoin(c.gasPrice.Denom, amount))
}

func (c *Client) estimateGas(ctx context.Context, signer core.Signer, acc *account, msg sdk.Msg) (uint64, error) {
	txBytes, err := c.buildTx(ctx, signer, acc, msg, 0, false)
	if err != nil {
		return 0, err
	}

	resp, err := c.lcd.DoRaw(ctx, lcdclient.Request{
		Method:   http.MethodPost,
		Endpoint: "/cosmos/tx/v1beta1/simulate",
		Body:     map[string]any{"tx_bytes": txBytes},
	})
	if err != nil {
		return 0, err
	}

	gasUsed := gjson.GetBytes(resp.Body, "gas_info.gas_used")
	if !gasUsed.Exists() {
		return 0, core.NewNetworkError(http.StatusBadGateway, "simulate response has no gas_info", nil)
	}
	return uint64(math.Ceil(float64(gasUsed.Uint()) * c.config.GasAdjustment)), nil
}

func (c *Client) broadcast(ctx context.Context, txBytes []byte) (*core.TxResult, error) {
	resp, err := c.lcd.DoRaw(ctx, lcdclient.Request{
		Method:   http.MethodPost,
		Endpoint: "/cosmos/tx/v1beta1/txs",
		Body: map[string]any{
			"tx_bytes": txBytes,
			"mode":     "BROADCAST_MODE_SYNC",
		},
		NoRetry: true,
	})
	if err != nil {
		return nil, err
	}

	result := parseTxResponse(resp.Body)
	if result.TxHash == "" {
		return nil, core.NewNetworkError(http.StatusBadGateway, "broadcast response has no tx hash", nil)
	}
	if result.Code != 0 {
		return nil, core.NewTxError(result.TxHash, result.Codespace, result.Code, result.RawLog)
	}
	return result, nil
}

func (c *Client) waitForTx(parent context.Context, pending *core.TxResult) (*core.TxResult, error) {
	ctx, cancel := context.WithTimeout(parent, c.config.BroadcastTimeout)
	defer cancel()

	ticker := time.NewTicker(c.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return pending, c.waitError(parent, pending.TxHash)
		case <-ticker.C:
		}

		resp, err := c.lcd.DoRaw(ctx, lcdclient.Request{
			Method:   http.MethodGet,
			Endpoint: "/cosmos/tx/v1beta1/txs/" + pending.TxHash,
		})
		if err != nil {
			if ctx.Err() != nil {
				return pending, c.waitError(parent, pending.TxHash)
			}
			if isTxNotFound(err) {
				continue
			}
			return pending, err
		}

		result := parseTxResponse(resp.Body)
		if result.Height == 0 {
			continue
		}
		if result.Code != 0 {
			return result, core.NewTxError(result.TxHash, result.Codespace, result.Code, result.RawLog)
		}
		return result, nil
	}
}

// waitError reports why polling stopped. A caller that cancelled gets its
// context error back; anything else is an inclusion timeout.
func (c *Client) waitError(parent context.Context, txHash string) error {
	if err := parent.Err(); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		chainErr := core.NewNetworkError(http.StatusRequestTimeout,
			fmt.Sprintf("stopped waiting for tx %s", txHash), err)
		chainErr.TxHash = txHash
		return chainErr
	}
	chainErr := core.NewNetworkError(http.StatusGatewayTimeout,
		fmt.Sprintf("tx %s not included within %s", txHash, c.config.BroadcastTimeout), nil)
	chainErr.TxHash = txHash
	return chainErr
}

// isTxNotFound matches both the 404 of newer nodes and the 400
// "tx not found" some nodes return for unknown hashes.
func isTxNotFound(err error) bool {
	var chainErr *core.ChainError
	if !errors.As(err, &chainErr) {
		return false
	}
	switch chainErr.Type {
	case core.ErrorTypeNotFound:
		return true
	case core.ErrorTypeInvalidRequest:
		return strings.Contains(strings.ToLower(chainErr.Message), "not found")
	}
	return false
}

func parseTxResponse(body []byte) *core.TxResult {
	tx := gjson.GetBytes(body, "tx_response")
	return &core.TxResult{
		TxHash:    tx.Get("txhash").String(),
		Height:    tx.Get("height").Int(),
		Code:      uint32(tx.Get("code").Uint()),
		Codespace: tx.Get("codespace").String(),
		RawLog:    tx.Get("raw_log").String(),
		GasWanted: tx.Get("gas_wanted").Int(),
		GasUsed:   tx.Get("gas_used").Int(),
	}
}
