package core

// TxResult is the receipt of a broadcast transaction.
type TxResult struct {
	TxHash    string `json:"txhash"`
	Height    int64  `json:"height"`
	Code      uint32 `json:"code"`
	Codespace string `json:"codespace,omitempty"`
	RawLog    string `json:"raw_log,omitempty"`
	GasWanted int64  `json:"gas_wanted"`
	GasUsed   int64  `json:"gas_used"`
}

// Included reports whether the transaction has been committed to a block.
func (r *TxResult) Included() bool {
	return r != nil && r.Height > 0
}
