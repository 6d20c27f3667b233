package exchange

// OrderParams is one candidate rendering of an order for the venue's
// signing endpoint. Payload is either a map (keyword shapes) or a slice
// (positional shapes); the venue decides whether it understands it.
type OrderParams struct {
	Shape   string
	Payload any
}

// SignedTx is the venue-produced signed transaction object, ready for
// submission. TxInfo is kept verbatim as the venue rendered it.
type SignedTx struct {
	TxType    int    `json:"tx_type"`
	TxInfo    string `json:"tx_info"`
	Signature string `json:"signature,omitempty"`
}

type signOrderRequest struct {
	AccountIndex int    `json:"account_index"`
	APIKeyIndex  int    `json:"api_key_index"`
	Nonce        uint64 `json:"nonce"`
	Params       any    `json:"params"`
	AuthSig      string `json:"auth"`
}

type sendTxRequest struct {
	TxType    int    `json:"tx_type"`
	TxInfo    string `json:"tx_info"`
	Signature string `json:"signature,omitempty"`
}
