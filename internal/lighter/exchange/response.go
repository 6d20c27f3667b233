package exchange

import (
	"encoding/json"
	"strconv"
	"strings"
)

// signedTxFromAny digs the signed transaction out of a lenient sign
// response; venue versions differ on nesting and field casing.
func signedTxFromAny(v any) (SignedTx, bool) {
	body, ok := v.(map[string]any)
	if !ok {
		return SignedTx{}, false
	}
	for _, key := range []string{"tx", "signed_tx", "signedTx", "data"} {
		if nested, ok := body[key].(map[string]any); ok {
			if tx, ok := signedTxFromMap(nested); ok {
				return tx, true
			}
		}
	}
	return signedTxFromMap(body)
}

func signedTxFromMap(m map[string]any) (SignedTx, bool) {
	info := firstString(m, "tx_info", "txInfo", "info")
	if info == "" {
		// Some venue versions inline the tx info as an object.
		for _, key := range []string{"tx_info", "txInfo"} {
			if nested, ok := m[key].(map[string]any); ok {
				if raw, err := json.Marshal(nested); err == nil {
					info = string(raw)
				}
			}
		}
	}
	if info == "" {
		return SignedTx{}, false
	}
	return SignedTx{
		TxType:    firstInt(m, "tx_type", "txType", "type"),
		TxInfo:    info,
		Signature: firstString(m, "signature", "sig"),
	}, true
}

func nonceFromAny(v any) (uint64, bool) {
	body, ok := v.(map[string]any)
	if !ok {
		return 0, false
	}
	for _, key := range []string{"nonce", "next_nonce", "nextNonce"} {
		if raw, ok := body[key]; ok {
			if n, ok := uintFromAny(raw); ok {
				return n, true
			}
		}
	}
	return 0, false
}

func rejectionFromBody(body map[string]any) (int, string, bool) {
	raw, ok := body["code"]
	if !ok {
		return 0, "", false
	}
	code, ok := uintFromAny(raw)
	if !ok || code == 0 || code == 200 {
		return 0, "", false
	}
	msg := firstString(body, "message", "msg", "error")
	if msg == "" {
		msg = "venue rejected transaction"
	}
	return int(code), msg, true
}

// TxHashFromResponse finds the transaction hash anywhere in the send
// response, for logging and the audit trail.
func TxHashFromResponse(resp map[string]any) string {
	if resp == nil {
		return ""
	}
	return txHashFromAny(resp)
}

func txHashFromAny(v any) string {
	switch val := v.(type) {
	case map[string]any:
		for _, key := range []string{"tx_hash", "txHash", "hash"} {
			if s := firstString(val, key); s != "" {
				return s
			}
		}
		for _, nested := range val {
			if s := txHashFromAny(nested); s != "" {
				return s
			}
		}
	case []any:
		for _, nested := range val {
			if s := txHashFromAny(nested); s != "" {
				return s
			}
		}
	}
	return ""
}

func firstString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		switch val := m[key].(type) {
		case string:
			if trimmed := strings.TrimSpace(val); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

func firstInt(m map[string]any, keys ...string) int {
	for _, key := range keys {
		if n, ok := uintFromAny(m[key]); ok {
			return int(n)
		}
	}
	return 0
}

func uintFromAny(v any) (uint64, bool) {
	switch val := v.(type) {
	case float64:
		if val < 0 {
			return 0, false
		}
		return uint64(val), true
	case int:
		if val < 0 {
			return 0, false
		}
		return uint64(val), true
	case int64:
		if val < 0 {
			return 0, false
		}
		return uint64(val), true
	case uint64:
		return val, true
	case json.Number:
		n, err := strconv.ParseUint(val.String(), 10, 64)
		return n, err == nil
	case string:
		n, err := strconv.ParseUint(strings.TrimSpace(val), 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}
