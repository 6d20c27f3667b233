package exchange

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/vmihailenco/msgpack/v5"
)

// EncodeOrderParams renders the candidate payload to canonical msgpack for
// request signing. Map keys are encoded in sorted order so both sides hash
// identical bytes regardless of Go map iteration.
func EncodeOrderParams(params OrderParams) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := encodeCanonical(enc, params.Payload); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeCanonical(enc *msgpack.Encoder, v any) error {
	switch val := v.(type) {
	case nil:
		return enc.EncodeNil()
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		if err := enc.EncodeMapLen(len(keys)); err != nil {
			return err
		}
		for _, k := range keys {
			if err := enc.EncodeString(k); err != nil {
				return err
			}
			if err := encodeCanonical(enc, val[k]); err != nil {
				return err
			}
		}
		return nil
	case []any:
		if err := enc.EncodeArrayLen(len(val)); err != nil {
			return err
		}
		for _, item := range val {
			if err := encodeCanonical(enc, item); err != nil {
				return err
			}
		}
		return nil
	case string:
		return enc.EncodeString(val)
	case bool:
		return enc.EncodeBool(val)
	case int:
		return enc.EncodeInt(int64(val))
	case int64:
		return enc.EncodeInt(val)
	case uint64:
		return enc.EncodeUint(val)
	case float64:
		return enc.EncodeFloat64(val)
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return enc.EncodeInt(i)
		}
		f, err := val.Float64()
		if err != nil {
			return err
		}
		return enc.EncodeFloat64(f)
	default:
		return fmt.Errorf("unsupported param type %T", v)
	}
}
