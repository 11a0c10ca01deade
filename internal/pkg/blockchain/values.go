package blockchain

import (
	"encoding/json"

	"github.com/onflow/cadence"
	jsoncdc "github.com/onflow/cadence/encoding/json"
	"github.com/onflow/flow-go-sdk"
)

func encodeValue(v cadence.Value) ([]byte, error) {
	return jsoncdc.Encode(v)
}

func decodeValue(b []byte) (cadence.Value, error) {
	return jsoncdc.Decode(nil, b)
}

func encodeValues(values []cadence.Value) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, len(values))
	for i, v := range values {
		b, err := encodeValue(v)
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}

func decodeValues(raw []json.RawMessage) ([]cadence.Value, error) {
	out := make([]cadence.Value, len(raw))
	for i, r := range raw {
		v, err := decodeValue(r)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// AddressValue converts a ledger address into a contract argument.
func AddressValue(addr flow.Address) cadence.Address {
	return cadence.BytesToAddress(addr.Bytes())
}

func BytesValue(b []byte) cadence.Array {
	values := make([]cadence.Value, len(b))
	for i, x := range b {
		values[i] = cadence.NewUInt8(x)
	}
	return cadence.NewArray(values)
}

func OptionalValue(v cadence.Value) cadence.Optional {
	return cadence.NewOptional(v)
}
