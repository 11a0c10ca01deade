package utils

import (
	"encoding/json"
)

// JsonEncode is for payloads built from plain structs, which always marshal.
func JsonEncode(payload any) []byte {
	bytes, err := json.Marshal(payload)
	if err != nil {
		panic("cannot marshal " + err.Error())
	}
	return bytes
}
