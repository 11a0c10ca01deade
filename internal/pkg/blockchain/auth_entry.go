package blockchain

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/onflow/flow-go-sdk"
)

type CredentialType uint8

const (
	SourceAccountCredential CredentialType = iota
	AddressCredential
)

func (t CredentialType) String() string {
	switch t {
	case SourceAccountCredential:
		return "source_account"
	case AddressCredential:
		return "address"
	}
	return fmt.Sprintf("credential(%d)", uint8(t))
}

// Credentials say who authorizes an invocation. Source-account credentials
// borrow the transaction signature; address credentials carry their own.
type Credentials struct {
	Type             CredentialType
	Address          flow.Address
	Nonce            uint64
	ExpirationLedger uint32
	Signature        []byte
}

// AuthEntry is one party's authorization for a root invocation.
type AuthEntry struct {
	Credentials    Credentials
	RootInvocation Invocation
}

func (e AuthEntry) AddressBound() bool {
	return e.Credentials.Type == AddressCredential
}

// SourceAccountEntry authorizes the invocation through the submitter itself.
func SourceAccountEntry(root Invocation) AuthEntry {
	return AuthEntry{
		Credentials:    Credentials{Type: SourceAccountCredential},
		RootInvocation: root,
	}
}

const authEntryDomainTag = "POKERZK-V1-AUTH-ENTRY"

type authPreimage struct {
	Network    string
	Address    []byte
	Nonce      uint64
	Expiration uint64
	Contract   []byte
	Function   string
	Args       [][]byte
}

// Preimage is the canonical byte string an address credential signs. It
// covers the network, nonce, expiration and the exact invocation.
func (e AuthEntry) Preimage(network string) ([]byte, error) {
	if !e.AddressBound() {
		return nil, fmt.Errorf("%w: %s credentials are not signed", ErrUnsupportedCredentialType, e.Credentials.Type)
	}

	args := make([][]byte, len(e.RootInvocation.Args))
	for i, a := range e.RootInvocation.Args {
		b, err := encodeValue(a)
		if err != nil {
			return nil, err
		}
		args[i] = b
	}

	encoded, err := rlp.EncodeToBytes(authPreimage{
		Network:    network,
		Address:    e.Credentials.Address.Bytes(),
		Nonce:      e.Credentials.Nonce,
		Expiration: uint64(e.Credentials.ExpirationLedger),
		Contract:   e.RootInvocation.Contract.Bytes(),
		Function:   e.RootInvocation.Function,
		Args:       args,
	})
	if err != nil {
		return nil, err
	}

	return append(paddedDomainTag(authEntryDomainTag), encoded...), nil
}

func paddedDomainTag(tag string) []byte {
	padded := make([]byte, 32)
	copy(padded, tag)
	return padded
}

type wireCredentials struct {
	Type             string `json:"type"`
	Address          string `json:"address,omitempty"`
	Nonce            uint64 `json:"nonce,omitempty"`
	ExpirationLedger uint32 `json:"expirationLedger,omitempty"`
	Signature        string `json:"signature,omitempty"`
}

type wireInvocation struct {
	Contract string            `json:"contract"`
	Function string            `json:"function"`
	Args     []json.RawMessage `json:"args"`
}

type wireAuthEntry struct {
	Credentials    wireCredentials `json:"credentials"`
	RootInvocation wireInvocation  `json:"rootInvocation"`
}

func toWireInvocation(i Invocation) (wireInvocation, error) {
	args, err := encodeValues(i.Args)
	if err != nil {
		return wireInvocation{}, err
	}
	return wireInvocation{Contract: i.Contract.Hex(), Function: i.Function, Args: args}, nil
}

func fromWireInvocation(w wireInvocation) (Invocation, error) {
	args, err := decodeValues(w.Args)
	if err != nil {
		return Invocation{}, err
	}
	return Invocation{Contract: flow.HexToAddress(w.Contract), Function: w.Function, Args: args}, nil
}

func (e AuthEntry) toWire() (wireAuthEntry, error) {
	inv, err := toWireInvocation(e.RootInvocation)
	if err != nil {
		return wireAuthEntry{}, err
	}
	w := wireAuthEntry{
		Credentials:    wireCredentials{Type: e.Credentials.Type.String()},
		RootInvocation: inv,
	}
	if e.AddressBound() {
		w.Credentials.Address = e.Credentials.Address.Hex()
		w.Credentials.Nonce = e.Credentials.Nonce
		w.Credentials.ExpirationLedger = e.Credentials.ExpirationLedger
		w.Credentials.Signature = hex.EncodeToString(e.Credentials.Signature)
	}
	return w, nil
}

func (w wireAuthEntry) toEntry() (AuthEntry, error) {
	inv, err := fromWireInvocation(w.RootInvocation)
	if err != nil {
		return AuthEntry{}, err
	}
	entry := AuthEntry{RootInvocation: inv}

	switch w.Credentials.Type {
	case SourceAccountCredential.String():
		entry.Credentials.Type = SourceAccountCredential
	case AddressCredential.String():
		sig, err := hex.DecodeString(w.Credentials.Signature)
		if err != nil {
			return AuthEntry{}, err
		}
		entry.Credentials = Credentials{
			Type:             AddressCredential,
			Address:          flow.HexToAddress(w.Credentials.Address),
			Nonce:            w.Credentials.Nonce,
			ExpirationLedger: w.Credentials.ExpirationLedger,
			Signature:        sig,
		}
	default:
		return AuthEntry{}, fmt.Errorf("%w: %q", ErrUnsupportedCredentialType, w.Credentials.Type)
	}
	return entry, nil
}

// EncodeAuthEntry serializes an entry into the transferable artifact form.
func EncodeAuthEntry(e AuthEntry) (string, error) {
	w, err := e.toWire()
	if err != nil {
		return "", err
	}
	b, err := json.Marshal(w)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

func DecodeAuthEntry(artifact string) (AuthEntry, error) {
	raw, err := base64.StdEncoding.DecodeString(artifact)
	if err != nil {
		return AuthEntry{}, fmt.Errorf("%w: %v", ErrMalformedAuthEntry, err)
	}
	var w wireAuthEntry
	if err := json.Unmarshal(raw, &w); err != nil {
		return AuthEntry{}, fmt.Errorf("%w: %v", ErrMalformedAuthEntry, err)
	}
	entry, err := w.toEntry()
	if err != nil {
		if errors.Is(err, ErrUnsupportedCredentialType) {
			return AuthEntry{}, err
		}
		return AuthEntry{}, fmt.Errorf("%w: %v", ErrMalformedAuthEntry, err)
	}
	return entry, nil
}
