package blockchain

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/onflow/flow-go-sdk"
)

const transactionDomainTag = "POKERZK-V1-TRANSACTION"

// Transaction carries one invocation, the authorizations it needs, and the
// submitter's envelope signature.
type Transaction struct {
	Network    string
	Source     flow.Address
	Sequence   uint64
	Invocation Invocation
	Auth       []AuthEntry
	Signature  []byte
}

func NewTransaction(network string, source flow.Address, sequence uint64, invocation Invocation) *Transaction {
	return &Transaction{
		Network:    network,
		Source:     source,
		Sequence:   sequence,
		Invocation: invocation,
	}
}

type payloadEntry struct {
	Type       uint8
	Address    []byte
	Nonce      uint64
	Expiration uint64
	Signature  []byte
}

type transactionPayload struct {
	Network  string
	Source   []byte
	Sequence uint64
	Contract []byte
	Function string
	Args     [][]byte
	Auth     []payloadEntry
}

// Payload is what the source account signs. Authorizations are part of it,
// so the envelope must be signed after every entry is in place.
func (tx *Transaction) Payload() ([]byte, error) {
	p := transactionPayload{
		Network:  tx.Network,
		Source:   tx.Source.Bytes(),
		Sequence: tx.Sequence,
		Contract: tx.Invocation.Contract.Bytes(),
		Function: tx.Invocation.Function,
	}
	for _, a := range tx.Invocation.Args {
		b, err := encodeValue(a)
		if err != nil {
			return nil, err
		}
		p.Args = append(p.Args, b)
	}
	for _, e := range tx.Auth {
		p.Auth = append(p.Auth, payloadEntry{
			Type:       uint8(e.Credentials.Type),
			Address:    e.Credentials.Address.Bytes(),
			Nonce:      e.Credentials.Nonce,
			Expiration: uint64(e.Credentials.ExpirationLedger),
			Signature:  e.Credentials.Signature,
		})
	}

	encoded, err := rlp.EncodeToBytes(p)
	if err != nil {
		return nil, err
	}
	return append(paddedDomainTag(transactionDomainTag), encoded...), nil
}

func (tx *Transaction) Sign(ctx context.Context, signer Signer) error {
	if signer.Address() != tx.Source {
		return fmt.Errorf("signer %s cannot sign for source %s", signer.Address().Hex(), tx.Source.Hex())
	}
	payload, err := tx.Payload()
	if err != nil {
		return err
	}
	sig, err := signer.SignTransaction(ctx, payload)
	if err != nil {
		return err
	}
	tx.Signature = sig
	return nil
}

// AddressEntries returns the indexes of entries bound to a specific address.
func (tx *Transaction) AddressEntries() []int {
	var idx []int
	for i, e := range tx.Auth {
		if e.AddressBound() {
			idx = append(idx, i)
		}
	}
	return idx
}

// EntryFor finds the address-bound entry for addr. Position is never used
// for matching.
func (tx *Transaction) EntryFor(addr flow.Address) (int, bool) {
	for i, e := range tx.Auth {
		if e.AddressBound() && e.Credentials.Address == addr {
			return i, true
		}
	}
	return -1, false
}

type wireTransaction struct {
	Network    string          `json:"network"`
	Source     string          `json:"source"`
	Sequence   uint64          `json:"sequence"`
	Invocation wireInvocation  `json:"invocation"`
	Auth       []wireAuthEntry `json:"auth"`
	Signature  string          `json:"signature,omitempty"`
}

func (tx *Transaction) Encode() (string, error) {
	inv, err := toWireInvocation(tx.Invocation)
	if err != nil {
		return "", err
	}
	w := wireTransaction{
		Network:    tx.Network,
		Source:     tx.Source.Hex(),
		Sequence:   tx.Sequence,
		Invocation: inv,
		Auth:       []wireAuthEntry{},
		Signature:  hex.EncodeToString(tx.Signature),
	}
	for _, e := range tx.Auth {
		we, err := e.toWire()
		if err != nil {
			return "", err
		}
		w.Auth = append(w.Auth, we)
	}
	b, err := json.Marshal(w)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

func DecodeTransaction(encoded string) (*Transaction, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}
	var w wireTransaction
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, err
	}
	inv, err := fromWireInvocation(w.Invocation)
	if err != nil {
		return nil, err
	}
	sig, err := hex.DecodeString(w.Signature)
	if err != nil {
		return nil, err
	}
	tx := &Transaction{
		Network:    w.Network,
		Source:     flow.HexToAddress(w.Source),
		Sequence:   w.Sequence,
		Invocation: inv,
		Signature:  sig,
	}
	for _, we := range w.Auth {
		e, err := we.toEntry()
		if err != nil {
			return nil, err
		}
		tx.Auth = append(tx.Auth, e)
	}
	return tx, nil
}
