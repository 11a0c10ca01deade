package blockchain

import (
	"context"
	"fmt"

	"github.com/onflow/flow-go-sdk"
	"github.com/onflow/flow-go-sdk/crypto"
)

// Signer produces signatures on behalf of one ledger address.
type Signer interface {
	Address() flow.Address
	SignTransaction(ctx context.Context, payload []byte) ([]byte, error)
	SignAuthEntry(ctx context.Context, preimage []byte) ([]byte, error)
}

// KeySigner adapts a flow crypto signer (in-memory or Cloud KMS).
type KeySigner struct {
	address flow.Address
	signer  crypto.Signer
}

func NewKeySigner(address flow.Address, signer crypto.Signer) *KeySigner {
	return &KeySigner{address: address, signer: signer}
}

func (s *KeySigner) Address() flow.Address {
	return s.address
}

func (s *KeySigner) SignTransaction(ctx context.Context, payload []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.signer.Sign(payload)
}

func (s *KeySigner) SignAuthEntry(ctx context.Context, preimage []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.signer.Sign(preimage)
}

// AuthorizeEntry stamps the expiration bound on an address-bound entry and
// signs its preimage with the matching signer.
func AuthorizeEntry(ctx context.Context, entry *AuthEntry, signer Signer, network string, expirationLedger uint32) error {
	if !entry.AddressBound() {
		return fmt.Errorf("%w: cannot sign %s credentials", ErrUnsupportedCredentialType, entry.Credentials.Type)
	}
	if entry.Credentials.Address != signer.Address() {
		return fmt.Errorf("%w: entry is bound to %s, signer is %s",
			ErrAuthEntryNotFound, entry.Credentials.Address.Hex(), signer.Address().Hex())
	}

	entry.Credentials.ExpirationLedger = expirationLedger
	preimage, err := entry.Preimage(network)
	if err != nil {
		return err
	}
	sig, err := signer.SignAuthEntry(ctx, preimage)
	if err != nil {
		return err
	}
	entry.Credentials.Signature = sig
	return nil
}
