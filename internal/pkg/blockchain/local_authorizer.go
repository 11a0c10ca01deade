package blockchain

import (
	"fmt"

	"github.com/onflow/flow-go-sdk"
	"github.com/onflow/flow-go-sdk/crypto"
	"github.com/spf13/viper"
)

// GetLocalAuthorizer builds the signer for single-player mode from the
// LOCAL_SIGNER_* settings. The key is ECDSA P-256 with SHA3-256.
func GetLocalAuthorizer() (*KeySigner, error) {
	address := viper.GetString("LOCAL_SIGNER_ADDRESS")
	privateKeyHex := viper.GetString("LOCAL_SIGNER_PRIVATE_KEY")
	if address == "" || privateKeyHex == "" {
		return nil, fmt.Errorf("local signer address and private key must be configured")
	}
	return NewInMemorySigner(flow.HexToAddress(address), privateKeyHex)
}

func NewInMemorySigner(address flow.Address, privateKeyHex string) (*KeySigner, error) {
	pk, err := crypto.DecodePrivateKeyHex(crypto.ECDSA_P256, privateKeyHex)
	if err != nil {
		return nil, err
	}
	signer, err := crypto.NewInMemorySigner(pk, crypto.SHA3_256)
	if err != nil {
		return nil, err
	}
	return NewKeySigner(address, signer), nil
}
