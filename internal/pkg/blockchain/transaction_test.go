package blockchain_test

import (
	"context"
	"testing"

	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/blockchain"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/blockchain/blockchaintest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Transaction_SignCoversAuth(t *testing.T) {
	signer := blockchaintest.NewSigner(t, bob)
	tx := blockchain.NewTransaction(blockchaintest.Network, bob, 3, startGameInvocation(9))
	tx.Auth = []blockchain.AuthEntry{addressEntry(alice, 1, tx.Invocation)}

	require.NoError(t, tx.Sign(context.Background(), signer))

	payload, err := tx.Payload()
	require.NoError(t, err)
	assert.True(t, signer.Verify(t, tx.Signature, payload))

	tx.Auth[0].Credentials.Signature = []byte{0x01}
	changed, err := tx.Payload()
	require.NoError(t, err)
	assert.False(t, signer.Verify(t, tx.Signature, changed))
}

func Test_Transaction_SignRequiresSource(t *testing.T) {
	tx := blockchain.NewTransaction(blockchaintest.Network, bob, 0, startGameInvocation(9))
	err := tx.Sign(context.Background(), blockchaintest.NewSigner(t, alice))
	assert.Error(t, err)
	assert.Nil(t, tx.Signature)
}

func Test_Transaction_EntryForMatchesByAddress(t *testing.T) {
	tx := blockchain.NewTransaction(blockchaintest.Network, bob, 0, startGameInvocation(9))
	tx.Auth = []blockchain.AuthEntry{
		blockchain.SourceAccountEntry(tx.Invocation),
		addressEntry(bob, 2, tx.Invocation),
		addressEntry(alice, 1, tx.Invocation),
	}

	idx, ok := tx.EntryFor(alice)
	require.True(t, ok)
	assert.Equal(t, 2, idx)

	idx, ok = tx.EntryFor(bob)
	require.True(t, ok)
	assert.Equal(t, 1, idx)

	_, ok = tx.EntryFor(contract)
	assert.False(t, ok)
	assert.Equal(t, []int{1, 2}, tx.AddressEntries())
}

func Test_Transaction_EncodeDecode(t *testing.T) {
	signer := blockchaintest.NewSigner(t, bob)
	tx := blockchain.NewTransaction(blockchaintest.Network, bob, 11, startGameInvocation(5))
	tx.Auth = []blockchain.AuthEntry{addressEntry(alice, 1, tx.Invocation), blockchain.SourceAccountEntry(tx.Invocation)}
	require.NoError(t, tx.Sign(context.Background(), signer))

	encoded, err := tx.Encode()
	require.NoError(t, err)
	decoded, err := blockchain.DecodeTransaction(encoded)
	require.NoError(t, err)

	payload, err := decoded.Payload()
	require.NoError(t, err)
	assert.True(t, signer.Verify(t, decoded.Signature, payload))
	assert.Equal(t, uint64(11), decoded.Sequence)
	assert.Len(t, decoded.Auth, 2)
}
