package game

import (
	"context"
	"fmt"

	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/blockchain"
	"github.com/onflow/cadence"
	"github.com/onflow/flow-go-sdk"
	"github.com/rs/zerolog/log"
)

// gameContractBridge runs single-signer contract calls: simulate, sign the
// entries that belong to the caller, sign the envelope and submit.
type gameContractBridge struct {
	ledger      blockchain.Ledger
	contract    flow.Address
	network     string
	authLedgers uint32
}

func (b *gameContractBridge) invocation(function string, args ...cadence.Value) blockchain.Invocation {
	return blockchain.NewInvocation(b.contract, function, args...)
}

func (b *gameContractBridge) invoke(ctx context.Context, signer blockchain.Signer, function string, args ...cadence.Value) (cadence.Value, error) {
	inv := b.invocation(function, args...)
	source := signer.Address()

	sequence, err := b.ledger.AccountSequence(ctx, source)
	if err != nil {
		return nil, err
	}
	tx := blockchain.NewTransaction(b.network, source, sequence+1, inv)

	sim, err := b.ledger.Simulate(ctx, tx)
	if err != nil {
		log.Warn().Err(err).Str("call", function).Str("player", source.Hex()).Msg("Simulation rejected")
		return nil, err
	}

	tx.Auth = sim.Auth
	expiration := sim.LatestLedger + b.authLedgers
	for _, idx := range tx.AddressEntries() {
		entry := &tx.Auth[idx]
		if entry.Credentials.Address != source {
			return nil, fmt.Errorf("%w: %s needs a signature from %s",
				blockchain.ErrAuthEntryNotFound, function, entry.Credentials.Address.Hex())
		}
		if err := blockchain.AuthorizeEntry(ctx, entry, signer, b.network, expiration); err != nil {
			return nil, err
		}
	}

	if err := tx.Sign(ctx, signer); err != nil {
		return nil, err
	}

	receipt, err := b.ledger.Submit(ctx, tx)
	if err != nil {
		log.Warn().Err(err).Str("call", function).Str("player", source.Hex()).Msg("Submission failed")
		return nil, err
	}

	log.Info().
		Str("call", function).
		Str("player", source.Hex()).
		Str("hash", receipt.Hash).
		Uint32("ledger", receipt.Ledger).
		Msg("Contract call submitted")

	if receipt.Result != nil {
		return receipt.Result, nil
	}
	return sim.Result, nil
}

// read simulates a view function. Nothing is signed or submitted.
func (b *gameContractBridge) read(ctx context.Context, function string, args ...cadence.Value) (cadence.Value, error) {
	tx := blockchain.NewTransaction(b.network, b.contract, 0, b.invocation(function, args...))
	sim, err := b.ledger.Simulate(ctx, tx)
	if err != nil {
		return nil, err
	}
	return sim.Result, nil
}
