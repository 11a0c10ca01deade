// Package blockchaintest provides an in-memory ledger and real ECDSA signers
// for tests of code built on the blockchain package.
package blockchaintest

import (
	"context"
	"crypto/rand"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/blockchain"
	"github.com/onflow/flow-go-sdk"
	"github.com/onflow/flow-go-sdk/crypto"
	"github.com/stretchr/testify/require"
)

const Network = "Test PokerZk Network"

// Signer is a real in-memory key that also counts how often it was used.
type Signer struct {
	*blockchain.KeySigner
	PublicKey crypto.PublicKey
	calls     atomic.Int32
}

func NewSigner(t testing.TB, address flow.Address) *Signer {
	t.Helper()

	seed := make([]byte, crypto.MinSeedLength)
	_, err := rand.Read(seed)
	require.NoError(t, err)

	pk, err := crypto.GeneratePrivateKey(crypto.ECDSA_P256, seed)
	require.NoError(t, err)

	inMemory, err := crypto.NewInMemorySigner(pk, crypto.SHA3_256)
	require.NoError(t, err)

	return &Signer{
		KeySigner: blockchain.NewKeySigner(address, inMemory),
		PublicKey: pk.PublicKey(),
	}
}

func (s *Signer) SignTransaction(ctx context.Context, payload []byte) ([]byte, error) {
	s.calls.Add(1)
	return s.KeySigner.SignTransaction(ctx, payload)
}

func (s *Signer) SignAuthEntry(ctx context.Context, preimage []byte) ([]byte, error) {
	s.calls.Add(1)
	return s.KeySigner.SignAuthEntry(ctx, preimage)
}

func (s *Signer) Calls() int {
	return int(s.calls.Load())
}

// Verify checks a signature produced by this signer over message.
func (s *Signer) Verify(t testing.TB, signature, message []byte) bool {
	t.Helper()
	hasher, err := crypto.NewHasher(crypto.SHA3_256)
	require.NoError(t, err)
	ok, err := s.PublicKey.Verify(signature, message, hasher)
	require.NoError(t, err)
	return ok
}

// Ledger is a programmable in-memory ledger. Unset funcs succeed with empty
// results.
type Ledger struct {
	mu sync.Mutex

	Latest       uint32
	Sequences    map[flow.Address]uint64
	EventLog     []blockchain.Event
	SimulateFunc func(tx *blockchain.Transaction) (*blockchain.Simulation, error)
	SubmitFunc   func(tx *blockchain.Transaction) (*blockchain.Receipt, error)
	EventsErr    error
	LatestErr    error

	Simulated []*blockchain.Transaction
	Submitted []*blockchain.Transaction
}

func NewLedger(latest uint32) *Ledger {
	return &Ledger{Latest: latest, Sequences: map[flow.Address]uint64{}}
}

func (l *Ledger) Simulate(_ context.Context, tx *blockchain.Transaction) (*blockchain.Simulation, error) {
	l.mu.Lock()
	l.Simulated = append(l.Simulated, tx)
	fn := l.SimulateFunc
	latest := l.Latest
	l.mu.Unlock()

	if fn == nil {
		return &blockchain.Simulation{LatestLedger: latest}, nil
	}
	sim, err := fn(tx)
	if sim != nil && sim.LatestLedger == 0 {
		sim.LatestLedger = latest
	}
	return sim, err
}

func (l *Ledger) Submit(_ context.Context, tx *blockchain.Transaction) (*blockchain.Receipt, error) {
	l.mu.Lock()
	l.Submitted = append(l.Submitted, tx)
	fn := l.SubmitFunc
	l.mu.Unlock()

	if fn == nil {
		return &blockchain.Receipt{Hash: "fake", Ledger: l.Latest}, nil
	}
	return fn(tx)
}

func (l *Ledger) LatestLedger(context.Context) (uint32, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.Latest, l.LatestErr
}

func (l *Ledger) AccountSequence(_ context.Context, address flow.Address) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.Sequences[address], nil
}

func (l *Ledger) Events(_ context.Context, filter blockchain.EventFilter) ([]blockchain.Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.EventsErr != nil {
		return nil, l.EventsErr
	}

	var out []blockchain.Event
	for _, e := range l.EventLog {
		if e.Ledger < filter.StartLedger {
			continue
		}
		out = append(out, e)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (l *Ledger) SubmittedCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Submitted)
}

func (l *Ledger) LastSubmitted() *blockchain.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.Submitted) == 0 {
		return nil
	}
	return l.Submitted[len(l.Submitted)-1]
}
