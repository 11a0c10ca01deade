package game

import (
	"sync"
	"testing"
	"time"

	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/blockchain"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/blockchain/blockchaintest"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/model"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/secret"
	"github.com/onflow/cadence"
	"github.com/onflow/flow-go-sdk"
)

var (
	contractAddress = flow.HexToAddress("c0ffee")
	alice           = flow.HexToAddress("a1")
	bob             = flow.HexToAddress("b0b")
	carol           = flow.HexToAddress("ca")
)

// fakeContract answers contract calls from an in-memory game table.
type fakeContract struct {
	mu      sync.Mutex
	games   map[uint64]model.Game
	config  *model.GameConfig
	results map[string]cadence.Value
	errs    map[string]error
	calls   []blockchain.Invocation
}

func newFakeContract() *fakeContract {
	return &fakeContract{
		games:   map[uint64]model.Game{},
		results: map[string]cadence.Value{},
		errs:    map[string]error{},
	}
}

func (f *fakeContract) simulate(tx *blockchain.Transaction) (*blockchain.Simulation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	inv := tx.Invocation
	f.calls = append(f.calls, inv)
	if err := f.errs[inv.Function]; err != nil {
		return nil, err
	}

	switch inv.Function {
	case "get_game":
		id := uint64(inv.Args[0].(cadence.UInt64))
		g, ok := f.games[id]
		if !ok {
			return nil, blockchain.ErrGameNotFound
		}
		return &blockchain.Simulation{Result: gameValue(g)}, nil
	case "get_config":
		if f.config == nil {
			return nil, blockchain.NewContractError(uint32(blockchain.CodeConfigNotSet))
		}
		return &blockchain.Simulation{Result: configValue(*f.config)}, nil
	}
	return &blockchain.Simulation{Result: f.results[inv.Function]}, nil
}

func (f *fakeContract) put(g model.Game) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.games[g.Id] = g
}

func (f *fakeContract) fail(function string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[function] = err
}

func (f *fakeContract) called(function string) []blockchain.Invocation {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []blockchain.Invocation
	for _, c := range f.calls {
		if c.Function == function {
			out = append(out, c)
		}
	}
	return out
}

type fixture struct {
	contract *fakeContract
	ledger   *blockchaintest.Ledger
	secrets  *secret.MemoryStore
	index    *secret.MemoryGameIndex
	service  *Service
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		contract: newFakeContract(),
		ledger:   blockchaintest.NewLedger(500),
		secrets:  secret.NewMemoryStore(),
		index:    secret.NewMemoryGameIndex(),
		now:      time.Unix(10_000, 0),
	}
	f.ledger.SimulateFunc = f.contract.simulate
	f.service = NewService(f.ledger, Options{
		Contract:    contractAddress,
		Network:     blockchaintest.Network,
		AuthLedgers: 60,
		EventWindow: 7200,
		EventLimit:  200,
		Secrets:     f.secrets,
		Index:       f.index,
		Now:         func() time.Time { return f.now },
	})
	return f
}

func optional(v cadence.Value) cadence.Optional {
	return cadence.NewOptional(v)
}

func optBytes(b *model.Bytes32) cadence.Value {
	if b == nil {
		return optional(nil)
	}
	return optional(blockchain.BytesValue(b[:]))
}

func optAddress(a *flow.Address) cadence.Value {
	if a == nil {
		return optional(nil)
	}
	return optional(cadence.Address(*a))
}

func optUint32(n *uint32) cadence.Value {
	if n == nil {
		return optional(nil)
	}
	return optional(cadence.NewUInt32(*n))
}

func uint32Array(xs []uint32) cadence.Array {
	values := make([]cadence.Value, len(xs))
	for i, x := range xs {
		values[i] = cadence.NewUInt32(x)
	}
	return cadence.NewArray(values)
}

func record(pairs map[string]cadence.Value) cadence.Dictionary {
	kv := make([]cadence.KeyValuePair, 0, len(pairs))
	for k, v := range pairs {
		kv = append(kv, cadence.KeyValuePair{Key: cadence.String(k), Value: v})
	}
	return cadence.NewDictionary(kv)
}

func gameValue(g model.Game) cadence.Dictionary {
	board := g.Board
	if board == nil {
		board = []uint32{}
	}
	return record(map[string]cadence.Value{
		"id":                cadence.NewUInt64(g.Id),
		"table_id":          cadence.NewUInt64(g.TableId),
		"state":             cadence.NewUInt32(uint32(g.State)),
		"player1":           cadence.Address(g.Player1),
		"player2":           optAddress(g.Player2),
		"buy_in":            cadence.NewInt64(g.BuyIn),
		"pot":               cadence.NewInt64(g.Pot),
		"small_blind":       cadence.NewInt64(g.SmallBlind),
		"big_blind":         cadence.NewInt64(g.BigBlind),
		"dealer_position":   cadence.NewUInt32(g.DealerPosition),
		"board":             uint32Array(board),
		"board_revealed":    cadence.NewUInt32(g.BoardRevealed),
		"current_bet_p1":    cadence.NewInt64(g.CurrentBetP1),
		"current_bet_p2":    cadence.NewInt64(g.CurrentBetP2),
		"total_bet_p1":      cadence.NewInt64(g.TotalBetP1),
		"total_bet_p2":      cadence.NewInt64(g.TotalBetP2),
		"min_raise":         cadence.NewInt64(g.MinRaise),
		"last_raise_amount": cadence.NewInt64(g.LastRaiseAmount),
		"actor":             cadence.NewUInt32(g.Actor),
		"folded":            optAddress(g.Folded),
		"seed_commitment1":  optBytes(g.SeedCommitment1),
		"seed_commitment2":  optBytes(g.SeedCommitment2),
		"seed_reveal1":      optBytes(g.SeedReveal1),
		"seed_reveal2":      optBytes(g.SeedReveal2),
		"final_seed":        optBytes(g.FinalSeed),
		"hand_commitment1":  optBytes(g.HandCommitment1),
		"hand_commitment2":  optBytes(g.HandCommitment2),
		"hand_rank1":        optUint32(g.HandRank1),
		"hand_rank2":        optUint32(g.HandRank2),
		"winner":            optAddress(g.Winner),
		"created_at":        cadence.NewUInt64(g.CreatedAt),
		"last_action_at":    cadence.NewUInt64(g.LastActionAt),
	})
}

func configValue(c model.GameConfig) cadence.Dictionary {
	return record(map[string]cadence.Value{
		"min_buy_in":         cadence.NewInt64(c.MinBuyIn),
		"max_buy_in":         cadence.NewInt64(c.MaxBuyIn),
		"small_blind":        cadence.NewInt64(c.SmallBlind),
		"big_blind":          cadence.NewInt64(c.BigBlind),
		"rake_percentage":    cadence.NewUInt32(c.RakePercentage),
		"reveal_timeout":     cadence.NewUInt64(c.RevealTimeout),
		"bet_timeout":        cadence.NewUInt64(c.BetTimeout),
		"waiting_timeout":    cadence.NewUInt64(c.WaitingTimeout),
		"treasury":           cadence.Address(c.Treasury),
		"game_hub":           cadence.Address(c.GameHub),
		"payment_controller": optAddress(c.PaymentController),
		"proof_verifier":     optAddress(c.ProofVerifier),
	})
}

func testConfig() *model.GameConfig {
	return &model.GameConfig{
		MinBuyIn:       100,
		MaxBuyIn:       10_000,
		SmallBlind:     5,
		BigBlind:       10,
		RakePercentage: 2,
		RevealTimeout:  120,
		BetTimeout:     60,
		WaitingTimeout: 600,
		Treasury:       flow.HexToAddress("7e"),
		GameHub:        flow.HexToAddress("4b"),
	}
}

func bytes32(fill byte) *model.Bytes32 {
	var b model.Bytes32
	for i := range b {
		b[i] = fill
	}
	return &b
}

// headsUp is a two-player game in the given state.
func headsUp(id uint64, state model.GameState) model.Game {
	p2 := bob
	return model.Game{
		Id:         id,
		TableId:    1,
		State:      state,
		Player1:    alice,
		Player2:    &p2,
		BuyIn:      1000,
		SmallBlind: 5,
		BigBlind:   10,
		MinRaise:   10,
		Board:      []uint32{},
	}
}
