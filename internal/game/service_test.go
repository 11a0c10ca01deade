package game

import (
	"context"
	"strings"
	"testing"

	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/blockchain"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/blockchain/blockchaintest"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/model"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/secret"
	"github.com/kollektive-hackathon/pokerzk-backend/pkg/handrank"
	"github.com/kollektive-hackathon/pokerzk-backend/pkg/shuffle"
	"github.com/onflow/cadence"
	"github.com/onflow/flow-go-sdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createEvent(ledger uint32, gameId uint64, creator flow.Address) blockchain.Event {
	return blockchain.Event{
		Id:       "evt",
		Ledger:   ledger,
		Contract: contractAddress,
		Topic:    []cadence.Value{cadence.String("CREATE"), cadence.NewUInt64(gameId)},
		Value:    cadence.Address(creator),
	}
}

func bytesArg(t *testing.T, v cadence.Value) []byte {
	t.Helper()
	arr, ok := v.(cadence.Array)
	require.True(t, ok, "argument is %T", v)
	out := make([]byte, len(arr.Values))
	for i, x := range arr.Values {
		out[i] = byte(x.(cadence.UInt8))
	}
	return out
}

func Test_Service_GetOpenGames(t *testing.T) {
	f := newFixture(t)

	open3 := headsUp(3, model.WaitingForPlayers)
	open3.Player2 = nil
	filled := headsUp(5, model.WaitingForPlayers)
	open7 := headsUp(7, model.WaitingForPlayers)
	open7.Player2 = nil
	started := headsUp(8, model.PreFlop)
	for _, g := range []model.Game{open3, filled, open7, started} {
		f.contract.put(g)
	}

	f.ledger.EventLog = []blockchain.Event{
		createEvent(100, 3, alice),
		createEvent(101, 5, alice),
		createEvent(102, 3, alice),
		createEvent(103, 0, alice),
		createEvent(104, 7, carol),
		createEvent(105, 8, alice),
		createEvent(106, 9, alice),
	}

	games, err := f.service.GetOpenGames(context.Background())
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, uint64(7), games[0].Id)
	assert.Equal(t, uint64(3), games[1].Id)
	assert.Len(t, f.contract.called("get_game"), 5)
}

func Test_Service_GetOpenGamesEmpty(t *testing.T) {
	f := newFixture(t)

	games, err := f.service.GetOpenGames(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, games)
	assert.Empty(t, games)
}

func Test_Service_CommitAndRevealSeed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	signer := blockchaintest.NewSigner(t, alice)
	key := secret.Key{GameId: 4, Player: alice}

	f.contract.put(headsUp(4, model.ShuffleCommit))
	require.NoError(t, f.service.CommitSeed(ctx, signer, 4))

	stored, err := f.secrets.Get(ctx, key)
	require.NoError(t, err)
	commits := f.contract.called("commit_seed")
	require.Len(t, commits, 1)
	assert.Equal(t, stored.Commitment[:], bytesArg(t, commits[0].Args[2]))
	assert.Equal(t, 1, f.ledger.SubmittedCount())
	assert.Positive(t, signer.Calls())

	g := headsUp(4, model.ShuffleReveal)
	c := model.Bytes32(stored.Commitment)
	g.SeedCommitment1 = &c
	g.SeedCommitment2 = bytes32(9)
	f.contract.put(g)

	require.NoError(t, f.service.RevealSeed(ctx, signer, 4))
	reveals := f.contract.called("reveal_seed")
	require.Len(t, reveals, 1)
	assert.Equal(t, stored.Seed[:], bytesArg(t, reveals[0].Args[2]))

	_, err = f.secrets.Get(ctx, key)
	assert.ErrorIs(t, err, secret.ErrSecretUnavailable)
}

func Test_Service_CommitReusesUncommittedSeed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	signer := blockchaintest.NewSigner(t, alice)
	key := secret.Key{GameId: 4, Player: alice}

	earlier, err := shuffle.NewSeedSecret()
	require.NoError(t, err)
	require.NoError(t, f.secrets.Put(ctx, key, earlier))

	f.contract.put(headsUp(4, model.ShuffleCommit))
	require.NoError(t, f.service.CommitSeed(ctx, signer, 4))

	commits := f.contract.called("commit_seed")
	require.Len(t, commits, 1)
	assert.Equal(t, earlier.Commitment[:], bytesArg(t, commits[0].Args[2]))
}

func Test_Service_CommitRefusedLocally(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	signer := blockchaintest.NewSigner(t, alice)

	committed := headsUp(4, model.ShuffleCommit)
	committed.SeedCommitment1 = bytes32(1)
	f.contract.put(committed)
	assert.ErrorIs(t, f.service.CommitSeed(ctx, signer, 4), blockchain.ErrAlreadyCommitted)

	f.contract.put(headsUp(5, model.PreFlop))
	err := f.service.CommitSeed(ctx, signer, 5)
	ce, ok := blockchain.AsContractError(err)
	require.True(t, ok)
	assert.Equal(t, blockchain.CodeInvalidState, ce.Code)

	outsider := blockchaintest.NewSigner(t, carol)
	f.contract.put(headsUp(6, model.ShuffleCommit))
	assert.ErrorIs(t, f.service.CommitSeed(ctx, outsider, 6), blockchain.ErrNotPlayer)

	assert.Empty(t, f.contract.called("commit_seed"))
	_, err = f.secrets.Get(ctx, secret.Key{GameId: 5, Player: alice})
	assert.ErrorIs(t, err, secret.ErrSecretUnavailable)
}

func Test_Service_RevealWithoutSeed(t *testing.T) {
	f := newFixture(t)
	signer := blockchaintest.NewSigner(t, alice)

	err := f.service.RevealSeed(context.Background(), signer, 4)
	assert.ErrorIs(t, err, secret.ErrSecretUnavailable)
	assert.Zero(t, f.ledger.SubmittedCount())
}

func Test_Service_RevealRejectedKeepsSeed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	signer := blockchaintest.NewSigner(t, alice)
	key := secret.Key{GameId: 4, Player: alice}

	seed, err := shuffle.NewSeedSecret()
	require.NoError(t, err)
	require.NoError(t, f.secrets.Put(ctx, key, seed))

	f.contract.fail("reveal_seed", blockchain.NewContractError(uint32(blockchain.CodeInvalidState)))
	assert.Error(t, f.service.RevealSeed(ctx, signer, 4))
	_, err = f.secrets.Get(ctx, key)
	assert.NoError(t, err)

	f.contract.fail("reveal_seed", blockchain.NewContractError(uint32(blockchain.CodeAlreadyRevealed)))
	assert.Error(t, f.service.RevealSeed(ctx, signer, 4))
	_, err = f.secrets.Get(ctx, key)
	assert.ErrorIs(t, err, secret.ErrSecretUnavailable)
}

func Test_Service_ActCarriesHandCommitment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	signer := blockchaintest.NewSigner(t, alice)

	g := headsUp(4, model.PreFlop)
	g.FinalSeed = bytes32(3)
	f.contract.put(g)
	hole, ok := MyHoleCards(g, alice)
	require.True(t, ok)
	expected, err := handrank.HandCommitment([2]handrank.Card{handrank.Card(hole[0]), handrank.Card(hole[1])})
	require.NoError(t, err)

	require.NoError(t, f.service.Act(ctx, signer, 4, model.Raise, 40))
	require.NoError(t, f.service.Act(ctx, signer, 4, model.Check, 0))

	acts := f.contract.called("act")
	require.Len(t, acts, 2)

	raise := acts[0].Args
	assert.Equal(t, cadence.NewUInt32(uint32(model.Raise)), raise[2])
	assert.Equal(t, cadence.NewInt64(40), raise[3])
	commitment, ok := raise[5].(cadence.Optional)
	require.True(t, ok)
	require.NotNil(t, commitment.Value)
	assert.Equal(t, expected[:], bytesArg(t, commitment.Value))

	check, ok := acts[1].Args[5].(cadence.Optional)
	require.True(t, ok)
	assert.Nil(t, check.Value)

	assert.ErrorIs(t, f.service.Act(ctx, signer, 4, model.Action(9), 0), ErrUnknownAction)
}

func Test_Service_RevealHandSendsRankAndProof(t *testing.T) {
	f := newFixture(t)
	signer := blockchaintest.NewSigner(t, bob)

	g := headsUp(4, model.Showdown)
	g.FinalSeed = bytes32(5)
	deck, err := shuffle.DeriveDeck(g.FinalSeed[:])
	require.NoError(t, err)
	g.Board = []uint32{deck[4], deck[5], deck[6], deck[7], deck[8]}
	g.BoardRevealed = 5
	f.contract.put(g)

	require.NoError(t, f.service.RevealHand(context.Background(), signer, 4))

	reveals := f.contract.called("reveal_hand")
	require.Len(t, reveals, 1)
	args := reveals[0].Args
	cards := args[2].(cadence.Array)
	assert.Equal(t, cadence.NewUInt32(deck[2]), cards.Values[0])
	assert.Equal(t, cadence.NewUInt32(deck[3]), cards.Values[1])

	hole := [2]handrank.Card{handrank.Card(deck[2]), handrank.Card(deck[3])}
	rank, err := handrank.Rank(hole, handrank.FromIndices(g.Board))
	require.NoError(t, err)
	assert.Equal(t, cadence.NewUInt32(uint32(rank)), args[3])
	assert.Len(t, bytesArg(t, args[4]), handrank.ProofLength)
}

func Test_Service_RevealHandWithoutFinalSeed(t *testing.T) {
	f := newFixture(t)
	f.contract.put(headsUp(4, model.Showdown))

	err := f.service.RevealHand(context.Background(), blockchaintest.NewSigner(t, alice), 4)
	assert.ErrorIs(t, err, ErrHoleCardsUnavailable)
	assert.Empty(t, f.contract.called("reveal_hand"))
}

func Test_Service_SendChatLength(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	signer := blockchaintest.NewSigner(t, alice)

	err := f.service.SendChat(ctx, signer, 4, strings.Repeat("x", MaxChatLength+1))
	assert.ErrorIs(t, err, blockchain.ErrMessageTooLong)
	assert.Empty(t, f.contract.called("send_chat"))

	require.NoError(t, f.service.SendChat(ctx, signer, 4, strings.Repeat("x", MaxChatLength)))
	assert.Len(t, f.contract.called("send_chat"), 1)
}

func Test_Service_CreateGameRemembersCurrent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.contract.results["create_game"] = cadence.NewUInt64(12)

	gameId, err := f.service.CreateGame(ctx, blockchaintest.NewSigner(t, alice), 1, 500)
	require.NoError(t, err)
	assert.Equal(t, uint64(12), gameId)

	current, ok, err := f.index.Get(ctx, alice)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(12), current)
}

func Test_Service_SitAtTableWaitingIsNotRemembered(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.contract.results["sit_at_table"] = record(map[string]cadence.Value{
		"waiting": cadence.NewBool(true),
		"game_id": cadence.NewUInt64(0),
	})

	sit, err := f.service.SitAtTable(ctx, blockchaintest.NewSigner(t, alice), 1, 500)
	require.NoError(t, err)
	assert.True(t, sit.Waiting)

	_, ok, err := f.index.Get(ctx, alice)
	require.NoError(t, err)
	assert.False(t, ok)
}

func Test_Service_CurrentGameKeepsIndexOnTransportError(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.index.Set(ctx, alice, 4))

	f.contract.fail("get_game", blockchain.ErrTransport)
	_, err := f.service.CurrentGame(ctx, alice)
	assert.ErrorIs(t, err, blockchain.ErrTransport)
	_, ok, _ := f.index.Get(ctx, alice)
	assert.True(t, ok)

	f.contract.fail("get_game", nil)
	game, err := f.service.CurrentGame(ctx, alice)
	require.NoError(t, err)
	assert.Nil(t, game)
	_, ok, _ = f.index.Get(ctx, alice)
	assert.False(t, ok)
}

func Test_Service_CurrentGameDropsFinished(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.index.Set(ctx, alice, 4))

	f.contract.put(headsUp(4, model.PreFlop))
	game, err := f.service.CurrentGame(ctx, alice)
	require.NoError(t, err)
	require.NotNil(t, game)
	assert.Equal(t, uint64(4), game.Id)

	f.contract.put(headsUp(4, model.Finished))
	game, err = f.service.CurrentGame(ctx, alice)
	require.NoError(t, err)
	assert.Nil(t, game)
	_, ok, _ := f.index.Get(ctx, alice)
	assert.False(t, ok)
}

func Test_Service_ViewToleratesMissingConfig(t *testing.T) {
	f := newFixture(t)
	f.contract.put(headsUp(4, model.PreFlop))

	view, err := f.service.View(context.Background(), 4, alice)
	require.NoError(t, err)
	assert.False(t, view.CanClaimTimeout)
	assert.Nil(t, view.TimeoutAt)

	f.contract.config = testConfig()
	view, err = f.service.View(context.Background(), 4, alice)
	require.NoError(t, err)
	assert.NotNil(t, view.TimeoutAt)
}

func Test_Service_Abandon(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := secret.Key{GameId: 4, Player: alice}
	seed, err := shuffle.NewSeedSecret()
	require.NoError(t, err)
	require.NoError(t, f.secrets.Put(ctx, key, seed))
	require.NoError(t, f.index.Set(ctx, alice, 4))

	require.NoError(t, f.service.Abandon(ctx, alice, 4))

	_, err = f.secrets.Get(ctx, key)
	assert.ErrorIs(t, err, secret.ErrSecretUnavailable)
	_, ok, _ := f.index.Get(ctx, alice)
	assert.False(t, ok)
	assert.Zero(t, f.ledger.SubmittedCount())
}

func Test_Service_ListTablesSkipsMissing(t *testing.T) {
	f := newFixture(t)
	table := record(map[string]cadence.Value{
		"small_blind": cadence.NewInt64(5),
		"big_blind":   cadence.NewInt64(10),
		"min_buy_in":  cadence.NewInt64(100),
		"max_buy_in":  cadence.NewInt64(1000),
		"max_seats":   cadence.NewUInt32(2),
	})
	waiting := record(map[string]cadence.Value{
		"player1":    cadence.Address(alice),
		"buy_in":     cadence.NewInt64(200),
		"created_at": cadence.NewUInt64(77),
	})

	f.ledger.SimulateFunc = func(tx *blockchain.Transaction) (*blockchain.Simulation, error) {
		inv := tx.Invocation
		switch inv.Function {
		case "get_table_count":
			return &blockchain.Simulation{Result: cadence.NewUInt64(3)}, nil
		case "get_table":
			if inv.Args[0].(cadence.UInt64) == 1 {
				return nil, blockchain.ErrTableNotFound
			}
			return &blockchain.Simulation{Result: table}, nil
		case "get_table_waiting":
			if inv.Args[0].(cadence.UInt64) == 2 {
				return &blockchain.Simulation{Result: optional(waiting)}, nil
			}
			return nil, blockchain.ErrNoWaitingSession
		}
		return nil, blockchain.ErrTransport
	}

	tables, err := f.service.ListTables(context.Background())
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, uint64(0), tables[0].Id)
	assert.Nil(t, tables[0].Waiting)
	assert.Equal(t, uint64(2), tables[1].Id)
	require.NotNil(t, tables[1].Waiting)
	assert.Equal(t, alice, tables[1].Waiting.Player1)
	assert.Equal(t, int64(200), tables[1].Waiting.BuyIn)
}
