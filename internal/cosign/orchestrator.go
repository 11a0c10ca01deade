package cosign

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/blockchain"
	"github.com/onflow/cadence"
	"github.com/onflow/flow-go-sdk"
	"github.com/rs/zerolog/log"
)

const (
	StartGameFunction = "start_game"

	// each player authorizes (session_id, table_id, buy_in)
	startGameAuthArity = 3
)

var (
	ErrArtifactExpired = errors.New("start game authorization has expired")
	ErrSamePlayer      = errors.New("a player cannot start a game against itself")
)

// State is how far a two-party start_game has progressed.
type State int

const (
	Built State = iota
	P1AuthExtracted
	P1AuthSigned
	P2Injected
	Submitted
)

func (s State) String() string {
	switch s {
	case Built:
		return "BUILT"
	case P1AuthExtracted:
		return "P1_AUTH_EXTRACTED"
	case P1AuthSigned:
		return "P1_AUTH_SIGNED"
	case P2Injected:
		return "P2_INJECTED"
	case Submitted:
		return "SUBMITTED"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type StartGame struct {
	SessionId uint64
	TableId   uint64
	Player1   flow.Address
	Player2   flow.Address
	BuyIn     int64
}

// ParsedStartGame is what a signed artifact commits its signer to.
type ParsedStartGame struct {
	SessionId        uint64       `json:"sessionId"`
	TableId          uint64       `json:"tableId"`
	Player1          flow.Address `json:"player1"`
	BuyIn            int64        `json:"buyIn"`
	ExpirationLedger uint32       `json:"expirationLedger"`
}

type Options struct {
	Contract    flow.Address
	Network     string
	AuthLedgers uint32
}

// Orchestrator lets the first player authorize start_game offline and the
// second player assemble and submit it. Entries are matched to players by
// credential address only.
type Orchestrator struct {
	ledger      blockchain.Ledger
	contract    flow.Address
	network     string
	authLedgers uint32
}

func NewOrchestrator(ledger blockchain.Ledger, opts Options) *Orchestrator {
	return &Orchestrator{
		ledger:      ledger,
		contract:    opts.Contract,
		network:     opts.Network,
		authLedgers: opts.AuthLedgers,
	}
}

// NewSessionId draws a session id that fits the contract's u32 session range.
func NewSessionId() (uint64, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, err
	}
	id := binary.BigEndian.Uint32(b[:])
	if id == 0 {
		id = math.MaxUint32
	}
	return uint64(id), nil
}

func (o *Orchestrator) invocation(game StartGame) blockchain.Invocation {
	return blockchain.NewInvocation(o.contract, StartGameFunction,
		cadence.NewUInt64(game.SessionId),
		cadence.NewUInt64(game.TableId),
		blockchain.AddressValue(game.Player1),
		blockchain.AddressValue(game.Player2),
		cadence.NewInt64(game.BuyIn))
}

// build simulates start_game with the second player as submitter, so the
// simulation asks for both players' authorizations.
func (o *Orchestrator) build(ctx context.Context, game StartGame) (*blockchain.Transaction, uint32, error) {
	if game.Player1 == game.Player2 {
		return nil, 0, ErrSamePlayer
	}

	sequence, err := o.ledger.AccountSequence(ctx, game.Player2)
	if err != nil {
		return nil, 0, err
	}
	tx := blockchain.NewTransaction(o.network, game.Player2, sequence+1, o.invocation(game))

	sim, err := o.ledger.Simulate(ctx, tx)
	if err != nil {
		return nil, 0, err
	}
	tx.Auth = sim.Auth

	logState(game.SessionId, Built)
	return tx, sim.LatestLedger, nil
}

// Prepare runs on the first player's side and returns the signed
// authorization artifact to hand to the second player.
func (o *Orchestrator) Prepare(ctx context.Context, game StartGame, p1 blockchain.Signer) (string, error) {
	game.Player1 = p1.Address()

	tx, latest, err := o.build(ctx, game)
	if err != nil {
		return "", err
	}

	idx, ok := tx.EntryFor(game.Player1)
	if !ok {
		return "", fmt.Errorf("%w: %s did not require %s", blockchain.ErrAuthEntryNotFound, StartGameFunction, game.Player1.Hex())
	}
	entry := tx.Auth[idx]
	logState(game.SessionId, P1AuthExtracted)

	if err := blockchain.AuthorizeEntry(ctx, &entry, p1, o.network, latest+o.authLedgers); err != nil {
		return "", err
	}

	artifact, err := blockchain.EncodeAuthEntry(entry)
	if err != nil {
		return "", err
	}
	logState(game.SessionId, P1AuthSigned)
	return artifact, nil
}

// Parse decodes an artifact and checks that it authorizes start_game and
// nothing else.
func (o *Orchestrator) Parse(artifact string) (*ParsedStartGame, blockchain.AuthEntry, error) {
	entry, err := blockchain.DecodeAuthEntry(artifact)
	if err != nil {
		return nil, blockchain.AuthEntry{}, err
	}
	if !entry.AddressBound() {
		return nil, blockchain.AuthEntry{}, fmt.Errorf("%w: %s", blockchain.ErrUnsupportedCredentialType, entry.Credentials.Type)
	}

	inv := entry.RootInvocation
	if inv.Function != StartGameFunction {
		return nil, blockchain.AuthEntry{}, fmt.Errorf("%w: authorizes %q, expected %s", blockchain.ErrMalformedAuthEntry, inv.Function, StartGameFunction)
	}
	if len(inv.Args) != startGameAuthArity {
		return nil, blockchain.AuthEntry{}, fmt.Errorf("%w: %d arguments, expected %d", blockchain.ErrMalformedAuthEntry, len(inv.Args), startGameAuthArity)
	}

	sessionId, ok := inv.Args[0].(cadence.UInt64)
	if !ok {
		return nil, blockchain.AuthEntry{}, fmt.Errorf("%w: session id is %T", blockchain.ErrMalformedAuthEntry, inv.Args[0])
	}
	tableId, ok := inv.Args[1].(cadence.UInt64)
	if !ok {
		return nil, blockchain.AuthEntry{}, fmt.Errorf("%w: table id is %T", blockchain.ErrMalformedAuthEntry, inv.Args[1])
	}
	buyIn, ok := inv.Args[2].(cadence.Int64)
	if !ok {
		return nil, blockchain.AuthEntry{}, fmt.Errorf("%w: buy-in is %T", blockchain.ErrMalformedAuthEntry, inv.Args[2])
	}

	return &ParsedStartGame{
		SessionId:        uint64(sessionId),
		TableId:          uint64(tableId),
		Player1:          entry.Credentials.Address,
		BuyIn:            int64(buyIn),
		ExpirationLedger: entry.Credentials.ExpirationLedger,
	}, entry, nil
}

// Inject runs on the second player's side. Every structural check happens
// before p2 is asked for a signature.
func (o *Orchestrator) Inject(ctx context.Context, artifact string, p2 blockchain.Signer) (*blockchain.Transaction, error) {
	parsed, signed, err := o.Parse(artifact)
	if err != nil {
		return nil, err
	}

	game := StartGame{
		SessionId: parsed.SessionId,
		TableId:   parsed.TableId,
		Player1:   parsed.Player1,
		Player2:   p2.Address(),
		BuyIn:     parsed.BuyIn,
	}
	tx, latest, err := o.build(ctx, game)
	if err != nil {
		return nil, err
	}

	if parsed.ExpirationLedger <= latest {
		return nil, fmt.Errorf("%w: expired at ledger %d, ledger is %d", ErrArtifactExpired, parsed.ExpirationLedger, latest)
	}
	if n := len(tx.AddressEntries()); n != 2 {
		return nil, fmt.Errorf("%w: %d address-bound entries, expected 2", blockchain.ErrMalformedAuthEntry, n)
	}

	p1Idx, ok := tx.EntryFor(game.Player1)
	if !ok {
		return nil, fmt.Errorf("%w: no entry for player 1 %s", blockchain.ErrAuthEntryNotFound, game.Player1.Hex())
	}
	p2Idx, ok := tx.EntryFor(game.Player2)
	if !ok {
		return nil, fmt.Errorf("%w: no entry for player 2 %s", blockchain.ErrAuthEntryNotFound, game.Player2.Hex())
	}
	if !tx.Auth[p1Idx].RootInvocation.Same(signed.RootInvocation) {
		return nil, fmt.Errorf("%w: artifact authorizes %s, transaction needs %s",
			blockchain.ErrMalformedAuthEntry, signed.RootInvocation, tx.Auth[p1Idx].RootInvocation)
	}

	for i, entry := range tx.Auth {
		if !entry.AddressBound() {
			tx.Auth[i] = blockchain.SourceAccountEntry(entry.RootInvocation)
		}
	}
	tx.Auth[p1Idx] = signed

	if err := blockchain.AuthorizeEntry(ctx, &tx.Auth[p2Idx], p2, o.network, latest+o.authLedgers); err != nil {
		return nil, err
	}

	logState(game.SessionId, P2Injected)
	return tx, nil
}

// Finalize signs the envelope and submits. The session id doubles as the
// game id.
func (o *Orchestrator) Finalize(ctx context.Context, tx *blockchain.Transaction, p2 blockchain.Signer) (uint64, error) {
	if tx.Invocation.Function != StartGameFunction || len(tx.Invocation.Args) == 0 {
		return 0, fmt.Errorf("%w: not a %s transaction", blockchain.ErrMalformedAuthEntry, StartGameFunction)
	}
	sessionId, ok := tx.Invocation.Args[0].(cadence.UInt64)
	if !ok {
		return 0, fmt.Errorf("%w: session id is %T", blockchain.ErrMalformedAuthEntry, tx.Invocation.Args[0])
	}

	if err := tx.Sign(ctx, p2); err != nil {
		return 0, err
	}

	receipt, err := o.ledger.Submit(ctx, tx)
	if err != nil {
		log.Warn().Err(err).Uint64("sessionId", uint64(sessionId)).Msg("Start game submission failed")
		return 0, err
	}

	log.Info().
		Uint64("sessionId", uint64(sessionId)).
		Str("hash", receipt.Hash).
		Uint32("ledger", receipt.Ledger).
		Msg("Start game submitted")
	logState(uint64(sessionId), Submitted)
	return uint64(sessionId), nil
}

func logState(sessionId uint64, state State) {
	log.Debug().Uint64("sessionId", sessionId).Str("state", state.String()).Msg("Start game progressed")
}
