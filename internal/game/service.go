package game

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/kollektive-hackathon/pokerzk-backend/internal/history"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/blockchain"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/model"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/secret"
	"github.com/kollektive-hackathon/pokerzk-backend/pkg/handrank"
	"github.com/kollektive-hackathon/pokerzk-backend/pkg/shuffle"
	"github.com/onflow/cadence"
	"github.com/onflow/flow-go-sdk"
	"github.com/rs/zerolog/log"
	"github.com/thoas/go-funk"
)

const MaxChatLength = 280

var (
	ErrHoleCardsUnavailable = errors.New("hole cards are not known yet")
	ErrUnknownAction        = errors.New("unknown action")
)

// Tracker follows games for live updates.
type Tracker interface {
	Track(gameId uint64, player flow.Address)
	Untrack(gameId uint64, player flow.Address)
}

type Options struct {
	Contract    flow.Address
	Network     string
	AuthLedgers uint32
	EventWindow uint32
	EventLimit  int
	Secrets     secret.Store
	Index       secret.GameIndex
	Guard       *ActionGuard
	Now         func() time.Time
}

// Service is the game client: one method per contract operation plus the
// derived reads built on them.
type Service struct {
	bridge  *gameContractBridge
	ledger  blockchain.Ledger
	history *history.Service
	secrets secret.Store
	index   secret.GameIndex
	guard   *ActionGuard
	tracker Tracker
	now     func() time.Time
}

func NewService(ledger blockchain.Ledger, opts Options) *Service {
	s := &Service{
		bridge: &gameContractBridge{
			ledger:      ledger,
			contract:    opts.Contract,
			network:     opts.Network,
			authLedgers: opts.AuthLedgers,
		},
		ledger:  ledger,
		history: history.NewService(ledger, opts.Contract, opts.EventWindow, opts.EventLimit),
		secrets: opts.Secrets,
		index:   opts.Index,
		guard:   opts.Guard,
		now:     opts.Now,
	}
	if s.secrets == nil {
		s.secrets = secret.NewMemoryStore()
	}
	if s.index == nil {
		s.index = secret.NewMemoryGameIndex()
	}
	if s.guard == nil {
		s.guard = NewActionGuard()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *Service) SetTracker(t Tracker) {
	s.tracker = t
}

func (s *Service) History() *history.Service {
	return s.history
}

func gameIdValue(id uint64) cadence.UInt64 {
	return cadence.NewUInt64(id)
}

func (s *Service) CreateGame(ctx context.Context, signer blockchain.Signer, tableId uint64, buyIn int64) (uint64, error) {
	var gameId uint64
	err := s.guard.Do(signer.Address(), func() error {
		result, err := s.bridge.invoke(ctx, signer, "create_game",
			blockchain.AddressValue(signer.Address()),
			cadence.NewUInt64(tableId),
			cadence.NewInt64(buyIn))
		if err != nil {
			return err
		}
		if gameId, err = toUint64(result); err != nil {
			return err
		}
		s.remember(ctx, signer.Address(), gameId)
		return nil
	})
	return gameId, err
}

func (s *Service) SitAtTable(ctx context.Context, signer blockchain.Signer, tableId uint64, buyIn int64) (*model.SitResult, error) {
	var sit *model.SitResult
	err := s.guard.Do(signer.Address(), func() error {
		result, err := s.bridge.invoke(ctx, signer, "sit_at_table",
			blockchain.AddressValue(signer.Address()),
			cadence.NewUInt64(tableId),
			cadence.NewInt64(buyIn))
		if err != nil {
			return err
		}
		if sit, err = decodeSitResult(result); err != nil {
			return err
		}
		if !sit.Waiting {
			s.remember(ctx, signer.Address(), sit.GameId)
		}
		return nil
	})
	return sit, err
}

func (s *Service) CancelWaiting(ctx context.Context, signer blockchain.Signer, tableId uint64) error {
	return s.guard.Do(signer.Address(), func() error {
		_, err := s.bridge.invoke(ctx, signer, "cancel_waiting",
			blockchain.AddressValue(signer.Address()),
			cadence.NewUInt64(tableId))
		return err
	})
}

func (s *Service) JoinGame(ctx context.Context, signer blockchain.Signer, gameId uint64) error {
	return s.guard.Do(signer.Address(), func() error {
		_, err := s.bridge.invoke(ctx, signer, "join_game",
			blockchain.AddressValue(signer.Address()),
			gameIdValue(gameId))
		if err != nil {
			s.forgetOnAuthoritative(ctx, signer.Address(), gameId, err)
			return err
		}
		s.remember(ctx, signer.Address(), gameId)
		return nil
	})
}

// CommitSeed stores a fresh seed before its commitment goes on chain. A seed
// already stored for this hand and never committed is re-used, so two
// sessions of one address end up committing the same value.
func (s *Service) CommitSeed(ctx context.Context, signer blockchain.Signer, gameId uint64) error {
	player := signer.Address()
	return s.guard.Do(player, func() error {
		game, err := s.GetGame(ctx, gameId)
		if err != nil {
			s.forgetOnAuthoritative(ctx, player, gameId, err)
			return err
		}
		seat := game.SeatOf(player)
		if seat == shuffle.NoSeat {
			return blockchain.ErrNotPlayer
		}
		if game.State != model.ShuffleCommit {
			return blockchain.NewContractError(uint32(blockchain.CodeInvalidState))
		}
		if game.Commitment(seat) != nil {
			return blockchain.ErrAlreadyCommitted
		}

		key := secret.Key{GameId: gameId, Player: player}
		seed, err := s.seedFor(ctx, key)
		if err != nil {
			return err
		}

		_, err = s.bridge.invoke(ctx, signer, "commit_seed",
			blockchain.AddressValue(player),
			gameIdValue(gameId),
			blockchain.BytesValue(seed.Commitment[:]))
		return err
	})
}

func (s *Service) seedFor(ctx context.Context, key secret.Key) (shuffle.SeedSecret, error) {
	stored, err := s.secrets.Get(ctx, key)
	if err == nil {
		log.Debug().Str("key", key.String()).Msg("Re-using stored seed")
		return stored, nil
	}
	if !errors.Is(err, secret.ErrSecretUnavailable) {
		return shuffle.SeedSecret{}, err
	}

	fresh, err := shuffle.NewSeedSecret()
	if err != nil {
		return shuffle.SeedSecret{}, err
	}
	err = s.secrets.Put(ctx, key, fresh)
	if errors.Is(err, secret.ErrSecretExists) {
		return s.secrets.Get(ctx, key)
	}
	if err != nil {
		return shuffle.SeedSecret{}, err
	}
	return fresh, nil
}

// RevealSeed discloses the stored seed and erases it once the contract has
// accepted it.
func (s *Service) RevealSeed(ctx context.Context, signer blockchain.Signer, gameId uint64) error {
	player := signer.Address()
	return s.guard.Do(player, func() error {
		key := secret.Key{GameId: gameId, Player: player}
		seed, err := s.secrets.Get(ctx, key)
		if err != nil {
			return err
		}
		if !shuffle.Verify(seed.Commitment, seed.Seed[:]) {
			return fmt.Errorf("%w: stored seed does not match its commitment", secret.ErrSecretUnavailable)
		}

		_, err = s.bridge.invoke(ctx, signer, "reveal_seed",
			blockchain.AddressValue(player),
			gameIdValue(gameId),
			blockchain.BytesValue(seed.Seed[:]))
		if ce, ok := blockchain.AsContractError(err); ok && ce.Code == blockchain.CodeAlreadyRevealed {
			s.eraseSeed(ctx, key)
			return err
		}
		if err != nil {
			return err
		}
		s.eraseSeed(ctx, key)
		return nil
	})
}

func (s *Service) eraseSeed(ctx context.Context, key secret.Key) {
	if err := s.secrets.Delete(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key.String()).Msg("Could not erase revealed seed")
	}
}

func (s *Service) PostBlinds(ctx context.Context, signer blockchain.Signer, gameId uint64) error {
	return s.guard.Do(signer.Address(), func() error {
		_, err := s.bridge.invoke(ctx, signer, "post_blinds", gameIdValue(gameId))
		return err
	})
}

// Act sends a betting action. Call and Raise carry the hand commitment so the
// hole cards can be opened at showdown.
func (s *Service) Act(ctx context.Context, signer blockchain.Signer, gameId uint64, action model.Action, raiseAmount int64) error {
	if !action.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownAction, uint32(action))
	}
	player := signer.Address()

	return s.guard.Do(player, func() error {
		commitment := cadence.NewOptional(nil)
		if action == model.Call || action == model.Raise {
			game, err := s.GetGame(ctx, gameId)
			if err != nil {
				s.forgetOnAuthoritative(ctx, player, gameId, err)
				return err
			}
			hole, ok := MyHoleCards(*game, player)
			if !ok {
				return ErrHoleCardsUnavailable
			}
			c, err := handrank.HandCommitment([2]handrank.Card{handrank.Card(hole[0]), handrank.Card(hole[1])})
			if err != nil {
				return err
			}
			commitment = cadence.NewOptional(blockchain.BytesValue(c[:]))
		}

		_, err := s.bridge.invoke(ctx, signer, "act",
			blockchain.AddressValue(player),
			gameIdValue(gameId),
			cadence.NewUInt32(uint32(action)),
			cadence.NewInt64(raiseAmount),
			cadence.NewOptional(nil),
			commitment)
		return err
	})
}

// RevealHand opens the hole cards with the locally computed rank and proof.
func (s *Service) RevealHand(ctx context.Context, signer blockchain.Signer, gameId uint64) error {
	player := signer.Address()
	return s.guard.Do(player, func() error {
		game, err := s.GetGame(ctx, gameId)
		if err != nil {
			s.forgetOnAuthoritative(ctx, player, gameId, err)
			return err
		}
		hole, ok := MyHoleCards(*game, player)
		if !ok {
			return ErrHoleCardsUnavailable
		}

		cards := [2]handrank.Card{handrank.Card(hole[0]), handrank.Card(hole[1])}
		board := handrank.FromIndices(game.RevealedBoard())
		rank, err := handrank.Rank(cards, board)
		if err != nil {
			return err
		}
		proof, err := handrank.Proof(cards, board, rank)
		if err != nil {
			return err
		}

		_, err = s.bridge.invoke(ctx, signer, "reveal_hand",
			blockchain.AddressValue(player),
			gameIdValue(gameId),
			cadence.NewArray([]cadence.Value{cadence.NewUInt32(hole[0]), cadence.NewUInt32(hole[1])}),
			cadence.NewUInt32(uint32(rank)),
			blockchain.BytesValue(proof[:]))
		return err
	})
}

func (s *Service) ClaimTimeout(ctx context.Context, signer blockchain.Signer, gameId uint64) error {
	return s.guard.Do(signer.Address(), func() error {
		_, err := s.bridge.invoke(ctx, signer, "claim_timeout",
			blockchain.AddressValue(signer.Address()),
			gameIdValue(gameId))
		return err
	})
}

func (s *Service) AdvanceTimeout(ctx context.Context, signer blockchain.Signer, gameId uint64) error {
	return s.guard.Do(signer.Address(), func() error {
		_, err := s.bridge.invoke(ctx, signer, "advance_timeout", gameIdValue(gameId))
		return err
	})
}

func (s *Service) SendChat(ctx context.Context, signer blockchain.Signer, gameId uint64, message string) error {
	if len(message) > MaxChatLength {
		return blockchain.ErrMessageTooLong
	}
	text, err := cadence.NewString(message)
	if err != nil {
		return err
	}
	return s.guard.Do(signer.Address(), func() error {
		_, err := s.bridge.invoke(ctx, signer, "send_chat",
			blockchain.AddressValue(signer.Address()),
			gameIdValue(gameId),
			text)
		return err
	})
}

func (s *Service) GetGame(ctx context.Context, gameId uint64) (*model.Game, error) {
	result, err := s.bridge.read(ctx, "get_game", gameIdValue(gameId))
	if err != nil {
		return nil, err
	}
	return decodeGame(result)
}

func (s *Service) GetTable(ctx context.Context, tableId uint64) (*model.Table, error) {
	result, err := s.bridge.read(ctx, "get_table", cadence.NewUInt64(tableId))
	if err != nil {
		return nil, err
	}
	return decodeTable(result)
}

// GetTableWaiting returns nil when nobody is waiting at the table.
func (s *Service) GetTableWaiting(ctx context.Context, tableId uint64) (*model.WaitingSession, error) {
	result, err := s.bridge.read(ctx, "get_table_waiting", cadence.NewUInt64(tableId))
	if errors.Is(err, blockchain.ErrNoWaitingSession) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	inner, ok := unwrapOptional(result)
	if !ok {
		return nil, nil
	}
	return decodeWaitingSession(inner)
}

func (s *Service) GetTableCount(ctx context.Context) (uint64, error) {
	result, err := s.bridge.read(ctx, "get_table_count")
	if err != nil {
		return 0, err
	}
	return toUint64(result)
}

func (s *Service) GetConfig(ctx context.Context) (*model.GameConfig, error) {
	result, err := s.bridge.read(ctx, "get_config")
	if err != nil {
		return nil, err
	}
	return decodeConfig(result)
}

// ListTables reads every table with its waiting session, if any. Table ids
// run from 0 to count-1.
func (s *Service) ListTables(ctx context.Context) ([]model.TableListing, error) {
	count, err := s.GetTableCount(ctx)
	if err != nil {
		return nil, err
	}

	listings := make([]model.TableListing, 0, count)
	for id := uint64(0); id < count; id++ {
		table, err := s.GetTable(ctx, id)
		if errors.Is(err, blockchain.ErrTableNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		waiting, err := s.GetTableWaiting(ctx, id)
		if err != nil {
			return nil, err
		}
		listings = append(listings, model.TableListing{Id: id, Table: *table, Waiting: waiting})
	}
	return listings, nil
}

// GetOpenGames rebuilds the list of games waiting for a second player from
// recent CREATE events. Each candidate is probed; unreadable or filled games
// are left out.
func (s *Service) GetOpenGames(ctx context.Context) ([]model.Game, error) {
	events, err := s.history.Recent(ctx)
	if err != nil {
		return nil, err
	}

	var ids []uint64
	for _, e := range events {
		if e.Type == history.TopicCreate && e.GameId != nil && *e.GameId > 0 {
			ids = append(ids, *e.GameId)
		}
	}
	if len(ids) == 0 {
		return []model.Game{}, nil
	}
	ids = funk.Uniq(ids).([]uint64)

	var probed []model.Game
	for _, id := range ids {
		game, err := s.GetGame(ctx, id)
		if err != nil {
			log.Debug().Err(err).Uint64("gameId", id).Msg("Skipping open game candidate")
			continue
		}
		probed = append(probed, *game)
	}

	open := funk.Filter(probed, func(g model.Game) bool {
		return g.State == model.WaitingForPlayers && g.Player2 == nil
	}).([]model.Game)

	sort.Slice(open, func(i, j int) bool { return open[i].Id > open[j].Id })
	return open, nil
}

// CurrentGame resolves the game the player was last seen in. The entry is
// dropped only when the contract says the game is gone, the player is not in
// it, or the game has ended for good.
func (s *Service) CurrentGame(ctx context.Context, player flow.Address) (*model.Game, error) {
	gameId, ok, err := s.index.Get(ctx, player)
	if err != nil || !ok {
		return nil, err
	}

	game, err := s.GetGame(ctx, gameId)
	if err != nil {
		if s.forgetOnAuthoritative(ctx, player, gameId, err) {
			return nil, nil
		}
		return nil, err
	}
	if !game.HasSeat(player) || game.State.Terminal() {
		s.forget(ctx, player, gameId)
		return nil, nil
	}
	return game, nil
}

func (s *Service) View(ctx context.Context, gameId uint64, player flow.Address) (*View, error) {
	game, err := s.GetGame(ctx, gameId)
	if err != nil {
		s.forgetOnAuthoritative(ctx, player, gameId, err)
		return nil, err
	}

	config, err := s.GetConfig(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("Config unavailable, timeout affordance disabled")
	}

	if game.HasSeat(player) {
		if game.State.Terminal() {
			s.forget(ctx, player, gameId)
		} else {
			s.remember(ctx, player, gameId)
		}
	}

	view := NewView(*game, player, config, s.now())
	return &view, nil
}

// Abandon drops everything kept locally for the game. Nothing is sent to the
// contract.
func (s *Service) Abandon(ctx context.Context, player flow.Address, gameId uint64) error {
	if err := s.secrets.Delete(ctx, secret.Key{GameId: gameId, Player: player}); err != nil {
		return err
	}
	s.forget(ctx, player, gameId)
	return nil
}

func (s *Service) remember(ctx context.Context, player flow.Address, gameId uint64) {
	if err := s.index.Set(ctx, player, gameId); err != nil {
		log.Warn().Err(err).Uint64("gameId", gameId).Msg("Could not record current game")
	}
	if s.tracker != nil {
		s.tracker.Track(gameId, player)
	}
}

func (s *Service) forget(ctx context.Context, player flow.Address, gameId uint64) {
	current, ok, err := s.index.Get(ctx, player)
	if err == nil && ok && current == gameId {
		if err := s.index.Clear(ctx, player); err != nil {
			log.Warn().Err(err).Uint64("gameId", gameId).Msg("Could not clear current game")
		}
	}
	if s.tracker != nil {
		s.tracker.Untrack(gameId, player)
	}
}

// forgetOnAuthoritative clears the index only for answers that cannot change
// on retry. Transport failures keep it.
func (s *Service) forgetOnAuthoritative(ctx context.Context, player flow.Address, gameId uint64, err error) bool {
	if blockchain.IsAuthoritative(err) {
		s.forget(ctx, player, gameId)
		return true
	}
	return false
}
