package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/blockchain"
	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/model"
	"github.com/kollektive-hackathon/pokerzk-backend/pkg/shuffle"
	"github.com/onflow/flow-go-sdk"
	"github.com/rs/zerolog/log"
	"github.com/weedbox/timebank"
)

const LobbyTopic = "lobby"

// GameTopic is per player: a snapshot carries that player's hole cards.
func GameTopic(gameId uint64, player flow.Address) string {
	return fmt.Sprintf("game/%d/%s", gameId, player.Hex())
}

type Publisher interface {
	Publish(topic string, event any)
	HasListeners(topic string) bool
}

type snapshotSource interface {
	View(ctx context.Context, gameId uint64, player flow.Address) (*View, error)
	ListTables(ctx context.Context) ([]model.TableListing, error)
	GetOpenGames(ctx context.Context) ([]model.Game, error)
}

type Intervals struct {
	CommitFast time.Duration
	Commit     time.Duration
	Default    time.Duration
	Lobby      time.Duration
}

type trackKey struct {
	gameId uint64
	player flow.Address
}

// Poller refreshes tracked games on an adaptive schedule and pushes the
// snapshots to websocket listeners.
type Poller struct {
	ctx       context.Context
	source    snapshotSource
	hub       Publisher
	intervals Intervals

	mu      sync.Mutex
	tracked map[trackKey]*timebank.TimeBank
	lobby   *timebank.TimeBank
}

func NewPoller(ctx context.Context, source snapshotSource, hub Publisher, intervals Intervals) *Poller {
	return &Poller{
		ctx:       ctx,
		source:    source,
		hub:       hub,
		intervals: intervals,
		tracked:   map[trackKey]*timebank.TimeBank{},
	}
}

func (p *Poller) Track(gameId uint64, player flow.Address) {
	key := trackKey{gameId: gameId, player: player}

	p.mu.Lock()
	if _, ok := p.tracked[key]; ok {
		p.mu.Unlock()
		return
	}
	bank := timebank.NewTimeBank()
	p.tracked[key] = bank
	p.mu.Unlock()

	log.Debug().Uint64("gameId", gameId).Str("player", player.Hex()).Msg("Tracking game")
	p.schedule(key, bank, 0)
}

func (p *Poller) Untrack(gameId uint64, player flow.Address) {
	key := trackKey{gameId: gameId, player: player}

	p.mu.Lock()
	bank, ok := p.tracked[key]
	delete(p.tracked, key)
	p.mu.Unlock()

	if ok {
		// may run from inside the bank's own callback
		go bank.Cancel()
	}
}

func (p *Poller) Tracking(gameId uint64, player flow.Address) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.tracked[trackKey{gameId: gameId, player: player}]
	return ok
}

func (p *Poller) current(key trackKey, bank *timebank.TimeBank) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tracked[key] == bank
}

func (p *Poller) schedule(key trackKey, bank *timebank.TimeBank, after time.Duration) {
	err := bank.NewTask(after, func(isCancelled bool) {
		if isCancelled || p.ctx.Err() != nil {
			return
		}
		p.poll(key, bank)
	})
	if err != nil {
		log.Warn().Err(err).Uint64("gameId", key.gameId).Msg("Could not schedule game poll")
	}
}

func (p *Poller) poll(key trackKey, bank *timebank.TimeBank) {
	if !p.current(key, bank) {
		return
	}

	view, err := p.source.View(p.ctx, key.gameId, key.player)
	if err != nil {
		if blockchain.IsAuthoritative(err) {
			p.Untrack(key.gameId, key.player)
			return
		}
		log.Debug().Err(err).Uint64("gameId", key.gameId).Msg("Game poll failed")
		p.schedule(key, bank, p.intervals.Default)
		return
	}

	p.hub.Publish(GameTopic(key.gameId, key.player), map[string]any{
		"type":    "GAME_SNAPSHOT",
		"payload": view,
	})

	if view.game.State.Terminal() || view.Seat == shuffle.NoSeat {
		p.Untrack(key.gameId, key.player)
		return
	}
	if p.current(key, bank) {
		p.schedule(key, bank, p.NextInterval(view.game, key.player))
	}
}

// NextInterval polls fastest while this player waits on the opponent's seed
// commitment, fast through the rest of the shuffle, slow otherwise.
func (p *Poller) NextInterval(game model.Game, player flow.Address) time.Duration {
	switch game.State {
	case model.ShuffleCommit:
		if game.Commitment(game.SeatOf(player)) != nil {
			return p.intervals.CommitFast
		}
		return p.intervals.Commit
	case model.ShuffleReveal:
		return p.intervals.Commit
	}
	return p.intervals.Default
}

// StartLobby refreshes table and open-game listings while anyone listens.
func (p *Poller) StartLobby() {
	p.mu.Lock()
	if p.lobby != nil {
		p.mu.Unlock()
		return
	}
	p.lobby = timebank.NewTimeBank()
	bank := p.lobby
	p.mu.Unlock()

	p.scheduleLobby(bank, 0)
}

func (p *Poller) scheduleLobby(bank *timebank.TimeBank, after time.Duration) {
	_ = bank.NewTask(after, func(isCancelled bool) {
		if isCancelled || p.ctx.Err() != nil {
			return
		}
		p.pollLobby()
		p.scheduleLobby(bank, p.intervals.Lobby)
	})
}

func (p *Poller) pollLobby() {
	if !p.hub.HasListeners(LobbyTopic) {
		return
	}

	tables, err := p.source.ListTables(p.ctx)
	if err != nil {
		log.Debug().Err(err).Msg("Lobby table refresh failed")
		return
	}
	open, err := p.source.GetOpenGames(p.ctx)
	if err != nil {
		log.Debug().Err(err).Msg("Lobby open games refresh failed")
		return
	}

	p.hub.Publish(LobbyTopic, map[string]any{
		"type": "LOBBY_SNAPSHOT",
		"payload": map[string]any{
			"tables":    tables,
			"openGames": model.PublicGames(open),
		},
	})
}

func (p *Poller) Stop() {
	p.mu.Lock()
	banks := make([]*timebank.TimeBank, 0, len(p.tracked)+1)
	for key, bank := range p.tracked {
		banks = append(banks, bank)
		delete(p.tracked, key)
	}
	if p.lobby != nil {
		banks = append(banks, p.lobby)
		p.lobby = nil
	}
	p.mu.Unlock()

	for _, bank := range banks {
		bank.Cancel()
	}
}
