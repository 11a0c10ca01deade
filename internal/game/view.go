package game

import (
	"time"

	"github.com/kollektive-hackathon/pokerzk-backend/internal/pkg/model"
	"github.com/kollektive-hackathon/pokerzk-backend/pkg/handrank"
	"github.com/kollektive-hackathon/pokerzk-backend/pkg/shuffle"
	"github.com/onflow/flow-go-sdk"
)

// View is a game snapshot seen from one player's seat. Every flag is
// advisory; the contract decides what is legal.
type View struct {
	Game  model.PublicGame `json:"game"`
	Seat  shuffle.Seat     `json:"seat"`
	State string           `json:"state"`

	game model.Game

	MyBet         int64 `json:"myBet"`
	OpponentBet   int64 `json:"opponentBet"`
	ToCall        int64 `json:"toCall"`
	CanCheck      bool  `json:"canCheck"`
	CanCall       bool  `json:"canCall"`
	MinRaiseTotal int64 `json:"minRaiseTotal"`
	MyTurn        bool  `json:"myTurn"`

	NeedsCommit     bool `json:"needsCommit"`
	NeedsReveal     bool `json:"needsReveal"`
	NeedsPostBlinds bool `json:"needsPostBlinds"`
	NeedsHandReveal bool `json:"needsHandReveal"`

	CanClaimTimeout bool    `json:"canClaimTimeout"`
	TimeoutAt       *uint64 `json:"timeoutAt,omitempty"`

	Board       []uint32 `json:"board"`
	HoleCards   []uint32 `json:"holeCards,omitempty"`
	ClaimedRank int      `json:"claimedRank,omitempty"`
	RankName    string   `json:"rankName,omitempty"`
	Description string   `json:"description,omitempty"`
}

func NewView(game model.Game, me flow.Address, config *model.GameConfig, now time.Time) View {
	seat := game.SeatOf(me)
	v := View{
		Game:  game.Public(),
		game:  game,
		Seat:  seat,
		State: game.State.String(),
		Board: game.RevealedBoard(),
	}
	if seat == shuffle.NoSeat {
		return v
	}

	v.MyBet, v.OpponentBet = game.Bets(seat)
	v.ToCall = v.OpponentBet - v.MyBet
	v.CanCheck = v.ToCall == 0
	v.CanCall = v.ToCall > 0
	v.MinRaiseTotal = v.OpponentBet + game.MinRaise
	v.MyTurn = game.State.Betting() && actorSeat(game.Actor) == seat

	v.NeedsCommit = game.State == model.ShuffleCommit && game.Commitment(seat) == nil
	v.NeedsReveal = game.State == model.ShuffleReveal && game.Reveal(seat) == nil
	v.NeedsPostBlinds = game.State == model.DealCards
	v.NeedsHandReveal = game.State == model.Showdown && game.Folded == nil && game.HandRank(seat) == nil

	if config != nil {
		if timeout, ok := config.TimeoutFor(game.State); ok {
			deadline := game.LastActionAt + timeout
			v.TimeoutAt = &deadline
			stalled, ok := stalledSeat(game)
			v.CanClaimTimeout = ok && stalled != seat && uint64(now.Unix()) > deadline
		}
	}

	if hole, ok := MyHoleCards(game, me); ok {
		v.HoleCards = hole[:]
		cards := [2]handrank.Card{handrank.Card(hole[0]), handrank.Card(hole[1])}
		board := handrank.FromIndices(v.Board)
		if rank, err := handrank.Rank(cards, board); err == nil {
			v.ClaimedRank = rank
			v.RankName = handrank.CategoryName(rank)
		}
		if desc, err := handrank.Describe(cards, board); err == nil {
			v.Description = desc
		}
	}
	return v
}

// MyHoleCards derives the caller's two hole cards from the final seed. It
// never returns the opponent's slots, and reports false for non-players or
// before both seeds are revealed.
func MyHoleCards(game model.Game, me flow.Address) ([2]uint32, bool) {
	seat := game.SeatOf(me)
	if seat == shuffle.NoSeat || game.FinalSeed == nil {
		return [2]uint32{}, false
	}
	deck, err := shuffle.DeriveDeck(game.FinalSeed[:])
	if err != nil {
		return [2]uint32{}, false
	}
	return deck.HoleCards(seat)
}

func actorSeat(actor uint32) shuffle.Seat {
	if actor == 0 {
		return shuffle.Seat1
	}
	return shuffle.Seat2
}

// stalledSeat is the player a timeout would be charged against.
func stalledSeat(game model.Game) (shuffle.Seat, bool) {
	switch {
	case game.State == model.ShuffleCommit:
		if game.SeedCommitment1 == nil {
			return shuffle.Seat1, true
		}
		return shuffle.Seat2, true
	case game.State == model.ShuffleReveal:
		if game.SeedReveal1 == nil {
			return shuffle.Seat1, true
		}
		return shuffle.Seat2, true
	case game.State.Betting():
		return actorSeat(game.Actor), true
	case game.State == model.Showdown:
		if game.HandRank1 == nil {
			return shuffle.Seat1, true
		}
		return shuffle.Seat2, true
	}
	return shuffle.NoSeat, false
}
