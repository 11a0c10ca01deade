package model

import (
	"github.com/onflow/flow-go-sdk"
)

// PublicGame is the part of a Game that may leave the service. The contract
// stores the whole dealt deck prefix in Board, so only the revealed prefix is
// kept, and seed reveals, the final seed and hand commitments are left out:
// any of them is enough to recover the opponent's hole cards.
type PublicGame struct {
	Id              uint64        `json:"id"`
	TableId         uint64        `json:"tableId"`
	State           GameState     `json:"state"`
	Player1         flow.Address  `json:"player1"`
	Player2         *flow.Address `json:"player2,omitempty"`
	BuyIn           int64         `json:"buyIn"`
	Pot             int64         `json:"pot"`
	SmallBlind      int64         `json:"smallBlind"`
	BigBlind        int64         `json:"bigBlind"`
	DealerPosition  uint32        `json:"dealerPosition"`
	Board           []uint32      `json:"board"`
	BoardRevealed   uint32        `json:"boardRevealed"`
	CurrentBetP1    int64         `json:"currentBetP1"`
	CurrentBetP2    int64         `json:"currentBetP2"`
	TotalBetP1      int64         `json:"totalBetP1"`
	TotalBetP2      int64         `json:"totalBetP2"`
	MinRaise        int64         `json:"minRaise"`
	LastRaiseAmount int64         `json:"lastRaiseAmount"`
	Actor           uint32        `json:"actor"`
	Folded          *flow.Address `json:"folded,omitempty"`
	Committed1      bool          `json:"committed1"`
	Committed2      bool          `json:"committed2"`
	Revealed1       bool          `json:"revealed1"`
	Revealed2       bool          `json:"revealed2"`
	HandRank1       *uint32       `json:"handRank1,omitempty"`
	HandRank2       *uint32       `json:"handRank2,omitempty"`
	Winner          *flow.Address `json:"winner,omitempty"`
	CreatedAt       uint64        `json:"createdAt"`
	LastActionAt    uint64        `json:"lastActionAt"`
}

func (g Game) Public() PublicGame {
	board := make([]uint32, 0, g.BoardRevealed)
	board = append(board, g.RevealedBoard()...)
	return PublicGame{
		Id:              g.Id,
		TableId:         g.TableId,
		State:           g.State,
		Player1:         g.Player1,
		Player2:         g.Player2,
		BuyIn:           g.BuyIn,
		Pot:             g.Pot,
		SmallBlind:      g.SmallBlind,
		BigBlind:        g.BigBlind,
		DealerPosition:  g.DealerPosition,
		Board:           board,
		BoardRevealed:   g.BoardRevealed,
		CurrentBetP1:    g.CurrentBetP1,
		CurrentBetP2:    g.CurrentBetP2,
		TotalBetP1:      g.TotalBetP1,
		TotalBetP2:      g.TotalBetP2,
		MinRaise:        g.MinRaise,
		LastRaiseAmount: g.LastRaiseAmount,
		Actor:           g.Actor,
		Folded:          g.Folded,
		Committed1:      g.SeedCommitment1 != nil,
		Committed2:      g.SeedCommitment2 != nil,
		Revealed1:       g.SeedReveal1 != nil,
		Revealed2:       g.SeedReveal2 != nil,
		HandRank1:       g.HandRank1,
		HandRank2:       g.HandRank2,
		Winner:          g.Winner,
		CreatedAt:       g.CreatedAt,
		LastActionAt:    g.LastActionAt,
	}
}

func PublicGames(games []Game) []PublicGame {
	public := make([]PublicGame, 0, len(games))
	for _, g := range games {
		public = append(public, g.Public())
	}
	return public
}
