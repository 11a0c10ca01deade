package model

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/kollektive-hackathon/pokerzk-backend/pkg/shuffle"
	"github.com/onflow/flow-go-sdk"
)

// Bytes32 is a fixed 32-byte contract value (commitments, seeds, digests).
type Bytes32 [32]byte

func (b Bytes32) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(b[:]))
}

func (b *Bytes32) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	if len(raw) != len(b) {
		return fmt.Errorf("expected %d bytes, got %d", len(b), len(raw))
	}
	copy(b[:], raw)
	return nil
}

// Game is a read-only snapshot of the contract's game record. Optional
// contract fields are pointers; nil means the contract reported none.
type Game struct {
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
	SeedCommitment1 *Bytes32      `json:"seedCommitment1,omitempty"`
	SeedCommitment2 *Bytes32      `json:"seedCommitment2,omitempty"`
	SeedReveal1     *Bytes32      `json:"seedReveal1,omitempty"`
	SeedReveal2     *Bytes32      `json:"seedReveal2,omitempty"`
	FinalSeed       *Bytes32      `json:"finalSeed,omitempty"`
	HandCommitment1 *Bytes32      `json:"handCommitment1,omitempty"`
	HandCommitment2 *Bytes32      `json:"handCommitment2,omitempty"`
	HandRank1       *uint32       `json:"handRank1,omitempty"`
	HandRank2       *uint32       `json:"handRank2,omitempty"`
	Winner          *flow.Address `json:"winner,omitempty"`
	CreatedAt       uint64        `json:"createdAt"`
	LastActionAt    uint64        `json:"lastActionAt"`
}

// SeatOf reports which seat the address occupies, or NoSeat.
func (g Game) SeatOf(addr flow.Address) shuffle.Seat {
	switch {
	case g.Player1 == addr:
		return shuffle.Seat1
	case g.Player2 != nil && *g.Player2 == addr:
		return shuffle.Seat2
	default:
		return shuffle.NoSeat
	}
}

func (g Game) Commitment(seat shuffle.Seat) *Bytes32 {
	switch seat {
	case shuffle.Seat1:
		return g.SeedCommitment1
	case shuffle.Seat2:
		return g.SeedCommitment2
	}
	return nil
}

func (g Game) Reveal(seat shuffle.Seat) *Bytes32 {
	switch seat {
	case shuffle.Seat1:
		return g.SeedReveal1
	case shuffle.Seat2:
		return g.SeedReveal2
	}
	return nil
}

func (g Game) HandRank(seat shuffle.Seat) *uint32 {
	switch seat {
	case shuffle.Seat1:
		return g.HandRank1
	case shuffle.Seat2:
		return g.HandRank2
	}
	return nil
}

// Bets returns (mine, opponent's) current-street bets for the seat.
func (g Game) Bets(seat shuffle.Seat) (int64, int64) {
	if seat == shuffle.Seat2 {
		return g.CurrentBetP2, g.CurrentBetP1
	}
	return g.CurrentBetP1, g.CurrentBetP2
}

// RevealedBoard is the prefix of the board the contract has opened.
func (g Game) RevealedBoard() []uint32 {
	n := int(g.BoardRevealed)
	if n > len(g.Board) {
		n = len(g.Board)
	}
	return g.Board[:n]
}

func (g Game) HasSeat(addr flow.Address) bool {
	return g.SeatOf(addr) != shuffle.NoSeat
}
