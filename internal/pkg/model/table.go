package model

import "github.com/onflow/flow-go-sdk"

type Table struct {
	SmallBlind int64  `json:"smallBlind"`
	BigBlind   int64  `json:"bigBlind"`
	MinBuyIn   int64  `json:"minBuyIn"`
	MaxBuyIn   int64  `json:"maxBuyIn"`
	MaxSeats   uint32 `json:"maxSeats"`
}

type WaitingSession struct {
	Player1   flow.Address `json:"player1"`
	BuyIn     int64        `json:"buyIn"`
	CreatedAt uint64       `json:"createdAt"`
}

type TableListing struct {
	Id      uint64          `json:"id"`
	Table   Table           `json:"table"`
	Waiting *WaitingSession `json:"waiting,omitempty"`
}

type SitResult struct {
	Waiting bool   `json:"waiting"`
	GameId  uint64 `json:"gameId"`
}

type GameConfig struct {
	MinBuyIn          int64         `json:"minBuyIn"`
	MaxBuyIn          int64         `json:"maxBuyIn"`
	SmallBlind        int64         `json:"smallBlind"`
	BigBlind          int64         `json:"bigBlind"`
	RakePercentage    uint32        `json:"rakePercentage"`
	RevealTimeout     uint64        `json:"revealTimeout"`
	BetTimeout        uint64        `json:"betTimeout"`
	WaitingTimeout    uint64        `json:"waitingTimeout"`
	Treasury          flow.Address  `json:"treasury"`
	GameHub           flow.Address  `json:"gameHub"`
	PaymentController *flow.Address `json:"paymentController,omitempty"`
	ProofVerifier     *flow.Address `json:"proofVerifier,omitempty"`
}

// TimeoutFor is the inactivity window, in seconds, that applies in the state.
func (c GameConfig) TimeoutFor(state GameState) (uint64, bool) {
	switch {
	case state == ShuffleCommit || state == ShuffleReveal:
		return c.RevealTimeout, true
	case state.Betting() || state == Showdown:
		return c.BetTimeout, true
	}
	return 0, false
}
