package model

import "time"

// HistoryEvent is one contract event rendered for display. Events are
// best-effort and never a source of game state.
type HistoryEvent struct {
	Id          string    `json:"id"`
	Ledger      uint32    `json:"ledger"`
	ClosedAt    time.Time `json:"closedAt"`
	Type        string    `json:"type"`
	GameId      *uint64   `json:"gameId,omitempty"`
	TableId     *uint64   `json:"tableId,omitempty"`
	Player      string    `json:"player,omitempty"`
	Action      *Action   `json:"action,omitempty"`
	ClaimedRank *uint32   `json:"claimedRank,omitempty"`
	Message     string    `json:"message,omitempty"`
}
