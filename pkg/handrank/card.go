package handrank

import (
	"errors"
	"fmt"
)

var ErrInvalidCard = errors.New("invalid card")

// Card is a deck index in 1..52. Index c carries rank (c-1)%13 with 0 as the
// ace and suit ((c-1)/13)%4.
type Card uint32

const maxBoard = 5

func (c Card) Valid() bool {
	return c >= 1 && c <= 52
}

func (c Card) RankIndex() int {
	return int(c-1) % 13
}

func (c Card) Suit() int {
	return (int(c-1) / 13) % 4
}

var rankSymbols = [13]string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "T", "J", "Q", "K"}
var suitSymbols = [4]string{"c", "d", "h", "s"}

func (c Card) String() string {
	if !c.Valid() {
		return "??"
	}
	return rankSymbols[c.RankIndex()] + suitSymbols[c.Suit()]
}

func validate(hole [2]Card, board []Card) error {
	if len(board) > maxBoard {
		return fmt.Errorf("%w: board holds %d cards", ErrInvalidCard, len(board))
	}

	seen := map[Card]bool{}
	for _, c := range append(hole[:], board...) {
		if !c.Valid() {
			return fmt.Errorf("%w: %d out of range", ErrInvalidCard, c)
		}
		if seen[c] {
			return fmt.Errorf("%w: %s appears twice", ErrInvalidCard, c)
		}
		seen[c] = true
	}
	return nil
}

func FromIndices(indices []uint32) []Card {
	cards := make([]Card, len(indices))
	for i, idx := range indices {
		cards[i] = Card(idx)
	}
	return cards
}
