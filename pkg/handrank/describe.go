package handrank

import (
	"fmt"

	"github.com/paulhankin/poker"
)

// Describe labels the hand. With the full board known it defers to the
// paulhankin evaluator for a kicker-aware description.
func Describe(hole [2]Card, board []Card) (string, error) {
	rank, err := Rank(hole, board)
	if err != nil {
		return "", err
	}
	if len(board) < maxBoard {
		return CategoryName(rank), nil
	}

	var seven [7]poker.Card
	for i, c := range append(hole[:], board...) {
		pc, err := toPokerCard(c)
		if err != nil {
			return "", err
		}
		seven[i] = pc
	}

	return poker.Describe(seven[:])
}

func toPokerCard(c Card) (poker.Card, error) {
	pc, err := poker.MakeCard(poker.Suit(c.Suit()), poker.Rank(c.RankIndex()+1))
	if err != nil {
		return pc, fmt.Errorf("%w: %s: %v", ErrInvalidCard, c, err)
	}
	return pc, nil
}
