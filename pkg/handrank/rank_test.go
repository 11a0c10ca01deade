package handrank

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// card builds an index from a face value (1 = ace .. 13 = king) and a suit 0..3.
func card(face, suit int) Card {
	return Card(suit*13 + face)
}

func Test_Card_Decoding(t *testing.T) {
	assert.Equal(t, 0, Card(1).RankIndex())
	assert.Equal(t, 0, Card(1).Suit())
	assert.Equal(t, 12, Card(13).RankIndex())
	assert.Equal(t, 0, Card(14).RankIndex())
	assert.Equal(t, 1, Card(14).Suit())
	assert.Equal(t, 3, Card(52).Suit())
	assert.Equal(t, "As", Card(40).String())
	assert.Equal(t, "Kc", Card(13).String())
}

func Test_Rank_Categories(t *testing.T) {
	tests := []struct {
		name  string
		hole  [2]Card
		board []Card
		want  int
	}{
		{
			name:  "royal flush",
			hole:  [2]Card{card(1, 2), card(13, 2)},
			board: []Card{card(12, 2), card(11, 2), card(10, 2), card(2, 0), card(3, 1)},
			want:  RoyalFlush,
		},
		{
			name:  "straight flush",
			hole:  [2]Card{card(9, 1), card(8, 1)},
			board: []Card{card(7, 1), card(6, 1), card(5, 1), card(13, 0), card(13, 3)},
			want:  StraightFlush,
		},
		{
			name:  "wheel straight flush",
			hole:  [2]Card{card(1, 3), card(2, 3)},
			board: []Card{card(3, 3), card(4, 3), card(5, 3)},
			want:  StraightFlush,
		},
		{
			name:  "four of a kind",
			hole:  [2]Card{card(9, 0), card(9, 1)},
			board: []Card{card(9, 2), card(9, 3), card(13, 0)},
			want:  FourOfAKind,
		},
		{
			name:  "full house",
			hole:  [2]Card{card(4, 0), card(4, 1)},
			board: []Card{card(4, 2), card(11, 3), card(11, 0)},
			want:  FullHouse,
		},
		{
			name:  "two trips make a full house",
			hole:  [2]Card{card(4, 0), card(4, 1)},
			board: []Card{card(4, 2), card(11, 3), card(11, 0), card(11, 1), card(2, 2)},
			want:  FullHouse,
		},
		{
			name:  "flush",
			hole:  [2]Card{card(2, 2), card(7, 2)},
			board: []Card{card(9, 2), card(11, 2), card(13, 2), card(3, 0)},
			want:  Flush,
		},
		{
			name:  "broadway straight",
			hole:  [2]Card{card(1, 0), card(13, 1)},
			board: []Card{card(12, 2), card(11, 3), card(10, 0)},
			want:  Straight,
		},
		{
			name:  "wheel straight",
			hole:  [2]Card{card(1, 0), card(2, 1)},
			board: []Card{card(3, 2), card(4, 3), card(5, 0)},
			want:  Straight,
		},
		{
			name:  "three of a kind",
			hole:  [2]Card{card(6, 0), card(6, 1)},
			board: []Card{card(6, 2), card(1, 3), card(9, 0)},
			want:  ThreeOfAKind,
		},
		{
			name:  "two pair",
			hole:  [2]Card{card(6, 0), card(6, 1)},
			board: []Card{card(9, 2), card(9, 3), card(1, 0)},
			want:  TwoPair,
		},
		{
			name:  "one pair",
			hole:  [2]Card{card(6, 0), card(6, 1)},
			board: nil,
			want:  OnePair,
		},
		{
			name:  "high card",
			hole:  [2]Card{card(2, 0), card(7, 1)},
			board: []Card{card(9, 2), card(11, 3), card(13, 0)},
			want:  HighCard,
		},
		{
			name:  "no wrap around the ace",
			hole:  [2]Card{card(12, 0), card(13, 1)},
			board: []Card{card(1, 2), card(2, 3), card(3, 0)},
			want:  HighCard,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Rank(tt.hole, tt.board)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_Rank_QuadsIgnoreKicker(t *testing.T) {
	for kicker := 1; kicker <= 13; kicker++ {
		if kicker == 5 {
			continue
		}
		got, err := Rank([2]Card{card(5, 0), card(5, 1)}, []Card{card(5, 2), card(5, 3), card(kicker, 0)})
		require.NoError(t, err)
		assert.Equal(t, FourOfAKind, got)
	}
}

func Test_Rank_OrderInvariant(t *testing.T) {
	cards := []Card{card(1, 2), card(13, 2), card(12, 2), card(11, 2), card(10, 2), card(2, 0), card(3, 1)}
	r := rand.New(rand.NewSource(7))

	for i := 0; i < 50; i++ {
		r.Shuffle(len(cards), func(a, b int) { cards[a], cards[b] = cards[b], cards[a] })
		got, err := Rank([2]Card{cards[0], cards[1]}, cards[2:])
		require.NoError(t, err)
		assert.Equal(t, RoyalFlush, got)
	}
}

func Test_Rank_RejectsBadInput(t *testing.T) {
	_, err := Rank([2]Card{0, 5}, nil)
	assert.ErrorIs(t, err, ErrInvalidCard)

	_, err = Rank([2]Card{53, 5}, nil)
	assert.ErrorIs(t, err, ErrInvalidCard)

	_, err = Rank([2]Card{5, 5}, nil)
	assert.ErrorIs(t, err, ErrInvalidCard)

	_, err = Rank([2]Card{1, 2}, []Card{3, 4, 5, 6, 7, 8})
	assert.ErrorIs(t, err, ErrInvalidCard)
}
