package shuffle

import (
	"crypto/rand"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_DeriveDeck_ZeroSeedGolden(t *testing.T) {
	deck, err := DeriveDeck(make([]byte, 32))
	require.NoError(t, err)

	expected := Deck{
		7, 5, 17, 33, 4, 16, 3, 51, 37, 47, 23, 52, 15, 49, 13, 19, 21, 35, 20, 42,
		43, 12, 11, 22, 29, 24, 28, 26, 25, 40, 44, 46, 9, 34, 32, 14, 27, 36, 31, 48,
		45, 18, 1, 6, 39, 38, 8, 30, 50, 10, 41, 2,
	}
	assert.Equal(t, expected, deck)
}

func Test_DeriveDeck_IsPermutation(t *testing.T) {
	for i := 0; i < 200; i++ {
		seed := make([]byte, 32)
		_, err := rand.Read(seed)
		require.NoError(t, err)

		deck, err := DeriveDeck(seed)
		require.NoError(t, err)

		seen := map[uint32]bool{}
		for _, card := range deck {
			assert.GreaterOrEqual(t, card, uint32(1))
			assert.LessOrEqual(t, card, uint32(52))
			assert.False(t, seen[card], "duplicate card %d", card)
			seen[card] = true
		}
		assert.Len(t, seen, DeckSize)
	}
}

func Test_DeriveDeck_Deterministic(t *testing.T) {
	seed := make([]byte, 32)
	_, err := rand.Read(seed)
	require.NoError(t, err)

	first, err := DeriveDeck(seed)
	require.NoError(t, err)
	second, err := DeriveDeck(seed)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func Test_DeriveDeck_OnlyFirstEightBytesMatter(t *testing.T) {
	a := make([]byte, 32)
	b := make([]byte, 32)
	b[31] = 0xff

	deckA, err := DeriveDeck(a)
	require.NoError(t, err)
	deckB, err := DeriveDeck(b)
	require.NoError(t, err)

	assert.Equal(t, deckA, deckB)
}

func Test_DeriveDeck_RejectsShortSeed(t *testing.T) {
	_, err := DeriveDeck([]byte{1, 2, 3, 4, 5, 6, 7})
	assert.ErrorIs(t, err, ErrMalformedSeed)

	_, err = DeriveDeck(nil)
	assert.ErrorIs(t, err, ErrMalformedSeed)
}

func Test_HoleCards_BySeat(t *testing.T) {
	deck, err := DeriveDeck(make([]byte, 32))
	require.NoError(t, err)

	p1, ok := deck.HoleCards(Seat1)
	assert.True(t, ok)
	assert.Equal(t, [2]uint32{7, 5}, p1)

	p2, ok := deck.HoleCards(Seat2)
	assert.True(t, ok)
	assert.Equal(t, [2]uint32{17, 33}, p2)

	_, ok = deck.HoleCards(NoSeat)
	assert.False(t, ok)
}

func Test_CombinedSeedScenario(t *testing.T) {
	seedA := make([]byte, 32)
	seedB := make([]byte, 32)
	for i := range seedA {
		seedA[i] = 0x01
		seedB[i] = 0x02
	}

	final := CombineSeeds(seedA, seedB)
	assert.Equal(t, "074a15303ffd3ca4d54cda76ffde86a7ed63c4c69177624623aaa8a643d8fdd9", hex.EncodeToString(final[:]))

	deck, err := DeriveDeck(final[:])
	require.NoError(t, err)

	p1, _ := deck.HoleCards(Seat1)
	p2, _ := deck.HoleCards(Seat2)
	assert.Equal(t, [2]uint32{deck[0], deck[1]}, p1)
	assert.Equal(t, [2]uint32{deck[2], deck[3]}, p2)
	assert.Equal(t, [2]uint32{3, 21}, p1)
	assert.Equal(t, [2]uint32{17, 23}, p2)

	assert.NotContains(t, p2[:], deck[0])
	assert.NotContains(t, p2[:], deck[1])
}
