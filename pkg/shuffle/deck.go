// Package shuffle derives the shared deck from the players' revealed seeds.
//
// The derivation mirrors the contract bit for bit: any drift here means the
// two sides disagree about which cards were dealt, with no error surfacing.
package shuffle

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	DeckSize = 52

	lcgMultiplier uint64 = 6364136223846793005
	lcgIncrement  uint64 = 1
	minSeedLength        = 8
)

var ErrMalformedSeed = errors.New("seed must be at least 8 bytes")

// Deck holds card indices 1..52 in dealt order.
type Deck [DeckSize]uint32

// Seat is a player's position in a heads-up game, 1 or 2.
type Seat uint8

const (
	NoSeat Seat = iota
	Seat1
	Seat2
)

func DeriveDeck(seed []byte) (Deck, error) {
	var deck Deck
	if len(seed) < minSeedLength {
		return deck, fmt.Errorf("%w: got %d", ErrMalformedSeed, len(seed))
	}

	for i := range deck {
		deck[i] = uint32(i + 1)
	}

	state := binary.BigEndian.Uint64(seed[:minSeedLength])
	for i := DeckSize - 1; i > 0; i-- {
		state = state*lcgMultiplier + lcgIncrement
		j := state % uint64(i+1)
		deck[i], deck[j] = deck[j], deck[i]
	}

	return deck, nil
}

// HoleCards returns the two private slots of the given seat: [0,1] for the
// first player and [2,3] for the second. Any other seat yields nothing.
func (d Deck) HoleCards(seat Seat) ([2]uint32, bool) {
	switch seat {
	case Seat1:
		return [2]uint32{d[0], d[1]}, true
	case Seat2:
		return [2]uint32{d[2], d[3]}, true
	default:
		return [2]uint32{}, false
	}
}
