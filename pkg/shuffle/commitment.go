package shuffle

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
)

const SeedLength = 32

var ErrInsecureRandomness = errors.New("secure randomness unavailable")

// randomSource is swapped in tests to simulate an exhausted entropy source.
var randomSource io.Reader = rand.Reader

// SeedSecret is the local half of the commit-reveal pair. It never leaves the
// player's device before reveal.
type SeedSecret struct {
	Seed       [SeedLength]byte
	Commitment [sha256.Size]byte
}

func NewSeedSecret() (SeedSecret, error) {
	var seed [SeedLength]byte
	if _, err := io.ReadFull(randomSource, seed[:]); err != nil {
		return SeedSecret{}, fmt.Errorf("%w: %v", ErrInsecureRandomness, err)
	}
	return SeedSecret{Seed: seed, Commitment: Commit(seed[:])}, nil
}

func Commit(seed []byte) [sha256.Size]byte {
	return sha256.Sum256(seed)
}

func Verify(commitment [sha256.Size]byte, seed []byte) bool {
	expected := Commit(seed)
	return subtle.ConstantTimeCompare(expected[:], commitment[:]) == 1
}

// CombineSeeds produces the final seed the contract stores once both players
// have revealed: SHA-256(reveal1) XOR SHA-256(reveal2), player one first.
func CombineSeeds(reveal1, reveal2 []byte) [sha256.Size]byte {
	h1 := sha256.Sum256(reveal1)
	h2 := sha256.Sum256(reveal2)

	var out [sha256.Size]byte
	for i := range out {
		out[i] = h1[i] ^ h2[i]
	}
	return out
}
