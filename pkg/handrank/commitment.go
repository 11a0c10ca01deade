package handrank

import (
	"crypto/sha256"
)

// HandCommitment binds a player to their hole cards ahead of showdown. The
// preimage is 32 bytes: the two card indices followed by zeros.
func HandCommitment(hole [2]Card) ([32]byte, error) {
	if err := validate(hole, nil); err != nil {
		return [32]byte{}, err
	}

	var preimage [32]byte
	preimage[0] = byte(hole[0])
	preimage[1] = byte(hole[1])
	return sha256.Sum256(preimage[:]), nil
}
