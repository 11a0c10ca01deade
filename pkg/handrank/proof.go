package handrank

import (
	"encoding/binary"
	"fmt"

	eth "github.com/ethereum/go-ethereum/crypto"
	"github.com/wealdtech/go-merkletree"
	keccak "github.com/wealdtech/go-merkletree/keccak256"
)

const ProofLength = 256

const (
	holeLeafTag  byte = 'H'
	boardLeafTag byte = 'B'
	rankLeafTag  byte = 'R'
)

// Proof is a placeholder for the verifier proof that accompanies a claimed
// rank. Layout: keccak merkle root (32 bytes), leaf index (8 bytes, big
// endian), sibling hashes, zero padding up to 256 bytes.
func Proof(hole [2]Card, board []Card, claimedRank int) ([ProofLength]byte, error) {
	var out [ProofLength]byte

	if err := validate(hole, board); err != nil {
		return out, err
	}
	if claimedRank < HighCard || claimedRank > RoyalFlush {
		return out, fmt.Errorf("claimed rank %d outside 1..10", claimedRank)
	}

	leaves := proofLeaves(hole, board, claimedRank)
	tree, err := merkletree.NewUsing(leaves, keccak.New(), nil)
	if err != nil {
		return out, err
	}

	proof, err := tree.GenerateProof(leaves[2])
	if err != nil {
		return out, err
	}

	offset := copy(out[:], tree.Root())
	binary.BigEndian.PutUint64(out[offset:], proof.Index)
	offset += 8
	for _, h := range proof.Hashes {
		if offset+len(h) > ProofLength {
			return out, fmt.Errorf("proof does not fit in %d bytes", ProofLength)
		}
		offset += copy(out[offset:], h)
	}

	return out, nil
}

// VerifyProof checks a proof produced by Proof against the same inputs.
func VerifyProof(proofBytes [ProofLength]byte, hole [2]Card, board []Card, claimedRank int) (bool, error) {
	leaves := proofLeaves(hole, board, claimedRank)
	tree, err := merkletree.NewUsing(leaves, keccak.New(), nil)
	if err != nil {
		return false, err
	}

	proof, err := tree.GenerateProof(leaves[2])
	if err != nil {
		return false, err
	}

	root := proofBytes[:32]
	if binary.BigEndian.Uint64(proofBytes[32:40]) != proof.Index {
		return false, nil
	}

	offset := 40
	for _, h := range proof.Hashes {
		if string(proofBytes[offset:offset+len(h)]) != string(h) {
			return false, nil
		}
		offset += len(h)
	}

	return merkletree.VerifyProofUsing(leaves[2], proof, root, keccak.New(), nil)
}

func proofLeaves(hole [2]Card, board []Card, claimedRank int) [][]byte {
	holeLeaf := []byte{holeLeafTag, byte(hole[0]), byte(hole[1])}
	boardLeaf := []byte{boardLeafTag}
	for _, c := range board {
		boardLeaf = append(boardLeaf, byte(c))
	}
	rankLeaf := []byte{rankLeafTag, byte(claimedRank)}

	return [][]byte{
		eth.Keccak256(holeLeaf),
		eth.Keccak256(boardLeaf),
		eth.Keccak256(rankLeaf),
	}
}
