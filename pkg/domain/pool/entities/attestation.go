package pool_entities

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"

	pool_vo "github.com/ore-pool-go/operator/pkg/domain/pool/value-objects"
)

// computeAttestation is the single implementation of the ordering
// contract in spec §4.3: SHA3-256 over "{authority} {digest_hex}
// {nonce}\n" lines, iterated in the caller-supplied order. Callers MUST
// pass insertion order (a slice), never a map's iteration order, which
// Go (like the Rust HashSet this design displaces) does not guarantee
// stable.
func computeAttestation(order []pool_vo.Authority, contributions map[pool_vo.Authority]Contribution) [32]byte {
	h := sha3.New256()
	for _, authority := range order {
		c, ok := contributions[authority]
		if !ok {
			continue
		}
		line := fmt.Sprintf("%s %s %d\n", authority.String(), hex.EncodeToString(c.Solution.Digest[:]), c.Solution.Nonce)
		h.Write([]byte(line))
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
