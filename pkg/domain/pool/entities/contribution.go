package pool_entities

import (
	pool_vo "github.com/ore-pool-go/operator/pkg/domain/pool/value-objects"
)

// Contribution is one admitted solution for the current challenge,
// identified solely by the submitting member's authority (invariant I1:
// at most one live contribution per authority per challenge — a second
// submission from the same authority is dropped, whatever its
// difficulty).
type Contribution struct {
	Authority  pool_vo.Authority
	Solution   pool_vo.Solution
	Difficulty uint32
}

func (c Contribution) Score() uint64 {
	return pool_vo.Score(c.Difficulty)
}
