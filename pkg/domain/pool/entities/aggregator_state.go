package pool_entities

import pool_vo "github.com/ore-pool-go/operator/pkg/domain/pool/value-objects"

// AggregatorState is the mutable state the Contribution Aggregator (C3)
// owns for the currently-open challenge. Every field here lives behind
// one mutex in the service that wraps it (pool_services.Aggregator);
// this type itself has no locking of its own — it is a value the lock
// owner copies out of or swaps wholesale.
type AggregatorState struct {
	CurrentChallenge   Challenge
	Order              []pool_vo.Authority // insertion order, for attestation hashing (I3/§4.3)
	Contributions      map[pool_vo.Authority]Contribution
	Winner             *Contribution
	TotalScore         uint64
	NumMembersSnapshot uint64
}

func NewAggregatorState(challenge Challenge, numMembers uint64) AggregatorState {
	return AggregatorState{
		CurrentChallenge:   challenge,
		Contributions:      make(map[pool_vo.Authority]Contribution),
		NumMembersSnapshot: numMembers,
	}
}

// Attestation builds the SHA3-256 digest over every accepted
// contribution's "{authority} {digest_hex} {nonce}\n" line, in the order
// they were inserted — never HashSet/map iteration order.
func (s AggregatorState) Attestation() [32]byte {
	return computeAttestation(s.Order, s.Contributions)
}
