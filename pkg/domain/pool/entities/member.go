package pool_entities

import (
	common "github.com/ore-pool-go/operator/pkg/domain"
	pool_vo "github.com/ore-pool-go/operator/pkg/domain/pool/value-objects"
)

// Member is a registered miner: the off-chain mirror of an on-chain
// member PDA, plus bookkeeping the chain doesn't need to know about
// (IsSynced) and moderation flags the chain can't express cheaply
// (IsKicked).
//
// Invariant I2: TotalBalance is monotonically non-decreasing. Nothing in
// this package ever subtracts from it — attribution only adds, and
// commit-balance/reconciliation only set IsSynced, they never zero the
// balance locally (the chain-side claim is what actually moves funds).
type Member struct {
	common.BaseEntity
	Address      string // member PDA address, base58
	ID           uint64 // dense id assigned at registration from the pool's total_members, immutable thereafter
	Authority    pool_vo.Authority
	PoolAddress  string
	TotalBalance uint64
	IsApproved   bool
	IsKYC        bool
	IsKicked     bool
	IsSynced     bool
}

// IsAdmittedForNonce checks the nonce partition: member id's disjoint
// sub-range of the u64 space, sized by the snapshot taken when the
// current challenge was installed. Skipped (always true) when N=0.
func (m Member) IsAdmittedForNonce(nonce uint64, numMembersSnapshot uint64) bool {
	if numMembersSnapshot == 0 {
		return true
	}
	unit := ^uint64(0) / numMembersSnapshot
	lo := m.ID * unit
	hi := (m.ID + 1) * unit
	return nonce >= lo && nonce <= hi
}

func (m Member) IsAdmitted() bool {
	return m.IsApproved && !m.IsKicked
}
