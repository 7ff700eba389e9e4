package pool_entities

import (
	common "github.com/ore-pool-go/operator/pkg/domain"
	pool_vo "github.com/ore-pool-go/operator/pkg/domain/pool/value-objects"
)

// Pool is the single on-chain pool account this operator signs for. Each
// operator process manages exactly one pool (no multi-pool fan-out).
// TotalMembers only ever grows; Attestation and LastHashAt advance only
// at submission time.
type Pool struct {
	common.BaseEntity
	Authority        pool_vo.Authority // the operator's own signing authority
	PoolAddress      string            // PDA derived from Authority, base58
	URL              string
	Attestation      [32]byte
	LastHashAt       int64
	TotalMembers     uint64
	LastTotalMembers uint64
}
