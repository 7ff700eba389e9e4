// Package pool_out defines outbound collaborator interfaces for the pool domain.
package pool_out

import (
	"context"

	pool_entities "github.com/ore-pool-go/operator/pkg/domain/pool/entities"
	pool_vo "github.com/ore-pool-go/operator/pkg/domain/pool/value-objects"
)

// MemberRepository is the relational persistence collaborator (§6: "the
// relational persistence driver"). The database is the sole source of
// truth for member state — no in-process cache is allowed to diverge, so
// every mutation here must write through before returning (§5).
type MemberRepository interface {
	FindByAuthority(ctx context.Context, authority pool_vo.Authority) (*pool_entities.Member, error)
	FindByAddress(ctx context.Context, address string) (*pool_entities.Member, error)
	Insert(ctx context.Context, member *pool_entities.Member) error

	// IncrementTotalBalance atomically adds delta to total_balance and
	// clears is_synced in one statement (I2: monotonic, never a set).
	IncrementTotalBalance(ctx context.Context, address string, delta uint64) error

	// MarkSynced clears the unsynced flag for a batch of addresses in one
	// statement, only ever called after a landing+confirmed attribution.
	MarkSynced(ctx context.Context, addresses []string) error

	// ListUnsynced streams members with is_synced=false for the
	// reconciliation runner.
	ListUnsynced(ctx context.Context, limit int) ([]pool_entities.Member, error)

	CountApproved(ctx context.Context) (uint64, error)
}
