package pool_services

import (
	"context"

	common "github.com/ore-pool-go/operator/pkg/domain"
	pool_entities "github.com/ore-pool-go/operator/pkg/domain/pool/entities"
	pool_out "github.com/ore-pool-go/operator/pkg/domain/pool/ports/out"
	pool_vo "github.com/ore-pool-go/operator/pkg/domain/pool/value-objects"
)

// MemberDirectory is C2. The database is the sole source of truth; this
// type holds no in-process cache (§5) — every call that learns something
// new writes it through before returning.
type MemberDirectory struct {
	repo        pool_out.MemberRepository
	chain       pool_out.PoolProgramClient
	poolAddress string
}

func NewMemberDirectory(repo pool_out.MemberRepository, chain pool_out.PoolProgramClient, poolAddress string) *MemberDirectory {
	return &MemberDirectory{repo: repo, chain: chain, poolAddress: poolAddress}
}

// Get returns the durable member record, or NotFound.
func (d *MemberDirectory) Get(ctx context.Context, authority pool_vo.Authority) (*pool_entities.Member, error) {
	member, err := d.repo.FindByAuthority(ctx, authority)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, common.NewErrNotFound(common.ResourceTypeMember, "authority", authority.String())
	}
	return member, nil
}

// GetOrRegister implements the §4.2 registration policy exactly:
//   - local hit: return as-is.
//   - local miss, on-chain hit: insert locally with the chain id,
//     is_approved=false. One-way cache, never collides ids.
//   - local miss, on-chain miss: NotFound. The operator never creates the
//     on-chain account itself — that's the client's job.
func (d *MemberDirectory) GetOrRegister(ctx context.Context, authority pool_vo.Authority) (*pool_entities.Member, error) {
	member, err := d.repo.FindByAuthority(ctx, authority)
	if err != nil {
		return nil, err
	}
	if member != nil {
		return member, nil
	}

	exists, id, err := d.chain.GetOnChainMember(ctx, authority, d.poolAddress)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, common.NewErrNotFound(common.ResourceTypeMember, "authority", authority.String())
	}

	address, _ := d.chain.MemberPDA(authority, d.poolAddress)
	newMember := &pool_entities.Member{
		BaseEntity:  common.NewEntity(),
		Address:     address,
		ID:          id,
		Authority:   authority,
		PoolAddress: d.poolAddress,
		IsApproved:  false,
	}
	if err := d.repo.Insert(ctx, newMember); err != nil {
		return nil, err
	}
	return newMember, nil
}

// IncrementTotalBalance adds delta to the member's lifetime total and
// clears is_synced, in one durable write (I2).
func (d *MemberDirectory) IncrementTotalBalance(ctx context.Context, address string, delta uint64) error {
	if delta == 0 {
		return nil
	}
	return d.repo.IncrementTotalBalance(ctx, address, delta)
}

func (d *MemberDirectory) MarkSynced(ctx context.Context, addresses []string) error {
	if len(addresses) == 0 {
		return nil
	}
	return d.repo.MarkSynced(ctx, addresses)
}

func (d *MemberDirectory) ListUnsynced(ctx context.Context, limit int) ([]pool_entities.Member, error) {
	return d.repo.ListUnsynced(ctx, limit)
}

func (d *MemberDirectory) CountApproved(ctx context.Context) (uint64, error) {
	return d.repo.CountApproved(ctx)
}
