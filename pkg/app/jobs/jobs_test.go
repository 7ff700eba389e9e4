package jobs

import (
	"context"

	pool_entities "github.com/ore-pool-go/operator/pkg/domain/pool/entities"
	pool_out "github.com/ore-pool-go/operator/pkg/domain/pool/ports/out"
	pool_vo "github.com/ore-pool-go/operator/pkg/domain/pool/value-objects"
)

// fakeMemberRepository is an in-memory stand-in for pool_out.MemberRepository.
type fakeMemberRepository struct {
	byAddress map[string]*pool_entities.Member
	unsynced  map[string]bool
}

func newFakeMemberRepository() *fakeMemberRepository {
	return &fakeMemberRepository{byAddress: map[string]*pool_entities.Member{}, unsynced: map[string]bool{}}
}

func (r *fakeMemberRepository) FindByAuthority(_ context.Context, authority pool_vo.Authority) (*pool_entities.Member, error) {
	for _, m := range r.byAddress {
		if m.Authority == authority {
			return m, nil
		}
	}
	return nil, nil
}

func (r *fakeMemberRepository) FindByAddress(_ context.Context, address string) (*pool_entities.Member, error) {
	return r.byAddress[address], nil
}

func (r *fakeMemberRepository) Insert(_ context.Context, member *pool_entities.Member) error {
	r.byAddress[member.Address] = member
	return nil
}

func (r *fakeMemberRepository) IncrementTotalBalance(_ context.Context, address string, delta uint64) error {
	if m, ok := r.byAddress[address]; ok {
		m.TotalBalance += delta
		r.unsynced[address] = true
	}
	return nil
}

func (r *fakeMemberRepository) MarkSynced(_ context.Context, addresses []string) error {
	for _, a := range addresses {
		delete(r.unsynced, a)
	}
	return nil
}

func (r *fakeMemberRepository) ListUnsynced(_ context.Context, limit int) ([]pool_entities.Member, error) {
	var out []pool_entities.Member
	for addr := range r.unsynced {
		out = append(out, *r.byAddress[addr])
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeMemberRepository) CountApproved(_ context.Context) (uint64, error) {
	var n uint64
	for _, m := range r.byAddress {
		if m.IsApproved && !m.IsKicked {
			n++
		}
	}
	return n, nil
}

var _ pool_out.MemberRepository = (*fakeMemberRepository)(nil)

// fakeProgramClient embeds the interface, overriding only what the jobs
// under test exercise.
type fakeProgramClient struct {
	pool_out.PoolProgramClient
	proof *pool_out.ProofAccount
}

func (f *fakeProgramClient) ComputeBudgetInstructions() []pool_out.Instruction {
	return []pool_out.Instruction{{ProgramID: "compute-budget"}}
}

func (f *fakeProgramClient) BuildAttributeInstruction(poolAddress, memberAddress string, totalBalance uint64) pool_out.Instruction {
	return pool_out.Instruction{ProgramID: poolAddress, Accounts: []pool_out.AccountMeta{{Pubkey: memberAddress}}}
}

func (f *fakeProgramClient) BuildSubmitInstruction(poolAddress string, digest [16]byte, nonce uint64, attestation [32]byte) pool_out.Instruction {
	return pool_out.Instruction{ProgramID: poolAddress}
}

func (f *fakeProgramClient) GetProof(context.Context, string) (*pool_out.ProofAccount, error) {
	if f.proof != nil {
		return f.proof, nil
	}
	return &pool_out.ProofAccount{}, nil
}

func (f *fakeProgramClient) GetPoolConfigMinDifficulty(context.Context) (uint32, error) {
	return 0, nil
}

type fakeSubmitter struct {
	calls int
	err   error
}

func (s *fakeSubmitter) SubmitAndConfirm(context.Context, []pool_out.Instruction) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return "signature", nil
}

func (s *fakeSubmitter) CoSignAndSubmit(context.Context, *pool_out.ParsedAttributionTransaction) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return "signature", nil
}
