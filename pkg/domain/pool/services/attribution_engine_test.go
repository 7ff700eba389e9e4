package pool_services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pool_entities "github.com/ore-pool-go/operator/pkg/domain/pool/entities"
	pool_out "github.com/ore-pool-go/operator/pkg/domain/pool/ports/out"
	pool_vo "github.com/ore-pool-go/operator/pkg/domain/pool/value-objects"
)

// fakeMemberRepository is an in-memory stand-in for pool_out.MemberRepository,
// keyed by member PDA address the way the real Postgres table is.
type fakeMemberRepository struct {
	byAddress map[string]*pool_entities.Member
	unsynced  map[string]bool

	incrementCalled  bool
	markSyncedCalled bool
	countApproved    uint64
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
	r.incrementCalled = true
	m, ok := r.byAddress[address]
	if !ok {
		return nil
	}
	m.TotalBalance += delta
	r.unsynced[address] = true
	return nil
}

func (r *fakeMemberRepository) MarkSynced(_ context.Context, addresses []string) error {
	r.markSyncedCalled = true
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
	if r.countApproved != 0 {
		return r.countApproved, nil
	}
	var n uint64
	for _, m := range r.byAddress {
		if m.IsApproved && !m.IsKicked {
			n++
		}
	}
	return n, nil
}

var _ pool_out.MemberRepository = (*fakeMemberRepository)(nil)

// fakeProgramClient embeds the interface to satisfy it without stubbing
// every method; only MemberPDA and the instruction builders this test
// touches are overridden.
type fakeProgramClient struct {
	pool_out.PoolProgramClient

	onChainExists bool
	onChainID     uint64

	proof         *pool_out.ProofAccount
	proofErr      error
	configMinDiff uint32
	configMinErr  error
}

func (f *fakeProgramClient) GetProof(_ context.Context, _ string) (*pool_out.ProofAccount, error) {
	if f.proofErr != nil {
		return nil, f.proofErr
	}
	if f.proof != nil {
		return f.proof, nil
	}
	return &pool_out.ProofAccount{}, nil
}

func (f *fakeProgramClient) GetPoolConfigMinDifficulty(_ context.Context) (uint32, error) {
	return f.configMinDiff, f.configMinErr
}

func (f *fakeProgramClient) MemberPDA(authority pool_vo.Authority, _ string) (string, uint8) {
	return "pda-" + authority.String(), 0
}

func (f *fakeProgramClient) GetOnChainMember(_ context.Context, _ pool_vo.Authority, _ string) (bool, uint64, error) {
	return f.onChainExists, f.onChainID, nil
}

func (f *fakeProgramClient) ComputeBudgetInstructions() []pool_out.Instruction {
	return []pool_out.Instruction{{ProgramID: "compute-budget"}}
}

func (f *fakeProgramClient) BuildAttributeInstruction(poolAddress, memberAddress string, totalBalance uint64) pool_out.Instruction {
	return pool_out.Instruction{ProgramID: poolAddress, Accounts: []pool_out.AccountMeta{{Pubkey: memberAddress}}}
}

type fakeSubmitter struct {
	calls        int
	instructions [][]pool_out.Instruction
	err          error
}

func (s *fakeSubmitter) SubmitAndConfirm(_ context.Context, instructions []pool_out.Instruction) (string, error) {
	s.calls++
	s.instructions = append(s.instructions, instructions)
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

func newTestAttributionEngine(repo *fakeMemberRepository, chain *fakeProgramClient, submitter *fakeSubmitter, commission uint8) *AttributionEngine {
	directory := NewMemberDirectory(repo, chain, "pool-address")
	return NewAttributionEngine(directory, chain, submitter, "pool-address", commission)
}

func TestAttributionEngine_Split_DividesByScoreShare(t *testing.T) {
	repo := newFakeMemberRepository()
	a := pool_vo.Authority("a")
	b := pool_vo.Authority("b")
	repo.byAddress["pda-a"] = &pool_entities.Member{Address: "pda-a", Authority: a}
	repo.byAddress["pda-b"] = &pool_entities.Member{Address: "pda-b", Authority: b}

	engine := newTestAttributionEngine(repo, &fakeProgramClient{}, &fakeSubmitter{}, 5)

	bucket := &pool_entities.AttributionBucket{
		Order: []pool_vo.Authority{a, b},
		Contributions: map[pool_vo.Authority]pool_entities.Contribution{
			a: {Authority: a, Difficulty: 0}, // score 1
			b: {Authority: b, Difficulty: 1}, // score 2
		},
		TotalScore: 3,
	}
	event := pool_entities.MiningEvent{NetReward: 300}

	rewards, scores, err := engine.Split(context.Background(), bucket, event)

	require.NoError(t, err)
	// distributable = 300 - 15 (5%) = 285; a gets 285*1/3=95, b gets 285*2/3=190
	assert.Equal(t, uint64(95), rewards[a.String()])
	assert.Equal(t, uint64(190), rewards[b.String()])
	assert.Equal(t, uint64(1), scores[a.String()])
	assert.Equal(t, uint64(2), scores[b.String()])
	assert.Equal(t, uint64(95), repo.byAddress["pda-a"].TotalBalance)
	assert.Equal(t, uint64(190), repo.byAddress["pda-b"].TotalBalance)
}

func TestAttributionEngine_Split_ZeroTotalScoreYieldsNoRewards(t *testing.T) {
	repo := newFakeMemberRepository()
	engine := newTestAttributionEngine(repo, &fakeProgramClient{}, &fakeSubmitter{}, 5)

	bucket := &pool_entities.AttributionBucket{TotalScore: 0}
	rewards, scores, err := engine.Split(context.Background(), bucket, pool_entities.MiningEvent{NetReward: 100})

	require.NoError(t, err)
	assert.Empty(t, rewards)
	assert.Empty(t, scores)
}

func TestAttributionEngine_ReconcileOnce_SubmitsAndMarksSynced(t *testing.T) {
	repo := newFakeMemberRepository()
	repo.byAddress["pda-a"] = &pool_entities.Member{Address: "pda-a", TotalBalance: 50}
	repo.unsynced["pda-a"] = true

	submitter := &fakeSubmitter{}
	engine := newTestAttributionEngine(repo, &fakeProgramClient{}, submitter, 5)

	n, err := engine.ReconcileOnce(context.Background(), 10)

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, repo.unsynced)
	assert.Equal(t, 1, submitter.calls)
}

func TestAttributionEngine_ReconcileOnce_NothingUnsynced_NoSubmission(t *testing.T) {
	repo := newFakeMemberRepository()
	submitter := &fakeSubmitter{}
	engine := newTestAttributionEngine(repo, &fakeProgramClient{}, submitter, 5)

	n, err := engine.ReconcileOnce(context.Background(), 10)

	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, submitter.calls)
}

func TestAttributionEngine_ReconcileOnce_SubmissionFailureLeavesUnsynced(t *testing.T) {
	repo := newFakeMemberRepository()
	repo.byAddress["pda-a"] = &pool_entities.Member{Address: "pda-a", TotalBalance: 50}
	repo.unsynced["pda-a"] = true

	submitter := &fakeSubmitter{err: assert.AnError}
	engine := newTestAttributionEngine(repo, &fakeProgramClient{}, submitter, 5)

	n, err := engine.ReconcileOnce(context.Background(), 10)

	assert.Error(t, err)
	assert.Equal(t, 0, n)
	assert.Contains(t, repo.unsynced, "pda-a")
}
