package pool_usecases

import (
	"context"

	pool_entities "github.com/ore-pool-go/operator/pkg/domain/pool/entities"
	pool_out "github.com/ore-pool-go/operator/pkg/domain/pool/ports/out"
	pool_vo "github.com/ore-pool-go/operator/pkg/domain/pool/value-objects"
)

// fakeMemberDirectory is an in-memory stand-in for pool_services.MemberDirectory,
// satisfying every narrow interface the usecases package declares against it.
type fakeMemberDirectory struct {
	byAuthority      map[pool_vo.Authority]*pool_entities.Member
	getOrRegisterErr error
	getErr           error
	markSyncedCalls  [][]string
}

func newFakeMemberDirectory() *fakeMemberDirectory {
	return &fakeMemberDirectory{byAuthority: map[pool_vo.Authority]*pool_entities.Member{}}
}

func (f *fakeMemberDirectory) GetOrRegister(_ context.Context, authority pool_vo.Authority) (*pool_entities.Member, error) {
	if f.getOrRegisterErr != nil {
		return nil, f.getOrRegisterErr
	}
	return f.byAuthority[authority], nil
}

func (f *fakeMemberDirectory) Get(_ context.Context, authority pool_vo.Authority) (*pool_entities.Member, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.byAuthority[authority], nil
}

func (f *fakeMemberDirectory) MarkSynced(_ context.Context, addresses []string) error {
	f.markSyncedCalls = append(f.markSyncedCalls, addresses)
	return nil
}

type fakeAdmissionFilter struct {
	contribution *pool_entities.Contribution
	err          error
}

func (f *fakeAdmissionFilter) Admit(context.Context, pool_vo.Authority, pool_vo.Solution, []byte) (*pool_entities.Contribution, error) {
	return f.contribution, f.err
}

type fakeAggregatorInserter struct {
	inserted []pool_entities.Contribution
}

func (f *fakeAggregatorInserter) Insert(c pool_entities.Contribution) {
	f.inserted = append(f.inserted, c)
}

type fakeAggregatorChallenge struct {
	challenge  pool_entities.Challenge
	numMembers uint64
}

func (f *fakeAggregatorChallenge) CurrentChallenge() pool_entities.Challenge { return f.challenge }
func (f *fakeAggregatorChallenge) NumMembersSnapshot() uint64                { return f.numMembers }

type fakeEventSource struct {
	event pool_entities.PoolMiningEvent
	found bool
}

func (f *fakeEventSource) LatestEventFor(pool_vo.Authority) (pool_entities.PoolMiningEvent, bool) {
	return f.event, f.found
}

type fakeTransactionParser struct {
	result *pool_out.ParsedAttributionTransaction
	err    error
}

func (f *fakeTransactionParser) ParseAttributionTransaction(string) (*pool_out.ParsedAttributionTransaction, error) {
	return f.result, f.err
}

type fakeTransactionSubmitter struct {
	signature string
	err       error
}

func (f *fakeTransactionSubmitter) SubmitAndConfirm(context.Context, []pool_out.Instruction) (string, error) {
	return f.signature, f.err
}

func (f *fakeTransactionSubmitter) CoSignAndSubmit(context.Context, *pool_out.ParsedAttributionTransaction) (string, error) {
	return f.signature, f.err
}

type fakeAttributionWindow struct {
	buckets map[int64]*pool_entities.AttributionBucket
}

func (f *fakeAttributionWindow) Get(lastHashAt int64) (*pool_entities.AttributionBucket, bool) {
	b, ok := f.buckets[lastHashAt]
	return b, ok
}

type fakeAttributionSplitter struct {
	rewards map[string]uint64
	scores  map[string]uint64
	err     error
}

func (f *fakeAttributionSplitter) Split(context.Context, *pool_entities.AttributionBucket, pool_entities.MiningEvent) (map[string]uint64, map[string]uint64, error) {
	return f.rewards, f.scores, f.err
}

type fakeEventRecorder struct {
	recorded []pool_entities.PoolMiningEvent
}

func (f *fakeEventRecorder) RecordEvent(e pool_entities.PoolMiningEvent) {
	f.recorded = append(f.recorded, e)
}
