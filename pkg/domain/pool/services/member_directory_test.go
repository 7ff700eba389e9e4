package pool_services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	common "github.com/ore-pool-go/operator/pkg/domain"
	pool_entities "github.com/ore-pool-go/operator/pkg/domain/pool/entities"
)

func TestMemberDirectory_Get_LocalHit(t *testing.T) {
	authority, _ := newTestAuthority(t)
	repo := newFakeMemberRepository()
	repo.byAddress["member-pda"] = &pool_entities.Member{Authority: authority, Address: "member-pda"}

	dir := NewMemberDirectory(repo, &fakeProgramClient{}, "pool-pda")

	member, err := dir.Get(context.Background(), authority)

	require.NoError(t, err)
	assert.Equal(t, "member-pda", member.Address)
}

func TestMemberDirectory_Get_LocalMiss_NotFound(t *testing.T) {
	authority, _ := newTestAuthority(t)
	dir := NewMemberDirectory(newFakeMemberRepository(), &fakeProgramClient{}, "pool-pda")

	_, err := dir.Get(context.Background(), authority)

	assert.True(t, common.IsNotFoundError(err))
}

func TestMemberDirectory_GetOrRegister_LocalHit_ReturnsAsIs(t *testing.T) {
	authority, _ := newTestAuthority(t)
	repo := newFakeMemberRepository()
	repo.byAddress["member-pda"] = &pool_entities.Member{Authority: authority, Address: "member-pda", IsApproved: true}

	dir := NewMemberDirectory(repo, &fakeProgramClient{}, "pool-pda")

	member, err := dir.GetOrRegister(context.Background(), authority)

	require.NoError(t, err)
	assert.True(t, member.IsApproved)
}

func TestMemberDirectory_GetOrRegister_LocalMiss_OnChainHit_InsertsUnapproved(t *testing.T) {
	authority, _ := newTestAuthority(t)
	repo := newFakeMemberRepository()
	chain := &fakeProgramClient{onChainExists: true, onChainID: 9}

	dir := NewMemberDirectory(repo, chain, "pool-pda")

	member, err := dir.GetOrRegister(context.Background(), authority)

	require.NoError(t, err)
	assert.False(t, member.IsApproved)
	assert.Equal(t, uint64(9), member.ID)
	assert.Contains(t, repo.byAddress, member.Address)
}

func TestMemberDirectory_GetOrRegister_LocalMiss_OnChainMiss_NotFound_NoInsert(t *testing.T) {
	authority, _ := newTestAuthority(t)
	repo := newFakeMemberRepository()
	chain := &fakeProgramClient{onChainExists: false}

	dir := NewMemberDirectory(repo, chain, "pool-pda")

	_, err := dir.GetOrRegister(context.Background(), authority)

	assert.True(t, common.IsNotFoundError(err))
	assert.Empty(t, repo.byAddress)
}

func TestMemberDirectory_IncrementTotalBalance_ZeroDeltaIsNoOp(t *testing.T) {
	repo := newFakeMemberRepository()
	dir := NewMemberDirectory(repo, &fakeProgramClient{}, "pool-pda")

	err := dir.IncrementTotalBalance(context.Background(), "member-pda", 0)

	require.NoError(t, err)
	assert.False(t, repo.incrementCalled)
}

func TestMemberDirectory_MarkSynced_EmptyIsNoOp(t *testing.T) {
	repo := newFakeMemberRepository()
	dir := NewMemberDirectory(repo, &fakeProgramClient{}, "pool-pda")

	err := dir.MarkSynced(context.Background(), nil)

	require.NoError(t, err)
	assert.False(t, repo.markSyncedCalled)
}

func TestMemberDirectory_CountApproved_DelegatesToRepository(t *testing.T) {
	repo := newFakeMemberRepository()
	repo.countApproved = 4
	dir := NewMemberDirectory(repo, &fakeProgramClient{}, "pool-pda")

	count, err := dir.CountApproved(context.Background())

	require.NoError(t, err)
	assert.Equal(t, uint64(4), count)
}
