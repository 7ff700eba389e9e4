package pool_usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pool_entities "github.com/ore-pool-go/operator/pkg/domain/pool/entities"
	pool_in "github.com/ore-pool-go/operator/pkg/domain/pool/ports/in"
	pool_out "github.com/ore-pool-go/operator/pkg/domain/pool/ports/out"
)

func TestCommitBalanceUseCase_CommitBalance_Success(t *testing.T) {
	authority := testAuthorityValue()
	dir := newFakeMemberDirectory()
	dir.byAuthority[authority] = &pool_entities.Member{Authority: authority, Address: "member-pda", TotalBalance: 500}

	parser := &fakeTransactionParser{result: &pool_out.ParsedAttributionTransaction{
		FeePayer:        "client-fee-payer",
		MemberAuthority: authority.String(),
		AttributeAmount: 500,
	}}
	submitter := &fakeTransactionSubmitter{signature: "landed-sig"}

	uc := NewCommitBalanceUseCase(dir, parser, submitter, "operator-authority")

	result, err := uc.CommitBalance(context.Background(), pool_in.CommitBalanceCommand{TransactionBase64: "tx"})

	require.NoError(t, err)
	assert.Equal(t, uint64(500), result.TotalBalance)
	assert.Equal(t, "landed-sig", result.Signature)
	require.Len(t, dir.markSyncedCalls, 1)
	assert.Equal(t, []string{"member-pda"}, dir.markSyncedCalls[0])
}

func TestCommitBalanceUseCase_CommitBalance_OperatorAsFeePayer_Rejected(t *testing.T) {
	dir := newFakeMemberDirectory()
	parser := &fakeTransactionParser{result: &pool_out.ParsedAttributionTransaction{FeePayer: "operator-authority"}}
	uc := NewCommitBalanceUseCase(dir, parser, &fakeTransactionSubmitter{}, "operator-authority")

	_, err := uc.CommitBalance(context.Background(), pool_in.CommitBalanceCommand{TransactionBase64: "tx"})

	assert.Error(t, err)
}

func TestCommitBalanceUseCase_CommitBalance_AmountMismatch_Rejected(t *testing.T) {
	authority := testAuthorityValue()
	dir := newFakeMemberDirectory()
	dir.byAuthority[authority] = &pool_entities.Member{Authority: authority, Address: "member-pda", TotalBalance: 500}

	parser := &fakeTransactionParser{result: &pool_out.ParsedAttributionTransaction{
		FeePayer:        "client-fee-payer",
		MemberAuthority: authority.String(),
		AttributeAmount: 499,
	}}
	uc := NewCommitBalanceUseCase(dir, parser, &fakeTransactionSubmitter{}, "operator-authority")

	_, err := uc.CommitBalance(context.Background(), pool_in.CommitBalanceCommand{TransactionBase64: "tx"})

	assert.Error(t, err)
}

func TestCommitBalanceUseCase_CommitBalance_ParseFailure_Rejected(t *testing.T) {
	dir := newFakeMemberDirectory()
	parser := &fakeTransactionParser{err: assert.AnError}
	uc := NewCommitBalanceUseCase(dir, parser, &fakeTransactionSubmitter{}, "operator-authority")

	_, err := uc.CommitBalance(context.Background(), pool_in.CommitBalanceCommand{TransactionBase64: "garbage"})

	assert.Error(t, err)
}

func TestCommitBalanceUseCase_CommitBalance_SubmissionFailure_NotMarkedSynced(t *testing.T) {
	authority := testAuthorityValue()
	dir := newFakeMemberDirectory()
	dir.byAuthority[authority] = &pool_entities.Member{Authority: authority, Address: "member-pda", TotalBalance: 500}

	parser := &fakeTransactionParser{result: &pool_out.ParsedAttributionTransaction{
		FeePayer:        "client-fee-payer",
		MemberAuthority: authority.String(),
		AttributeAmount: 500,
	}}
	submitter := &fakeTransactionSubmitter{err: assert.AnError}
	uc := NewCommitBalanceUseCase(dir, parser, submitter, "operator-authority")

	_, err := uc.CommitBalance(context.Background(), pool_in.CommitBalanceCommand{TransactionBase64: "tx"})

	assert.Error(t, err)
	assert.Empty(t, dir.markSyncedCalls)
}
