package pool_usecases

import (
	"context"
	"fmt"

	pool_in "github.com/ore-pool-go/operator/pkg/domain/pool/ports/in"
	pool_out "github.com/ore-pool-go/operator/pkg/domain/pool/ports/out"
	pool_vo "github.com/ore-pool-go/operator/pkg/domain/pool/value-objects"
)

// CommitBalanceUseCase implements POST /commit-balance (§4.7 on-demand
// commit path): validates the client's transaction shape, verifies the
// attribute amount matches the member's durable total exactly, co-signs
// the client's own transaction with the operator key, and lands exactly
// that transaction (claim() included, when present) — never a freshly
// built one — then marks the member synced.
//
// Every failure on this path (parse, fee-payer, lookup, amount mismatch,
// submission) is reported as a plain error so it falls through
// writeError's default 500 case (§4.8/§7); none of these are the
// client's fault to retry with a different request.
type CommitBalanceUseCase struct {
	members     memberDirectory
	parser      pool_out.TransactionParser
	submitter   pool_out.TransactionSubmitter
	operatorKey string // operator's own base58 authority, to reject self-fee-payer transactions
}

func NewCommitBalanceUseCase(members memberDirectory, parser pool_out.TransactionParser, submitter pool_out.TransactionSubmitter, operatorKey string) *CommitBalanceUseCase {
	return &CommitBalanceUseCase{members: members, parser: parser, submitter: submitter, operatorKey: operatorKey}
}

func (uc *CommitBalanceUseCase) CommitBalance(ctx context.Context, cmd pool_in.CommitBalanceCommand) (*pool_in.CommitBalanceResult, error) {
	parsed, err := uc.parser.ParseAttributionTransaction(cmd.TransactionBase64)
	if err != nil {
		return nil, fmt.Errorf("commit-balance: %w", err)
	}

	if parsed.FeePayer == uc.operatorKey {
		return nil, fmt.Errorf("commit-balance: fee payer must not be the operator")
	}

	authority, err := pool_vo.NewAuthority(parsed.MemberAuthority)
	if err != nil {
		return nil, fmt.Errorf("commit-balance: %w", err)
	}

	member, err := uc.members.Get(ctx, authority)
	if err != nil {
		return nil, fmt.Errorf("commit-balance: member lookup failed: %w", err)
	}

	if parsed.AttributeAmount != member.TotalBalance {
		return nil, fmt.Errorf("commit-balance: attribute amount %d does not match member total_balance %d", parsed.AttributeAmount, member.TotalBalance)
	}

	signature, err := uc.submitter.CoSignAndSubmit(ctx, parsed)
	if err != nil {
		return nil, fmt.Errorf("commit-balance: %w", err)
	}

	if err := uc.markSynced(ctx, member.Address); err != nil {
		return nil, fmt.Errorf("commit-balance: %w", err)
	}

	return &pool_in.CommitBalanceResult{TotalBalance: member.TotalBalance, Signature: signature}, nil
}

func (uc *CommitBalanceUseCase) markSynced(ctx context.Context, address string) error {
	type syncer interface {
		MarkSynced(ctx context.Context, addresses []string) error
	}
	if s, ok := uc.members.(syncer); ok {
		return s.MarkSynced(ctx, []string{address})
	}
	return nil
}
