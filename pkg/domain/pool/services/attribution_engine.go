package pool_services

import (
	"context"
	"log/slog"

	pool_entities "github.com/ore-pool-go/operator/pkg/domain/pool/entities"
	pool_out "github.com/ore-pool-go/operator/pkg/domain/pool/ports/out"
)

// AttributionEngine is C7: splits a confirmed mining event's net reward
// across the contributors of the finalized challenge, persists the
// per-member increments, and separately reconciles unsynced balances
// on-chain in bounded batches.
type AttributionEngine struct {
	members           *MemberDirectory
	chain             pool_out.PoolProgramClient
	submitter         pool_out.TransactionSubmitter
	poolAddress       string
	commissionPercent uint8
}

func NewAttributionEngine(members *MemberDirectory, chain pool_out.PoolProgramClient, submitter pool_out.TransactionSubmitter, poolAddress string, commissionPercent uint8) *AttributionEngine {
	return &AttributionEngine{
		members:           members,
		chain:             chain,
		submitter:         submitter,
		poolAddress:       poolAddress,
		commissionPercent: commissionPercent,
	}
}

// Split computes the §4.7 reward formula for one finalized bucket,
// writes every member's increment through the directory (I2), and
// returns the per-member reward/score maps for the PoolMiningEvent.
func (e *AttributionEngine) Split(ctx context.Context, bucket *pool_entities.AttributionBucket, event pool_entities.MiningEvent) (memberRewards map[string]uint64, memberScores map[string]uint64, err error) {
	distributable := event.Distributable(e.commissionPercent)

	memberRewards = make(map[string]uint64, len(bucket.Order))
	memberScores = make(map[string]uint64, len(bucket.Order))

	if bucket.TotalScore == 0 {
		return memberRewards, memberScores, nil
	}

	for _, authority := range bucket.Order {
		c, ok := bucket.Contributions[authority]
		if !ok {
			continue
		}
		score := c.Score()
		reward := distributable * score / bucket.TotalScore

		memberRewards[authority.String()] = reward
		memberScores[authority.String()] = score

		address, _ := e.chain.MemberPDA(authority, e.poolAddress)
		if err := e.members.IncrementTotalBalance(ctx, address, reward); err != nil {
			slog.ErrorContext(ctx, "attribution: failed to increment member balance", "authority", authority.String(), "error", err)
			return nil, nil, err
		}
	}

	return memberRewards, memberScores, nil
}

// ReconcileOnce drains up to one batch of unsynced members on-chain: up
// to MaxAttributeInstructionsPerTx attribute() instructions plus
// compute-budget instructions in one transaction. On confirmed success
// it marks exactly that batch synced, in one statement — never more,
// never speculatively. Returns the number of members synced.
func (e *AttributionEngine) ReconcileOnce(ctx context.Context, batchSize int) (int, error) {
	unsynced, err := e.members.ListUnsynced(ctx, batchSize)
	if err != nil {
		return 0, err
	}
	if len(unsynced) == 0 {
		return 0, nil
	}

	instructions := e.chain.ComputeBudgetInstructions()
	addresses := make([]string, 0, len(unsynced))
	for _, m := range unsynced {
		instructions = append(instructions, e.chain.BuildAttributeInstruction(e.poolAddress, m.Address, m.TotalBalance))
		addresses = append(addresses, m.Address)
	}

	if _, err := e.submitter.SubmitAndConfirm(ctx, instructions); err != nil {
		// Failure is never silently swallowed (§7): rows stay unsynced for
		// the next pass, nothing is marked.
		return 0, err
	}

	if err := e.members.MarkSynced(ctx, addresses); err != nil {
		return 0, err
	}
	return len(addresses), nil
}
