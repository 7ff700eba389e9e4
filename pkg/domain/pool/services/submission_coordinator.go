package pool_services

import (
	"context"
	"fmt"
	"log/slog"

	common "github.com/ore-pool-go/operator/pkg/domain"
	pool_entities "github.com/ore-pool-go/operator/pkg/domain/pool/entities"
	pool_out "github.com/ore-pool-go/operator/pkg/domain/pool/ports/out"
)

// SubmissionCoordinator is C6: on each cutoff, lands the current
// winner's solution in one on-chain transaction, then rotates to the
// next challenge. It never submits on contribution arrival — only on
// the timer tick the caller (pkg/app/jobs) drives (Open Question #1).
type SubmissionCoordinator struct {
	aggregator *Aggregator
	reader     *ChallengeReader
	chain      pool_out.PoolProgramClient
	submitter  pool_out.TransactionSubmitter
	window     *pool_entities.AttributionWindow
}

func NewSubmissionCoordinator(aggregator *Aggregator, reader *ChallengeReader, chain pool_out.PoolProgramClient, submitter pool_out.TransactionSubmitter, window *pool_entities.AttributionWindow) *SubmissionCoordinator {
	return &SubmissionCoordinator{aggregator: aggregator, reader: reader, chain: chain, submitter: submitter, window: window}
}

// RunCutoff is invoked on each timer tick; it does not check the current
// challenge's cutoff itself. It extracts the winner under the lock, submits
// (if there is one), and always rotates + resets regardless of whether a
// winner existed (boundary case: winner absent at cutoff).
func (c *SubmissionCoordinator) RunCutoff(ctx context.Context, poolAddress string) error {
	outgoing := c.aggregator.CurrentChallenge()

	// Snapshot under the lock happens inside SnapshotAndReset, but we need
	// the attestation and winner *before* rotating, so read them via a
	// throwaway snapshot bound to a placeholder — the real swap happens
	// once rotation has a next challenge to install. Since rotation itself
	// is an RPC (a suspension point), we must not hold the aggregator lock
	// across it: take the snapshot first, submit, then install.
	snapshot := c.aggregator.SnapshotAndReset(outgoing, c.aggregator.NumMembersSnapshot())

	bucket := &pool_entities.AttributionBucket{
		LastHashAt:    outgoing.LastHashAt,
		Order:         snapshot.Order,
		Contributions: snapshot.Contributions,
		TotalScore:    snapshot.TotalScore,
	}
	c.window.Push(bucket)

	if snapshot.Winner == nil {
		slog.InfoContext(ctx, "cutoff: no winner, skipping submission", "last_hash_at", outgoing.LastHashAt)
	} else {
		attestation := snapshot.Attestation()
		instructions := c.chain.ComputeBudgetInstructions()
		instructions = append(instructions, c.chain.BuildSubmitInstruction(poolAddress, snapshot.Winner.Solution.Digest, snapshot.Winner.Solution.Nonce, attestation))

		signature, err := c.submitter.SubmitAndConfirm(ctx, instructions)
		if err != nil {
			slog.ErrorContext(ctx, "cutoff: submission failed", "error", err)
		} else {
			slog.InfoContext(ctx, "cutoff: submitted winning solution", "signature", signature, "difficulty", snapshot.Winner.Difficulty)
		}
	}

	next, err := c.reader.AwaitRotation(ctx, outgoing.LastHashAt, common.ChallengeRotatePolls, common.ChallengeRotateWait)
	if err != nil {
		return fmt.Errorf("cutoff: rotation failed, aggregator will keep rejecting contributions: %w", err)
	}

	c.aggregator.Install(next, next.NumMembersSnapshot)
	return nil
}
