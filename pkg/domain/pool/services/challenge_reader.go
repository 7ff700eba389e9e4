package pool_services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	common "github.com/ore-pool-go/operator/pkg/domain"
	pool_entities "github.com/ore-pool-go/operator/pkg/domain/pool/entities"
	pool_out "github.com/ore-pool-go/operator/pkg/domain/pool/ports/out"
)

// ChallengeReader is C1: fetches the on-chain proof and derives the
// local Challenge view, and drives the post-submission rotation poll.
type ChallengeReader struct {
	chain              pool_out.PoolProgramClient
	poolAddress        string
	operatorMinFloor   uint32
	members            interface {
		CountApproved(ctx context.Context) (uint64, error)
	}
}

func NewChallengeReader(chain pool_out.PoolProgramClient, poolAddress string, operatorMinFloor uint32, members interface {
	CountApproved(ctx context.Context) (uint64, error)
}) *ChallengeReader {
	return &ChallengeReader{chain: chain, poolAddress: poolAddress, operatorMinFloor: operatorMinFloor, members: members}
}

// CurrentChallenge fetches the live proof account and derives the
// (challenge, last_hash_at, min_difficulty) triple, stamping in a fresh
// num_members_snapshot (Open Question #3: captured once per install,
// stable for the challenge's whole lifetime).
func (r *ChallengeReader) CurrentChallenge(ctx context.Context) (pool_entities.Challenge, error) {
	proof, err := r.chain.GetProof(ctx, r.poolAddress)
	if err != nil {
		return pool_entities.Challenge{}, fmt.Errorf("challenge reader: fetch proof: %w", err)
	}

	configMin, err := r.chain.GetPoolConfigMinDifficulty(ctx)
	if err != nil {
		return pool_entities.Challenge{}, fmt.Errorf("challenge reader: fetch config: %w", err)
	}

	minDifficulty := configMin
	if r.operatorMinFloor > minDifficulty {
		minDifficulty = r.operatorMinFloor
	}

	numMembers, err := r.members.CountApproved(ctx)
	if err != nil {
		return pool_entities.Challenge{}, fmt.Errorf("challenge reader: count members: %w", err)
	}

	return pool_entities.Challenge{
		Digest:             proof.Challenge,
		LastHashAt:         proof.LastHashAt,
		MinDifficulty:      minDifficulty,
		NumMembersSnapshot: numMembers,
		InstalledAt:        time.Now(),
	}, nil
}

// Cutoff is how long a challenge still has before the chain ticks over.
func (r *ChallengeReader) Cutoff(now time.Time, challenge pool_entities.Challenge) time.Duration {
	return challenge.Cutoff(now, common.ChainTickSeconds, common.OperatorBufferSeconds)
}

// AwaitRotation polls until the on-chain last_hash_at advances past
// previousLastHashAt, bounded by attempts/interval (§4.1). Returning an
// error here is fatal to the round: the caller must keep the aggregator
// rejecting contributions until a subsequent attempt succeeds.
func (r *ChallengeReader) AwaitRotation(ctx context.Context, previousLastHashAt int64, attempts int, interval time.Duration) (pool_entities.Challenge, error) {
	for i := 0; i < attempts; i++ {
		challenge, err := r.CurrentChallenge(ctx)
		if err != nil {
			slog.ErrorContext(ctx, "challenge rotation: fetch failed", "attempt", i, "error", err)
		} else if challenge.LastHashAt > previousLastHashAt {
			return challenge, nil
		}

		select {
		case <-ctx.Done():
			return pool_entities.Challenge{}, ctx.Err()
		case <-time.After(interval):
		}
	}
	return pool_entities.Challenge{}, fmt.Errorf("challenge reader: rotation did not advance past last_hash_at=%d within %d attempts", previousLastHashAt, attempts)
}
