package pool_usecases

import (
	"context"

	common "github.com/ore-pool-go/operator/pkg/domain"
	pool_entities "github.com/ore-pool-go/operator/pkg/domain/pool/entities"
	pool_in "github.com/ore-pool-go/operator/pkg/domain/pool/ports/in"
	pool_vo "github.com/ore-pool-go/operator/pkg/domain/pool/value-objects"
)

// eventSource is the narrow slice GetEventUseCase needs from
// pool_services.Aggregator's recent-events LRU.
type eventSource interface {
	LatestEventFor(authority pool_vo.Authority) (pool_entities.PoolMiningEvent, bool)
}

// GetEventUseCase implements GET /event/{authority}: the most recent
// mining event the member contributed to, with their personal reward and
// the difficulty of their own contribution to it (recovered from their
// score, since score is 2^difficulty).
type GetEventUseCase struct {
	events eventSource
}

func NewGetEventUseCase(events eventSource) *GetEventUseCase {
	return &GetEventUseCase{events: events}
}

func (uc *GetEventUseCase) LatestEvent(ctx context.Context, authority pool_vo.Authority) (*pool_in.EventView, error) {
	event, ok := uc.events.LatestEventFor(authority)
	if !ok {
		return nil, common.NewErrNotFound(common.ResourceTypeMiningEvent, "authority", authority.String())
	}

	key := authority.String()
	reward := event.MemberRewards[key]
	score := event.MemberScores[key]

	return &pool_in.EventView{
		Event:            event,
		MemberReward:     reward,
		MemberDifficulty: difficultyFromScore(score),
	}, nil
}

// difficultyFromScore inverts pool_vo.Score (2^difficulty): the largest d
// such that 2^d <= score, 0 for score==0.
func difficultyFromScore(score uint64) uint32 {
	if score == 0 {
		return 0
	}
	var d uint32
	for score > 1 {
		score >>= 1
		d++
	}
	return d
}
