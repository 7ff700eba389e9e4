package pool_in

import (
	"context"

	pool_entities "github.com/ore-pool-go/operator/pkg/domain/pool/entities"
	pool_vo "github.com/ore-pool-go/operator/pkg/domain/pool/value-objects"
)

// AddressView answers GET /address.
type AddressView struct {
	PoolAddress string
	Bump        uint8
}

// MemberChallengeView answers GET /challenge/{authority}: the current
// challenge plus the sharding hints a mining client needs to pick a
// nonce range.
type MemberChallengeView struct {
	Challenge        pool_entities.Challenge
	NumTotalMembers  uint64
	DeviceID         uint32
	NumDevices       uint32
}

// EventView answers GET /event/{authority}: the most recent mining event
// this member contributed to, with its personal reward and score.
type EventView struct {
	Event           pool_entities.PoolMiningEvent
	MemberReward    uint64
	MemberDifficulty uint32
}

type PoolQuery interface {
	Address(ctx context.Context) (*AddressView, error)
}

type ChallengeQuery interface {
	CurrentChallenge(ctx context.Context, authority pool_vo.Authority) (*MemberChallengeView, error)
}

type EventQuery interface {
	LatestEvent(ctx context.Context, authority pool_vo.Authority) (*EventView, error)
}
