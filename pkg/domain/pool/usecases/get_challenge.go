package pool_usecases

import (
	"context"

	common "github.com/ore-pool-go/operator/pkg/domain"
	pool_entities "github.com/ore-pool-go/operator/pkg/domain/pool/entities"
	pool_in "github.com/ore-pool-go/operator/pkg/domain/pool/ports/in"
	pool_vo "github.com/ore-pool-go/operator/pkg/domain/pool/value-objects"
)

// aggregatorChallenge is the narrow slice GetChallengeUseCase needs from
// pool_services.Aggregator.
type aggregatorChallenge interface {
	CurrentChallenge() pool_entities.Challenge
	NumMembersSnapshot() uint64
}

// GetChallengeUseCase implements GET /challenge/{authority}: the current
// challenge plus the device sharding hint the caller's own member id maps
// to, so a mining client knows which slice of the device's nonce range is
// theirs.
type GetChallengeUseCase struct {
	aggregator aggregatorChallenge
	members    memberDirectory
}

func NewGetChallengeUseCase(aggregator aggregatorChallenge, members memberDirectory) *GetChallengeUseCase {
	return &GetChallengeUseCase{aggregator: aggregator, members: members}
}

func (uc *GetChallengeUseCase) CurrentChallenge(ctx context.Context, authority pool_vo.Authority) (*pool_in.MemberChallengeView, error) {
	member, err := uc.members.Get(ctx, authority)
	if err != nil {
		return nil, err
	}
	if !member.IsAdmitted() {
		return nil, common.NewErrForbidden("member is not admitted")
	}

	challenge := uc.aggregator.CurrentChallenge()
	numMembers := uc.aggregator.NumMembersSnapshot()

	return &pool_in.MemberChallengeView{
		Challenge:       challenge,
		NumTotalMembers: numMembers,
		DeviceID:        uint32(member.ID % common.DeviceCount),
		NumDevices:      common.DeviceCount,
	}, nil
}
