package pool_usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pool_entities "github.com/ore-pool-go/operator/pkg/domain/pool/entities"
)

func TestGetEventUseCase_LatestEvent_Found(t *testing.T) {
	authority := testAuthorityValue()
	event := pool_entities.PoolMiningEvent{
		Signature:     "sig",
		MemberRewards: map[string]uint64{authority.String(): 42},
		MemberScores:  map[string]uint64{authority.String(): 8},
	}
	uc := NewGetEventUseCase(&fakeEventSource{event: event, found: true})

	view, err := uc.LatestEvent(context.Background(), authority)

	require.NoError(t, err)
	assert.Equal(t, uint64(42), view.MemberReward)
	assert.Equal(t, uint32(3), view.MemberDifficulty) // 2^3 = 8
}

func TestGetEventUseCase_LatestEvent_NotFound(t *testing.T) {
	uc := NewGetEventUseCase(&fakeEventSource{found: false})

	_, err := uc.LatestEvent(context.Background(), testAuthorityValue())

	assert.Error(t, err)
}

func TestGetEventUseCase_LatestEvent_ZeroScoreYieldsZeroDifficulty(t *testing.T) {
	authority := testAuthorityValue()
	event := pool_entities.PoolMiningEvent{
		MemberRewards: map[string]uint64{authority.String(): 0},
		MemberScores:  map[string]uint64{authority.String(): 0},
	}
	uc := NewGetEventUseCase(&fakeEventSource{event: event, found: true})

	view, err := uc.LatestEvent(context.Background(), authority)

	require.NoError(t, err)
	assert.Equal(t, uint32(0), view.MemberDifficulty)
}
