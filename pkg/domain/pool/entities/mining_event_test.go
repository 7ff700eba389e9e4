package pool_entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMiningEvent_OperatorShare(t *testing.T) {
	e := MiningEvent{NetReward: 1000}

	assert.Equal(t, uint64(50), e.OperatorShare(5))
	assert.Equal(t, uint64(0), e.OperatorShare(0))
	assert.Equal(t, uint64(1000), e.OperatorShare(100))
}

func TestMiningEvent_Distributable(t *testing.T) {
	e := MiningEvent{NetReward: 1000}

	assert.Equal(t, uint64(950), e.Distributable(5))
}

func TestMiningEvent_OperatorShare_IntegerDivisionTruncatesOperatorShare(t *testing.T) {
	// 101 * 5 / 100 = 5 (5.05 truncated), so the 0.05 stays in the 96
	// distributable.
	e := MiningEvent{NetReward: 101}

	assert.Equal(t, uint64(5), e.OperatorShare(5))
	assert.Equal(t, uint64(96), e.Distributable(5))
}
