package common

import "time"

// Protocol constants mirrored from the on-chain pool program. These are
// not configurable: changing them means the operator no longer agrees
// with the program about cutoff timing or difficulty floors.
const (
	// ChainTickSeconds is how often the proof account's last_hash_at advances.
	ChainTickSeconds = 60

	// OperatorBufferSeconds is subtracted from the tick so the winning
	// submission lands with margin before the chain moves on.
	OperatorBufferSeconds = 5

	// DefaultMinDifficulty is the operator-enforced floor, independent of
	// whatever (lower) minimum the on-chain config currently allows.
	DefaultMinDifficulty = 7

	// AttributionWindowSize bounds how many trailing challenges the
	// attribution window keeps scores for.
	AttributionWindowSize = 12

	// MaxAttributeInstructionsPerTx bounds how many attribute() calls are
	// batched into one reconciliation transaction.
	MaxAttributeInstructionsPerTx = 10

	// DeviceCount is the fixed number of mining devices advertised to
	// clients in a MemberChallenge response.
	DeviceCount = 5
)

const (
	SubmitRetryAttempts   = 5
	SubmitRetryInterval   = 2 * time.Second
	ConfirmPollAttempts   = 10
	ConfirmPollInterval   = 2 * time.Second
	ChallengeRotatePolls  = 5
	ChallengeRotateWait   = 2 * time.Second
	ReconciliationTick    = 30 * time.Second
)
