package pool_entities

import "time"

// Challenge mirrors the on-chain proof account's mining parameters for
// the round the aggregator is currently accepting contributions for.
type Challenge struct {
	Digest            [32]byte
	LastHashAt        int64
	MinDifficulty     uint32
	NumMembersSnapshot uint64 // member count captured at install time, used by the nonce partition for this entire round (Open Question #3)
	InstalledAt       time.Time
}

// Cutoff is how long contributions may still be accepted for this
// challenge before the chain ticks over: max(0, last_hash_at + tick -
// buffer - now).
func (c Challenge) Cutoff(now time.Time, tickSeconds, bufferSeconds int64) time.Duration {
	deadline := c.LastHashAt + tickSeconds - bufferSeconds
	remaining := deadline - now.Unix()
	if remaining < 0 {
		return 0
	}
	return time.Duration(remaining) * time.Second
}
