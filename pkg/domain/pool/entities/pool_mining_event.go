package pool_entities

import "time"

// PoolMiningEvent is what the HTTP edge's /event/{authority} endpoint
// answers from: produced by HandleWebhookUseCase when the mine-event
// webhook delivers a confirmed submission, keyed by the challenge's
// last_hash_at, and kept in the Aggregator's bounded event store (100
// entries, oldest evicted — see pool_services.Aggregator.RecordEvent).
type PoolMiningEvent struct {
	Signature     string
	Block         uint64
	Timestamp     time.Time
	LastHashAt    int64
	RawMineEvent  MiningEvent
	MemberRewards map[string]uint64 // keyed by authority base58
	MemberScores  map[string]uint64
}
