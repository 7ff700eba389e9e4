package pool_entities

import pool_vo "github.com/ore-pool-go/operator/pkg/domain/pool/value-objects"

// AttributionBucket is one finalized challenge's contribution set plus
// the reward record computed for it, keyed by the challenge's
// last_hash_at (unique per challenge, per GLOSSARY).
type AttributionBucket struct {
	LastHashAt    int64
	Order         []pool_vo.Authority
	Contributions map[pool_vo.Authority]Contribution
	TotalScore    uint64
	MemberRewards map[pool_vo.Authority]uint64
	MemberScores  map[pool_vo.Authority]uint64
}

// AttributionWindow is a fixed-capacity deque of buckets (C5), keyed by
// last_hash_at. Contributions whose challenge has aged out of the window
// can no longer be credited (I5).
type AttributionWindow struct {
	capacity int
	order    []int64 // oldest first
	buckets  map[int64]*AttributionBucket
}

func NewAttributionWindow(capacity int) *AttributionWindow {
	if capacity <= 0 {
		capacity = 1
	}
	return &AttributionWindow{
		capacity: capacity,
		buckets:  make(map[int64]*AttributionBucket),
	}
}

// Push installs a new bucket, evicting the oldest once capacity is
// exceeded.
func (w *AttributionWindow) Push(bucket *AttributionBucket) {
	if _, exists := w.buckets[bucket.LastHashAt]; exists {
		w.buckets[bucket.LastHashAt] = bucket
		return
	}
	w.order = append(w.order, bucket.LastHashAt)
	w.buckets[bucket.LastHashAt] = bucket
	for len(w.order) > w.capacity {
		oldest := w.order[0]
		w.order = w.order[1:]
		delete(w.buckets, oldest)
	}
}

// Get returns the bucket for a given last_hash_at, or false if it has
// aged out of (or never entered) the window.
func (w *AttributionWindow) Get(lastHashAt int64) (*AttributionBucket, bool) {
	b, ok := w.buckets[lastHashAt]
	return b, ok
}

// Contains reports whether last_hash_at is still inside the window.
func (w *AttributionWindow) Contains(lastHashAt int64) bool {
	_, ok := w.buckets[lastHashAt]
	return ok
}
