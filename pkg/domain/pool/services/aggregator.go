// Package pool_services holds the mutex-guarded coordinator objects the
// spec calls for: one long-lived Aggregator (which also holds the
// recent-events store), one AttributionEngine — initialized once at startup and torn down at
// shutdown, never lazily (§9 "no lazy singletons").
package pool_services

import (
	"log/slog"
	"sync"

	pool_entities "github.com/ore-pool-go/operator/pkg/domain/pool/entities"
	pool_vo "github.com/ore-pool-go/operator/pkg/domain/pool/value-objects"
)

const recentEventsCapacity = 100

// Aggregator is the Contribution Aggregator (C3). A single
// sync.RWMutex guards AggregatorState exactly as §5 mandates: readers
// are CurrentChallenge/NumMembersSnapshot, writers are Insert/SnapshotAndReset.
// No suspension point (RPC, DB call, channel receive) may happen while
// the lock is held — callers copy what they need out first.
//
// The recent-events LRU shares this same mutex rather than its own
// (§5: "guarded by the same mutex as the aggregator to avoid a separate
// lock order") even though it is logically a C6 concern — one lock,
// one order, no chance of A-then-B-then-A deadlocks between the two.
type Aggregator struct {
	mu    sync.RWMutex
	state pool_entities.AggregatorState

	eventOrder []int64 // last_hash_at, oldest first
	events     map[int64]pool_entities.PoolMiningEvent
}

func NewAggregator(initial pool_entities.Challenge, numMembers uint64) *Aggregator {
	return &Aggregator{
		state:  pool_entities.NewAggregatorState(initial, numMembers),
		events: make(map[int64]pool_entities.PoolMiningEvent),
	}
}

// RecordEvent inserts a confirmed mining event, evicting the oldest once
// the LRU exceeds its 100-entry capacity.
func (a *Aggregator) RecordEvent(e pool_entities.PoolMiningEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.events[e.LastHashAt]; !exists {
		a.eventOrder = append(a.eventOrder, e.LastHashAt)
	}
	a.events[e.LastHashAt] = e

	for len(a.eventOrder) > recentEventsCapacity {
		oldest := a.eventOrder[0]
		a.eventOrder = a.eventOrder[1:]
		delete(a.events, oldest)
	}
}

// LatestEventFor returns the most recent recorded event in which
// authority has a reward entry, newest first.
func (a *Aggregator) LatestEventFor(authority pool_vo.Authority) (pool_entities.PoolMiningEvent, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	for i := len(a.eventOrder) - 1; i >= 0; i-- {
		e := a.events[a.eventOrder[i]]
		if _, ok := e.MemberRewards[authority.String()]; ok {
			return e, true
		}
	}
	return pool_entities.PoolMiningEvent{}, false
}

// Install swaps in a freshly rotated challenge, discarding whatever
// state preceded it (called only by the submission coordinator, after a
// snapshot has already been taken).
func (a *Aggregator) Install(challenge pool_entities.Challenge, numMembers uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = pool_entities.NewAggregatorState(challenge, numMembers)
}

// CurrentChallenge copies out the fields a reader needs without holding
// the lock across any suspension point.
func (a *Aggregator) CurrentChallenge() pool_entities.Challenge {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state.CurrentChallenge
}

func (a *Aggregator) NumMembersSnapshot() uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state.NumMembersSnapshot
}

// Insert admits a pre-validated contribution (the admission filter has
// already verified signature, difficulty, and nonce partition). Drops
// silently-but-logged duplicates by authority (I1); replaces the winner
// only on strictly greater difficulty (stability, §4.3).
func (a *Aggregator) Insert(c pool_entities.Contribution) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.state.Contributions[c.Authority]; exists {
		slog.Info("dropping duplicate contribution", "authority", c.Authority.String())
		return
	}

	a.state.Order = append(a.state.Order, c.Authority)
	a.state.Contributions[c.Authority] = c
	a.state.TotalScore += c.Score()

	if a.state.Winner == nil || c.Difficulty > a.state.Winner.Difficulty {
		winner := c
		a.state.Winner = &winner
	}
}

// SnapshotAndReset returns the outgoing state and swaps in an empty one
// bound to the given next challenge. Called once per cutoff, from the
// submission coordinator only.
func (a *Aggregator) SnapshotAndReset(next pool_entities.Challenge, nextNumMembers uint64) pool_entities.AggregatorState {
	a.mu.Lock()
	defer a.mu.Unlock()

	snapshot := a.state
	a.state = pool_entities.NewAggregatorState(next, nextNumMembers)
	return snapshot
}

// HasContribution reports whether an authority already has a live
// contribution for the current challenge. The admission filter does not
// call it; duplicates are dropped by Insert.
func (a *Aggregator) HasContribution(authority pool_vo.Authority) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.state.Contributions[authority]
	return ok
}
