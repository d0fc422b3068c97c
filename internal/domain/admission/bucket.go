package admission

import (
	"sync"
	"time"
)

// Limit is the bucket policy for one operation signature.
type Limit struct {
	Capacity       int
	RefillAmount   int
	RefillInterval time.Duration
}

// Decision is the outcome of one admission attempt. Denial is a
// normal outcome, never an error.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// bucket holds the admission state for one operation signature. All
// callers of that operation share it; the budget protects a shared
// downstream resource, not per-caller fairness.
type bucket struct {
	mu         sync.Mutex
	limit      Limit
	tokens     int
	lastRefill time.Time
}

func newBucket(limit Limit, now time.Time) *bucket {
	return &bucket{
		limit:      limit,
		tokens:     limit.Capacity,
		lastRefill: now,
	}
}

// take attempts to consume one token. Refill is lazy: whole elapsed
// intervals are credited at RefillAmount each, capped at Capacity,
// and lastRefill advances only by the intervals consumed so the
// remainder is never lost. No sub-interval partial refill.
func (b *bucket) take(now time.Time) Decision {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill(now)

	if b.tokens > 0 {
		b.tokens--
		return Decision{Allowed: true, Remaining: b.tokens}
	}

	retryAfter := b.lastRefill.Add(b.limit.RefillInterval).Sub(now)
	if retryAfter < 0 {
		retryAfter = 0
	}
	return Decision{Allowed: false, RetryAfter: retryAfter}
}

func (b *bucket) refill(now time.Time) {
	if b.limit.RefillInterval <= 0 {
		return
	}
	elapsed := now.Sub(b.lastRefill)
	if elapsed < b.limit.RefillInterval {
		return
	}
	intervals := int(elapsed / b.limit.RefillInterval)
	b.tokens += intervals * b.limit.RefillAmount
	if b.tokens > b.limit.Capacity {
		b.tokens = b.limit.Capacity
	}
	b.lastRefill = b.lastRefill.Add(time.Duration(intervals) * b.limit.RefillInterval)
}

// remaining reports the current token count after a lazy refill.
func (b *bucket) remaining(now time.Time) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refill(now)
	return b.tokens
}
