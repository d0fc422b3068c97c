package admission

import (
	"testing"
	"time"
)

// Bucket arithmetic is tested with synthetic clocks so refill edges
// are exact.
func TestBucketConsumeAndDeny(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	b := newBucket(Limit{Capacity: 1, RefillAmount: 1, RefillInterval: time.Minute}, start)

	first := b.take(start)
	if !first.Allowed || first.Remaining != 0 {
		t.Fatalf("unexpected first decision: %+v", first)
	}

	second := b.take(start.Add(10 * time.Second))
	if second.Allowed {
		t.Fatal("second take within the interval must be denied")
	}
	if second.RetryAfter != 50*time.Second {
		t.Errorf("unexpected retry-after: %v", second.RetryAfter)
	}

	third := b.take(start.Add(time.Minute))
	if !third.Allowed {
		t.Fatal("take after a full interval must be allowed")
	}
}

func TestBucketNoPartialRefill(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	b := newBucket(Limit{Capacity: 2, RefillAmount: 1, RefillInterval: time.Minute}, start)

	b.take(start)
	b.take(start)

	// 59s elapsed: not a full interval, nothing refilled.
	if got := b.remaining(start.Add(59 * time.Second)); got != 0 {
		t.Errorf("expected no sub-interval refill, got %d tokens", got)
	}
	if got := b.remaining(start.Add(61 * time.Second)); got != 1 {
		t.Errorf("expected one token after one interval, got %d", got)
	}
}

func TestBucketRefillCapsAtCapacity(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	b := newBucket(Limit{Capacity: 3, RefillAmount: 2, RefillInterval: time.Minute}, start)

	for i := 0; i < 3; i++ {
		if d := b.take(start); !d.Allowed {
			t.Fatalf("take %d denied", i)
		}
	}

	// Ten intervals elapse unobserved; tokens must cap at capacity.
	if got := b.remaining(start.Add(10 * time.Minute)); got != 3 {
		t.Errorf("expected capacity cap of 3, got %d", got)
	}
}

func TestBucketRefillKeepsRemainderTime(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	b := newBucket(Limit{Capacity: 5, RefillAmount: 1, RefillInterval: time.Minute}, start)

	for i := 0; i < 5; i++ {
		b.take(start)
	}

	// 90s = one interval plus 30s remainder. The remainder must count
	// toward the next interval: at 120s a second token appears.
	if got := b.remaining(start.Add(90 * time.Second)); got != 1 {
		t.Errorf("expected 1 token at 90s, got %d", got)
	}
	if got := b.remaining(start.Add(120 * time.Second)); got != 2 {
		t.Errorf("expected 2 tokens at 120s, got %d", got)
	}
}

func TestBucketFullAfterCapacityIntervals(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	limit := Limit{Capacity: 4, RefillAmount: 1, RefillInterval: time.Minute}
	b := newBucket(limit, start)

	for i := 0; i < 4; i++ {
		b.take(start)
	}

	// capacity/refillAmount intervals later the bucket is full again.
	intervals := time.Duration(limit.Capacity/limit.RefillAmount) * limit.RefillInterval
	if got := b.remaining(start.Add(intervals)); got != limit.Capacity {
		t.Errorf("expected full bucket after %v, got %d", intervals, got)
	}
}
