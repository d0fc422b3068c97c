package admission

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestAdmitAllowsUpToCapacity(t *testing.T) {
	ctrl := NewController(nil)
	limit := Limit{Capacity: 3, RefillAmount: 3, RefillInterval: time.Hour}

	for i := 0; i < 3; i++ {
		if d := ctrl.Admit("posts.create", limit); !d.Allowed {
			t.Fatalf("call %d unexpectedly denied", i)
		}
	}
	d := ctrl.Admit("posts.create", limit)
	if d.Allowed {
		t.Fatal("call beyond capacity must be denied")
	}
	if d.RetryAfter <= 0 {
		t.Errorf("denial should carry a positive retry-after, got %v", d.RetryAfter)
	}
}

func TestSignaturesDoNotInterfere(t *testing.T) {
	ctrl := NewController(nil)
	limit := Limit{Capacity: 1, RefillAmount: 1, RefillInterval: time.Hour}

	if d := ctrl.Admit("mail.send", limit); !d.Allowed {
		t.Fatal("first mail.send denied")
	}
	if d := ctrl.Admit("mail.send", limit); d.Allowed {
		t.Fatal("exhausted mail.send allowed")
	}

	// A different signature has its own untouched budget.
	if d := ctrl.Admit("search.query", limit); !d.Allowed {
		t.Fatal("search.query should not share mail.send's bucket")
	}
}

func TestAdmitRefillsAfterInterval(t *testing.T) {
	ctrl := NewController(nil)
	limit := Limit{Capacity: 1, RefillAmount: 1, RefillInterval: 50 * time.Millisecond}

	if d := ctrl.Admit("auth.login", limit); !d.Allowed {
		t.Fatal("first call denied")
	}
	if d := ctrl.Admit("auth.login", limit); d.Allowed {
		t.Fatal("second call within the interval allowed")
	}

	time.Sleep(60 * time.Millisecond)

	if d := ctrl.Admit("auth.login", limit); !d.Allowed {
		t.Fatal("call after a full interval denied")
	}
}

// N concurrent admits against a bucket of capacity C must yield
// exactly C allows, never more, with no refill during the burst.
func TestConcurrentAdmitsExactCapacity(t *testing.T) {
	const (
		workers  = 100
		capacity = 10
	)
	ctrl := NewController(nil)
	limit := Limit{Capacity: capacity, RefillAmount: capacity, RefillInterval: time.Hour}

	var (
		allows int64
		denies int64
		start  = make(chan struct{})
		wg     sync.WaitGroup
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if ctrl.Admit("burst.op", limit).Allowed {
				atomic.AddInt64(&allows, 1)
			} else {
				atomic.AddInt64(&denies, 1)
			}
		}()
	}
	close(start)
	wg.Wait()

	if allows != capacity {
		t.Errorf("expected exactly %d allows, got %d", capacity, allows)
	}
	if denies != workers-capacity {
		t.Errorf("expected %d denies, got %d", workers-capacity, denies)
	}
}

// Two racing first calls for the same signature must share one
// bucket; a duplicate would double the effective capacity.
func TestConcurrentLazyCreationSingleBucket(t *testing.T) {
	ctrl := NewController(nil)
	limit := Limit{Capacity: 1, RefillAmount: 1, RefillInterval: time.Hour}

	var (
		allows int64
		start  = make(chan struct{})
		wg     sync.WaitGroup
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if ctrl.Admit("fresh.op", limit).Allowed {
				atomic.AddInt64(&allows, 1)
			}
		}()
	}
	close(start)
	wg.Wait()

	if allows != 1 {
		t.Errorf("expected a single allow across racing first calls, got %d", allows)
	}
	if len(ctrl.Stats()) != 1 {
		t.Errorf("expected one bucket, got %d", len(ctrl.Stats()))
	}
}

func TestRemainingAndStats(t *testing.T) {
	ctrl := NewController(nil)
	limit := Limit{Capacity: 5, RefillAmount: 5, RefillInterval: time.Hour}

	if got := ctrl.Remaining("lazy.op", limit); got != 5 {
		t.Errorf("remaining before first call should be full capacity, got %d", got)
	}

	ctrl.Admit("lazy.op", limit)
	ctrl.Admit("lazy.op", limit)

	if got := ctrl.Remaining("lazy.op", limit); got != 3 {
		t.Errorf("expected 3 remaining, got %d", got)
	}
	stats := ctrl.Stats()
	if stats["lazy.op"] != 3 {
		t.Errorf("unexpected stats: %v", stats)
	}
}
