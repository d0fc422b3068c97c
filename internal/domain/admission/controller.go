package admission

import (
	"sync"
	"time"
)

// Logger provides the minimal logging contract required by the controller.
type Logger interface {
	Debug(format string, args ...any)
	Warn(format string, args ...any)
}

// Controller owns the signature-to-bucket registry. One instance is
// constructed at process start and injected wherever guarded
// operations are invoked; there is no package-level state. Buckets
// are created lazily on first call for a signature and live for the
// process lifetime.
type Controller struct {
	mu      sync.RWMutex
	buckets map[string]*bucket
	logger  Logger
}

func NewController(logger Logger) *Controller {
	return &Controller{
		buckets: make(map[string]*bucket),
		logger:  logger,
	}
}

// Admit attempts to consume one unit from the bucket for the given
// operation signature, creating the bucket on first use. The limit
// is fixed on creation; later calls with a different limit keep the
// original bucket.
func (c *Controller) Admit(signature string, limit Limit) Decision {
	now := time.Now()
	decision := c.bucketFor(signature, limit, now).take(now)
	if !decision.Allowed && c.logger != nil {
		c.logger.Debug("[ADMIT] denied %s, retry after %s", signature, decision.RetryAfter)
	}
	return decision
}

// Remaining reports the current token count for a signature, or the
// full capacity if no bucket exists yet.
func (c *Controller) Remaining(signature string, limit Limit) int {
	c.mu.RLock()
	b, ok := c.buckets[signature]
	c.mu.RUnlock()
	if !ok {
		return limit.Capacity
	}
	return b.remaining(time.Now())
}

// Stats snapshots the remaining tokens per known signature.
func (c *Controller) Stats() map[string]int {
	now := time.Now()
	c.mu.RLock()
	defer c.mu.RUnlock()
	stats := make(map[string]int, len(c.buckets))
	for signature, b := range c.buckets {
		stats[signature] = b.remaining(now)
	}
	return stats
}

// bucketFor returns the bucket for a signature, creating it exactly
// once: two racing first calls must not end up with two live buckets,
// since that would double the effective capacity.
func (c *Controller) bucketFor(signature string, limit Limit, now time.Time) *bucket {
	c.mu.RLock()
	b, ok := c.buckets[signature]
	c.mu.RUnlock()
	if ok {
		return b
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if b, ok := c.buckets[signature]; ok {
		return b
	}
	b = newBucket(limit, now)
	c.buckets[signature] = b
	if c.logger != nil {
		c.logger.Debug("[ADMIT] bucket created for %s (capacity=%d, refill=%d/%s)",
			signature, limit.Capacity, limit.RefillAmount, limit.RefillInterval)
	}
	return b
}
