package session

import (
	"context"
	"time"
)

// Store is the canonical session record store: one entry per
// principal email holding the currently valid token string. The
// store provides its own consistency; callers never hold in-process
// locks across these calls.
type Store interface {
	// Set writes the canonical token for a key, overwriting any
	// previous value and resetting the TTL.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Get returns the canonical value and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// Delete removes the entry. Deleting an absent key is a no-op.
	Delete(ctx context.Context, key string) error
	// Exists reports whether a live entry is present.
	Exists(ctx context.Context, key string) (bool, error)
	Close(ctx context.Context) error
}

// Config describes the high level store selection parameters.
type Config struct {
	Driver string
	TTL    time.Duration
	Prefix string
	Redis  *RedisConfig
	Memory *MemoryConfig
}

// RedisConfig captures connection options.
type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
}

// MemoryConfig holds in-memory tuning knobs.
type MemoryConfig struct {
	GCInterval time.Duration
}
