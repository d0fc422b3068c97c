package config

import "time"

// DefaultConfig returns the configuration used when no config file
// is present. Every field can be overridden from config.yaml or the
// environment.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			IP:   "0.0.0.0",
			Port: 8080,
		},
		Log: LogConfig{
			Level: "info",
			Dir:   "data/logs",
			File:  "server.log",
		},
		Web: WebConfig{
			Enabled:   true,
			StaticDir: "./web",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "data/quill.db",
		},
		Session: SessionConfig{
			Driver: "memory",
			TTL:    6 * time.Hour,
			Prefix: "session:",
		},
		Auth: AuthConfig{
			TokenLifetime: 12 * time.Hour,
			StoreTimeout:  3 * time.Second,
			PublicPaths: []string{
				"/health",
				"/api/auth/login",
				"/api/auth/register",
				"/api/posts",
				"/api/posts/*",
				"/api/posts/*/comments",
				"/api/subscribers/**",
			},
		},
		RateLimit: RateLimitConfig{
			Rules: map[string]RateLimitRule{
				"auth.login": {
					Capacity:       10,
					RefillAmount:   10,
					RefillInterval: time.Minute,
				},
				"comments.create": {
					Capacity:       20,
					RefillAmount:   20,
					RefillInterval: time.Minute,
				},
				"subscribers.subscribe": {
					Capacity:       5,
					RefillAmount:   5,
					RefillInterval: time.Minute,
				},
			},
		},
	}
}
