package config

import "time"

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Web       WebConfig       `yaml:"web"`
	Database  DatabaseConfig  `yaml:"database"`
	Session   SessionConfig   `yaml:"session"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
}

type ServerConfig struct {
	IP   string `yaml:"ip"`
	Port int    `yaml:"port"`
}

type LogConfig struct {
	Level string `yaml:"log_level"`
	Dir   string `yaml:"log_dir"`
	File  string `yaml:"log_file"`
}

type WebConfig struct {
	Enabled   bool   `yaml:"enabled"`
	StaticDir string `yaml:"static_dir"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// SessionConfig selects and tunes the canonical session store.
type SessionConfig struct {
	Driver string             `yaml:"driver"`
	TTL    time.Duration      `yaml:"ttl"`
	Prefix string             `yaml:"prefix"`
	Redis  SessionRedisConfig `yaml:"redis"`
}

type SessionRedisConfig struct {
	Addr     string `yaml:"addr"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
}

// AuthConfig carries token issuance settings and the public path
// allow-list consumed by the request gate.
type AuthConfig struct {
	Secret        string        `yaml:"secret"`
	TokenLifetime time.Duration `yaml:"token_lifetime"`
	StoreTimeout  time.Duration `yaml:"store_timeout"`
	PublicPaths   []string      `yaml:"public_paths"`
}

// RateLimitConfig maps operation signatures to bucket rules.
type RateLimitConfig struct {
	Rules map[string]RateLimitRule `yaml:"rules"`
}

type RateLimitRule struct {
	Capacity       int           `yaml:"capacity"`
	RefillAmount   int           `yaml:"refill_amount"`
	RefillInterval time.Duration `yaml:"refill_interval"`
}
