package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"quill-server-go/internal/platform/errors"
)

const defaultConfigPath = "config.yaml"

// Loader reads configuration from an optional YAML file layered over
// defaults, with environment variables taking final precedence.
type Loader struct {
	path      string
	useDotEnv bool
}

func NewLoader() *Loader {
	return &Loader{
		path:      defaultConfigPath,
		useDotEnv: true,
	}
}

// WithPath overrides the config file location (useful for tests).
func (l *Loader) WithPath(path string) *Loader {
	if path != "" {
		l.path = path
	}
	return l
}

// WithDotEnv toggles loading variables from a .env file before reading config.
func (l *Loader) WithDotEnv(enabled bool) *Loader {
	l.useDotEnv = enabled
	return l
}

// Result captures the loaded configuration and its origin path.
type Result struct {
	Config *Config
	Path   string
}

func (l *Loader) Load() (*Result, error) {
	if l.useDotEnv {
		// No .env file is fine; the process environment still applies.
		_ = godotenv.Load()
	}

	cfg := DefaultConfig()
	path := l.path
	if env := os.Getenv("QUILL_CONFIG"); env != "" {
		path = env
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(errors.KindConfig, "loader.parse",
				fmt.Sprintf("failed to parse %s", path), err)
		}
	case os.IsNotExist(err):
		path = ""
	default:
		return nil, errors.Wrap(errors.KindConfig, "loader.read",
			fmt.Sprintf("failed to read %s", path), err)
	}

	applyEnvOverrides(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return &Result{Config: cfg, Path: path}, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("QUILL_JWT_SECRET"); v != "" {
		cfg.Auth.Secret = v
	}
	if v := os.Getenv("QUILL_REDIS_ADDR"); v != "" {
		cfg.Session.Driver = "redis"
		cfg.Session.Redis.Addr = v
	}
	if v := os.Getenv("QUILL_REDIS_PASSWORD"); v != "" {
		cfg.Session.Redis.Password = v
	}
	if v := os.Getenv("QUILL_DB_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("QUILL_HTTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
}

func validate(cfg *Config) error {
	if cfg.Auth.Secret == "" {
		return errors.New(errors.KindConfig, "loader.validate",
			"auth secret is required (set auth.secret or QUILL_JWT_SECRET)")
	}
	if cfg.Session.Driver == "redis" && cfg.Session.Redis.Addr == "" {
		return errors.New(errors.KindConfig, "loader.validate",
			"session driver is redis but no redis address is configured")
	}
	for signature, rule := range cfg.RateLimit.Rules {
		if rule.Capacity <= 0 || rule.RefillAmount <= 0 || rule.RefillInterval <= 0 {
			return errors.New(errors.KindConfig, "loader.validate",
				fmt.Sprintf("rate limit rule %q must have positive capacity, refill and interval", signature))
		}
	}
	return nil
}
