// Package config loads host-application configuration for a mediation
// layer deployment: which backends to register, how the router should
// select and fail over between them, and where to reach an optional
// Redis cache. It is sugar over plain structs — nothing elsewhere in
// this module requires a config file to exist.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the top-level configuration for a mediation-layer host
// application.
type Config struct {
	Server   ServerConfig              `koanf:"server"`
	Backends map[string]BackendConfig  `koanf:"backends"`
	Router   RouterConfig              `koanf:"router"`
	Cache    CacheConfig               `koanf:"cache"`
}

// ServerConfig holds HTTP listener settings for a host that exposes
// the bridge over HTTP.
type ServerConfig struct {
	Port         int           `koanf:"port"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	MetricsPort  int           `koanf:"metrics_port"`
}

// BackendConfig holds the settings for a single registered backend.
type BackendConfig struct {
	Dialect              string   `koanf:"dialect"`
	APIKey               string   `koanf:"api_key"`
	BaseURL              string   `koanf:"base_url"`
	Models               []string `koanf:"models"`
	CostPerMillionTokens float64  `koanf:"cost_per_million_tokens"`
	Weight               int      `koanf:"weight"`
}

// RouterConfig mirrors the knobs a router.Config exposes, in a form
// that can be loaded from YAML/env rather than constructed in code.
type RouterConfig struct {
	Strategy                string        `koanf:"strategy"`
	Fallback                string        `koanf:"fallback"`
	Dispatch                string        `koanf:"dispatch"`
	HealthCheckInterval     time.Duration `koanf:"health_check_interval"`
	CircuitBreakerThreshold int           `koanf:"circuit_breaker_threshold"`
	CircuitBreakerTimeout   time.Duration `koanf:"circuit_breaker_timeout"`
	AllowStreamRewind       bool          `koanf:"allow_stream_rewind"`
}

// CacheConfig configures the optional Redis-backed response cache.
type CacheConfig struct {
	RedisAddr string        `koanf:"redis_addr"`
	TTL       time.Duration `koanf:"ttl"`
}

// Load reads configuration from a YAML file, layers MEDIATOR_-prefixed
// environment variable overrides on top, and expands ${VAR} references
// in backend API keys against the process environment. A .env file in
// the working directory is loaded first if present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("loading config file: %w", err)
	}

	if err := k.Load(env.Provider("MEDIATOR_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "MEDIATOR_")), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	for name, b := range cfg.Backends {
		b.APIKey = expandEnvRef(b.APIKey)
		cfg.Backends[name] = b
	}

	return &cfg, nil
}

// expandEnvRef resolves a "${VAR_NAME}" placeholder against the
// process environment; any other string is returned unchanged.
func expandEnvRef(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}
	return s
}
