package config

import (
	"os"
	"time"
)

// RateLimitConfig controls the fixed-window limiter applied to the public
// onboarding endpoint and the login endpoint.  The same settings drive both
// the Redis-backed window (shared across instances) and the in-process
// fallback.
type RateLimitConfig struct {
	Enabled bool
	Max     int           // requests allowed per window per key
	Window  time.Duration // window length
	Prefix  string        // Redis key namespace
	Debug   bool
}

func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled: envBool("RATE_LIMIT_ENABLED", true),
		Max:     envInt("RATE_LIMIT_MAX", 30),
		Window:  envDur("RATE_LIMIT_WINDOW", time.Minute),
		Prefix:  envStr("RATE_LIMIT_PREFIX", "rl"),
		Debug:   envBool("RATE_LIMIT_DEBUG", false),
	}
	if cfg.Max < 1 {
		cfg.Max = 1
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	return cfg
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
