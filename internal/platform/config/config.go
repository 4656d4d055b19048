package config

import (
	"os"
	"time"
)

// Server captures process level configuration.
type Server struct {
	Addr           string
	PostgresDSN    string
	Redis          RedisConfig
	PreloadTimeout time.Duration
	SnapshotTTL    time.Duration
}

// RedisConfig captures connection settings for the snapshot store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("PROFILED_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	return Server{
		Addr:        addr,
		PostgresDSN: os.Getenv("PROFILED_POSTGRES_DSN"),
		Redis: RedisConfig{
			URL:          os.Getenv("PROFILED_REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		PreloadTimeout: durationFromEnv("PROFILED_PRELOAD_TIMEOUT", 10*time.Second),
		SnapshotTTL:    durationFromEnv("PROFILED_SNAPSHOT_TTL", 0),
	}
}

func durationFromEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}
