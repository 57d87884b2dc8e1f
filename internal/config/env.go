package config

import (
	"os"
	"time"
)

// parseEnv overlays Config with values from the environment. The cmd
// entrypoint loads a .env file via godotenv/autoload before this runs,
// so a checked-in .env works the same as real environment variables.
//
// Recognized variables:
//
//	DATABASE_URL    PostgreSQL DSN of the shared backend
//	CACHE_DB_PATH   path of the local SQLite cache file
//	SYNC_INTERVAL   auto-sync period, e.g. "30s" or "2m"
//	STALE_AFTER     cache freshness window, e.g. "10m"
//
// Malformed durations panic, same as a malformed JSON overlay.
func parseEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.RemoteDatabaseURL = v
	}
	if v := os.Getenv("CACHE_DB_PATH"); v != "" {
		cfg.CacheDBPath = v
	}
	if v := os.Getenv("SYNC_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		cfg.SyncInterval = d
	}
	if v := os.Getenv("STALE_AFTER"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		cfg.StaleAfter = d
	}
}
