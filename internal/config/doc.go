// Package config loads runtime configuration for the desktop client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables, optionally via a .env file (see parseEnv).
//  3. Optional JSON file selected via -c or -config (see parseJson).
//  4. Command-line flags (see parseFlags), which override everything.
//
// Supported flags
//
//	-d string   PostgreSQL DSN of the shared backend
//	-f string   path of the local SQLite cache file
//	-s int      auto-sync interval (seconds)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be
// either strings like "10m" or integer nanoseconds:
//
//	{
//	  "remote_database_url": "postgres://user:pw@host:5432/pos_venda",
//	  "cache_db_path": "/var/lib/pos-venda/cache.db",
//	  "sync_interval": "30s",
//	  "stale_after": "10m"
//	}
package config
