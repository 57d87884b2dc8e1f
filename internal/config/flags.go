package config

import (
	"flag"
	"os"
	"time"

	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-d string   PostgreSQL DSN of the shared backend
//	-f string   path of the local SQLite cache file
//	-s int      auto-sync interval in seconds
//
// The function filters os.Args to only include the flags it knows
// about, using flagx.FilterArgs, so the CLI layer can define its own.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-f", "-s"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.RemoteDatabaseURL, "d", cfg.RemoteDatabaseURL, "PostgreSQL DSN of the shared backend")
	fs.StringVar(&cfg.CacheDBPath, "f", cfg.CacheDBPath, "path of the local cache file")
	syncInterval := fs.Int("s", int(cfg.SyncInterval.Seconds()), "auto-sync interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.SyncInterval = time.Duration(*syncInterval) * time.Second
}
