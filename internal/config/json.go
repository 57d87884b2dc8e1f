package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/flagx"
	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It
// relies on timex.Duration so intervals can be strings like "10m" or
// integer nanoseconds. Absent fields leave the current value in place.
type JsonConfig struct {
	RemoteDatabaseURL string         `json:"remote_database_url"`
	CacheDBPath       string         `json:"cache_db_path"`
	SyncInterval      timex.Duration `json:"sync_interval"`
	StaleAfter        timex.Duration `json:"stale_after"`
}

// parseJson overlays Config with values from the JSON file named by the
// -c or -config flags. No flag, no overlay. Read and unmarshal errors
// panic; this runs once at startup and a broken config file should be
// loud.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.RemoteDatabaseURL != "" {
		cfg.RemoteDatabaseURL = jc.RemoteDatabaseURL
	}
	if jc.CacheDBPath != "" {
		cfg.CacheDBPath = jc.CacheDBPath
	}
	if jc.SyncInterval.Duration != 0 {
		cfg.SyncInterval = time.Duration(jc.SyncInterval.Duration)
	}
	if jc.StaleAfter.Duration != 0 {
		cfg.StaleAfter = time.Duration(jc.StaleAfter.Duration)
	}
}
