package store

import (
	"fmt"
	"path/filepath"

	"punchclock/internal/config"
	"punchclock/internal/timeclock"
)

// NewStoreFromConfig creates a Store implementation based on the storage
// config type. installID names the sqlite database file so a restored config
// never collides with another machine's data.
func NewStoreFromConfig(cfg config.StorageConfig, installID string, logger timeclock.Logger) (timeclock.Store, error) {
	switch cfg.Type {
	case "json", "":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for json storage")
		}
		return NewJSONStore(cfg.DataDir, logger)
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite storage")
		}
		return NewSQLiteStore(filepath.Join(cfg.DataDir, installID+".db"))
	case "memory":
		return NewSQLiteStore(":memory:")
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
