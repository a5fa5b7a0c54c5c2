// Package backend opens the slot selected by configuration.
package backend

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"timer-todos/internal/config"
	"timer-todos/internal/db"
	"timer-todos/pkg/slot"
)

// Open returns the configured slot and a function releasing its resources.
func Open(ctx context.Context, cfg config.StorageConfig) (slot.Slot, func(), error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return &slot.Memory{}, func() {}, nil

	case config.BackendFile:
		s, err := slot.NewFile(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil

	case config.BackendSQLite:
		path := cfg.Path
		if !strings.HasSuffix(path, ".db") {
			path = filepath.Join(path, "todos.db")
		}
		s, err := slot.NewSQLite(path)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil

	case config.BackendPostgres:
		pool, err := db.Connect(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect: %w", err)
		}
		s := slot.NewPgStore(pool)
		if err := s.EnsureTable(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ensure kv_slots table: %w", err)
		}
		return s, pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
