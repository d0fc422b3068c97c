package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"quill-server-go/internal/platform/config"
	"quill-server-go/internal/platform/errors"
)

// Open connects to the configured database and runs pending migrations.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	switch cfg.Driver {
	case "", "sqlite":
	default:
		return nil, errors.New(errors.KindStorage, "storage.open",
			fmt.Sprintf("unsupported database driver %q", cfg.Driver))
	}

	dsn := cfg.DSN
	if dsn == "" {
		dsn = "data/quill.db"
	}
	if dsn != ":memory:" && !isMemoryDSN(dsn) {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, errors.Wrap(errors.KindStorage, "storage.open",
					"failed to create database directory", err)
			}
		}
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(errors.KindStorage, "storage.open",
			"failed to open database", err)
	}

	if err := runMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

func isMemoryDSN(dsn string) bool {
	return dsn == ":memory:" || dsn == "file::memory:?cache=shared"
}
