package db

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

var (
	sqliteFilePool   = pool{maxOpen: 10, lifetime: 30 * time.Minute}
	sqliteMemoryPool = pool{maxOpen: 1} // Each :memory: connection is its own database.
)

var sqlitePragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA foreign_keys=ON",
	"PRAGMA busy_timeout=5000",
}

// openSQLite opens a SQLite database, creating the parent directory of file DSNs.
func openSQLite(dsn string) (*gorm.DB, error) {
	dsn, path := splitSQLiteDSN(dsn)
	if path != "" {
		if dir := filepath.Dir(path); dir != "." {
			if errMkdir := os.MkdirAll(dir, 0o755); errMkdir != nil {
				return nil, fmt.Errorf("db: create sqlite dir: %w", errMkdir)
			}
		}
	}

	conn, errOpen := gorm.Open(sqlite.Open(dsn), gormConfig())
	if errOpen != nil {
		return nil, fmt.Errorf("db: open sqlite: %w", errOpen)
	}
	sqlDB, errDB := conn.DB()
	if errDB != nil {
		return nil, fmt.Errorf("db: open sqlite: %w", errDB)
	}
	for _, pragma := range sqlitePragmas {
		if _, errExec := sqlDB.Exec(pragma); errExec != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("db: %s: %w", pragma, errExec)
		}
	}

	p := sqliteFilePool
	if path == "" {
		p = sqliteMemoryPool
	}
	return finishOpen(conn, sqlDB, p)
}

// splitSQLiteDSN rewrites sqlite:// URLs to file: DSNs and returns the on-disk path,
// which is empty for in-memory databases.
func splitSQLiteDSN(dsn string) (normalized, path string) {
	normalized = strings.TrimSpace(dsn)
	if scheme, rest, ok := strings.Cut(normalized, "://"); ok && strings.HasPrefix(strings.ToLower(scheme), "sqlite") {
		normalized = "file:" + rest
	}

	path = strings.TrimPrefix(normalized, "file:")
	path, _, _ = strings.Cut(path, "?")
	path = strings.TrimPrefix(path, "//")
	if path == ":memory:" || strings.Contains(normalized, "mode=memory") {
		return normalized, ""
	}
	return normalized, path
}
