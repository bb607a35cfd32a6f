package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/verly-ai/founder-platform/internal/util"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	logger.Default = logger.New(
		log.StandardLogger(),
		logger.Config{
			SlowThreshold:             2 * time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

const pingTimeout = 5 * time.Second

func gormConfig() *gorm.Config {
	return &gorm.Config{Logger: logger.Default}
}

// Handles owns the two datastore connections used by the platform. Main holds the
// product's accounts, subscriptions and usage ledger; Founder holds dashboard-owned tables.
type Handles struct {
	Main    *gorm.DB
	Founder *gorm.DB

	shared bool
}

// OpenHandles opens both datastores. Identical DSNs share a single connection pool.
func OpenHandles(mainDSN, founderDSN string) (*Handles, error) {
	log.WithFields(log.Fields{
		"main":    util.RedactDSN(mainDSN),
		"founder": util.RedactDSN(founderDSN),
	}).Info("opening datastores")
	mainConn, errMain := Open(mainDSN)
	if errMain != nil {
		return nil, fmt.Errorf("db: open main: %w", errMain)
	}
	if strings.TrimSpace(mainDSN) == strings.TrimSpace(founderDSN) {
		return &Handles{Main: mainConn, Founder: mainConn, shared: true}, nil
	}
	founderConn, errFounder := Open(founderDSN)
	if errFounder != nil {
		_ = closeConn(mainConn)
		return nil, fmt.Errorf("db: open founder: %w", errFounder)
	}
	return &Handles{Main: mainConn, Founder: founderConn}, nil
}

// Ping checks connectivity of both datastores.
func (h *Handles) Ping(ctx context.Context) error {
	if h == nil {
		return errors.New("db: nil handles")
	}
	if errMain := pingConn(ctx, h.Main); errMain != nil {
		return fmt.Errorf("db: ping main: %w", errMain)
	}
	if h.shared {
		return nil
	}
	if errFounder := pingConn(ctx, h.Founder); errFounder != nil {
		return fmt.Errorf("db: ping founder: %w", errFounder)
	}
	return nil
}

// Close releases both connection pools.
func (h *Handles) Close() error {
	if h == nil {
		return nil
	}
	errMain := closeConn(h.Main)
	if h.shared {
		return errMain
	}
	return errors.Join(errMain, closeConn(h.Founder))
}

func pingConn(ctx context.Context, conn *gorm.DB) error {
	if conn == nil {
		return errors.New("nil connection")
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func closeConn(conn *gorm.DB) error {
	if conn == nil {
		return nil
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Open opens a GORM connection, choosing the driver from the DSN shape.
func Open(dsn string) (*gorm.DB, error) {
	trimmed := strings.TrimSpace(dsn)
	if trimmed == "" {
		return nil, errors.New("db: empty dsn")
	}
	dialect, err := dialectForDSN(trimmed)
	if err != nil {
		return nil, err
	}
	if dialect == DialectPostgres {
		return openPostgres(trimmed)
	}
	return openSQLite(trimmed)
}

// pool sizes a connection pool.
type pool struct {
	maxOpen  int
	lifetime time.Duration
}

// finishOpen applies pool limits and verifies the connection answers within pingTimeout.
func finishOpen(conn *gorm.DB, sqlDB *sql.DB, p pool) (*gorm.DB, error) {
	sqlDB.SetMaxOpenConns(p.maxOpen)
	sqlDB.SetMaxIdleConns(p.maxOpen)
	sqlDB.SetConnMaxLifetime(p.lifetime)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if errPing := sqlDB.PingContext(ctx); errPing != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("db: ping: %w", errPing)
	}
	return conn, nil
}
