package db

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Dialect identifiers supported by the database layer.
const (
	// DialectPostgres is the PostgreSQL dialect name.
	DialectPostgres = "postgres"
	// DialectSQLite is the SQLite dialect name.
	DialectSQLite = "sqlite"
)

// dialectForDSN infers the dialect from a DSN. URLs and key=value strings with
// Postgres keywords select Postgres; file: URLs and bare paths select SQLite.
func dialectForDSN(dsn string) (string, error) {
	lower := strings.ToLower(strings.TrimSpace(dsn))
	scheme, _, hasScheme := strings.Cut(lower, "://")
	switch {
	case hasScheme && (scheme == "postgres" || scheme == "postgresql"):
		return DialectPostgres, nil
	case hasScheme && (scheme == "sqlite" || scheme == "sqlite3"):
		return DialectSQLite, nil
	case hasScheme:
		return "", fmt.Errorf("db: unsupported dsn scheme %q", scheme)
	case strings.Contains(lower, "host=") || strings.Contains(lower, "dbname="):
		return DialectPostgres, nil
	default:
		return DialectSQLite, nil
	}
}

// DialectName returns the active database dialect name.
func DialectName(conn *gorm.DB) string {
	if conn == nil || conn.Dialector == nil {
		return ""
	}
	return conn.Dialector.Name()
}

// IsSQLite reports whether the connection uses SQLite.
func IsSQLite(conn *gorm.DB) bool {
	return DialectName(conn) == DialectSQLite
}

// CaseInsensitiveLikeExpr returns a SQL expression for case-insensitive LIKE.
func CaseInsensitiveLikeExpr(conn *gorm.DB, column string) string {
	if IsSQLite(conn) {
		return fmt.Sprintf("LOWER(%s) LIKE ?", column)
	}
	return fmt.Sprintf("%s ILIKE ?", column)
}

// NormalizeLikePattern normalizes a LIKE pattern for the current dialect.
func NormalizeLikePattern(conn *gorm.DB, pattern string) string {
	if IsSQLite(conn) {
		return strings.ToLower(pattern)
	}
	return pattern
}
