package db

import (
	"path/filepath"
	"testing"
)

func TestMigrateCreatesFounderTables(t *testing.T) {
	conn, errOpen := Open(":memory:")
	if errOpen != nil {
		t.Fatalf("open sqlite: %v", errOpen)
	}

	if errMigrate := Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	for _, table := range []string{"admins", "settings", "feature_flags", "platform_metrics"} {
		if !conn.Migrator().HasTable(table) {
			t.Fatalf("missing table %s", table)
		}
	}
	if conn.Migrator().HasTable("subscriptions") {
		t.Fatalf("founder migration must not create main-system tables")
	}
}

func TestMigrateMainCreatesLedgerTables(t *testing.T) {
	conn, errOpen := Open(":memory:")
	if errOpen != nil {
		t.Fatalf("open sqlite: %v", errOpen)
	}

	if errMigrate := MigrateMain(conn); errMigrate != nil {
		t.Fatalf("migrate main: %v", errMigrate)
	}

	for _, table := range []string{"accounts", "subscription_plans", "subscriptions", "credit_transactions", "service_rates", "chatbot", "audit_logs"} {
		if !conn.Migrator().HasTable(table) {
			t.Fatalf("missing table %s", table)
		}
	}
	for _, column := range []string{"provider_cost", "provider_name", "provider_type"} {
		if !conn.Migrator().HasColumn("credit_transactions", column) {
			t.Fatalf("credit_transactions missing column %s", column)
		}
	}
}

func TestOpenHandlesSharesIdenticalDSN(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "shared.db")
	handles, errOpen := OpenHandles(dsn, dsn)
	if errOpen != nil {
		t.Fatalf("open handles: %v", errOpen)
	}
	defer func() { _ = handles.Close() }()

	if handles.Main != handles.Founder {
		t.Fatalf("expected identical dsns to share a connection")
	}
	if errPing := handles.Ping(t.Context()); errPing != nil {
		t.Fatalf("ping: %v", errPing)
	}
}

func TestDialectForDSN(t *testing.T) {
	cases := map[string]string{
		"postgres://u:p@localhost/db":     DialectPostgres,
		"host=localhost user=u dbname=db": DialectPostgres,
		"file:founder.db":                 DialectSQLite,
		"./data/founder.db":               DialectSQLite,
		"sqlite:///tmp/founder.db":        DialectSQLite,
	}
	for dsn, want := range cases {
		got, err := dialectForDSN(dsn)
		if err != nil {
			t.Fatalf("detect %q: %v", dsn, err)
		}
		if got != want {
			t.Fatalf("detect %q = %q, want %q", dsn, got, want)
		}
	}
	if _, err := dialectForDSN("mysql://u:p@localhost/db"); err == nil {
		t.Fatalf("expected error for unsupported dsn")
	}
}

func TestSplitSQLiteDSN(t *testing.T) {
	cases := []struct {
		in, dsn, path string
	}{
		{":memory:", ":memory:", ""},
		{"file::memory:?cache=shared", "file::memory:?cache=shared", ""},
		{"sqlite://data/founder.db", "file:data/founder.db", "data/founder.db"},
		{"file:data/founder.db?_busy_timeout=5000", "file:data/founder.db?_busy_timeout=5000", "data/founder.db"},
		{"./founder.db", "./founder.db", "./founder.db"},
	}
	for _, tc := range cases {
		dsn, path := splitSQLiteDSN(tc.in)
		if dsn != tc.dsn || path != tc.path {
			t.Fatalf("splitSQLiteDSN(%q) = %q,%q want %q,%q", tc.in, dsn, path, tc.dsn, tc.path)
		}
	}
}
