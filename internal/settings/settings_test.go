package settings

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/verly-ai/founder-platform/internal/models"
	"github.com/verly-ai/founder-platform/internal/testutil"
)

func resetSnapshot(t *testing.T) {
	t.Helper()
	Store(time.Time{}, nil)
	t.Cleanup(func() { Store(time.Time{}, nil) })
}

func TestParseInt(t *testing.T) {
	cases := map[string]int{
		`30`:              30,
		` 7 `:             7,
		`14.0`:            14,
		`"21"`:            21,
		`{"value": 90}`:   90,
		`{"value": "45"}`: 45,
	}
	for raw, want := range cases {
		got, ok := ParseInt(json.RawMessage(raw))
		if !ok || got != want {
			t.Fatalf("ParseInt(%s) = %d,%v want %d", raw, got, ok, want)
		}
	}
	for _, raw := range []string{``, `1.5`, `"abc"`, `true`} {
		if _, ok := ParseInt(json.RawMessage(raw)); ok {
			t.Fatalf("ParseInt(%s) should fail", raw)
		}
	}
}

func TestTypedValuesFallBack(t *testing.T) {
	resetSnapshot(t)
	if got := PlatformName(); got != DefaultPlatformName {
		t.Fatalf("expected default platform name, got %q", got)
	}
	if got := CostWindowDays(30); got != 30 {
		t.Fatalf("expected fallback window, got %d", got)
	}

	Store(time.Now(), map[string]json.RawMessage{
		PlatformNameKey:          json.RawMessage(`"Acme HQ"`),
		CostWindowDaysKey:        json.RawMessage(`9999`),
		SnapshotRetentionDaysKey: json.RawMessage(`0`),
	})
	if got := PlatformName(); got != "Acme HQ" {
		t.Fatalf("expected stored name, got %q", got)
	}
	if got := CostWindowDays(30); got != 30 {
		t.Fatalf("expected out-of-range window to fall back, got %d", got)
	}
	if got := SnapshotRetentionDays(365); got != 0 {
		t.Fatalf("expected retention 0, got %d", got)
	}
}

func TestSaveRefreshesSnapshot(t *testing.T) {
	resetSnapshot(t)
	conn := testutil.OpenDB(t)
	ctx := context.Background()

	if errSave := Save(ctx, conn, 0, map[string]json.RawMessage{CostWindowDaysKey: json.RawMessage(`7`)}); errSave != nil {
		t.Fatalf("save: %v", errSave)
	}
	if got := CostWindowDays(30); got != 7 {
		t.Fatalf("expected window 7, got %d", got)
	}

	if errSave := Save(ctx, conn, 0, map[string]json.RawMessage{CostWindowDaysKey: json.RawMessage(`14`)}); errSave != nil {
		t.Fatalf("save again: %v", errSave)
	}
	if got := CostWindowDays(30); got != 14 {
		t.Fatalf("expected window 14, got %d", got)
	}

	var count int64
	if errCount := conn.Table("settings").Count(&count).Error; errCount != nil {
		t.Fatalf("count: %v", errCount)
	}
	if count != 1 {
		t.Fatalf("expected one settings row, got %d", count)
	}
	if UpdatedAt().IsZero() {
		t.Fatalf("expected snapshot timestamp")
	}

	if errSave := Save(ctx, conn, 3, map[string]json.RawMessage{PlatformNameKey: json.RawMessage(`"Ops"`)}); errSave != nil {
		t.Fatalf("save as admin: %v", errSave)
	}
	var row models.Setting
	if errFind := conn.Where("key = ?", PlatformNameKey).First(&row).Error; errFind != nil {
		t.Fatalf("load row: %v", errFind)
	}
	if row.UpdatedBy == nil || *row.UpdatedBy != 3 {
		t.Fatalf("expected updated_by 3, got %v", row.UpdatedBy)
	}
	if errSave := Save(ctx, conn, 3, map[string]json.RawMessage{"UNKNOWN": json.RawMessage(`1`)}); errSave == nil {
		t.Fatalf("expected unknown key to be rejected")
	}
}
