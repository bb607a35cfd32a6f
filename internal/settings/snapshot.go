package settings

import (
	"encoding/json"
	"strings"
	"sync/atomic"
	"time"
)

// snapshot is an immutable view of the settings table.
type snapshot struct {
	updatedAt time.Time
	values    map[string]json.RawMessage
}

var current atomic.Pointer[snapshot]

func init() {
	current.Store(&snapshot{values: map[string]json.RawMessage{}})
}

// Store swaps in a new set of values. Keys are trimmed and blank keys dropped.
// Passing nil values clears every override so accessors return their fallbacks.
func Store(updatedAt time.Time, values map[string]json.RawMessage) {
	next := &snapshot{updatedAt: updatedAt.UTC(), values: make(map[string]json.RawMessage, len(values))}
	for k, v := range values {
		key := strings.TrimSpace(k)
		if key == "" {
			continue
		}
		next.values[key] = append(json.RawMessage(nil), v...)
	}
	current.Store(next)
}

// UpdatedAt returns the newest row timestamp seen by the last refresh.
func UpdatedAt() time.Time {
	return current.Load().updatedAt
}

// Value returns a copy of the raw JSON stored under key.
func Value(key string) (json.RawMessage, bool) {
	val, ok := current.Load().values[strings.TrimSpace(key)]
	if !ok || len(val) == 0 {
		return nil, false
	}
	return append(json.RawMessage(nil), val...), true
}
