package settings

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// PlatformName returns the configured dashboard title.
func PlatformName() string {
	if s, ok := String(PlatformNameKey); ok && s != "" {
		return s
	}
	return DefaultPlatformName
}

// SupportEmail returns the configured support address, or "".
func SupportEmail() string {
	s, _ := String(SupportEmailKey)
	return s
}

// CostWindowDays returns the configured cost window, or fallback when unset or out of range.
func CostWindowDays(fallback int) int {
	if n, ok := Int(CostWindowDaysKey); ok && n > 0 && n <= MaxCostWindowDays {
		return n
	}
	return fallback
}

// SnapshotRetentionDays returns the configured retention, or fallback when unset or negative.
func SnapshotRetentionDays(fallback int) int {
	if n, ok := Int(SnapshotRetentionDaysKey); ok && n >= 0 {
		return n
	}
	return fallback
}

// String returns a string setting.
func String(key string) (string, bool) {
	raw, ok := Value(key)
	if !ok {
		return "", false
	}
	var s string
	if errUnmarshal := json.Unmarshal(raw, &s); errUnmarshal != nil {
		return "", false
	}
	return strings.TrimSpace(s), true
}

// Int returns an integer setting.
func Int(key string) (int, bool) {
	raw, ok := Value(key)
	if !ok {
		return 0, false
	}
	return ParseInt(raw)
}

// ParseInt accepts a JSON number, a numeric string, or {"value": ...}.
func ParseInt(raw json.RawMessage) (int, bool) {
	raw = json.RawMessage(strings.TrimSpace(string(raw)))
	if len(raw) == 0 {
		return 0, false
	}
	var n int
	if errUnmarshal := json.Unmarshal(raw, &n); errUnmarshal == nil {
		return n, true
	}
	var f float64
	if errUnmarshal := json.Unmarshal(raw, &f); errUnmarshal == nil {
		if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return 0, false
		}
		return int(f), true
	}
	var s string
	if errUnmarshal := json.Unmarshal(raw, &s); errUnmarshal == nil {
		if parsed, errParse := strconv.Atoi(strings.TrimSpace(s)); errParse == nil {
			return parsed, true
		}
	}
	var wrapper struct {
		Value json.RawMessage `json:"value"`
	}
	if errUnmarshal := json.Unmarshal(raw, &wrapper); errUnmarshal == nil && len(wrapper.Value) > 0 {
		return ParseInt(wrapper.Value)
	}
	return 0, false
}
