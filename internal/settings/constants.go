package settings

// DB config keys and defaults for settings.
const (
	// PlatformNameKey is the DB config key for the dashboard title.
	PlatformNameKey = "PLATFORM_NAME"
	// DefaultPlatformName is the fallback dashboard title.
	DefaultPlatformName = "Founder Platform"
	// SupportEmailKey is the contact address shown to operators.
	SupportEmailKey = "SUPPORT_EMAIL"
	// CostWindowDaysKey overrides the trailing cost window used by metrics.
	CostWindowDaysKey = "COST_WINDOW_DAYS"
	// SnapshotRetentionDaysKey controls how long daily metric snapshots are kept. 0 keeps them forever.
	SnapshotRetentionDaysKey = "SNAPSHOT_RETENTION_DAYS"
	// MaxCostWindowDays caps the cost window accepted from settings and requests.
	MaxCostWindowDays = 366
)

// Keys lists every key the settings API accepts.
var Keys = []string{PlatformNameKey, SupportEmailKey, CostWindowDaysKey, SnapshotRetentionDaysKey}

// IsKnownKey reports whether key is managed by the settings API.
func IsKnownKey(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}
