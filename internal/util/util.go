package util

import (
	"net/url"
	"strings"
)

// RedactDSN removes the password from a database DSN so it can be logged.
// Both URL DSNs and key=value DSNs are handled; anything else is returned as is.
func RedactDSN(dsn string) string {
	trimmed := strings.TrimSpace(dsn)
	if strings.Contains(trimmed, "://") {
		parsed, err := url.Parse(trimmed)
		if err != nil {
			return trimmed
		}
		return parsed.Redacted()
	}
	if !strings.Contains(trimmed, "=") {
		return trimmed
	}
	fields := strings.Fields(trimmed)
	for i, field := range fields {
		key, _, found := strings.Cut(field, "=")
		if found && strings.EqualFold(key, "password") {
			fields[i] = key + "=" + redacted
		}
	}
	return strings.Join(fields, " ")
}

const redacted = "xxxxx"

// MaskSensitiveQuery replaces the values of credential-like query parameters so request
// paths can be logged. Untouched queries are returned verbatim; masked ones are re-encoded.
func MaskSensitiveQuery(raw string) string {
	values, errParse := url.ParseQuery(raw)
	if errParse != nil {
		return redacted
	}
	changed := false
	for key := range values {
		if isSensitiveParam(key) {
			values[key] = []string{redacted}
			changed = true
		}
	}
	if !changed {
		return raw
	}
	return values.Encode()
}

func isSensitiveParam(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, marker := range []string{"token", "password", "secret", "key"} {
		if strings.Contains(key, marker) {
			return true
		}
	}
	return false
}
