package config

import (
	"fmt"
	"strings"
	"time"
)

// DurationField parses a duration-string config value ("5m", "90s"). An
// empty or zero value falls back to def; a negative or unparseable value is
// an error. field names the config path in error messages.
func DurationField(field, raw string, def time.Duration) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: bad duration %q: %w", field, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: duration %q must not be negative", field, raw)
	}
	if d == 0 {
		return def, nil
	}
	return d, nil
}
