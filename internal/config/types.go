package config

// Config is the on-disk configuration. Secrets (Telegram token, Riot API key)
// are NOT read from this file; they come from the environment (see env.go).
type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Logging  LoggingConfig  `json:"logging"`
	Riot     RiotConfig     `json:"riot"`
	Tracker  TrackerConfig  `json:"tracker"`
	Storage  StorageConfig  `json:"storage"`
}

type TelegramConfig struct {
	// ChatID is the chat that receives new-match notifications.
	ChatID   int64 `json:"chat_id"`
	ThreadID int   `json:"thread_id,omitempty"`
	// PollTimeout is a Go duration string (e.g. "10s", "2m").
	PollTimeout string `json:"poll_timeout,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// RiotConfig controls the upstream request engine.
//
// All durations are Go duration strings (e.g. "500ms", "10s", "1m").
//
// Defaults (when fields are omitted/zero):
//   - region: "na1", routing_region: "americas"
//   - max_in_flight: 10
//   - max_attempts: 3
//   - cache_ttl: "60s"
//   - rate_per_sec: 0 (proactive pacing disabled; header-driven waits only)
type RiotConfig struct {
	Region        string `json:"region,omitempty"`
	RoutingRegion string `json:"routing_region,omitempty"`
	MaxInFlight   int    `json:"max_in_flight,omitempty"`
	MaxAttempts   int    `json:"max_attempts,omitempty"`
	CacheTTL      string `json:"cache_ttl,omitempty"`
	RatePerSec    int    `json:"rate_per_sec,omitempty"`
}

// TrackerConfig controls the match poller.
type TrackerConfig struct {
	Enabled bool `json:"enabled"`
	// Interval is a Go duration string; polling cadence (default "5m").
	Interval string `json:"interval,omitempty"`
	// DefaultAccount ("Name#Tag") is registered on startup so a fresh
	// install tracks at least one account.
	DefaultAccount string `json:"default_account,omitempty"`
}

// StorageConfig selects the persistence backend for the account registry
// and last-seen match map.
//
// Driver values:
//   - "file" (default): two JSON documents next to Path
//   - "sqlite": single SQLite database file
type StorageConfig struct {
	Driver      string `json:"driver,omitempty"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}
