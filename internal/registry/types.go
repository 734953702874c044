package registry

import (
	"errors"
	"strings"
	"time"
)

var ErrDisabled = errors.New("registry disabled")

// Config configures the registry backend.
//
// Driver values:
//   - "file": JSON files next to Path
//   - "sqlite": SQLite database file
//
// If Driver is empty or "none", the registry is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// TrackedAccount is one roster entry. Key is the canonical "name#tag" form
// and is unique within the roster.
type TrackedAccount struct {
	Key        string `json:"key"`
	GameName   string `json:"game_name"`
	TagLine    string `json:"tag_line"`
	PUUID      string `json:"puuid"`
	SummonerID string `json:"summoner_id,omitempty"`
	AddedBy    int64  `json:"added_by,omitempty"`
	// NotifyTarget is an opaque mention string ("@handle") included in
	// announcements for this account. Empty means no mention.
	NotifyTarget string    `json:"notify_target,omitempty"`
	AddedAt      time.Time `json:"added_at"`
}

// AccountKey builds the canonical roster key. Case-insensitive so "Ann#NA1"
// and "ann#na1" are the same entry.
func AccountKey(gameName, tagLine string) string {
	return strings.ToLower(strings.TrimSpace(gameName)) + "#" + strings.ToLower(strings.TrimSpace(tagLine))
}

// placeholderIDPrefix marks seeded entries whose real IDs were never
// resolved. Such entries are skipped by polling until reconciled.
const placeholderIDPrefix = "sample"

// Invalid reports whether the entry lacks usable upstream identifiers.
func (a TrackedAccount) Invalid() bool {
	if strings.TrimSpace(a.PUUID) == "" {
		return true
	}
	return strings.HasPrefix(a.PUUID, placeholderIDPrefix)
}
