package config

import (
	"fmt"
	"os"
	"strings"
)

// Secrets carries credentials that never live in the config file.
type Secrets struct {
	TelegramToken string
	RiotAPIKey    string
}

const (
	EnvTelegramToken = "RIFT_TELEGRAM_TOKEN"
	EnvRiotAPIKey    = "RIOT_API_KEY"
)

// LoadSecrets reads credentials from the environment, scrubs them, and
// rejects placeholder-looking values. A rejected secret aborts startup.
func LoadSecrets() (Secrets, error) {
	tok := sanitizeEnv(os.Getenv(EnvTelegramToken))
	key := sanitizeEnv(os.Getenv(EnvRiotAPIKey))

	if looksLikePlaceholder(tok) {
		return Secrets{}, fmt.Errorf("%s is missing or looks like a placeholder", EnvTelegramToken)
	}
	if looksLikePlaceholder(key) {
		return Secrets{}, fmt.Errorf("%s is missing or looks like a placeholder", EnvRiotAPIKey)
	}
	return Secrets{TelegramToken: tok, RiotAPIKey: key}, nil
}

// sanitizeEnv trims the value and removes CR/LF so a secret can never be used
// to smuggle extra header lines.
func sanitizeEnv(v string) string {
	v = strings.TrimSpace(v)
	v = strings.ReplaceAll(v, "\r", "")
	v = strings.ReplaceAll(v, "\n", "")
	return v
}

var placeholderSubstrings = []string{"your_token", "your_riot", "changeme", "replace", "xxx", "none"}

func looksLikePlaceholder(v string) bool {
	if v == "" {
		return true
	}
	low := strings.ToLower(v)
	for _, p := range placeholderSubstrings {
		if strings.Contains(low, p) {
			return true
		}
	}
	if strings.HasPrefix(low, "bot ") {
		return true
	}
	// Real tokens are long; short values are almost certainly test garbage.
	return len(v) < 20
}
