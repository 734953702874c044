package config

import (
	"strings"
	"testing"
)

const (
	validToken = "7000000001:AAHrealistic-looking-bot-token-value"
	validKey   = "RGAPI-12345678-abcd-efgh-ijkl-0123456789ab"
)

func TestLoadSecretsValid(t *testing.T) {
	t.Setenv(EnvTelegramToken, validToken)
	t.Setenv(EnvRiotAPIKey, validKey)

	s, err := LoadSecrets()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.TelegramToken != validToken || s.RiotAPIKey != validKey {
		t.Fatalf("secrets %+v", s)
	}
}

func TestLoadSecretsRejectsPlaceholders(t *testing.T) {
	cases := []struct {
		name  string
		token string
		key   string
		want  string
	}{
		{name: "missing token", token: "", key: validKey, want: EnvTelegramToken},
		{name: "missing key", token: validToken, key: "", want: EnvRiotAPIKey},
		{name: "placeholder token", token: "your_token_here_please_fill", key: validKey, want: EnvTelegramToken},
		{name: "changeme key", token: validToken, key: "RGAPI-changeme-changeme-now", want: EnvRiotAPIKey},
		{name: "xxx key", token: validToken, key: "RGAPI-xxxxxxxxxxxxxxxxxxxxx", want: EnvRiotAPIKey},
		{name: "short token", token: "abc123", key: validKey, want: EnvTelegramToken},
		{name: "bot prefix", token: "bot 7000000001:AAHsomething-long-enough", key: validKey, want: EnvTelegramToken},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(EnvTelegramToken, tc.token)
			t.Setenv(EnvRiotAPIKey, tc.key)
			_, err := LoadSecrets()
			if err == nil {
				t.Fatal("placeholder accepted")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not name %s", err, tc.want)
			}
		})
	}
}

func TestSanitizeEnvStripsLineBreaks(t *testing.T) {
	t.Setenv(EnvTelegramToken, "  "+validToken+"\r\n")
	t.Setenv(EnvRiotAPIKey, validKey+"\n")

	s, err := LoadSecrets()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.TelegramToken != validToken || s.RiotAPIKey != validKey {
		t.Fatalf("not sanitized: %+v", s)
	}
}
