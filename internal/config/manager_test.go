package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestManagerLoadJSON(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "config.json", `{
		"telegram": {"chat_id": -100123, "poll_timeout": "15s"},
		"logging": {"level": "DEBUG", "console": true, "file": {"enabled": false, "path": ""}},
		"riot": {"region": "euw1", "routing_region": "europe", "cache_ttl": "90s"},
		"tracker": {"enabled": true, "interval": "3m", "default_account": "Ann#NA1"},
		"storage": {"driver": "file", "path": "./data/state.json"}
	}`)

	m := NewManager(path)
	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.ChatID != -100123 || cfg.Riot.Region != "euw1" || !cfg.Tracker.Enabled {
		t.Fatalf("cfg %+v", cfg)
	}
	if got := m.Get(); got != cfg {
		t.Fatal("Get returned different config")
	}
}

func TestManagerLoadYAML(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "config.yaml", `
telegram:
  chat_id: -100123
logging:
  level: INFO
  console: true
  file:
    enabled: false
    path: ""
riot:
  region: na1
tracker:
  enabled: true
  interval: 5m
storage:
  driver: file
  path: ./data/state.json
`)

	cfg, err := NewManager(path).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.ChatID != -100123 || cfg.Tracker.Interval != "5m" {
		t.Fatalf("cfg %+v", cfg)
	}
}

func TestManagerRejectsUnknownFields(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "config.json", `{"telegram": {"chat_id": 1, "typo_field": true}}`)
	if _, err := NewManager(path).Load(); err == nil {
		t.Fatal("unknown field accepted")
	}
}

func TestManagerRejectsTrailingData(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "config.json", `{"telegram": {"chat_id": 1}}{"more": true}`)
	if _, err := NewManager(path).Load(); err == nil {
		t.Fatal("trailing data accepted")
	}
}

func TestManagerMissingFile(t *testing.T) {
	t.Parallel()
	if _, err := NewManager(filepath.Join(t.TempDir(), "nope.json")).Load(); err == nil {
		t.Fatal("missing file accepted")
	}
}

func TestSubscribePublishUnsubscribe(t *testing.T) {
	t.Parallel()
	m := NewManager("unused.json")

	ch := m.Subscribe(1)
	cfg := &Config{}
	m.publish(cfg)

	select {
	case got := <-ch:
		if got != cfg {
			t.Fatal("wrong config delivered")
		}
	default:
		t.Fatal("nothing published")
	}

	// Full buffer: newest config wins, publish never blocks.
	m.publish(&Config{Riot: RiotConfig{Region: "old"}})
	newest := &Config{Riot: RiotConfig{Region: "new"}}
	m.publish(newest)
	if got := <-ch; got != newest {
		t.Fatalf("expected newest config, got %+v", got)
	}

	m.Unsubscribe(ch)
	if _, ok := <-ch; ok {
		t.Fatal("channel not closed after unsubscribe")
	}
	// Publishing after unsubscribe must not panic.
	m.publish(cfg)
}

func TestDurationField(t *testing.T) {
	t.Parallel()
	d, err := DurationField("tracker.interval", "5m", time.Minute)
	if err != nil || d.Minutes() != 5 {
		t.Fatalf("got %v %v", d, err)
	}
	if _, err := DurationField("tracker.interval", "five minutes", time.Minute); err == nil {
		t.Fatal("junk accepted")
	}
	if _, err := DurationField("tracker.interval", "-3s", time.Minute); err == nil {
		t.Fatal("negative accepted")
	}
	for _, raw := range []string{"", "0s"} {
		d, err = DurationField("x", raw, 42*time.Second)
		if err != nil || d != 42*time.Second {
			t.Fatalf("default not applied for %q: %v %v", raw, d, err)
		}
	}
}
