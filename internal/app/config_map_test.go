package app

import (
	"testing"
	"time"

	"rifttracker/internal/config"
)

func TestMapStorageConfig(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}
	sc, err := mapStorageConfig(cfg)
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	if sc.Driver != "file" || sc.Path == "" {
		t.Fatalf("default mapping %+v", sc)
	}

	cfg.Storage = config.StorageConfig{Driver: "sqlite", Path: "/tmp/x.db", BusyTimeout: "2s"}
	sc, err = mapStorageConfig(cfg)
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	if sc.Driver != "sqlite" || sc.BusyTimeout != 2*time.Second {
		t.Fatalf("sqlite mapping %+v", sc)
	}

	cfg.Storage = config.StorageConfig{Driver: "sqlite"}
	if _, err := mapStorageConfig(cfg); err == nil {
		t.Fatal("sqlite without path accepted")
	}

	cfg.Storage = config.StorageConfig{Driver: "bolt"}
	if _, err := mapStorageConfig(cfg); err == nil {
		t.Fatal("unknown driver accepted")
	}
}

func TestMapRiotConfig(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}
	rc, err := mapRiotConfig(cfg, "RGAPI-key")
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	if rc.APIKey != "RGAPI-key" || rc.CacheTTL != 60*time.Second {
		t.Fatalf("default mapping %+v", rc)
	}

	cfg.Riot = config.RiotConfig{Region: "euw1", CacheTTL: "90s", MaxInFlight: 4}
	rc, err = mapRiotConfig(cfg, "k")
	if err != nil {
		t.Fatal(err)
	}
	if rc.Region != "euw1" || rc.CacheTTL != 90*time.Second || rc.MaxInFlight != 4 {
		t.Fatalf("mapping %+v", rc)
	}

	cfg.Riot.CacheTTL = "ninety"
	if _, err := mapRiotConfig(cfg, "k"); err == nil {
		t.Fatal("bad duration accepted")
	}
}
