package app

import (
	"fmt"
	"strings"
	"time"

	"rifttracker/internal/config"
	"rifttracker/internal/registry"
	"rifttracker/internal/riot"
)

func mapStorageConfig(cfg *config.Config) (registry.Config, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	if driver == "" {
		driver = "file"
	}
	path := strings.TrimSpace(cfg.Storage.Path)

	switch driver {
	case "none":
		return registry.Config{Driver: "none"}, nil
	case "file":
		if path == "" {
			path = "./data/rifttracker.json"
		}
		return registry.Config{Driver: "file", Path: path}, nil
	case "sqlite", "sqlite3":
		if path == "" {
			return registry.Config{}, fmt.Errorf("storage.path is required when storage.driver=sqlite")
		}
		busy, err := config.DurationField("storage.busy_timeout", cfg.Storage.BusyTimeout, time.Second)
		if err != nil {
			return registry.Config{}, err
		}
		return registry.Config{Driver: driver, Path: path, BusyTimeout: busy}, nil
	default:
		return registry.Config{}, fmt.Errorf("unknown storage.driver: %s", cfg.Storage.Driver)
	}
}

func mapRiotConfig(cfg *config.Config, apiKey string) (riot.Config, error) {
	ttl, err := config.DurationField("riot.cache_ttl", cfg.Riot.CacheTTL, 60*time.Second)
	if err != nil {
		return riot.Config{}, err
	}
	return riot.Config{
		APIKey:        apiKey,
		Region:        strings.TrimSpace(cfg.Riot.Region),
		RoutingRegion: strings.TrimSpace(cfg.Riot.RoutingRegion),
		MaxInFlight:   cfg.Riot.MaxInFlight,
		MaxAttempts:   cfg.Riot.MaxAttempts,
		CacheTTL:      ttl,
		RatePerSec:    cfg.Riot.RatePerSec,
	}, nil
}
