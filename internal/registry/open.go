package registry

import (
	"context"
	"errors"
	"strings"

	"rifttracker/pkg/logx"
)

// Store is the persistence API used by the tracker and the command layer.
//
// Accounts and LastSeen are loaded whole and saved whole: the roster is
// small and whole-state overwrite keeps both drivers trivially consistent.
// The LastSeen map is keyed by PUUID.
type Store interface {
	LoadAccounts(ctx context.Context) ([]TrackedAccount, error)
	SaveAccounts(ctx context.Context, accounts []TrackedAccount) error

	LoadLastSeen(ctx context.Context) (map[string]string, error)
	SaveLastSeen(ctx context.Context, lastSeen map[string]string) error

	Close() error
}

// Open initializes the configured store.
// It returns (nil, nil) if the registry is disabled.
func Open(cfg Config, log logx.Logger) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" || driver == "none" {
		return nil, nil
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	switch driver {
	case "file":
		return openFile(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, errors.New("unknown registry driver: " + driver)
	}
}
