package registry

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"rifttracker/pkg/logx"
)

// fileStore keeps the roster and last-seen state in two JSON files:
//
//   - <prefix>.accounts.json  one object, accountKey -> entry
//   - <prefix>.lastseen.json  one object, puuid -> match id
//
// Every save rewrites the whole file through tmp+rename so a crash mid-write
// never leaves a torn file. A missing or corrupt file loads as empty state,
// with corruption logged at warn.
type fileStore struct {
	log logx.Logger

	mu           sync.Mutex
	accountsPath string
	lastSeenPath string
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("registry.path is required for file driver")
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	prefix := filepath.Join(dir, base)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	return &fileStore{
		log:          log,
		accountsPath: prefix + ".accounts.json",
		lastSeenPath: prefix + ".lastseen.json",
	}, nil
}

func (s *fileStore) Close() error { return nil }

func (s *fileStore) LoadAccounts(ctx context.Context) ([]TrackedAccount, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	byKey := map[string]TrackedAccount{}
	if !s.loadJSON(s.accountsPath, &byKey) {
		return nil, nil
	}
	accounts := make([]TrackedAccount, 0, len(byKey))
	for key, a := range byKey {
		if a.Key == "" {
			a.Key = key
		}
		accounts = append(accounts, a)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Key < accounts[j].Key })
	return accounts, nil
}

func (s *fileStore) SaveAccounts(ctx context.Context, accounts []TrackedAccount) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	byKey := make(map[string]TrackedAccount, len(accounts))
	for _, a := range accounts {
		byKey[a.Key] = a
	}
	return writeJSONAtomic(s.accountsPath, byKey)
}

func (s *fileStore) LoadLastSeen(ctx context.Context) (map[string]string, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	lastSeen := map[string]string{}
	if !s.loadJSON(s.lastSeenPath, &lastSeen) {
		return map[string]string{}, nil
	}
	if lastSeen == nil {
		lastSeen = map[string]string{}
	}
	return lastSeen, nil
}

func (s *fileStore) SaveLastSeen(ctx context.Context, lastSeen map[string]string) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if lastSeen == nil {
		lastSeen = map[string]string{}
	}
	return writeJSONAtomic(s.lastSeenPath, lastSeen)
}

// loadJSON reads path into out. Missing files are a silent empty state;
// unreadable or corrupt files log and fall back to empty.
func (s *fileStore) loadJSON(path string, out any) bool {
	b, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Warn("registry file unreadable", logx.String("path", path), logx.Err(err))
		}
		return false
	}
	if err := json.Unmarshal(b, out); err != nil {
		s.log.Warn("registry file corrupt, starting empty", logx.String("path", path), logx.Err(err))
		return false
	}
	return true
}

func writeJSONAtomic(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
