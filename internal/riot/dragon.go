package riot

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"rifttracker/pkg/logx"
)

const defaultDragonBase = "https://ddragon.leagueoflegends.com"

// Champion is one static catalog entry.
type Champion struct {
	ID   string // e.g. "MonkeyKing"
	Name string // e.g. "Wukong"
	Key  int    // numeric ID used by match payloads
}

// Catalog serves static champion data from the community CDN. It resolves the
// newest data version once and keeps the champion table in memory; Refresh
// re-resolves after patch days.
type Catalog struct {
	client *Client
	log    logx.Logger
	base   string

	mu      sync.RWMutex
	version string
	byKey   map[int]Champion
}

func NewCatalog(client *Client, log logx.Logger) *Catalog {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Catalog{client: client, log: log, base: defaultDragonBase}
}

// WithCatalogBase overrides the CDN host (tests).
func (t *Catalog) WithCatalogBase(base string) *Catalog {
	t.base = strings.TrimRight(base, "/")
	return t
}

type dragonChampionFile struct {
	Data map[string]struct {
		ID   string `json:"id"`
		Key  string `json:"key"`
		Name string `json:"name"`
	} `json:"data"`
}

// Refresh fetches the current version list and the champion table.
func (t *Catalog) Refresh(ctx context.Context) bool {
	var versions []string
	if !t.client.getJSON(ctx, t.base+"/api/versions.json", nil, nil, &versions) || len(versions) == 0 {
		t.log.Warn("champion catalog version lookup failed")
		return false
	}
	version := versions[0]

	var file dragonChampionFile
	u := t.base + "/cdn/" + version + "/data/en_US/champion.json"
	if !t.client.getJSON(ctx, u, nil, nil, &file) || len(file.Data) == 0 {
		t.log.Warn("champion catalog fetch failed", logx.String("version", version))
		return false
	}

	byKey := make(map[int]Champion, len(file.Data))
	for _, c := range file.Data {
		key, err := strconv.Atoi(c.Key)
		if err != nil {
			continue
		}
		byKey[key] = Champion{ID: c.ID, Name: c.Name, Key: key}
	}

	t.mu.Lock()
	t.version = version
	t.byKey = byKey
	t.mu.Unlock()

	t.log.Info("champion catalog refreshed",
		logx.String("version", version), logx.Int("champions", len(byKey)))
	return true
}

// ChampionByKey resolves a numeric champion ID from match payloads. It lazily
// loads the catalog on first use.
func (t *Catalog) ChampionByKey(ctx context.Context, key int) (Champion, bool) {
	t.mu.RLock()
	loaded := t.byKey != nil
	c, ok := t.byKey[key]
	t.mu.RUnlock()
	if ok {
		return c, true
	}
	if loaded {
		return Champion{}, false
	}
	if !t.Refresh(ctx) {
		return Champion{}, false
	}
	t.mu.RLock()
	c, ok = t.byKey[key]
	t.mu.RUnlock()
	return c, ok
}

// IconURL returns the CDN square-icon URL for a champion.
func (t *Catalog) IconURL(champ Champion) string {
	t.mu.RLock()
	version := t.version
	t.mu.RUnlock()
	if version == "" {
		return ""
	}
	return t.base + "/cdn/" + version + "/img/champion/" + champ.ID + ".png"
}

// Icon fetches the raw square-icon PNG bytes for a champion.
func (t *Catalog) Icon(ctx context.Context, champ Champion) ([]byte, bool) {
	u := t.IconURL(champ)
	if u == "" {
		return nil, false
	}
	return t.client.getBytes(ctx, u)
}
