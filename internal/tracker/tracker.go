// Package tracker polls upstream match history for every tracked account,
// detects new matches, and hands them to the dispatcher exactly once.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"rifttracker/internal/notify"
	"rifttracker/internal/registry"
	"rifttracker/internal/riot"
	"rifttracker/pkg/logx"
)

var (
	ErrNotFound       = errors.New("account not found upstream")
	ErrAlreadyTracked = errors.New("account already tracked")
	ErrNotTracked     = errors.New("account not tracked")
)

// Source is the slice of the upstream client the tracker needs.
type Source interface {
	AccountByRiotID(ctx context.Context, gameName, tagLine string) (riot.Account, bool)
	SummonerByPUUID(ctx context.Context, puuid string) (riot.Summoner, bool)
	LatestMatchID(ctx context.Context, puuid string) (string, bool)
	MatchDetail(ctx context.Context, matchID string) (*riot.Match, bool)
}

type Config struct {
	Interval       time.Duration
	DefaultAccount string // "Name#Tag" seeded into an empty roster
}

type Tracker struct {
	cfg        Config
	source     Source
	store      registry.Store
	dispatcher notify.Dispatcher
	log        logx.Logger

	// mu serializes roster mutations against poll cycles.
	mu sync.Mutex

	cronMu  sync.Mutex
	cron    *cron.Cron
	entryID cron.EntryID

	// cycleBusy skips a tick when the previous cycle is still running.
	cycleBusy atomic.Bool
}

func New(cfg Config, source Source, store registry.Store, dispatcher notify.Dispatcher, log logx.Logger) *Tracker {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Tracker{cfg: cfg, source: source, store: store, dispatcher: dispatcher, log: log}
}

// Start seeds the roster if needed and begins the poll schedule.
func (t *Tracker) Start(ctx context.Context) error {
	if err := t.ensureDefault(ctx); err != nil {
		t.log.Warn("default account seed failed", logx.Err(err))
	}

	t.cronMu.Lock()
	defer t.cronMu.Unlock()
	if t.cron != nil {
		return nil
	}
	c := cron.New()
	id, err := c.AddFunc(scheduleSpec(t.cfg.Interval), func() { t.tick(ctx) })
	if err != nil {
		return err
	}
	t.cron = c
	t.entryID = id
	c.Start()

	// First cycle immediately rather than one full interval from now.
	go t.tick(ctx)
	return nil
}

func (t *Tracker) Stop() {
	t.cronMu.Lock()
	c := t.cron
	t.cron = nil
	t.cronMu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
}

// SetInterval replaces the poll cadence at runtime.
func (t *Tracker) SetInterval(ctx context.Context, interval time.Duration) {
	if interval <= 0 || interval == t.cfg.Interval {
		return
	}
	t.cronMu.Lock()
	defer t.cronMu.Unlock()
	t.cfg.Interval = interval
	if t.cron == nil {
		return
	}
	t.cron.Remove(t.entryID)
	id, err := t.cron.AddFunc(scheduleSpec(interval), func() { t.tick(ctx) })
	if err != nil {
		t.log.Error("poll reschedule failed", logx.Err(err))
		return
	}
	t.entryID = id
	t.log.Info("poll interval updated", logx.Duration("interval", interval))
}

func scheduleSpec(interval time.Duration) string {
	return fmt.Sprintf("@every %s", interval)
}

func (t *Tracker) tick(ctx context.Context) {
	if !t.cycleBusy.CompareAndSwap(false, true) {
		t.log.Warn("poll cycle still running, skipping tick")
		return
	}
	defer t.cycleBusy.Store(false)
	if err := t.RunOnce(ctx); err != nil {
		t.log.Error("poll cycle failed", logx.Err(err))
	}
}

// RunOnce performs one full poll cycle: load state once, check every valid
// account, dispatch for new matches, save state once.
//
// One account's upstream failure never blocks the rest of the cycle. A match
// is announced at most once: last-seen advances only after the match detail
// is in hand, but before dispatch, so a failed detail fetch is retried next
// cycle while a failed send is never repeated.
func (t *Tracker) RunOnce(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	accounts, err := t.store.LoadAccounts(ctx)
	if err != nil {
		return fmt.Errorf("load accounts: %w", err)
	}
	if len(accounts) == 0 {
		t.log.Debug("no accounts tracked, skipping cycle")
		return nil
	}

	lastSeen, err := t.store.LoadLastSeen(ctx)
	if err != nil {
		return fmt.Errorf("load last seen: %w", err)
	}

	valid := accounts[:0:0]
	for _, a := range accounts {
		if a.Invalid() {
			t.log.Debug("skipping unresolved account", logx.String("account", a.Key))
			continue
		}
		valid = append(valid, a)
	}
	if len(valid) == 0 {
		t.log.Debug("no resolvable accounts to check")
		return nil
	}

	t.log.Info("checking for new matches", logx.Int("accounts", len(valid)))

	for _, a := range valid {
		if ctx.Err() != nil {
			break
		}
		t.checkAccount(ctx, a, lastSeen)
	}

	// The cycle always ends with a persistence write, changed or not.
	if err := t.store.SaveLastSeen(ctx, lastSeen); err != nil {
		return fmt.Errorf("save last seen: %w", err)
	}
	return nil
}

// checkAccount polls one account and updates its lastSeen entry in place.
// Entries are keyed by PUUID, the stable upstream identity.
func (t *Tracker) checkAccount(ctx context.Context, a registry.TrackedAccount, lastSeen map[string]string) {
	latest, ok := t.source.LatestMatchID(ctx, a.PUUID)
	if !ok {
		t.log.Debug("no match history", logx.String("account", a.Key))
		return
	}
	if prev, seen := lastSeen[a.PUUID]; seen && latest == prev {
		return
	}

	// Last-seen stays put until the detail lands, so a failed fetch means
	// the same match is picked up again next cycle.
	detail, ok := t.source.MatchDetail(ctx, latest)
	if !ok {
		t.log.Warn("match detail unavailable, retrying next cycle",
			logx.String("account", a.Key), logx.String("match", latest))
		return
	}

	// Detail in hand: advance before dispatch so a failed send is never
	// announced twice.
	lastSeen[a.PUUID] = latest
	t.log.Info("new match detected",
		logx.String("account", a.Key), logx.String("match", latest))

	participant, ok := detail.ParticipantByPUUID(a.PUUID)
	if !ok {
		t.log.Warn("tracked account missing from match participants",
			logx.String("account", a.Key), logx.String("match", latest))
		return
	}

	if err := t.dispatcher.MatchCompleted(ctx, notify.MatchNotice{
		Account:     a,
		Match:       detail,
		Participant: participant,
	}); err != nil {
		t.log.Error("match announcement failed",
			logx.String("account", a.Key), logx.String("match", latest), logx.Err(err))
	}
}

// Add resolves and tracks a new account. The newest existing match becomes
// the baseline so only matches played after tracking begins get announced.
// notifyTarget is an opaque mention string included in announcements; empty
// means no mention.
func (t *Tracker) Add(ctx context.Context, gameName, tagLine string, addedBy int64, notifyTarget string) (registry.TrackedAccount, error) {
	gameName = strings.TrimSpace(gameName)
	tagLine = strings.TrimSpace(tagLine)
	key := registry.AccountKey(gameName, tagLine)

	t.mu.Lock()
	defer t.mu.Unlock()

	accounts, err := t.store.LoadAccounts(ctx)
	if err != nil {
		return registry.TrackedAccount{}, err
	}
	for _, a := range accounts {
		if a.Key == key {
			return registry.TrackedAccount{}, ErrAlreadyTracked
		}
	}

	acct, ok := t.source.AccountByRiotID(ctx, gameName, tagLine)
	if !ok {
		return registry.TrackedAccount{}, ErrNotFound
	}

	entry := registry.TrackedAccount{
		Key:          key,
		GameName:     acct.GameName,
		TagLine:      acct.TagLine,
		PUUID:        acct.PUUID,
		AddedBy:      addedBy,
		NotifyTarget: strings.TrimSpace(notifyTarget),
		AddedAt:      time.Now().UTC(),
	}
	if entry.GameName == "" {
		entry.GameName = gameName
	}
	if entry.TagLine == "" {
		entry.TagLine = tagLine
	}
	if s, ok := t.source.SummonerByPUUID(ctx, acct.PUUID); ok {
		entry.SummonerID = s.ID
	}

	accounts = append(accounts, entry)
	if err := t.store.SaveAccounts(ctx, accounts); err != nil {
		return registry.TrackedAccount{}, err
	}

	if latest, ok := t.source.LatestMatchID(ctx, entry.PUUID); ok {
		lastSeen, err := t.store.LoadLastSeen(ctx)
		if err == nil {
			lastSeen[entry.PUUID] = latest
			if err := t.store.SaveLastSeen(ctx, lastSeen); err != nil {
				t.log.Warn("baseline save failed", logx.String("account", key), logx.Err(err))
			}
		}
	}

	t.log.Info("account tracked", logx.String("account", key))
	return entry, nil
}

// Remove untracks an account and drops its last-seen state.
func (t *Tracker) Remove(ctx context.Context, gameName, tagLine string) error {
	key := registry.AccountKey(gameName, tagLine)

	t.mu.Lock()
	defer t.mu.Unlock()

	accounts, err := t.store.LoadAccounts(ctx)
	if err != nil {
		return err
	}
	kept := accounts[:0:0]
	var removed registry.TrackedAccount
	found := false
	for _, a := range accounts {
		if a.Key == key {
			removed = a
			found = true
			continue
		}
		kept = append(kept, a)
	}
	if !found {
		return ErrNotTracked
	}
	if err := t.store.SaveAccounts(ctx, kept); err != nil {
		return err
	}

	lastSeen, err := t.store.LoadLastSeen(ctx)
	if err == nil && removed.PUUID != "" {
		if _, ok := lastSeen[removed.PUUID]; ok {
			delete(lastSeen, removed.PUUID)
			if err := t.store.SaveLastSeen(ctx, lastSeen); err != nil {
				t.log.Warn("last-seen cleanup failed", logx.String("account", key), logx.Err(err))
			}
		}
	}

	t.log.Info("account untracked", logx.String("account", key))
	return nil
}

// List returns the roster sorted by key.
func (t *Tracker) List(ctx context.Context) ([]registry.TrackedAccount, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	accounts, err := t.store.LoadAccounts(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Key < accounts[j].Key })
	return accounts, nil
}

// Find returns one roster entry by riot ID.
func (t *Tracker) Find(ctx context.Context, gameName, tagLine string) (registry.TrackedAccount, error) {
	key := registry.AccountKey(gameName, tagLine)

	t.mu.Lock()
	defer t.mu.Unlock()

	accounts, err := t.store.LoadAccounts(ctx)
	if err != nil {
		return registry.TrackedAccount{}, err
	}
	for _, a := range accounts {
		if a.Key == key {
			return a, nil
		}
	}
	return registry.TrackedAccount{}, ErrNotTracked
}

// Cleanup drops roster entries whose identifiers never resolved.
func (t *Tracker) Cleanup(ctx context.Context) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	accounts, err := t.store.LoadAccounts(ctx)
	if err != nil {
		return 0, err
	}
	kept := accounts[:0:0]
	removed := 0
	for _, a := range accounts {
		if a.Invalid() {
			removed++
			continue
		}
		kept = append(kept, a)
	}
	if removed == 0 {
		return 0, nil
	}
	if err := t.store.SaveAccounts(ctx, kept); err != nil {
		return 0, err
	}
	t.log.Info("invalid accounts removed", logx.Int("count", removed))
	return removed, nil
}

// Reconcile re-resolves entries with placeholder identifiers. Entries that
// resolve get real IDs; the rest stay and keep being skipped by polling.
func (t *Tracker) Reconcile(ctx context.Context) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	accounts, err := t.store.LoadAccounts(ctx)
	if err != nil {
		return 0, err
	}
	fixed := 0
	for i, a := range accounts {
		if !a.Invalid() {
			continue
		}
		acct, ok := t.source.AccountByRiotID(ctx, a.GameName, a.TagLine)
		if !ok {
			continue
		}
		accounts[i].PUUID = acct.PUUID
		if s, ok := t.source.SummonerByPUUID(ctx, acct.PUUID); ok {
			accounts[i].SummonerID = s.ID
		}
		fixed++
		t.log.Info("account reconciled", logx.String("account", a.Key))
	}
	if fixed == 0 {
		return 0, nil
	}
	return fixed, t.store.SaveAccounts(ctx, accounts)
}

// ensureDefault seeds a configured account into an empty roster. When the
// upstream lookup fails the seed keeps a placeholder ID so a later
// Reconcile can finish the job.
func (t *Tracker) ensureDefault(ctx context.Context) error {
	if t.cfg.DefaultAccount == "" {
		return nil
	}
	gameName, tagLine, ok := strings.Cut(t.cfg.DefaultAccount, "#")
	if !ok {
		return fmt.Errorf("default account %q must be Name#Tag", t.cfg.DefaultAccount)
	}

	t.mu.Lock()
	accounts, err := t.store.LoadAccounts(ctx)
	empty := err == nil && len(accounts) == 0
	t.mu.Unlock()
	if err != nil {
		return err
	}
	if !empty {
		return nil
	}

	if _, err := t.Add(ctx, gameName, tagLine, 0, ""); err != nil {
		if errors.Is(err, ErrNotFound) {
			t.mu.Lock()
			defer t.mu.Unlock()
			entry := registry.TrackedAccount{
				Key:      registry.AccountKey(gameName, tagLine),
				GameName: strings.TrimSpace(gameName),
				TagLine:  strings.TrimSpace(tagLine),
				PUUID:    "sample-puuid",
				AddedAt:  time.Now().UTC(),
			}
			t.log.Warn("default account unresolved, seeding placeholder",
				logx.String("account", entry.Key))
			return t.store.SaveAccounts(ctx, []registry.TrackedAccount{entry})
		}
		return err
	}
	return nil
}
