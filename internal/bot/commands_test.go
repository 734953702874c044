package bot

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"rifttracker/internal/notify"
	"rifttracker/internal/registry"
	"rifttracker/internal/riot"
	"rifttracker/internal/tracker"
	"rifttracker/internal/transport"
	"rifttracker/pkg/logx"
)

type fakeUpstream struct {
	accounts map[string]riot.Account
	latest   map[string]string
	matches  map[string]*riot.Match
	ranked   map[string][]riot.LeagueEntry
	mastery  map[string][]riot.MasteryEntry
	active   map[string]*riot.ActiveGame
}

func (f *fakeUpstream) AccountByRiotID(_ context.Context, gameName, tagLine string) (riot.Account, bool) {
	a, ok := f.accounts[registry.AccountKey(gameName, tagLine)]
	return a, ok
}

func (f *fakeUpstream) SummonerByPUUID(_ context.Context, puuid string) (riot.Summoner, bool) {
	return riot.Summoner{ID: "sid-" + puuid, PUUID: puuid}, true
}

func (f *fakeUpstream) LatestMatchID(_ context.Context, puuid string) (string, bool) {
	id, ok := f.latest[puuid]
	return id, ok && id != ""
}

func (f *fakeUpstream) MatchDetail(_ context.Context, matchID string) (*riot.Match, bool) {
	m, ok := f.matches[matchID]
	return m, ok
}

func (f *fakeUpstream) RankedEntriesByPUUID(_ context.Context, puuid string) []riot.LeagueEntry {
	return f.ranked[puuid]
}

func (f *fakeUpstream) RecentMatchIDs(_ context.Context, puuid string, count, _ int) []string {
	id, ok := f.latest[puuid]
	if !ok || count < 1 {
		return nil
	}
	return []string{id}
}

func (f *fakeUpstream) ChampionMastery(_ context.Context, puuid string, _ int) []riot.MasteryEntry {
	return f.mastery[puuid]
}

func (f *fakeUpstream) ActiveGameByPUUID(_ context.Context, puuid string) (*riot.ActiveGame, bool) {
	g, ok := f.active[puuid]
	return g, ok
}

type fakeNamer struct{ names map[int]string }

func (f *fakeNamer) ChampionByKey(_ context.Context, key int) (riot.Champion, bool) {
	name, ok := f.names[key]
	return riot.Champion{Name: name, Key: key}, ok
}

type noopDispatcher struct{}

func (noopDispatcher) MatchCompleted(context.Context, notify.MatchNotice) error { return nil }

func newTestCommands(t *testing.T, up *fakeUpstream) (*Commands, *fakeAdapter) {
	t.Helper()
	st, err := registry.Open(registry.Config{
		Driver: "file",
		Path:   filepath.Join(t.TempDir(), "state.json"),
	}, logx.Nop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	tr := tracker.New(tracker.Config{}, up, st, noopDispatcher{}, logx.Nop())
	names := &fakeNamer{names: map[int]string{62: "Wukong", 103: "Ahri"}}
	return NewCommands(tr, up, names, "na1"), &fakeAdapter{}
}

func newRequest(adapter *fakeAdapter, args ...string) *Request {
	return &Request{
		Message: &transport.Message{ChatID: 1, FromID: 2},
		Chat:    transport.ChatTarget{ChatID: 1},
		Args:    args,
		Adapter: adapter,
		Logger:  logx.Nop(),
	}
}

func lastReply(t *testing.T, adapter *fakeAdapter) string {
	t.Helper()
	texts := adapter.texts()
	if len(texts) == 0 {
		t.Fatal("no reply sent")
	}
	return texts[len(texts)-1]
}

func TestAddCommand(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	up := &fakeUpstream{
		accounts: map[string]riot.Account{
			"ann#na1": {PUUID: "p-ann", GameName: "Ann", TagLine: "NA1"},
		},
		latest: map[string]string{"p-ann": "NA1_100"},
	}
	c, adapter := newTestCommands(t, up)

	if err := c.add(ctx, newRequest(adapter, "Ann#NA1")); err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := lastReply(t, adapter); !strings.Contains(got, "Now tracking") {
		t.Fatalf("reply %q", got)
	}

	if err := c.add(ctx, newRequest(adapter, "Ann#NA1")); err != nil {
		t.Fatal(err)
	}
	if got := lastReply(t, adapter); !strings.Contains(got, "Already tracking") {
		t.Fatalf("reply %q", got)
	}

	if err := c.add(ctx, newRequest(adapter, "Ghost#NA1")); err != nil {
		t.Fatal(err)
	}
	if got := lastReply(t, adapter); !strings.Contains(got, "not found") {
		t.Fatalf("reply %q", got)
	}

	if err := c.add(ctx, newRequest(adapter, "no-tag-here")); err != nil {
		t.Fatal(err)
	}
	if got := lastReply(t, adapter); !strings.Contains(got, "Usage") {
		t.Fatalf("reply %q", got)
	}
}

func TestAddCommandWithMention(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	up := &fakeUpstream{
		accounts: map[string]riot.Account{
			"ann marie#na1": {PUUID: "p-ann", GameName: "Ann Marie", TagLine: "NA1"},
		},
	}
	c, adapter := newTestCommands(t, up)

	// Trailing @mention is stripped from the riot ID and stored with the
	// entry.
	if err := c.add(ctx, newRequest(adapter, "Ann", "Marie#NA1", "@coach")); err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := lastReply(t, adapter); !strings.Contains(got, "Now tracking") {
		t.Fatalf("reply %q", got)
	}
	a, err := c.tracker.Find(ctx, "Ann Marie", "NA1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if a.NotifyTarget != "@coach" {
		t.Fatalf("notify target not stored: %+v", a)
	}
}

func TestListCommand(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	up := &fakeUpstream{
		accounts: map[string]riot.Account{
			"ann#na1": {PUUID: "p-ann", GameName: "Ann", TagLine: "NA1"},
		},
	}
	c, adapter := newTestCommands(t, up)

	if err := c.list(ctx, newRequest(adapter)); err != nil {
		t.Fatal(err)
	}
	if got := lastReply(t, adapter); !strings.Contains(got, "No accounts tracked") {
		t.Fatalf("reply %q", got)
	}

	if err := c.add(ctx, newRequest(adapter, "Ann#NA1")); err != nil {
		t.Fatal(err)
	}
	if err := c.list(ctx, newRequest(adapter)); err != nil {
		t.Fatal(err)
	}
	got := lastReply(t, adapter)
	if !strings.Contains(got, "Ann#NA1") || !strings.Contains(got, "(1)") {
		t.Fatalf("reply %q", got)
	}
}

func TestRankCommand(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	up := &fakeUpstream{
		accounts: map[string]riot.Account{
			"ann#na1": {PUUID: "p-ann", GameName: "Ann", TagLine: "NA1"},
		},
		ranked: map[string][]riot.LeagueEntry{
			"p-ann": {{QueueType: "RANKED_SOLO_5x5", Tier: "GOLD", Rank: "II", LeaguePoints: 54, Wins: 30, Losses: 20}},
		},
	}
	c, adapter := newTestCommands(t, up)

	if err := c.rank(ctx, newRequest(adapter, "Ann#NA1")); err != nil {
		t.Fatal(err)
	}
	if got := lastReply(t, adapter); !strings.Contains(got, "Not tracked") {
		t.Fatalf("untracked rank reply %q", got)
	}

	if err := c.add(ctx, newRequest(adapter, "Ann#NA1")); err != nil {
		t.Fatal(err)
	}
	if err := c.rank(ctx, newRequest(adapter, "Ann#NA1")); err != nil {
		t.Fatal(err)
	}
	if got := lastReply(t, adapter); !strings.Contains(got, "Gold II") {
		t.Fatalf("rank reply %q", got)
	}
}

func TestMasteryCommand(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	up := &fakeUpstream{
		accounts: map[string]riot.Account{
			"ann#na1": {PUUID: "p-ann", GameName: "Ann", TagLine: "NA1"},
		},
		mastery: map[string][]riot.MasteryEntry{
			"p-ann": {{ChampionID: 62, ChampionLevel: 7, ChampionPoints: 250000}},
		},
	}
	c, adapter := newTestCommands(t, up)
	if err := c.add(ctx, newRequest(adapter, "Ann#NA1")); err != nil {
		t.Fatal(err)
	}

	if err := c.mastery(ctx, newRequest(adapter, "Ann#NA1")); err != nil {
		t.Fatal(err)
	}
	got := lastReply(t, adapter)
	if !strings.Contains(got, "Wukong") || !strings.Contains(got, "250,000") {
		t.Fatalf("mastery reply %q", got)
	}
}

func TestLiveCommand(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	up := &fakeUpstream{
		accounts: map[string]riot.Account{
			"ann#na1": {PUUID: "p-ann", GameName: "Ann", TagLine: "NA1"},
		},
		active: map[string]*riot.ActiveGame{
			"p-ann": {GameQueueConfigID: 420, GameLength: 600, Participants: []riot.ActiveParticipant{
				{TeamID: 100, RiotID: "Ann#NA1", ChampionID: 103},
			}},
		},
	}
	c, adapter := newTestCommands(t, up)
	if err := c.add(ctx, newRequest(adapter, "Ann#NA1")); err != nil {
		t.Fatal(err)
	}

	if err := c.live(ctx, newRequest(adapter, "Ann#NA1")); err != nil {
		t.Fatal(err)
	}
	got := lastReply(t, adapter)
	if !strings.Contains(got, "Ahri") || !strings.Contains(got, "10:00") {
		t.Fatalf("live reply %q", got)
	}

	delete(up.active, "p-ann")
	if err := c.live(ctx, newRequest(adapter, "Ann#NA1")); err != nil {
		t.Fatal(err)
	}
	if got := lastReply(t, adapter); !strings.Contains(got, "not in a game") {
		t.Fatalf("idle live reply %q", got)
	}
}

func TestAddMultiCommand(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	up := &fakeUpstream{
		accounts: map[string]riot.Account{
			"ann#na1": {PUUID: "p-ann", GameName: "Ann", TagLine: "NA1"},
			"bob#na1": {PUUID: "p-bob", GameName: "Bob", TagLine: "NA1"},
		},
	}
	c, adapter := newTestCommands(t, up)
	if err := c.add(ctx, newRequest(adapter, "Bob#NA1")); err != nil {
		t.Fatal(err)
	}

	url := "https://op.gg/lol/multisearch/na?summoners=Ann%23NA1%2CBob%23NA1%2CGhost%23NA1"
	if err := c.addMulti(ctx, newRequest(adapter, url)); err != nil {
		t.Fatal(err)
	}
	got := lastReply(t, adapter)
	if !strings.Contains(got, "1 added, 1 already tracked, 1 failed") {
		t.Fatalf("bulk reply %q", got)
	}
}
