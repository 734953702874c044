package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"

	"rifttracker/internal/notify"
	"rifttracker/internal/registry"
	"rifttracker/internal/riot"
	"rifttracker/internal/tracker"
)

// Lookup is the slice of the upstream client the interactive commands need
// beyond what the tracker already covers.
type Lookup interface {
	RankedEntriesByPUUID(ctx context.Context, puuid string) []riot.LeagueEntry
	RecentMatchIDs(ctx context.Context, puuid string, count, queue int) []string
	MatchDetail(ctx context.Context, matchID string) (*riot.Match, bool)
	ChampionMastery(ctx context.Context, puuid string, count int) []riot.MasteryEntry
	ActiveGameByPUUID(ctx context.Context, puuid string) (*riot.ActiveGame, bool)
}

// ChampionNamer resolves numeric champion IDs to display names.
type ChampionNamer interface {
	ChampionByKey(ctx context.Context, key int) (riot.Champion, bool)
}

type Commands struct {
	tracker *tracker.Tracker
	lookup  Lookup
	names   ChampionNamer
	region  string
}

func NewCommands(tr *tracker.Tracker, lookup Lookup, names ChampionNamer, region string) *Commands {
	return &Commands{tracker: tr, lookup: lookup, names: names, region: region}
}

func (c *Commands) RegisterAll(r *Router) {
	r.Register(Command{
		Name: "add", Description: "Track an account",
		Usage: "/add Name#Tag [@mention]", Handle: c.add,
	})
	r.Register(Command{
		Name: "del", Aliases: []string{"remove"}, Description: "Stop tracking an account",
		Usage: "/del Name#Tag", Handle: c.del,
	})
	r.Register(Command{
		Name: "list", Description: "Show tracked accounts",
		Handle: c.list,
	})
	r.Register(Command{
		Name: "addmulti", Aliases: []string{"addm", "multi"}, Description: "Bulk add from an op.gg multi link",
		Usage: "/addmulti <op.gg multi URL>", Handle: c.addMulti,
	})
	r.Register(Command{
		Name: "cleanup", Description: "Remove entries that never resolved",
		Handle: c.cleanup,
	})
	r.Register(Command{
		Name: "rank", Description: "Ranked standings for a tracked account",
		Usage: "/rank Name#Tag", Handle: c.rank,
	})
	r.Register(Command{
		Name: "history", Description: "Recent matches for a tracked account",
		Usage: "/history Name#Tag [count]", Handle: c.history,
	})
	r.Register(Command{
		Name: "live", Description: "Live game for a tracked account",
		Usage: "/live Name#Tag", Handle: c.live,
	})
	r.Register(Command{
		Name: "mastery", Description: "Top champion mastery for a tracked account",
		Usage: "/mastery Name#Tag", Handle: c.mastery,
	})
	r.Register(Command{
		Name: "help", Description: "Show this help",
		Handle: func(ctx context.Context, req *Request) error {
			return req.Reply(ctx, r.HelpText())
		},
	})
}

// parseRiotID joins args back together and splits on '#', so game names
// containing spaces work: "/add Ann Marie#NA1".
func parseRiotID(args []string) (gameName, tagLine string, err error) {
	joined := strings.TrimSpace(strings.Join(args, " "))
	gameName, tagLine, ok := strings.Cut(joined, "#")
	gameName = strings.TrimSpace(gameName)
	tagLine = strings.TrimSpace(tagLine)
	if !ok || gameName == "" || tagLine == "" {
		return "", "", errors.New("expected Name#Tag")
	}
	return gameName, tagLine, nil
}

func (c *Commands) add(ctx context.Context, req *Request) error {
	args := req.Args
	// A trailing @mention is a delivery hint, not part of the riot ID.
	var mention string
	if n := len(args); n > 1 && strings.HasPrefix(args[n-1], "@") && !strings.Contains(args[n-1], "#") {
		mention = args[n-1]
		args = args[:n-1]
	}
	gameName, tagLine, err := parseRiotID(args)
	if err != nil {
		return req.Reply(ctx, "Usage: /add Name#Tag [@mention]")
	}
	entry, err := c.tracker.Add(ctx, gameName, tagLine, req.Message.FromID, mention)
	switch {
	case errors.Is(err, tracker.ErrAlreadyTracked):
		return req.Reply(ctx, "ℹ️ Already tracking that account")
	case errors.Is(err, tracker.ErrNotFound):
		return req.Reply(ctx, "❌ Account not found, check the Name#Tag")
	case err != nil:
		return err
	}
	return req.Reply(ctx, fmt.Sprintf("✅ Now tracking <b>%s#%s</b>",
		html.EscapeString(entry.GameName), html.EscapeString(entry.TagLine)))
}

func (c *Commands) del(ctx context.Context, req *Request) error {
	gameName, tagLine, err := parseRiotID(req.Args)
	if err != nil {
		return req.Reply(ctx, "Usage: /del Name#Tag")
	}
	err = c.tracker.Remove(ctx, gameName, tagLine)
	if errors.Is(err, tracker.ErrNotTracked) {
		return req.Reply(ctx, "❌ That account is not tracked")
	}
	if err != nil {
		return err
	}
	return req.Reply(ctx, fmt.Sprintf("✅ Stopped tracking <b>%s#%s</b>",
		html.EscapeString(gameName), html.EscapeString(tagLine)))
}

func (c *Commands) list(ctx context.Context, req *Request) error {
	accounts, err := c.tracker.List(ctx)
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		return req.Reply(ctx, "No accounts tracked yet. Use /add Name#Tag")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "<b>Tracked accounts (%d)</b>\n", len(accounts))
	for _, a := range accounts {
		mark := "✅"
		if a.Invalid() {
			mark = "⚠️"
		}
		fmt.Fprintf(&b, "%s %s#%s\n", mark, html.EscapeString(a.GameName), html.EscapeString(a.TagLine))
	}
	return req.Reply(ctx, strings.TrimRight(b.String(), "\n"))
}

func (c *Commands) addMulti(ctx context.Context, req *Request) error {
	if len(req.Args) == 0 {
		return req.Reply(ctx, "Usage: /addmulti <op.gg multi URL>")
	}
	ids := ParseMultiURL(strings.Join(req.Args, " "))
	if len(ids) == 0 {
		return req.Reply(ctx, "❌ Could not find any Name#Tag entries in that URL")
	}

	var added, skipped, failed []string
	for _, id := range ids {
		gameName, tagLine, ok := strings.Cut(id, "#")
		if !ok {
			failed = append(failed, id)
			continue
		}
		_, err := c.tracker.Add(ctx, gameName, tagLine, req.Message.FromID, "")
		switch {
		case errors.Is(err, tracker.ErrAlreadyTracked):
			skipped = append(skipped, id)
		case err != nil:
			failed = append(failed, id)
		default:
			added = append(added, id)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<b>Bulk add</b>: %d added, %d already tracked, %d failed\n",
		len(added), len(skipped), len(failed))
	for _, id := range added {
		fmt.Fprintf(&b, "✅ %s\n", html.EscapeString(id))
	}
	for _, id := range failed {
		fmt.Fprintf(&b, "❌ %s\n", html.EscapeString(id))
	}
	return req.Reply(ctx, strings.TrimRight(b.String(), "\n"))
}

func (c *Commands) cleanup(ctx context.Context, req *Request) error {
	removed, err := c.tracker.Cleanup(ctx)
	if err != nil {
		return err
	}
	if removed == 0 {
		return req.Reply(ctx, "Nothing to clean up")
	}
	return req.Reply(ctx, fmt.Sprintf("🧹 Removed %d unresolved entr%s",
		removed, plural(removed, "y", "ies")))
}

// resolveTracked finds the roster entry a lookup command refers to.
func (c *Commands) resolveTracked(ctx context.Context, req *Request, usage string) (registry.TrackedAccount, bool, error) {
	gameName, tagLine, err := parseRiotID(req.Args)
	if err != nil {
		return registry.TrackedAccount{}, false, req.Reply(ctx, "Usage: "+usage)
	}
	a, err := c.tracker.Find(ctx, gameName, tagLine)
	if errors.Is(err, tracker.ErrNotTracked) {
		return registry.TrackedAccount{}, false, req.Reply(ctx, "❌ Not tracked. Use /add first")
	}
	if err != nil {
		return registry.TrackedAccount{}, false, err
	}
	if a.Invalid() {
		return registry.TrackedAccount{}, false, req.Reply(ctx, "⚠️ That entry never resolved, try /cleanup and /add again")
	}
	return a, true, nil
}

func (c *Commands) rank(ctx context.Context, req *Request) error {
	a, ok, err := c.resolveTracked(ctx, req, "/rank Name#Tag")
	if !ok {
		return err
	}
	entries := c.lookup.RankedEntriesByPUUID(ctx, a.PUUID)
	return req.Reply(ctx, notify.FormatRank(a, entries))
}

func (c *Commands) history(ctx context.Context, req *Request) error {
	count := 5
	args := req.Args
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[len(args)-1]); err == nil {
			count = n
			args = args[:len(args)-1]
		}
	}
	if count < 1 {
		count = 1
	}
	if count > 10 {
		count = 10
	}

	saved := req.Args
	req.Args = args
	a, ok, err := c.resolveTracked(ctx, req, "/history Name#Tag [count]")
	req.Args = saved
	if !ok {
		return err
	}

	ids := c.lookup.RecentMatchIDs(ctx, a.PUUID, count, 0)
	matches := make([]*riot.Match, 0, len(ids))
	for _, id := range ids {
		if m, ok := c.lookup.MatchDetail(ctx, id); ok {
			matches = append(matches, m)
		}
	}
	return req.Reply(ctx, notify.FormatHistory(a, matches))
}

func (c *Commands) live(ctx context.Context, req *Request) error {
	a, ok, err := c.resolveTracked(ctx, req, "/live Name#Tag")
	if !ok {
		return err
	}
	g, _ := c.lookup.ActiveGameByPUUID(ctx, a.PUUID)
	return req.Reply(ctx, notify.FormatLive(a, g, c.championName(ctx)))
}

func (c *Commands) mastery(ctx context.Context, req *Request) error {
	a, ok, err := c.resolveTracked(ctx, req, "/mastery Name#Tag")
	if !ok {
		return err
	}
	entries := c.lookup.ChampionMastery(ctx, a.PUUID, 5)
	return req.Reply(ctx, notify.FormatMastery(a, entries, c.championName(ctx)))
}

func (c *Commands) championName(ctx context.Context) func(championID int) string {
	return func(championID int) string {
		if c.names == nil {
			return ""
		}
		if champ, ok := c.names.ChampionByKey(ctx, championID); ok {
			return champ.Name
		}
		return ""
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
