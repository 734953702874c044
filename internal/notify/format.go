package notify

import (
	"fmt"
	"html"
	"net/url"
	"strconv"
	"strings"
	"time"

	"rifttracker/internal/registry"
	"rifttracker/internal/riot"
)

// queueNames maps upstream queue IDs to readable game modes.
var queueNames = map[int]string{
	420:  "Ranked Solo/Duo",
	440:  "Ranked Flex",
	400:  "Draft Pick",
	430:  "Blind Pick",
	450:  "ARAM",
	480:  "Swiftplay",
	490:  "Quickplay",
	700:  "Clash",
	1300: "Nexus Blitz",
	1700: "Arena",
}

// QueueName returns the readable name for a queue ID.
func QueueName(queueID int) string {
	if name, ok := queueNames[queueID]; ok {
		return name
	}
	return "Queue " + strconv.Itoa(queueID)
}

// FormatDuration renders game seconds as "MM:SS" (or "H:MM:SS" past an hour).
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	d := time.Duration(seconds) * time.Second
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// ProfileURL builds the op.gg profile link for an account.
func ProfileURL(region string, a registry.TrackedAccount) string {
	name := url.PathEscape(a.GameName + "-" + a.TagLine)
	return "https://www.op.gg/summoners/" + profileRegion(region) + "/" + name
}

// profileRegion maps a platform routing value ("na1") to op.gg's short form.
func profileRegion(region string) string {
	r := strings.ToLower(strings.TrimSpace(region))
	r = strings.TrimRight(r, "0123456789")
	if r == "" {
		return "na"
	}
	return r
}

// CS returns the combined creep score for a participant.
func CS(p riot.Participant) int {
	return p.TotalMinionsKilled + p.NeutralMinionsKilled
}

// FormatMatchNotice renders the completed-match announcement as Telegram HTML.
func FormatMatchNotice(n MatchNotice, region string) string {
	p := n.Participant
	info := n.Match.Info

	result := "🏆 Victory"
	if !p.Win {
		result = "💀 Defeat"
	}

	riotID := n.Account.GameName + "#" + n.Account.TagLine
	var b strings.Builder
	if target := strings.TrimSpace(n.Account.NotifyTarget); target != "" {
		fmt.Fprintf(&b, "%s\n", html.EscapeString(target))
	}
	fmt.Fprintf(&b, "%s - <b>%s</b> (<a href=\"%s\">%s</a>)\n",
		result, html.EscapeString(p.ChampionName), ProfileURL(region, n.Account), html.EscapeString(riotID))
	fmt.Fprintf(&b, "KDA: <b>%d/%d/%d</b>  CS: %d  Vision: %d\n", p.Kills, p.Deaths, p.Assists, CS(p), p.VisionScore)
	fmt.Fprintf(&b, "%s · %s · %s gold\n",
		QueueName(info.QueueID), FormatDuration(info.GameDuration), groupDigits(p.GoldEarned))
	if info.GameEndTimestamp > 0 {
		ended := time.UnixMilli(info.GameEndTimestamp).UTC()
		fmt.Fprintf(&b, "Ended %s\n", ended.Format("2006-01-02 15:04 MST"))
	}
	fmt.Fprintf(&b, "<i>%s</i>", html.EscapeString(n.Match.Metadata.MatchID))
	return b.String()
}

// FormatRank renders ranked standings for the /rank command.
func FormatRank(a registry.TrackedAccount, entries []riot.LeagueEntry) string {
	riotID := a.GameName + "#" + a.TagLine
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b>\n", html.EscapeString(riotID))
	if len(entries) == 0 {
		b.WriteString("Unranked in all queues")
		return b.String()
	}
	for _, e := range entries {
		queue := e.QueueType
		switch e.QueueType {
		case "RANKED_SOLO_5x5":
			queue = "Solo/Duo"
		case "RANKED_FLEX_SR":
			queue = "Flex"
		}
		total := e.Wins + e.Losses
		winrate := 0
		if total > 0 {
			winrate = e.Wins * 100 / total
		}
		fmt.Fprintf(&b, "%s: <b>%s %s</b> %d LP (%dW/%dL, %d%%)\n",
			queue, titleCase(e.Tier), e.Rank, e.LeaguePoints, e.Wins, e.Losses, winrate)
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatHistory renders recent matches for the /history command.
func FormatHistory(a registry.TrackedAccount, matches []*riot.Match) string {
	riotID := a.GameName + "#" + a.TagLine
	var b strings.Builder
	fmt.Fprintf(&b, "Recent matches for <b>%s</b>\n", html.EscapeString(riotID))
	if len(matches) == 0 {
		b.WriteString("No recent matches found")
		return b.String()
	}
	for _, m := range matches {
		p, ok := m.ParticipantByPUUID(a.PUUID)
		if !ok {
			continue
		}
		mark := "🔵"
		if !p.Win {
			mark = "🔴"
		}
		fmt.Fprintf(&b, "%s %s · %s · %d/%d/%d · %d CS · %s\n",
			mark, html.EscapeString(p.ChampionName), QueueName(m.Info.QueueID),
			p.Kills, p.Deaths, p.Assists, CS(p), FormatDuration(m.Info.GameDuration))
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatMastery renders top champion mastery for the /mastery command.
func FormatMastery(a registry.TrackedAccount, entries []riot.MasteryEntry, name func(championID int) string) string {
	riotID := a.GameName + "#" + a.TagLine
	var b strings.Builder
	fmt.Fprintf(&b, "Top mastery for <b>%s</b>\n", html.EscapeString(riotID))
	if len(entries) == 0 {
		b.WriteString("No mastery data found")
		return b.String()
	}
	for i, e := range entries {
		champ := name(e.ChampionID)
		if champ == "" {
			champ = "Champion " + strconv.Itoa(e.ChampionID)
		}
		fmt.Fprintf(&b, "%d. %s · level %d · %s pts\n",
			i+1, html.EscapeString(champ), e.ChampionLevel, groupDigits(e.ChampionPoints))
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatLive renders an in-progress game for the /live command.
func FormatLive(a registry.TrackedAccount, g *riot.ActiveGame, name func(championID int) string) string {
	riotID := a.GameName + "#" + a.TagLine
	if g == nil {
		return fmt.Sprintf("<b>%s</b> is not in a game right now", html.EscapeString(riotID))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b> is in a %s game (%s elapsed)\n",
		html.EscapeString(riotID), QueueName(g.GameQueueConfigID), FormatDuration(g.GameLength))
	for _, p := range g.Participants {
		who := p.RiotID
		if who == "" {
			who = p.SummonerName
		}
		champ := name(int(p.ChampionID))
		if champ == "" {
			champ = "Champion " + strconv.FormatInt(p.ChampionID, 10)
		}
		side := "🔵"
		if p.TeamID == 200 {
			side = "🔴"
		}
		fmt.Fprintf(&b, "%s %s · %s\n", side, html.EscapeString(who), html.EscapeString(champ))
	}
	return strings.TrimRight(b.String(), "\n")
}

// groupDigits formats an integer with thousands separators.
func groupDigits(n int) string {
	s := strconv.Itoa(n)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func titleCase(s string) string {
	s = strings.ToLower(s)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
