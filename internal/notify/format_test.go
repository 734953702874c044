package notify

import (
	"strings"
	"testing"

	"rifttracker/internal/registry"
	"rifttracker/internal/riot"
)

func TestQueueName(t *testing.T) {
	t.Parallel()
	if got := QueueName(420); got != "Ranked Solo/Duo" {
		t.Fatalf("got %q", got)
	}
	if got := QueueName(450); got != "ARAM" {
		t.Fatalf("got %q", got)
	}
	if got := QueueName(12345); got != "Queue 12345" {
		t.Fatalf("unknown queue rendered %q", got)
	}
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()
	cases := []struct {
		secs int
		want string
	}{
		{secs: 0, want: "00:00"},
		{secs: 65, want: "01:05"},
		{secs: 1864, want: "31:04"},
		{secs: 3725, want: "1:02:05"},
		{secs: -5, want: "00:00"},
	}
	for _, tc := range cases {
		if got := FormatDuration(tc.secs); got != tc.want {
			t.Fatalf("FormatDuration(%d) = %q, want %q", tc.secs, got, tc.want)
		}
	}
}

func TestProfileURL(t *testing.T) {
	t.Parallel()
	a := registry.TrackedAccount{GameName: "Ann Marie", TagLine: "NA1"}
	got := ProfileURL("na1", a)
	if got != "https://www.op.gg/summoners/na/Ann%20Marie-NA1" {
		t.Fatalf("got %q", got)
	}
	if got := ProfileURL("euw1", a); !strings.Contains(got, "/euw/") {
		t.Fatalf("region not mapped: %q", got)
	}
}

func TestFormatMatchNotice(t *testing.T) {
	t.Parallel()
	n := MatchNotice{
		Account: registry.TrackedAccount{Key: "ann#na1", GameName: "Ann", TagLine: "NA1", PUUID: "p-ann"},
		Match: &riot.Match{
			Metadata: riot.MatchMetadata{MatchID: "NA1_100"},
			Info: riot.MatchInfo{
				QueueID:          420,
				GameDuration:     1864,
				GameEndTimestamp: 1700000000000,
			},
		},
		Participant: riot.Participant{
			PUUID: "p-ann", ChampionName: "Ahri",
			Kills: 7, Deaths: 2, Assists: 11, Win: true,
			TotalMinionsKilled: 180, NeutralMinionsKilled: 20,
			GoldEarned: 12345, VisionScore: 31,
		},
	}
	got := FormatMatchNotice(n, "na1")

	for _, want := range []string{
		"🏆 Victory", "Ahri", "Ann#NA1", "7/2/11", "CS: 200",
		"Ranked Solo/Duo", "31:04", "12,345 gold", "NA1_100",
		"op.gg/summoners/na/Ann-NA1",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("notice missing %q:\n%s", want, got)
		}
	}

	n.Participant.Win = false
	if got := FormatMatchNotice(n, "na1"); !strings.Contains(got, "💀 Defeat") {
		t.Fatalf("loss not rendered:\n%s", got)
	}

	// A stored notify target leads the announcement.
	n.Account.NotifyTarget = "@coach"
	if got := FormatMatchNotice(n, "na1"); !strings.HasPrefix(got, "@coach\n") {
		t.Fatalf("mention not rendered first:\n%s", got)
	}
}

func TestFormatMatchNoticeEscapesHTML(t *testing.T) {
	t.Parallel()
	n := MatchNotice{
		Account: registry.TrackedAccount{GameName: "<b>Ann</b>", TagLine: "NA1"},
		Match:   &riot.Match{Metadata: riot.MatchMetadata{MatchID: "NA1_1"}},
		Participant: riot.Participant{
			ChampionName: "Kog'Maw<script>",
		},
	}
	got := FormatMatchNotice(n, "na1")
	if strings.Contains(got, "<script>") || strings.Contains(got, "<b>Ann</b>") {
		t.Fatalf("unescaped input leaked:\n%s", got)
	}
}

func TestFormatRank(t *testing.T) {
	t.Parallel()
	a := registry.TrackedAccount{GameName: "Ann", TagLine: "NA1"}

	if got := FormatRank(a, nil); !strings.Contains(got, "Unranked") {
		t.Fatalf("empty entries: %q", got)
	}

	got := FormatRank(a, []riot.LeagueEntry{
		{QueueType: "RANKED_SOLO_5x5", Tier: "GOLD", Rank: "II", LeaguePoints: 54, Wins: 30, Losses: 20},
	})
	for _, want := range []string{"Solo/Duo", "Gold II", "54 LP", "30W/20L", "60%"} {
		if !strings.Contains(got, want) {
			t.Fatalf("rank missing %q:\n%s", want, got)
		}
	}
}

func TestFormatHistorySkipsForeignMatches(t *testing.T) {
	t.Parallel()
	a := registry.TrackedAccount{GameName: "Ann", TagLine: "NA1", PUUID: "p-ann"}
	matches := []*riot.Match{
		{
			Info: riot.MatchInfo{QueueID: 450, GameDuration: 900, Participants: []riot.Participant{
				{PUUID: "p-ann", ChampionName: "Lux", Kills: 10, Deaths: 3, Assists: 20, Win: true},
			}},
		},
		{
			// Ann not present; skipped rather than rendered wrong.
			Info: riot.MatchInfo{QueueID: 420, Participants: []riot.Participant{{PUUID: "someone-else"}}},
		},
	}
	got := FormatHistory(a, matches)
	if !strings.Contains(got, "Lux") || !strings.Contains(got, "ARAM") {
		t.Fatalf("history missing own match:\n%s", got)
	}
	if strings.Contains(got, "Ranked Solo/Duo") {
		t.Fatalf("foreign match rendered:\n%s", got)
	}
}

func TestGroupDigits(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   int
		want string
	}{
		{in: 0, want: "0"},
		{in: 999, want: "999"},
		{in: 1000, want: "1,000"},
		{in: 1234567, want: "1,234,567"},
		{in: -45000, want: "-45,000"},
	}
	for _, tc := range cases {
		if got := groupDigits(tc.in); got != tc.want {
			t.Fatalf("groupDigits(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
