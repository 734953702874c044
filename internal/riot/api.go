package riot

import (
	"context"
	"net/url"
	"strconv"
)

// Endpoint wrappers. All of them report absence with ok=false and never
// return an error for upstream failures; the request layer already logged.

// AccountByRiotID resolves "GameName#TagLine" to a stable PUUID.
func (c *Client) AccountByRiotID(ctx context.Context, gameName, tagLine string) (Account, bool) {
	u := c.routingBase + "/riot/account/v1/accounts/by-riot-id/" +
		url.PathEscape(gameName) + "/" + url.PathEscape(tagLine)
	var acct Account
	if !c.getJSON(ctx, u, c.authHeader(), nil, &acct) {
		return Account{}, false
	}
	if acct.PUUID == "" {
		return Account{}, false
	}
	return acct, true
}

// SummonerByPUUID fetches the region-local summoner record.
func (c *Client) SummonerByPUUID(ctx context.Context, puuid string) (Summoner, bool) {
	u := c.platformBase + "/lol/summoner/v4/summoners/by-puuid/" + url.PathEscape(puuid)
	var s Summoner
	if !c.getJSON(ctx, u, c.authHeader(), nil, &s) {
		return Summoner{}, false
	}
	return s, true
}

// RankedEntriesByPUUID fetches ranked queue standings.
func (c *Client) RankedEntriesByPUUID(ctx context.Context, puuid string) []LeagueEntry {
	u := c.platformBase + "/lol/league/v4/entries/by-puuid/" + url.PathEscape(puuid)
	var entries []LeagueEntry
	if !c.getJSON(ctx, u, c.authHeader(), nil, &entries) {
		return nil
	}
	return entries
}

// RecentMatchIDs lists the newest match IDs for a PUUID, newest first.
// queue filters to a single queue ID when > 0.
func (c *Client) RecentMatchIDs(ctx context.Context, puuid string, count, queue int) []string {
	if count <= 0 {
		count = 1
	}
	u := c.routingBase + "/lol/match/v5/matches/by-puuid/" + url.PathEscape(puuid) + "/ids"
	params := url.Values{}
	params.Set("start", "0")
	params.Set("count", strconv.Itoa(count))
	if queue > 0 {
		params.Set("queue", strconv.Itoa(queue))
	}
	var ids []string
	if !c.getJSON(ctx, u, c.authHeader(), params, &ids) {
		return nil
	}
	return ids
}

// LatestMatchID returns the single newest match ID for a PUUID.
func (c *Client) LatestMatchID(ctx context.Context, puuid string) (string, bool) {
	ids := c.RecentMatchIDs(ctx, puuid, 1, 0)
	if len(ids) == 0 {
		return "", false
	}
	return ids[0], true
}

// MatchDetail fetches the full detail payload for one match ID.
func (c *Client) MatchDetail(ctx context.Context, matchID string) (*Match, bool) {
	u := c.routingBase + "/lol/match/v5/matches/" + url.PathEscape(matchID)
	var m Match
	if !c.getJSON(ctx, u, c.authHeader(), nil, &m) {
		return nil, false
	}
	if m.Metadata.MatchID == "" {
		return nil, false
	}
	return &m, true
}

// ChampionMastery fetches the top mastery entries for a PUUID.
func (c *Client) ChampionMastery(ctx context.Context, puuid string, count int) []MasteryEntry {
	if count <= 0 {
		count = 3
	}
	u := c.platformBase + "/lol/champion-mastery/v4/champion-masteries/by-puuid/" +
		url.PathEscape(puuid) + "/top"
	params := url.Values{}
	params.Set("count", strconv.Itoa(count))
	var entries []MasteryEntry
	if !c.getJSON(ctx, u, c.authHeader(), params, &entries) {
		return nil
	}
	return entries
}

// ActiveGameByPUUID fetches the live game a player is in, if any.
// Not being in a game is a plain 404 upstream, so ok=false is the common case.
func (c *Client) ActiveGameByPUUID(ctx context.Context, puuid string) (*ActiveGame, bool) {
	u := c.platformBase + "/lol/spectator/v5/active-games/by-summoner/" + url.PathEscape(puuid)
	var g ActiveGame
	if !c.getJSON(ctx, u, c.authHeader(), nil, &g) {
		return nil, false
	}
	return &g, true
}
