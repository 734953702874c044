package riot

// Account is the account-v1 response: the stable cross-game identity.
type Account struct {
	PUUID    string `json:"puuid"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

// Summoner is the summoner-v4 response for one region.
type Summoner struct {
	ID            string `json:"id"`
	AccountID     string `json:"accountId"`
	PUUID         string `json:"puuid"`
	ProfileIconID int    `json:"profileIconId"`
	SummonerLevel int    `json:"summonerLevel"`
}

// LeagueEntry is one ranked queue standing (league-v4).
type LeagueEntry struct {
	QueueType    string `json:"queueType"`
	Tier         string `json:"tier"`
	Rank         string `json:"rank"`
	LeaguePoints int    `json:"leaguePoints"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
}

// MasteryEntry is one champion mastery record (champion-mastery-v4).
type MasteryEntry struct {
	ChampionID     int `json:"championId"`
	ChampionLevel  int `json:"championLevel"`
	ChampionPoints int `json:"championPoints"`
	TokensEarned   int `json:"tokensEarned"`
}

// Match is the match-v5 detail payload, trimmed to the fields we render.
type Match struct {
	Metadata MatchMetadata `json:"metadata"`
	Info     MatchInfo     `json:"info"`
}

type MatchMetadata struct {
	MatchID string `json:"matchId"`
}

type MatchInfo struct {
	QueueID          int           `json:"queueId"`
	GameMode         string        `json:"gameMode"`
	GameDuration     int           `json:"gameDuration"`     // seconds
	GameEndTimestamp int64         `json:"gameEndTimestamp"` // unix millis
	Participants     []Participant `json:"participants"`
}

type Participant struct {
	PUUID                string `json:"puuid"`
	SummonerID           string `json:"summonerId"`
	RiotIDGameName       string `json:"riotIdGameName"`
	RiotIDTagline        string `json:"riotIdTagline"`
	ChampionID           int    `json:"championId"`
	ChampionName         string `json:"championName"`
	Kills                int    `json:"kills"`
	Deaths               int    `json:"deaths"`
	Assists              int    `json:"assists"`
	Win                  bool   `json:"win"`
	TotalMinionsKilled   int    `json:"totalMinionsKilled"`
	NeutralMinionsKilled int    `json:"neutralMinionsKilled"`
	GoldEarned           int    `json:"goldEarned"`
	VisionScore          int    `json:"visionScore"`
}

// ParticipantByPUUID returns the participant entry for puuid, if present.
func (m *Match) ParticipantByPUUID(puuid string) (Participant, bool) {
	for _, p := range m.Info.Participants {
		if p.PUUID == puuid {
			return p, true
		}
	}
	return Participant{}, false
}

// ActiveGame is the spectator-v5 response for a live game.
type ActiveGame struct {
	GameMode          string              `json:"gameMode"`
	GameQueueConfigID int                 `json:"gameQueueConfigId"`
	GameLength        int                 `json:"gameLength"` // seconds
	Participants      []ActiveParticipant `json:"participants"`
}

type ActiveParticipant struct {
	TeamID       int    `json:"teamId"`
	RiotID       string `json:"riotId"`
	SummonerName string `json:"summonerName"`
	ChampionID   int64  `json:"championId"`
}
