package model

// GameJob is one unit of batch work: the complete raw event log for one game
// plus whatever roster knowledge the provider supplied. Games are independent;
// jobs are processed in parallel, each with private state.
type GameJob struct {
	GameID   string              `json:"game_id"`
	HomeTeam string              `json:"home_team,omitempty"`
	AwayTeam string              `json:"away_team,omitempty"`
	Starters map[string][]string `json:"starters,omitempty"` // team id -> five starters
	Roster   map[string][]string `json:"roster,omitempty"`   // team id -> known roster
	Raw      []RawEvent          `json:"events"`
}
