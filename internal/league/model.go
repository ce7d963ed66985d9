package league

import "time"

// Match is one fixture between two teams, played or scheduled.
// Scores only count when MatchPlayed is set.
type Match struct {
	MatchDate     time.Time `json:"matchDate"`
	Stadium       string    `json:"stadium"`
	HomeTeam      string    `json:"homeTeam"`
	AwayTeam      string    `json:"awayTeam"`
	MatchPlayed   bool      `json:"matchPlayed"`
	HomeTeamScore int       `json:"homeTeamScore"`
	AwayTeamScore int       `json:"awayTeamScore"`
}

// TeamStanding is a team's accumulated season statistics.
type TeamStanding struct {
	TeamName      string `json:"teamName"`
	MatchesPlayed int    `json:"matchesPlayed"`
	GoalsFor      int    `json:"goalsFor"`
	GoalsAgainst  int    `json:"goalsAgainst"`
	Points        int    `json:"points"`
}

func (s TeamStanding) GoalDifference() int { return s.GoalsFor - s.GoalsAgainst }

// resultPoints is 3 for a win, 1 for a draw, 0 for a loss.
func resultPoints(own, opp int) int {
	switch {
	case own > opp:
		return 3
	case own == opp:
		return 1
	}
	return 0
}
