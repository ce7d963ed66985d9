package matches

import (
	"net/url"
	"strings"

	"github.com/xaitan80/X-Standings/internal/league"
)

// Flags builds flag image URLs keyed by team name, e.g.
// https://flagsapi.codeaid.io/Brazil.png. Empty disables them.
type Flags string

func (f Flags) URL(team string) string {
	if f == "" || team == "" {
		return ""
	}
	return strings.TrimRight(string(f), "/") + "/" + url.PathEscape(team) + ".png"
}

// matchView is a match as served to the schedule page.
type matchView struct {
	league.Match
	HomeFlagURL string `json:"homeFlagUrl,omitempty"`
	AwayFlagURL string `json:"awayFlagUrl,omitempty"`
}

// standingView is one row of the rendered table.
type standingView struct {
	Position int `json:"position"`
	league.TeamStanding
	GoalDifference int    `json:"goalDifference"`
	FlagURL        string `json:"flagUrl,omitempty"`
}

func toMatchViews(list []league.Match, flags Flags) []matchView {
	out := make([]matchView, 0, len(list))
	for _, m := range list {
		out = append(out, matchView{
			Match:       m,
			HomeFlagURL: flags.URL(m.HomeTeam),
			AwayFlagURL: flags.URL(m.AwayTeam),
		})
	}
	return out
}

func toStandingViews(table []league.TeamStanding, flags Flags) []standingView {
	out := make([]standingView, 0, len(table))
	for i, s := range table {
		out = append(out, standingView{
			Position:       i + 1,
			TeamStanding:   s,
			GoalDifference: s.GoalDifference(),
			FlagURL:        flags.URL(s.TeamName),
		})
	}
	return out
}
