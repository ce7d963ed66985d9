package league

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ComputeStandings ranks every team that appears in matches. Only played
// matches feed the statistics. Order: points, head-to-head points, goal
// difference, goals for, team name.
func ComputeStandings(matches []Match) []TeamStanding {
	return rank(accumulate(matches), NewHeadToHead(matches).Points)
}

// discoverTeams lists distinct team names in first-seen order.
func discoverTeams(matches []Match) []string {
	seen := make(map[string]struct{})
	var teams []string
	for _, m := range matches {
		for _, t := range [2]string{m.HomeTeam, m.AwayTeam} {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			teams = append(teams, t)
		}
	}
	return teams
}

func accumulate(matches []Match) []TeamStanding {
	teams := discoverTeams(matches)
	table := make(map[string]TeamStanding, len(teams))
	for _, t := range teams {
		table[t] = TeamStanding{TeamName: t}
	}

	for _, m := range matches {
		if !m.MatchPlayed {
			continue
		}
		table[m.HomeTeam] = table[m.HomeTeam].record(m.HomeTeamScore, m.AwayTeamScore)
		table[m.AwayTeam] = table[m.AwayTeam].record(m.AwayTeamScore, m.HomeTeamScore)
	}

	out := make([]TeamStanding, 0, len(teams))
	for _, t := range teams {
		out = append(out, table[t])
	}
	return out
}

// record returns s with one more played match folded in.
func (s TeamStanding) record(goalsFor, goalsAgainst int) TeamStanding {
	s.MatchesPlayed++
	s.GoalsFor += goalsFor
	s.GoalsAgainst += goalsAgainst
	s.Points += resultPoints(goalsFor, goalsAgainst)
	return s
}

// rank sorts standings best first. h2h(a, b) is the points a earned
// against b.
func rank(standings []TeamStanding, h2h func(team, opponent string) int) []TeamStanding {
	names := collate.New(language.Und)
	slices.SortStableFunc(standings, func(a, b TeamStanding) int {
		if c := cmp.Compare(b.Points, a.Points); c != 0 {
			return c
		}
		if c := cmp.Compare(h2h(b.TeamName, a.TeamName), h2h(a.TeamName, b.TeamName)); c != 0 {
			return c
		}
		if c := cmp.Compare(b.GoalDifference(), a.GoalDifference()); c != 0 {
			return c
		}
		if c := cmp.Compare(b.GoalsFor, a.GoalsFor); c != 0 {
			return c
		}
		if c := names.CompareString(a.TeamName, b.TeamName); c != 0 {
			return c
		}
		return strings.Compare(a.TeamName, b.TeamName)
	})
	return standings
}
