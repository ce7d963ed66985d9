package league

// HeadToHead is a precomputed table of points each team earned against
// each opponent in played matches.
type HeadToHead map[string]map[string]int

func NewHeadToHead(matches []Match) HeadToHead {
	h := make(HeadToHead)
	for _, m := range matches {
		if !m.MatchPlayed {
			continue
		}
		h.add(m.HomeTeam, m.AwayTeam, resultPoints(m.HomeTeamScore, m.AwayTeamScore))
		h.add(m.AwayTeam, m.HomeTeam, resultPoints(m.AwayTeamScore, m.HomeTeamScore))
	}
	return h
}

func (h HeadToHead) add(team, opponent string, pts int) {
	row, ok := h[team]
	if !ok {
		row = make(map[string]int)
		h[team] = row
	}
	row[opponent] += pts
}

// Points is zero for teams that never met.
func (h HeadToHead) Points(team, opponent string) int {
	return h[team][opponent]
}

// headToHeadPoints scans matches for the points team earned against
// opponent. Same result as HeadToHead.Points, without the table.
func headToHeadPoints(matches []Match, team, opponent string) int {
	pts := 0
	for _, m := range matches {
		if !m.MatchPlayed {
			continue
		}
		if m.HomeTeam == team && m.AwayTeam == opponent {
			pts += resultPoints(m.HomeTeamScore, m.AwayTeamScore)
		}
		if m.AwayTeam == team && m.HomeTeam == opponent {
			pts += resultPoints(m.AwayTeamScore, m.HomeTeamScore)
		}
	}
	return pts
}
