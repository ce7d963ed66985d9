package feed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/xaitan80/X-Standings/internal/league"
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

type matchesResponse struct {
	Matches []matchPayload `json:"matches"`
}

type matchPayload struct {
	MatchDate     timestamp `json:"matchDate"`
	Stadium       string    `json:"stadium"`
	HomeTeam      string    `json:"homeTeam"`
	AwayTeam      string    `json:"awayTeam"`
	MatchPlayed   bool      `json:"matchPlayed"`
	HomeTeamScore int       `json:"homeTeamScore"`
	AwayTeamScore int       `json:"awayTeamScore"`
}

func (p matchPayload) toLeague() league.Match {
	return league.Match{
		MatchDate:     time.Time(p.MatchDate),
		Stadium:       p.Stadium,
		HomeTeam:      p.HomeTeam,
		AwayTeam:      p.AwayTeam,
		MatchPlayed:   p.MatchPlayed,
		HomeTeamScore: p.HomeTeamScore,
		AwayTeamScore: p.AwayTeamScore,
	}
}

// timestamp accepts epoch milliseconds (number or numeric string) or an
// RFC 3339 string.
type timestamp time.Time

func (t *timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*t = timestamp{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			*t = timestamp(time.UnixMilli(ms).UTC())
			return nil
		}
		v, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("matchDate %q: %w", s, err)
		}
		*t = timestamp(v.UTC())
		return nil
	}
	ms, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("matchDate %s: not a timestamp", b)
	}
	*t = timestamp(time.UnixMilli(ms).UTC())
	return nil
}
