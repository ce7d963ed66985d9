package matches

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xaitan80/X-Standings/internal/league"
)

const (
	icsStamp      = "20060102T150405Z"
	matchDuration = 2 * time.Hour
)

// icsEscape escapes commas, semicolons and newlines per RFC 5545.
var icsEscape = strings.NewReplacer(`\`, `\\`, ",", `\,`, ";", `\;`, "\n", `\n`).Replace

// writeICS renders the schedule as an iCalendar feed. Matches without a
// date are skipped.
func writeICS(w io.Writer, list []league.Match, now time.Time) {
	fmt.Fprint(w, "BEGIN:VCALENDAR\r\n")
	fmt.Fprint(w, "VERSION:2.0\r\n")
	fmt.Fprint(w, "PRODID:-//x-standings//EN\r\n")
	fmt.Fprint(w, "CALSCALE:GREGORIAN\r\n")

	stamp := now.UTC().Format(icsStamp)
	for _, m := range list {
		if m.MatchDate.IsZero() {
			continue
		}
		start := m.MatchDate.UTC()
		summary := fmt.Sprintf("%s vs %s", m.HomeTeam, m.AwayTeam)
		if m.MatchPlayed {
			summary = fmt.Sprintf("%s %d : %d %s", m.HomeTeam, m.HomeTeamScore, m.AwayTeamScore, m.AwayTeam)
		}

		fmt.Fprint(w, "BEGIN:VEVENT\r\n")
		fmt.Fprintf(w, "UID:%s@x-standings\r\n", eventUID(m))
		fmt.Fprintf(w, "DTSTAMP:%s\r\n", stamp)
		fmt.Fprintf(w, "DTSTART:%s\r\n", start.Format(icsStamp))
		fmt.Fprintf(w, "DTEND:%s\r\n", start.Add(matchDuration).Format(icsStamp))
		fmt.Fprintf(w, "SUMMARY:%s\r\n", icsEscape(summary))
		if m.Stadium != "" {
			fmt.Fprintf(w, "LOCATION:%s\r\n", icsEscape(m.Stadium))
		}
		fmt.Fprint(w, "END:VEVENT\r\n")
	}

	fmt.Fprint(w, "END:VCALENDAR\r\n")
}

// eventUID is stable across reloads of the same fixture.
func eventUID(m league.Match) string {
	sum := sha1.Sum([]byte(m.HomeTeam + "\x00" + m.AwayTeam + "\x00" + m.MatchDate.UTC().Format(time.RFC3339)))
	return hex.EncodeToString(sum[:8])
}
