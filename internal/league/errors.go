package league

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidRecord = errors.New("invalid match record")

// RecordError points at the offending match in a SetMatches batch.
type RecordError struct {
	Index  int
	Reason string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%v at index %d: %s", ErrInvalidRecord, e.Index, e.Reason)
}

func (e *RecordError) Unwrap() error { return ErrInvalidRecord }

// Validate checks the records SetMatches refuses to hold.
func Validate(matches []Match) error {
	for i, m := range matches {
		switch {
		case strings.TrimSpace(m.HomeTeam) == "":
			return &RecordError{Index: i, Reason: "missing home team"}
		case strings.TrimSpace(m.AwayTeam) == "":
			return &RecordError{Index: i, Reason: "missing away team"}
		case m.HomeTeam == m.AwayTeam:
			return &RecordError{Index: i, Reason: fmt.Sprintf("team %q plays itself", m.HomeTeam)}
		case m.MatchPlayed && (m.HomeTeamScore < 0 || m.AwayTeamScore < 0):
			return &RecordError{Index: i, Reason: "negative score"}
		}
	}
	return nil
}
