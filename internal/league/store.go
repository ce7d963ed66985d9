package league

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Snapshot is one immutable generation of the store's match list.
type Snapshot struct {
	Matches  []Match
	Revision uuid.UUID
	LoadedAt time.Time
}

// Store holds the match list of one season. Writers replace the whole
// snapshot, so readers see either the old or the new list, never a mix.
type Store struct {
	cur atomic.Pointer[Snapshot]
}

func NewStore() *Store {
	s := &Store{}
	s.cur.Store(&Snapshot{Revision: uuid.New(), LoadedAt: time.Now()})
	return s
}

// SetMatches replaces the held list. An invalid batch leaves the current
// list untouched.
func (s *Store) SetMatches(matches []Match) error {
	if err := Validate(matches); err != nil {
		return err
	}
	held := make([]Match, len(matches))
	copy(held, matches)
	s.cur.Store(&Snapshot{Matches: held, Revision: uuid.New(), LoadedAt: time.Now()})
	return nil
}

// GetMatches returns the held list in insertion order.
func (s *Store) GetMatches() []Match {
	snap := s.cur.Load()
	out := make([]Match, len(snap.Matches))
	copy(out, snap.Matches)
	return out
}

// Snapshot returns the current generation. Callers must not modify
// Matches.
func (s *Store) Snapshot() *Snapshot { return s.cur.Load() }

// Standings ranks the teams of the current snapshot.
func (s *Store) Standings() []TeamStanding {
	return ComputeStandings(s.cur.Load().Matches)
}
