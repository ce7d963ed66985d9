package matches

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/xaitan80/X-Standings/internal/league"
)

// Record is one row of the season archive.
type Record struct {
	ID        int64 `gorm:"primaryKey"`
	Position  int
	MatchDate time.Time
	Stadium   string
	HomeTeam  string
	AwayTeam  string
	Played    bool
	HomeScore int
	AwayScore int
}

func (Record) TableName() string { return "matches" }

// Repository reads and writes the season archive.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository { return &Repository{db: db} }

// -------- Mapping --------

func toRecord(pos int, m league.Match) Record {
	return Record{
		Position:  pos,
		MatchDate: m.MatchDate.UTC(),
		Stadium:   m.Stadium,
		HomeTeam:  m.HomeTeam,
		AwayTeam:  m.AwayTeam,
		Played:    m.MatchPlayed,
		HomeScore: m.HomeTeamScore,
		AwayScore: m.AwayTeamScore,
	}
}

func (r Record) toLeague() league.Match {
	return league.Match{
		MatchDate:     r.MatchDate.UTC(),
		Stadium:       r.Stadium,
		HomeTeam:      r.HomeTeam,
		AwayTeam:      r.AwayTeam,
		MatchPlayed:   r.Played,
		HomeTeamScore: r.HomeScore,
		AwayTeamScore: r.AwayScore,
	}
}

// -------- CRUD --------

// List returns the archived season in the order it was stored.
func (r *Repository) List(ctx context.Context) ([]league.Match, error) {
	var rows []Record
	if err := r.db.WithContext(ctx).Order("position, id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	out := make([]league.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toLeague())
	}
	return out, nil
}

// ReplaceAll swaps the archived season for list in one transaction.
func (r *Repository) ReplaceAll(ctx context.Context, list []league.Match) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&Record{}).Error; err != nil {
			return fmt.Errorf("clear matches: %w", err)
		}
		if len(list) == 0 {
			return nil
		}
		rows := make([]Record, 0, len(list))
		for i, m := range list {
			rows = append(rows, toRecord(i, m))
		}
		if err := tx.CreateInBatches(rows, 200).Error; err != nil {
			return fmt.Errorf("insert matches: %w", err)
		}
		return nil
	})
}

// Count is the number of archived matches.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Record{}).Count(&n).Error
	return n, err
}

// Load implements Loader.
func (r *Repository) Load(ctx context.Context) ([]league.Match, error) {
	return r.List(ctx)
}
