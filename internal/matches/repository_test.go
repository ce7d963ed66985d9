package matches

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	dbpkg "github.com/xaitan80/X-Standings/internal/db"
	"github.com/xaitan80/X-Standings/internal/league"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	d, err := dbpkg.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = dbpkg.Close(d) })
	return NewRepository(d)
}

func TestRepository_ReplaceAllKeepsOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	kickoff := time.Date(2026, 6, 11, 18, 0, 0, 0, time.UTC)
	in := []league.Match{
		{MatchDate: kickoff.Add(48 * time.Hour), Stadium: "SoFi Stadium", HomeTeam: "USA", AwayTeam: "Paraguay"},
		{MatchDate: kickoff, Stadium: "Estadio Azteca", HomeTeam: "Mexico", AwayTeam: "South Africa", MatchPlayed: true, HomeTeamScore: 2, AwayTeamScore: 1},
	}
	if err := repo.ReplaceAll(ctx, in); err != nil {
		t.Fatalf("replace: %v", err)
	}
	got, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	for i := range in {
		if !got[i].MatchDate.Equal(in[i].MatchDate) {
			t.Errorf("row %d date %v want %v", i, got[i].MatchDate, in[i].MatchDate)
		}
		got[i].MatchDate = in[i].MatchDate
		assertEq(t, got[i], in[i])
	}

	if err := repo.ReplaceAll(ctx, in[1:]); err != nil {
		t.Fatalf("second replace: %v", err)
	}
	n, err := repo.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	assertEq(t, n, int64(1))

	if err := repo.ReplaceAll(ctx, nil); err != nil {
		t.Fatalf("empty replace: %v", err)
	}
	list, err := repo.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	assertEq(t, len(list), 0)
}

func TestReload_FromArchive(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	_ = repo.ReplaceAll(ctx, []league.Match{
		{HomeTeam: "A", AwayTeam: "B", MatchPlayed: true, HomeTeamScore: 0, AwayTeamScore: 1},
	})
	store := league.NewStore()
	n, err := Reload(ctx, repo, store)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	assertEq(t, n, 1)
	table := store.Standings()
	assertEq(t, table[0].TeamName, "B")
	assertEq(t, table[0].Points, 3)
}

func TestFileSource_Load(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "season.csv")
	writeFile(t, path, "Home,Away,Result\nA,B,1-1\n")
	list, err := FileSource{Path: path}.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	assertEq(t, len(list), 1)
	assertEq(t, list[0].MatchPlayed, true)

	if _, err := (FileSource{Path: filepath.Join(dir, "missing.csv")}).Load(context.Background()); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
