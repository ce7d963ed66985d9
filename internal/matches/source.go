package matches

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/xaitan80/X-Standings/internal/league"
)

// Loader supplies a season's matches in schedule order.
type Loader interface {
	Load(ctx context.Context) ([]league.Match, error)
}

// FileSource loads a CSV or XLSX schedule from disk.
type FileSource struct {
	Path     string
	Location *time.Location
}

func (f FileSource) Load(ctx context.Context) ([]league.Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fh, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Path, err)
	}
	defer fh.Close()
	list, err := parseFile(f.Path, fh, f.Location)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.Path, err)
	}
	return list, nil
}

// Reload runs l and hands the result to store.
func Reload(ctx context.Context, l Loader, store *league.Store) (int, error) {
	list, err := l.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load: %w", err)
	}
	if err := store.SetMatches(list); err != nil {
		return 0, err
	}
	return len(list), nil
}
