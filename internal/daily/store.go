// apps/go-server/internal/daily/store.go
//
// Published daily puzzles, keyed by (date, level). A slot is written once.

package daily

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robalobadob/puzzlenet/apps/go-server/internal/game"
	"github.com/robalobadob/puzzlenet/apps/go-server/internal/words"
)

// ErrAlreadyPublished is returned when a (date, level) slot is taken.
var ErrAlreadyPublished = errors.New("daily: puzzle already published")

// Puzzle is one published daily variant.
type Puzzle struct {
	Date        string           `json:"date"`
	Level       words.Difficulty `json:"level"`
	RunID       string           `json:"runId"`
	Theme       string           `json:"theme"`
	Game        game.Record      `json:"game"`
	PublishedAt time.Time        `json:"publishedAt"`
}

// Archive stores published puzzles.
type Archive interface {
	Publish(ctx context.Context, p Puzzle) error
	ForDate(ctx context.Context, date string) ([]Puzzle, error)
}

// levelRank orders puzzles easy, medium, hard.
func levelRank(l words.Difficulty) int {
	for i, lv := range Levels {
		if lv == l {
			return i
		}
	}
	return len(Levels)
}

/* ------------------------------- SQLite -------------------------------- */

type Store struct{ db *sql.DB }

// NewStore returns an Archive over the daily_puzzles table.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Publish(ctx context.Context, p Puzzle) error {
	body, err := json.Marshal(p.Game)
	if err != nil {
		return fmt.Errorf("encode puzzle: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO daily_puzzles(date, level, run_id, theme, game, published_at)
		 VALUES(?,?,?,?,?,?)`,
		p.Date, string(p.Level), p.RunID, p.Theme, string(body), p.PublishedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert puzzle %s/%s: %w", p.Date, p.Level, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s/%s", ErrAlreadyPublished, p.Date, p.Level)
	}
	return nil
}

func (s *Store) ForDate(ctx context.Context, date string) ([]Puzzle, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, level, run_id, theme, game, published_at
		 FROM daily_puzzles
		 WHERE date=?`, date,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Puzzle{}
	for rows.Next() {
		var (
			p         Puzzle
			level     string
			body      string
			published string
		)
		if err := rows.Scan(&p.Date, &level, &p.RunID, &p.Theme, &body, &published); err != nil {
			return nil, err
		}
		p.Level = words.Difficulty(level)
		if err := json.Unmarshal([]byte(body), &p.Game); err != nil {
			return nil, fmt.Errorf("decode puzzle %s/%s: %w", p.Date, level, err)
		}
		p.PublishedAt, _ = time.Parse(time.RFC3339, published)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return levelRank(out[i].Level) < levelRank(out[j].Level) })
	return out, nil
}

/* ------------------------------- memory -------------------------------- */

type memoryArchive struct {
	mu      sync.RWMutex
	puzzles map[string]Puzzle // keyed by date + "/" + level
}

// NewMemoryArchive returns an in-process Archive.
func NewMemoryArchive() Archive {
	return &memoryArchive{puzzles: make(map[string]Puzzle)}
}

func (m *memoryArchive) Publish(_ context.Context, p Puzzle) error {
	k := p.Date + "/" + string(p.Level)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.puzzles[k]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyPublished, k)
	}
	p.Game = p.Game.Clone()
	m.puzzles[k] = p
	return nil
}

func (m *memoryArchive) ForDate(_ context.Context, date string) ([]Puzzle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Puzzle{}
	for _, l := range Levels {
		if p, ok := m.puzzles[date+"/"+string(l)]; ok {
			p.Game = p.Game.Clone()
			out = append(out, p)
		}
	}
	return out, nil
}
