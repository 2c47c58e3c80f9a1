// apps/go-server/internal/store/store.go
//
// Persistence for pipeline run outcomes. Runs are write-once records keyed by
// run id; a stored run is never updated.

package store

import (
	"context"
	"errors"
	"time"

	"github.com/robalobadob/puzzlenet/apps/go-server/internal/pipeline"
)

var (
	// ErrNotFound is returned when no run has the requested id.
	ErrNotFound = errors.New("store: run not found")
	// ErrDuplicate is returned when a run id is saved twice.
	ErrDuplicate = errors.New("store: run already saved")
)

// Run is one finished pipeline run.
type Run struct {
	ID        string           `json:"id"`
	Request   string           `json:"request"`
	Outcome   pipeline.Outcome `json:"outcome"`
	CreatedAt time.Time        `json:"createdAt"`
}

// NewRun wraps a finished outcome for storage.
func NewRun(request string, out pipeline.Outcome) Run {
	return Run{ID: out.RunID, Request: request, Outcome: out, CreatedAt: time.Now().UTC()}
}

// Store defines the persistence interface for runs.
// Implementations are backed by memory (NewMemoryStore) or SQLite (NewSQLite).
type Store interface {
	// SaveRun persists a run. Saving an id twice is an error.
	SaveRun(ctx context.Context, r Run) error

	// GetRun retrieves a run by id, or ErrNotFound.
	GetRun(ctx context.Context, id string) (Run, error)

	// RecentRuns returns up to limit runs, newest first.
	RecentRuns(ctx context.Context, limit int) ([]Run, error)
}
