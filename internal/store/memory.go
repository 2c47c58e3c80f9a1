// apps/go-server/internal/store/memory.go
//
// In-memory implementation of the Store interface, used when no DB_PATH is
// configured and in tests.
//
// Characteristics:
//   - Runs are kept by id in a map plus an insertion-ordered id list;
//     RecentRuns orders by CreatedAt, newest first.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Stored games are deep-copied in and out, so callers cannot alter history.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu    sync.RWMutex   // guards runs and order
	runs  map[string]Run // keyed by Run.ID
	order []string
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{runs: make(map[string]Run)}
}

func (m *memory) SaveRun(_ context.Context, r Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.runs[r.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, r.ID)
	}
	m.runs[r.ID] = copyRun(r)
	m.order = append(m.order, r.ID)
	return nil
}

func (m *memory) GetRun(_ context.Context, id string) (Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.runs[id]; ok {
		return copyRun(r), nil
	}
	return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (m *memory) RecentRuns(_ context.Context, limit int) ([]Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if limit <= 0 || limit > len(m.order) {
		limit = len(m.order)
	}
	// Newest insert first, so equal timestamps keep the later save on top.
	ids := make([]string, len(m.order))
	for i, id := range m.order {
		ids[len(ids)-1-i] = id
	}
	sort.SliceStable(ids, func(i, j int) bool {
		return m.runs[ids[i]].CreatedAt.After(m.runs[ids[j]].CreatedAt)
	})
	out := make([]Run, 0, limit)
	for _, id := range ids[:limit] {
		out = append(out, copyRun(m.runs[id]))
	}
	return out, nil
}

func copyRun(r Run) Run {
	if r.Outcome.Game != nil {
		g := r.Outcome.Game.Clone()
		r.Outcome.Game = &g
	}
	r.Outcome.Diagnostics = append(r.Outcome.Diagnostics[:0:0], r.Outcome.Diagnostics...)
	return r
}
