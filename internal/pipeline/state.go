// apps/go-server/internal/pipeline/state.go
//
// Run-scoped, append-only stage outputs.
//
// Each stage writes exactly one key, in stage order. Values are stored as JSON
// snapshots, so nothing a later stage does to a value it read can change what
// is retrievable under an earlier key. Stages only see keys written by
// strictly earlier stages (see ViewFor).

package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrKeyExists     = errors.New("pipeline: state key already written")
	ErrKeyMissing    = errors.New("pipeline: state key not written")
	ErrKeyOutOfOrder = errors.New("pipeline: state key written out of stage order")
	ErrKeyNotVisible = errors.New("pipeline: state key not visible to this stage")
)

// Stage is one phase of the pipeline.
type Stage string

const (
	StageBrainstorm Stage = "brainstorm"
	StagePick       Stage = "pick"
	StageBuild      Stage = "build"
)

// Stages lists the stages in execution order.
var Stages = []Stage{StageBrainstorm, StagePick, StageBuild}

// State keys, one per stage.
const (
	KeyBrainstorm  = "brainstorm_result"
	KeyPickedWords = "picked_words"
	KeyFinalGame   = "final_game"
)

// Key returns the state key a stage writes.
func (s Stage) Key() string {
	switch s {
	case StageBrainstorm:
		return KeyBrainstorm
	case StagePick:
		return KeyPickedWords
	case StageBuild:
		return KeyFinalGame
	}
	return ""
}

func (s Stage) index() int {
	for i, st := range Stages {
		if st == s {
			return i
		}
	}
	return -1
}

type entry struct {
	key  string
	data []byte
}

// State is the ordered, append-only mapping from stage key to stage output.
// It is owned by a single run and is not safe for concurrent use.
type State struct {
	entries []entry
}

// NewState returns an empty state.
func NewState() *State { return &State{} }

// Put writes the next stage's output. Keys must arrive in stage order and
// each key may be written once.
func (s *State) Put(key string, v any) error {
	if s.Has(key) {
		return fmt.Errorf("%w: %s", ErrKeyExists, key)
	}
	next := len(s.entries)
	if next >= len(Stages) || Stages[next].Key() != key {
		return fmt.Errorf("%w: %s", ErrKeyOutOfOrder, key)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("snapshot %s: %w", key, err)
	}
	s.entries = append(s.entries, entry{key: key, data: data})
	return nil
}

// Get decodes the value stored under key into out.
func (s *State) Get(key string, out any) error {
	for _, e := range s.entries {
		if e.key == key {
			return json.Unmarshal(e.data, out)
		}
	}
	return fmt.Errorf("%w: %s", ErrKeyMissing, key)
}

// Has reports whether key has been written.
func (s *State) Has(key string) bool {
	for _, e := range s.entries {
		if e.key == key {
			return true
		}
	}
	return false
}

// Keys returns the written keys in write order.
func (s *State) Keys() []string {
	out := make([]string, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.key
	}
	return out
}

// View is the read-only surface a stage receives.
type View interface {
	Get(key string, out any) error
	Has(key string) bool
	Keys() []string
}

// ViewFor returns a read-only view exposing only keys of stages before st.
func (s *State) ViewFor(st Stage) View {
	visible := make(map[string]bool)
	for _, earlier := range Stages[:max(st.index(), 0)] {
		visible[earlier.Key()] = true
	}
	return stageView{state: s, visible: visible}
}

type stageView struct {
	state   *State
	visible map[string]bool
}

func (v stageView) Get(key string, out any) error {
	if !v.visible[key] {
		return fmt.Errorf("%w: %s", ErrKeyNotVisible, key)
	}
	return v.state.Get(key, out)
}

func (v stageView) Has(key string) bool { return v.visible[key] && v.state.Has(key) }

func (v stageView) Keys() []string {
	var out []string
	for _, k := range v.state.Keys() {
		if v.visible[k] {
			out = append(out, k)
		}
	}
	return out
}
