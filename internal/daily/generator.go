// apps/go-server/internal/daily/generator.go
//
// Daily generation: one theme per date, three difficulty variants run in
// parallel, each as an independent pipeline run with its own state. Only
// Completed outcomes are published; a failed variant leaves its slot empty
// so a later Generate call can fill it.

package daily

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/puzzlenet/apps/go-server/internal/diag"
	"github.com/robalobadob/puzzlenet/apps/go-server/internal/pipeline"
	"github.com/robalobadob/puzzlenet/apps/go-server/internal/store"
	"github.com/robalobadob/puzzlenet/apps/go-server/internal/words"
)

// Runner executes one pipeline request. *pipeline.Orchestrator satisfies it.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (pipeline.Outcome, error)
}

// levelPhrase is the game style used for each daily level.
var levelPhrase = map[words.Difficulty]string{
	words.Easy:   "word search",
	words.Medium: "crossword",
	words.Hard:   "anagram",
}

// Variant reports what happened to one level.
type Variant struct {
	Level       words.Difficulty `json:"level"`
	RunID       string           `json:"runId,omitempty"`
	Status      string           `json:"status"`
	Diagnostics diag.Diagnostics `json:"diagnostics,omitempty"`
}

// Variant statuses beyond the pipeline's completed/failed.
const (
	StatusPublished = "published"
	StatusExisting  = "existing"
)

// Report summarizes a Generate call.
type Report struct {
	Date     string    `json:"date"`
	Theme    string    `json:"theme"`
	Variants []Variant `json:"variants"`
}

// Generator produces and publishes the daily puzzles.
type Generator struct {
	Runner  Runner
	Archive Archive
	// Runs, when set, records every variant run including failures.
	Runs   store.Store
	Themes []string
	Salt   string
}

// RequestText is the pipeline request used for one daily variant.
func RequestText(theme string, level words.Difficulty) string {
	return fmt.Sprintf("Create a %s at %s difficulty about %s for today's daily puzzle.", levelPhrase[level], level, theme)
}

// Generate runs every unpublished level for date in parallel and publishes
// the completed ones. The returned error reports storage failures; pipeline
// failures are reported per variant.
func (g *Generator) Generate(ctx context.Context, date time.Time) (Report, error) {
	if len(g.Themes) == 0 {
		return Report{}, errors.New("daily: no themes configured")
	}
	key := DateKey(date)
	theme := ThemeFor(date, g.Salt, g.Themes)
	rep := Report{Date: key, Theme: theme, Variants: make([]Variant, len(Levels))}

	existing, err := g.Archive.ForDate(ctx, key)
	if err != nil {
		return rep, fmt.Errorf("load published puzzles: %w", err)
	}
	done := make(map[words.Difficulty]string, len(existing))
	for _, p := range existing {
		done[p.Level] = p.RunID
	}

	eg, ctx := errgroup.WithContext(ctx)
	for i, level := range Levels {
		i, level := i, level
		if id, ok := done[level]; ok {
			rep.Variants[i] = Variant{Level: level, RunID: id, Status: StatusExisting}
			continue
		}
		eg.Go(func() error {
			v, err := g.variant(ctx, key, theme, level)
			rep.Variants[i] = v
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return rep, err
	}

	log.Info().Str("date", key).Str("theme", theme).Msg("daily generation finished")
	return rep, nil
}

func (g *Generator) variant(ctx context.Context, date, theme string, level words.Difficulty) (Variant, error) {
	text := RequestText(theme, level)
	req, err := pipeline.NewRequest(text)
	if err != nil {
		return Variant{Level: level}, err
	}
	out, err := g.Runner.Run(ctx, req)
	if err != nil {
		return Variant{Level: level}, fmt.Errorf("run %s variant: %w", level, err)
	}
	v := Variant{Level: level, RunID: out.RunID, Status: string(out.Status), Diagnostics: out.Diagnostics}

	if g.Runs != nil {
		if err := g.Runs.SaveRun(ctx, store.NewRun(text, out)); err != nil {
			return v, fmt.Errorf("save %s run: %w", level, err)
		}
	}
	if !out.Succeeded() {
		log.Warn().Str("date", date).Str("level", string(level)).Str("stage", string(out.FailedStage)).
			Int("diagnostics", len(out.Diagnostics)).Msg("daily variant failed")
		return v, nil
	}

	err = g.Archive.Publish(ctx, Puzzle{
		Date:        date,
		Level:       level,
		RunID:       out.RunID,
		Theme:       out.Game.Theme,
		Game:        *out.Game,
		PublishedAt: time.Now().UTC(),
	})
	switch {
	case errors.Is(err, ErrAlreadyPublished):
		v.Status = StatusExisting
	case err != nil:
		return v, fmt.Errorf("publish %s variant: %w", level, err)
	default:
		v.Status = StatusPublished
		log.Info().Str("date", date).Str("level", string(level)).Str("run", out.RunID).Msg("daily puzzle published")
	}
	return v, nil
}
