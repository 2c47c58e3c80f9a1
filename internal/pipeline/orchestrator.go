// apps/go-server/internal/pipeline/orchestrator.go
//
// The staged content pipeline.
//
//   INIT ──brainstorm──▶ BRAINSTORMED ──pick──▶ WORDS_PICKED ──build──▶ GAME_BUILT ──▶ DONE
//     │                      │                      │
//     └──────────────────────┴──────────────────────┴──────▶ FAILED
//
// Each transition prompts the collaborator, parses the reply into the stage's
// output type, runs the stage gate, and only then appends the output to the
// run's State. A rejected gate moves the run to FAILED with the gate's
// diagnostics and nothing further is written.
//
// An Orchestrator holds no per-run data: every Run owns its State, so
// concurrent runs on one Orchestrator share nothing mutable.

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/puzzlenet/apps/go-server/internal/diag"
	"github.com/robalobadob/puzzlenet/apps/go-server/internal/game"
	"github.com/robalobadob/puzzlenet/apps/go-server/internal/validate"
	"github.com/robalobadob/puzzlenet/apps/go-server/internal/words"
)

// Phase is a state of the run state machine.
type Phase string

const (
	PhaseInit         Phase = "INIT"
	PhaseBrainstormed Phase = "BRAINSTORMED"
	PhaseWordsPicked  Phase = "WORDS_PICKED"
	PhaseGameBuilt    Phase = "GAME_BUILT"
	PhaseDone         Phase = "DONE"
	PhaseFailed       Phase = "FAILED"
)

var transitions = map[Phase][]Phase{
	PhaseInit:         {PhaseBrainstormed, PhaseFailed},
	PhaseBrainstormed: {PhaseWordsPicked, PhaseFailed},
	PhaseWordsPicked:  {PhaseGameBuilt, PhaseFailed},
	PhaseGameBuilt:    {PhaseDone},
}

// CanTransition reports whether the state machine allows from → to.
func CanTransition(from, to Phase) bool {
	for _, p := range transitions[from] {
		if p == to {
			return true
		}
	}
	return false
}

// DefaultCallTimeout bounds a single collaborator call.
const DefaultCallTimeout = 60 * time.Second

// Options configures an Orchestrator.
type Options struct {
	// CallTimeout bounds each collaborator call. Zero means DefaultCallTimeout.
	CallTimeout time.Duration

	// MaxRetries is the number of extra attempts a stage gets after its gate
	// rejects, re-prompting with the rejection diagnostics. Zero (the default)
	// means every stage is attempted exactly once. Collaborator failures and
	// cancellations are never retried.
	MaxRetries int

	// Validation tunes the Build gate.
	Validation validate.Options

	// Logger receives run progress. Zero value means the global zerolog logger.
	Logger *zerolog.Logger
}

// Orchestrator drives runs through the stage state machine.
type Orchestrator struct {
	gen  Collaborator
	opts Options
}

// New constructs an Orchestrator around a collaborator.
func New(gen Collaborator, opts Options) *Orchestrator {
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = DefaultCallTimeout
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	return &Orchestrator{gen: gen, opts: opts}
}

// MaxRunTime is the longest a Run can spend waiting on the collaborator:
// every stage attempt exhausting its call timeout.
func (o *Orchestrator) MaxRunTime() time.Duration {
	return time.Duration(len(Stages)*(o.opts.MaxRetries+1)) * o.opts.CallTimeout
}

// run is the per-run context. It never outlives Run.
type run struct {
	id    string
	req   Request
	state *State
	phase Phase
	log   zerolog.Logger
}

func (r *run) advance(to Phase) {
	if !CanTransition(r.phase, to) {
		panic(fmt.Sprintf("pipeline: illegal transition %s → %s", r.phase, to))
	}
	r.log.Debug().Str("from", string(r.phase)).Str("to", string(to)).Msg("transition")
	r.phase = to
}

// stageStep is one attempt of a stage: it returns the value to store, or the
// diagnostics explaining why the stage was rejected.
type stageStep func(ctx context.Context, r *run, feedback diag.Diagnostics) (any, diag.Diagnostics)

// Run executes the pipeline for req. The returned error is non-nil only when
// req is not a usable request (see NewRequest); every stage failure is
// reported as a Failed outcome instead.
func (o *Orchestrator) Run(ctx context.Context, req Request) (Outcome, error) {
	if !req.valid() {
		return Outcome{}, ErrEmptyRequest
	}

	base := log.Logger
	if o.opts.Logger != nil {
		base = *o.opts.Logger
	}
	r := &run{
		id:    uuid.NewString(),
		req:   req,
		state: NewState(),
		phase: PhaseInit,
	}
	r.log = base.With().Str("run", r.id).Logger()
	start := time.Now()
	r.log.Info().Str("request", req.Text()).Msg("run started")

	steps := []struct {
		stage Stage
		next  Phase
		step  stageStep
	}{
		{StageBrainstorm, PhaseBrainstormed, o.brainstorm},
		{StagePick, PhaseWordsPicked, o.pick},
		{StageBuild, PhaseGameBuilt, o.build},
	}

	for _, s := range steps {
		value, issues := o.attempt(ctx, r, s.stage, s.step)
		if len(issues) > 0 {
			r.advance(PhaseFailed)
			r.log.Warn().Str("stage", string(s.stage)).Int("diagnostics", len(issues)).
				Dur("elapsed", time.Since(start)).Msg("run failed")
			return failed(r.id, s.stage, issues), nil
		}
		if err := r.state.Put(s.stage.Key(), value); err != nil {
			// Keys are written once each, in order; this is a programming error.
			panic(err)
		}
		r.advance(s.next)
	}

	var rec game.Record
	if err := r.state.Get(KeyFinalGame, &rec); err != nil {
		panic(err)
	}
	r.advance(PhaseDone)
	r.log.Info().Str("theme", rec.Theme).Int("words", len(rec.Words)).
		Float64("quality", rec.Quality.Score).Dur("elapsed", time.Since(start)).Msg("run completed")
	return completed(r.id, rec), nil
}

// attempt runs a stage once, plus up to MaxRetries re-prompts after gate rejections.
func (o *Orchestrator) attempt(ctx context.Context, r *run, stage Stage, step stageStep) (any, diag.Diagnostics) {
	var feedback diag.Diagnostics
	for try := 0; ; try++ {
		value, issues := step(ctx, r, feedback)
		if len(issues) == 0 {
			return value, nil
		}
		r.log.Info().Str("stage", string(stage)).Int("attempt", try+1).
			Int("diagnostics", len(issues)).Msg("gate rejected")
		if try >= o.opts.MaxRetries || issues.Has(diag.KindExternalCall) || ctx.Err() != nil {
			return nil, issues
		}
		feedback = issues
	}
}

// call sends one prompt to the collaborator under the call timeout.
func (o *Orchestrator) call(ctx context.Context, r *run, p Prompt) (string, diag.Diagnostics) {
	cctx, cancel := context.WithTimeout(ctx, o.opts.CallTimeout)
	defer cancel()

	start := time.Now()
	resp, err := o.gen.Generate(cctx, p)
	elapsed := time.Since(start)
	if err != nil {
		r.log.Warn().Err(err).Str("stage", string(p.Stage)).Dur("latency", elapsed).Msg("collaborator call failed")
		switch {
		case errors.Is(ctx.Err(), context.Canceled):
			return "", diag.Diagnostics{diag.New(diag.KindExternalCall, "%s call cancelled", p.Stage)}
		case errors.Is(cctx.Err(), context.DeadlineExceeded):
			return "", diag.Diagnostics{diag.New(diag.KindExternalCall, "%s call timed out after %s", p.Stage, o.opts.CallTimeout)}
		default:
			return "", diag.Diagnostics{diag.New(diag.KindExternalCall, "%s call transport failure: %v", p.Stage, err)}
		}
	}
	r.log.Debug().Str("stage", string(p.Stage)).Dur("latency", elapsed).Int("bytes", len(resp)).Msg("collaborator replied")
	if strings.TrimSpace(resp) == "" {
		return "", diag.Diagnostics{diag.New(diag.KindExternalCall, "%s call returned an empty response", p.Stage)}
	}
	return resp, nil
}

// prompt builds a stage prompt from the request and the stage's view.
func (o *Orchestrator) prompt(r *run, stage Stage, feedback diag.Diagnostics,
	build func(Request, View) (Prompt, error)) Prompt {
	p, err := build(r.req, r.state.ViewFor(stage))
	if err != nil {
		// Earlier stage outputs are always present when a stage runs.
		panic(fmt.Sprintf("pipeline: %s prompt: %v", stage, err))
	}
	return withFeedback(p, feedback)
}

func unparsable(stage Stage, err error) diag.Diagnostics {
	return diag.Diagnostics{diag.New(diag.KindExternalCall, "unparsable %s response: %v", stage, err)}
}

// ------------------------------ stages -------------------------------------

func (o *Orchestrator) brainstorm(ctx context.Context, r *run, feedback diag.Diagnostics) (any, diag.Diagnostics) {
	p := o.prompt(r, StageBrainstorm, feedback, brainstormPrompt)
	resp, ds := o.call(ctx, r, p)
	if ds != nil {
		return nil, ds
	}
	res, err := parseBrainstorm(resp, r.req.GameType())
	if err != nil {
		return nil, unparsable(StageBrainstorm, err)
	}
	return res, nil
}

func (o *Orchestrator) pick(ctx context.Context, r *run, feedback diag.Diagnostics) (any, diag.Diagnostics) {
	p := o.prompt(r, StagePick, feedback, pickPrompt)
	resp, ds := o.call(ctx, r, p)
	if ds != nil {
		return nil, ds
	}
	picks, err := parsePick(resp)
	if err != nil {
		return nil, unparsable(StagePick, err)
	}

	var issues diag.Diagnostics
	set := WordSet{}
	for i, pk := range picks {
		v := words.ValidateWord(pk.Text)
		if !v.Valid {
			issues = append(issues, diag.OnField(diag.KindValidation, fmt.Sprintf("words[%d]", i),
				"%q: %s", strings.TrimSpace(pk.Text), v.Reason))
			continue
		}
		set.Words = append(set.Words, PickedWord{
			Candidate: words.CalculateDifficulty(v.Word),
			Category:  strings.ToLower(strings.TrimSpace(pk.Category)),
		})
	}

	variety := words.CheckVariety(set.Candidates(), r.req.WordRange())
	set.Distribution = variety.Distribution
	issues = append(issues, variety.Issues...)
	if len(issues) > 0 {
		return nil, issues
	}
	return set, nil
}

func (o *Orchestrator) build(ctx context.Context, r *run, feedback diag.Diagnostics) (any, diag.Diagnostics) {
	p := o.prompt(r, StageBuild, feedback, buildPrompt)
	resp, ds := o.call(ctx, r, p)
	if ds != nil {
		return nil, ds
	}
	draft, err := parseBuild(resp)
	if err != nil {
		return nil, unparsable(StageBuild, err)
	}

	view := r.state.ViewFor(StageBuild)
	var bs BrainstormResult
	var ws WordSet
	if err := view.Get(KeyBrainstorm, &bs); err != nil {
		panic(err)
	}
	if err := view.Get(KeyPickedWords, &ws); err != nil {
		panic(err)
	}

	rec := game.FormatGameStructure(bs.Theme, bs.GameType, draft.Title, ws.Candidates(), ws.Distribution)
	rec.Instructions = draft.Instructions
	for _, w := range ws.Words {
		rec.Clues = append(rec.Clues, game.FormatClue(w.Text, w.Category))
	}
	rec.AnswerKey = game.FormatAnswerKey(rec.Clues)

	description := draft.Description
	if description == "" {
		description = draft.Title + " " + draft.Instructions
	}
	rep := o.opts.Validation.Gate(rec, description)
	if !rep.Valid() {
		return nil, rep.Diagnostics
	}
	rec.Quality = game.QualityReport{Score: rep.Quality.Score, Issues: rep.Quality.Issues}
	return rec, nil
}
