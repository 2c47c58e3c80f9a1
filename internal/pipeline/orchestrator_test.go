package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/puzzlenet/apps/go-server/internal/diag"
	"github.com/robalobadob/puzzlenet/apps/go-server/internal/game"
	"github.com/robalobadob/puzzlenet/apps/go-server/internal/words"
)

const (
	oceanBrainstorm = "```json\n" + `{"theme": "Ocean Animals", "game_type": "word_search",
		"words": ["crab", "octopus", "seal", "dolphin", "starfish", "jellyfish", "whale"],
		"reasoning": "familiar sea creatures"}` + "\n```"

	oceanPick = `{"words": [
		{"text": "crab", "category": "animal"},
		{"text": "octopus", "category": "animal"},
		{"text": "seal", "category": "animal"},
		{"text": "dolphin", "category": "animal"},
		{"text": "starfish", "category": "animal"},
		{"text": "jellyfish", "category": "animal"}]}`

	duplicatePick = `{"words": ["crab", "octopus", "CRAB", "dolphin", "starfish", "jellyfish"]}`

	oceanBuild = `Here you go: {"title": "Ocean Animals Word Search",
		"instructions": "Find all six hidden ocean animals in the letter grid.",
		"description": "A word search full of ocean animals."}`

	noInstructionsBuild = `{"title": "Ocean Animals Word Search", "description": "A word search full of ocean animals."}`
)

// script answers each stage from a queue of replies and records every prompt.
type script struct {
	mu      sync.Mutex
	replies map[Stage][]string
	prompts []Prompt
}

func newScript(brainstorm, pick, build string) *script {
	return &script{replies: map[Stage][]string{
		StageBrainstorm: {brainstorm},
		StagePick:       {pick},
		StageBuild:      {build},
	}}
}

func (s *script) Generate(_ context.Context, p Prompt) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, p)
	q := s.replies[p.Stage]
	if len(q) == 0 {
		return "", fmt.Errorf("no scripted reply for %s", p.Stage)
	}
	if len(q) > 1 {
		s.replies[p.Stage] = q[1:]
	}
	return q[0], nil
}

func (s *script) calls(stage Stage) []Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Prompt
	for _, p := range s.prompts {
		if p.Stage == stage {
			out = append(out, p)
		}
	}
	return out
}

func quiet() Options {
	l := zerolog.Nop()
	return Options{Logger: &l, CallTimeout: time.Second}
}

func mustRequest(t *testing.T, text string) Request {
	t.Helper()
	req, err := NewRequest(text)
	require.NoError(t, err)
	return req
}

func TestRun_CompletesWithRequestedWordCount(t *testing.T) {
	gen := newScript(oceanBrainstorm, oceanPick, oceanBuild)
	o := New(gen, quiet())

	out, err := o.Run(context.Background(), mustRequest(t, "An ocean word search with 6 words"))
	require.NoError(t, err)
	require.True(t, out.Succeeded(), "diagnostics: %v", out.Diagnostics)

	rec := out.Game
	assert.NotEmpty(t, out.RunID)
	assert.Equal(t, StatusCompleted, out.Status)
	assert.Empty(t, out.Diagnostics)
	assert.Equal(t, "Ocean Animals", rec.Theme)
	assert.Equal(t, game.TypeWordSearch, rec.GameType)
	assert.Len(t, rec.Words, 6)
	assert.Equal(t, 6, rec.Distribution.Total())
	assert.Equal(t, words.Distribution{Easy: 3, Medium: 2, Hard: 1}, rec.Distribution)
	assert.Len(t, rec.Clues, 6)
	assert.Equal(t, "A 4-letter animal: C _ _ B", rec.Clues[0].Hint)
	assert.True(t, strings.HasPrefix(rec.AnswerKey, "ANSWER KEY\n"))
	assert.Contains(t, rec.AnswerKey, "1. CRAB - A 4-letter animal: C _ _ B")
	assert.Equal(t, 1.0, rec.Quality.Score)
	assert.Empty(t, rec.Quality.Issues)

	// Completed records round-trip through the wire format unchanged.
	data, err := game.Encode(*rec)
	require.NoError(t, err)
	back, err := game.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, *rec, back)
}

func TestRun_DuplicatePickFailsWithVarietyError(t *testing.T) {
	gen := newScript(oceanBrainstorm, duplicatePick, oceanBuild)
	out, err := New(gen, quiet()).Run(context.Background(), mustRequest(t, "ocean word search, 6 words"))
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, out.Status)
	assert.Nil(t, out.Game)
	assert.Equal(t, StagePick, out.FailedStage)
	vs := out.Diagnostics.OfKind(diag.KindVariety)
	require.Len(t, vs, 1)
	assert.Contains(t, vs[0].Message, "CRAB")

	// Build never ran.
	assert.Empty(t, gen.calls(StageBuild))
}

func TestRun_MissingInstructionsFailsCompleteness(t *testing.T) {
	gen := newScript(oceanBrainstorm, oceanPick, noInstructionsBuild)
	out, err := New(gen, quiet()).Run(context.Background(), mustRequest(t, "ocean word search with 6 words"))
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, out.Status)
	assert.Equal(t, StageBuild, out.FailedStage)
	cs := out.Diagnostics.OfKind(diag.KindCompleteness)
	require.Len(t, cs, 1)
	assert.Equal(t, "instructions", cs[0].Field)
	assert.True(t, out.Diagnostics.Has(diag.KindQuality))
}

func TestRun_InvalidWordFailsValidation(t *testing.T) {
	pick := `{"words": ["it", "crab", "octopus", "seal", "dolphin", "starfish"]}`
	gen := newScript(oceanBrainstorm, pick, oceanBuild)
	out, err := New(gen, quiet()).Run(context.Background(), mustRequest(t, "ocean word search"))
	require.NoError(t, err)

	assert.Equal(t, StagePick, out.FailedStage)
	vs := out.Diagnostics.OfKind(diag.KindValidation)
	require.Len(t, vs, 1)
	assert.Equal(t, "words[0]", vs[0].Field)
	assert.Contains(t, vs[0].Message, "at least 3 letters")
}

func TestRun_WeakThemeFailsConsistency(t *testing.T) {
	build := `{"title": "Ocean Animals Word Search",
		"instructions": "Find all the hidden words in the letter grid.",
		"description": "A fun puzzle."}`
	bs := `{"theme": "Arctic Expedition Gear", "game_type": "word_search", "words": ["crab"]}`
	gen := newScript(bs, oceanPick, build)
	out, err := New(gen, quiet()).Run(context.Background(), mustRequest(t, "word search with 6 words"))
	require.NoError(t, err)

	assert.Equal(t, StageBuild, out.FailedStage)
	assert.True(t, out.Diagnostics.Has(diag.KindConsistency))
}

func TestRun_EmptyRequest(t *testing.T) {
	out, err := New(newScript("", "", ""), quiet()).Run(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrEmptyRequest)
	assert.Empty(t, out.RunID)
}

func TestRun_UnparsableBrainstorm(t *testing.T) {
	gen := newScript("I could not think of anything.", oceanPick, oceanBuild)
	out, err := New(gen, quiet()).Run(context.Background(), mustRequest(t, "ocean puzzle"))
	require.NoError(t, err)

	assert.Equal(t, StageBrainstorm, out.FailedStage)
	require.Len(t, out.Diagnostics, 1)
	assert.Equal(t, diag.KindExternalCall, out.Diagnostics[0].Kind)
	assert.Contains(t, out.Diagnostics[0].Message, "unparsable")
	assert.Empty(t, gen.calls(StagePick))
}

func TestRun_EmptyResponse(t *testing.T) {
	gen := newScript("   ", oceanPick, oceanBuild)
	out, err := New(gen, quiet()).Run(context.Background(), mustRequest(t, "ocean puzzle"))
	require.NoError(t, err)
	require.Len(t, out.Diagnostics, 1)
	assert.Contains(t, out.Diagnostics[0].Message, "empty response")
}

func TestRun_TransportFailure(t *testing.T) {
	gen := CollaboratorFunc(func(context.Context, Prompt) (string, error) {
		return "", errors.New("connection refused")
	})
	out, err := New(gen, quiet()).Run(context.Background(), mustRequest(t, "ocean puzzle"))
	require.NoError(t, err)

	assert.Equal(t, StageBrainstorm, out.FailedStage)
	require.Len(t, out.Diagnostics, 1)
	assert.Equal(t, diag.KindExternalCall, out.Diagnostics[0].Kind)
	assert.Contains(t, out.Diagnostics[0].Message, "transport failure")
	assert.Contains(t, out.Diagnostics[0].Message, "connection refused")
}

func TestRun_CallTimeout(t *testing.T) {
	gen := CollaboratorFunc(func(ctx context.Context, _ Prompt) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	opts := quiet()
	opts.CallTimeout = 20 * time.Millisecond
	out, err := New(gen, opts).Run(context.Background(), mustRequest(t, "ocean puzzle"))
	require.NoError(t, err)

	require.Len(t, out.Diagnostics, 1)
	assert.Equal(t, diag.KindExternalCall, out.Diagnostics[0].Kind)
	assert.Contains(t, out.Diagnostics[0].Message, "timed out after")
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	gen := CollaboratorFunc(func(ctx context.Context, _ Prompt) (string, error) {
		return "", ctx.Err()
	})
	out, err := New(gen, quiet()).Run(ctx, mustRequest(t, "ocean puzzle"))
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, out.Status)
	require.Len(t, out.Diagnostics, 1)
	assert.Contains(t, out.Diagnostics[0].Message, "cancelled")
}

func TestRun_NoRetryByDefault(t *testing.T) {
	gen := newScript(oceanBrainstorm, duplicatePick, oceanBuild)
	gen.replies[StagePick] = []string{duplicatePick, oceanPick}

	out, err := New(gen, quiet()).Run(context.Background(), mustRequest(t, "ocean word search with 6 words"))
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, out.Status)
	assert.Len(t, gen.calls(StagePick), 1)
}

func TestRun_RetryFeedsDiagnosticsBack(t *testing.T) {
	gen := newScript(oceanBrainstorm, duplicatePick, oceanBuild)
	gen.replies[StagePick] = []string{duplicatePick, oceanPick}

	opts := quiet()
	opts.MaxRetries = 1
	out, err := New(gen, opts).Run(context.Background(), mustRequest(t, "ocean word search with 6 words"))
	require.NoError(t, err)
	require.True(t, out.Succeeded(), "diagnostics: %v", out.Diagnostics)

	picks := gen.calls(StagePick)
	require.Len(t, picks, 2)
	assert.NotContains(t, picks[0].User, "previous answer was rejected")
	assert.Contains(t, picks[1].User, "previous answer was rejected")
	assert.Contains(t, picks[1].User, "CRAB")
}

func TestRun_ExternalFailuresAreNotRetried(t *testing.T) {
	var n int
	var mu sync.Mutex
	gen := CollaboratorFunc(func(context.Context, Prompt) (string, error) {
		mu.Lock()
		n++
		mu.Unlock()
		return "", errors.New("boom")
	})
	opts := quiet()
	opts.MaxRetries = 3
	_, err := New(gen, opts).Run(context.Background(), mustRequest(t, "ocean puzzle"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRun_PromptsSeeOnlyEarlierStages(t *testing.T) {
	gen := newScript(oceanBrainstorm, oceanPick, oceanBuild)
	_, err := New(gen, quiet()).Run(context.Background(), mustRequest(t, "ocean word search with 6 words"))
	require.NoError(t, err)

	pick := gen.calls(StagePick)
	require.Len(t, pick, 1)
	assert.Contains(t, pick[0].User, "Theme: Ocean Animals")
	assert.Contains(t, pick[0].User, "exactly 6 words")

	build := gen.calls(StageBuild)
	require.Len(t, build, 1)
	assert.Contains(t, build[0].User, "CRAB, OCTOPUS, SEAL")
}

func TestRun_ConcurrentRunsAreIsolated(t *testing.T) {
	o := New(CollaboratorFunc(func(_ context.Context, p Prompt) (string, error) {
		switch p.Stage {
		case StageBrainstorm:
			return oceanBrainstorm, nil
		case StagePick:
			return oceanPick, nil
		}
		return oceanBuild, nil
	}), quiet())

	const n = 16
	outs := make([]Outcome, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req, _ := NewRequest("ocean word search with 6 words")
			outs[i], _ = o.Run(context.Background(), req)
		}(i)
	}
	wg.Wait()

	ids := map[string]bool{}
	for _, out := range outs {
		require.True(t, out.Succeeded())
		assert.Len(t, out.Game.Words, 6)
		ids[out.RunID] = true
	}
	assert.Len(t, ids, n)
}

func TestOrchestrator_MaxRunTime(t *testing.T) {
	assert.Equal(t, 3*DefaultCallTimeout, New(nil, Options{}).MaxRunTime())
	assert.Equal(t, 9*time.Second, New(nil, Options{CallTimeout: time.Second, MaxRetries: 2}).MaxRunTime())
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(PhaseInit, PhaseBrainstormed))
	assert.True(t, CanTransition(PhaseWordsPicked, PhaseFailed))
	assert.True(t, CanTransition(PhaseGameBuilt, PhaseDone))
	assert.False(t, CanTransition(PhaseInit, PhaseGameBuilt))
	assert.False(t, CanTransition(PhaseGameBuilt, PhaseFailed))
	assert.False(t, CanTransition(PhaseDone, PhaseInit))
	assert.False(t, CanTransition(PhaseFailed, PhaseBrainstormed))
}
