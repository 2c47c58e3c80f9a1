package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/puzzlenet/apps/go-server/internal/diag"
	"github.com/robalobadob/puzzlenet/apps/go-server/internal/game"
	"github.com/robalobadob/puzzlenet/apps/go-server/internal/words"
)

const goodInstructions = "Find all six ocean animals hidden in the letter grid."

func fullRecord() game.Record {
	ws := []string{"crab", "octopus", "seal", "dolphin", "starfish", "jellyfish"}
	cands := make([]words.Candidate, len(ws))
	for i, w := range ws {
		cands[i] = words.CalculateDifficulty(w)
	}
	rec := game.FormatGameStructure("Ocean Animals", game.TypeWordSearch, "Under the Sea", cands, words.Distribute(cands))
	rec.Instructions = goodInstructions
	for _, w := range ws {
		rec.Clues = append(rec.Clues, game.FormatClue(w, "animal"))
	}
	rec.AnswerKey = game.FormatAnswerKey(rec.Clues)
	return rec
}

func TestValidateCompletion_Complete(t *testing.T) {
	got := ValidateCompletion(fullRecord())
	assert.True(t, got.Valid)
	assert.Empty(t, got.MissingFields)
}

func TestValidateCompletion_ReportsEachMissingField(t *testing.T) {
	rec := fullRecord()
	rec.Instructions = "  "
	rec.AnswerKey = ""

	got := ValidateCompletion(rec)
	assert.False(t, got.Valid)
	assert.Equal(t, []string{"instructions", "answer_key"}, got.MissingFields)
}

func TestValidateCompletion_EmptyRecord(t *testing.T) {
	got := ValidateCompletion(game.Record{})
	assert.Equal(t, RequiredFields, got.MissingFields)
}

func TestCheckContentQuality(t *testing.T) {
	six := []string{"a", "b", "c", "d", "e", "f"}
	tests := []struct {
		name         string
		title        string
		words        []string
		instructions string
		score        float64
		passed       bool
		issues       int
	}{
		{name: "clean", title: "Under the Sea", words: six, instructions: goodInstructions, score: 1, passed: true},
		{name: "short title still passes", title: "Go", words: six, instructions: goodInstructions, score: 0.9, passed: true, issues: 1},
		{name: "missing instructions", title: "Under the Sea", words: six, score: 0.6, issues: 2},
		{name: "terse instructions", title: "Under the Sea", words: six, instructions: "Find hidden words!!!", score: 0.9, passed: true, issues: 1},
		{name: "too few words", title: "Under the Sea", words: []string{"a"}, instructions: goodInstructions, score: 0.8, issues: 1},
		{name: "long title", title: strings.Repeat("t", 100), words: six, instructions: goodInstructions, score: 0.85, passed: true, issues: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckContentQuality(tt.title, tt.words, tt.instructions)
			assert.InDelta(t, tt.score, got.Score, 0.001)
			assert.GreaterOrEqual(t, got.Score, 0.0)
			assert.LessOrEqual(t, got.Score, 1.0)
			assert.Equal(t, tt.passed, got.Passed())
			assert.Len(t, got.Issues, tt.issues, "issues: %v", got.Issues)
		})
	}
}

func TestCheckContentQualityStrict(t *testing.T) {
	longTitle := strings.Repeat("t", 100)
	tests := []struct {
		name         string
		title        string
		words        []string
		instructions string
		score        float64
		issues       int
	}{
		{name: "high score skips strict rules", title: "Sea", words: []string{"crab", "Crab", "seal"}, instructions: goodInstructions, score: 1},
		{name: "nothing extra to report", title: longTitle, words: []string{"crab", "seal", "eel"}, instructions: goodInstructions, score: 0.85, issues: 1},
		{name: "duplicate words", title: longTitle, words: []string{"crab", "seal", " CRAB"}, instructions: goodInstructions, score: 0.75, issues: 2},
		{name: "short title and duplicates", title: "Sea", words: []string{"crab", "Crab", "seal"}, score: 0.4, issues: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckContentQualityStrict(tt.title, tt.words, tt.instructions)
			assert.InDelta(t, tt.score, got.Score, 0.001)
			assert.Len(t, got.Issues, tt.issues, "issues: %v", got.Issues)
		})
	}
}

func TestOptions_Gate(t *testing.T) {
	rec := fullRecord()
	assert.Equal(t, Gate(rec, "ocean animals"), Options{}.Gate(rec, "ocean animals"))

	rec.Title = strings.Repeat("t", 100)
	rec.Words = append(rec.Words, rec.Words[0])
	assert.True(t, Gate(rec, "ocean animals").Valid())
	strict := Options{Strict: true}.Gate(rec, "ocean animals")
	require.False(t, strict.Valid())
	assert.True(t, strict.Diagnostics.Has(diag.KindQuality))
	assert.Contains(t, strict.Quality.Issues, "all words must be unique in strict mode")
}

func TestValidateThemeConsistency(t *testing.T) {
	ws := []string{"crab", "seal", "octopus"}
	tests := []struct {
		name        string
		theme       string
		words       []string
		description string
		valid       bool
		score       float64
	}{
		{name: "full mention", theme: "Ocean Animals", words: ws, description: "Spot the ocean animals in the grid", valid: true, score: 1},
		{name: "case and plural", theme: "OCEAN ANIMAL", words: ws, description: "oceans full of animals", valid: true, score: 1},
		{name: "ies plural", theme: "Berries", words: []string{"raspberry", "berry", "cherry"}, description: "a fruity puzzle", valid: true, score: 1},
		{name: "oes plural", theme: "Potatoes", words: []string{"potato", "carrot", "onion"}, description: "a puzzle", valid: true, score: 1},
		{name: "ses plural", theme: "Buses", words: []string{"bus", "tram", "ferry"}, description: "a puzzle", valid: true, score: 1},
		{name: "heroes", theme: "Heroes", words: []string{"hero", "villain", "sidekick"}, description: "a puzzle", valid: true, score: 1},
		{name: "plain s after e", theme: "Horses", words: []string{"horse", "pony", "mare"}, description: "a puzzle", valid: true, score: 1},
		{name: "plural in content", theme: "Bus Potato", words: []string{"buses", "potatoes", "tram"}, description: "", valid: true, score: 1},
		{name: "half", theme: "Ocean Animals", words: ws, description: "Creatures of the ocean", valid: true, score: 0.5},
		{name: "theme via words", theme: "Crabs", words: ws, description: "", valid: true, score: 1},
		{name: "unrelated", theme: "Outer Space", words: ws, description: "Sea life", score: 0},
		{name: "empty theme", theme: "", words: ws, description: "anything"},
		{name: "no words", theme: "Ocean", description: "ocean"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateThemeConsistency(tt.theme, tt.words, tt.description)
			assert.Equal(t, tt.valid, got.Valid)
			assert.InDelta(t, tt.score, got.Score, 0.001)
		})
	}
}

func TestGate_Accepts(t *testing.T) {
	rep := Gate(fullRecord(), "Ocean animals hide in this grid")
	assert.True(t, rep.Valid(), "diagnostics: %v", rep.Diagnostics)
	assert.Equal(t, 1.0, rep.Quality.Score)
}

func TestGate_UnionOfDiagnostics(t *testing.T) {
	rec := fullRecord()
	rec.Instructions = ""

	rep := Gate(rec, "a puzzle about outer space")
	require.False(t, rep.Valid())
	assert.True(t, rep.Diagnostics.Has(diag.KindCompleteness))
	assert.True(t, rep.Diagnostics.Has(diag.KindQuality))
	assert.True(t, rep.Diagnostics.Has(diag.KindConsistency))
	assert.Contains(t, rep.Completion.MissingFields, "instructions")
}
