package words

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateWord(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		valid  bool
		word   string
		reason string
	}{
		{name: "plain", in: "crab", valid: true, word: "crab"},
		{name: "trimmed and lowered", in: "  Octopus ", valid: true, word: "octopus"},
		{name: "min length", in: "sea", valid: true, word: "sea"},
		{name: "max length", in: strings.Repeat("a", MaxLength), valid: true, word: strings.Repeat("a", MaxLength)},
		{name: "too short", in: "it", reason: "at least 3"},
		{name: "too long", in: strings.Repeat("b", MaxLength+1), reason: "at most 15"},
		{name: "empty", in: "   ", reason: "empty"},
		{name: "digits", in: "r2d2", reason: "only letters"},
		{name: "hyphen", in: "sea-lion", reason: "only letters"},
		{name: "accented", in: "café", reason: "only letters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateWord(tt.in)
			assert.Equal(t, tt.valid, got.Valid)
			if tt.valid {
				assert.Equal(t, tt.word, got.Word)
				assert.Empty(t, got.Reason)
				return
			}
			assert.Contains(t, got.Reason, tt.reason)
		})
	}
}

func TestValidateWord_ShortWordReportsLengthBound(t *testing.T) {
	got := ValidateWord("it")
	assert.False(t, got.Valid)
	assert.Contains(t, got.Reason, "at least 3 letters")
}

func TestValidateWord_Deterministic(t *testing.T) {
	for _, in := range []string{"crab", "it", "", "sea-lion", "JELLYFISH"} {
		first := ValidateWord(in)
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, ValidateWord(in), "input %q", in)
		}
	}
}

func TestCalculateDifficulty(t *testing.T) {
	tests := []struct {
		word  string
		score float64
		want  Difficulty
	}{
		{"cat", 20.00, Easy},
		{"seal", 13.33, Easy},
		{"crab", 28.33, Easy},
		{"octopus", 27.62, Easy},
		{"quiz", 33.33, Medium},
		{"dolphin", 36.19, Medium},
		{"starfish", 41.67, Medium},
		{"jellyfish", 56.67, Hard},
		{"extraordinary", 60.26, Hard},
	}
	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			c := CalculateDifficulty(tt.word)
			assert.InDelta(t, tt.score, c.Score, 0.001)
			assert.Equal(t, tt.want, c.Difficulty)
			assert.Equal(t, len(tt.word), c.Length)
			assert.Equal(t, c.Length, c.Vowels+c.Consonants)
		})
	}
}

func TestCalculateDifficulty_Idempotent(t *testing.T) {
	a := CalculateDifficulty("Starfish")
	b := CalculateDifficulty("Starfish")
	assert.Equal(t, a, b)
	assert.Equal(t, "starfish", a.Text)
	assert.Equal(t, a, CalculateDifficulty(a.Text))
}

func TestCalculateDifficulty_MonotonicInLength(t *testing.T) {
	rank := map[Difficulty]int{Easy: 0, Medium: 1, Hard: 2}
	// Each unit keeps the vowel/consonant ratio fixed as the word grows.
	for _, unit := range []string{"ba", "bba", "bbba"} {
		t.Run(unit, func(t *testing.T) {
			prevScore, prevRank := -1.0, -1
			for k := 1; len(unit)*k <= MaxLength; k++ {
				c := CalculateDifficulty(strings.Repeat(unit, k))
				require.GreaterOrEqual(t, c.Score, prevScore, "length %d", c.Length)
				require.GreaterOrEqual(t, rank[c.Difficulty], prevRank, "length %d", c.Length)
				prevScore, prevRank = c.Score, rank[c.Difficulty]
			}
		})
	}
}

func TestBucket_CutPoints(t *testing.T) {
	assert.Equal(t, Easy, Bucket(0))
	assert.Equal(t, Easy, Bucket(29.99))
	assert.Equal(t, Medium, Bucket(30))
	assert.Equal(t, Medium, Bucket(54.99))
	assert.Equal(t, Hard, Bucket(55))
	assert.Equal(t, Hard, Bucket(100))
}

func TestParseDifficulty(t *testing.T) {
	d, ok := ParseDifficulty(" HARD ")
	assert.True(t, ok)
	assert.Equal(t, Hard, d)

	_, ok = ParseDifficulty("brutal")
	assert.False(t, ok)
}
