// apps/go-server/internal/words/words.go
//
// Word scoring for puzzle content.
// Responsibilities:
//   - Validate a single candidate word (length bounds, letters only).
//   - Classify a word into a difficulty bucket from a weighted score.
//
// Scoring:
//   score = 100 × (0.5·len/MaxLength + 0.3·|vowels−consonants|/len + 0.2·min(rare,2)/2)
//   rounded to two decimals, then bucketed:
//     score < EasyCutoff   → easy
//     score < MediumCutoff → medium
//     otherwise            → hard
//
// Both functions are pure: same text in, identical result out.

package words

import (
	"fmt"
	"math"
	"strings"
)

const (
	MinLength = 3
	MaxLength = 15

	EasyCutoff   = 30.0
	MediumCutoff = 55.0

	lengthWeight = 0.5
	ratioWeight  = 0.3
	rareWeight   = 0.2
	rareCap      = 2
)

// Difficulty is one of the three fixed buckets.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Buckets lists the difficulty buckets in ascending order.
var Buckets = []Difficulty{Easy, Medium, Hard}

// ParseDifficulty maps a case-insensitive name onto a bucket.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch Difficulty(strings.ToLower(strings.TrimSpace(s))) {
	case Easy:
		return Easy, true
	case Medium:
		return Medium, true
	case Hard:
		return Hard, true
	}
	return "", false
}

// Validation is the outcome of ValidateWord.
type Validation struct {
	Valid  bool   `json:"valid"`
	Word   string `json:"word,omitempty"`   // normalized (trimmed, lowercase) when valid
	Reason string `json:"reason,omitempty"` // set when invalid
}

// Candidate is an immutable scored word. Rescoring produces a new value.
type Candidate struct {
	Text       string     `json:"text"`
	Length     int        `json:"length"`
	Difficulty Difficulty `json:"difficulty"`
	Score      float64    `json:"score"`
	Vowels     int        `json:"vowelCount"`
	Consonants int        `json:"consonantCount"`
}

// ValidateWord checks that text is usable as a puzzle word.
// Rules, in order: non-empty after trimming, length within [MinLength, MaxLength],
// only letters a–z (case-insensitive).
func ValidateWord(text string) Validation {
	w := strings.ToLower(strings.TrimSpace(text))
	n := len([]rune(w))
	switch {
	case n == 0:
		return Validation{Reason: "word cannot be empty"}
	case n < MinLength:
		return Validation{Reason: fmt.Sprintf("word must be at least %d letters (got %d)", MinLength, n)}
	case n > MaxLength:
		return Validation{Reason: fmt.Sprintf("word must be at most %d letters (got %d)", MaxLength, n)}
	case !isAlpha(w):
		return Validation{Reason: "word must contain only letters"}
	}
	return Validation{Valid: true, Word: w}
}

// CalculateDifficulty scores text and assigns its bucket.
// The text is trimmed and lowercased; callers validate it first.
func CalculateDifficulty(text string) Candidate {
	w := strings.ToLower(strings.TrimSpace(text))
	var vowels, consonants, rare int
	for _, r := range w {
		switch {
		case isVowel(r):
			vowels++
		case r >= 'a' && r <= 'z':
			consonants++
		}
		if isRare(r) {
			rare++
		}
	}
	n := len([]rune(w))
	s := score(n, vowels, consonants, rare)
	return Candidate{
		Text:       w,
		Length:     n,
		Difficulty: Bucket(s),
		Score:      s,
		Vowels:     vowels,
		Consonants: consonants,
	}
}

// Bucket maps a score onto its difficulty using the fixed cut points.
func Bucket(score float64) Difficulty {
	switch {
	case score < EasyCutoff:
		return Easy
	case score < MediumCutoff:
		return Medium
	default:
		return Hard
	}
}

func score(n, vowels, consonants, rare int) float64 {
	if n == 0 {
		return 0
	}
	lengthPart := float64(n) / MaxLength
	ratioPart := math.Abs(float64(vowels-consonants)) / float64(n)
	rarePart := float64(min(rare, rareCap)) / rareCap
	raw := 100 * (lengthWeight*lengthPart + ratioWeight*ratioPart + rareWeight*rarePart)
	return math.Round(raw*100) / 100
}

// isAlpha reports whether s is all lowercase ASCII letters.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

// isRare flags the low-frequency letters that push a word harder.
func isRare(r rune) bool {
	switch r {
	case 'j', 'q', 'x', 'z':
		return true
	}
	return false
}
