// apps/go-server/internal/game/types.go
//
// Canonical game record produced by the pipeline.
// Defines:
//   - Type: supported puzzle kinds.
//   - Record: the finished game, whose JSON field names are the public contract.
//   - WordEntry / Clue / QualityReport: nested record shapes.

package game

import (
	"strings"

	"github.com/robalobadob/puzzlenet/apps/go-server/internal/words"
)

// Type is the kind of puzzle a record describes.
type Type string

const (
	TypeWordSearch  Type = "word_search"
	TypeCrossword   Type = "crossword"
	TypeAnagram     Type = "anagram"
	TypeWordMatch   Type = "word_match"
	TypeTrivia      Type = "trivia"
	TypeKnightsTour Type = "knights_tour"
)

// Types lists every supported puzzle kind.
var Types = []Type{TypeWordSearch, TypeCrossword, TypeAnagram, TypeWordMatch, TypeTrivia, TypeKnightsTour}

// ParseType normalizes s ("Word Search", "word-search", "WORD_SEARCH") onto a known Type.
func ParseType(s string) (Type, bool) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_", "'", "").Replace(norm)
	for _, t := range Types {
		if Type(norm) == t {
			return t, true
		}
	}
	return "", false
}

// WordEntry is a word as it appears in the published record.
type WordEntry struct {
	Text       string           `json:"text"`
	Difficulty words.Difficulty `json:"difficulty"`
}

// Clue pairs a word with its player-facing hint.
type Clue struct {
	Word     string `json:"word"`
	Hint     string `json:"hint"`
	Category string `json:"category"`
}

// QualityReport carries the composite quality score and its component issues.
type QualityReport struct {
	Score  float64  `json:"score"`
	Issues []string `json:"issues"`
}

// Record is a complete game. Field order mirrors the published schema.
type Record struct {
	Theme        string             `json:"theme"`
	GameType     Type               `json:"game_type"`
	Title        string             `json:"title"`
	Instructions string             `json:"instructions"`
	Words        []WordEntry        `json:"words"`
	Clues        []Clue             `json:"clues"`
	AnswerKey    string             `json:"answer_key"`
	Distribution words.Distribution `json:"difficulty_distribution"`
	Quality      QualityReport      `json:"quality_report"`
}

// WordTexts returns the record's words in order.
func (r Record) WordTexts() []string {
	out := make([]string, len(r.Words))
	for i, w := range r.Words {
		out[i] = w.Text
	}
	return out
}

// Clone returns a deep copy so callers cannot reach into a finalized record.
func (r Record) Clone() Record {
	c := r
	c.Words = append([]WordEntry{}, r.Words...)
	c.Clues = append([]Clue{}, r.Clues...)
	c.Quality.Issues = append([]string{}, r.Quality.Issues...)
	return c
}
