// apps/go-server/internal/game/format.go
//
// Deterministic rendering of validated content into a Record.
// Responsibilities:
//   - Assemble the structural shape (theme, type, title, words, distribution).
//   - Produce clue hints from the word and its category (masked letters + label).
//   - Render the answer key in input order.
//   - Encode/parse the record JSON; parse(encode(r)) reproduces r.
//
// Nothing here depends on randomness or wall-clock time.

package game

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/robalobadob/puzzlenet/apps/go-server/internal/words"
)

// DefaultCategory is used when a clue has no category.
const DefaultCategory = "general"

// categoryLabels maps clue categories onto the noun used in the hint.
var categoryLabels = map[string]string{
	"animal":     "animal",
	"place":      "location",
	"object":     "object",
	"action":     "verb",
	"general":    "word",
	"food":       "food",
	"person":     "person",
	"occupation": "job",
}

// FormatGameStructure builds the pre-clue record from the picked words.
// Instructions, clues, answer key and quality report are filled in later.
func FormatGameStructure(theme string, gameType Type, title string, cands []words.Candidate, dist words.Distribution) Record {
	entries := make([]WordEntry, len(cands))
	for i, c := range cands {
		entries[i] = WordEntry{Text: c.Text, Difficulty: c.Difficulty}
	}
	return Record{
		Theme:        strings.TrimSpace(theme),
		GameType:     gameType,
		Title:        strings.TrimSpace(title),
		Words:        entries,
		Clues:        []Clue{},
		Distribution: dist,
		Quality:      QualityReport{Issues: []string{}},
	}
}

// FormatClue derives a hint for word: "A 4-letter animal: C _ _ B".
func FormatClue(word, category string) Clue {
	w := strings.ToLower(strings.TrimSpace(word))
	cat := strings.ToLower(strings.TrimSpace(category))
	if cat == "" {
		cat = DefaultCategory
	}
	label, ok := categoryLabels[cat]
	if !ok {
		label = cat
	}
	return Clue{
		Word:     w,
		Hint:     fmt.Sprintf("A %d-letter %s: %s", len([]rune(w)), label, mask(strings.ToUpper(w))),
		Category: cat,
	}
}

// mask reveals the first and last letters and hides the rest.
func mask(w string) string {
	rs := []rune(w)
	parts := make([]string, len(rs))
	for i, r := range rs {
		if i == 0 || i == len(rs)-1 {
			parts[i] = string(r)
		} else {
			parts[i] = "_"
		}
	}
	return strings.Join(parts, " ")
}

// FormatAnswerKey renders a numbered listing in the same order as clues.
func FormatAnswerKey(clues []Clue) string {
	lines := []string{"ANSWER KEY", strings.Repeat("=", 40)}
	for i, c := range clues {
		lines = append(lines, fmt.Sprintf("%d. %s - %s", i+1, strings.ToUpper(c.Word), c.Hint))
	}
	return strings.Join(lines, "\n")
}

// Encode writes the record as indented JSON.
func Encode(r Record) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// Parse reads a record previously written by Encode.
// Unknown fields are rejected so schema drift is caught early.
func Parse(data []byte) (Record, error) {
	var r Record
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&r); err != nil {
		return Record{}, fmt.Errorf("parse game record: %w", err)
	}
	return r, nil
}
