// apps/go-server/internal/pipeline/request.go
//
// PipelineRequest: the immutable free-text description of the game to build.
// Hints (word count, difficulty, game type, theme keywords) are extracted once
// at construction; the request is never mutated afterwards.

package pipeline

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/robalobadob/puzzlenet/apps/go-server/internal/game"
	"github.com/robalobadob/puzzlenet/apps/go-server/internal/words"
)

// ErrEmptyRequest is returned when no request text is given. It is the only
// condition that stops a run before any stage executes.
var ErrEmptyRequest = errors.New("pipeline: request text is empty")

// Default accepted word range when the request names no count.
const (
	DefaultMinWords = 5
	DefaultMaxWords = 15
)

var (
	countAfterRe  = regexp.MustCompile(`(?i)\b(\d{1,3})[\s-]*words?\b`)
	countBeforeRe = regexp.MustCompile(`(?i)\bword[\s_-]*count[\s:=]*(\d{1,3})\b`)
	levelRe       = regexp.MustCompile(`(?i)\b(easy|medium|hard)\b`)
)

// themeKeywords are recognized topic hints.
var themeKeywords = []string{
	"animals", "ocean", "space", "food", "sports", "travel",
	"music", "art", "science", "nature", "technology", "history",
}

// typePhrases maps phrases found in free text onto game types.
var typePhrases = []struct {
	phrase string
	t      game.Type
}{
	{"word search", game.TypeWordSearch},
	{"wordsearch", game.TypeWordSearch},
	{"crossword", game.TypeCrossword},
	{"anagram", game.TypeAnagram},
	{"word match", game.TypeWordMatch},
	{"trivia", game.TypeTrivia},
	{"knight's tour", game.TypeKnightsTour},
	{"knights tour", game.TypeKnightsTour},
}

// Request is a run's input. Construct with NewRequest.
type Request struct {
	text       string
	wordCount  int
	difficulty words.Difficulty
	gameType   game.Type
	themes     []string
}

// NewRequest builds a Request from free text.
func NewRequest(text string) (Request, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Request{}, ErrEmptyRequest
	}
	r := Request{text: text}

	if m := countBeforeRe.FindStringSubmatch(text); m != nil {
		r.wordCount, _ = strconv.Atoi(m[1])
	} else if m := countAfterRe.FindStringSubmatch(text); m != nil {
		r.wordCount, _ = strconv.Atoi(m[1])
	}
	if m := levelRe.FindStringSubmatch(text); m != nil {
		r.difficulty, _ = words.ParseDifficulty(m[1])
	}

	lower := strings.ToLower(text)
	for _, tp := range typePhrases {
		if strings.Contains(lower, tp.phrase) {
			r.gameType = tp.t
			break
		}
	}
	tokens := make(map[string]bool)
	for _, f := range strings.FieldsFunc(lower, func(c rune) bool { return !unicode.IsLetter(c) }) {
		tokens[f] = true
	}
	for _, kw := range themeKeywords {
		if tokens[kw] {
			r.themes = append(r.themes, kw)
		}
	}
	return r, nil
}

// Text is the original request text.
func (r Request) Text() string { return r.text }

// WordCount returns the requested number of words, if one was named.
func (r Request) WordCount() (int, bool) { return r.wordCount, r.wordCount > 0 }

// Difficulty returns the requested difficulty hint, or "" when none.
func (r Request) Difficulty() words.Difficulty { return r.difficulty }

// GameType returns the requested game type hint, or "" when none.
func (r Request) GameType() game.Type { return r.gameType }

// ThemeHints returns a copy of the recognized theme keywords.
func (r Request) ThemeHints() []string { return append([]string(nil), r.themes...) }

// WordRange is the accepted word count for the Pick stage: exactly the
// requested count, or the default range.
func (r Request) WordRange() words.Range {
	if n, ok := r.WordCount(); ok {
		return words.Range{Min: n, Max: n}
	}
	return words.Range{Min: DefaultMinWords, Max: DefaultMaxWords}
}

func (r Request) valid() bool { return r.text != "" }
