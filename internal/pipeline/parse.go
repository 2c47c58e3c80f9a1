// apps/go-server/internal/pipeline/parse.go
//
// Stage output types and the parsers that turn collaborator text into them.
// Generators often wrap JSON in markdown fences or chatter, so the first JSON
// object in the response is located before fields are read. Any response that
// does not fit a stage's schema is reported as an error, never a panic.

package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/robalobadob/puzzlenet/apps/go-server/internal/game"
	"github.com/robalobadob/puzzlenet/apps/go-server/internal/words"
)

// BrainstormResult is the Brainstorm stage output.
type BrainstormResult struct {
	Theme     string    `json:"theme"`
	GameType  game.Type `json:"game_type"`
	Words     []string  `json:"words"`
	Reasoning string    `json:"reasoning,omitempty"`
}

// PickedWord is an approved, scored word with its clue category.
type PickedWord struct {
	words.Candidate
	Category string `json:"category"`
}

// WordSet is the Pick stage output.
type WordSet struct {
	Words        []PickedWord       `json:"words"`
	Distribution words.Distribution `json:"difficulty_distribution"`
}

// Candidates returns the scored words in order.
func (ws WordSet) Candidates() []words.Candidate {
	out := make([]words.Candidate, len(ws.Words))
	for i, w := range ws.Words {
		out[i] = w.Candidate
	}
	return out
}

// rawPick is one word as proposed by the collaborator, before scoring.
type rawPick struct {
	Text     string
	Category string
}

// buildDraft is the Build stage's generated prose.
type buildDraft struct {
	Title        string
	Instructions string
	Description  string
}

var errNoJSON = errors.New("response contains no JSON object")

// extractJSON returns the outermost JSON object found in resp.
func extractJSON(resp string) (string, error) {
	s := strings.TrimSpace(resp)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return "", errNoJSON
	}
	body := s[start : end+1]
	if !gjson.Valid(body) {
		return "", fmt.Errorf("response JSON is malformed")
	}
	return body, nil
}

// textList reads an array of strings or {"text": ...} objects.
func textList(v gjson.Result, field string) []string {
	var out []string
	for _, item := range v.Array() {
		s := item.String()
		if item.IsObject() {
			s = item.Get(field).String()
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func parseBrainstorm(resp string, fallback game.Type) (BrainstormResult, error) {
	body, err := extractJSON(resp)
	if err != nil {
		return BrainstormResult{}, err
	}

	res := BrainstormResult{
		Theme:     strings.TrimSpace(gjson.Get(body, "theme").String()),
		Words:     textList(gjson.Get(body, "words"), "text"),
		Reasoning: strings.TrimSpace(gjson.Get(body, "reasoning").String()),
	}
	if res.Theme == "" {
		return BrainstormResult{}, errors.New("response has no theme")
	}

	raw := gjson.Get(body, "game_type")
	switch {
	case raw.Exists():
		t, ok := game.ParseType(raw.String())
		if !ok {
			return BrainstormResult{}, fmt.Errorf("unsupported game type %q", raw.String())
		}
		res.GameType = t
	case fallback != "":
		res.GameType = fallback
	default:
		return BrainstormResult{}, errors.New("response has no game_type")
	}

	if len(res.Words) == 0 {
		return BrainstormResult{}, errors.New("response has no draft words")
	}
	return res, nil
}

func parsePick(resp string) ([]rawPick, error) {
	body, err := extractJSON(resp)
	if err != nil {
		return nil, err
	}
	arr := gjson.Get(body, "words")
	if !arr.IsArray() {
		return nil, errors.New("response has no words array")
	}
	var out []rawPick
	for _, item := range arr.Array() {
		if item.IsObject() {
			out = append(out, rawPick{Text: item.Get("text").String(), Category: item.Get("category").String()})
			continue
		}
		out = append(out, rawPick{Text: item.String()})
	}
	return out, nil
}

func parseBuild(resp string) (buildDraft, error) {
	body, err := extractJSON(resp)
	if err != nil {
		return buildDraft{}, err
	}
	return buildDraft{
		Title:        strings.TrimSpace(gjson.Get(body, "title").String()),
		Instructions: strings.TrimSpace(gjson.Get(body, "instructions").String()),
		Description:  strings.TrimSpace(gjson.Get(body, "description").String()),
	}, nil
}
